package domain

import "context"

// Transactor runs fn inside a single storage transaction. Repository calls made
// with the context passed to fn join that transaction, so a row locked via
// GetByIDForUpdate stays locked until fn returns. fn returning an error rolls
// the transaction back and the error is returned unchanged.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
