package domain

// Page holds offset-based pagination parameters for list queries.
type Page struct {
	From int
	Size int
}

// Limit returns the row limit, falling back to 10 when Size is not positive.
func (p Page) Limit() int {
	if p.Size < 1 {
		return 10
	}
	return p.Size
}

// Offset returns the row offset, clamped at zero.
func (p Page) Offset() int {
	if p.From < 0 {
		return 0
	}
	return p.From
}
