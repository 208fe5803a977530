package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"cityevents/internal/domain"
)

type userRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) domain.UserRepository {
	return &userRepository{
		DB: db,
	}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (name, email, created_at)
		VALUES ($1, $2, $3)
		RETURNING id
	`
	err := q(ctx, r.DB).QueryRowContext(ctx, query, user.Name, user.Email, user.CreatedAt).
		Scan(&user.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return domain.ErrDuplicateEmail
		}
		return err
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	query := `SELECT id, name, email, created_at FROM users WHERE id = $1`
	user := &domain.User{}
	err := q(ctx, r.DB).QueryRowContext(ctx, query, id).
		Scan(&user.ID, &user.Name, &user.Email, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

func (r *userRepository) List(ctx context.Context, ids []int64, page domain.Page) ([]*domain.User, error) {
	query := `
		SELECT id, name, email, created_at
		FROM users
		WHERE cardinality($1::bigint[]) = 0 OR id = ANY($1)
		ORDER BY id
		LIMIT $2 OFFSET $3
	`
	rows, err := q(ctx, r.DB).QueryContext(ctx, query, pq.Array(ids), page.Limit(), page.Offset())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		user := &domain.User{}
		if err := rows.Scan(&user.ID, &user.Name, &user.Email, &user.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if users == nil {
		users = []*domain.User{}
	}
	return users, nil
}

func (r *userRepository) Delete(ctx context.Context, id int64) error {
	res, err := q(ctx, r.DB).ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}
