package domain

import (
	"context"
	"errors"
	"time"
)

// ErrDuplicateEmail is returned when creating a user with an email already in use.
var ErrDuplicateEmail = errors.New("email already in use")

// User represents a registered user
// swagger:model User
type User struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// NewUser returns a new User with the given fields. ID is set by the repository on create.
func NewUser(name, email string, createdAt time.Time) *User {
	return &User{
		Name:      name,
		Email:     email,
		CreatedAt: createdAt,
	}
}

// UserRepository defines the interface for user storage
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id int64) (*User, error)
	List(ctx context.Context, ids []int64, page Page) ([]*User, error)
	Delete(ctx context.Context, id int64) error
}

// UserService defines the moderator-facing user administration logic.
type UserService interface {
	AddUser(ctx context.Context, name, email string) (*User, error)
	GetUsers(ctx context.Context, ids []int64, page Page) ([]*User, error)
	DeleteUser(ctx context.Context, id int64) error
}
