package domain

import (
	"context"
	"errors"
)

// Conflict variants raised by category administration.
var (
	ErrDuplicateCategoryName = errors.New("category name already in use")
	ErrCategoryInUse         = errors.New("category is referenced by events")
)

// Category groups events by topic.
// swagger:model Category
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// CategoryRepository defines the interface for category storage
type CategoryRepository interface {
	Create(ctx context.Context, category *Category) error
	GetByID(ctx context.Context, id int64) (*Category, error)
	List(ctx context.Context, page Page) ([]*Category, error)
	Update(ctx context.Context, category *Category) error
	Delete(ctx context.Context, id int64) error
}

// CategoryService defines category curation and lookup logic.
type CategoryService interface {
	AddCategory(ctx context.Context, name string) (*Category, error)
	UpdateCategory(ctx context.Context, id int64, name string) (*Category, error)
	DeleteCategory(ctx context.Context, id int64) error
	GetCategory(ctx context.Context, id int64) (*Category, error)
	GetCategories(ctx context.Context, page Page) ([]*Category, error)
}
