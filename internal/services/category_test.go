package services

import (
	"context"
	"testing"
	"time"

	"cityevents/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCategoryFixture() (*fakeCategoryRepo, *fakeEventRepo, domain.CategoryService) {
	categoryRepo := newFakeCategoryRepo()
	eventRepo := newFakeEventRepo()
	return categoryRepo, eventRepo, NewCategoryService(categoryRepo, eventRepo, 5*time.Second)
}

func TestCategoryService_AddCategory(t *testing.T) {
	ctx := context.Background()
	_, _, svc := newCategoryFixture()

	category, err := svc.AddCategory(ctx, "  concerts  ")
	require.NoError(t, err)
	assert.NotZero(t, category.ID)
	assert.Equal(t, "concerts", category.Name)

	_, err = svc.AddCategory(ctx, "concerts")
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = svc.AddCategory(ctx, "   ")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestCategoryService_UpdateCategory(t *testing.T) {
	ctx := context.Background()
	_, _, svc := newCategoryFixture()

	first, err := svc.AddCategory(ctx, "concerts")
	require.NoError(t, err)
	_, err = svc.AddCategory(ctx, "sport")
	require.NoError(t, err)

	got, err := svc.UpdateCategory(ctx, first.ID, "live music")
	require.NoError(t, err)
	assert.Equal(t, "live music", got.Name)

	_, err = svc.UpdateCategory(ctx, 404, "anything")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCategoryService_DeleteCategory(t *testing.T) {
	ctx := context.Background()
	categoryRepo, eventRepo, svc := newCategoryFixture()

	empty := categoryRepo.add("empty")
	used := categoryRepo.add("used")
	require.NoError(t, eventRepo.Create(ctx, &domain.Event{
		Title:      "Festival",
		CategoryID: used.ID,
		State:      domain.EventStatePending,
	}))

	require.NoError(t, svc.DeleteCategory(ctx, empty.ID))

	err := svc.DeleteCategory(ctx, used.ID)
	assert.ErrorIs(t, err, domain.ErrConflict)

	err = svc.DeleteCategory(ctx, 404)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCategoryService_GetCategories(t *testing.T) {
	ctx := context.Background()
	categoryRepo, _, svc := newCategoryFixture()
	categoryRepo.add("concerts")
	categoryRepo.add("sport")

	categories, err := svc.GetCategories(ctx, domain.Page{})
	require.NoError(t, err)
	assert.Len(t, categories, 2)

	got, err := svc.GetCategory(ctx, categories[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "concerts", got.Name)
}
