package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/stock-manager/internal/apperr"
	"github.com/tuanvumaihuynh/stock-manager/internal/service"
	"github.com/tuanvumaihuynh/stock-manager/pkg/validator"
)

func TestCategoryService(t *testing.T) {
	ctx := context.Background()

	t.Run("Should create, rename and list categories", func(t *testing.T) {
		f := newFixture(t)

		tools, err := f.categories.CreateCategory(ctx, service.CategoryParams{Name: "Tools"})
		require.NoError(t, err)

		renamed, err := f.categories.UpdateCategory(ctx, tools.ID, service.CategoryParams{Name: "Hand tools"})
		require.NoError(t, err)
		assert.Equal(t, "Hand tools", renamed.Name)
		assert.Equal(t, tools.CreatedAt, renamed.CreatedAt)
		assert.True(t, renamed.UpdatedAt.After(tools.UpdatedAt))

		got, err := f.categories.GetCategory(ctx, tools.ID)
		require.NoError(t, err)
		assert.Equal(t, renamed, got)

		categories, err := f.categories.ListCategories(ctx)
		require.NoError(t, err)
		require.Len(t, categories, 2)
		assert.Equal(t, tools.ID, categories[0].ID)
		assert.Equal(t, f.category.ID, categories[1].ID)
	})

	t.Run("Should reject blank names", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.categories.CreateCategory(ctx, service.CategoryParams{Name: ""})
		assert.True(t, validator.IsValidationError(err))

		_, err = f.categories.UpdateCategory(ctx, f.category.ID, service.CategoryParams{Name: "   "})
		assert.True(t, validator.IsValidationError(err))
	})

	t.Run("Should return not found for unknown category", func(t *testing.T) {
		f := newFixture(t)
		id := uuid.Must(uuid.NewV7())

		_, err := f.categories.GetCategory(ctx, id)
		assert.ErrorIs(t, err, apperr.CategoryNotFoundErr)

		_, err = f.categories.UpdateCategory(ctx, id, service.CategoryParams{Name: "Tools"})
		assert.ErrorIs(t, err, apperr.CategoryNotFoundErr)

		err = f.categories.DeleteCategory(ctx, id)
		assert.ErrorIs(t, err, apperr.CategoryNotFoundErr)
	})

	t.Run("Should refuse to delete a category in use", func(t *testing.T) {
		f := newFixture(t)
		widget := f.createWidget(t, 1)

		err := f.categories.DeleteCategory(ctx, f.category.ID)
		assert.ErrorIs(t, err, apperr.CategoryInUseErr)

		_, err = f.products.DeleteProduct(ctx, widget.ID)
		require.NoError(t, err)

		require.NoError(t, f.categories.DeleteCategory(ctx, f.category.ID))
		_, err = f.categories.GetCategory(ctx, f.category.ID)
		assert.ErrorIs(t, err, apperr.CategoryNotFoundErr)
	})
}
