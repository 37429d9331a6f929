package zerror_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tuanvumaihuynh/stock-manager/pkg/zerror"
)

func TestZError(t *testing.T) {
	notFound := zerror.NewNotFound("PRODUCT_NOT_FOUND", "product not found")

	t.Run("Should match predefined error after wrapping", func(t *testing.T) {
		parent := errors.New("no rows")
		err := fmt.Errorf("get product: %w", notFound.WrapParent(parent))

		assert.ErrorIs(t, err, notFound)
		assert.ErrorIs(t, err, parent)
	})

	t.Run("Should keep code and status when message changes", func(t *testing.T) {
		err := notFound.WithMsgf("product %s not found", "abc")

		assert.Equal(t, "PRODUCT_NOT_FOUND", err.Code())
		assert.Equal(t, zerror.StatusNotFound, err.Status())
		assert.Equal(t, "product abc not found", err.Msg())
		assert.ErrorIs(t, err, notFound)
	})

	t.Run("Should not match a different code", func(t *testing.T) {
		other := zerror.NewConflict("CATEGORY_IN_USE", "category in use")
		assert.NotErrorIs(t, other, notFound)
	})

	t.Run("Should extract with errors.As", func(t *testing.T) {
		err := fmt.Errorf("service: %w", notFound)

		var zErr zerror.ZError
		assert.True(t, errors.As(err, &zErr))
		assert.Equal(t, "product not found", zErr.Msg())
	})
}
