package apierr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/stock-manager/internal/apperr"
	"github.com/tuanvumaihuynh/stock-manager/internal/http/apierr"
	"github.com/tuanvumaihuynh/stock-manager/pkg/validator"
)

func TestNew(t *testing.T) {
	t.Run("Should map application errors by status", func(t *testing.T) {
		cases := []struct {
			err    error
			status int
			code   string
		}{
			{apperr.ProductNotFoundErr, http.StatusNotFound, "PRODUCT_NOT_FOUND"},
			{apperr.InsufficientStockErr, http.StatusBadRequest, "INSUFFICIENT_STOCK"},
			{apperr.UnknownCategoryErr, http.StatusUnprocessableEntity, "UNKNOWN_CATEGORY"},
			{apperr.CategoryInUseErr, http.StatusConflict, "CATEGORY_IN_USE"},
			{apperr.DatabaseUnavailableErr, http.StatusServiceUnavailable, "DATABASE_UNAVAILABLE"},
		}
		for _, c := range cases {
			res := apierr.New(fmt.Errorf("db with tx: %w", c.err))
			assert.Equal(t, c.status, res.StatusCode, c.code)
			assert.Equal(t, c.code, res.Code)
		}
	})

	t.Run("Should keep caller specific message", func(t *testing.T) {
		res := apierr.New(apperr.InsufficientStockErr.WithMsgf("cannot withdraw %d, only %d in stock", 5, 4))
		assert.Equal(t, "cannot withdraw 5, only 4 in stock", res.Message)
	})

	t.Run("Should list field details for validation errors", func(t *testing.T) {
		type params struct {
			Title string `json:"title" validate:"notblank"`
			Count int    `json:"count" validate:"gte=0"`
		}
		err := validator.MustNewDefaultValidator().Validate(params{Count: -1})
		require.Error(t, err)

		res := apierr.New(fmt.Errorf("validate params: %w", err))
		assert.Equal(t, http.StatusBadRequest, res.StatusCode)
		assert.Equal(t, apperr.ValidationErrorCode, res.Code)
		assert.Equal(t, []apierr.FieldError{
			{Field: "title", Message: "must not be blank"},
			{Field: "count", Message: "must be greater than or equal to 0"},
		}, res.Details)
	})

	t.Run("Should hide unknown errors", func(t *testing.T) {
		res := apierr.New(errors.New("connection reset by peer"))
		assert.Equal(t, apierr.InternalServerErr, res)
	})
}
