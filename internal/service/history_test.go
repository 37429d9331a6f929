package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/stock-manager/internal/apperr"
	"github.com/tuanvumaihuynh/stock-manager/internal/model"
	"github.com/tuanvumaihuynh/stock-manager/internal/service"
	"github.com/tuanvumaihuynh/stock-manager/pkg/ptr"
	"github.com/tuanvumaihuynh/stock-manager/pkg/validator"
)

func TestListHistory(t *testing.T) {
	ctx := context.Background()

	t.Run("Should list newest first", func(t *testing.T) {
		f := newFixture(t)
		widget := f.createWidget(t, 15)
		_, err := f.products.WithdrawStock(ctx, service.ChangeStockParams{ProductID: widget.ID, Amount: 5})
		require.NoError(t, err)

		entries, err := f.history.ListHistory(ctx, service.ListHistoryParams{})
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, model.HistoryActionWithdraw, entries[0].Action)
		assert.Equal(t, model.HistoryActionAdd, entries[1].Action)
	})

	t.Run("Should filter by time range", func(t *testing.T) {
		f := newFixture(t)
		widget := f.createWidget(t, 15)
		for range 3 {
			_, err := f.products.RestockProduct(ctx, service.ChangeStockParams{ProductID: widget.ID, Amount: 1})
			require.NoError(t, err)
		}

		all := f.store.History()
		require.Len(t, all, 4)

		entries, err := f.history.ListHistory(ctx, service.ListHistoryParams{
			From: &all[1].Timestamp,
			To:   &all[2].Timestamp,
		})
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, all[2].ID, entries[0].ID)
		assert.Equal(t, all[1].ID, entries[1].ID)
	})

	t.Run("Should reject inverted range", func(t *testing.T) {
		f := newFixture(t)
		from := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
		to := from.Add(-time.Hour)

		_, err := f.history.ListHistory(ctx, service.ListHistoryParams{From: &from, To: &to})
		assert.ErrorIs(t, err, apperr.InvalidParamErr)
	})
}

func TestRecordEntry(t *testing.T) {
	ctx := context.Background()

	t.Run("Should append entry and outbox message", func(t *testing.T) {
		f := newFixture(t)
		productID := uuid.Must(uuid.NewV7())

		entry, err := f.history.RecordEntry(ctx, service.RecordEntryParams{
			Action:       model.HistoryActionIncrease,
			ProductID:    productID,
			ProductTitle: "Widget",
			Amount:       4,
			Remaining:    ptr.New(int64(9)),
		})
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, entry.ID)
		assert.False(t, entry.Timestamp.IsZero())

		assert.Equal(t, []model.HistoryEntry{entry}, f.store.History())
		assert.Len(t, f.store.Outbox(), 1)
	})

	t.Run("Should reject invalid entries", func(t *testing.T) {
		f := newFixture(t)
		productID := uuid.Must(uuid.NewV7())

		cases := map[string]service.RecordEntryParams{
			"unknown action":     {Action: "sell", ProductID: productID, ProductTitle: "Widget"},
			"missing product":    {Action: model.HistoryActionAdd, ProductTitle: "Widget"},
			"blank title":        {Action: model.HistoryActionAdd, ProductID: productID, ProductTitle: " "},
			"negative amount":    {Action: model.HistoryActionAdd, ProductID: productID, ProductTitle: "Widget", Amount: -1},
			"negative remaining": {Action: model.HistoryActionAdd, ProductID: productID, ProductTitle: "Widget", Remaining: ptr.New(int64(-1))},
		}
		for name, params := range cases {
			_, err := f.history.RecordEntry(ctx, params)
			assert.True(t, validator.IsValidationError(err), name)
		}
		assert.Empty(t, f.store.History())
	})
}

func TestLogDeletion(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	productID := uuid.Must(uuid.NewV7())

	entry, err := f.history.LogDeletion(ctx, service.LogDeletionParams{ProductID: productID, ProductTitle: "Widget"})
	require.NoError(t, err)
	assert.Equal(t, model.HistoryActionDelete, entry.Action)
	assert.Zero(t, entry.Amount)
	assert.Nil(t, entry.Remaining)

	_, err = f.history.LogDeletion(ctx, service.LogDeletionParams{ProductTitle: "Widget"})
	assert.True(t, validator.IsValidationError(err))
	assert.Len(t, f.store.History(), 1)
}
