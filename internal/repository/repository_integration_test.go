//go:build integration

package repository_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/stock-manager/internal/model"
	"github.com/tuanvumaihuynh/stock-manager/internal/repository"
	"github.com/tuanvumaihuynh/stock-manager/internal/storage/db"
	"github.com/tuanvumaihuynh/stock-manager/pkg/ptr"
)

// Run with: POSTGRES_TEST_URL=postgres://... go test -tags integration ./internal/repository/...
// The tests migrate the target database and truncate every table.
func newClient(t *testing.T) *db.Client {
	t.Helper()

	dsn := os.Getenv("POSTGRES_TEST_URL")
	if dsn == "" {
		t.Skip("POSTGRES_TEST_URL is not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, db.Migrate(ctx, pool))
	_, err = pool.Exec(ctx, `TRUNCATE outbox_messages, history_entries, products, categories`)
	require.NoError(t, err)

	return db.NewClient(pool)
}

func newID(t *testing.T) uuid.UUID {
	t.Helper()

	id, err := uuid.NewV7()
	require.NoError(t, err)
	return id
}

func createCategory(t *testing.T, client db.DB, name string) model.Category {
	t.Helper()

	now := time.Now().UTC().Truncate(time.Microsecond)
	category := model.Category{ID: newID(t), Name: name, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, repository.NewCategoryRepository(client).CreateCategory(context.Background(), category))
	return category
}

func createProduct(t *testing.T, client db.DB, categoryID uuid.UUID, updatedAt time.Time) model.Product {
	t.Helper()

	product := model.Product{
		ID:         newID(t),
		Title:      "Widget",
		Image:      model.PlaceholderImage,
		Quantity:   3,
		CategoryID: categoryID,
		CreatedAt:  updatedAt,
		UpdatedAt:  updatedAt,
	}
	require.NoError(t, repository.NewProductRepository(client).CreateProduct(context.Background(), product))
	return product
}

func ids(products []model.Product) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(products))
	for _, p := range products {
		out = append(out, p.ID)
	}
	return out
}

func TestProductRepository(t *testing.T) {
	client := newClient(t)
	ctx := context.Background()
	repo := repository.NewProductRepository(client)
	category := createCategory(t, client, "Hardware")

	tie := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	older := createProduct(t, client, category.ID, tie.Add(-time.Minute))
	a := createProduct(t, client, category.ID, tie)
	b := createProduct(t, client, category.ID, tie)
	c := createProduct(t, client, category.ID, tie)

	t.Run("Should order by updated_at then id descending", func(t *testing.T) {
		products, err := repo.ListProducts(ctx, repository.ListProductsParams{Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{c.ID, b.ID, a.ID, older.ID}, ids(products))
		assert.Equal(t, "Hardware", products[0].CategoryName)
	})

	t.Run("Should continue within a shared updated_at with an id cursor", func(t *testing.T) {
		products, err := repo.ListProducts(ctx, repository.ListProductsParams{
			Before:   ptr.New(tie),
			BeforeID: ptr.New(c.ID),
			Limit:    10,
		})
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{b.ID, a.ID, older.ID}, ids(products))
	})

	t.Run("Should skip the whole timestamp without an id cursor", func(t *testing.T) {
		products, err := repo.ListProducts(ctx, repository.ListProductsParams{Before: ptr.New(tie), Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{older.ID}, ids(products))
	})

	t.Run("Should lock and update inside a transaction", func(t *testing.T) {
		require.NoError(t, client.WithTx(ctx, func(tx db.DB) error {
			locked, err := repo.WithDB(tx).LockProduct(ctx, a.ID)
			if err != nil {
				return err
			}
			locked.Quantity = 9
			return repo.WithDB(tx).UpdateProduct(ctx, locked)
		}))

		stored, err := repo.GetProduct(ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(9), stored.Quantity)
	})

	t.Run("Should map missing rows to ErrNotFound", func(t *testing.T) {
		_, err := repo.GetProduct(ctx, newID(t))
		assert.ErrorIs(t, err, repository.ErrNotFound)
		assert.ErrorIs(t, repo.DeleteProduct(ctx, newID(t)), repository.ErrNotFound)
	})
}

func TestCategoryRepository(t *testing.T) {
	client := newClient(t)
	ctx := context.Background()
	repo := repository.NewCategoryRepository(client)

	used := createCategory(t, client, "Hardware")
	unused := createCategory(t, client, "Garden")
	createProduct(t, client, used.ID, time.Now().UTC().Truncate(time.Microsecond))

	inUse, err := repository.NewProductRepository(client).CategoryInUse(ctx, used.ID)
	require.NoError(t, err)
	assert.True(t, inUse)

	err = repo.DeleteCategory(ctx, used.ID)
	assert.ErrorIs(t, err, repository.ErrReferenced)

	require.NoError(t, repo.DeleteCategory(ctx, unused.ID))
	assert.ErrorIs(t, repo.DeleteCategory(ctx, unused.ID), repository.ErrNotFound)
}

func TestHistoryRepository(t *testing.T) {
	client := newClient(t)
	ctx := context.Background()
	repo := repository.NewHistoryRepository(client)

	productID := newID(t)
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	for i, action := range []model.HistoryAction{model.HistoryActionAdd, model.HistoryActionWithdraw, model.HistoryActionDelete} {
		entry := model.HistoryEntry{
			ID:           newID(t),
			Action:       action,
			ProductID:    productID,
			ProductTitle: "Widget",
			Amount:       2,
			Timestamp:    base.Add(time.Duration(i) * time.Hour),
		}
		if action != model.HistoryActionDelete {
			entry.Remaining = ptr.New(int64(4))
		}
		require.NoError(t, repo.CreateHistoryEntry(ctx, entry))
	}

	entries, err := repo.ListHistory(ctx, repository.ListHistoryParams{})
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, model.HistoryActionDelete, entries[0].Action)
	assert.Nil(t, entries[0].Remaining)

	entries, err = repo.ListHistory(ctx, repository.ListHistoryParams{
		From:      ptr.New(base.Add(30 * time.Minute)),
		To:        ptr.New(base.Add(time.Hour)),
		ProductID: &productID,
	})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, model.HistoryActionWithdraw, entries[0].Action)
}

func TestOutboxMsgRepository(t *testing.T) {
	client := newClient(t)
	ctx := context.Background()
	repo := repository.NewOutboxMsgRepository(client)

	for _, key := range []string{"first", "second"} {
		require.NoError(t, repo.CreateOutboxMsg(ctx, repository.CreateOutboxMsgParams{
			Topic:        "history.recorded",
			Headers:      map[string]string{"correlation_id": key},
			Payload:      []byte(`{"key":"` + key + `"}`),
			PartitionKey: ptr.New(key),
		}))
	}

	var locked, other []repository.ListUnprocessedOutboxMsgsResult
	require.NoError(t, client.WithTx(ctx, func(tx db.DB) error {
		var err error
		locked, err = repo.WithDB(tx).ListUnprocessedOutboxMsgs(ctx, repository.ListUnprocessedOutboxMsgsParams{BatchSize: 1})
		if err != nil {
			return err
		}

		// A second relay sees only rows the first one has not locked.
		if err := client.WithTx(ctx, func(tx2 db.DB) error {
			other, err = repo.WithDB(tx2).ListUnprocessedOutboxMsgs(ctx, repository.ListUnprocessedOutboxMsgsParams{BatchSize: 10})
			return err
		}); err != nil {
			return err
		}

		return repo.WithDB(tx).BulkUpdateOutboxMsgs(ctx, repository.BulkUpdateOutboxMsgsParams{
			Items: []repository.BulkUpdateOutboxMsgsItem{{ID: locked[0].ID, Error: ptr.New("broker down")}},
		})
	}))

	require.Len(t, locked, 1)
	assert.Equal(t, "first", locked[0].Headers["correlation_id"])
	assert.Equal(t, ptr.New("first"), locked[0].PartitionKey)
	require.Len(t, other, 1)
	assert.Equal(t, "second", other[0].Headers["correlation_id"])

	var processedErr *string
	require.NoError(t, client.QueryRow(ctx,
		`SELECT error FROM outbox_messages WHERE id = $1 AND processed_at IS NOT NULL`, locked[0].ID,
	).Scan(&processedErr))
	assert.Equal(t, ptr.New("broker down"), processedErr)

	remaining, err := repo.ListUnprocessedOutboxMsgs(ctx, repository.ListUnprocessedOutboxMsgsParams{BatchSize: 10})
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, other[0].ID, remaining[0].ID)
}
