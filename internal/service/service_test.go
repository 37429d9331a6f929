package service_test

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/tuanvumaihuynh/stock-manager/internal/model"
	"github.com/tuanvumaihuynh/stock-manager/internal/repository/repotest"
	"github.com/tuanvumaihuynh/stock-manager/internal/service"
	"github.com/tuanvumaihuynh/stock-manager/pkg/validator"
)

// stepClock returns a time source that advances one second per call, so
// every write gets a distinct updated_at.
func stepClock() func() time.Time {
	var mu sync.Mutex
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(time.Second)
		return now
	}
}

type fixture struct {
	store      *repotest.Store
	products   service.ProductService
	history    service.HistoryService
	categories service.CategoryService
	category   model.Category
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWithClock(t, stepClock())
}

func newFixtureWithClock(t *testing.T, now func() time.Time) *fixture {
	t.Helper()

	store := repotest.NewStore()
	v := validator.MustNewDefaultValidator()
	clock := service.WithClock(now)

	category := model.Category{
		ID:        uuid.Must(uuid.NewV7()),
		Name:      "Hardware",
		CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		UpdatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	store.PutCategory(category)

	return &fixture{
		store: store,
		products: service.NewProductService(
			store,
			v,
			store.ProductRepository(),
			store.CategoryRepository(),
			store.HistoryRepository(),
			store.OutboxMsgRepository(),
			clock,
		),
		history: service.NewHistoryService(
			store,
			v,
			store.HistoryRepository(),
			store.OutboxMsgRepository(),
			clock,
		),
		categories: service.NewCategoryService(
			store,
			v,
			store.CategoryRepository(),
			store.ProductRepository(),
			clock,
		),
		category: category,
	}
}
