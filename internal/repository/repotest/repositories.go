package repotest

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/tuanvumaihuynh/stock-manager/internal/model"
	"github.com/tuanvumaihuynh/stock-manager/internal/repository"
	"github.com/tuanvumaihuynh/stock-manager/internal/storage/db"
)

type productRepo struct{ s *Store }

var _ repository.ProductRepository = productRepo{}

func (r productRepo) WithDB(db.DB) repository.ProductRepository { return r }

func (r productRepo) CreateProduct(_ context.Context, p model.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.categories[p.CategoryID]; !ok {
		return fmt.Errorf("insert product: category %s does not exist", p.CategoryID)
	}
	if _, ok := r.s.products[p.ID]; ok {
		return fmt.Errorf("insert product: duplicate id %s", p.ID)
	}
	p.CategoryName = ""
	r.s.products[p.ID] = p
	return nil
}

func (r productRepo) GetProduct(_ context.Context, id uuid.UUID) (model.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.products[id]
	if !ok {
		return model.Product{}, fmt.Errorf("collect product: %w", repository.ErrNotFound)
	}
	return r.withCategory(p), nil
}

func (r productRepo) LockProduct(ctx context.Context, id uuid.UUID) (model.Product, error) {
	return r.GetProduct(ctx, id)
}

func (r productRepo) ListProducts(_ context.Context, params repository.ListProductsParams) ([]model.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []model.Product
	for _, p := range r.s.products {
		if params.CategoryID != nil && p.CategoryID != *params.CategoryID {
			continue
		}
		if params.Before != nil && !keysetBefore(p, *params.Before, params.BeforeID) {
			continue
		}
		out = append(out, r.withCategory(p))
	}

	slices.SortFunc(out, func(a, b model.Product) int {
		if c := b.UpdatedAt.Compare(a.UpdatedAt); c != 0 {
			return c
		}
		return compareUUIDDesc(a.ID, b.ID)
	})

	if params.Limit >= 0 && len(out) > int(params.Limit) {
		out = out[:params.Limit]
	}
	return out, nil
}

func keysetBefore(p model.Product, before time.Time, beforeID *uuid.UUID) bool {
	if p.UpdatedAt.Before(before) {
		return true
	}
	return beforeID != nil && p.UpdatedAt.Equal(before) && compareUUIDDesc(p.ID, *beforeID) > 0
}

func (r productRepo) UpdateProduct(_ context.Context, p model.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	old, ok := r.s.products[p.ID]
	if !ok {
		return fmt.Errorf("update product: %w", repository.ErrNotFound)
	}
	if _, ok := r.s.categories[p.CategoryID]; !ok {
		return fmt.Errorf("update product: category %s does not exist", p.CategoryID)
	}
	p.CreatedAt = old.CreatedAt
	p.CategoryName = ""
	r.s.products[p.ID] = p
	return nil
}

func (r productRepo) DeleteProduct(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.products[id]; !ok {
		return fmt.Errorf("delete product: %w", repository.ErrNotFound)
	}
	delete(r.s.products, id)
	return nil
}

func (r productRepo) CategoryInUse(_ context.Context, categoryID uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.categoryInUse(categoryID), nil
}

// withCategory resolves the category name; callers hold s.mu.
func (r productRepo) withCategory(p model.Product) model.Product {
	p.CategoryName = r.s.categories[p.CategoryID].Name
	return p
}

func (s *Store) categoryInUse(id uuid.UUID) bool {
	for _, p := range s.products {
		if p.CategoryID == id {
			return true
		}
	}
	return false
}

type categoryRepo struct{ s *Store }

var _ repository.CategoryRepository = categoryRepo{}

func (r categoryRepo) WithDB(db.DB) repository.CategoryRepository { return r }

func (r categoryRepo) CreateCategory(_ context.Context, c model.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.categories[c.ID] = c
	return nil
}

func (r categoryRepo) GetCategory(_ context.Context, id uuid.UUID) (model.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.categories[id]
	if !ok {
		return model.Category{}, fmt.Errorf("collect category: %w", repository.ErrNotFound)
	}
	return c, nil
}

func (r categoryRepo) ListCategories(context.Context) ([]model.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := make([]model.Category, 0, len(r.s.categories))
	for _, c := range r.s.categories {
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b model.Category) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return compareUUIDDesc(a.ID, b.ID)
	})
	return out, nil
}

func (r categoryRepo) UpdateCategory(_ context.Context, c model.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	old, ok := r.s.categories[c.ID]
	if !ok {
		return fmt.Errorf("update category: %w", repository.ErrNotFound)
	}
	c.CreatedAt = old.CreatedAt
	r.s.categories[c.ID] = c
	return nil
}

func (r categoryRepo) DeleteCategory(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.categories[id]; !ok {
		return fmt.Errorf("delete category: %w", repository.ErrNotFound)
	}
	if r.s.categoryInUse(id) {
		return fmt.Errorf("delete category: %w", repository.ErrReferenced)
	}
	delete(r.s.categories, id)
	return nil
}

type historyRepo struct{ s *Store }

var _ repository.HistoryRepository = historyRepo{}

func (r historyRepo) WithDB(db.DB) repository.HistoryRepository { return r }

func (r historyRepo) CreateHistoryEntry(_ context.Context, e model.HistoryEntry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.s.FailHistoryInsert != nil {
		return fmt.Errorf("insert history entry: %w", r.s.FailHistoryInsert)
	}
	r.s.history = append(r.s.history, e)
	return nil
}

func (r historyRepo) ListHistory(_ context.Context, params repository.ListHistoryParams) ([]model.HistoryEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []model.HistoryEntry
	for _, e := range r.s.history {
		if params.From != nil && e.Timestamp.Before(*params.From) {
			continue
		}
		if params.To != nil && e.Timestamp.After(*params.To) {
			continue
		}
		if params.ProductID != nil && e.ProductID != *params.ProductID {
			continue
		}
		out = append(out, e)
	}
	slices.SortStableFunc(out, func(a, b model.HistoryEntry) int {
		if c := b.Timestamp.Compare(a.Timestamp); c != 0 {
			return c
		}
		return compareUUIDDesc(a.ID, b.ID)
	})
	return out, nil
}

type outboxRepo struct{ s *Store }

var _ repository.OutboxMsgRepository = outboxRepo{}

func (r outboxRepo) WithDB(db.DB) repository.OutboxMsgRepository { return r }

func (r outboxRepo) CreateOutboxMsg(_ context.Context, params repository.CreateOutboxMsgParams) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.s.FailOutboxInsert != nil {
		return fmt.Errorf("insert outbox msg: %w", r.s.FailOutboxInsert)
	}
	r.s.outbox = append(r.s.outbox, OutboxMsg{ID: uuid.New(), Params: params})
	return nil
}

func (r outboxRepo) ListUnprocessedOutboxMsgs(_ context.Context, params repository.ListUnprocessedOutboxMsgsParams) ([]repository.ListUnprocessedOutboxMsgsResult, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []repository.ListUnprocessedOutboxMsgsResult
	for _, m := range r.s.outbox {
		if m.Processed {
			continue
		}
		if len(out) == int(params.BatchSize) {
			break
		}
		out = append(out, repository.ListUnprocessedOutboxMsgsResult{
			ID:           m.ID,
			Topic:        m.Params.Topic,
			Headers:      m.Params.Headers,
			Payload:      m.Params.Payload,
			PartitionKey: m.Params.PartitionKey,
		})
	}
	return out, nil
}

func (r outboxRepo) BulkUpdateOutboxMsgs(_ context.Context, params repository.BulkUpdateOutboxMsgsParams) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, item := range params.Items {
		for i := range r.s.outbox {
			if r.s.outbox[i].ID == item.ID {
				r.s.outbox[i].Processed = true
				r.s.outbox[i].Error = item.Error
			}
		}
	}
	return nil
}
