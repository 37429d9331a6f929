package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/tuanvumaihuynh/stock-manager/internal/model"
	"github.com/tuanvumaihuynh/stock-manager/internal/storage/db"
)

type CategoryRepository interface {
	WithDB(db db.DB) CategoryRepository
	CreateCategory(ctx context.Context, category model.Category) error
	GetCategory(ctx context.Context, id uuid.UUID) (model.Category, error)
	ListCategories(ctx context.Context) ([]model.Category, error)
	UpdateCategory(ctx context.Context, category model.Category) error
	DeleteCategory(ctx context.Context, id uuid.UUID) error
}

type categoryRepository struct {
	db db.DB
}

func NewCategoryRepository(db db.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r categoryRepository) WithDB(db db.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

type categoryRow struct {
	ID        uuid.UUID `db:"id"`
	Name      string    `db:"name"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r categoryRepository) CreateCategory(ctx context.Context, category model.Category) error {
	if _, err := r.db.Exec(ctx, `
		INSERT INTO categories (id, name, created_at, updated_at)
		VALUES (@id, @name, @created_at, @updated_at)
	`, pgx.NamedArgs{
		"id":         category.ID,
		"name":       category.Name,
		"created_at": category.CreatedAt,
		"updated_at": category.UpdatedAt,
	}); err != nil {
		return fmt.Errorf("insert category: %w", err)
	}

	return nil
}

func (r categoryRepository) GetCategory(ctx context.Context, id uuid.UUID) (model.Category, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name, created_at, updated_at
		FROM categories
		WHERE id = @id
	`, pgx.NamedArgs{"id": id})
	if err != nil {
		return model.Category{}, fmt.Errorf("query category: %w", err)
	}

	row, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[categoryRow])
	if err != nil {
		return model.Category{}, fmt.Errorf("collect category: %w", mapNoRows(err))
	}

	return model.Category(row), nil
}

func (r categoryRepository) ListCategories(ctx context.Context) ([]model.Category, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name, created_at, updated_at
		FROM categories
		ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}

	categoryRows, err := pgx.CollectRows(rows, pgx.RowToStructByName[categoryRow])
	if err != nil {
		return nil, fmt.Errorf("collect categories: %w", err)
	}

	categories := make([]model.Category, 0, len(categoryRows))
	for _, row := range categoryRows {
		categories = append(categories, model.Category(row))
	}

	return categories, nil
}

func (r categoryRepository) UpdateCategory(ctx context.Context, category model.Category) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE categories
		SET
			name       = @name,
			updated_at = @updated_at
		WHERE id = @id
	`, pgx.NamedArgs{
		"id":         category.ID,
		"name":       category.Name,
		"updated_at": category.UpdatedAt,
	})
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update category: %w", ErrNotFound)
	}

	return nil
}

func (r categoryRepository) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM categories WHERE id = @id`, pgx.NamedArgs{"id": id})
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("delete category: %w", ErrReferenced)
		}
		return fmt.Errorf("delete category: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete category: %w", ErrNotFound)
	}

	return nil
}
