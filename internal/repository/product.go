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

type ListProductsParams struct {
	CategoryID *uuid.UUID
	// Before is the keyset cursor: only products updated strictly earlier are
	// returned. With BeforeID set, products updated at exactly Before with a
	// smaller id are returned too, so rows sharing a timestamp across a page
	// boundary are not skipped.
	Before   *time.Time
	BeforeID *uuid.UUID
	Limit  int32
}

type ProductRepository interface {
	WithDB(db db.DB) ProductRepository
	CreateProduct(ctx context.Context, product model.Product) error
	GetProduct(ctx context.Context, id uuid.UUID) (model.Product, error)
	// LockProduct reads the product and holds a row lock until the
	// surrounding transaction ends.
	LockProduct(ctx context.Context, id uuid.UUID) (model.Product, error)
	ListProducts(ctx context.Context, params ListProductsParams) ([]model.Product, error)
	UpdateProduct(ctx context.Context, product model.Product) error
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	CategoryInUse(ctx context.Context, categoryID uuid.UUID) (bool, error)
}

type productRepository struct {
	db db.DB
}

func NewProductRepository(db db.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r productRepository) WithDB(db db.DB) ProductRepository {
	return &productRepository{db: db}
}

type productRow struct {
	ID           uuid.UUID `db:"id"`
	Title        string    `db:"title"`
	Image        string    `db:"image"`
	Content      string    `db:"content"`
	Quantity     int64     `db:"quantity"`
	CategoryID   uuid.UUID `db:"category_id"`
	CategoryName string    `db:"category_name"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

const selectProduct = `
	SELECT
		p.id,
		p.title,
		p.image,
		p.content,
		p.quantity,
		p.category_id,
		c.name AS category_name,
		p.created_at,
		p.updated_at
	FROM products AS p
	JOIN categories AS c ON c.id = p.category_id
`

func (r productRepository) CreateProduct(ctx context.Context, product model.Product) error {
	if _, err := r.db.Exec(ctx, `
		INSERT INTO products (id, title, image, content, quantity, category_id, created_at, updated_at)
		VALUES (@id, @title, @image, @content, @quantity, @category_id, @created_at, @updated_at)
	`, pgx.NamedArgs{
		"id":          product.ID,
		"title":       product.Title,
		"image":       product.Image,
		"content":     product.Content,
		"quantity":    product.Quantity,
		"category_id": product.CategoryID,
		"created_at":  product.CreatedAt,
		"updated_at":  product.UpdatedAt,
	}); err != nil {
		return fmt.Errorf("insert product: %w", err)
	}

	return nil
}

func (r productRepository) GetProduct(ctx context.Context, id uuid.UUID) (model.Product, error) {
	return r.getProduct(ctx, selectProduct+` WHERE p.id = @id`, id)
}

func (r productRepository) LockProduct(ctx context.Context, id uuid.UUID) (model.Product, error) {
	return r.getProduct(ctx, selectProduct+` WHERE p.id = @id FOR UPDATE OF p`, id)
}

func (r productRepository) getProduct(ctx context.Context, query string, id uuid.UUID) (model.Product, error) {
	rows, err := r.db.Query(ctx, query, pgx.NamedArgs{"id": id})
	if err != nil {
		return model.Product{}, fmt.Errorf("query product: %w", err)
	}

	row, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[productRow])
	if err != nil {
		return model.Product{}, fmt.Errorf("collect product: %w", mapNoRows(err))
	}

	return rowToProduct(row), nil
}

func (r productRepository) ListProducts(ctx context.Context, params ListProductsParams) ([]model.Product, error) {
	rows, err := r.db.Query(ctx, selectProduct+`
		WHERE (@category_id::uuid IS NULL OR p.category_id = @category_id)
			AND (
				@before::timestamptz IS NULL
				OR p.updated_at < @before
				OR (@before_id::uuid IS NOT NULL AND p.updated_at = @before AND p.id < @before_id)
			)
		ORDER BY p.updated_at DESC, p.id DESC
		LIMIT @limit
	`, pgx.NamedArgs{
		"category_id": params.CategoryID,
		"before":      params.Before,
		"before_id":   params.BeforeID,
		"limit":       params.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}

	productRows, err := pgx.CollectRows(rows, pgx.RowToStructByName[productRow])
	if err != nil {
		return nil, fmt.Errorf("collect products: %w", err)
	}

	products := make([]model.Product, 0, len(productRows))
	for _, row := range productRows {
		products = append(products, rowToProduct(row))
	}

	return products, nil
}

func (r productRepository) UpdateProduct(ctx context.Context, product model.Product) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE products
		SET
			title       = @title,
			image       = @image,
			content     = @content,
			quantity    = @quantity,
			category_id = @category_id,
			updated_at  = @updated_at
		WHERE id = @id
	`, pgx.NamedArgs{
		"id":          product.ID,
		"title":       product.Title,
		"image":       product.Image,
		"content":     product.Content,
		"quantity":    product.Quantity,
		"category_id": product.CategoryID,
		"updated_at":  product.UpdatedAt,
	})
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update product: %w", ErrNotFound)
	}

	return nil
}

func (r productRepository) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = @id`, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete product: %w", ErrNotFound)
	}

	return nil
}

func (r productRepository) CategoryInUse(ctx context.Context, categoryID uuid.UUID) (bool, error) {
	var inUse bool
	if err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM products WHERE category_id = @category_id)`,
		pgx.NamedArgs{"category_id": categoryID},
	).Scan(&inUse); err != nil {
		return false, fmt.Errorf("check category usage: %w", err)
	}

	return inUse, nil
}

func rowToProduct(row productRow) model.Product {
	return model.Product{
		ID:           row.ID,
		Title:        row.Title,
		Image:        row.Image,
		Content:      row.Content,
		Quantity:     row.Quantity,
		CategoryID:   row.CategoryID,
		CategoryName: row.CategoryName,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
}
