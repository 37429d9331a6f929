package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/tuanvumaihuynh/stock-manager/internal/apperr"
	"github.com/tuanvumaihuynh/stock-manager/internal/model"
	"github.com/tuanvumaihuynh/stock-manager/internal/repository"
	"github.com/tuanvumaihuynh/stock-manager/internal/storage/db"
	"github.com/tuanvumaihuynh/stock-manager/pkg/ptr"
	"github.com/tuanvumaihuynh/stock-manager/pkg/validator"
)

const (
	DefaultProductPageSize = 20
	MaxProductPageSize     = 100
)

type CreateProductParams struct {
	Title      string    `json:"title" validate:"notblank"`
	Content    string    `json:"content"`
	Image      *string   `json:"image"`
	Quantity   *int64    `json:"quantity" validate:"required,gte=0"`
	CategoryID uuid.UUID `json:"category_id" validate:"required"`
}

// UpdateProductParams holds a partial update; nil fields are left unchanged.
type UpdateProductParams struct {
	Title      *string    `json:"title" validate:"omitempty,notblank"`
	Content    *string    `json:"content"`
	Image      *string    `json:"image"`
	Quantity   *int64     `json:"quantity" validate:"omitempty,gte=0"`
	CategoryID *uuid.UUID `json:"category_id"`
}

func (p UpdateProductParams) empty() bool {
	return p.Title == nil && p.Content == nil && p.Image == nil && p.Quantity == nil && p.CategoryID == nil
}

type ChangeStockParams struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Amount    int64     `json:"amount" validate:"gt=0"`
}

type ListProductsParams struct {
	CategoryID *uuid.UUID
	// Cursor is the UpdatedAt of the last product of the previous page.
	Cursor *time.Time
	// CursorID optionally carries that product's id as a tiebreak.
	CursorID *uuid.UUID
	Limit    int `json:"limit" validate:"gte=0"`
}

type ListProductsResult struct {
	Products []model.Product
	// NextCursor and NextCursorID are set when the page is full and more
	// products may follow.
	NextCursor   *time.Time
	NextCursorID *uuid.UUID
}

type ProductService interface {
	CreateProduct(ctx context.Context, params CreateProductParams) (model.Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (model.Product, error)
	ListProducts(ctx context.Context, params ListProductsParams) (ListProductsResult, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, params UpdateProductParams) (model.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) (model.Product, error)
	WithdrawStock(ctx context.Context, params ChangeStockParams) (model.Product, error)
	RestockProduct(ctx context.Context, params ChangeStockParams) (model.Product, error)
}

type productService struct {
	opts         options
	db           db.DB
	validator    validator.Validator
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
	history      historyLog
}

func NewProductService(
	db db.DB,
	validator validator.Validator,
	productRepo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	historyRepo repository.HistoryRepository,
	outboxMsgRepo repository.OutboxMsgRepository,
	opts ...Option,
) ProductService {
	return &productService{
		opts:         newOptions(opts),
		db:           db,
		validator:    validator,
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		history: historyLog{
			historyRepo:   historyRepo,
			outboxMsgRepo: outboxMsgRepo,
		},
	}
}

func (s *productService) CreateProduct(ctx context.Context, params CreateProductParams) (model.Product, error) {
	if err := s.validator.Validate(params); err != nil {
		return model.Product{}, fmt.Errorf("validate params: %w", err)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return model.Product{}, fmt.Errorf("generate uuid v7: %w", err)
	}

	image := imageOrPlaceholder(ptr.ValueOr(params.Image, ""))

	now := s.opts.timestamp()
	product := model.Product{
		ID:         id,
		Title:      params.Title,
		Image:      image,
		Content:    params.Content,
		Quantity:   *params.Quantity,
		CategoryID: params.CategoryID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.db.WithTx(ctx, func(db db.DB) error {
		category, err := s.getCategory(ctx, db, params.CategoryID)
		if err != nil {
			return err
		}
		product.CategoryName = category.Name

		if err := s.productRepo.
			WithDB(db).
			CreateProduct(ctx, product); err != nil {
			return fmt.Errorf("product repository create product: %w", err)
		}

		if _, err := s.history.append(ctx, db, model.HistoryEntry{
			Action:       model.HistoryActionAdd,
			ProductID:    product.ID,
			ProductTitle: product.Title,
			Amount:       product.Quantity,
			Remaining:    ptr.New(product.Quantity),
			Timestamp:    now,
		}); err != nil {
			return err
		}

		return nil
	}); err != nil {
		return model.Product{}, fmt.Errorf("db with tx: %w", err)
	}

	return product, nil
}

// imageOrPlaceholder applies the placeholder to an empty image on both
// create and update.
func imageOrPlaceholder(image string) string {
	if image == "" {
		return model.PlaceholderImage
	}
	return image
}

func (s *productService) GetProduct(ctx context.Context, id uuid.UUID) (model.Product, error) {
	product, err := s.productRepo.GetProduct(ctx, id)
	if err != nil {
		return model.Product{}, productLookupErr(err)
	}

	return product, nil
}

func (s *productService) ListProducts(ctx context.Context, params ListProductsParams) (ListProductsResult, error) {
	if err := s.validator.Validate(params); err != nil {
		return ListProductsResult{}, fmt.Errorf("validate params: %w", err)
	}

	limit := params.Limit
	switch {
	case limit == 0:
		limit = DefaultProductPageSize
	case limit > MaxProductPageSize:
		limit = MaxProductPageSize
	}

	products, err := s.productRepo.ListProducts(ctx, repository.ListProductsParams{
		CategoryID: params.CategoryID,
		Before:     params.Cursor,
		BeforeID:   params.CursorID,
		//nolint:gosec
		Limit: int32(limit),
	})
	if err != nil {
		return ListProductsResult{}, fmt.Errorf("product repository list products: %w", err)
	}

	result := ListProductsResult{Products: products}
	if len(products) == limit {
		last := products[len(products)-1]
		result.NextCursor = ptr.New(last.UpdatedAt)
		result.NextCursorID = ptr.New(last.ID)
	}

	return result, nil
}

func (s *productService) UpdateProduct(ctx context.Context, id uuid.UUID, params UpdateProductParams) (model.Product, error) {
	if params.empty() {
		return model.Product{}, apperr.NothingToUpdateErr
	}

	if err := s.validator.Validate(params); err != nil {
		return model.Product{}, fmt.Errorf("validate params: %w", err)
	}

	var updated model.Product
	if err := s.db.WithTx(ctx, func(db db.DB) error {
		current, err := s.lockProduct(ctx, db, id)
		if err != nil {
			return err
		}

		next := current
		if params.Title != nil {
			next.Title = *params.Title
		}
		if params.Content != nil {
			next.Content = *params.Content
		}
		if params.Image != nil {
			next.Image = imageOrPlaceholder(*params.Image)
		}
		if params.Quantity != nil {
			next.Quantity = *params.Quantity
		}
		if params.CategoryID != nil && *params.CategoryID != current.CategoryID {
			category, err := s.getCategory(ctx, db, *params.CategoryID)
			if err != nil {
				return err
			}
			next.CategoryID = category.ID
			next.CategoryName = category.Name
		}

		if next == current {
			updated = current
			return nil
		}

		updated, err = s.saveProduct(ctx, db, current, next)
		return err
	}); err != nil {
		return model.Product{}, fmt.Errorf("db with tx: %w", err)
	}

	return updated, nil
}

func (s *productService) DeleteProduct(ctx context.Context, id uuid.UUID) (model.Product, error) {
	var deleted model.Product
	if err := s.db.WithTx(ctx, func(db db.DB) error {
		product, err := s.lockProduct(ctx, db, id)
		if err != nil {
			return err
		}

		if err := s.productRepo.
			WithDB(db).
			DeleteProduct(ctx, id); err != nil {
			return productLookupErr(err)
		}

		if _, err := s.history.append(ctx, db, model.HistoryEntry{
			Action:       model.HistoryActionDelete,
			ProductID:    product.ID,
			ProductTitle: product.Title,
			Amount:       product.Quantity,
			Timestamp:    s.opts.timestamp(),
		}); err != nil {
			return err
		}

		deleted = product
		return nil
	}); err != nil {
		return model.Product{}, fmt.Errorf("db with tx: %w", err)
	}

	return deleted, nil
}

func (s *productService) WithdrawStock(ctx context.Context, params ChangeStockParams) (model.Product, error) {
	return s.changeStock(ctx, params, func(current model.Product) (int64, error) {
		if params.Amount > current.Quantity {
			return 0, apperr.InsufficientStockErr.WithMsgf(
				"cannot withdraw %d, only %d in stock", params.Amount, current.Quantity)
		}
		return current.Quantity - params.Amount, nil
	})
}

func (s *productService) RestockProduct(ctx context.Context, params ChangeStockParams) (model.Product, error) {
	return s.changeStock(ctx, params, func(current model.Product) (int64, error) {
		if params.Amount > math.MaxInt64-current.Quantity {
			return 0, apperr.ValidationErr.WithMsgf("restocking %d would overflow the quantity", params.Amount)
		}
		return current.Quantity + params.Amount, nil
	})
}

// changeStock locks the product, computes the new quantity with apply and
// saves it. A rejected change leaves the product untouched.
func (s *productService) changeStock(
	ctx context.Context,
	params ChangeStockParams,
	apply func(current model.Product) (int64, error),
) (model.Product, error) {
	if err := s.validator.Validate(params); err != nil {
		return model.Product{}, fmt.Errorf("validate params: %w", err)
	}

	var updated model.Product
	if err := s.db.WithTx(ctx, func(db db.DB) error {
		current, err := s.lockProduct(ctx, db, params.ProductID)
		if err != nil {
			return err
		}

		quantity, err := apply(current)
		if err != nil {
			return err
		}

		next := current
		next.Quantity = quantity
		updated, err = s.saveProduct(ctx, db, current, next)
		return err
	}); err != nil {
		return model.Product{}, fmt.Errorf("db with tx: %w", err)
	}

	return updated, nil
}

// saveProduct writes next over current and, when the quantity differs,
// appends exactly one HistoryEntry describing the change. Every write to an
// existing product goes through here, whichever operation triggered it.
func (s *productService) saveProduct(ctx context.Context, db db.DB, current, next model.Product) (model.Product, error) {
	now := s.opts.timestamp()
	next.UpdatedAt = now

	if err := s.productRepo.
		WithDB(db).
		UpdateProduct(ctx, next); err != nil {
		return model.Product{}, productLookupErr(err)
	}

	delta := next.Quantity - current.Quantity
	if delta == 0 {
		return next, nil
	}

	entry := model.HistoryEntry{
		Action:       model.HistoryActionIncrease,
		ProductID:    next.ID,
		ProductTitle: next.Title,
		Amount:       delta,
		Remaining:    ptr.New(next.Quantity),
		Timestamp:    now,
	}
	if delta < 0 {
		entry.Action = model.HistoryActionWithdraw
		entry.Amount = -delta
	}

	if _, err := s.history.append(ctx, db, entry); err != nil {
		return model.Product{}, err
	}

	return next, nil
}

func (s *productService) lockProduct(ctx context.Context, db db.DB, id uuid.UUID) (model.Product, error) {
	product, err := s.productRepo.
		WithDB(db).
		LockProduct(ctx, id)
	if err != nil {
		return model.Product{}, productLookupErr(err)
	}
	return product, nil
}

func (s *productService) getCategory(ctx context.Context, db db.DB, id uuid.UUID) (model.Category, error) {
	category, err := s.categoryRepo.
		WithDB(db).
		GetCategory(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Category{}, apperr.UnknownCategoryErr.WrapParent(err)
		}
		return model.Category{}, fmt.Errorf("category repository get category: %w", err)
	}
	return category, nil
}

func productLookupErr(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.ProductNotFoundErr.WrapParent(err)
	}
	return fmt.Errorf("product repository: %w", err)
}
