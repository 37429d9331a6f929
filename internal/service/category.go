package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/tuanvumaihuynh/stock-manager/internal/apperr"
	"github.com/tuanvumaihuynh/stock-manager/internal/model"
	"github.com/tuanvumaihuynh/stock-manager/internal/repository"
	"github.com/tuanvumaihuynh/stock-manager/internal/storage/db"
	"github.com/tuanvumaihuynh/stock-manager/pkg/validator"
)

type CategoryParams struct {
	Name string `json:"name" validate:"notblank,max=200"`
}

type CategoryService interface {
	// ListCategories returns categories newest first.
	ListCategories(ctx context.Context) ([]model.Category, error)
	GetCategory(ctx context.Context, id uuid.UUID) (model.Category, error)
	CreateCategory(ctx context.Context, params CategoryParams) (model.Category, error)
	UpdateCategory(ctx context.Context, id uuid.UUID, params CategoryParams) (model.Category, error)
	// DeleteCategory refuses to remove a category that products still reference.
	DeleteCategory(ctx context.Context, id uuid.UUID) error
}

type categoryService struct {
	opts         options
	db           db.DB
	validator    validator.Validator
	categoryRepo repository.CategoryRepository
	productRepo  repository.ProductRepository
}

func NewCategoryService(
	db db.DB,
	validator validator.Validator,
	categoryRepo repository.CategoryRepository,
	productRepo repository.ProductRepository,
	opts ...Option,
) CategoryService {
	return &categoryService{
		opts:         newOptions(opts),
		db:           db,
		validator:    validator,
		categoryRepo: categoryRepo,
		productRepo:  productRepo,
	}
}

func (s *categoryService) ListCategories(ctx context.Context) ([]model.Category, error) {
	categories, err := s.categoryRepo.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("category repository list categories: %w", err)
	}

	return categories, nil
}

func (s *categoryService) GetCategory(ctx context.Context, id uuid.UUID) (model.Category, error) {
	category, err := s.categoryRepo.GetCategory(ctx, id)
	if err != nil {
		return model.Category{}, categoryLookupErr(err)
	}

	return category, nil
}

func (s *categoryService) CreateCategory(ctx context.Context, params CategoryParams) (model.Category, error) {
	if err := s.validator.Validate(params); err != nil {
		return model.Category{}, fmt.Errorf("validate params: %w", err)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return model.Category{}, fmt.Errorf("generate uuid v7: %w", err)
	}

	now := s.opts.timestamp()
	category := model.Category{
		ID:        id,
		Name:      params.Name,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.categoryRepo.CreateCategory(ctx, category); err != nil {
		return model.Category{}, fmt.Errorf("category repository create category: %w", err)
	}

	return category, nil
}

func (s *categoryService) UpdateCategory(ctx context.Context, id uuid.UUID, params CategoryParams) (model.Category, error) {
	if err := s.validator.Validate(params); err != nil {
		return model.Category{}, fmt.Errorf("validate params: %w", err)
	}

	var updated model.Category
	if err := s.db.WithTx(ctx, func(db db.DB) error {
		category, err := s.categoryRepo.
			WithDB(db).
			GetCategory(ctx, id)
		if err != nil {
			return categoryLookupErr(err)
		}

		if category.Name == params.Name {
			updated = category
			return nil
		}

		category.Name = params.Name
		category.UpdatedAt = s.opts.timestamp()
		if err := s.categoryRepo.
			WithDB(db).
			UpdateCategory(ctx, category); err != nil {
			return categoryLookupErr(err)
		}

		updated = category
		return nil
	}); err != nil {
		return model.Category{}, fmt.Errorf("db with tx: %w", err)
	}

	return updated, nil
}

func (s *categoryService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	if err := s.db.WithTx(ctx, func(db db.DB) error {
		if _, err := s.categoryRepo.
			WithDB(db).
			GetCategory(ctx, id); err != nil {
			return categoryLookupErr(err)
		}

		inUse, err := s.productRepo.
			WithDB(db).
			CategoryInUse(ctx, id)
		if err != nil {
			return fmt.Errorf("product repository category in use: %w", err)
		}
		if inUse {
			return apperr.CategoryInUseErr
		}

		if err := s.categoryRepo.
			WithDB(db).
			DeleteCategory(ctx, id); err != nil {
			return categoryLookupErr(err)
		}

		return nil
	}); err != nil {
		return fmt.Errorf("db with tx: %w", err)
	}

	return nil
}

func categoryLookupErr(err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return apperr.CategoryNotFoundErr.WrapParent(err)
	case errors.Is(err, repository.ErrReferenced):
		// A product was inserted between the usage check and the delete.
		return apperr.CategoryInUseErr.WrapParent(err)
	default:
		return fmt.Errorf("category repository: %w", err)
	}
}
