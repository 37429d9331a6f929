package http

import (
	"fmt"
	"net/http"

	"github.com/tuanvumaihuynh/stock-manager/internal/model"
	"github.com/tuanvumaihuynh/stock-manager/internal/service"
)

type categoryHandler struct {
	categorySvc service.CategoryService
}

func newCategoryHandler(categorySvc service.CategoryService) *categoryHandler {
	return &categoryHandler{
		categorySvc: categorySvc,
	}
}

func (h *categoryHandler) ListCategories(w http.ResponseWriter, r *http.Request) error {
	categories, err := h.categorySvc.ListCategories(r.Context())
	if err != nil {
		return fmt.Errorf("category service list categories: %w", err)
	}

	if categories == nil {
		categories = []model.Category{}
	}

	writeJSON(w, http.StatusOK, categories)
	return nil
}

func (h *categoryHandler) CreateCategory(w http.ResponseWriter, r *http.Request) error {
	var params service.CategoryParams
	if err := decodeJSON(w, r, &params); err != nil {
		return err
	}

	category, err := h.categorySvc.CreateCategory(r.Context(), params)
	if err != nil {
		return fmt.Errorf("category service create category: %w", err)
	}

	writeJSON(w, http.StatusCreated, category)
	return nil
}

func (h *categoryHandler) GetCategory(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r)
	if err != nil {
		return err
	}

	category, err := h.categorySvc.GetCategory(r.Context(), id)
	if err != nil {
		return fmt.Errorf("category service get category: %w", err)
	}

	writeJSON(w, http.StatusOK, category)
	return nil
}

func (h *categoryHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r)
	if err != nil {
		return err
	}

	var params service.CategoryParams
	if err := decodeJSON(w, r, &params); err != nil {
		return err
	}

	category, err := h.categorySvc.UpdateCategory(r.Context(), id, params)
	if err != nil {
		return fmt.Errorf("category service update category: %w", err)
	}

	writeJSON(w, http.StatusOK, category)
	return nil
}

func (h *categoryHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r)
	if err != nil {
		return err
	}

	if err := h.categorySvc.DeleteCategory(r.Context(), id); err != nil {
		return fmt.Errorf("category service delete category: %w", err)
	}

	w.WriteHeader(http.StatusNoContent)
	return nil
}
