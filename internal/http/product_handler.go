package http

import (
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/tuanvumaihuynh/stock-manager/internal/apperr"
	"github.com/tuanvumaihuynh/stock-manager/internal/model"
	"github.com/tuanvumaihuynh/stock-manager/internal/productview"
	"github.com/tuanvumaihuynh/stock-manager/internal/service"
	"github.com/tuanvumaihuynh/stock-manager/pkg/ptr"
)

type productPage struct {
	Items        []model.Product `json:"items"`
	NextCursor   *time.Time      `json:"next_cursor"`
	NextCursorID *uuid.UUID      `json:"next_cursor_id"`
}

type stockChangeRequest struct {
	Amount int64 `json:"amount"`
}

type productHandler struct {
	productSvc service.ProductService
}

func newProductHandler(productSvc service.ProductService) *productHandler {
	return &productHandler{
		productSvc: productSvc,
	}
}

func (h *productHandler) ListProducts(w http.ResponseWriter, r *http.Request) error {
	query := r.URL.Query()

	var (
		limit      *int
		categoryID *uuid.UUID
		cursorID   *uuid.UUID
		q          *string
		sort       *string
	)
	if err := queryParam(query, "limit", &limit); err != nil {
		return err
	}
	if err := queryParam(query, "category_id", &categoryID); err != nil {
		return err
	}
	if err := queryParam(query, "cursor_id", &cursorID); err != nil {
		return err
	}
	if err := queryParam(query, "q", &q); err != nil {
		return err
	}
	if err := queryParam(query, "sort", &sort); err != nil {
		return err
	}

	order, err := productview.ParseSortOrder(ptr.ValueOr(sort, ""))
	if err != nil {
		return apperr.InvalidParamErr.WithMsgf("invalid format for parameter sort: %v", err)
	}

	cursor, err := queryTime(query, "cursor")
	if err != nil {
		return err
	}

	result, err := h.productSvc.ListProducts(r.Context(), service.ListProductsParams{
		CategoryID: categoryID,
		Cursor:     cursor,
		CursorID:   cursorID,
		Limit:      ptr.ValueOr(limit, 0),
	})
	if err != nil {
		return fmt.Errorf("product service list products: %w", err)
	}

	items := productview.Apply(result.Products, ptr.ValueOr(q, ""), order)
	if items == nil {
		items = []model.Product{}
	}

	writeJSON(w, http.StatusOK, productPage{
		Items:        items,
		NextCursor:   result.NextCursor,
		NextCursorID: result.NextCursorID,
	})
	return nil
}

func (h *productHandler) CreateProduct(w http.ResponseWriter, r *http.Request) error {
	var params service.CreateProductParams
	if err := decodeJSON(w, r, &params); err != nil {
		return err
	}

	product, err := h.productSvc.CreateProduct(r.Context(), params)
	if err != nil {
		return fmt.Errorf("product service create product: %w", err)
	}

	writeJSON(w, http.StatusCreated, product)
	return nil
}

func (h *productHandler) GetProduct(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r)
	if err != nil {
		return err
	}

	product, err := h.productSvc.GetProduct(r.Context(), id)
	if err != nil {
		return fmt.Errorf("product service get product: %w", err)
	}

	writeJSON(w, http.StatusOK, product)
	return nil
}

func (h *productHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r)
	if err != nil {
		return err
	}

	var params service.UpdateProductParams
	if err := decodeJSON(w, r, &params); err != nil {
		return err
	}

	product, err := h.productSvc.UpdateProduct(r.Context(), id, params)
	if err != nil {
		return fmt.Errorf("product service update product: %w", err)
	}

	writeJSON(w, http.StatusOK, product)
	return nil
}

func (h *productHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r)
	if err != nil {
		return err
	}

	product, err := h.productSvc.DeleteProduct(r.Context(), id)
	if err != nil {
		return fmt.Errorf("product service delete product: %w", err)
	}

	writeJSON(w, http.StatusOK, product)
	return nil
}

func (h *productHandler) WithdrawStock(w http.ResponseWriter, r *http.Request) error {
	params, err := h.stockChangeParams(w, r)
	if err != nil {
		return err
	}

	product, err := h.productSvc.WithdrawStock(r.Context(), params)
	if err != nil {
		return fmt.Errorf("product service withdraw stock: %w", err)
	}

	writeJSON(w, http.StatusOK, product)
	return nil
}

func (h *productHandler) RestockProduct(w http.ResponseWriter, r *http.Request) error {
	params, err := h.stockChangeParams(w, r)
	if err != nil {
		return err
	}

	product, err := h.productSvc.RestockProduct(r.Context(), params)
	if err != nil {
		return fmt.Errorf("product service restock product: %w", err)
	}

	writeJSON(w, http.StatusOK, product)
	return nil
}

func (h *productHandler) stockChangeParams(w http.ResponseWriter, r *http.Request) (service.ChangeStockParams, error) {
	id, err := pathID(r)
	if err != nil {
		return service.ChangeStockParams{}, err
	}

	var req stockChangeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return service.ChangeStockParams{}, err
	}

	return service.ChangeStockParams{
		ProductID: id,
		Amount:    req.Amount,
	}, nil
}
