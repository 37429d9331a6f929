package apperr

import "github.com/tuanvumaihuynh/stock-manager/pkg/zerror"

const (
	ValidationErrorCode   = "VALIDATION_FAILED"
	InvalidParamErrorCode = "INVALID_PARAMETER"
)

var (
	ValidationErr   = zerror.NewValidationFailed(ValidationErrorCode, "validation error")
	InvalidParamErr = zerror.NewBadRequest(InvalidParamErrorCode, "invalid request parameter")
	// MalformedBodyErr is returned when a request body does not decode into
	// the expected shape, such as a non-integer quantity.
	MalformedBodyErr = zerror.NewBadRequest("MALFORMED_BODY", "malformed request body")

	NothingToUpdateErr   = zerror.NewBadRequest("NOTHING_TO_UPDATE", "no fields to update")
	InsufficientStockErr = zerror.NewBadRequest("INSUFFICIENT_STOCK", "withdraw amount exceeds stock on hand")

	ProductNotFoundErr  = zerror.NewNotFound("PRODUCT_NOT_FOUND", "product not found")
	CategoryNotFoundErr = zerror.NewNotFound("CATEGORY_NOT_FOUND", "category not found")

	// UnknownCategoryErr is returned when a product write references a
	// category that does not exist.
	UnknownCategoryErr = zerror.NewUnprocessableEntity("UNKNOWN_CATEGORY", "referenced category does not exist")
	CategoryInUseErr   = zerror.NewConflict("CATEGORY_IN_USE", "category is referenced by products")

	DatabaseUnavailableErr = zerror.NewServiceUnavailable("DATABASE_UNAVAILABLE", "database is unavailable")
)
