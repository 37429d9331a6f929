package http

import (
	"context"
	"net/http"

	"github.com/tuanvumaihuynh/stock-manager/internal/apperr"
)

// HealthChecker reports whether a dependency can serve requests.
type HealthChecker interface {
	IsHealthy(ctx context.Context) (bool, error)
}

type healthResponse struct {
	Status string `json:"status"`
}

type healthHandler struct {
	db HealthChecker
}

func (h *healthHandler) Healthz(w http.ResponseWriter, r *http.Request) error {
	ok, err := h.db.IsHealthy(r.Context())
	if err != nil {
		return apperr.DatabaseUnavailableErr.WrapParent(err)
	}
	if !ok {
		return apperr.DatabaseUnavailableErr
	}

	writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
	return nil
}
