package event

import (
	"context"
	"log/slog"

	"github.com/tuanvumaihuynh/stock-manager/internal/model"
)

func (s *Service) handleHistoryRecordedEvent(ctx context.Context, ev HistoryRecordedEvent) error {
	s.logger.InfoContext(ctx, "history recorded",
		slog.String("entry_id", ev.EntryID),
		slog.String("action", ev.Action),
		slog.String("product_id", ev.ProductID),
		slog.Int64("amount", ev.Amount),
	)

	if s.isLowStock(ev) {
		s.logger.WarnContext(ctx, "product stock is low",
			slog.String("product_id", ev.ProductID),
			slog.String("product_title", ev.ProductTitle),
			slog.Int64("remaining", *ev.Remaining),
			slog.Int64("threshold", s.cfg.LowStockThreshold),
		)
	}

	return nil
}

// isLowStock reports whether ev left its product at or below the threshold.
// Deletions and restocks are not reported.
func (s *Service) isLowStock(ev HistoryRecordedEvent) bool {
	if ev.Remaining == nil {
		return false
	}

	switch model.HistoryAction(ev.Action) {
	case model.HistoryActionAdd, model.HistoryActionWithdraw:
		return *ev.Remaining <= s.cfg.LowStockThreshold
	default:
		return false
	}
}
