package http

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/google/uuid"

	"github.com/tuanvumaihuynh/stock-manager/internal/model"
	"github.com/tuanvumaihuynh/stock-manager/internal/service"
)

// historyCSVRow is one line of the history export.
type historyCSVRow struct {
	Timestamp    string `csv:"timestamp"`
	Action       string `csv:"action"`
	ProductID    string `csv:"product_id"`
	ProductTitle string `csv:"product_title"`
	Amount       int64  `csv:"amount"`
	Remaining    string `csv:"remaining"`
	ID           string `csv:"id"`
}

func newHistoryCSVRow(e model.HistoryEntry) historyCSVRow {
	row := historyCSVRow{
		Timestamp:    e.Timestamp.UTC().Format(time.RFC3339Nano),
		Action:       string(e.Action),
		ProductID:    e.ProductID.String(),
		ProductTitle: e.ProductTitle,
		Amount:       e.Amount,
		ID:           e.ID.String(),
	}
	if e.Remaining != nil {
		row.Remaining = strconv.FormatInt(*e.Remaining, 10)
	}
	return row
}

type historyHandler struct {
	historySvc service.HistoryService
}

func newHistoryHandler(historySvc service.HistoryService) *historyHandler {
	return &historyHandler{
		historySvc: historySvc,
	}
}

func (h *historyHandler) ListHistory(w http.ResponseWriter, r *http.Request) error {
	entries, err := h.listHistory(r)
	if err != nil {
		return err
	}

	if entries == nil {
		entries = []model.HistoryEntry{}
	}

	writeJSON(w, http.StatusOK, entries)
	return nil
}

func (h *historyHandler) ExportHistory(w http.ResponseWriter, r *http.Request) error {
	entries, err := h.listHistory(r)
	if err != nil {
		return err
	}

	rows := make([]historyCSVRow, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, newHistoryCSVRow(e))
	}

	csv, err := gocsv.MarshalString(rows)
	if err != nil {
		return fmt.Errorf("marshal history csv: %w", err)
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="history.csv"`)
	w.WriteHeader(http.StatusOK)
	//nolint:errcheck
	w.Write([]byte(csv))
	return nil
}

func (h *historyHandler) RecordEntry(w http.ResponseWriter, r *http.Request) error {
	var params service.RecordEntryParams
	if err := decodeJSON(w, r, &params); err != nil {
		return err
	}

	entry, err := h.historySvc.RecordEntry(r.Context(), params)
	if err != nil {
		return fmt.Errorf("history service record entry: %w", err)
	}

	writeJSON(w, http.StatusCreated, entry)
	return nil
}

func (h *historyHandler) LogDeletion(w http.ResponseWriter, r *http.Request) error {
	var params service.LogDeletionParams
	if err := decodeJSON(w, r, &params); err != nil {
		return err
	}

	entry, err := h.historySvc.LogDeletion(r.Context(), params)
	if err != nil {
		return fmt.Errorf("history service log deletion: %w", err)
	}

	writeJSON(w, http.StatusCreated, entry)
	return nil
}

func (h *historyHandler) listHistory(r *http.Request) ([]model.HistoryEntry, error) {
	query := r.URL.Query()

	from, err := queryTime(query, "from")
	if err != nil {
		return nil, err
	}
	to, err := queryTime(query, "to")
	if err != nil {
		return nil, err
	}

	var productID *uuid.UUID
	if err := queryParam(query, "product_id", &productID); err != nil {
		return nil, err
	}

	entries, err := h.historySvc.ListHistory(r.Context(), service.ListHistoryParams{
		From:      from,
		To:        to,
		ProductID: productID,
	})
	if err != nil {
		return nil, fmt.Errorf("history service list history: %w", err)
	}

	return entries, nil
}
