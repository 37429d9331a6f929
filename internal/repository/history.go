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

type ListHistoryParams struct {
	// From and To bound the entry timestamp, inclusive.
	From      *time.Time
	To        *time.Time
	ProductID *uuid.UUID
}

// HistoryRepository is append-only: entries are never updated or removed.
type HistoryRepository interface {
	WithDB(db db.DB) HistoryRepository
	CreateHistoryEntry(ctx context.Context, entry model.HistoryEntry) error
	ListHistory(ctx context.Context, params ListHistoryParams) ([]model.HistoryEntry, error)
}

type historyRepository struct {
	db db.DB
}

func NewHistoryRepository(db db.DB) HistoryRepository {
	return &historyRepository{db: db}
}

func (r historyRepository) WithDB(db db.DB) HistoryRepository {
	return &historyRepository{db: db}
}

type historyRow struct {
	ID           uuid.UUID `db:"id"`
	Action       string    `db:"action"`
	ProductID    uuid.UUID `db:"product_id"`
	ProductTitle string    `db:"product_title"`
	Amount       int64     `db:"amount"`
	Remaining    *int64    `db:"remaining"`
	Timestamp    time.Time `db:"timestamp"`
}

func (r historyRepository) CreateHistoryEntry(ctx context.Context, entry model.HistoryEntry) error {
	if _, err := r.db.Exec(ctx, `
		INSERT INTO history_entries (id, action, product_id, product_title, amount, remaining, timestamp)
		VALUES (@id, @action, @product_id, @product_title, @amount, @remaining, @timestamp)
	`, pgx.NamedArgs{
		"id":            entry.ID,
		"action":        string(entry.Action),
		"product_id":    entry.ProductID,
		"product_title": entry.ProductTitle,
		"amount":        entry.Amount,
		"remaining":     entry.Remaining,
		"timestamp":     entry.Timestamp,
	}); err != nil {
		return fmt.Errorf("insert history entry: %w", err)
	}

	return nil
}

func (r historyRepository) ListHistory(ctx context.Context, params ListHistoryParams) ([]model.HistoryEntry, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, action, product_id, product_title, amount, remaining, timestamp
		FROM history_entries
		WHERE (@from::timestamptz IS NULL OR timestamp >= @from)
			AND (@to::timestamptz IS NULL OR timestamp <= @to)
			AND (@product_id::uuid IS NULL OR product_id = @product_id)
		ORDER BY timestamp DESC, id DESC
	`, pgx.NamedArgs{
		"from":       params.From,
		"to":         params.To,
		"product_id": params.ProductID,
	})
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}

	historyRows, err := pgx.CollectRows(rows, pgx.RowToStructByName[historyRow])
	if err != nil {
		return nil, fmt.Errorf("collect history: %w", err)
	}

	entries := make([]model.HistoryEntry, 0, len(historyRows))
	for _, row := range historyRows {
		entries = append(entries, model.HistoryEntry{
			ID:           row.ID,
			Action:       model.HistoryAction(row.Action),
			ProductID:    row.ProductID,
			ProductTitle: row.ProductTitle,
			Amount:       row.Amount,
			Remaining:    row.Remaining,
			Timestamp:    row.Timestamp,
		})
	}

	return entries, nil
}
