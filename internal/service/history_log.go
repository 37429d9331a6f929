package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/tuanvumaihuynh/stock-manager/internal/event"
	"github.com/tuanvumaihuynh/stock-manager/internal/model"
	"github.com/tuanvumaihuynh/stock-manager/internal/repository"
	"github.com/tuanvumaihuynh/stock-manager/internal/storage/db"
	"github.com/tuanvumaihuynh/stock-manager/pkg/outbox"
)

// historyLog appends HistoryEntry rows together with their outbox message.
// Callers pass the transaction so the entry commits or rolls back with the
// product write that caused it.
type historyLog struct {
	historyRepo   repository.HistoryRepository
	outboxMsgRepo repository.OutboxMsgRepository
}

func (l historyLog) append(ctx context.Context, tx db.DB, entry model.HistoryEntry) (model.HistoryEntry, error) {
	if entry.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return model.HistoryEntry{}, fmt.Errorf("generate uuid v7: %w", err)
		}
		entry.ID = id
	}

	payload, err := json.Marshal(event.NewHistoryRecordedEvent(entry))
	if err != nil {
		return model.HistoryEntry{}, fmt.Errorf("marshal event: %w", err)
	}

	if err := l.historyRepo.
		WithDB(tx).
		CreateHistoryEntry(ctx, entry); err != nil {
		return model.HistoryEntry{}, fmt.Errorf("history repository create history entry: %w", err)
	}

	if err := l.outboxMsgRepo.
		WithDB(tx).
		CreateOutboxMsg(ctx, repository.CreateOutboxMsgParams{
			Topic:        event.TopicHistoryRecorded,
			Headers:      outbox.BuildHeaders(ctx),
			Payload:      payload,
			PartitionKey: event.PartitionKey(entry.ProductID),
		}); err != nil {
		return model.HistoryEntry{}, fmt.Errorf("outbox msg repository create outbox msg: %w", err)
	}

	return entry, nil
}
