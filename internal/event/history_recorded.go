package event

import (
	"time"

	"github.com/google/uuid"

	"github.com/tuanvumaihuynh/stock-manager/internal/model"
)

const TopicHistoryRecorded = "history.recorded"

// HistoryRecordedEvent is published for every appended HistoryEntry.
type HistoryRecordedEvent struct {
	EntryID      string    `json:"entry_id"`
	Action       string    `json:"action"`
	ProductID    string    `json:"product_id"`
	ProductTitle string    `json:"product_title"`
	Amount       int64     `json:"amount"`
	Remaining    *int64    `json:"remaining,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

func NewHistoryRecordedEvent(entry model.HistoryEntry) HistoryRecordedEvent {
	return HistoryRecordedEvent{
		EntryID:      entry.ID.String(),
		Action:       string(entry.Action),
		ProductID:    entry.ProductID.String(),
		ProductTitle: entry.ProductTitle,
		Amount:       entry.Amount,
		Remaining:    entry.Remaining,
		Timestamp:    entry.Timestamp,
	}
}

// PartitionKey keeps all events of one product on one partition, in order.
func PartitionKey(productID uuid.UUID) *string {
	key := productID.String()
	return &key
}
