package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// HistoryAction is the kind of stock-affecting event a HistoryEntry records.
type HistoryAction string

const (
	HistoryActionAdd      HistoryAction = "add"
	HistoryActionWithdraw HistoryAction = "withdraw"
	HistoryActionIncrease HistoryAction = "increase"
	HistoryActionDelete   HistoryAction = "delete"
)

// Validate implements the enum validation hook.
func (a HistoryAction) Validate() error {
	switch a {
	case HistoryActionAdd, HistoryActionWithdraw, HistoryActionIncrease, HistoryActionDelete:
		return nil
	default:
		return fmt.Errorf("unknown history action: %q", string(a))
	}
}

// HistoryEntry is an append-only audit record. ProductTitle is a snapshot
// taken when the entry was written, so it stays readable after the product
// is deleted.
type HistoryEntry struct {
	ID           uuid.UUID     `json:"id"`
	Action       HistoryAction `json:"action"`
	ProductID    uuid.UUID     `json:"product_id"`
	ProductTitle string        `json:"product_title"`
	Amount       int64         `json:"amount"`
	Remaining    *int64        `json:"remaining"`
	Timestamp    time.Time     `json:"timestamp"`
}
