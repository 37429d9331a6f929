package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tuanvumaihuynh/stock-manager/internal/apperr"
	"github.com/tuanvumaihuynh/stock-manager/internal/model"
	"github.com/tuanvumaihuynh/stock-manager/internal/repository"
	"github.com/tuanvumaihuynh/stock-manager/internal/storage/db"
	"github.com/tuanvumaihuynh/stock-manager/pkg/validator"
)

type ListHistoryParams struct {
	From      *time.Time
	To        *time.Time
	ProductID *uuid.UUID
}

type RecordEntryParams struct {
	Action       model.HistoryAction `json:"action" validate:"enum"`
	ProductID    uuid.UUID           `json:"product_id" validate:"required"`
	ProductTitle string              `json:"product_title" validate:"notblank"`
	Amount       int64               `json:"amount" validate:"gte=0"`
	Remaining    *int64              `json:"remaining" validate:"omitempty,gte=0"`
}

type LogDeletionParams struct {
	ProductID    uuid.UUID `json:"product_id" validate:"required"`
	ProductTitle string    `json:"product_title" validate:"notblank"`
}

type HistoryService interface {
	// ListHistory returns entries newest first.
	ListHistory(ctx context.Context, params ListHistoryParams) ([]model.HistoryEntry, error)
	RecordEntry(ctx context.Context, params RecordEntryParams) (model.HistoryEntry, error)
	// LogDeletion records that a product was removed outside this service.
	LogDeletion(ctx context.Context, params LogDeletionParams) (model.HistoryEntry, error)
}

type historyService struct {
	opts        options
	db          db.DB
	validator   validator.Validator
	historyRepo repository.HistoryRepository
	history     historyLog
}

func NewHistoryService(
	db db.DB,
	validator validator.Validator,
	historyRepo repository.HistoryRepository,
	outboxMsgRepo repository.OutboxMsgRepository,
	opts ...Option,
) HistoryService {
	return &historyService{
		opts:        newOptions(opts),
		db:          db,
		validator:   validator,
		historyRepo: historyRepo,
		history: historyLog{
			historyRepo:   historyRepo,
			outboxMsgRepo: outboxMsgRepo,
		},
	}
}

func (s *historyService) ListHistory(ctx context.Context, params ListHistoryParams) ([]model.HistoryEntry, error) {
	if params.From != nil && params.To != nil && params.From.After(*params.To) {
		return nil, apperr.InvalidParamErr.WithMsgf("from (%s) is after to (%s)",
			params.From.Format(time.RFC3339), params.To.Format(time.RFC3339))
	}

	entries, err := s.historyRepo.ListHistory(ctx, repository.ListHistoryParams{
		From:      params.From,
		To:        params.To,
		ProductID: params.ProductID,
	})
	if err != nil {
		return nil, fmt.Errorf("history repository list history: %w", err)
	}

	return entries, nil
}

func (s *historyService) RecordEntry(ctx context.Context, params RecordEntryParams) (model.HistoryEntry, error) {
	if err := s.validator.Validate(params); err != nil {
		return model.HistoryEntry{}, fmt.Errorf("validate params: %w", err)
	}

	return s.record(ctx, model.HistoryEntry{
		Action:       params.Action,
		ProductID:    params.ProductID,
		ProductTitle: params.ProductTitle,
		Amount:       params.Amount,
		Remaining:    params.Remaining,
	})
}

func (s *historyService) LogDeletion(ctx context.Context, params LogDeletionParams) (model.HistoryEntry, error) {
	if err := s.validator.Validate(params); err != nil {
		return model.HistoryEntry{}, fmt.Errorf("validate params: %w", err)
	}

	return s.record(ctx, model.HistoryEntry{
		Action:       model.HistoryActionDelete,
		ProductID:    params.ProductID,
		ProductTitle: params.ProductTitle,
	})
}

func (s *historyService) record(ctx context.Context, entry model.HistoryEntry) (model.HistoryEntry, error) {
	entry.Timestamp = s.opts.timestamp()

	var recorded model.HistoryEntry
	if err := s.db.WithTx(ctx, func(db db.DB) error {
		var err error
		recorded, err = s.history.append(ctx, db, entry)
		return err
	}); err != nil {
		return model.HistoryEntry{}, fmt.Errorf("db with tx: %w", err)
	}

	return recorded, nil
}
