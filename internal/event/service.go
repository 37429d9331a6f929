package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/tuanvumaihuynh/stock-manager/internal/config"
	"github.com/tuanvumaihuynh/stock-manager/internal/storage/mq"
)

// Service is the event service.
type Service struct {
	cfg        config.Event
	logger     *slog.Logger
	mqConsumer mq.Consumer
}

// New creates a new event service.
func New(
	cfg config.Event,
	logger *slog.Logger,
	mqConsumer mq.Consumer,
) *Service {
	return &Service{
		cfg:        cfg,
		logger:     logger.With(slog.String("service", "event")),
		mqConsumer: mqConsumer,
	}
}

type CleanupFunc func()

func (s *Service) Run(ctx context.Context) (CleanupFunc, error) {
	if err := s.mqConsumer.RegisterHandler(TopicHistoryRecorded, s.handleHistoryRecordedMsg); err != nil {
		return nil, fmt.Errorf("register history recorded event handler: %w", err)
	}

	mqCleanup, err := s.mqConsumer.Run(ctx)
	if err != nil {
		return nil, fmt.Errorf("run mq consumer: %w", err)
	}

	cleanup := func() {
		mqCleanup()
	}

	return cleanup, nil
}

func (s *Service) handleHistoryRecordedMsg(ctx context.Context, msg mq.Message) error {
	var ev HistoryRecordedEvent
	if err := json.Unmarshal(msg.Payload, &ev); err != nil {
		return fmt.Errorf("unmarshal history recorded event: %w", err)
	}

	if err := s.handleHistoryRecordedEvent(ctx, ev); err != nil {
		return fmt.Errorf("handle history recorded event: %w", err)
	}

	return nil
}
