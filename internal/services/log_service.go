package services

import (
	"context"
	"encoding/json"
	"fmt"

	"ideaspark/internal/apperrors"
	"ideaspark/internal/models"
	"ideaspark/internal/repositories"

	"github.com/sirupsen/logrus"
)

// LogService records domain events in the audit log.
type LogService struct {
	repo repositories.AuditLogRepository
	log  *logrus.Logger
}

func NewLogService(repo repositories.AuditLogRepository, log *logrus.Logger) *LogService {
	return &LogService{repo: repo, log: log}
}

// CreateLog stores a single audit log entry.
func (s *LogService) CreateLog(ctx context.Context, entry *models.AuditLog) error {
	if entry.Event == "" {
		return apperrors.Field("event", "event is required")
	}
	return s.repo.Create(ctx, entry)
}

// RecordEvent converts an event into an audit log entry and stores it.
func (s *LogService) RecordEvent(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload of %s: %w", event.Name, err)
	}
	entry := &models.AuditLog{
		Event:      event.Name,
		ActorID:    event.ActorID,
		ObjectType: event.ObjectType,
		ObjectID:   event.ObjectID,
		Payload:    string(payload),
	}
	if !event.OccurredAt.IsZero() {
		entry.CreatedAt = event.OccurredAt
	}
	return s.CreateLog(ctx, entry)
}

// ListLogs returns a page of audit log entries, newest first.
func (s *LogService) ListLogs(ctx context.Context, page PageRequest) (PageResult[models.AuditLog], error) {
	entries, total, err := s.repo.List(ctx, page.options())
	if err != nil {
		return PageResult[models.AuditLog]{}, err
	}
	return PageResult[models.AuditLog]{Items: entries, Total: total}, nil
}

// HandleMessage decodes a broker delivery and records it. It matches the
// rabbitmq.Handler signature.
func (s *LogService) HandleMessage(routingKey string, body []byte) error {
	var event Event
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("failed to decode %s event: %w", routingKey, err)
	}
	if event.Name == "" {
		event.Name = routingKey
	}
	return s.RecordEvent(context.Background(), event)
}

// Publish lets LogService act as an EventPublisher that writes synchronously,
// used when no broker is configured.
func (s *LogService) Publish(ctx context.Context, event Event) error {
	return s.RecordEvent(ctx, event)
}
