package services_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"ideaspark/internal/apperrors"
	"ideaspark/internal/logger"
	"ideaspark/internal/models"
	"ideaspark/internal/repositories"
	"ideaspark/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestLogService_HandleMessage(t *testing.T) {
	mockRepo := new(MockAuditLogRepository)
	logService := services.NewLogService(mockRepo, logger.Discard())

	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	body, err := json.Marshal(services.Event{
		Name:       services.EventOrderPaid,
		ActorID:    "user-1",
		ObjectType: "order",
		ObjectID:   "order-1",
		Payload:    map[string]interface{}{"amount": 10.5},
		OccurredAt: at,
	})
	require.NoError(t, err)

	mockRepo.On("Create", mock.Anything, mock.MatchedBy(func(e *models.AuditLog) bool {
		return e.Event == services.EventOrderPaid && e.ObjectID == "order-1" &&
			e.Payload == `{"amount":10.5}` && e.CreatedAt.Equal(at)
	})).Return(nil).Once()

	require.NoError(t, logService.HandleMessage(services.EventOrderPaid, body))
	mockRepo.AssertExpectations(t)

	assert.Error(t, logService.HandleMessage("order.paid", []byte("not json")))
}

func TestLogService_CreateLog_RequiresEvent(t *testing.T) {
	logService := services.NewLogService(new(MockAuditLogRepository), logger.Discard())
	err := logService.CreateLog(context.Background(), &models.AuditLog{})
	assert.True(t, apperrors.Is(err, apperrors.KindValidation))
}

func TestLogService_ListLogs(t *testing.T) {
	mockRepo := new(MockAuditLogRepository)
	logService := services.NewLogService(mockRepo, logger.Discard())
	mockRepo.On("List", mock.Anything, repositories.ListOptions{Offset: 10, Limit: 5}).
		Return([]models.AuditLog{{ID: "l-1"}}, int64(11), nil).Once()

	page, err := logService.ListLogs(context.Background(), services.PageRequest{Page: 3, PageSize: 5})
	require.NoError(t, err)
	assert.Equal(t, int64(11), page.Total)
	assert.Len(t, page.Items, 1)
}

func TestMQEventPublisher_Publish(t *testing.T) {
	mq := new(MockMessagePublisher)
	publisher := services.NewMQEventPublisher(mq)
	mq.On("Publish", services.EventUserCreated, mock.MatchedBy(func(body []byte) bool {
		var e services.Event
		return json.Unmarshal(body, &e) == nil && e.ObjectID == "user-1"
	})).Return(nil).Once()

	err := publisher.Publish(context.Background(), services.Event{Name: services.EventUserCreated, ObjectID: "user-1"})
	require.NoError(t, err)
	mq.AssertExpectations(t)
}
