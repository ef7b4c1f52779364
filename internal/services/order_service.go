package services

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"ideaspark/internal/apperrors"
	"ideaspark/internal/lock"
	"ideaspark/internal/models"
	"ideaspark/internal/repositories"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Errors returned by OrderService state transitions.
var (
	ErrOrderAlreadyPaid      = apperrors.Domain("order already paid")
	ErrOrderCancelled        = apperrors.Domain("order is cancelled")
	ErrPaidOrderNotCancelled = apperrors.Domain("paid order cannot be cancelled")
)

const defaultOrderLockTTL = 10 * time.Second

// OrderService handles business logic related to orders.
type OrderService struct {
	orders  repositories.OrderRepository
	locker  lock.Locker
	events  EventPublisher
	log     *logrus.Logger
	now     func() time.Time
	lockTTL time.Duration
}

// NewOrderService creates a new OrderService. events may be nil.
func NewOrderService(orders repositories.OrderRepository, locker lock.Locker, events EventPublisher, log *logrus.Logger) *OrderService {
	return &OrderService{
		orders:  orders,
		locker:  locker,
		events:  events,
		log:     log,
		now:     time.Now,
		lockTTL: defaultOrderLockTTL,
	}
}

// CreateOrder creates a pending order owned by order.UserID.
func (s *OrderService) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	fields := map[string]string{}
	if order.UserID == "" {
		fields["user_id"] = "user is required"
	}
	// Amounts are stored with two decimals, so the rounded value must be positive.
	amount := math.Round(order.Amount*100) / 100
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		fields["amount"] = "amount must be greater than 0"
	}
	if len(fields) > 0 {
		return nil, apperrors.Validation("invalid order data", fields)
	}

	now := s.now()
	newOrder := &models.Order{
		ID:        uuid.New().String(),
		OrderNo:   newOrderNo(now),
		UserID:    order.UserID,
		Subject:   strings.TrimSpace(order.Subject),
		Amount:    amount,
		Status:    models.OrderStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.orders.Create(ctx, newOrder); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"order_id": newOrder.ID,
		"order_no": newOrder.OrderNo,
		"user_id":  newOrder.UserID,
	}).Info("order created")

	publish(ctx, s.events, s.log, Event{
		Name:       EventOrderCreated,
		ActorID:    newOrder.UserID,
		ObjectType: "order",
		ObjectID:   newOrder.ID,
		Payload: map[string]interface{}{
			"order_no": newOrder.OrderNo,
			"amount":   newOrder.Amount,
			"status":   newOrder.Status,
		},
	})
	return newOrder, nil
}

// newOrderNo builds a 25 character order number such as ORD20240101120000A1B2C3D4.
func newOrderNo(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", ""))[:8]
	return "ORD" + now.Format("20060102150405") + suffix
}

// GetOrder returns an order owned by userID. Orders of other users are
// reported as not found.
func (s *OrderService) GetOrder(ctx context.Context, userID, id string) (*models.Order, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, apperrors.NotFound("order with ID %s not found", id)
	}
	return order, nil
}

// ListOrders returns a page of the user's orders, newest first.
func (s *OrderService) ListOrders(ctx context.Context, userID string, page PageRequest) (PageResult[models.Order], error) {
	orders, total, err := s.orders.ListByUser(ctx, userID, page.options())
	if err != nil {
		return PageResult[models.Order]{}, err
	}
	return PageResult[models.Order]{Items: orders, Total: total}, nil
}

// Pay marks a pending order as paid. Paying an order twice fails with
// ErrOrderAlreadyPaid and leaves it unchanged.
func (s *OrderService) Pay(ctx context.Context, userID, id string) (*models.Order, error) {
	return s.transition(ctx, userID, id, models.OrderStatusPaid)
}

// Cancel marks a pending order as cancelled.
func (s *OrderService) Cancel(ctx context.Context, userID, id string) (*models.Order, error) {
	return s.transition(ctx, userID, id, models.OrderStatusCancelled)
}

// transition moves a pending order to status `to`. The per-order lock
// serializes callers within the lock TTL; the conditional update keeps the
// transition single-shot even if the lock expired.
func (s *OrderService) transition(ctx context.Context, userID, id, to string) (*models.Order, error) {
	release, err := s.locker.Acquire(ctx, "order:"+id, s.lockTTL)
	if err != nil {
		if errors.Is(err, lock.ErrLockHeld) {
			return nil, apperrors.Conflict("order %s is being processed, retry later", id)
		}
		return nil, err
	}
	defer release()

	order, err := s.GetOrder(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := checkTransition(order, to); err != nil {
		return nil, err
	}

	now := s.now()
	changed, err := s.orders.UpdateStatusIf(ctx, id, models.OrderStatusPending, to, now)
	if err != nil {
		return nil, err
	}
	if !changed {
		current, err := s.orders.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if err := checkTransition(current, to); err != nil {
			return nil, err
		}
		return nil, apperrors.Conflict("order %s changed concurrently", id)
	}

	order.Status = to
	order.UpdatedAt = now
	if to == models.OrderStatusPaid {
		order.PaidAt = &now
	}

	name := EventOrderPaid
	if to == models.OrderStatusCancelled {
		name = EventOrderCancelled
	}
	s.log.WithFields(logrus.Fields{
		"order_id": order.ID,
		"order_no": order.OrderNo,
		"status":   order.Status,
	}).Info("order status changed")
	publish(ctx, s.events, s.log, Event{
		Name:       name,
		ActorID:    userID,
		ObjectType: "order",
		ObjectID:   order.ID,
		Payload: map[string]interface{}{
			"order_no": order.OrderNo,
			"amount":   order.Amount,
			"status":   order.Status,
		},
	})
	return order, nil
}

func checkTransition(order *models.Order, to string) error {
	switch {
	case order.IsPaid() && to == models.OrderStatusPaid:
		return ErrOrderAlreadyPaid
	case order.IsPaid():
		return ErrPaidOrderNotCancelled
	case order.Status == models.OrderStatusCancelled:
		return ErrOrderCancelled
	case !order.IsPending():
		return apperrors.Domain("order cannot change from " + order.Status + " to " + to)
	}
	return nil
}
