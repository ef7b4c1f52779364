package serializers

import (
	"strings"

	"ideaspark/internal/models"
)

// OrderCreate is the payload for placing an order.
type OrderCreate struct {
	Subject string  `json:"subject" validate:"omitempty,max=200"`
	Amount  float64 `json:"amount" validate:"required,gt=0"`
}

func (s *OrderCreate) Validate() error {
	s.Subject = strings.TrimSpace(s.Subject)
	return Validate(s)
}

// ToModel returns a pending order owned by userID.
func (s *OrderCreate) ToModel(userID string) *models.Order {
	return &models.Order{
		UserID:  userID,
		Subject: s.Subject,
		Amount:  s.Amount,
		Status:  models.OrderStatusPending,
	}
}
