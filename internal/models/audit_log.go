package models

import "time"

// AuditLog records a domain event, e.g. an order being paid.
type AuditLog struct {
	ID         string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Event      string    `json:"event" gorm:"type:varchar(100);index;not null"`
	ActorID    string    `json:"actor_id" gorm:"type:varchar(36);index"`
	ObjectType string    `json:"object_type" gorm:"type:varchar(50)"`
	ObjectID   string    `json:"object_id" gorm:"type:varchar(36)"`
	Payload    string    `json:"payload" gorm:"type:text"`
	CreatedAt  time.Time `json:"created_at" gorm:"index"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}

// All returns every model managed by the schema migration.
func All() []interface{} {
	return []interface{}{&User{}, &UserProfile{}, &Order{}, &AuditLog{}}
}
