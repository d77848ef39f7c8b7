package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/autolenis/autolenis-backend/pkg/enums"
)

// AuditLog records one state-changing operation with actor attribution.
// Writes are fire-and-forget; failures never roll back the primary operation.
type AuditLog struct {
	ID         uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ActorID    *uuid.UUID      `gorm:"column:actor_id;type:uuid"`
	ActorRole  enums.ActorRole `gorm:"column:actor_role;type:actor_role;not null"`
	Action     string          `gorm:"column:action;not null"`
	EntityType string          `gorm:"column:entity_type;not null"`
	EntityID   uuid.UUID       `gorm:"column:entity_id;type:uuid;not null;index"`
	Before     json.RawMessage `gorm:"column:before;type:jsonb"`
	After      json.RawMessage `gorm:"column:after;type:jsonb"`
	CreatedAt  time.Time       `gorm:"column:created_at;autoCreateTime"`
}
