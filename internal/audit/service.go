package audit

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/autolenis/autolenis-backend/pkg/db/models"
	"github.com/autolenis/autolenis-backend/pkg/enums"
	"github.com/autolenis/autolenis-backend/pkg/logger"
)

// Entry describes one state-changing operation for the audit trail.
type Entry struct {
	ActorID    *uuid.UUID
	ActorRole  enums.ActorRole
	Action     string
	EntityType string
	EntityID   uuid.UUID
	Before     any
	After      any
}

// Service writes audit rows best-effort. Failures are logged and swallowed so
// they can never roll back or fail the operation being audited.
type Service struct {
	db   *gorm.DB
	logg *logger.Logger
}

// NewService builds an audit sink bound to the provided DB.
func NewService(db *gorm.DB, logg *logger.Logger) *Service {
	return &Service{db: db, logg: logg}
}

// Record persists one audit entry. Always returns; never propagates errors.
func (s *Service) Record(ctx context.Context, entry Entry) {
	if s == nil || s.db == nil {
		return
	}
	row := models.AuditLog{
		ActorID:    entry.ActorID,
		ActorRole:  entry.ActorRole,
		Action:     entry.Action,
		EntityType: entry.EntityType,
		EntityID:   entry.EntityID,
		Before:     marshalBestEffort(entry.Before),
		After:      marshalBestEffort(entry.After),
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil && s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"action":      entry.Action,
			"entity_type": entry.EntityType,
			"entity_id":   entry.EntityID.String(),
		})
		s.logg.Warn(logCtx, "audit write failed")
	}
}

func marshalBestEffort(v any) json.RawMessage {
	if v == nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return data
}
