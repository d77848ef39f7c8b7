package audit

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/autolenis/autolenis-backend/pkg/db/models"
	"github.com/autolenis/autolenis-backend/pkg/enums"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:audit_%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(&models.AuditLog{}); err != nil {
		t.Fatalf("failed to migrate sqlite: %v", err)
	}
	return conn
}

func TestRecordPersistsEntry(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, nil)

	actorID := uuid.New()
	entityID := uuid.New()
	svc.Record(context.Background(), Entry{
		ActorID:    &actorID,
		ActorRole:  enums.RoleAdmin,
		Action:     "offer.validity_override",
		EntityType: "offer",
		EntityID:   entityID,
		Before:     map[string]any{"is_valid": false},
		After:      map[string]any{"is_valid": true},
	})

	var row models.AuditLog
	if err := db.First(&row, "entity_id = ?", entityID).Error; err != nil {
		t.Fatalf("expected audit row: %v", err)
	}
	if row.Action != "offer.validity_override" {
		t.Fatalf("unexpected action %q", row.Action)
	}
	if len(row.Before) == 0 || len(row.After) == 0 {
		t.Fatalf("expected before/after snapshots")
	}
}

func TestRecordSwallowsWriteFailures(t *testing.T) {
	db := newTestDB(t)
	if err := db.Migrator().DropTable(&models.AuditLog{}); err != nil {
		t.Fatalf("drop table: %v", err)
	}
	svc := NewService(db, nil)

	// Must not panic or error even though the table is gone.
	svc.Record(context.Background(), Entry{
		ActorRole:  enums.RoleSystem,
		Action:     "deal.status_changed",
		EntityType: "deal",
		EntityID:   uuid.New(),
	})
}
