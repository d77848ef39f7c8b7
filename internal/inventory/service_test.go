package inventory

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/autolenis/autolenis-backend/pkg/db/models"
	"github.com/autolenis/autolenis-backend/pkg/enums"
	pkgerrors "github.com/autolenis/autolenis-backend/pkg/errors"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:inventory_%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(&models.InventoryItem{}); err != nil {
		t.Fatalf("failed to migrate sqlite: %v", err)
	}
	return conn
}

func seedItem(t *testing.T, db *gorm.DB, status enums.InventoryStatus) models.InventoryItem {
	t.Helper()
	item := models.InventoryItem{
		ID:       uuid.New(),
		DealerID: uuid.New(),
		Status:   status,
		Year:     2022,
		Make:     "Toyota",
		Model:    "Camry",
		Mileage:  12000,
	}
	if err := db.Create(&item).Error; err != nil {
		t.Fatalf("seed item: %v", err)
	}
	return item
}

func TestReserveFlipsAvailableItem(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	item := seedItem(t, db, enums.InventoryStatusAvailable)

	if err := svc.Reserve(context.Background(), nil, item.ID); err != nil {
		t.Fatalf("reserve failed: %v", err)
	}

	var got models.InventoryItem
	if err := db.First(&got, "id = ?", item.ID).Error; err != nil {
		t.Fatalf("reload item: %v", err)
	}
	if got.Status != enums.InventoryStatusReserved {
		t.Fatalf("expected reserved, got %s", got.Status)
	}
}

func TestReserveRejectsNonAvailableItem(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	item := seedItem(t, db, enums.InventoryStatusReserved)

	err := svc.Reserve(context.Background(), nil, item.ID)
	if err == nil {
		t.Fatal("expected state conflict")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected STATE_CONFLICT, got %v", err)
	}
}

func TestReleaseReturnsReservedItem(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	item := seedItem(t, db, enums.InventoryStatusReserved)

	if err := svc.Release(context.Background(), nil, item.ID); err != nil {
		t.Fatalf("release failed: %v", err)
	}

	var got models.InventoryItem
	if err := db.First(&got, "id = ?", item.ID).Error; err != nil {
		t.Fatalf("reload item: %v", err)
	}
	if got.Status != enums.InventoryStatusAvailable {
		t.Fatalf("expected available, got %s", got.Status)
	}
}

func TestReleaseRejectsAvailableItem(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	item := seedItem(t, db, enums.InventoryStatusAvailable)

	if err := svc.Release(context.Background(), nil, item.ID); err == nil {
		t.Fatal("expected state conflict releasing non-reserved item")
	}
}

func TestMarkSoldRequiresReservation(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	item := seedItem(t, db, enums.InventoryStatusReserved)

	if err := svc.MarkSold(context.Background(), nil, item.ID); err != nil {
		t.Fatalf("mark sold failed: %v", err)
	}
	if err := svc.MarkSold(context.Background(), nil, item.ID); err == nil {
		t.Fatal("expected second mark sold to fail")
	}
}
