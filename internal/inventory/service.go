package inventory

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/autolenis/autolenis-backend/pkg/db/models"
	"github.com/autolenis/autolenis-backend/pkg/enums"
	pkgerrors "github.com/autolenis/autolenis-backend/pkg/errors"
)

// Service moves vehicles between availability states with guarded updates so
// concurrent accepts cannot double-reserve the same unit.
type Service struct {
	db *gorm.DB
}

// NewService builds an inventory service bound to the provided DB.
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

func (s *Service) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return s.db
}

// Find loads one inventory item by id. Returns nil when absent.
func (s *Service) Find(ctx context.Context, itemID uuid.UUID) (*models.InventoryItem, error) {
	var item models.InventoryItem
	err := s.db.WithContext(ctx).Where("id = ?", itemID).First(&item).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

// Reserve flips an available item to reserved. The WHERE clause carries the
// status guard; zero rows affected means another deal got there first.
func (s *Service) Reserve(ctx context.Context, tx *gorm.DB, itemID uuid.UUID) error {
	result := s.conn(tx).WithContext(ctx).
		Model(&models.InventoryItem{}).
		Where("id = ? AND status = ?", itemID, enums.InventoryStatusAvailable).
		Update("status", enums.InventoryStatusReserved)
	if result.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, result.Error, "reserve inventory item")
	}
	if result.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "inventory item is not available")
	}
	return nil
}

// Release returns a reserved item to available, invoked when a deal cancels.
func (s *Service) Release(ctx context.Context, tx *gorm.DB, itemID uuid.UUID) error {
	result := s.conn(tx).WithContext(ctx).
		Model(&models.InventoryItem{}).
		Where("id = ? AND status = ?", itemID, enums.InventoryStatusReserved).
		Update("status", enums.InventoryStatusAvailable)
	if result.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, result.Error, "release inventory item")
	}
	if result.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "inventory item is not reserved")
	}
	return nil
}

// MarkSold flips a reserved item to sold when a deal completes.
func (s *Service) MarkSold(ctx context.Context, tx *gorm.DB, itemID uuid.UUID) error {
	result := s.conn(tx).WithContext(ctx).
		Model(&models.InventoryItem{}).
		Where("id = ? AND status = ?", itemID, enums.InventoryStatusReserved).
		Update("status", enums.InventoryStatusSold)
	if result.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, result.Error, "mark inventory item sold")
	}
	if result.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "inventory item is not reserved")
	}
	return nil
}
