package deals

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/autolenis/autolenis-backend/pkg/db/models"
	"github.com/autolenis/autolenis-backend/pkg/enums"
)

// Repository defines persistence operations for deals and their status history.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateDeal(ctx context.Context, deal *models.Deal) (*models.Deal, error)
	FindDeal(ctx context.Context, dealID uuid.UUID) (*models.Deal, error)
	FindActiveByAuction(ctx context.Context, auctionID uuid.UUID) (*models.Deal, error)
	ListByBuyer(ctx context.Context, buyerID uuid.UUID) ([]models.Deal, error)
	UpdateDealStatus(ctx context.Context, dealID uuid.UUID, from, to enums.DealStatus, updates map[string]any) (bool, error)
	UpdateDeal(ctx context.Context, dealID uuid.UUID, updates map[string]any) error
	AppendHistory(ctx context.Context, entry *models.DealStatusHistory) error
	ListHistory(ctx context.Context, dealID uuid.UUID) ([]models.DealStatusHistory, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a deals repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateDeal(ctx context.Context, deal *models.Deal) (*models.Deal, error) {
	if err := r.db.WithContext(ctx).Create(deal).Error; err != nil {
		return nil, err
	}
	return deal, nil
}

func (r *repository) FindDeal(ctx context.Context, dealID uuid.UUID) (*models.Deal, error) {
	var deal models.Deal
	err := r.db.WithContext(ctx).Where("id = ?", dealID).First(&deal).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &deal, nil
}

func (r *repository) FindActiveByAuction(ctx context.Context, auctionID uuid.UUID) (*models.Deal, error) {
	var deal models.Deal
	err := r.db.WithContext(ctx).
		Where("auction_id = ? AND status NOT IN ?", auctionID,
			[]enums.DealStatus{enums.DealStatusCompleted, enums.DealStatusCancelled}).
		First(&deal).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &deal, nil
}

func (r *repository) ListByBuyer(ctx context.Context, buyerID uuid.UUID) ([]models.Deal, error) {
	var deals []models.Deal
	err := r.db.WithContext(ctx).
		Where("buyer_id = ?", buyerID).
		Order("created_at DESC").
		Find(&deals).Error
	return deals, err
}

// UpdateDealStatus performs a guarded status flip with optional extra column
// updates in the same statement. Returns false when the deal was not in the
// expected source status, which means a concurrent writer got there first.
func (r *repository) UpdateDealStatus(ctx context.Context, dealID uuid.UUID, from, to enums.DealStatus, updates map[string]any) (bool, error) {
	if updates == nil {
		updates = map[string]any{}
	}
	updates["status"] = to
	result := r.db.WithContext(ctx).
		Model(&models.Deal{}).
		Where("id = ? AND status = ?", dealID, from).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) UpdateDeal(ctx context.Context, dealID uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Deal{}).
		Where("id = ?", dealID).
		Updates(updates).Error
}

func (r *repository) AppendHistory(ctx context.Context, entry *models.DealStatusHistory) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) ListHistory(ctx context.Context, dealID uuid.UUID) ([]models.DealStatusHistory, error) {
	var entries []models.DealStatusHistory
	err := r.db.WithContext(ctx).
		Where("deal_id = ?", dealID).
		Order("created_at ASC").
		Find(&entries).Error
	return entries, err
}
