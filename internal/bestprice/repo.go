package bestprice

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/autolenis/autolenis-backend/pkg/db/models"
	"github.com/autolenis/autolenis-backend/pkg/enums"
)

// Repository defines persistence operations for ranked options, ranking runs,
// and buyer decision events.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	ReplaceOptions(ctx context.Context, auctionID uuid.UUID, options []models.RankedOption) error
	ListOptions(ctx context.Context, auctionID uuid.UUID) ([]models.RankedOption, error)
	FindOption(ctx context.Context, optionID uuid.UUID) (*models.RankedOption, error)
	FindUndeclinedByOffer(ctx context.Context, auctionID, offerID uuid.UUID) (*models.RankedOption, error)
	NextUndeclined(ctx context.Context, auctionID uuid.UUID, category enums.OptionCategory, afterRank int) (*models.RankedOption, error)
	MarkDeclined(ctx context.Context, optionID uuid.UUID, at time.Time) (bool, error)
	CreateRun(ctx context.Context, run *models.RankingRun) error
	CreateDecision(ctx context.Context, event *models.BuyerDecisionEvent) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a best-price repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// ReplaceOptions swaps the auction's full option set. Callers run this inside
// a transaction so readers never observe the gap between delete and insert.
func (r *repository) ReplaceOptions(ctx context.Context, auctionID uuid.UUID, options []models.RankedOption) error {
	if err := r.db.WithContext(ctx).
		Where("auction_id = ?", auctionID).
		Delete(&models.RankedOption{}).Error; err != nil {
		return err
	}
	if len(options) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&options).Error
}

func (r *repository) ListOptions(ctx context.Context, auctionID uuid.UUID) ([]models.RankedOption, error) {
	var options []models.RankedOption
	err := r.db.WithContext(ctx).
		Where("auction_id = ?", auctionID).
		Order("category ASC").
		Order("rank ASC").
		Find(&options).Error
	return options, err
}

func (r *repository) FindOption(ctx context.Context, optionID uuid.UUID) (*models.RankedOption, error) {
	var option models.RankedOption
	err := r.db.WithContext(ctx).Where("id = ?", optionID).First(&option).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &option, nil
}

// FindUndeclinedByOffer returns the offer's best surviving placement across
// all categories, lowest rank first.
func (r *repository) FindUndeclinedByOffer(ctx context.Context, auctionID, offerID uuid.UUID) (*models.RankedOption, error) {
	var option models.RankedOption
	err := r.db.WithContext(ctx).
		Where("auction_id = ? AND offer_id = ? AND declined = ?", auctionID, offerID, false).
		Order("rank ASC").
		First(&option).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &option, nil
}

func (r *repository) NextUndeclined(ctx context.Context, auctionID uuid.UUID, category enums.OptionCategory, afterRank int) (*models.RankedOption, error) {
	var option models.RankedOption
	err := r.db.WithContext(ctx).
		Where("auction_id = ? AND category = ? AND declined = ? AND rank > ?", auctionID, category, false, afterRank).
		Order("rank ASC").
		First(&option).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &option, nil
}

// MarkDeclined flips an undeclined option. Returns false when the option was
// already declined, so double-declines surface as conflicts.
func (r *repository) MarkDeclined(ctx context.Context, optionID uuid.UUID, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.RankedOption{}).
		Where("id = ? AND declined = ?", optionID, false).
		Updates(map[string]any{"declined": true, "declined_at": at})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) CreateRun(ctx context.Context, run *models.RankingRun) error {
	return r.db.WithContext(ctx).Create(run).Error
}

func (r *repository) CreateDecision(ctx context.Context, event *models.BuyerDecisionEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}
