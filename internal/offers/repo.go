package offers

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/autolenis/autolenis-backend/pkg/db/models"
	"github.com/autolenis/autolenis-backend/pkg/enums"
	"github.com/autolenis/autolenis-backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds an offers repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// CreateOffer persists the offer and its financing options in one write via
// the gorm association, so a partial offer can never land.
func (r *repository) CreateOffer(ctx context.Context, offer *models.Offer) (*models.Offer, error) {
	if err := r.db.WithContext(ctx).Create(offer).Error; err != nil {
		return nil, err
	}
	return offer, nil
}

func (r *repository) FindOffer(ctx context.Context, offerID uuid.UUID) (*models.Offer, error) {
	var offer models.Offer
	err := r.db.WithContext(ctx).
		Preload("FinancingOptions").
		Where("id = ?", offerID).
		First(&offer).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &offer, nil
}

func (r *repository) FindActiveByAuctionAndDealer(ctx context.Context, auctionID, dealerID uuid.UUID) (*models.Offer, error) {
	var offer models.Offer
	err := r.db.WithContext(ctx).
		Where("auction_id = ? AND dealer_id = ? AND status <> ?", auctionID, dealerID, enums.OfferStatusWithdrawn).
		First(&offer).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &offer, nil
}

func (r *repository) ListByAuction(ctx context.Context, auctionID uuid.UUID, params pagination.Params) (*OfferList, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	query := r.db.WithContext(ctx).
		Preload("FinancingOptions").
		Where("auction_id = ?", auctionID).
		Order("created_at ASC").
		Order("id ASC").
		Limit(limit)

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	if cursor != nil {
		query = query.Where("(created_at, id) > (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var rows []models.Offer
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	list := &OfferList{Offers: rows}
	pageSize := pagination.NormalizeLimit(params.Limit)
	if len(rows) > pageSize {
		list.Offers = rows[:pageSize]
		last := list.Offers[pageSize-1]
		list.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	return list, nil
}

// ListRankableByAuction returns the non-withdrawn valid offers with their
// financing options, the input universe for best-price computation.
func (r *repository) ListRankableByAuction(ctx context.Context, auctionID uuid.UUID) ([]models.Offer, error) {
	var rows []models.Offer
	err := r.db.WithContext(ctx).
		Preload("FinancingOptions").
		Where("auction_id = ? AND status <> ? AND is_valid = ?", auctionID, enums.OfferStatusWithdrawn, true).
		Order("submitted_at ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) CountActiveByAuction(ctx context.Context, auctionID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Offer{}).
		Where("auction_id = ? AND status <> ?", auctionID, enums.OfferStatusWithdrawn).
		Count(&count).Error
	return count, err
}

func (r *repository) UpdateOffer(ctx context.Context, offerID uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Offer{}).
		Where("id = ?", offerID).
		Updates(updates).Error
}

// WithdrawOffer flips an active offer owned by the dealer to withdrawn.
// Returns false when no matching active offer exists.
func (r *repository) WithdrawOffer(ctx context.Context, offerID, dealerID uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Offer{}).
		Where("id = ? AND dealer_id = ? AND status = ?", offerID, dealerID, enums.OfferStatusActive).
		Update("status", enums.OfferStatusWithdrawn)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
