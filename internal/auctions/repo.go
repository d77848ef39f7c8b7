package auctions

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/autolenis/autolenis-backend/pkg/db/models"
	"github.com/autolenis/autolenis-backend/pkg/enums"
)

// Repository defines persistence operations for auctions and participants.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindAuction(ctx context.Context, auctionID uuid.UUID) (*models.Auction, error)
	ListExpiredOpen(ctx context.Context, cutoff time.Time, limit int) ([]models.Auction, error)
	FindParticipant(ctx context.Context, auctionID, dealerID uuid.UUID) (*models.AuctionParticipant, error)
	MarkParticipantResponded(ctx context.Context, auctionID, dealerID uuid.UUID, at time.Time) error
	UpdateAuctionStatus(ctx context.Context, auctionID uuid.UUID, from, to enums.AuctionStatus) (bool, error)
	FindBuyerProfile(ctx context.Context, buyerID uuid.UUID) (*models.BuyerProfile, error)
	FindDealerProfile(ctx context.Context, dealerID uuid.UUID) (*models.DealerProfile, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an auctions repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindAuction(ctx context.Context, auctionID uuid.UUID) (*models.Auction, error) {
	var auction models.Auction
	err := r.db.WithContext(ctx).Where("id = ?", auctionID).First(&auction).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &auction, nil
}

// ListExpiredOpen returns open auctions whose deadline has passed, oldest
// deadline first, capped at limit.
func (r *repository) ListExpiredOpen(ctx context.Context, cutoff time.Time, limit int) ([]models.Auction, error) {
	var expired []models.Auction
	err := r.db.WithContext(ctx).
		Where("status = ? AND ends_at <= ?", enums.AuctionStatusOpen, cutoff).
		Order("ends_at ASC").
		Limit(limit).
		Find(&expired).Error
	return expired, err
}

func (r *repository) FindParticipant(ctx context.Context, auctionID, dealerID uuid.UUID) (*models.AuctionParticipant, error) {
	var participant models.AuctionParticipant
	err := r.db.WithContext(ctx).
		Where("auction_id = ? AND dealer_id = ?", auctionID, dealerID).
		First(&participant).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &participant, nil
}

func (r *repository) MarkParticipantResponded(ctx context.Context, auctionID, dealerID uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.AuctionParticipant{}).
		Where("auction_id = ? AND dealer_id = ? AND responded_at IS NULL", auctionID, dealerID).
		Update("responded_at", at).Error
}

// UpdateAuctionStatus performs a guarded status flip. Returns false when the
// auction was not in the expected source status; statuses never move backward.
func (r *repository) UpdateAuctionStatus(ctx context.Context, auctionID uuid.UUID, from, to enums.AuctionStatus) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Auction{}).
		Where("id = ? AND status = ?", auctionID, from).
		Update("status", to)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) FindBuyerProfile(ctx context.Context, buyerID uuid.UUID) (*models.BuyerProfile, error) {
	var profile models.BuyerProfile
	err := r.db.WithContext(ctx).Where("user_id = ?", buyerID).First(&profile).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

func (r *repository) FindDealerProfile(ctx context.Context, dealerID uuid.UUID) (*models.DealerProfile, error) {
	var profile models.DealerProfile
	err := r.db.WithContext(ctx).Where("user_id = ?", dealerID).First(&profile).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}
