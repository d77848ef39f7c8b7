package offers

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/autolenis/autolenis-backend/pkg/db/models"
	"github.com/autolenis/autolenis-backend/pkg/pagination"
)

// Repository defines persistence operations for offers and financing options.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateOffer(ctx context.Context, offer *models.Offer) (*models.Offer, error)
	FindOffer(ctx context.Context, offerID uuid.UUID) (*models.Offer, error)
	FindActiveByAuctionAndDealer(ctx context.Context, auctionID, dealerID uuid.UUID) (*models.Offer, error)
	ListByAuction(ctx context.Context, auctionID uuid.UUID, params pagination.Params) (*OfferList, error)
	ListRankableByAuction(ctx context.Context, auctionID uuid.UUID) ([]models.Offer, error)
	CountActiveByAuction(ctx context.Context, auctionID uuid.UUID) (int64, error)
	UpdateOffer(ctx context.Context, offerID uuid.UUID, updates map[string]any) error
	WithdrawOffer(ctx context.Context, offerID, dealerID uuid.UUID) (bool, error)
}
