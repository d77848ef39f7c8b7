package models

import (
	"time"

	"github.com/google/uuid"

	dbtypes "github.com/autolenis/autolenis-backend/pkg/db/types"
	"github.com/autolenis/autolenis-backend/pkg/enums"
)

// RankedOption is one persisted recommendation for a closed auction. Ranks are
// dense per category starting at 1; recomputation replaces the full set for an
// auction in one transaction. The snapshot is frozen at computation time and
// never recomputed.
type RankedOption struct {
	ID                uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	AuctionID         uuid.UUID              `gorm:"column:auction_id;type:uuid;not null;index"`
	Category          enums.OptionCategory   `gorm:"column:category;type:option_category;not null"`
	Rank              int                    `gorm:"column:rank;not null"`
	Score             float64                `gorm:"column:score;not null"`
	OfferID           uuid.UUID              `gorm:"column:offer_id;type:uuid;not null;index"`
	FinancingOptionID *uuid.UUID             `gorm:"column:financing_option_id;type:uuid"`
	Snapshot          dbtypes.OptionSnapshot `gorm:"column:snapshot;type:jsonb;serializer:json"`
	Declined          bool                   `gorm:"column:declined;not null;default:false"`
	DeclinedAt        *time.Time             `gorm:"column:declined_at"`
	CreatedAt         time.Time              `gorm:"column:created_at;autoCreateTime"`
}
