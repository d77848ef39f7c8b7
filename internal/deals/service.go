package deals

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/autolenis/autolenis-backend/internal/audit"
	"github.com/autolenis/autolenis-backend/pkg/db/models"
	"github.com/autolenis/autolenis-backend/pkg/enums"
	pkgerrors "github.com/autolenis/autolenis-backend/pkg/errors"
	"github.com/autolenis/autolenis-backend/pkg/logger"
	"github.com/autolenis/autolenis-backend/pkg/outbox"
	"github.com/autolenis/autolenis-backend/pkg/outbox/payloads"
)

const supersededReason = "buyer selected a different offer"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type inventoryControl interface {
	Release(ctx context.Context, tx *gorm.DB, itemID uuid.UUID) error
	MarkSold(ctx context.Context, tx *gorm.DB, itemID uuid.UUID) error
}

type auditRecorder interface {
	Record(ctx context.Context, entry audit.Entry)
}

// Service drives a deal from creation through the closing flow. Organic
// transitions go through the transition table; sub-status updates trigger
// automatic advancement; admins can jump states with an audited override.
type Service interface {
	CreateFromSelection(ctx context.Context, tx *gorm.DB, input CreateInput) (*models.Deal, error)
	GetDeal(ctx context.Context, dealID uuid.UUID) (*DealWithHistory, error)
	ListDeals(ctx context.Context, buyerID uuid.UUID) ([]models.Deal, error)
	ChoosePayment(ctx context.Context, input ChoosePaymentInput) (*models.Deal, error)
	UpdateConciergeFee(ctx context.Context, input UpdateConciergeFeeInput) (*models.Deal, error)
	UpdateInsurance(ctx context.Context, input UpdateInsuranceInput) (*models.Deal, error)
	MarkContractPassed(ctx context.Context, dealID uuid.UUID, actor Actor) (*models.Deal, error)
	MarkSigned(ctx context.Context, dealID uuid.UUID, actor Actor) (*models.Deal, error)
	SchedulePickup(ctx context.Context, dealID uuid.UUID, actor Actor) (*models.Deal, error)
	CompleteDeal(ctx context.Context, dealID uuid.UUID, actor Actor) (*models.Deal, error)
	Cancel(ctx context.Context, input CancelInput) (*models.Deal, error)
	AdminOverrideStatus(ctx context.Context, input OverrideStatusInput) (*models.Deal, error)
}

type service struct {
	repo      Repository
	inventory inventoryControl
	tx        txRunner
	outbox    outboxPublisher
	audit     auditRecorder
	logg      *logger.Logger
	now       func() time.Time
}

// NewService builds the deals service with the required dependencies.
func NewService(
	repo Repository,
	inventory inventoryControl,
	tx txRunner,
	ob outboxPublisher,
	auditSvc auditRecorder,
	logg *logger.Logger,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("deals repository required")
	}
	if inventory == nil {
		return nil, fmt.Errorf("inventory control required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if ob == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{
		repo:      repo,
		inventory: inventory,
		tx:        tx,
		outbox:    ob,
		audit:     auditSvc,
		logg:      logg,
		now:       time.Now,
	}, nil
}

// CreateFromSelection opens a deal inside the caller's selection transaction.
// Any prior non-terminal deal on the auction is force-cancelled first so the
// one-active-deal invariant holds; its vehicle goes back to available.
func (s *service) CreateFromSelection(ctx context.Context, tx *gorm.DB, input CreateInput) (*models.Deal, error) {
	repo := s.repo.WithTx(tx)

	prior, err := repo.FindActiveByAuction(ctx, input.AuctionID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load active deal")
	}
	if prior != nil {
		if err := s.cancelInTx(ctx, tx, prior, supersededReason, Actor{ID: input.BuyerID, Role: enums.RoleBuyer}); err != nil {
			return nil, err
		}
	}

	deal := &models.Deal{
		AuctionID:         input.AuctionID,
		BuyerID:           input.BuyerID,
		DealerID:          input.DealerID,
		OfferID:           input.OfferID,
		InventoryItemID:   input.InventoryItemID,
		FinancingOptionID: input.FinancingOptionID,
		Status:            enums.DealStatusPendingFinancing,
		PaymentType:       enums.PaymentTypeNotSelected,
		ConciergeFee:      enums.ConciergeFeePending,
		Insurance:         enums.InsuranceNotSelected,
		AgreedOtdCents:    input.AgreedOtdCents,
		TaxCents:          input.TaxCents,
		FeeBreakdown:      input.FeeBreakdown,
	}
	if _, err := repo.CreateDeal(ctx, deal); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create deal")
	}

	err = s.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventDealCreated,
		AggregateType: enums.AggregateDeal,
		AggregateID:   deal.ID,
		Actor:         &outbox.ActorRef{UserID: input.BuyerID, Role: enums.RoleBuyer},
		Version:       1,
		Data: payloads.DealCreatedEvent{
			DealID:         deal.ID,
			AuctionID:      input.AuctionID,
			BuyerID:        input.BuyerID,
			DealerID:       input.DealerID,
			OfferID:        input.OfferID,
			AgreedOtdCents: input.AgreedOtdCents,
		},
	})
	if err != nil {
		return nil, err
	}
	return deal, nil
}

func (s *service) GetDeal(ctx context.Context, dealID uuid.UUID) (*DealWithHistory, error) {
	deal, err := s.loadDeal(ctx, dealID)
	if err != nil {
		return nil, err
	}
	history, err := s.repo.ListHistory(ctx, dealID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load deal history")
	}
	return &DealWithHistory{Deal: deal, History: history}, nil
}

func (s *service) ListDeals(ctx context.Context, buyerID uuid.UUID) ([]models.Deal, error) {
	if buyerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "buyer id required")
	}
	deals, err := s.repo.ListByBuyer(ctx, buyerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list deals")
	}
	return deals, nil
}

// ChoosePayment locks in the buyer's payment path and advances the deal when
// the choice unblocks the closing flow.
func (s *service) ChoosePayment(ctx context.Context, input ChoosePaymentInput) (*models.Deal, error) {
	if !input.PaymentType.IsValid() || input.PaymentType == enums.PaymentTypeNotSelected {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "a concrete payment type is required")
	}
	if input.PaymentType == enums.PaymentTypeFinanced && input.FinancingOptionID == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "financed deals need a financing option")
	}

	deal, err := s.loadDeal(ctx, input.DealID)
	if err != nil {
		return nil, err
	}
	if deal.Status.IsTerminal() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "deal is closed")
	}

	updates := map[string]any{"payment_type": input.PaymentType}
	if input.PaymentType == enums.PaymentTypeFinanced {
		updates["financing_option_id"] = *input.FinancingOptionID
	} else {
		updates["financing_option_id"] = nil
	}
	return s.applySubstatus(ctx, deal, updates, input.Actor)
}

// UpdateConciergeFee records fee settlement and advances the deal when both
// closing prerequisites are now met.
func (s *service) UpdateConciergeFee(ctx context.Context, input UpdateConciergeFeeInput) (*models.Deal, error) {
	if !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown concierge fee status")
	}
	deal, err := s.loadDeal(ctx, input.DealID)
	if err != nil {
		return nil, err
	}
	if deal.Status.IsTerminal() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "deal is closed")
	}
	return s.applySubstatus(ctx, deal, map[string]any{"concierge_fee_status": input.Status}, input.Actor)
}

// UpdateInsurance records insurance progress and advances the deal when the
// status reaches a terminal proof.
func (s *service) UpdateInsurance(ctx context.Context, input UpdateInsuranceInput) (*models.Deal, error) {
	if !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown insurance status")
	}
	deal, err := s.loadDeal(ctx, input.DealID)
	if err != nil {
		return nil, err
	}
	if deal.Status.IsTerminal() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "deal is closed")
	}
	return s.applySubstatus(ctx, deal, map[string]any{"insurance_status": input.Status}, input.Actor)
}

// applySubstatus writes the sub-status change and advances the deal as far as
// the committed state allows, all in one transaction.
func (s *service) applySubstatus(ctx context.Context, deal *models.Deal, updates map[string]any, actor Actor) (*models.Deal, error) {
	var result *models.Deal
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.UpdateDeal(ctx, deal.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update deal")
		}
		advanced, err := s.advanceIfReady(ctx, tx, deal.ID, actor)
		if err != nil {
			return err
		}
		result = advanced
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// advanceIfReady re-reads the deal and applies every automatic transition the
// current sub-statuses permit. It always works from freshly read state so a
// concurrent writer's changes are honored rather than clobbered.
func (s *service) advanceIfReady(ctx context.Context, tx *gorm.DB, dealID uuid.UUID, actor Actor) (*models.Deal, error) {
	repo := s.repo.WithTx(tx)
	for {
		deal, err := repo.FindDeal(ctx, dealID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload deal")
		}
		if deal == nil {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "deal not found")
		}
		target, ok := nextAutomaticStatus(deal)
		if !ok {
			return deal, nil
		}
		if err := s.transitionInTx(ctx, tx, deal, target, actor, nil, false); err != nil {
			return nil, err
		}
	}
}

// nextAutomaticStatus resolves the advancement rule for the deal's current
// status, or false when the deal has to wait on the buyer or dealer.
func nextAutomaticStatus(deal *models.Deal) (enums.DealStatus, bool) {
	switch deal.Status {
	case enums.DealStatusPendingFinancing:
		if deal.PaymentType != enums.PaymentTypeNotSelected {
			return enums.DealStatusFinancingChosen, true
		}
	case enums.DealStatusFinancingChosen:
		if deal.ConciergeFee.IsTerminal() && deal.Insurance.IsTerminal() {
			return enums.DealStatusContractPending, true
		}
		if deal.ConciergeFee.IsTerminal() {
			return enums.DealStatusInsuranceReady, true
		}
	case enums.DealStatusInsuranceReady:
		if deal.Insurance.IsTerminal() {
			return enums.DealStatusContractPending, true
		}
	}
	return "", false
}

func (s *service) MarkContractPassed(ctx context.Context, dealID uuid.UUID, actor Actor) (*models.Deal, error) {
	return s.explicitTransition(ctx, dealID, enums.DealStatusContractPassed, actor)
}

func (s *service) MarkSigned(ctx context.Context, dealID uuid.UUID, actor Actor) (*models.Deal, error) {
	return s.explicitTransition(ctx, dealID, enums.DealStatusSigned, actor)
}

func (s *service) SchedulePickup(ctx context.Context, dealID uuid.UUID, actor Actor) (*models.Deal, error) {
	return s.explicitTransition(ctx, dealID, enums.DealStatusPickupScheduled, actor)
}

// CompleteDeal finishes the closing flow and marks the vehicle sold.
func (s *service) CompleteDeal(ctx context.Context, dealID uuid.UUID, actor Actor) (*models.Deal, error) {
	deal, err := s.loadDeal(ctx, dealID)
	if err != nil {
		return nil, err
	}
	if !CanTransition(deal.Status, enums.DealStatusCompleted) {
		return nil, transitionError(deal.Status, enums.DealStatusCompleted)
	}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.transitionInTx(ctx, tx, deal, enums.DealStatusCompleted, actor, nil, false); err != nil {
			return err
		}
		return s.inventory.MarkSold(ctx, tx, deal.InventoryItemID)
	})
	if err != nil {
		return nil, err
	}
	deal.Status = enums.DealStatusCompleted
	return deal, nil
}

// Cancel terminates a deal and releases the vehicle back to the dealer's
// available inventory. Cancelling an already-cancelled deal is an error, not
// a no-op, so double submissions surface.
func (s *service) Cancel(ctx context.Context, input CancelInput) (*models.Deal, error) {
	deal, err := s.loadDeal(ctx, input.DealID)
	if err != nil {
		return nil, err
	}
	if deal.Status == enums.DealStatusCancelled {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "deal is already cancelled")
	}
	if deal.Status == enums.DealStatusCompleted {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "completed deals cannot be cancelled")
	}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.cancelInTx(ctx, tx, deal, input.Reason, input.Actor)
	})
	if err != nil {
		return nil, err
	}
	deal.Status = enums.DealStatusCancelled
	deal.CancelReason = &input.Reason
	if s.logg != nil {
		logCtx := s.logg.WithDealID(ctx, deal.ID.String())
		s.logg.Info(s.logg.WithField(logCtx, "reason", input.Reason), "deal cancelled")
	}
	return deal, nil
}

func (s *service) cancelInTx(ctx context.Context, tx *gorm.DB, deal *models.Deal, reason string, actor Actor) error {
	note := reason
	if err := s.transitionInTx(ctx, tx, deal, enums.DealStatusCancelled, actor, &note, false); err != nil {
		return err
	}
	if err := s.inventory.Release(ctx, tx, deal.InventoryItemID); err != nil {
		return err
	}
	return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventDealCancelled,
		AggregateType: enums.AggregateDeal,
		AggregateID:   deal.ID,
		Actor:         &outbox.ActorRef{UserID: actor.ID, Role: actor.Role},
		Version:       1,
		Data: payloads.DealCancelledEvent{
			DealID:      deal.ID,
			AuctionID:   deal.AuctionID,
			Reason:      reason,
			CancelledAt: s.now().UTC(),
		},
	})
}

// AdminOverrideStatus jumps a deal to an arbitrary status, bypassing the
// transition table. The history row carries the override flag and the move is
// written to the audit log.
func (s *service) AdminOverrideStatus(ctx context.Context, input OverrideStatusInput) (*models.Deal, error) {
	if !input.ToStatus.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown deal status")
	}
	if input.Note == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "override note required")
	}
	deal, err := s.loadDeal(ctx, input.DealID)
	if err != nil {
		return nil, err
	}
	from := deal.Status

	actor := Actor{ID: input.AdminID, Role: enums.RoleAdmin}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.transitionInTx(ctx, tx, deal, input.ToStatus, actor, &input.Note, true)
	})
	if err != nil {
		return nil, err
	}

	if s.audit != nil {
		s.audit.Record(ctx, audit.Entry{
			ActorID:    &input.AdminID,
			ActorRole:  enums.RoleAdmin,
			Action:     "deal.status_overridden",
			EntityType: "deal",
			EntityID:   deal.ID,
			Before:     map[string]any{"status": from},
			After:      map[string]any{"status": input.ToStatus, "note": input.Note},
		})
	}

	deal.Status = input.ToStatus
	if s.logg != nil {
		logCtx := s.logg.WithDealID(ctx, deal.ID.String())
		logCtx = s.logg.WithFields(logCtx, map[string]any{
			"from": string(from),
			"to":   string(input.ToStatus),
		})
		s.logg.Warn(logCtx, "deal status overridden by admin")
	}
	return deal, nil
}

func (s *service) explicitTransition(ctx context.Context, dealID uuid.UUID, to enums.DealStatus, actor Actor) (*models.Deal, error) {
	deal, err := s.loadDeal(ctx, dealID)
	if err != nil {
		return nil, err
	}
	if !CanTransition(deal.Status, to) {
		return nil, transitionError(deal.Status, to)
	}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.transitionInTx(ctx, tx, deal, to, actor, nil, false)
	})
	if err != nil {
		return nil, err
	}
	deal.Status = to
	return deal, nil
}

// transitionInTx performs the guarded flip, appends the history row, and
// emits the status-changed event. Override transitions skip the table check;
// everything else must pass it.
func (s *service) transitionInTx(ctx context.Context, tx *gorm.DB, deal *models.Deal, to enums.DealStatus, actor Actor, note *string, override bool) error {
	if !override && !CanTransition(deal.Status, to) {
		return transitionError(deal.Status, to)
	}

	repo := s.repo.WithTx(tx)
	updates := map[string]any{}
	if to == enums.DealStatusCancelled && note != nil {
		updates["cancel_reason"] = *note
	}
	flipped, err := repo.UpdateDealStatus(ctx, deal.ID, deal.Status, to, updates)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update deal status")
	}
	if !flipped {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "deal was modified concurrently")
	}

	actorID := actor.ID
	history := &models.DealStatusHistory{
		DealID:     deal.ID,
		FromStatus: deal.Status,
		ToStatus:   to,
		ActorRole:  actor.Role,
		Note:       note,
		Override:   override,
	}
	if actorID != uuid.Nil {
		history.ActorID = &actorID
	}
	if err := repo.AppendHistory(ctx, history); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append deal history")
	}

	noteValue := ""
	if note != nil {
		noteValue = *note
	}
	if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventDealStatusChanged,
		AggregateType: enums.AggregateDeal,
		AggregateID:   deal.ID,
		Actor:         &outbox.ActorRef{UserID: actorID, Role: actor.Role},
		Version:       1,
		Data: payloads.DealStatusChangedEvent{
			DealID:     deal.ID,
			AuctionID:  deal.AuctionID,
			FromStatus: deal.Status,
			ToStatus:   to,
			Override:   override,
			Note:       noteValue,
		},
	}); err != nil {
		return err
	}

	deal.Status = to
	return nil
}

func (s *service) loadDeal(ctx context.Context, dealID uuid.UUID) (*models.Deal, error) {
	if dealID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "deal id required")
	}
	deal, err := s.repo.FindDeal(ctx, dealID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load deal")
	}
	if deal == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "deal not found")
	}
	return deal, nil
}

func transitionError(from, to enums.DealStatus) error {
	return pkgerrors.New(pkgerrors.CodeStateConflict,
		fmt.Sprintf("deal cannot move from %s to %s", from, to))
}
