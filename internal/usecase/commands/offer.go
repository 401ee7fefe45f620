package commands

import (
	"context"
	"encoding/json"
	"log/slog"

	"aguamarket/internal/domain/offer"
	reqdto "aguamarket/internal/handler/dto/request"
	"aguamarket/internal/infra"
	"aguamarket/internal/pkg/clock"
	"aguamarket/internal/pkg/errs"
	"aguamarket/internal/pkg/metrics"
	"aguamarket/internal/usecase/queries"
	"aguamarket/internal/usecase/shared"

	"github.com/google/uuid"
)

var (
	ErrRequestNotFound         = errs.New("request not found")
	ErrRequestNotOpen          = errs.New("request not open for offers")
	ErrOfferNotFound           = errs.New("offer not found")
	ErrOfferExpired            = errs.New("offer expired")
	ErrOfferNotActive          = errs.New("offer not active")
	ErrDuplicateOffer          = errs.New("duplicate active offer")
	ErrNotAuthorized           = errs.New("not authorized")
	ErrSelectionConflict       = errs.New("selection conflict")
	ErrDomainValidation        = errs.New("domain validation error")
	ErrDatabaseOperationFailed = errs.New("database operation failed")
)

type SelectOfferResult struct {
	OfferID   uuid.UUID
	RequestID uuid.UUID
	// LosingOffers are the sibling offers released as request_filled.
	LosingOffers int
}

type OfferCommands interface {
	Submit(ctx context.Context, req reqdto.SubmitOfferRequest, requestID, providerID uuid.UUID) (*queries.OfferView, error)
	Select(ctx context.Context, requestID, offerID, consumerID uuid.UUID) (*SelectOfferResult, error)
	Withdraw(ctx context.Context, offerID, providerID uuid.UUID) error
	// ExpireDue transitions every overdue active offer to expired. Invoked by
	// the sweep worker; safe to run concurrently with selections because both
	// sides guard on status.
	ExpireDue(ctx context.Context) (int, error)
}

type offerCommandsImpl struct {
	uow          shared.UnitOfWork
	offerFactory *offer.Factory
	offerQueries queries.OfferQueries
	clock        clock.Clock
}

func NewOfferCommands(
	uow shared.UnitOfWork,
	offerFactory *offer.Factory,
	offerQueries queries.OfferQueries,
	clock clock.Clock,
) OfferCommands {
	return &offerCommandsImpl{
		uow:          uow,
		offerFactory: offerFactory,
		offerQueries: offerQueries,
		clock:        clock,
	}
}

func (o *offerCommandsImpl) Submit(
	ctx context.Context,
	req reqdto.SubmitOfferRequest,
	requestID, providerID uuid.UUID,
) (*queries.OfferView, error) {
	reqSnap, err := o.uow.CommandReads().RequestByID(ctx, requestID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	if reqSnap.ConsumerID == providerID {
		return nil, ErrNotAuthorized
	}
	if !reqSnap.Status.IsOpenForOffers() {
		return nil, ErrRequestNotOpen
	}

	settings, err := o.uow.CommandReads().Settings(ctx)
	if err != nil {
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}

	domainData, err := req.ToDomain()
	if err != nil {
		return nil, errs.Mark(err, ErrDomainValidation)
	}

	offerEntity, err := o.offerFactory.CreateOffer(
		requestID,
		providerID,
		domainData.WindowStart,
		domainData.WindowEnd,
		domainData.Message,
		offer.OfferTerms{
			Pricing: offer.PricingTerms{
				BasePricePerLiterCents: settings.BasePricePerLiterCents,
				CommissionPct:          settings.CommissionPct,
				UrgencySurchargePct:    settings.UrgencySurchargePct,
			},
			AmountLiters:    reqSnap.AmountLiters,
			Urgent:          reqSnap.IsUrgent,
			ValidityMinutes: settings.OfferValidityMinutes,
		},
	)
	if err != nil {
		return nil, errs.Mark(err, ErrDomainValidation)
	}

	var offerID uuid.UUID
	err = o.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		// Create re-checks the request status inside the insert itself so a
		// concurrent selection or cancellation cannot slip an offer in.
		offerID, err = tx.Offers().Create(ctx, tx.DB(), offerEntity)
		if err != nil {
			switch {
			case infra.IsKind(err, infra.KindDuplicateKey):
				return ErrDuplicateOffer
			case infra.IsKind(err, infra.KindConflict):
				return ErrRequestNotOpen
			case infra.IsKind(err, infra.KindForeignKeyViolated):
				return ErrRequestNotFound
			}
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}

		return o.enqueueOfferEvent(ctx, tx, "offer_received", map[string]any{
			"offer_id":    offerID,
			"request_id":  requestID,
			"consumer_id": reqSnap.ConsumerID,
			"price_cents": offerEntity.Price().Cents(),
		})
	})
	if err != nil {
		return nil, err
	}

	metrics.OffersSubmittedTotal.Inc()

	// Read-after-write so the caller gets the persisted view
	view, err := o.offerQueries.GetByIDSystem(ctx, offerID)
	if err != nil {
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	return view, nil
}

func (o *offerCommandsImpl) Select(
	ctx context.Context,
	requestID, offerID, consumerID uuid.UUID,
) (*SelectOfferResult, error) {
	var result *SelectOfferResult
	err := o.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		offerSnap, err := tx.Reads().OfferByID(ctx, offerID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return ErrOfferNotFound
			}
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		if offerSnap.RequestID != requestID {
			return ErrOfferNotFound
		}

		reqSnap, err := tx.Reads().RequestByID(ctx, requestID)
		if err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		if reqSnap.ConsumerID != consumerID {
			return ErrNotAuthorized
		}
		if !reqSnap.Status.IsOpenForOffers() {
			return ErrRequestNotOpen
		}

		now := o.clock.Now()

		// The guarded update is the source of truth; the snapshot checks above
		// only shape the error we report when it loses the race.
		affected, err := tx.Offers().AcceptActive(ctx, tx.DB(), offerID, requestID, now)
		if err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		if affected == 0 {
			if offerSnap.Status == offer.StatusExpired || now.After(offerSnap.ExpiresAt) {
				return ErrOfferExpired
			}
			if offerSnap.Status != offer.StatusActive {
				return ErrOfferNotActive
			}
			return ErrSelectionConflict
		}

		affected, err = tx.Requests().AcceptPending(ctx, tx.DB(), requestID, offerSnap.ProviderID, now)
		if err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		if affected == 0 {
			// Another selection won between our snapshot read and this update.
			return ErrSelectionConflict
		}

		losers, err := tx.Offers().FillActiveSiblings(ctx, tx.DB(), requestID, offerID)
		if err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}

		if err := o.enqueueOfferEvent(ctx, tx, "offer_accepted", map[string]any{
			"offer_id":    offerID,
			"request_id":  requestID,
			"provider_id": offerSnap.ProviderID,
		}); err != nil {
			return err
		}
		for _, loser := range losers {
			if err := o.enqueueOfferEvent(ctx, tx, "offer_not_selected", map[string]any{
				"offer_id":    loser.ID,
				"request_id":  loser.RequestID,
				"provider_id": loser.ProviderID,
			}); err != nil {
				return err
			}
		}

		result = &SelectOfferResult{
			OfferID:      offerID,
			RequestID:    requestID,
			LosingOffers: len(losers),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.OffersAcceptedTotal.Inc()
	return result, nil
}

func (o *offerCommandsImpl) Withdraw(ctx context.Context, offerID, providerID uuid.UUID) error {
	err := o.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		offerSnap, err := tx.Reads().OfferByID(ctx, offerID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return ErrOfferNotFound
			}
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		if offerSnap.ProviderID != providerID {
			return ErrNotAuthorized
		}

		// Withdrawal is allowed until the status actually flips: an offer past
		// its expiry instant but not yet swept can still be withdrawn.
		affected, err := tx.Offers().WithdrawActive(ctx, tx.DB(), offerID, providerID)
		if err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		if affected == 0 {
			return ErrOfferNotActive
		}

		return o.enqueueOfferEvent(ctx, tx, "offer_withdrawn", map[string]any{
			"offer_id":    offerID,
			"request_id":  offerSnap.RequestID,
			"provider_id": providerID,
		})
	})
	if err != nil {
		return err
	}

	metrics.OffersWithdrawnTotal.Inc()
	return nil
}

func (o *offerCommandsImpl) ExpireDue(ctx context.Context) (int, error) {
	var expired []shared.OfferRef
	err := o.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		var err error
		expired, err = tx.Offers().ExpireDue(ctx, tx.DB(), o.clock.Now())
		if err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		for _, ref := range expired {
			if err := o.enqueueOfferEvent(ctx, tx, "offer_expired", map[string]any{
				"offer_id":    ref.ID,
				"request_id":  ref.RequestID,
				"provider_id": ref.ProviderID,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	if len(expired) > 0 {
		metrics.OffersExpiredTotal.Add(float64(len(expired)))
		slog.Info("expired overdue offers", "count", len(expired))
	}
	return len(expired), nil
}

func (o *offerCommandsImpl) enqueueOfferEvent(
	ctx context.Context,
	tx shared.Tx,
	topic string,
	payload map[string]any,
) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return errs.Mark(err, ErrDatabaseOperationFailed)
	}
	if err := tx.Notifications().CreateJob(ctx, tx.DB(), "push", topic, body, o.clock.Now()); err != nil {
		return errs.Mark(err, ErrDatabaseOperationFailed)
	}
	return nil
}
