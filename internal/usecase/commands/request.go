package commands

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"aguamarket/internal/domain/request"
	reqdto "aguamarket/internal/handler/dto/request"
	"aguamarket/internal/infra"
	"aguamarket/internal/pkg/clock"
	"aguamarket/internal/pkg/errs"
	"aguamarket/internal/usecase/queries"
	"aguamarket/internal/usecase/shared"

	"github.com/google/uuid"
)

var (
	ErrRequestNotPending  = errs.New("request no longer pending")
	ErrRequestNotAccepted = errs.New("request not accepted")
	ErrRequestNotMovable  = errs.New("request not in transit")
	ErrRequestTerminal    = errs.New("request already in a terminal status")
)

type RequestCommands interface {
	Create(ctx context.Context, req reqdto.CreateRequestRequest, consumerID uuid.UUID) (*queries.RequestView, error)
	Cancel(ctx context.Context, requestID, consumerID uuid.UUID, reason string) error
	MarkInTransit(ctx context.Context, requestID, supplierID uuid.UUID) error
	MarkDelivered(ctx context.Context, requestID, supplierID uuid.UUID) error
	// TimeOutStale closes pending requests that never collected an offer
	// within the configured window. Invoked by the sweep worker.
	TimeOutStale(ctx context.Context) (int, error)
}

type requestCommandsImpl struct {
	uow            shared.UnitOfWork
	requestQueries queries.RequestQueries
	clock          clock.Clock
}

func NewRequestCommands(
	uow shared.UnitOfWork,
	requestQueries queries.RequestQueries,
	clock clock.Clock,
) RequestCommands {
	return &requestCommandsImpl{
		uow:            uow,
		requestQueries: requestQueries,
		clock:          clock,
	}
}

func (r *requestCommandsImpl) Create(
	ctx context.Context,
	req reqdto.CreateRequestRequest,
	consumerID uuid.UUID,
) (*queries.RequestView, error) {
	domainData, err := req.ToDomain()
	if err != nil {
		return nil, errs.Mark(err, ErrDomainValidation)
	}

	requestEntity, err := request.NewRequest(
		consumerID,
		domainData.Amount,
		domainData.Address,
		req.IsUrgent,
		domainData.PaymentMethod,
	)
	if err != nil {
		return nil, errs.Mark(err, ErrDomainValidation)
	}

	var requestID uuid.UUID
	err = r.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		requestID, err = tx.Requests().Create(ctx, tx.DB(), requestEntity)
		if err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	view, err := r.requestQueries.GetByIDSystem(ctx, requestID)
	if err != nil {
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	return view, nil
}

func (r *requestCommandsImpl) Cancel(ctx context.Context, requestID, consumerID uuid.UUID, reason string) error {
	return r.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		reqSnap, err := tx.Reads().RequestByID(ctx, requestID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return ErrRequestNotFound
			}
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		if reqSnap.ConsumerID != consumerID {
			return ErrNotAuthorized
		}
		if reqSnap.Status.IsTerminal() {
			return ErrRequestTerminal
		}
		if !reqSnap.Status.CanTransitionTo(request.StatusCancelled) {
			return ErrRequestNotPending
		}

		now := r.clock.Now()
		affected, err := tx.Requests().CancelPending(ctx, tx.DB(), requestID, request.CancelledByConsumer, reason, now)
		if err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		if affected == 0 {
			return ErrRequestTerminal
		}

		// Cascade: release every still-active offer so providers are not left
		// waiting on a dead request.
		cancelled, err := tx.Offers().CancelActiveByRequest(ctx, tx.DB(), requestID)
		if err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		for _, ref := range cancelled {
			if err := r.enqueueRequestEvent(ctx, tx, "request_cancelled", map[string]any{
				"request_id":  requestID,
				"offer_id":    ref.ID,
				"provider_id": ref.ProviderID,
			}); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *requestCommandsImpl) MarkInTransit(ctx context.Context, requestID, supplierID uuid.UUID) error {
	return r.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		reqSnap, err := tx.Reads().RequestByID(ctx, requestID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return ErrRequestNotFound
			}
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		if reqSnap.SupplierID == nil || *reqSnap.SupplierID != supplierID {
			return ErrNotAuthorized
		}

		affected, err := tx.Requests().MarkInTransit(ctx, tx.DB(), requestID, r.clock.Now())
		if err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		if affected == 0 {
			return ErrRequestNotAccepted
		}

		return r.enqueueRequestEvent(ctx, tx, "delivery_in_transit", map[string]any{
			"request_id":  requestID,
			"consumer_id": reqSnap.ConsumerID,
		})
	})
}

func (r *requestCommandsImpl) MarkDelivered(ctx context.Context, requestID, supplierID uuid.UUID) error {
	return r.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		reqSnap, err := tx.Reads().RequestByID(ctx, requestID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return ErrRequestNotFound
			}
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		if reqSnap.SupplierID == nil || *reqSnap.SupplierID != supplierID {
			return ErrNotAuthorized
		}

		affected, err := tx.Requests().MarkDelivered(ctx, tx.DB(), requestID, r.clock.Now())
		if err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		if affected == 0 {
			return ErrRequestNotMovable
		}

		return r.enqueueRequestEvent(ctx, tx, "delivery_completed", map[string]any{
			"request_id":  requestID,
			"consumer_id": reqSnap.ConsumerID,
		})
	})
}

func (r *requestCommandsImpl) TimeOutStale(ctx context.Context) (int, error) {
	settings, err := r.uow.CommandReads().Settings(ctx)
	if err != nil {
		return 0, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	cutoff := r.clock.Now().Add(-time.Duration(settings.RequestTimeoutMinutes) * time.Minute)

	var timedOut []uuid.UUID
	err = r.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		timedOut, err = tx.Requests().TimeOutStale(ctx, tx.DB(), cutoff)
		if err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		for _, id := range timedOut {
			if err := r.enqueueRequestEvent(ctx, tx, "request_no_offers", map[string]any{
				"request_id": id,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	if len(timedOut) > 0 {
		slog.Info("timed out stale requests", "count", len(timedOut))
	}
	return len(timedOut), nil
}

func (r *requestCommandsImpl) enqueueRequestEvent(
	ctx context.Context,
	tx shared.Tx,
	topic string,
	payload map[string]any,
) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return errs.Mark(err, ErrDatabaseOperationFailed)
	}
	if err := tx.Notifications().CreateJob(ctx, tx.DB(), "push", topic, body, r.clock.Now()); err != nil {
		return errs.Mark(err, ErrDatabaseOperationFailed)
	}
	return nil
}
