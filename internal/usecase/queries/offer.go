package queries

import (
	"context"
	"time"

	"aguamarket/internal/domain/offer"
	"aguamarket/internal/pkg/clock"
	"aguamarket/internal/pkg/errs"

	"github.com/google/uuid"
)

var (
	ErrNotFound  = errs.New("not found")
	ErrForbidden = errs.New("access denied")
)

type OfferQueries interface {
	// GetByIDSystem skips authorization; reserved for read-after-write paths.
	GetByIDSystem(ctx context.Context, id uuid.UUID) (*OfferView, error)
	// ListForRequest returns a request's offers for its consumer, priced and
	// with expiry masked at read time.
	ListForRequest(ctx context.Context, actorID, requestID uuid.UUID) ([]*OfferView, error)
	// ListForProvider groups the provider's own offers for the dashboard.
	ListForProvider(ctx context.Context, providerID uuid.UUID) (*GroupedProviderOffers, error)
}

type OfferViewRepo interface {
	FindByID(ctx context.Context, id uuid.UUID) (*OfferView, error)
	FindByRequestID(ctx context.Context, requestID uuid.UUID) ([]*OfferView, error)
	FindByProviderID(ctx context.Context, providerID uuid.UUID) ([]*OfferView, error)
}

type offerQueriesImpl struct {
	repo        OfferViewRepo
	requestRepo RequestViewRepo
	clock       clock.Clock
}

func NewOfferQueries(repo OfferViewRepo, requestRepo RequestViewRepo, clock clock.Clock) OfferQueries {
	return &offerQueriesImpl{repo: repo, requestRepo: requestRepo, clock: clock}
}

func (q *offerQueriesImpl) GetByIDSystem(ctx context.Context, id uuid.UUID) (*OfferView, error) {
	view, err := q.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	maskExpiry(view, q.clock.Now())
	return view, nil
}

func (q *offerQueriesImpl) ListForRequest(ctx context.Context, actorID, requestID uuid.UUID) ([]*OfferView, error) {
	reqView, err := q.requestRepo.FindByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if reqView.ConsumerID != actorID {
		return nil, ErrForbidden
	}

	views, err := q.repo.FindByRequestID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	now := q.clock.Now()
	for _, v := range views {
		maskExpiry(v, now)
	}
	return views, nil
}

func (q *offerQueriesImpl) ListForProvider(ctx context.Context, providerID uuid.UUID) (*GroupedProviderOffers, error) {
	views, err := q.repo.FindByProviderID(ctx, providerID)
	if err != nil {
		return nil, err
	}

	now := q.clock.Now()
	grouped := &GroupedProviderOffers{
		Active:   []*OfferView{},
		Accepted: []*OfferView{},
		History:  []*OfferView{},
	}
	for _, v := range views {
		maskExpiry(v, now)
		switch v.Status {
		case offer.StatusActive.String():
			grouped.Active = append(grouped.Active, v)
		case offer.StatusAccepted.String():
			grouped.Accepted = append(grouped.Accepted, v)
		default:
			grouped.History = append(grouped.History, v)
		}
	}
	return grouped, nil
}

// maskExpiry derives the effective status: persisted rows lag the clock
// between sweep passes, so reads evaluate expiry themselves.
func maskExpiry(v *OfferView, now time.Time) {
	if v.Status == offer.StatusActive.String() && now.After(v.ExpiresAt) {
		v.Status = offer.StatusExpired.String()
	}
	if remaining := v.ExpiresAt.Sub(now); remaining > 0 && v.Status == offer.StatusActive.String() {
		v.RemainingSeconds = int64(remaining.Seconds())
	} else {
		v.RemainingSeconds = 0
	}
}
