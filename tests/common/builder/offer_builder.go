//go:build unit || e2e

package builder

import (
	"time"

	domoffer "aguamarket/internal/domain/offer"
	reqdto "aguamarket/internal/handler/dto/request"
	"aguamarket/internal/pkg/clock"
	"aguamarket/internal/usecase/queries"
	"aguamarket/internal/usecase/shared"

	"github.com/google/uuid"
)

type OfferBuilder struct {
	ID              uuid.UUID
	RequestID       uuid.UUID
	ProviderID      uuid.UUID
	Status          domoffer.Status
	Now             time.Time
	WindowStart     time.Time
	WindowEnd       time.Time
	Message         string
	PriceCents      int64
	AmountLiters    int
	Urgent          bool
	ValidityMinutes int
	Pricing         domoffer.PricingTerms
	CreatedAt       time.Time
	ExpiresAt       time.Time
}

func NewOfferBuilder() *OfferBuilder {
	now := time.Now()
	return &OfferBuilder{
		ID:              uuid.New(),
		RequestID:       uuid.New(),
		ProviderID:      uuid.New(),
		Status:          domoffer.StatusActive,
		Now:             now,
		WindowStart:     now.Add(2 * time.Hour),
		WindowEnd:       now.Add(4 * time.Hour),
		Message:         "Truck available this afternoon",
		PriceCents:      55000,
		AmountLiters:    1000,
		Urgent:          false,
		ValidityMinutes: 30,
		Pricing: domoffer.PricingTerms{
			BasePricePerLiterCents: 50,
			CommissionPct:          10.0,
			UrgencySurchargePct:    25.0,
		},
		CreatedAt: now,
		ExpiresAt: now.Add(30 * time.Minute),
	}
}

func (b *OfferBuilder) With(mutate func(*OfferBuilder)) *OfferBuilder {
	mutate(b)
	return b
}

// Build methods

// BuildDomain runs the factory with a clock frozen at b.Now, so window and
// expiry assertions are deterministic.
func (b *OfferBuilder) BuildDomain() (*domoffer.Offer, error) {
	factory := domoffer.NewFactory(clock.NewMockClock(b.Now), domoffer.NewStandardPriceQuoter())

	message, err := domoffer.NewMessage(b.Message)
	if err != nil {
		return nil, err
	}

	return factory.CreateOffer(b.RequestID, b.ProviderID, b.WindowStart, b.WindowEnd, message, domoffer.OfferTerms{
		Pricing:         b.Pricing,
		AmountLiters:    b.AmountLiters,
		Urgent:          b.Urgent,
		ValidityMinutes: b.ValidityMinutes,
	})
}

// BuildReconstructed bypasses factory validation to stage arbitrary
// persisted states (expired-but-active, terminal statuses).
func (b *OfferBuilder) BuildReconstructed() *domoffer.Offer {
	price, _ := domoffer.NewMoney(b.PriceCents)
	message, _ := domoffer.NewMessage(b.Message)
	window := domoffer.ReconstructDeliveryWindow(b.WindowStart, b.WindowEnd)

	return domoffer.ReconstructOffer(
		b.ID, b.RequestID, b.ProviderID,
		b.Status, price, window, message,
		b.CreatedAt, b.ExpiresAt,
	)
}

func (b *OfferBuilder) BuildSubmitDTO() reqdto.SubmitOfferRequest {
	message := b.Message
	return reqdto.SubmitOfferRequest{
		WindowStart: b.WindowStart,
		WindowEnd:   b.WindowEnd,
		Message:     &message,
	}
}

func (b *OfferBuilder) BuildView() *queries.OfferView {
	message := b.Message
	return &queries.OfferView{
		ID:          b.ID,
		RequestID:   b.RequestID,
		ProviderID:  b.ProviderID,
		Status:      b.Status.String(),
		PriceCents:  b.PriceCents,
		WindowStart: b.WindowStart,
		WindowEnd:   b.WindowEnd,
		Message:     &message,
		ExpiresAt:   b.ExpiresAt,
		CreatedAt:   b.CreatedAt,
	}
}

func (b *OfferBuilder) BuildSnapshot() *shared.OfferSnapshot {
	return &shared.OfferSnapshot{
		ID:         b.ID,
		RequestID:  b.RequestID,
		ProviderID: b.ProviderID,
		Status:     b.Status,
		ExpiresAt:  b.ExpiresAt,
	}
}

// Fluent builder methods

func (b *OfferBuilder) WithID(id uuid.UUID) *OfferBuilder {
	b.ID = id
	return b
}

func (b *OfferBuilder) WithRequestID(id uuid.UUID) *OfferBuilder {
	b.RequestID = id
	return b
}

func (b *OfferBuilder) WithProviderID(id uuid.UUID) *OfferBuilder {
	b.ProviderID = id
	return b
}

func (b *OfferBuilder) WithStatus(status domoffer.Status) *OfferBuilder {
	b.Status = status
	return b
}

func (b *OfferBuilder) WithWindow(start, end time.Time) *OfferBuilder {
	b.WindowStart = start
	b.WindowEnd = end
	return b
}

func (b *OfferBuilder) WithMessage(message string) *OfferBuilder {
	b.Message = message
	return b
}

func (b *OfferBuilder) WithPriceCents(cents int64) *OfferBuilder {
	b.PriceCents = cents
	return b
}

func (b *OfferBuilder) WithAmountLiters(liters int) *OfferBuilder {
	b.AmountLiters = liters
	return b
}

func (b *OfferBuilder) WithUrgent(urgent bool) *OfferBuilder {
	b.Urgent = urgent
	return b
}

func (b *OfferBuilder) WithValidityMinutes(minutes int) *OfferBuilder {
	b.ValidityMinutes = minutes
	return b
}

func (b *OfferBuilder) WithExpiresAt(t time.Time) *OfferBuilder {
	b.ExpiresAt = t
	return b
}

// AsExpired stages a persisted active offer whose expiry has already
// elapsed, the state the read-time evaluator must mask.
func (b *OfferBuilder) AsExpired() *OfferBuilder {
	b.Status = domoffer.StatusActive
	b.ExpiresAt = b.Now.Add(-time.Minute)
	return b
}
