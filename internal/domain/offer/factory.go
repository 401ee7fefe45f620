package offer

import (
	"time"

	"aguamarket/internal/pkg/clock"

	"github.com/google/uuid"
)

// Factory builds new offers with platform-derived pricing and expiry.
type Factory struct {
	Clock  clock.Clock
	Quoter PriceQuoter
}

func NewFactory(clk clock.Clock, quoter PriceQuoter) *Factory {
	return &Factory{
		Clock:  clk,
		Quoter: quoter,
	}
}

// OfferTerms carries the request attributes and settings snapshot that
// determine the offer's price and time-to-live.
type OfferTerms struct {
	Pricing         PricingTerms
	AmountLiters    int
	Urgent          bool
	ValidityMinutes int
}

func (f *Factory) CreateOffer(
	requestID, providerID uuid.UUID,
	windowStart, windowEnd time.Time,
	message Message,
	terms OfferTerms,
) (*Offer, error) {
	now := f.Clock.Now()

	window, err := NewDeliveryWindow(windowStart, windowEnd, now)
	if err != nil {
		return nil, err
	}

	price, err := NewMoney(f.Quoter.QuoteCents(terms.Pricing, terms.AmountLiters, terms.Urgent))
	if err != nil {
		return nil, err
	}

	return &Offer{
		id:         uuid.New(),
		requestID:  requestID,
		providerID: providerID,
		status:     StatusActive,
		price:      price,
		window:     window,
		message:    message,
		createdAt:  now,
		expiresAt:  now.Add(time.Duration(terms.ValidityMinutes) * time.Minute),
	}, nil
}
