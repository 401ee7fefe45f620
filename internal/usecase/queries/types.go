package queries

import (
	"time"

	"github.com/google/uuid"
)

// Read models (DTO for read side)

type OfferView struct {
	ID         uuid.UUID `json:"id"`
	RequestID  uuid.UUID `json:"request_id"`
	ProviderID uuid.UUID `json:"provider_id"`
	// Status is the effective status: a persisted active offer past its
	// expiry reads as expired even before the sweep flips the row.
	Status           string    `json:"status"`
	PriceCents       int64     `json:"price_cents"`
	WindowStart      time.Time `json:"window_start"`
	WindowEnd        time.Time `json:"window_end"`
	Message          *string   `json:"message,omitempty"`
	ExpiresAt        time.Time `json:"expires_at"`
	RemainingSeconds int64     `json:"remaining_seconds"`
	CreatedAt        time.Time `json:"created_at"`
}

type RequestView struct {
	ID                 uuid.UUID  `json:"id"`
	ConsumerID         uuid.UUID  `json:"consumer_id"`
	SupplierID         *uuid.UUID `json:"supplier_id,omitempty"`
	Status             string     `json:"status"`
	AmountLiters       int        `json:"amount_liters"`
	Address            string     `json:"address"`
	IsUrgent           bool       `json:"is_urgent"`
	PaymentMethod      string     `json:"payment_method"`
	CancelledBy        *string    `json:"cancelled_by,omitempty"`
	CancellationReason *string    `json:"cancellation_reason,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	AcceptedAt         *time.Time `json:"accepted_at,omitempty"`
	InTransitAt        *time.Time `json:"in_transit_at,omitempty"`
	DeliveredAt        *time.Time `json:"delivered_at,omitempty"`
	CancelledAt        *time.Time `json:"cancelled_at,omitempty"`
	ActiveOfferCount   int        `json:"active_offer_count"`
}

type RequestListItem struct {
	ID               uuid.UUID `json:"id"`
	Status           string    `json:"status"`
	AmountLiters     int       `json:"amount_liters"`
	Address          string    `json:"address"`
	IsUrgent         bool      `json:"is_urgent"`
	CreatedAt        time.Time `json:"created_at"`
	ActiveOfferCount int       `json:"active_offer_count"`
}

// GroupedProviderOffers splits a provider's offers for the dashboard:
// live ones, won ones, and everything already settled.
type GroupedProviderOffers struct {
	Active   []*OfferView `json:"active"`
	Accepted []*OfferView `json:"accepted"`
	History  []*OfferView `json:"history"`
}

type AuthorizedUserView struct {
	ID       uuid.UUID `json:"id"`
	Email    string    `json:"email"`
	Role     string    `json:"role"`
	IsActive bool      `json:"is_active"`
}

type SettingsView struct {
	BasePricePerLiterCents int64     `json:"base_price_per_liter_cents"`
	CommissionPct          float64   `json:"commission_pct"`
	UrgencySurchargePct    float64   `json:"urgency_surcharge_pct"`
	OfferValidityMinutes   int       `json:"offer_validity_minutes"`
	RequestTimeoutMinutes  int       `json:"request_timeout_minutes"`
	UpdatedAt              time.Time `json:"updated_at"`
}
