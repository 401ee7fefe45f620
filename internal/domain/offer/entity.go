package offer

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotActive         = errors.New("offer is not active")
	ErrOfferExpired      = errors.New("offer validity window has elapsed")
	ErrInvalidTransition = errors.New("offer status transition not permitted")
)

type Offer struct {
	id         uuid.UUID
	requestID  uuid.UUID
	providerID uuid.UUID
	status     Status
	price      Money
	window     DeliveryWindow
	message    Message
	createdAt  time.Time
	expiresAt  time.Time
}

func ReconstructOffer(
	id, requestID, providerID uuid.UUID,
	status Status,
	price Money,
	window DeliveryWindow,
	message Message,
	createdAt, expiresAt time.Time,
) *Offer {
	return &Offer{
		id:         id,
		requestID:  requestID,
		providerID: providerID,
		status:     status,
		price:      price,
		window:     window,
		message:    message,
		createdAt:  createdAt,
		expiresAt:  expiresAt,
	}
}

// Expired is the expiry evaluator: true once now is past expires_at.
// Persisted status is intentionally ignored so read paths can mask
// stale actives before the sweep has flipped them.
func (o *Offer) Expired(now time.Time) bool {
	return now.After(o.expiresAt)
}

// Selectable reports whether the offer can still be accepted at `now`.
func (o *Offer) Selectable(now time.Time) error {
	if o.status != StatusActive {
		return ErrNotActive
	}
	if o.Expired(now) {
		return ErrOfferExpired
	}
	return nil
}

// Accept transitions active -> accepted. Selection re-validates inside
// its transaction; this guard covers the in-memory aggregate.
func (o *Offer) Accept(now time.Time) error {
	if err := o.Selectable(now); err != nil {
		return err
	}
	o.status = StatusAccepted
	return nil
}

// Withdraw transitions active -> cancelled at the owning provider's request.
func (o *Offer) Withdraw(providerID uuid.UUID) error {
	if o.providerID != providerID {
		return ErrInvalidTransition
	}
	if o.status != StatusActive {
		return ErrNotActive
	}
	o.status = StatusCancelled
	return nil
}

// MarkFilled transitions active -> request_filled when a sibling wins.
func (o *Offer) MarkFilled() error {
	if o.status != StatusActive {
		return ErrNotActive
	}
	o.status = StatusRequestFilled
	return nil
}

// MarkExpired transitions active -> expired; a no-op error for already
// terminal offers keeps the sweep idempotent.
func (o *Offer) MarkExpired(now time.Time) error {
	if o.status != StatusActive {
		return ErrNotActive
	}
	if !o.Expired(now) {
		return ErrInvalidTransition
	}
	o.status = StatusExpired
	return nil
}

// Remaining is the countdown until expiry, zero once elapsed.
func (o *Offer) Remaining(now time.Time) time.Duration {
	d := o.expiresAt.Sub(now)
	if d < 0 {
		return 0
	}
	return d
}

func (o *Offer) IsOwnedBy(providerID uuid.UUID) bool {
	return o.providerID == providerID
}

func (o *Offer) ID() uuid.UUID          { return o.id }
func (o *Offer) RequestID() uuid.UUID   { return o.requestID }
func (o *Offer) ProviderID() uuid.UUID  { return o.providerID }
func (o *Offer) Status() Status         { return o.status }
func (o *Offer) Price() Money           { return o.price }
func (o *Offer) Window() DeliveryWindow { return o.window }
func (o *Offer) Message() Message       { return o.message }
func (o *Offer) CreatedAt() time.Time   { return o.createdAt }
func (o *Offer) ExpiresAt() time.Time   { return o.expiresAt }
