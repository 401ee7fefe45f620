package request

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidPaymentMethod = errors.New("invalid payment method")
	ErrInvalidTransition    = errors.New("request status transition not permitted")
	ErrAlreadyTerminal      = errors.New("request is in a terminal status")
)

type Request struct {
	id                 uuid.UUID
	consumerID         uuid.UUID
	supplierID         *uuid.UUID
	status             Status
	amount             Amount
	address            Address
	isUrgent           bool
	paymentMethod      PaymentMethod
	cancelledBy        *CancelActor
	cancellationReason *string
	createdAt          time.Time
	acceptedAt         *time.Time
	inTransitAt        *time.Time
	deliveredAt        *time.Time
	cancelledAt        *time.Time
}

func NewRequest(consumerID uuid.UUID, amount Amount, address Address, isUrgent bool, payment PaymentMethod) (*Request, error) {
	if !payment.IsValid() {
		return nil, ErrInvalidPaymentMethod
	}

	return &Request{
		id:            uuid.New(),
		consumerID:    consumerID,
		status:        StatusPending,
		amount:        amount,
		address:       address,
		isUrgent:      isUrgent,
		paymentMethod: payment,
	}, nil
}

func ReconstructRequest(
	id, consumerID uuid.UUID,
	supplierID *uuid.UUID,
	status Status,
	amount Amount,
	address Address,
	isUrgent bool,
	payment PaymentMethod,
	createdAt time.Time,
) *Request {
	return &Request{
		id:            id,
		consumerID:    consumerID,
		supplierID:    supplierID,
		status:        status,
		amount:        amount,
		address:       address,
		isUrgent:      isUrgent,
		paymentMethod: payment,
		createdAt:     createdAt,
	}
}

// Accept binds the winning supplier. Only valid from pending.
func (r *Request) Accept(supplierID uuid.UUID, now time.Time) error {
	if !r.status.CanTransitionTo(StatusAccepted) {
		return ErrInvalidTransition
	}
	r.status = StatusAccepted
	r.supplierID = &supplierID
	r.acceptedAt = &now
	return nil
}

func (r *Request) MarkInTransit(now time.Time) error {
	if !r.status.CanTransitionTo(StatusInTransit) {
		return ErrInvalidTransition
	}
	r.status = StatusInTransit
	r.inTransitAt = &now
	return nil
}

func (r *Request) MarkDelivered(now time.Time) error {
	if !r.status.CanTransitionTo(StatusDelivered) {
		return ErrInvalidTransition
	}
	r.status = StatusDelivered
	r.deliveredAt = &now
	return nil
}

func (r *Request) Cancel(actor CancelActor, reason string, now time.Time) error {
	if r.status.IsTerminal() {
		return ErrAlreadyTerminal
	}
	if !r.status.CanTransitionTo(StatusCancelled) {
		return ErrInvalidTransition
	}
	r.status = StatusCancelled
	r.cancelledBy = &actor
	r.cancelledAt = &now
	if reason != "" {
		r.cancellationReason = &reason
	}
	return nil
}

func (r *Request) IsOpenForOffers() bool {
	return r.status == StatusPending
}

func (r *Request) IsOwnedBy(consumerID uuid.UUID) bool {
	return r.consumerID == consumerID
}

func (r *Request) ID() uuid.UUID                { return r.id }
func (r *Request) ConsumerID() uuid.UUID        { return r.consumerID }
func (r *Request) SupplierID() *uuid.UUID       { return r.supplierID }
func (r *Request) Status() Status               { return r.status }
func (r *Request) Amount() Amount               { return r.amount }
func (r *Request) Address() Address             { return r.address }
func (r *Request) IsUrgent() bool               { return r.isUrgent }
func (r *Request) PaymentMethod() PaymentMethod { return r.paymentMethod }
func (r *Request) CancelledBy() *CancelActor    { return r.cancelledBy }
func (r *Request) CancellationReason() *string  { return r.cancellationReason }
func (r *Request) CreatedAt() time.Time         { return r.createdAt }
func (r *Request) AcceptedAt() *time.Time       { return r.acceptedAt }
func (r *Request) InTransitAt() *time.Time      { return r.inTransitAt }
func (r *Request) DeliveredAt() *time.Time      { return r.deliveredAt }
func (r *Request) CancelledAt() *time.Time      { return r.cancelledAt }
