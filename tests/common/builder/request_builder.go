//go:build unit || e2e

package builder

import (
	"time"

	domrequest "aguamarket/internal/domain/request"
	reqdto "aguamarket/internal/handler/dto/request"
	"aguamarket/internal/usecase/queries"
	"aguamarket/internal/usecase/shared"

	"github.com/google/uuid"
)

type RequestBuilder struct {
	ID            uuid.UUID
	ConsumerID    uuid.UUID
	SupplierID    *uuid.UUID
	Status        domrequest.Status
	AmountLiters  int
	Address       string
	IsUrgent      bool
	PaymentMethod domrequest.PaymentMethod
	CreatedAt     time.Time
}

func NewRequestBuilder() *RequestBuilder {
	return &RequestBuilder{
		ID:            uuid.New(),
		ConsumerID:    uuid.New(),
		Status:        domrequest.StatusPending,
		AmountLiters:  1000,
		Address:       "Av. Las Torres 742, Lima",
		IsUrgent:      false,
		PaymentMethod: domrequest.PaymentCash,
		CreatedAt:     time.Now(),
	}
}

func (b *RequestBuilder) With(mutate func(*RequestBuilder)) *RequestBuilder {
	mutate(b)
	return b
}

// Build methods

func (b *RequestBuilder) BuildDomain() (*domrequest.Request, error) {
	amount, err := domrequest.NewAmount(b.AmountLiters)
	if err != nil {
		return nil, err
	}
	address, err := domrequest.NewAddress(b.Address)
	if err != nil {
		return nil, err
	}
	return domrequest.NewRequest(b.ConsumerID, amount, address, b.IsUrgent, b.PaymentMethod)
}

// BuildReconstructed stages a request in an arbitrary persisted status.
func (b *RequestBuilder) BuildReconstructed() *domrequest.Request {
	amount, _ := domrequest.NewAmount(b.AmountLiters)
	address, _ := domrequest.NewAddress(b.Address)
	return domrequest.ReconstructRequest(
		b.ID, b.ConsumerID, b.SupplierID,
		b.Status, amount, address, b.IsUrgent, b.PaymentMethod,
		b.CreatedAt,
	)
}

func (b *RequestBuilder) BuildCreateDTO() reqdto.CreateRequestRequest {
	return reqdto.CreateRequestRequest{
		AmountLiters:  b.AmountLiters,
		Address:       b.Address,
		IsUrgent:      b.IsUrgent,
		PaymentMethod: b.PaymentMethod.String(),
	}
}

func (b *RequestBuilder) BuildView() *queries.RequestView {
	return &queries.RequestView{
		ID:            b.ID,
		ConsumerID:    b.ConsumerID,
		SupplierID:    b.SupplierID,
		Status:        b.Status.String(),
		AmountLiters:  b.AmountLiters,
		Address:       b.Address,
		IsUrgent:      b.IsUrgent,
		PaymentMethod: b.PaymentMethod.String(),
		CreatedAt:     b.CreatedAt,
	}
}

func (b *RequestBuilder) BuildListItem() *queries.RequestListItem {
	return &queries.RequestListItem{
		ID:           b.ID,
		Status:       b.Status.String(),
		AmountLiters: b.AmountLiters,
		Address:      b.Address,
		IsUrgent:     b.IsUrgent,
		CreatedAt:    b.CreatedAt,
	}
}

func (b *RequestBuilder) BuildSnapshot() *shared.RequestSnapshot {
	return &shared.RequestSnapshot{
		ID:           b.ID,
		ConsumerID:   b.ConsumerID,
		SupplierID:   b.SupplierID,
		Status:       b.Status,
		AmountLiters: b.AmountLiters,
		IsUrgent:     b.IsUrgent,
	}
}

// Fluent builder methods

func (b *RequestBuilder) WithID(id uuid.UUID) *RequestBuilder {
	b.ID = id
	return b
}

func (b *RequestBuilder) WithConsumerID(id uuid.UUID) *RequestBuilder {
	b.ConsumerID = id
	return b
}

func (b *RequestBuilder) WithSupplierID(id uuid.UUID) *RequestBuilder {
	b.SupplierID = &id
	return b
}

func (b *RequestBuilder) WithStatus(status domrequest.Status) *RequestBuilder {
	b.Status = status
	return b
}

func (b *RequestBuilder) WithAmountLiters(liters int) *RequestBuilder {
	b.AmountLiters = liters
	return b
}

func (b *RequestBuilder) WithAddress(address string) *RequestBuilder {
	b.Address = address
	return b
}

func (b *RequestBuilder) WithUrgent(urgent bool) *RequestBuilder {
	b.IsUrgent = urgent
	return b
}

func (b *RequestBuilder) WithPaymentMethod(method domrequest.PaymentMethod) *RequestBuilder {
	b.PaymentMethod = method
	return b
}

func (b *RequestBuilder) AsAccepted() *RequestBuilder {
	supplierID := uuid.New()
	b.Status = domrequest.StatusAccepted
	b.SupplierID = &supplierID
	return b
}
