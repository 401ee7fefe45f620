package response

import (
	"time"

	"aguamarket/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

type RequestResponse struct {
	ID                 uuid.UUID  `json:"id"`
	ConsumerID         uuid.UUID  `json:"consumerId"`
	SupplierID         *uuid.UUID `json:"supplierId,omitempty"`
	Status             string     `json:"status"`
	AmountLiters       int        `json:"amountLiters"`
	Address            string     `json:"address"`
	IsUrgent           bool       `json:"isUrgent"`
	PaymentMethod      string     `json:"paymentMethod"`
	CancelledBy        *string    `json:"cancelledBy,omitempty"`
	CancellationReason *string    `json:"cancellationReason,omitempty"`
	CreatedAt          time.Time  `json:"createdAt"`
	AcceptedAt         *time.Time `json:"acceptedAt,omitempty"`
	InTransitAt        *time.Time `json:"inTransitAt,omitempty"`
	DeliveredAt        *time.Time `json:"deliveredAt,omitempty"`
	CancelledAt        *time.Time `json:"cancelledAt,omitempty"`
	ActiveOfferCount   int        `json:"activeOfferCount"`
}

type RequestListResponse struct {
	ID               uuid.UUID `json:"id"`
	Status           string    `json:"status"`
	AmountLiters     int       `json:"amountLiters"`
	Address          string    `json:"address"`
	IsUrgent         bool      `json:"isUrgent"`
	CreatedAt        time.Time `json:"createdAt"`
	ActiveOfferCount int       `json:"activeOfferCount"`
}

func FromRequestView(view *queries.RequestView) *RequestResponse {
	var resp RequestResponse
	_ = copier.Copy(&resp, view)
	return &resp
}

func FromRequestListItems(items []*queries.RequestListItem) []*RequestListResponse {
	out := make([]*RequestListResponse, len(items))
	for i, item := range items {
		var resp RequestListResponse
		_ = copier.Copy(&resp, item)
		out[i] = &resp
	}
	return out
}
