package response

import (
	"fmt"
	"time"

	"aguamarket/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

type OfferResponse struct {
	ID          uuid.UUID `json:"id"`
	RequestID   uuid.UUID `json:"requestId"`
	ProviderID  uuid.UUID `json:"providerId"`
	Status      string    `json:"status"`
	PriceCents  int64     `json:"priceCents"`
	WindowStart time.Time `json:"windowStart"`
	WindowEnd   time.Time `json:"windowEnd"`
	Message     *string   `json:"message,omitempty"`
	ExpiresAt   time.Time `json:"expiresAt"`
	// Remaining is the mm:ss countdown until expiry, empty once settled.
	Remaining string    `json:"remaining,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type GroupedOffersResponse struct {
	Active   []*OfferResponse `json:"active"`
	Accepted []*OfferResponse `json:"accepted"`
	History  []*OfferResponse `json:"history"`
}

func FromOfferView(view *queries.OfferView) *OfferResponse {
	var resp OfferResponse
	_ = copier.Copy(&resp, view)
	resp.Remaining = formatCountdown(view.RemainingSeconds)
	return &resp
}

func FromOfferViews(views []*queries.OfferView) []*OfferResponse {
	out := make([]*OfferResponse, len(views))
	for i, v := range views {
		out[i] = FromOfferView(v)
	}
	return out
}

func FromGroupedOffers(grouped *queries.GroupedProviderOffers) *GroupedOffersResponse {
	return &GroupedOffersResponse{
		Active:   FromOfferViews(grouped.Active),
		Accepted: FromOfferViews(grouped.Accepted),
		History:  FromOfferViews(grouped.History),
	}
}

func formatCountdown(seconds int64) string {
	if seconds <= 0 {
		return ""
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
