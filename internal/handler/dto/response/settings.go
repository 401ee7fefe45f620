package response

import (
	"time"

	"aguamarket/internal/usecase/queries"

	"github.com/jinzhu/copier"
)

type SettingsResponse struct {
	BasePricePerLiterCents int64     `json:"basePricePerLiterCents"`
	CommissionPct          float64   `json:"commissionPct"`
	UrgencySurchargePct    float64   `json:"urgencySurchargePct"`
	OfferValidityMinutes   int       `json:"offerValidityMinutes"`
	RequestTimeoutMinutes  int       `json:"requestTimeoutMinutes"`
	UpdatedAt              time.Time `json:"updatedAt"`
}

func FromSettingsView(view *queries.SettingsView) *SettingsResponse {
	var resp SettingsResponse
	_ = copier.Copy(&resp, view)
	return &resp
}
