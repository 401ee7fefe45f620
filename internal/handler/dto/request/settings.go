package request

import (
	"errors"

	"aguamarket/internal/usecase/shared"
)

var errSettingsOutOfRange = errors.New("settings value out of range")

type UpdateSettingsRequest struct {
	BasePricePerLiterCents *int64   `json:"base_price_per_liter_cents,omitempty"`
	CommissionPct          *float64 `json:"commission_pct,omitempty"`
	UrgencySurchargePct    *float64 `json:"urgency_surcharge_pct,omitempty"`
	OfferValidityMinutes   *int     `json:"offer_validity_minutes,omitempty"`
	RequestTimeoutMinutes  *int     `json:"request_timeout_minutes,omitempty"`
}

func (r UpdateSettingsRequest) ToPatch() (shared.SettingsPatch, error) {
	if r.BasePricePerLiterCents != nil && *r.BasePricePerLiterCents < 0 {
		return shared.SettingsPatch{}, errSettingsOutOfRange
	}
	if r.CommissionPct != nil && (*r.CommissionPct < 0 || *r.CommissionPct > 100) {
		return shared.SettingsPatch{}, errSettingsOutOfRange
	}
	if r.UrgencySurchargePct != nil && (*r.UrgencySurchargePct < 0 || *r.UrgencySurchargePct > 100) {
		return shared.SettingsPatch{}, errSettingsOutOfRange
	}
	if r.OfferValidityMinutes != nil && *r.OfferValidityMinutes < 1 {
		return shared.SettingsPatch{}, errSettingsOutOfRange
	}
	if r.RequestTimeoutMinutes != nil && *r.RequestTimeoutMinutes < 1 {
		return shared.SettingsPatch{}, errSettingsOutOfRange
	}

	return shared.SettingsPatch{
		BasePricePerLiterCents: r.BasePricePerLiterCents,
		CommissionPct:          r.CommissionPct,
		UrgencySurchargePct:    r.UrgencySurchargePct,
		OfferValidityMinutes:   r.OfferValidityMinutes,
		RequestTimeoutMinutes:  r.RequestTimeoutMinutes,
	}, nil
}
