package repository

import (
	"context"
	"time"

	"aguamarket/internal/infra"
	"aguamarket/internal/infra/db"
	"aguamarket/internal/usecase/shared"
)

type SettingsRepository struct{}

func NewSettingsRepository() *SettingsRepository {
	return &SettingsRepository{}
}

const updateSettingsSQL = `
UPDATE platform_settings
SET base_price_per_liter_cents = COALESCE($1::BIGINT, base_price_per_liter_cents),
    commission_pct             = COALESCE($2::DOUBLE PRECISION, commission_pct),
    urgency_surcharge_pct      = COALESCE($3::DOUBLE PRECISION, urgency_surcharge_pct),
    offer_validity_minutes     = COALESCE($4::INT, offer_validity_minutes),
    request_timeout_minutes    = COALESCE($5::INT, request_timeout_minutes),
    updated_at                 = $6
WHERE id = 1
`

func (r *SettingsRepository) Update(ctx context.Context, tx db.DBTX, patch shared.SettingsPatch, now time.Time) error {
	_, err := tx.Exec(ctx, updateSettingsSQL,
		patch.BasePricePerLiterCents,
		patch.CommissionPct,
		patch.UrgencySurchargePct,
		patch.OfferValidityMinutes,
		patch.RequestTimeoutMinutes,
		now,
	)
	if err != nil {
		return infra.WrapRepoErr("failed to update platform settings", err)
	}
	return nil
}
