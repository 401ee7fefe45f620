package readstore

import (
	"context"

	"aguamarket/internal/infra"
	"aguamarket/internal/infra/db"
	"aguamarket/internal/usecase/queries"
)

type SettingsReadStore struct {
	db db.DBTX
}

func NewSettingsReadStore(db db.DBTX) *SettingsReadStore {
	return &SettingsReadStore{db: db}
}

const getSettingsSQL = `
SELECT base_price_per_liter_cents, commission_pct, urgency_surcharge_pct,
       offer_validity_minutes, request_timeout_minutes, updated_at
FROM platform_settings
WHERE id = 1
`

func (s *SettingsReadStore) Get(ctx context.Context) (*queries.SettingsView, error) {
	var v queries.SettingsView
	err := s.db.QueryRow(ctx, getSettingsSQL).Scan(
		&v.BasePricePerLiterCents,
		&v.CommissionPct,
		&v.UrgencySurchargePct,
		&v.OfferValidityMinutes,
		&v.RequestTimeoutMinutes,
		&v.UpdatedAt,
	)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to load platform settings", err)
	}
	return &v, nil
}
