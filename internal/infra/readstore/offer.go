package readstore

import (
	"context"

	"aguamarket/internal/infra"
	"aguamarket/internal/infra/db"
	"aguamarket/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type OfferReadStore struct {
	db db.DBTX
}

func NewOfferReadStore(db db.DBTX) *OfferReadStore {
	return &OfferReadStore{db: db}
}

const offerViewColumns = `
SELECT id, request_id, provider_id, status, price_cents, window_start, window_end, message, expires_at, created_at
FROM offers
`

func (s *OfferReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.OfferView, error) {
	row := s.db.QueryRow(ctx, offerViewColumns+"WHERE id = $1", id)
	view, err := scanOfferView(row)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find offer", err)
	}
	return view, nil
}

func (s *OfferReadStore) FindByRequestID(ctx context.Context, requestID uuid.UUID) ([]*queries.OfferView, error) {
	rows, err := s.db.Query(ctx, offerViewColumns+"WHERE request_id = $1 ORDER BY created_at", requestID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list offers by request", err)
	}
	return scanOfferViews(rows)
}

func (s *OfferReadStore) FindByProviderID(ctx context.Context, providerID uuid.UUID) ([]*queries.OfferView, error) {
	rows, err := s.db.Query(ctx, offerViewColumns+"WHERE provider_id = $1 ORDER BY created_at DESC", providerID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list offers by provider", err)
	}
	return scanOfferViews(rows)
}

func scanOfferView(row pgx.Row) (*queries.OfferView, error) {
	var v queries.OfferView
	err := row.Scan(
		&v.ID,
		&v.RequestID,
		&v.ProviderID,
		&v.Status,
		&v.PriceCents,
		&v.WindowStart,
		&v.WindowEnd,
		&v.Message,
		&v.ExpiresAt,
		&v.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func scanOfferViews(rows pgx.Rows) ([]*queries.OfferView, error) {
	defer rows.Close()

	var views []*queries.OfferView
	for rows.Next() {
		v, err := scanOfferView(rows)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to scan offer view", err)
		}
		views = append(views, v)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read offer views", err)
	}
	return views, nil
}
