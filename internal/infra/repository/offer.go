package repository

import (
	"context"
	"errors"
	"time"

	"aguamarket/internal/domain/offer"
	"aguamarket/internal/infra"
	"aguamarket/internal/infra/db"
	"aguamarket/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type OfferRepository struct{}

func NewOfferRepository() *OfferRepository {
	return &OfferRepository{}
}

// The insert itself re-checks that the request is still pending, so a
// concurrent selection or cancellation cannot slip in a late offer.
const createOfferSQL = `
INSERT INTO offers (id, request_id, provider_id, status, price_cents, window_start, window_end, message, created_at, expires_at)
SELECT $1, $2, $3, $4, $5, $6, $7, $8, $9, $10
WHERE EXISTS (SELECT 1 FROM requests WHERE id = $2 AND status = 'pending')
RETURNING id
`

func (r *OfferRepository) Create(ctx context.Context, tx db.DBTX, o *offer.Offer) (uuid.UUID, error) {
	var message *string
	if !o.Message().IsEmpty() {
		s := o.Message().String()
		message = &s
	}

	var id uuid.UUID
	err := tx.QueryRow(ctx, createOfferSQL,
		o.ID(),
		o.RequestID(),
		o.ProviderID(),
		o.Status().String(),
		o.Price().Cents(),
		o.Window().Start(),
		o.Window().End(),
		message,
		o.CreatedAt(),
		o.ExpiresAt(),
	).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// No row inserted: the request left pending underneath us.
			return uuid.Nil, infra.WrapRepoErr("request no longer open", err, infra.KindConflict)
		}
		return uuid.Nil, infra.WrapRepoErr("failed to create offer", err)
	}
	return id, nil
}

const acceptActiveOfferSQL = `
UPDATE offers
SET status = 'accepted'
WHERE id = $1 AND request_id = $2 AND status = 'active' AND expires_at >= $3
`

func (r *OfferRepository) AcceptActive(ctx context.Context, tx db.DBTX, offerID, requestID uuid.UUID, now time.Time) (int64, error) {
	tag, err := tx.Exec(ctx, acceptActiveOfferSQL, offerID, requestID, now)
	if err != nil {
		return 0, infra.WrapRepoErr("failed to accept offer", err)
	}
	return tag.RowsAffected(), nil
}

const fillActiveSiblingsSQL = `
UPDATE offers
SET status = 'request_filled'
WHERE request_id = $1 AND id <> $2 AND status = 'active'
RETURNING id, request_id, provider_id
`

func (r *OfferRepository) FillActiveSiblings(ctx context.Context, tx db.DBTX, requestID, winnerID uuid.UUID) ([]shared.OfferRef, error) {
	rows, err := tx.Query(ctx, fillActiveSiblingsSQL, requestID, winnerID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to fill sibling offers", err)
	}
	return scanOfferRefs(rows)
}

const withdrawActiveOfferSQL = `
UPDATE offers
SET status = 'cancelled'
WHERE id = $1 AND provider_id = $2 AND status = 'active'
`

func (r *OfferRepository) WithdrawActive(ctx context.Context, tx db.DBTX, offerID, providerID uuid.UUID) (int64, error) {
	tag, err := tx.Exec(ctx, withdrawActiveOfferSQL, offerID, providerID)
	if err != nil {
		return 0, infra.WrapRepoErr("failed to withdraw offer", err)
	}
	return tag.RowsAffected(), nil
}

const cancelActiveByRequestSQL = `
UPDATE offers
SET status = 'cancelled'
WHERE request_id = $1 AND status = 'active'
RETURNING id, request_id, provider_id
`

func (r *OfferRepository) CancelActiveByRequest(ctx context.Context, tx db.DBTX, requestID uuid.UUID) ([]shared.OfferRef, error) {
	rows, err := tx.Query(ctx, cancelActiveByRequestSQL, requestID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to cancel request offers", err)
	}
	return scanOfferRefs(rows)
}

// Strict inequality matches Offer.Expired: an offer stays valid through
// its exact expiry instant.
const expireDueOffersSQL = `
UPDATE offers
SET status = 'expired'
WHERE status = 'active' AND expires_at < $1
RETURNING id, request_id, provider_id
`

func (r *OfferRepository) ExpireDue(ctx context.Context, tx db.DBTX, now time.Time) ([]shared.OfferRef, error) {
	rows, err := tx.Query(ctx, expireDueOffersSQL, now)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to expire offers", err)
	}
	return scanOfferRefs(rows)
}

func scanOfferRefs(rows pgx.Rows) ([]shared.OfferRef, error) {
	defer rows.Close()

	var refs []shared.OfferRef
	for rows.Next() {
		var ref shared.OfferRef
		if err := rows.Scan(&ref.ID, &ref.RequestID, &ref.ProviderID); err != nil {
			return nil, infra.WrapRepoErr("failed to scan offer ref", err)
		}
		refs = append(refs, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read offer refs", err)
	}
	return refs, nil
}
