package repository

import (
	"context"
	"time"

	"aguamarket/internal/domain/request"
	"aguamarket/internal/infra"
	"aguamarket/internal/infra/db"

	"github.com/google/uuid"
)

type RequestRepository struct{}

func NewRequestRepository() *RequestRepository {
	return &RequestRepository{}
}

const createRequestSQL = `
INSERT INTO requests (id, consumer_id, status, amount_liters, address, is_urgent, payment_method)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id
`

func (r *RequestRepository) Create(ctx context.Context, tx db.DBTX, req *request.Request) (uuid.UUID, error) {
	var id uuid.UUID
	err := tx.QueryRow(ctx, createRequestSQL,
		req.ID(),
		req.ConsumerID(),
		req.Status().String(),
		req.Amount().Liters(),
		req.Address().String(),
		req.IsUrgent(),
		req.PaymentMethod().String(),
	).Scan(&id)
	if err != nil {
		return uuid.Nil, infra.WrapRepoErr("failed to create request", err)
	}
	return id, nil
}

const acceptPendingRequestSQL = `
UPDATE requests
SET status = 'accepted', supplier_id = $2, accepted_at = $3
WHERE id = $1 AND status = 'pending'
`

func (r *RequestRepository) AcceptPending(ctx context.Context, tx db.DBTX, requestID, supplierID uuid.UUID, now time.Time) (int64, error) {
	tag, err := tx.Exec(ctx, acceptPendingRequestSQL, requestID, supplierID, now)
	if err != nil {
		return 0, infra.WrapRepoErr("failed to accept request", err)
	}
	return tag.RowsAffected(), nil
}

const markInTransitSQL = `
UPDATE requests
SET status = 'in_transit', in_transit_at = $2
WHERE id = $1 AND status = 'accepted'
`

func (r *RequestRepository) MarkInTransit(ctx context.Context, tx db.DBTX, requestID uuid.UUID, now time.Time) (int64, error) {
	tag, err := tx.Exec(ctx, markInTransitSQL, requestID, now)
	if err != nil {
		return 0, infra.WrapRepoErr("failed to mark request in transit", err)
	}
	return tag.RowsAffected(), nil
}

const markDeliveredSQL = `
UPDATE requests
SET status = 'delivered', delivered_at = $2
WHERE id = $1 AND status = 'in_transit'
`

func (r *RequestRepository) MarkDelivered(ctx context.Context, tx db.DBTX, requestID uuid.UUID, now time.Time) (int64, error) {
	tag, err := tx.Exec(ctx, markDeliveredSQL, requestID, now)
	if err != nil {
		return 0, infra.WrapRepoErr("failed to mark request delivered", err)
	}
	return tag.RowsAffected(), nil
}

const cancelRequestSQL = `
UPDATE requests
SET status = 'cancelled', cancelled_by = $2, cancellation_reason = NULLIF($3, ''), cancelled_at = $4
WHERE id = $1 AND status = 'pending'
`

func (r *RequestRepository) CancelPending(ctx context.Context, tx db.DBTX, requestID uuid.UUID, actor request.CancelActor, reason string, now time.Time) (int64, error) {
	tag, err := tx.Exec(ctx, cancelRequestSQL, requestID, string(actor), reason, now)
	if err != nil {
		return 0, infra.WrapRepoErr("failed to cancel request", err)
	}
	return tag.RowsAffected(), nil
}

// Requests only time out while they never attracted a single offer;
// any offer, even an already-expired one, keeps the request open.
const timeOutStaleSQL = `
UPDATE requests
SET status = 'no_offers'
WHERE status = 'pending'
  AND created_at <= $1
  AND NOT EXISTS (SELECT 1 FROM offers WHERE offers.request_id = requests.id)
RETURNING id
`

func (r *RequestRepository) TimeOutStale(ctx context.Context, tx db.DBTX, cutoff time.Time) ([]uuid.UUID, error) {
	rows, err := tx.Query(ctx, timeOutStaleSQL, cutoff)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to time out stale requests", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, infra.WrapRepoErr("failed to scan request id", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read request ids", err)
	}
	return ids, nil
}
