package readstore

import (
	"context"

	"aguamarket/internal/infra"
	"aguamarket/internal/infra/db"
	"aguamarket/internal/usecase/queries"

	"github.com/google/uuid"
)

type RequestReadStore struct {
	db db.DBTX
}

func NewRequestReadStore(db db.DBTX) *RequestReadStore {
	return &RequestReadStore{db: db}
}

// active_offer_count is computed live so consumers see the board move
// without waiting for a sweep.
const findRequestByIDSQL = `
SELECT r.id, r.consumer_id, r.supplier_id, r.status, r.amount_liters, r.address, r.is_urgent,
       r.payment_method, r.cancelled_by, r.cancellation_reason, r.created_at,
       r.accepted_at, r.in_transit_at, r.delivered_at, r.cancelled_at,
       (SELECT count(*) FROM offers o
        WHERE o.request_id = r.id AND o.status = 'active' AND o.expires_at > now()) AS active_offer_count
FROM requests r
WHERE r.id = $1
`

func (s *RequestReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.RequestView, error) {
	var v queries.RequestView
	err := s.db.QueryRow(ctx, findRequestByIDSQL, id).Scan(
		&v.ID,
		&v.ConsumerID,
		&v.SupplierID,
		&v.Status,
		&v.AmountLiters,
		&v.Address,
		&v.IsUrgent,
		&v.PaymentMethod,
		&v.CancelledBy,
		&v.CancellationReason,
		&v.CreatedAt,
		&v.AcceptedAt,
		&v.InTransitAt,
		&v.DeliveredAt,
		&v.CancelledAt,
		&v.ActiveOfferCount,
	)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find request", err)
	}
	return &v, nil
}

const listRequestItemsSQL = `
SELECT r.id, r.status, r.amount_liters, r.address, r.is_urgent, r.created_at,
       (SELECT count(*) FROM offers o
        WHERE o.request_id = r.id AND o.status = 'active' AND o.expires_at > now()) AS active_offer_count
FROM requests r
`

func (s *RequestReadStore) FindByConsumerID(ctx context.Context, consumerID uuid.UUID, limit, offset int32) ([]*queries.RequestListItem, error) {
	rows, err := s.db.Query(ctx,
		listRequestItemsSQL+"WHERE r.consumer_id = $1 ORDER BY r.created_at DESC LIMIT $2 OFFSET $3",
		consumerID, limit, offset)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list requests by consumer", err)
	}
	defer rows.Close()

	var items []*queries.RequestListItem
	for rows.Next() {
		var item queries.RequestListItem
		if err := rows.Scan(&item.ID, &item.Status, &item.AmountLiters, &item.Address, &item.IsUrgent, &item.CreatedAt, &item.ActiveOfferCount); err != nil {
			return nil, infra.WrapRepoErr("failed to scan request item", err)
		}
		items = append(items, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read request items", err)
	}
	return items, nil
}

func (s *RequestReadStore) FindOpen(ctx context.Context, limit, offset int32) ([]*queries.RequestListItem, error) {
	rows, err := s.db.Query(ctx,
		listRequestItemsSQL+"WHERE r.status = 'pending' ORDER BY r.is_urgent DESC, r.created_at LIMIT $1 OFFSET $2",
		limit, offset)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list open requests", err)
	}
	defer rows.Close()

	var items []*queries.RequestListItem
	for rows.Next() {
		var item queries.RequestListItem
		if err := rows.Scan(&item.ID, &item.Status, &item.AmountLiters, &item.Address, &item.IsUrgent, &item.CreatedAt, &item.ActiveOfferCount); err != nil {
			return nil, infra.WrapRepoErr("failed to scan request item", err)
		}
		items = append(items, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read request items", err)
	}
	return items, nil
}
