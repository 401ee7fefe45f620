package queries

import (
	"context"

	"github.com/google/uuid"
)

type RequestQueries interface {
	// GetByIDSystem skips authorization; reserved for read-after-write paths.
	GetByIDSystem(ctx context.Context, id uuid.UUID) (*RequestView, error)
	GetByID(ctx context.Context, actorID, id uuid.UUID) (*RequestView, error)
	ListByConsumer(ctx context.Context, consumerID uuid.UUID, limit int) ([]*RequestListItem, error)
	// ListOpen is the provider-facing board of pending requests.
	ListOpen(ctx context.Context, limit int) ([]*RequestListItem, error)
}

type RequestViewRepo interface {
	FindByID(ctx context.Context, id uuid.UUID) (*RequestView, error)
	FindByConsumerID(ctx context.Context, consumerID uuid.UUID, limit, offset int32) ([]*RequestListItem, error)
	FindOpen(ctx context.Context, limit, offset int32) ([]*RequestListItem, error)
}

type requestQueriesImpl struct {
	repo RequestViewRepo
}

func NewRequestQueries(repo RequestViewRepo) RequestQueries {
	return &requestQueriesImpl{repo: repo}
}

func (q *requestQueriesImpl) GetByIDSystem(ctx context.Context, id uuid.UUID) (*RequestView, error) {
	return q.repo.FindByID(ctx, id)
}

func (q *requestQueriesImpl) GetByID(ctx context.Context, actorID, id uuid.UUID) (*RequestView, error) {
	view, err := q.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if view.ConsumerID != actorID && (view.SupplierID == nil || *view.SupplierID != actorID) {
		return nil, ErrForbidden
	}
	return view, nil
}

func (q *requestQueriesImpl) ListByConsumer(ctx context.Context, consumerID uuid.UUID, limit int) ([]*RequestListItem, error) {
	if limit <= 0 {
		limit = 50
	}
	return q.repo.FindByConsumerID(ctx, consumerID, int32(limit), 0)
}

func (q *requestQueriesImpl) ListOpen(ctx context.Context, limit int) ([]*RequestListItem, error) {
	if limit <= 0 {
		limit = 50
	}
	return q.repo.FindOpen(ctx, int32(limit), 0)
}
