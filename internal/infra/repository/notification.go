package repository

import (
	"context"
	"time"

	"aguamarket/internal/infra"
	"aguamarket/internal/infra/db"
	"aguamarket/internal/usecase/shared"

	"github.com/google/uuid"
)

type NotificationRepository struct{}

func NewNotificationRepository() *NotificationRepository {
	return &NotificationRepository{}
}

const createNotificationJobSQL = `
INSERT INTO notification_jobs (kind, topic, payload, run_at)
VALUES ($1, $2, $3, $4)
`

func (r *NotificationRepository) CreateJob(ctx context.Context, tx db.DBTX, kind, topic string, payload []byte, runAt time.Time) error {
	if _, err := tx.Exec(ctx, createNotificationJobSQL, kind, topic, payload, runAt); err != nil {
		return infra.WrapRepoErr("failed to create notification job", err)
	}
	return nil
}

// ClaimDue marks up to `limit` due jobs as in-flight by bumping attempts,
// returning them for delivery. SKIP LOCKED keeps concurrent dispatchers
// from double-claiming.
const claimDueJobsSQL = `
UPDATE notification_jobs
SET attempts = attempts + 1, updated_at = now()
WHERE id IN (
    SELECT id FROM notification_jobs
    WHERE status = 'pending' AND run_at <= $1
    ORDER BY run_at
    LIMIT $2
    FOR UPDATE SKIP LOCKED
)
RETURNING id, kind, topic, payload, run_at
`

func (r *NotificationRepository) ClaimDue(ctx context.Context, tx db.DBTX, now time.Time, limit int) ([]shared.NotificationJob, error) {
	rows, err := tx.Query(ctx, claimDueJobsSQL, now, limit)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to claim notification jobs", err)
	}
	defer rows.Close()

	var jobs []shared.NotificationJob
	for rows.Next() {
		var job shared.NotificationJob
		if err := rows.Scan(&job.ID, &job.Kind, &job.Topic, &job.Payload, &job.RunAt); err != nil {
			return nil, infra.WrapRepoErr("failed to scan notification job", err)
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read notification jobs", err)
	}
	return jobs, nil
}

const markJobDoneSQL = `
UPDATE notification_jobs
SET status = 'done', updated_at = now()
WHERE id = $1
`

func (r *NotificationRepository) MarkDone(ctx context.Context, tx db.DBTX, id uuid.UUID) error {
	if _, err := tx.Exec(ctx, markJobDoneSQL, id); err != nil {
		return infra.WrapRepoErr("failed to mark notification job done", err)
	}
	return nil
}

const markJobFailedSQL = `
UPDATE notification_jobs
SET status = CASE WHEN attempts >= $3 THEN 'failed' ELSE 'pending' END,
    last_error = $2,
    updated_at = now()
WHERE id = $1
`

func (r *NotificationRepository) MarkFailed(ctx context.Context, tx db.DBTX, id uuid.UUID, lastError string, maxAttempts int) error {
	if _, err := tx.Exec(ctx, markJobFailedSQL, id, lastError, maxAttempts); err != nil {
		return infra.WrapRepoErr("failed to mark notification job failed", err)
	}
	return nil
}
