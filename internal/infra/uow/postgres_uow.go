package uow

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"log/slog"
	"time"

	"aguamarket/internal/domain/offer"
	"aguamarket/internal/domain/request"
	"aguamarket/internal/domain/user"
	"aguamarket/internal/infra/db"
	"aguamarket/internal/infra/readstore"
	"aguamarket/internal/infra/repository"
	"aguamarket/internal/pkg/errs"
	"aguamarket/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	pgErrCodeSerializationFailure = "40001"
	pgErrCodeDeadlockDetected     = "40P01"
)

var (
	errTransactionBegin   = errs.New("failed to begin transaction")
	errTransactionCommit  = errs.New("failed to commit transaction")
	errMaxRetriesExceeded = errs.New("transaction failed after max retries")
)

type PostgresUoW struct {
	pool *pgxpool.Pool
}

func NewPostgresUoW(pool *pgxpool.Pool) shared.UnitOfWork {
	return &PostgresUoW{pool: pool}
}

// ReadCommitted prevents dirty reads while allowing concurrent writes;
// the status-guarded updates carry the race protection.
func (u *PostgresUoW) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	return u.runInTxWithOptions(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, fn)
}

func (u *PostgresUoW) CommandReads() shared.CommandReads {
	return &commandReads{dbtx: u.pool}
}

// Avoids defer accumulation in retry loops to prevent connection leaks
func (u *PostgresUoW) runInTxWithOptions(ctx context.Context, options pgx.TxOptions, fn func(ctx context.Context, tx shared.Tx) error) error {
	const maxRetries = 3
	base := 100 * time.Millisecond

	for attempt := 0; attempt <= maxRetries; attempt++ {
		pgxTx, err := u.pool.BeginTx(ctx, options)
		if err != nil {
			return errs.Mark(err, errTransactionBegin)
		}

		tx := &pgTx{dbtx: pgxTx}

		err = fn(ctx, tx)
		if err == nil {
			if err = pgxTx.Commit(ctx); err == nil {
				return nil
			}
			err = errs.Mark(err, errTransactionCommit)
		}

		if rollbackErr := pgxTx.Rollback(ctx); rollbackErr != nil {
			if !errors.Is(rollbackErr, pgx.ErrTxClosed) {
				slog.Warn("rollback failed", "attempt", attempt+1, "error", rollbackErr.Error())
			}
		}

		if !shouldRetry(err, attempt, maxRetries) {
			if attempt == maxRetries {
				slog.Error("transaction failed after max retries",
					"attempts", attempt+1,
					"error", err.Error())
				return errs.Mark(err, errMaxRetriesExceeded)
			}
			return err
		}

		waitTime := calculateBackoff(attempt, base)

		slog.Warn("retrying transaction due to retryable error",
			"attempt", attempt+1,
			"wait_ms", waitTime.Milliseconds(),
			"error", err.Error())

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(waitTime):
		}
	}

	return errMaxRetriesExceeded
}

func shouldRetry(err error, attempt, maxRetries int) bool {
	return isRetryableError(err) && attempt < maxRetries
}

func calculateBackoff(attempt int, base time.Duration) time.Duration {
	waitTime := time.Duration(1<<attempt) * base
	jitter := cryptoRandInt63n(int64(waitTime / 5))
	return waitTime + time.Duration(jitter)
}

func cryptoRandInt63n(n int64) int64 {
	if n <= 0 {
		return 0
	}
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// Fallback to a simple calculation if crypto/rand fails
		return 0
	}
	// Safe conversion: mask high bit to ensure positive int64
	uval := binary.BigEndian.Uint64(buf[:]) & 0x7FFFFFFFFFFFFFFF
	// #nosec G115 -- Intentionally safe conversion after masking
	return int64(uval) % n
}

func isRetryableError(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}

	switch pgErr.Code {
	case pgErrCodeSerializationFailure, pgErrCodeDeadlockDetected:
		return true
	default:
		return false
	}
}

type pgTx struct {
	dbtx db.DBTX

	// Lazy-initialized repositories
	offerRepo        shared.OfferRepository
	requestRepo      shared.RequestRepository
	userRepo         shared.UserRepository
	settingsRepo     shared.SettingsRepository
	notificationRepo shared.NotificationRepository
	commandReads     shared.CommandReads
}

func (t *pgTx) DB() db.DBTX {
	return t.dbtx
}

func (t *pgTx) Offers() shared.OfferRepository {
	if t.offerRepo == nil {
		t.offerRepo = repository.NewOfferRepository()
	}
	return t.offerRepo
}

func (t *pgTx) Requests() shared.RequestRepository {
	if t.requestRepo == nil {
		t.requestRepo = repository.NewRequestRepository()
	}
	return t.requestRepo
}

func (t *pgTx) Users() shared.UserRepository {
	if t.userRepo == nil {
		t.userRepo = repository.NewUserRepository()
	}
	return t.userRepo
}

func (t *pgTx) Settings() shared.SettingsRepository {
	if t.settingsRepo == nil {
		t.settingsRepo = repository.NewSettingsRepository()
	}
	return t.settingsRepo
}

func (t *pgTx) Notifications() shared.NotificationRepository {
	if t.notificationRepo == nil {
		t.notificationRepo = repository.NewNotificationRepository()
	}
	return t.notificationRepo
}

func (t *pgTx) Reads() shared.CommandReads {
	if t.commandReads == nil {
		t.commandReads = &commandReads{dbtx: t.dbtx}
	}
	return t.commandReads
}

type commandReads struct {
	dbtx db.DBTX

	// Lazy-initialized readstores
	offerStore    *readstore.OfferReadStore
	requestStore  *readstore.RequestReadStore
	settingsStore *readstore.SettingsReadStore
	userStore     *readstore.UserReadStore
}

func (r *commandReads) RequestByID(ctx context.Context, id uuid.UUID) (*shared.RequestSnapshot, error) {
	if r.requestStore == nil {
		r.requestStore = readstore.NewRequestReadStore(r.dbtx)
	}

	view, err := r.requestStore.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return &shared.RequestSnapshot{
		ID:           view.ID,
		ConsumerID:   view.ConsumerID,
		SupplierID:   view.SupplierID,
		Status:       request.Status(view.Status),
		AmountLiters: view.AmountLiters,
		IsUrgent:     view.IsUrgent,
	}, nil
}

func (r *commandReads) OfferByID(ctx context.Context, id uuid.UUID) (*shared.OfferSnapshot, error) {
	if r.offerStore == nil {
		r.offerStore = readstore.NewOfferReadStore(r.dbtx)
	}

	view, err := r.offerStore.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return &shared.OfferSnapshot{
		ID:         view.ID,
		RequestID:  view.RequestID,
		ProviderID: view.ProviderID,
		Status:     offer.Status(view.Status),
		ExpiresAt:  view.ExpiresAt,
	}, nil
}

func (r *commandReads) Settings(ctx context.Context) (*shared.SettingsSnapshot, error) {
	if r.settingsStore == nil {
		r.settingsStore = readstore.NewSettingsReadStore(r.dbtx)
	}

	view, err := r.settingsStore.Get(ctx)
	if err != nil {
		return nil, err
	}

	return &shared.SettingsSnapshot{
		BasePricePerLiterCents: view.BasePricePerLiterCents,
		CommissionPct:          view.CommissionPct,
		UrgencySurchargePct:    view.UrgencySurchargePct,
		OfferValidityMinutes:   view.OfferValidityMinutes,
		RequestTimeoutMinutes:  view.RequestTimeoutMinutes,
	}, nil
}

func (r *commandReads) UserByEmail(ctx context.Context, email string) (*shared.UserSnapshot, error) {
	if r.userStore == nil {
		r.userStore = readstore.NewUserReadStore(r.dbtx)
	}

	view, hash, err := r.userStore.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	return &shared.UserSnapshot{
		ID:           view.ID,
		Email:        view.Email,
		PasswordHash: hash,
		Role:         user.Role(view.Role),
		IsActive:     view.IsActive,
	}, nil
}
