package shared

import (
	"context"
	"time"

	"aguamarket/internal/domain/offer"
	"aguamarket/internal/domain/request"
	"aguamarket/internal/domain/user"
	"aguamarket/internal/infra/db"

	"github.com/google/uuid"
)

type UnitOfWork interface {
	// Within: Full transaction for write operations with retry logic
	Within(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// CommandReads: Direct access to command reads for validation outside transactions
	CommandReads() CommandReads
}

type Tx interface {
	Offers() OfferRepository
	Requests() RequestRepository
	Users() UserRepository
	Settings() SettingsRepository
	Notifications() NotificationRepository
	Reads() CommandReads
	DB() db.DBTX
}

type CommandReads interface {
	RequestByID(ctx context.Context, id uuid.UUID) (*RequestSnapshot, error)
	OfferByID(ctx context.Context, id uuid.UUID) (*OfferSnapshot, error)
	Settings(ctx context.Context) (*SettingsSnapshot, error)
	UserByEmail(ctx context.Context, email string) (*UserSnapshot, error)
}

// Minimal snapshots for command-side validation reads.

type RequestSnapshot struct {
	ID           uuid.UUID
	ConsumerID   uuid.UUID
	SupplierID   *uuid.UUID
	Status       request.Status
	AmountLiters int
	IsUrgent     bool
}

type OfferSnapshot struct {
	ID         uuid.UUID
	RequestID  uuid.UUID
	ProviderID uuid.UUID
	Status     offer.Status
	ExpiresAt  time.Time
}

type SettingsSnapshot struct {
	BasePricePerLiterCents int64
	CommissionPct          float64
	UrgencySurchargePct    float64
	OfferValidityMinutes   int
	RequestTimeoutMinutes  int
}

type UserSnapshot struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	Role         user.Role
	IsActive     bool
}

// OfferRef identifies an offer touched by a bulk status transition,
// carrying enough context to enqueue notifications for its provider.
type OfferRef struct {
	ID         uuid.UUID
	RequestID  uuid.UUID
	ProviderID uuid.UUID
}

type OfferRepository interface {
	Create(ctx context.Context, tx db.DBTX, o *offer.Offer) (uuid.UUID, error)
	// AcceptActive flips the target offer active -> accepted iff it is still
	// active and unexpired at `now`. Returns the number of rows updated so
	// callers can distinguish a lost race from success.
	AcceptActive(ctx context.Context, tx db.DBTX, offerID, requestID uuid.UUID, now time.Time) (int64, error)
	// FillActiveSiblings flips every other active offer on the request to
	// request_filled and returns the losers for notification fan-out.
	FillActiveSiblings(ctx context.Context, tx db.DBTX, requestID, winnerID uuid.UUID) ([]OfferRef, error)
	// WithdrawActive flips active -> cancelled guarded on ownership and status.
	WithdrawActive(ctx context.Context, tx db.DBTX, offerID, providerID uuid.UUID) (int64, error)
	// CancelActiveByRequest flips all active offers of a request to cancelled
	// (cascading request cancellation).
	CancelActiveByRequest(ctx context.Context, tx db.DBTX, requestID uuid.UUID) ([]OfferRef, error)
	// ExpireDue flips every active offer past its expiry to expired.
	ExpireDue(ctx context.Context, tx db.DBTX, now time.Time) ([]OfferRef, error)
}

type RequestRepository interface {
	Create(ctx context.Context, tx db.DBTX, r *request.Request) (uuid.UUID, error)
	// AcceptPending binds the supplier iff the request is still pending.
	AcceptPending(ctx context.Context, tx db.DBTX, requestID, supplierID uuid.UUID, now time.Time) (int64, error)
	MarkInTransit(ctx context.Context, tx db.DBTX, requestID uuid.UUID, now time.Time) (int64, error)
	MarkDelivered(ctx context.Context, tx db.DBTX, requestID uuid.UUID, now time.Time) (int64, error)
	CancelPending(ctx context.Context, tx db.DBTX, requestID uuid.UUID, actor request.CancelActor, reason string, now time.Time) (int64, error)
	// TimeOutStale flips pending requests older than the cutoff that never
	// collected an offer to no_offers.
	TimeOutStale(ctx context.Context, tx db.DBTX, cutoff time.Time) ([]uuid.UUID, error)
}

type UserRepository interface {
	Create(ctx context.Context, tx db.DBTX, u *user.User) (uuid.UUID, error)
}

// SettingsPatch carries the fields an admin chose to change; nil means keep.
type SettingsPatch struct {
	BasePricePerLiterCents *int64
	CommissionPct          *float64
	UrgencySurchargePct    *float64
	OfferValidityMinutes   *int
	RequestTimeoutMinutes  *int
}

type SettingsRepository interface {
	Update(ctx context.Context, tx db.DBTX, patch SettingsPatch, now time.Time) error
}

// NotificationJob is a due outbox row claimed for delivery.
type NotificationJob struct {
	ID      uuid.UUID
	Kind    string
	Topic   string
	Payload []byte
	RunAt   time.Time
}

type NotificationRepository interface {
	CreateJob(ctx context.Context, tx db.DBTX, kind, topic string, payload []byte, runAt time.Time) error
	// ClaimDue bumps attempts on up to `limit` due jobs and returns them.
	// Locked rows are skipped so concurrent dispatchers never double-send.
	ClaimDue(ctx context.Context, tx db.DBTX, now time.Time, limit int) ([]NotificationJob, error)
	MarkDone(ctx context.Context, tx db.DBTX, id uuid.UUID) error
	// MarkFailed re-queues the job, or parks it as failed once attempts
	// reach maxAttempts.
	MarkFailed(ctx context.Context, tx db.DBTX, id uuid.UUID, lastError string, maxAttempts int) error
}
