//go:build unit

package commands_test

import (
	"context"
	"testing"
	"time"

	"aguamarket/internal/domain/offer"
	"aguamarket/internal/infra"
	"aguamarket/internal/infra/db"
	"aguamarket/internal/pkg/clock"
	"aguamarket/internal/usecase/commands"
	"aguamarket/internal/usecase/shared"
	"aguamarket/tests/common/builder"
	queriesmock "aguamarket/tests/mock/queries"
	sharedmock "aguamarket/tests/mock/shared"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type OfferCommandsTestSuite struct {
	suite.Suite

	ctrl          *gomock.Controller
	uow           *sharedmock.MockUnitOfWork
	tx            *sharedmock.MockTx
	reads         *sharedmock.MockCommandReads
	offers        *sharedmock.MockOfferRepository
	requests      *sharedmock.MockRequestRepository
	notifications *sharedmock.MockNotificationRepository
	offerQueries  *queriesmock.MockOfferQueries
	clk           *clock.MockClock

	commands commands.OfferCommands
}

func (s *OfferCommandsTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.uow = sharedmock.NewMockUnitOfWork(s.ctrl)
	s.tx = sharedmock.NewMockTx(s.ctrl)
	s.reads = sharedmock.NewMockCommandReads(s.ctrl)
	s.offers = sharedmock.NewMockOfferRepository(s.ctrl)
	s.requests = sharedmock.NewMockRequestRepository(s.ctrl)
	s.notifications = sharedmock.NewMockNotificationRepository(s.ctrl)
	s.offerQueries = queriesmock.NewMockOfferQueries(s.ctrl)
	s.clk = clock.NewMockClock(time.Now())

	s.uow.EXPECT().CommandReads().Return(s.reads).AnyTimes()
	s.tx.EXPECT().Offers().Return(s.offers).AnyTimes()
	s.tx.EXPECT().Requests().Return(s.requests).AnyTimes()
	s.tx.EXPECT().Notifications().Return(s.notifications).AnyTimes()
	s.tx.EXPECT().Reads().Return(s.reads).AnyTimes()
	s.tx.EXPECT().DB().Return(nil).AnyTimes()

	factory := offer.NewFactory(s.clk, offer.NewStandardPriceQuoter())
	s.commands = commands.NewOfferCommands(s.uow, factory, s.offerQueries, s.clk)
}

func (s *OfferCommandsTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestOfferCommandsSuite(t *testing.T) {
	suite.Run(t, new(OfferCommandsTestSuite))
}

// expectWithin routes the transactional closure through the mocked Tx.
func (s *OfferCommandsTestSuite) expectWithin() {
	s.uow.EXPECT().Within(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, fn func(context.Context, shared.Tx) error) error {
			return fn(ctx, s.tx)
		})
}

func settingsSnapshot() *shared.SettingsSnapshot {
	return &shared.SettingsSnapshot{
		BasePricePerLiterCents: 50,
		CommissionPct:          10.0,
		UrgencySurchargePct:    25.0,
		OfferValidityMinutes:   30,
		RequestTimeoutMinutes:  240,
	}
}

func (s *OfferCommandsTestSuite) TestSubmit() {
	providerID := uuid.New()

	s.Run("success: persists offer and enqueues notification", func() {
		reqBuilder := builder.NewRequestBuilder()
		reqSnap := reqBuilder.BuildSnapshot()
		dto := builder.NewOfferBuilder().
			With(func(b *builder.OfferBuilder) {
				b.WithWindow(s.clk.Now().Add(2*time.Hour), s.clk.Now().Add(4*time.Hour))
			}).
			BuildSubmitDTO()
		offerID := uuid.New()
		view := builder.NewOfferBuilder().WithID(offerID).BuildView()

		s.reads.EXPECT().RequestByID(gomock.Any(), reqSnap.ID).Return(reqSnap, nil)
		s.reads.EXPECT().Settings(gomock.Any()).Return(settingsSnapshot(), nil)
		s.expectWithin()
		s.offers.EXPECT().Create(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ db.DBTX, o *offer.Offer) (uuid.UUID, error) {
				s.Equal(reqSnap.ID, o.RequestID())
				s.Equal(providerID, o.ProviderID())
				s.Equal(offer.StatusActive, o.Status())
				// 1000L * 50c = 50000, +10% commission
				s.Equal(int64(55000), o.Price().Cents())
				s.Equal(s.clk.Now().Add(30*time.Minute), o.ExpiresAt())
				return offerID, nil
			})
		s.notifications.EXPECT().
			CreateJob(gomock.Any(), gomock.Any(), "push", "offer_received", gomock.Any(), gomock.Any()).
			Return(nil)
		s.offerQueries.EXPECT().GetByIDSystem(gomock.Any(), offerID).Return(view, nil)

		got, err := s.commands.Submit(context.Background(), dto, reqSnap.ID, providerID)
		s.NoError(err)
		s.Equal(view, got)
	})

	s.Run("success: urgent request is priced with the surcharge", func() {
		reqSnap := builder.NewRequestBuilder().WithUrgent(true).BuildSnapshot()
		dto := builder.NewOfferBuilder().
			With(func(b *builder.OfferBuilder) {
				b.WithWindow(s.clk.Now().Add(2*time.Hour), s.clk.Now().Add(4*time.Hour))
			}).
			BuildSubmitDTO()
		offerID := uuid.New()

		s.reads.EXPECT().RequestByID(gomock.Any(), reqSnap.ID).Return(reqSnap, nil)
		s.reads.EXPECT().Settings(gomock.Any()).Return(settingsSnapshot(), nil)
		s.expectWithin()
		s.offers.EXPECT().Create(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ db.DBTX, o *offer.Offer) (uuid.UUID, error) {
				// 50000 * 1.25 urgency, then * 1.10 commission
				s.Equal(int64(68750), o.Price().Cents())
				return offerID, nil
			})
		s.notifications.EXPECT().
			CreateJob(gomock.Any(), gomock.Any(), "push", "offer_received", gomock.Any(), gomock.Any()).
			Return(nil)
		s.offerQueries.EXPECT().GetByIDSystem(gomock.Any(), offerID).
			Return(builder.NewOfferBuilder().BuildView(), nil)

		_, err := s.commands.Submit(context.Background(), dto, reqSnap.ID, providerID)
		s.NoError(err)
	})

	s.Run("error: request not found", func() {
		requestID := uuid.New()
		s.reads.EXPECT().RequestByID(gomock.Any(), requestID).
			Return(nil, infra.WrapRepoErr("request not found", nil, infra.KindNotFound))

		_, err := s.commands.Submit(context.Background(), builder.NewOfferBuilder().BuildSubmitDTO(), requestID, providerID)
		s.ErrorIs(err, commands.ErrRequestNotFound)
	})

	s.Run("error: consumer cannot bid on their own request", func() {
		reqSnap := builder.NewRequestBuilder().WithConsumerID(providerID).BuildSnapshot()
		s.reads.EXPECT().RequestByID(gomock.Any(), reqSnap.ID).Return(reqSnap, nil)

		_, err := s.commands.Submit(context.Background(), builder.NewOfferBuilder().BuildSubmitDTO(), reqSnap.ID, providerID)
		s.ErrorIs(err, commands.ErrNotAuthorized)
	})

	s.Run("error: request no longer open", func() {
		reqSnap := builder.NewRequestBuilder().AsAccepted().BuildSnapshot()
		s.reads.EXPECT().RequestByID(gomock.Any(), reqSnap.ID).Return(reqSnap, nil)

		_, err := s.commands.Submit(context.Background(), builder.NewOfferBuilder().BuildSubmitDTO(), reqSnap.ID, providerID)
		s.ErrorIs(err, commands.ErrRequestNotOpen)
	})

	s.Run("error: delivery window in the past fails validation", func() {
		reqSnap := builder.NewRequestBuilder().BuildSnapshot()
		dto := builder.NewOfferBuilder().
			With(func(b *builder.OfferBuilder) {
				b.WithWindow(s.clk.Now().Add(-time.Hour), s.clk.Now().Add(time.Hour))
			}).
			BuildSubmitDTO()

		s.reads.EXPECT().RequestByID(gomock.Any(), reqSnap.ID).Return(reqSnap, nil)
		s.reads.EXPECT().Settings(gomock.Any()).Return(settingsSnapshot(), nil)

		_, err := s.commands.Submit(context.Background(), dto, reqSnap.ID, providerID)
		s.ErrorIs(err, commands.ErrDomainValidation)
	})

	s.Run("error: duplicate active offer", func() {
		reqSnap := builder.NewRequestBuilder().BuildSnapshot()
		dto := builder.NewOfferBuilder().
			With(func(b *builder.OfferBuilder) {
				b.WithWindow(s.clk.Now().Add(2*time.Hour), s.clk.Now().Add(4*time.Hour))
			}).
			BuildSubmitDTO()

		s.reads.EXPECT().RequestByID(gomock.Any(), reqSnap.ID).Return(reqSnap, nil)
		s.reads.EXPECT().Settings(gomock.Any()).Return(settingsSnapshot(), nil)
		s.expectWithin()
		s.offers.EXPECT().Create(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(uuid.Nil, infra.WrapRepoErr("duplicate offer", nil, infra.KindDuplicateKey))

		_, err := s.commands.Submit(context.Background(), dto, reqSnap.ID, providerID)
		s.ErrorIs(err, commands.ErrDuplicateOffer)
	})

	s.Run("error: request closed between read and insert", func() {
		reqSnap := builder.NewRequestBuilder().BuildSnapshot()
		dto := builder.NewOfferBuilder().
			With(func(b *builder.OfferBuilder) {
				b.WithWindow(s.clk.Now().Add(2*time.Hour), s.clk.Now().Add(4*time.Hour))
			}).
			BuildSubmitDTO()

		s.reads.EXPECT().RequestByID(gomock.Any(), reqSnap.ID).Return(reqSnap, nil)
		s.reads.EXPECT().Settings(gomock.Any()).Return(settingsSnapshot(), nil)
		s.expectWithin()
		s.offers.EXPECT().Create(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(uuid.Nil, infra.WrapRepoErr("request no longer open", nil, infra.KindConflict))

		_, err := s.commands.Submit(context.Background(), dto, reqSnap.ID, providerID)
		s.ErrorIs(err, commands.ErrRequestNotOpen)
	})
}

func (s *OfferCommandsTestSuite) TestSelect() {
	consumerID := uuid.New()

	s.Run("success: accepts winner, binds supplier, releases siblings", func() {
		reqBuilder := builder.NewRequestBuilder().WithConsumerID(consumerID)
		reqSnap := reqBuilder.BuildSnapshot()
		offerSnap := builder.NewOfferBuilder().
			WithRequestID(reqSnap.ID).
			WithExpiresAt(s.clk.Now().Add(time.Hour)).
			BuildSnapshot()
		losers := []shared.OfferRef{
			{ID: uuid.New(), RequestID: reqSnap.ID, ProviderID: uuid.New()},
			{ID: uuid.New(), RequestID: reqSnap.ID, ProviderID: uuid.New()},
		}

		s.expectWithin()
		s.reads.EXPECT().OfferByID(gomock.Any(), offerSnap.ID).Return(offerSnap, nil)
		s.reads.EXPECT().RequestByID(gomock.Any(), reqSnap.ID).Return(reqSnap, nil)
		s.offers.EXPECT().
			AcceptActive(gomock.Any(), gomock.Any(), offerSnap.ID, reqSnap.ID, gomock.Any()).
			Return(int64(1), nil)
		s.requests.EXPECT().
			AcceptPending(gomock.Any(), gomock.Any(), reqSnap.ID, offerSnap.ProviderID, gomock.Any()).
			Return(int64(1), nil)
		s.offers.EXPECT().
			FillActiveSiblings(gomock.Any(), gomock.Any(), reqSnap.ID, offerSnap.ID).
			Return(losers, nil)
		s.notifications.EXPECT().
			CreateJob(gomock.Any(), gomock.Any(), "push", "offer_accepted", gomock.Any(), gomock.Any()).
			Return(nil)
		s.notifications.EXPECT().
			CreateJob(gomock.Any(), gomock.Any(), "push", "offer_not_selected", gomock.Any(), gomock.Any()).
			Return(nil).
			Times(2)

		result, err := s.commands.Select(context.Background(), reqSnap.ID, offerSnap.ID, consumerID)
		s.NoError(err)
		s.Equal(offerSnap.ID, result.OfferID)
		s.Equal(reqSnap.ID, result.RequestID)
		s.Equal(2, result.LosingOffers)
	})

	s.Run("error: offer not found", func() {
		offerID := uuid.New()
		s.expectWithin()
		s.reads.EXPECT().OfferByID(gomock.Any(), offerID).
			Return(nil, infra.WrapRepoErr("offer not found", nil, infra.KindNotFound))

		_, err := s.commands.Select(context.Background(), uuid.New(), offerID, consumerID)
		s.ErrorIs(err, commands.ErrOfferNotFound)
	})

	s.Run("error: offer belongs to another request", func() {
		offerSnap := builder.NewOfferBuilder().BuildSnapshot()
		s.expectWithin()
		s.reads.EXPECT().OfferByID(gomock.Any(), offerSnap.ID).Return(offerSnap, nil)

		_, err := s.commands.Select(context.Background(), uuid.New(), offerSnap.ID, consumerID)
		s.ErrorIs(err, commands.ErrOfferNotFound)
	})

	s.Run("error: only the request owner may select", func() {
		reqSnap := builder.NewRequestBuilder().BuildSnapshot()
		offerSnap := builder.NewOfferBuilder().WithRequestID(reqSnap.ID).BuildSnapshot()

		s.expectWithin()
		s.reads.EXPECT().OfferByID(gomock.Any(), offerSnap.ID).Return(offerSnap, nil)
		s.reads.EXPECT().RequestByID(gomock.Any(), reqSnap.ID).Return(reqSnap, nil)

		_, err := s.commands.Select(context.Background(), reqSnap.ID, offerSnap.ID, uuid.New())
		s.ErrorIs(err, commands.ErrNotAuthorized)
	})

	s.Run("error: expired offer reported as expired", func() {
		reqSnap := builder.NewRequestBuilder().WithConsumerID(consumerID).BuildSnapshot()
		offerSnap := builder.NewOfferBuilder().
			WithRequestID(reqSnap.ID).
			WithExpiresAt(s.clk.Now().Add(-time.Minute)).
			BuildSnapshot()

		s.expectWithin()
		s.reads.EXPECT().OfferByID(gomock.Any(), offerSnap.ID).Return(offerSnap, nil)
		s.reads.EXPECT().RequestByID(gomock.Any(), reqSnap.ID).Return(reqSnap, nil)
		s.offers.EXPECT().
			AcceptActive(gomock.Any(), gomock.Any(), offerSnap.ID, reqSnap.ID, gomock.Any()).
			Return(int64(0), nil)

		_, err := s.commands.Select(context.Background(), reqSnap.ID, offerSnap.ID, consumerID)
		s.ErrorIs(err, commands.ErrOfferExpired)
	})

	s.Run("error: withdrawn offer reported as not active", func() {
		reqSnap := builder.NewRequestBuilder().WithConsumerID(consumerID).BuildSnapshot()
		offerSnap := builder.NewOfferBuilder().
			WithRequestID(reqSnap.ID).
			WithStatus(offer.StatusCancelled).
			WithExpiresAt(s.clk.Now().Add(time.Hour)).
			BuildSnapshot()

		s.expectWithin()
		s.reads.EXPECT().OfferByID(gomock.Any(), offerSnap.ID).Return(offerSnap, nil)
		s.reads.EXPECT().RequestByID(gomock.Any(), reqSnap.ID).Return(reqSnap, nil)
		s.offers.EXPECT().
			AcceptActive(gomock.Any(), gomock.Any(), offerSnap.ID, reqSnap.ID, gomock.Any()).
			Return(int64(0), nil)

		_, err := s.commands.Select(context.Background(), reqSnap.ID, offerSnap.ID, consumerID)
		s.ErrorIs(err, commands.ErrOfferNotActive)
	})

	s.Run("error: concurrent selection loses as conflict", func() {
		reqSnap := builder.NewRequestBuilder().WithConsumerID(consumerID).BuildSnapshot()
		offerSnap := builder.NewOfferBuilder().
			WithRequestID(reqSnap.ID).
			WithExpiresAt(s.clk.Now().Add(time.Hour)).
			BuildSnapshot()

		s.expectWithin()
		s.reads.EXPECT().OfferByID(gomock.Any(), offerSnap.ID).Return(offerSnap, nil)
		s.reads.EXPECT().RequestByID(gomock.Any(), reqSnap.ID).Return(reqSnap, nil)
		s.offers.EXPECT().
			AcceptActive(gomock.Any(), gomock.Any(), offerSnap.ID, reqSnap.ID, gomock.Any()).
			Return(int64(0), nil)

		_, err := s.commands.Select(context.Background(), reqSnap.ID, offerSnap.ID, consumerID)
		s.ErrorIs(err, commands.ErrSelectionConflict)
	})

	s.Run("error: request flipped before supplier binding", func() {
		reqSnap := builder.NewRequestBuilder().WithConsumerID(consumerID).BuildSnapshot()
		offerSnap := builder.NewOfferBuilder().
			WithRequestID(reqSnap.ID).
			WithExpiresAt(s.clk.Now().Add(time.Hour)).
			BuildSnapshot()

		s.expectWithin()
		s.reads.EXPECT().OfferByID(gomock.Any(), offerSnap.ID).Return(offerSnap, nil)
		s.reads.EXPECT().RequestByID(gomock.Any(), reqSnap.ID).Return(reqSnap, nil)
		s.offers.EXPECT().
			AcceptActive(gomock.Any(), gomock.Any(), offerSnap.ID, reqSnap.ID, gomock.Any()).
			Return(int64(1), nil)
		s.requests.EXPECT().
			AcceptPending(gomock.Any(), gomock.Any(), reqSnap.ID, offerSnap.ProviderID, gomock.Any()).
			Return(int64(0), nil)

		_, err := s.commands.Select(context.Background(), reqSnap.ID, offerSnap.ID, consumerID)
		s.ErrorIs(err, commands.ErrSelectionConflict)
	})
}

func (s *OfferCommandsTestSuite) TestWithdraw() {
	providerID := uuid.New()

	s.Run("success: withdraws active offer", func() {
		offerSnap := builder.NewOfferBuilder().WithProviderID(providerID).BuildSnapshot()

		s.expectWithin()
		s.reads.EXPECT().OfferByID(gomock.Any(), offerSnap.ID).Return(offerSnap, nil)
		s.offers.EXPECT().
			WithdrawActive(gomock.Any(), gomock.Any(), offerSnap.ID, providerID).
			Return(int64(1), nil)
		s.notifications.EXPECT().
			CreateJob(gomock.Any(), gomock.Any(), "push", "offer_withdrawn", gomock.Any(), gomock.Any()).
			Return(nil)

		s.NoError(s.commands.Withdraw(context.Background(), offerSnap.ID, providerID))
	})

	s.Run("success: expired but unswept offer can still be withdrawn", func() {
		offerSnap := builder.NewOfferBuilder().
			WithProviderID(providerID).
			WithExpiresAt(s.clk.Now().Add(-10 * time.Minute)).
			BuildSnapshot()

		s.expectWithin()
		s.reads.EXPECT().OfferByID(gomock.Any(), offerSnap.ID).Return(offerSnap, nil)
		// Persisted status is still active, so the guarded update succeeds.
		s.offers.EXPECT().
			WithdrawActive(gomock.Any(), gomock.Any(), offerSnap.ID, providerID).
			Return(int64(1), nil)
		s.notifications.EXPECT().
			CreateJob(gomock.Any(), gomock.Any(), "push", "offer_withdrawn", gomock.Any(), gomock.Any()).
			Return(nil)

		s.NoError(s.commands.Withdraw(context.Background(), offerSnap.ID, providerID))
	})

	s.Run("error: only the owner may withdraw", func() {
		offerSnap := builder.NewOfferBuilder().BuildSnapshot()

		s.expectWithin()
		s.reads.EXPECT().OfferByID(gomock.Any(), offerSnap.ID).Return(offerSnap, nil)

		err := s.commands.Withdraw(context.Background(), offerSnap.ID, providerID)
		s.ErrorIs(err, commands.ErrNotAuthorized)
	})

	s.Run("error: settled offer cannot be withdrawn", func() {
		offerSnap := builder.NewOfferBuilder().
			WithProviderID(providerID).
			WithStatus(offer.StatusAccepted).
			BuildSnapshot()

		s.expectWithin()
		s.reads.EXPECT().OfferByID(gomock.Any(), offerSnap.ID).Return(offerSnap, nil)
		s.offers.EXPECT().
			WithdrawActive(gomock.Any(), gomock.Any(), offerSnap.ID, providerID).
			Return(int64(0), nil)

		err := s.commands.Withdraw(context.Background(), offerSnap.ID, providerID)
		s.ErrorIs(err, commands.ErrOfferNotActive)
	})
}

func (s *OfferCommandsTestSuite) TestExpireDue() {
	s.Run("success: settles overdue offers and notifies providers", func() {
		refs := []shared.OfferRef{
			{ID: uuid.New(), RequestID: uuid.New(), ProviderID: uuid.New()},
			{ID: uuid.New(), RequestID: uuid.New(), ProviderID: uuid.New()},
		}

		s.expectWithin()
		s.offers.EXPECT().ExpireDue(gomock.Any(), gomock.Any(), s.clk.Now()).Return(refs, nil)
		s.notifications.EXPECT().
			CreateJob(gomock.Any(), gomock.Any(), "push", "offer_expired", gomock.Any(), gomock.Any()).
			Return(nil).
			Times(2)

		count, err := s.commands.ExpireDue(context.Background())
		s.NoError(err)
		s.Equal(2, count)
	})

	s.Run("success: nothing due", func() {
		s.expectWithin()
		s.offers.EXPECT().ExpireDue(gomock.Any(), gomock.Any(), s.clk.Now()).Return(nil, nil)

		count, err := s.commands.ExpireDue(context.Background())
		s.NoError(err)
		s.Equal(0, count)
	})
}
