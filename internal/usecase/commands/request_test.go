//go:build unit

package commands_test

import (
	"context"
	"testing"
	"time"

	domrequest "aguamarket/internal/domain/request"
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

type RequestCommandsTestSuite struct {
	suite.Suite

	ctrl           *gomock.Controller
	uow            *sharedmock.MockUnitOfWork
	tx             *sharedmock.MockTx
	reads          *sharedmock.MockCommandReads
	offers         *sharedmock.MockOfferRepository
	requests       *sharedmock.MockRequestRepository
	notifications  *sharedmock.MockNotificationRepository
	requestQueries *queriesmock.MockRequestQueries
	clk            *clock.MockClock

	commands commands.RequestCommands
}

func (s *RequestCommandsTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.uow = sharedmock.NewMockUnitOfWork(s.ctrl)
	s.tx = sharedmock.NewMockTx(s.ctrl)
	s.reads = sharedmock.NewMockCommandReads(s.ctrl)
	s.offers = sharedmock.NewMockOfferRepository(s.ctrl)
	s.requests = sharedmock.NewMockRequestRepository(s.ctrl)
	s.notifications = sharedmock.NewMockNotificationRepository(s.ctrl)
	s.requestQueries = queriesmock.NewMockRequestQueries(s.ctrl)
	s.clk = clock.NewMockClock(time.Now())

	s.uow.EXPECT().CommandReads().Return(s.reads).AnyTimes()
	s.tx.EXPECT().Offers().Return(s.offers).AnyTimes()
	s.tx.EXPECT().Requests().Return(s.requests).AnyTimes()
	s.tx.EXPECT().Notifications().Return(s.notifications).AnyTimes()
	s.tx.EXPECT().Reads().Return(s.reads).AnyTimes()
	s.tx.EXPECT().DB().Return(nil).AnyTimes()

	s.commands = commands.NewRequestCommands(s.uow, s.requestQueries, s.clk)
}

func (s *RequestCommandsTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestRequestCommandsSuite(t *testing.T) {
	suite.Run(t, new(RequestCommandsTestSuite))
}

func (s *RequestCommandsTestSuite) expectWithin() {
	s.uow.EXPECT().Within(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, fn func(context.Context, shared.Tx) error) error {
			return fn(ctx, s.tx)
		})
}

func (s *RequestCommandsTestSuite) TestCreate() {
	consumerID := uuid.New()

	s.Run("success: persists request and returns the view", func() {
		b := builder.NewRequestBuilder().WithConsumerID(consumerID)
		dto := b.BuildCreateDTO()
		requestID := uuid.New()
		view := b.WithID(requestID).BuildView()

		s.expectWithin()
		s.requests.EXPECT().Create(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ db.DBTX, r *domrequest.Request) (uuid.UUID, error) {
				s.Equal(consumerID, r.ConsumerID())
				s.Equal(domrequest.StatusPending, r.Status())
				s.Equal(dto.AmountLiters, r.Amount().Liters())
				return requestID, nil
			})
		s.requestQueries.EXPECT().GetByIDSystem(gomock.Any(), requestID).Return(view, nil)

		got, err := s.commands.Create(context.Background(), dto, consumerID)
		s.NoError(err)
		s.Equal(view, got)
	})

	s.Run("error: amount out of range", func() {
		dto := builder.NewRequestBuilder().WithAmountLiters(5).BuildCreateDTO()

		_, err := s.commands.Create(context.Background(), dto, consumerID)
		s.ErrorIs(err, commands.ErrDomainValidation)
	})
}

func (s *RequestCommandsTestSuite) TestCancel() {
	consumerID := uuid.New()

	s.Run("success: cancels pending request and releases active offers", func() {
		reqSnap := builder.NewRequestBuilder().WithConsumerID(consumerID).BuildSnapshot()
		released := []shared.OfferRef{
			{ID: uuid.New(), RequestID: reqSnap.ID, ProviderID: uuid.New()},
		}

		s.expectWithin()
		s.reads.EXPECT().RequestByID(gomock.Any(), reqSnap.ID).Return(reqSnap, nil)
		s.requests.EXPECT().
			CancelPending(gomock.Any(), gomock.Any(), reqSnap.ID, domrequest.CancelledByConsumer, "changed plans", gomock.Any()).
			Return(int64(1), nil)
		s.offers.EXPECT().CancelActiveByRequest(gomock.Any(), gomock.Any(), reqSnap.ID).Return(released, nil)
		s.notifications.EXPECT().
			CreateJob(gomock.Any(), gomock.Any(), "push", "request_cancelled", gomock.Any(), gomock.Any()).
			Return(nil)

		s.NoError(s.commands.Cancel(context.Background(), reqSnap.ID, consumerID, "changed plans"))
	})

	s.Run("error: accepted request cannot be cancelled", func() {
		supplierID := uuid.New()
		reqSnap := builder.NewRequestBuilder().
			WithConsumerID(consumerID).
			WithStatus(domrequest.StatusAccepted).
			WithSupplierID(supplierID).
			BuildSnapshot()

		s.expectWithin()
		s.reads.EXPECT().RequestByID(gomock.Any(), reqSnap.ID).Return(reqSnap, nil)

		err := s.commands.Cancel(context.Background(), reqSnap.ID, consumerID, "")
		s.ErrorIs(err, commands.ErrRequestNotPending)
	})

	s.Run("error: request not found", func() {
		requestID := uuid.New()
		s.expectWithin()
		s.reads.EXPECT().RequestByID(gomock.Any(), requestID).
			Return(nil, infra.WrapRepoErr("request not found", nil, infra.KindNotFound))

		err := s.commands.Cancel(context.Background(), requestID, consumerID, "")
		s.ErrorIs(err, commands.ErrRequestNotFound)
	})

	s.Run("error: only the owner may cancel", func() {
		reqSnap := builder.NewRequestBuilder().BuildSnapshot()
		s.expectWithin()
		s.reads.EXPECT().RequestByID(gomock.Any(), reqSnap.ID).Return(reqSnap, nil)

		err := s.commands.Cancel(context.Background(), reqSnap.ID, consumerID, "")
		s.ErrorIs(err, commands.ErrNotAuthorized)
	})

	s.Run("error: terminal request", func() {
		reqSnap := builder.NewRequestBuilder().
			WithConsumerID(consumerID).
			WithStatus(domrequest.StatusDelivered).
			BuildSnapshot()

		s.expectWithin()
		s.reads.EXPECT().RequestByID(gomock.Any(), reqSnap.ID).Return(reqSnap, nil)

		err := s.commands.Cancel(context.Background(), reqSnap.ID, consumerID, "")
		s.ErrorIs(err, commands.ErrRequestTerminal)
	})

	s.Run("error: in transit request cannot be cancelled", func() {
		reqSnap := builder.NewRequestBuilder().
			WithConsumerID(consumerID).
			WithStatus(domrequest.StatusInTransit).
			BuildSnapshot()

		s.expectWithin()
		s.reads.EXPECT().RequestByID(gomock.Any(), reqSnap.ID).Return(reqSnap, nil)

		err := s.commands.Cancel(context.Background(), reqSnap.ID, consumerID, "")
		s.ErrorIs(err, commands.ErrRequestNotPending)
	})
}

func (s *RequestCommandsTestSuite) TestDeliveryTransitions() {
	supplierID := uuid.New()

	s.Run("success: supplier starts delivery", func() {
		reqSnap := builder.NewRequestBuilder().
			WithStatus(domrequest.StatusAccepted).
			WithSupplierID(supplierID).
			BuildSnapshot()

		s.expectWithin()
		s.reads.EXPECT().RequestByID(gomock.Any(), reqSnap.ID).Return(reqSnap, nil)
		s.requests.EXPECT().
			MarkInTransit(gomock.Any(), gomock.Any(), reqSnap.ID, gomock.Any()).
			Return(int64(1), nil)
		s.notifications.EXPECT().
			CreateJob(gomock.Any(), gomock.Any(), "push", "delivery_in_transit", gomock.Any(), gomock.Any()).
			Return(nil)

		s.NoError(s.commands.MarkInTransit(context.Background(), reqSnap.ID, supplierID))
	})

	s.Run("error: only the bound supplier may move the request", func() {
		reqSnap := builder.NewRequestBuilder().AsAccepted().BuildSnapshot()

		s.expectWithin()
		s.reads.EXPECT().RequestByID(gomock.Any(), reqSnap.ID).Return(reqSnap, nil)

		err := s.commands.MarkInTransit(context.Background(), reqSnap.ID, supplierID)
		s.ErrorIs(err, commands.ErrNotAuthorized)
	})

	s.Run("error: transit before acceptance", func() {
		reqSnap := builder.NewRequestBuilder().
			WithStatus(domrequest.StatusAccepted).
			WithSupplierID(supplierID).
			BuildSnapshot()

		s.expectWithin()
		s.reads.EXPECT().RequestByID(gomock.Any(), reqSnap.ID).Return(reqSnap, nil)
		s.requests.EXPECT().
			MarkInTransit(gomock.Any(), gomock.Any(), reqSnap.ID, gomock.Any()).
			Return(int64(0), nil)

		err := s.commands.MarkInTransit(context.Background(), reqSnap.ID, supplierID)
		s.ErrorIs(err, commands.ErrRequestNotAccepted)
	})

	s.Run("success: supplier completes delivery", func() {
		reqSnap := builder.NewRequestBuilder().
			WithStatus(domrequest.StatusInTransit).
			WithSupplierID(supplierID).
			BuildSnapshot()

		s.expectWithin()
		s.reads.EXPECT().RequestByID(gomock.Any(), reqSnap.ID).Return(reqSnap, nil)
		s.requests.EXPECT().
			MarkDelivered(gomock.Any(), gomock.Any(), reqSnap.ID, gomock.Any()).
			Return(int64(1), nil)
		s.notifications.EXPECT().
			CreateJob(gomock.Any(), gomock.Any(), "push", "delivery_completed", gomock.Any(), gomock.Any()).
			Return(nil)

		s.NoError(s.commands.MarkDelivered(context.Background(), reqSnap.ID, supplierID))
	})

	s.Run("error: delivered before transit", func() {
		reqSnap := builder.NewRequestBuilder().
			WithStatus(domrequest.StatusAccepted).
			WithSupplierID(supplierID).
			BuildSnapshot()

		s.expectWithin()
		s.reads.EXPECT().RequestByID(gomock.Any(), reqSnap.ID).Return(reqSnap, nil)
		s.requests.EXPECT().
			MarkDelivered(gomock.Any(), gomock.Any(), reqSnap.ID, gomock.Any()).
			Return(int64(0), nil)

		err := s.commands.MarkDelivered(context.Background(), reqSnap.ID, supplierID)
		s.ErrorIs(err, commands.ErrRequestNotMovable)
	})
}

func (s *RequestCommandsTestSuite) TestTimeOutStale() {
	s.Run("success: closes offerless requests older than the timeout", func() {
		timedOut := []uuid.UUID{uuid.New(), uuid.New()}
		cutoff := s.clk.Now().Add(-240 * time.Minute)

		s.reads.EXPECT().Settings(gomock.Any()).Return(&shared.SettingsSnapshot{
			RequestTimeoutMinutes: 240,
		}, nil)
		s.expectWithin()
		s.requests.EXPECT().TimeOutStale(gomock.Any(), gomock.Any(), cutoff).Return(timedOut, nil)
		s.notifications.EXPECT().
			CreateJob(gomock.Any(), gomock.Any(), "push", "request_no_offers", gomock.Any(), gomock.Any()).
			Return(nil).
			Times(2)

		count, err := s.commands.TimeOutStale(context.Background())
		s.NoError(err)
		s.Equal(2, count)
	})

	s.Run("success: nothing stale", func() {
		s.reads.EXPECT().Settings(gomock.Any()).Return(&shared.SettingsSnapshot{
			RequestTimeoutMinutes: 240,
		}, nil)
		s.expectWithin()
		s.requests.EXPECT().TimeOutStale(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil)

		count, err := s.commands.TimeOutStale(context.Background())
		s.NoError(err)
		s.Equal(0, count)
	})
}
