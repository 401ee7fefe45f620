//go:build unit

package worker

import (
	"context"
	"testing"
	"time"

	"aguamarket/internal/infra"
	"aguamarket/internal/pkg/clock"
	"aguamarket/internal/usecase/shared"
	eventsmock "aguamarket/tests/mock/events"
	sharedmock "aguamarket/tests/mock/shared"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type DispatcherTestSuite struct {
	suite.Suite

	ctrl          *gomock.Controller
	uow           *sharedmock.MockUnitOfWork
	tx            *sharedmock.MockTx
	notifications *sharedmock.MockNotificationRepository
	publisher     *eventsmock.MockPublisher
	clk           *clock.MockClock

	// inTx tracks whether a Within callback is currently executing, so
	// tests can assert which phase a broker call happens in.
	inTx bool

	dispatcher *Dispatcher
}

func (s *DispatcherTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.uow = sharedmock.NewMockUnitOfWork(s.ctrl)
	s.tx = sharedmock.NewMockTx(s.ctrl)
	s.notifications = sharedmock.NewMockNotificationRepository(s.ctrl)
	s.publisher = eventsmock.NewMockPublisher(s.ctrl)
	s.clk = clock.NewMockClock(time.Now())
	s.inTx = false

	s.tx.EXPECT().Notifications().Return(s.notifications).AnyTimes()
	s.tx.EXPECT().DB().Return(nil).AnyTimes()

	s.dispatcher = NewDispatcher(s.uow, s.publisher, s.clk, time.Second, 10)
}

func (s *DispatcherTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestDispatcherSuite(t *testing.T) {
	suite.Run(t, new(DispatcherTestSuite))
}

func (s *DispatcherTestSuite) expectWithin(times int) {
	s.uow.EXPECT().Within(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, fn func(context.Context, shared.Tx) error) error {
			s.inTx = true
			defer func() { s.inTx = false }()
			return fn(ctx, s.tx)
		}).
		Times(times)
}

func newJob(topic string) shared.NotificationJob {
	return shared.NotificationJob{
		ID:      uuid.New(),
		Kind:    "push",
		Topic:   topic,
		Payload: []byte(`{"request_id":"r1"}`),
	}
}

func (s *DispatcherTestSuite) TestDispatchBatch() {
	s.Run("success: publishes between the claim and mark transactions", func() {
		jobs := []shared.NotificationJob{newJob("offer_submitted"), newJob("offer_expired")}

		s.expectWithin(2)
		s.notifications.EXPECT().
			ClaimDue(gomock.Any(), gomock.Any(), s.clk.Now(), 10).
			Return(jobs, nil)
		for _, job := range jobs {
			s.publisher.EXPECT().Publish(gomock.Any(), job.Topic, job.Payload).
				DoAndReturn(func(context.Context, string, []byte) error {
					s.False(s.inTx, "broker publish must not run inside a DB transaction")
					return nil
				})
			s.notifications.EXPECT().MarkDone(gomock.Any(), gomock.Any(), job.ID).Return(nil)
		}

		s.NoError(s.dispatcher.dispatchBatch(context.Background()))
	})

	s.Run("success: failed publish re-queues only the failed job", func() {
		good := newJob("offer_submitted")
		bad := newJob("request_cancelled")
		pubErr := infra.WrapRepoErr("broker unavailable", nil, infra.KindDBFailure)

		s.expectWithin(2)
		s.notifications.EXPECT().
			ClaimDue(gomock.Any(), gomock.Any(), s.clk.Now(), 10).
			Return([]shared.NotificationJob{good, bad}, nil)
		s.publisher.EXPECT().Publish(gomock.Any(), good.Topic, good.Payload).Return(nil)
		s.publisher.EXPECT().Publish(gomock.Any(), bad.Topic, bad.Payload).Return(pubErr)
		s.notifications.EXPECT().MarkDone(gomock.Any(), gomock.Any(), good.ID).Return(nil)
		s.notifications.EXPECT().
			MarkFailed(gomock.Any(), gomock.Any(), bad.ID, pubErr.Error(), maxDispatchAttempts).
			Return(nil)

		s.NoError(s.dispatcher.dispatchBatch(context.Background()))
	})

	s.Run("success: empty batch ends the pass after the claim", func() {
		s.expectWithin(1)
		s.notifications.EXPECT().
			ClaimDue(gomock.Any(), gomock.Any(), s.clk.Now(), 10).
			Return(nil, nil)

		s.NoError(s.dispatcher.dispatchBatch(context.Background()))
	})

	s.Run("error: claim failure aborts before any publish", func() {
		claimErr := infra.WrapRepoErr("claim failed", nil, infra.KindDBFailure)

		s.expectWithin(1)
		s.notifications.EXPECT().
			ClaimDue(gomock.Any(), gomock.Any(), s.clk.Now(), 10).
			Return(nil, claimErr)

		s.Error(s.dispatcher.dispatchBatch(context.Background()))
	})
}
