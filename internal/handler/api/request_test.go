//go:build unit

package api_test

import (
	"net/http"
	"testing"

	"aguamarket/internal/handler/api"
	resdto "aguamarket/internal/handler/dto/response"
	"aguamarket/internal/infra"
	"aguamarket/internal/usecase/commands"
	"aguamarket/internal/usecase/queries"
	"aguamarket/tests/common/builder"
	commonhttp "aguamarket/tests/common/httptest"
	"aguamarket/tests/common/testutil"
	commandsmock "aguamarket/tests/mock/commands"
	queriesmock "aguamarket/tests/mock/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type RequestHandlerTestSuite struct {
	suite.Suite
	handler      *api.RequestHandler
	router       *gin.Engine
	mockCtrl     *gomock.Controller
	mockCommands *commandsmock.MockRequestCommands
	mockQueries  *queriesmock.MockRequestQueries

	userID uuid.UUID
}

func (s *RequestHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	s.mockCtrl = gomock.NewController(s.T())
	s.mockCommands = commandsmock.NewMockRequestCommands(s.mockCtrl)
	s.mockQueries = queriesmock.NewMockRequestQueries(s.mockCtrl)
	s.handler = api.NewRequestHandler(s.mockCommands, s.mockQueries)
	s.userID = uuid.New()

	s.router = gin.New()
	authed := func(c *gin.Context) {
		c.Set("user_id", s.userID)
	}
	s.router.POST("/requests", authed, s.handler.CreateRequest)
	s.router.GET("/requests", authed, s.handler.ListMyRequests)
	s.router.GET("/requests/open", authed, s.handler.ListOpenRequests)
	s.router.GET("/requests/:id", authed, s.handler.GetRequest)
	s.router.POST("/requests/:id/cancel", authed, s.handler.CancelRequest)
	s.router.POST("/requests/:id/transit", authed, s.handler.StartDelivery)
	s.router.POST("/requests/:id/delivered", authed, s.handler.CompleteDelivery)
}

func (s *RequestHandlerTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestRequestHandlerSuite(t *testing.T) {
	suite.Run(t, new(RequestHandlerTestSuite))
}

func (s *RequestHandlerTestSuite) TestCreateRequest() {
	reqBody := builder.NewRequestBuilder().BuildCreateDTO()

	s.Run("success: returns 201 with the created request", func() {
		view := builder.NewRequestBuilder().WithConsumerID(s.userID).BuildView()

		s.mockCommands.EXPECT().Create(gomock.Any(), reqBody, s.userID).Return(view, nil)

		w := commonhttp.PerformRequest(s.T(), s.router, http.MethodPost, "/requests", reqBody, "")
		s.Equal(http.StatusCreated, w.Code)

		var resp resdto.RequestResponse
		_ = commonhttp.DecodeResponseBody(s.T(), w.Body, &resp)
		s.Equal(view.ID, resp.ID)
		s.Equal("pending", resp.Status)
		s.Equal(view.AmountLiters, resp.AmountLiters)
	})

	s.Run("error: 400 Bad Request on validation errors", func() {
		testCases := []struct {
			name   string
			mutate func(m map[string]any)
		}{
			{"missing amount", testutil.Field("amount_liters", nil)},
			{"missing address", testutil.Field("address", nil)},
			{"unknown payment method", testutil.Field("payment_method", "card")},
		}

		for _, tc := range testCases {
			s.Run(tc.name, func() {
				body := testutil.DtoMap(s.T(), reqBody, tc.mutate)
				w := commonhttp.PerformRequest(s.T(), s.router, http.MethodPost, "/requests", body, "")
				s.Equal(http.StatusBadRequest, w.Code)
			})
		}
	})

	s.Run("error: 422 for amounts outside the allowed range", func() {
		s.mockCommands.EXPECT().Create(gomock.Any(), reqBody, s.userID).
			Return(nil, commands.ErrDomainValidation)

		w := commonhttp.PerformRequest(s.T(), s.router, http.MethodPost, "/requests", reqBody, "")
		s.Equal(http.StatusUnprocessableEntity, w.Code)
	})
}

func (s *RequestHandlerTestSuite) TestGetRequest() {
	requestID := uuid.New()

	s.Run("success: returns 200 with the request", func() {
		view := builder.NewRequestBuilder().WithID(requestID).WithConsumerID(s.userID).BuildView()
		s.mockQueries.EXPECT().GetByID(gomock.Any(), s.userID, requestID).Return(view, nil)

		w := commonhttp.PerformRequest(s.T(), s.router, http.MethodGet, "/requests/"+requestID.String(), nil, "")
		s.Equal(http.StatusOK, w.Code)

		var resp resdto.RequestResponse
		_ = commonhttp.DecodeResponseBody(s.T(), w.Body, &resp)
		s.Equal(requestID, resp.ID)
	})

	s.Run("error: 403 Forbidden for an unrelated user", func() {
		s.mockQueries.EXPECT().GetByID(gomock.Any(), s.userID, requestID).
			Return(nil, queries.ErrForbidden)

		w := commonhttp.PerformRequest(s.T(), s.router, http.MethodGet, "/requests/"+requestID.String(), nil, "")
		s.Equal(http.StatusForbidden, w.Code)
	})

	s.Run("error: 404 Not Found for unknown request", func() {
		s.mockQueries.EXPECT().GetByID(gomock.Any(), s.userID, requestID).
			Return(nil, infra.WrapRepoErr("request not found", nil, infra.KindNotFound))

		w := commonhttp.PerformRequest(s.T(), s.router, http.MethodGet, "/requests/"+requestID.String(), nil, "")
		s.Equal(http.StatusNotFound, w.Code)
	})
}

func (s *RequestHandlerTestSuite) TestListMyRequests() {
	s.Run("success: returns 200 with the consumer's requests", func() {
		items := []*queries.RequestListItem{
			builder.NewRequestBuilder().BuildListItem(),
			builder.NewRequestBuilder().BuildListItem(),
		}
		s.mockQueries.EXPECT().ListByConsumer(gomock.Any(), s.userID, 0).Return(items, nil)

		w := commonhttp.PerformRequest(s.T(), s.router, http.MethodGet, "/requests", nil, "")
		s.Equal(http.StatusOK, w.Code)

		var resp []*resdto.RequestListResponse
		_ = commonhttp.DecodeResponseBody(s.T(), w.Body, &resp)
		s.Len(resp, 2)
	})
}

func (s *RequestHandlerTestSuite) TestListOpenRequests() {
	s.Run("success: returns 200 with the provider board", func() {
		items := []*queries.RequestListItem{builder.NewRequestBuilder().BuildListItem()}
		s.mockQueries.EXPECT().ListOpen(gomock.Any(), 0).Return(items, nil)

		w := commonhttp.PerformRequest(s.T(), s.router, http.MethodGet, "/requests/open", nil, "")
		s.Equal(http.StatusOK, w.Code)

		var resp []*resdto.RequestListResponse
		_ = commonhttp.DecodeResponseBody(s.T(), w.Body, &resp)
		s.Len(resp, 1)
	})
}

func (s *RequestHandlerTestSuite) TestCancelRequest() {
	requestID := uuid.New()
	path := "/requests/" + requestID.String() + "/cancel"

	s.Run("success: returns 204 and forwards the reason", func() {
		s.mockCommands.EXPECT().Cancel(gomock.Any(), requestID, s.userID, "changed plans").Return(nil)

		w := commonhttp.PerformRequest(s.T(), s.router, http.MethodPost, path,
			map[string]any{"reason": "changed plans"}, "")
		s.Equal(http.StatusNoContent, w.Code)
	})

	s.Run("success: body is optional", func() {
		s.mockCommands.EXPECT().Cancel(gomock.Any(), requestID, s.userID, "").Return(nil)

		w := commonhttp.PerformRequest(s.T(), s.router, http.MethodPost, path, nil, "")
		s.Equal(http.StatusNoContent, w.Code)
	})

	s.Run("error: maps usecase errors to proper statuses", func() {
		testCases := []struct {
			name         string
			err          error
			expectedCode int
		}{
			{"request not found", commands.ErrRequestNotFound, http.StatusNotFound},
			{"not the owner", commands.ErrNotAuthorized, http.StatusForbidden},
			{"already terminal", commands.ErrRequestTerminal, http.StatusConflict},
			{"already in transit", commands.ErrRequestNotPending, http.StatusConflict},
		}

		for _, tc := range testCases {
			s.Run(tc.name, func() {
				s.mockCommands.EXPECT().Cancel(gomock.Any(), requestID, s.userID, "").Return(tc.err)

				w := commonhttp.PerformRequest(s.T(), s.router, http.MethodPost, path, nil, "")
				s.Equal(tc.expectedCode, w.Code)
			})
		}
	})
}

func (s *RequestHandlerTestSuite) TestDeliveryTransitions() {
	requestID := uuid.New()

	s.Run("success: transit returns 204", func() {
		s.mockCommands.EXPECT().MarkInTransit(gomock.Any(), requestID, s.userID).Return(nil)

		w := commonhttp.PerformRequest(s.T(), s.router, http.MethodPost,
			"/requests/"+requestID.String()+"/transit", nil, "")
		s.Equal(http.StatusNoContent, w.Code)
	})

	s.Run("success: delivered returns 204", func() {
		s.mockCommands.EXPECT().MarkDelivered(gomock.Any(), requestID, s.userID).Return(nil)

		w := commonhttp.PerformRequest(s.T(), s.router, http.MethodPost,
			"/requests/"+requestID.String()+"/delivered", nil, "")
		s.Equal(http.StatusNoContent, w.Code)
	})

	s.Run("error: 409 when the request is not in the right state", func() {
		s.mockCommands.EXPECT().MarkInTransit(gomock.Any(), requestID, s.userID).
			Return(commands.ErrRequestNotAccepted)

		w := commonhttp.PerformRequest(s.T(), s.router, http.MethodPost,
			"/requests/"+requestID.String()+"/transit", nil, "")
		s.Equal(http.StatusConflict, w.Code)
	})

	s.Run("error: 403 for a supplier not assigned to the request", func() {
		s.mockCommands.EXPECT().MarkDelivered(gomock.Any(), requestID, s.userID).
			Return(commands.ErrNotAuthorized)

		w := commonhttp.PerformRequest(s.T(), s.router, http.MethodPost,
			"/requests/"+requestID.String()+"/delivered", nil, "")
		s.Equal(http.StatusForbidden, w.Code)
	})
}
