//go:build unit

package api_test

import (
	"net/http"
	"testing"

	"aguamarket/internal/handler/api"
	resdto "aguamarket/internal/handler/dto/response"
	"aguamarket/internal/usecase/commands"
	"aguamarket/internal/usecase/queries"
	"aguamarket/tests/common/builder"
	commonhttp "aguamarket/tests/common/httptest"
	commandsmock "aguamarket/tests/mock/commands"
	queriesmock "aguamarket/tests/mock/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type OfferHandlerTestSuite struct {
	suite.Suite
	handler      *api.OfferHandler
	router       *gin.Engine
	mockCtrl     *gomock.Controller
	mockCommands *commandsmock.MockOfferCommands
	mockQueries  *queriesmock.MockOfferQueries

	userID uuid.UUID
}

func (s *OfferHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	s.mockCtrl = gomock.NewController(s.T())
	s.mockCommands = commandsmock.NewMockOfferCommands(s.mockCtrl)
	s.mockQueries = queriesmock.NewMockOfferQueries(s.mockCtrl)
	s.handler = api.NewOfferHandler(s.mockCommands, s.mockQueries)
	s.userID = uuid.New()

	s.router = gin.New()
	authed := func(c *gin.Context) {
		c.Set("user_id", s.userID)
	}
	s.router.POST("/requests/:id/offers", authed, s.handler.SubmitOffer)
	s.router.GET("/requests/:id/offers", authed, s.handler.ListOffersForRequest)
	s.router.POST("/requests/:id/offers/:offerId/select", authed, s.handler.SelectOffer)
	s.router.POST("/offers/:id/withdraw", authed, s.handler.WithdrawOffer)
	s.router.GET("/offers", authed, s.handler.ListMyOffers)
}

func (s *OfferHandlerTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestOfferHandlerSuite(t *testing.T) {
	suite.Run(t, new(OfferHandlerTestSuite))
}

func (s *OfferHandlerTestSuite) TestSubmitOffer() {
	requestID := uuid.New()
	reqBody := builder.NewOfferBuilder().BuildSubmitDTO()

	s.Run("success: returns 201 with the persisted offer", func() {
		view := builder.NewOfferBuilder().WithRequestID(requestID).BuildView()
		view.RemainingSeconds = 90

		s.mockCommands.EXPECT().Submit(gomock.Any(), gomock.Any(), requestID, s.userID).
			Return(view, nil)

		w := commonhttp.PerformRequest(s.T(), s.router, http.MethodPost, "/requests/"+requestID.String()+"/offers", reqBody, "")
		s.Equal(http.StatusCreated, w.Code)

		var resp resdto.OfferResponse
		_ = commonhttp.DecodeResponseBody(s.T(), w.Body, &resp)
		s.Equal(view.ID, resp.ID)
		s.Equal(view.PriceCents, resp.PriceCents)
		s.Equal("01:30", resp.Remaining)
	})

	s.Run("error: 400 Bad Request for malformed request ID", func() {
		w := commonhttp.PerformRequest(s.T(), s.router, http.MethodPost, "/requests/not-a-uuid/offers", reqBody, "")
		s.Equal(http.StatusBadRequest, w.Code)
	})

	s.Run("error: maps usecase errors to proper statuses", func() {
		testCases := []struct {
			name         string
			err          error
			expectedCode int
		}{
			{"request not found", commands.ErrRequestNotFound, http.StatusNotFound},
			{"request not open", commands.ErrRequestNotOpen, http.StatusConflict},
			{"duplicate active offer", commands.ErrDuplicateOffer, http.StatusConflict},
			{"own request", commands.ErrNotAuthorized, http.StatusForbidden},
			{"invalid offer details", commands.ErrDomainValidation, http.StatusUnprocessableEntity},
			{"database failure", commands.ErrDatabaseOperationFailed, http.StatusInternalServerError},
		}

		for _, tc := range testCases {
			s.Run(tc.name, func() {
				s.mockCommands.EXPECT().Submit(gomock.Any(), gomock.Any(), requestID, s.userID).
					Return(nil, tc.err)

				w := commonhttp.PerformRequest(s.T(), s.router, http.MethodPost, "/requests/"+requestID.String()+"/offers", reqBody, "")
				s.Equal(tc.expectedCode, w.Code)
			})
		}
	})
}

func (s *OfferHandlerTestSuite) TestListOffersForRequest() {
	requestID := uuid.New()

	s.Run("success: returns 200 with offers", func() {
		views := []*queries.OfferView{
			builder.NewOfferBuilder().WithRequestID(requestID).BuildView(),
			builder.NewOfferBuilder().WithRequestID(requestID).BuildView(),
		}

		s.mockQueries.EXPECT().ListForRequest(gomock.Any(), s.userID, requestID).
			Return(views, nil)

		w := commonhttp.PerformRequest(s.T(), s.router, http.MethodGet, "/requests/"+requestID.String()+"/offers", nil, "")
		s.Equal(http.StatusOK, w.Code)

		var resp []*resdto.OfferResponse
		_ = commonhttp.DecodeResponseBody(s.T(), w.Body, &resp)
		s.Len(resp, 2)
	})

	s.Run("error: 403 Forbidden for another user's request", func() {
		s.mockQueries.EXPECT().ListForRequest(gomock.Any(), s.userID, requestID).
			Return(nil, queries.ErrForbidden)

		w := commonhttp.PerformRequest(s.T(), s.router, http.MethodGet, "/requests/"+requestID.String()+"/offers", nil, "")
		s.Equal(http.StatusForbidden, w.Code)
	})
}

func (s *OfferHandlerTestSuite) TestSelectOffer() {
	requestID := uuid.New()
	offerID := uuid.New()
	path := "/requests/" + requestID.String() + "/offers/" + offerID.String() + "/select"

	s.Run("success: returns 200 with selection summary", func() {
		s.mockCommands.EXPECT().Select(gomock.Any(), requestID, offerID, s.userID).
			Return(&commands.SelectOfferResult{
				OfferID:      offerID,
				RequestID:    requestID,
				LosingOffers: 3,
			}, nil)

		w := commonhttp.PerformRequest(s.T(), s.router, http.MethodPost, path, nil, "")
		s.Equal(http.StatusOK, w.Code)

		var resp map[string]any
		_ = commonhttp.DecodeResponseBody(s.T(), w.Body, &resp)
		s.Equal(offerID.String(), resp["offerId"])
		s.Equal(float64(3), resp["losingOffers"])
	})

	s.Run("error: maps usecase errors to proper statuses", func() {
		testCases := []struct {
			name         string
			err          error
			expectedCode int
		}{
			{"offer not found", commands.ErrOfferNotFound, http.StatusNotFound},
			{"not the owner", commands.ErrNotAuthorized, http.StatusForbidden},
			{"offer expired", commands.ErrOfferExpired, http.StatusGone},
			{"offer withdrawn", commands.ErrOfferNotActive, http.StatusConflict},
			{"lost the race", commands.ErrSelectionConflict, http.StatusConflict},
			{"request closed", commands.ErrRequestNotOpen, http.StatusConflict},
		}

		for _, tc := range testCases {
			s.Run(tc.name, func() {
				s.mockCommands.EXPECT().Select(gomock.Any(), requestID, offerID, s.userID).
					Return(nil, tc.err)

				w := commonhttp.PerformRequest(s.T(), s.router, http.MethodPost, path, nil, "")
				s.Equal(tc.expectedCode, w.Code)
			})
		}
	})
}

func (s *OfferHandlerTestSuite) TestWithdrawOffer() {
	offerID := uuid.New()
	path := "/offers/" + offerID.String() + "/withdraw"

	s.Run("success: returns 204 No Content", func() {
		s.mockCommands.EXPECT().Withdraw(gomock.Any(), offerID, s.userID).Return(nil)

		w := commonhttp.PerformRequest(s.T(), s.router, http.MethodPost, path, nil, "")
		s.Equal(http.StatusNoContent, w.Code)
	})

	s.Run("error: 409 Conflict once the offer settled", func() {
		s.mockCommands.EXPECT().Withdraw(gomock.Any(), offerID, s.userID).
			Return(commands.ErrOfferNotActive)

		w := commonhttp.PerformRequest(s.T(), s.router, http.MethodPost, path, nil, "")
		s.Equal(http.StatusConflict, w.Code)
	})

	s.Run("error: 403 Forbidden for someone else's offer", func() {
		s.mockCommands.EXPECT().Withdraw(gomock.Any(), offerID, s.userID).
			Return(commands.ErrNotAuthorized)

		w := commonhttp.PerformRequest(s.T(), s.router, http.MethodPost, path, nil, "")
		s.Equal(http.StatusForbidden, w.Code)
	})
}

func (s *OfferHandlerTestSuite) TestListMyOffers() {
	s.Run("success: returns grouped offers", func() {
		grouped := &queries.GroupedProviderOffers{
			Active:   []*queries.OfferView{builder.NewOfferBuilder().WithProviderID(s.userID).BuildView()},
			Accepted: []*queries.OfferView{},
			History:  []*queries.OfferView{},
		}

		s.mockQueries.EXPECT().ListForProvider(gomock.Any(), s.userID).Return(grouped, nil)

		w := commonhttp.PerformRequest(s.T(), s.router, http.MethodGet, "/offers", nil, "")
		s.Equal(http.StatusOK, w.Code)

		var resp resdto.GroupedOffersResponse
		_ = commonhttp.DecodeResponseBody(s.T(), w.Body, &resp)
		s.Len(resp.Active, 1)
		s.Empty(resp.Accepted)
		s.Empty(resp.History)
	})
}
