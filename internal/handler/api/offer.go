package api

import (
	"errors"
	"net/http"

	reqdto "aguamarket/internal/handler/dto/request"
	resdto "aguamarket/internal/handler/dto/response"
	"aguamarket/internal/handler/httperr"
	"aguamarket/internal/handler/middleware"
	"aguamarket/internal/infra"
	"aguamarket/internal/usecase/commands"
	"aguamarket/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type OfferHandler struct {
	offerCommands commands.OfferCommands
	offerQueries  queries.OfferQueries
}

func NewOfferHandler(offerCommands commands.OfferCommands, offerQueries queries.OfferQueries) *OfferHandler {
	return &OfferHandler{
		offerCommands: offerCommands,
		offerQueries:  offerQueries,
	}
}

// @Summary Submit offer
// @Description Provider submits a priced offer against an open request
// @Tags offers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Request ID"
// @Param request body reqdto.SubmitOfferRequest true "Offer details"
// @Success 201 {object} resdto.OfferResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Failure 422 {object} httperr.Response
// @Router /requests/{id}/offers [post]
func (h *OfferHandler) SubmitOffer(c *gin.Context) {
	providerID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusInternalServerError, errors.New("missing user context"), "Internal server error", nil)
		return
	}

	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request ID format", nil)
		return
	}

	var req reqdto.SubmitOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request format", nil)
		return
	}

	view, err := h.offerCommands.Submit(c.Request.Context(), req, requestID, providerID)
	if err != nil {
		switch {
		case errors.Is(err, commands.ErrRequestNotFound):
			httperr.AbortWithError(c, http.StatusNotFound, err, "Request not found", nil)
		case errors.Is(err, commands.ErrRequestNotOpen):
			httperr.AbortWithError(c, http.StatusConflict, err, "Request is no longer open for offers", nil)
		case errors.Is(err, commands.ErrDuplicateOffer):
			httperr.AbortWithError(c, http.StatusConflict, err, "An active offer for this request already exists", nil)
		case errors.Is(err, commands.ErrNotAuthorized):
			httperr.AbortWithError(c, http.StatusForbidden, err, "Cannot offer on own request", nil)
		case errors.Is(err, commands.ErrDomainValidation):
			httperr.AbortWithError(c, http.StatusUnprocessableEntity, err, "Invalid offer details", nil)
		default:
			httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		}
		return
	}

	c.JSON(http.StatusCreated, resdto.FromOfferView(view))
}

// @Summary List offers for request
// @Description Consumer lists the offers on an own request with live countdowns
// @Tags offers
// @Produce json
// @Security BearerAuth
// @Param id path string true "Request ID"
// @Success 200 {array} resdto.OfferResponse
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /requests/{id}/offers [get]
func (h *OfferHandler) ListOffersForRequest(c *gin.Context) {
	actorID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusInternalServerError, errors.New("missing user context"), "Internal server error", nil)
		return
	}

	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request ID format", nil)
		return
	}

	views, err := h.offerQueries.ListForRequest(c.Request.Context(), actorID, requestID)
	if err != nil {
		switch {
		case errors.Is(err, queries.ErrForbidden):
			httperr.AbortWithError(c, http.StatusForbidden, err, "Access denied", nil)
		case infra.IsKind(err, infra.KindNotFound):
			httperr.AbortWithError(c, http.StatusNotFound, err, "Request not found", nil)
		default:
			httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		}
		return
	}

	c.JSON(http.StatusOK, resdto.FromOfferViews(views))
}

// @Summary Select offer
// @Description Consumer accepts one offer; siblings are released atomically
// @Tags offers
// @Produce json
// @Security BearerAuth
// @Param id path string true "Request ID"
// @Param offerId path string true "Offer ID"
// @Success 200 {object} map[string]any
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Failure 410 {object} httperr.Response
// @Router /requests/{id}/offers/{offerId}/select [post]
func (h *OfferHandler) SelectOffer(c *gin.Context) {
	consumerID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusInternalServerError, errors.New("missing user context"), "Internal server error", nil)
		return
	}

	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request ID format", nil)
		return
	}

	offerID, err := uuid.Parse(c.Param("offerId"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid offer ID format", nil)
		return
	}

	result, err := h.offerCommands.Select(c.Request.Context(), requestID, offerID, consumerID)
	if err != nil {
		switch {
		case errors.Is(err, commands.ErrOfferNotFound):
			httperr.AbortWithError(c, http.StatusNotFound, err, "Offer not found", nil)
		case errors.Is(err, commands.ErrNotAuthorized):
			httperr.AbortWithError(c, http.StatusForbidden, err, "Access denied", nil)
		case errors.Is(err, commands.ErrOfferExpired):
			httperr.AbortWithError(c, http.StatusGone, err, "Offer has expired", nil)
		case errors.Is(err, commands.ErrRequestNotOpen),
			errors.Is(err, commands.ErrOfferNotActive),
			errors.Is(err, commands.ErrSelectionConflict):
			httperr.AbortWithError(c, http.StatusConflict, err, "Offer can no longer be selected", nil)
		default:
			httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"offerId":      result.OfferID,
		"requestId":    result.RequestID,
		"losingOffers": result.LosingOffers,
	})
}

// @Summary Withdraw offer
// @Description Provider withdraws an own still-active offer
// @Tags offers
// @Produce json
// @Security BearerAuth
// @Param id path string true "Offer ID"
// @Success 204
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /offers/{id}/withdraw [post]
func (h *OfferHandler) WithdrawOffer(c *gin.Context) {
	providerID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusInternalServerError, errors.New("missing user context"), "Internal server error", nil)
		return
	}

	offerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid offer ID format", nil)
		return
	}

	if err := h.offerCommands.Withdraw(c.Request.Context(), offerID, providerID); err != nil {
		switch {
		case errors.Is(err, commands.ErrOfferNotFound):
			httperr.AbortWithError(c, http.StatusNotFound, err, "Offer not found", nil)
		case errors.Is(err, commands.ErrNotAuthorized):
			httperr.AbortWithError(c, http.StatusForbidden, err, "Access denied", nil)
		case errors.Is(err, commands.ErrOfferNotActive):
			httperr.AbortWithError(c, http.StatusConflict, err, "Offer is no longer active", nil)
		default:
			httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		}
		return
	}

	c.Status(http.StatusNoContent)
}

// @Summary List my offers
// @Description Provider dashboard of own offers grouped by outcome
// @Tags offers
// @Produce json
// @Security BearerAuth
// @Success 200 {object} resdto.GroupedOffersResponse
// @Router /offers [get]
func (h *OfferHandler) ListMyOffers(c *gin.Context) {
	providerID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusInternalServerError, errors.New("missing user context"), "Internal server error", nil)
		return
	}

	grouped, err := h.offerQueries.ListForProvider(c.Request.Context(), providerID)
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		return
	}

	c.JSON(http.StatusOK, resdto.FromGroupedOffers(grouped))
}
