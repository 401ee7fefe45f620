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

type RequestHandler struct {
	requestCommands commands.RequestCommands
	requestQueries  queries.RequestQueries
}

func NewRequestHandler(requestCommands commands.RequestCommands, requestQueries queries.RequestQueries) *RequestHandler {
	return &RequestHandler{
		requestCommands: requestCommands,
		requestQueries:  requestQueries,
	}
}

// @Summary Create water request
// @Description Publish a new delivery request to the provider board
// @Tags requests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.CreateRequestRequest true "Request details"
// @Success 201 {object} resdto.RequestResponse
// @Failure 400 {object} httperr.Response
// @Failure 422 {object} httperr.Response
// @Router /requests [post]
func (h *RequestHandler) CreateRequest(c *gin.Context) {
	consumerID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusInternalServerError, errors.New("missing user context"), "Internal server error", nil)
		return
	}

	var req reqdto.CreateRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request format", nil)
		return
	}

	view, err := h.requestCommands.Create(c.Request.Context(), req, consumerID)
	if err != nil {
		switch {
		case errors.Is(err, commands.ErrDomainValidation):
			httperr.AbortWithError(c, http.StatusUnprocessableEntity, err, "Invalid request details", nil)
		default:
			httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		}
		return
	}

	c.JSON(http.StatusCreated, resdto.FromRequestView(view))
}

// @Summary Get request
// @Description Get a request visible to its consumer or assigned supplier
// @Tags requests
// @Produce json
// @Security BearerAuth
// @Param id path string true "Request ID"
// @Success 200 {object} resdto.RequestResponse
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /requests/{id} [get]
func (h *RequestHandler) GetRequest(c *gin.Context) {
	actorID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusInternalServerError, errors.New("missing user context"), "Internal server error", nil)
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request ID format", nil)
		return
	}

	view, err := h.requestQueries.GetByID(c.Request.Context(), actorID, id)
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

	c.JSON(http.StatusOK, resdto.FromRequestView(view))
}

// @Summary List my requests
// @Description List the authenticated consumer's requests, newest first
// @Tags requests
// @Produce json
// @Security BearerAuth
// @Success 200 {array} resdto.RequestListResponse
// @Router /requests [get]
func (h *RequestHandler) ListMyRequests(c *gin.Context) {
	consumerID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusInternalServerError, errors.New("missing user context"), "Internal server error", nil)
		return
	}

	items, err := h.requestQueries.ListByConsumer(c.Request.Context(), consumerID, 0)
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		return
	}

	c.JSON(http.StatusOK, resdto.FromRequestListItems(items))
}

// @Summary List open requests
// @Description Provider board of pending requests, urgent first
// @Tags requests
// @Produce json
// @Security BearerAuth
// @Success 200 {array} resdto.RequestListResponse
// @Router /requests/open [get]
func (h *RequestHandler) ListOpenRequests(c *gin.Context) {
	items, err := h.requestQueries.ListOpen(c.Request.Context(), 0)
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		return
	}

	c.JSON(http.StatusOK, resdto.FromRequestListItems(items))
}

// @Summary Cancel request
// @Description Cancel an own pending request; active offers are released
// @Tags requests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Request ID"
// @Param request body reqdto.CancelRequestRequest false "Cancellation reason"
// @Success 204
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /requests/{id}/cancel [post]
func (h *RequestHandler) CancelRequest(c *gin.Context) {
	consumerID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusInternalServerError, errors.New("missing user context"), "Internal server error", nil)
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request ID format", nil)
		return
	}

	var req reqdto.CancelRequestRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request format", nil)
			return
		}
	}

	if err := h.requestCommands.Cancel(c.Request.Context(), id, consumerID, req.Reason); err != nil {
		h.abortRequestTransitionError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// @Summary Start delivery
// @Description Assigned supplier marks the delivery as on the way
// @Tags requests
// @Produce json
// @Security BearerAuth
// @Param id path string true "Request ID"
// @Success 204
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /requests/{id}/transit [post]
func (h *RequestHandler) StartDelivery(c *gin.Context) {
	supplierID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusInternalServerError, errors.New("missing user context"), "Internal server error", nil)
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request ID format", nil)
		return
	}

	if err := h.requestCommands.MarkInTransit(c.Request.Context(), id, supplierID); err != nil {
		h.abortRequestTransitionError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// @Summary Complete delivery
// @Description Assigned supplier marks the delivery as completed
// @Tags requests
// @Produce json
// @Security BearerAuth
// @Param id path string true "Request ID"
// @Success 204
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /requests/{id}/delivered [post]
func (h *RequestHandler) CompleteDelivery(c *gin.Context) {
	supplierID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusInternalServerError, errors.New("missing user context"), "Internal server error", nil)
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request ID format", nil)
		return
	}

	if err := h.requestCommands.MarkDelivered(c.Request.Context(), id, supplierID); err != nil {
		h.abortRequestTransitionError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *RequestHandler) abortRequestTransitionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, commands.ErrRequestNotFound):
		httperr.AbortWithError(c, http.StatusNotFound, err, "Request not found", nil)
	case errors.Is(err, commands.ErrNotAuthorized):
		httperr.AbortWithError(c, http.StatusForbidden, err, "Access denied", nil)
	case errors.Is(err, commands.ErrRequestTerminal),
		errors.Is(err, commands.ErrRequestNotPending),
		errors.Is(err, commands.ErrRequestNotAccepted),
		errors.Is(err, commands.ErrRequestNotMovable):
		httperr.AbortWithError(c, http.StatusConflict, err, "Request is not in a valid state for this action", nil)
	default:
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
	}
}
