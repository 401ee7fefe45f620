package api

import (
	"errors"
	"net/http"

	reqdto "aguamarket/internal/handler/dto/request"
	resdto "aguamarket/internal/handler/dto/response"
	"aguamarket/internal/handler/httperr"
	"aguamarket/internal/usecase/commands"
	"aguamarket/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

type SettingsHandler struct {
	settingsCommands commands.SettingsCommands
	settingsQueries  queries.SettingsQueries
}

func NewSettingsHandler(settingsCommands commands.SettingsCommands, settingsQueries queries.SettingsQueries) *SettingsHandler {
	return &SettingsHandler{
		settingsCommands: settingsCommands,
		settingsQueries:  settingsQueries,
	}
}

// @Summary Get platform settings
// @Description Admin view of pricing and lifecycle settings
// @Tags settings
// @Produce json
// @Security BearerAuth
// @Success 200 {object} resdto.SettingsResponse
// @Router /admin/settings [get]
func (h *SettingsHandler) GetSettings(c *gin.Context) {
	view, err := h.settingsQueries.Get(c.Request.Context())
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		return
	}

	c.JSON(http.StatusOK, resdto.FromSettingsView(view))
}

// @Summary Update platform settings
// @Description Admin patches pricing and lifecycle settings; new offers pick them up immediately
// @Tags settings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.UpdateSettingsRequest true "Fields to change"
// @Success 200 {object} resdto.SettingsResponse
// @Failure 400 {object} httperr.Response
// @Failure 422 {object} httperr.Response
// @Router /admin/settings [patch]
func (h *SettingsHandler) UpdateSettings(c *gin.Context) {
	var req reqdto.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request format", nil)
		return
	}

	view, err := h.settingsCommands.Update(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, commands.ErrInvalidSettings):
			httperr.AbortWithError(c, http.StatusUnprocessableEntity, err, "Settings value out of range", nil)
		default:
			httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		}
		return
	}

	c.JSON(http.StatusOK, resdto.FromSettingsView(view))
}
