package handler

import (
	"net/http"
	"strconv"

	"github.com/cuceimatch/matchcore/internal/model"
	"github.com/cuceimatch/matchcore/internal/service"
	"github.com/gin-gonic/gin"
)

type MatchHandler struct {
	registry *service.MatchRegistry
}

func NewMatchHandler(registry *service.MatchRegistry) *MatchHandler {
	return &MatchHandler{registry: registry}
}

// List godoc
// @Summary List matches
// @Description Refreshes from the server unless cached=true.
// @Tags matches
// @Produce json
// @Param cached query bool false "Return the local snapshot without refreshing"
// @Success 200 {object} model.MatchListResponse
// @Failure 401 {object} model.ErrorResponse
// @Failure 502 {object} model.ErrorResponse
// @Router /api/v1/matches [get]
func (h *MatchHandler) List(c *gin.Context) {
	if c.Query("cached") == "true" {
		c.JSON(http.StatusOK, model.MatchListResponse{Results: h.registry.Matches()})
		return
	}

	list, err := h.registry.Refresh(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.MatchListResponse{Results: list})
}

// Get godoc
// @Summary Get match detail
// @Tags matches
// @Produce json
// @Param id path int true "Match ID"
// @Success 200 {object} model.Match
// @Failure 400 {object} model.ErrorResponse
// @Failure 404 {object} model.ErrorResponse
// @Router /api/v1/matches/{id} [get]
func (h *MatchHandler) Get(c *gin.Context) {
	id, ok := parseMatchID(c)
	if !ok {
		return
	}

	match, err := h.registry.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, match)
}

// Remove godoc
// @Summary Remove a match
// @Description Removes locally first. The item is restored if the server rejects the delete.
// @Tags matches
// @Produce json
// @Param id path int true "Match ID"
// @Success 200 {object} model.StatusResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 502 {object} model.ErrorResponse
// @Router /api/v1/matches/{id} [delete]
func (h *MatchHandler) Remove(c *gin.Context) {
	id, ok := parseMatchID(c)
	if !ok {
		return
	}

	if err := h.registry.Remove(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.StatusResponse{Status: "removed"})
}

func parseMatchID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid match id"})
		return 0, false
	}
	return id, true
}
