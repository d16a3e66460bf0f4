package handler

import (
	"net/http"

	"github.com/cuceimatch/matchcore/internal/model"
	"github.com/cuceimatch/matchcore/internal/service"
	"github.com/gin-gonic/gin"
)

type SwipeHandler struct {
	svc *service.SwipeService
}

func NewSwipeHandler(svc *service.SwipeService) *SwipeHandler {
	return &SwipeHandler{svc: svc}
}

// LoadCandidates godoc
// @Summary Reload the candidate queue
// @Description Replaces the queue wholesale and resets the cursor.
// @Tags candidates
// @Produce json
// @Success 200 {object} model.LoadCandidatesResponse
// @Failure 401 {object} model.ErrorResponse
// @Failure 502 {object} model.ErrorResponse
// @Router /api/v1/candidates/load [post]
func (h *SwipeHandler) LoadCandidates(c *gin.Context) {
	count, err := h.svc.LoadCandidates(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.LoadCandidatesResponse{
		Count:   count,
		Current: h.svc.Current(),
	})
}

// Current godoc
// @Summary Get the current candidate
// @Tags candidates
// @Produce json
// @Success 200 {object} model.CandidateView
// @Router /api/v1/candidates/current [get]
func (h *SwipeHandler) Current(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Current())
}

// Decide godoc
// @Summary Submit a decision for the current candidate
// @Tags candidates
// @Accept json
// @Produce json
// @Param request body model.SwipeRequest true "like | dislike | superlike"
// @Success 200 {object} model.Decision
// @Failure 400 {object} model.ErrorResponse
// @Failure 409 {object} model.ErrorResponse
// @Failure 502 {object} model.ErrorResponse
// @Router /api/v1/swipes [post]
func (h *SwipeHandler) Decide(c *gin.Context) {
	var req model.SwipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	decision, err := h.svc.Decide(c.Request.Context(), req.Kind)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, decision)
}
