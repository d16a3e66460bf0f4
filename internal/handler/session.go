package handler

import (
	"net/http"

	"github.com/cuceimatch/matchcore/internal/model"
	"github.com/cuceimatch/matchcore/internal/service"
	"github.com/gin-gonic/gin"
)

type SessionHandler struct {
	sessions *service.SessionManager
	// 로그아웃 시 세션에 묶인 상태 정리 (후보 큐, 매치 목록)
	onLogout []func()
}

func NewSessionHandler(sessions *service.SessionManager, onLogout ...func()) *SessionHandler {
	return &SessionHandler{sessions: sessions, onLogout: onLogout}
}

// Status godoc
// @Summary Get session status
// @Description Resolves the session from the credential store without network calls.
// @Tags session
// @Produce json
// @Success 200 {object} model.SessionResponse
// @Router /api/v1/session [get]
func (h *SessionHandler) Status(c *gin.Context) {
	status := h.sessions.CurrentStatus(c.Request.Context())
	c.JSON(http.StatusOK, h.sessionResponse(status))
}

// Login godoc
// @Summary Login
// @Tags session
// @Accept json
// @Produce json
// @Param request body model.LoginRequest true "Identifier and secret"
// @Success 200 {object} model.SessionResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 401 {object} model.ErrorResponse
// @Failure 502 {object} model.ErrorResponse
// @Router /api/v1/session/login [post]
func (h *SessionHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	if _, err := h.sessions.Login(c.Request.Context(), req.Identifier, req.Secret); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.sessionResponse(model.SessionAuthenticated))
}

// ValidateQR godoc
// @Summary Validate a student credential QR
// @Description First registration step. Returns the holder name and a temporary token for Register.
// @Tags session
// @Accept json
// @Produce json
// @Param request body model.QRValidationRequest true "Credential QR url"
// @Success 200 {object} model.QRValidation
// @Failure 400 {object} model.ErrorResponse
// @Failure 403 {object} model.ErrorResponse
// @Failure 409 {object} model.ErrorResponse
// @Failure 502 {object} model.ErrorResponse
// @Router /api/v1/session/verify-qr [post]
func (h *SessionHandler) ValidateQR(c *gin.Context) {
	var req model.QRValidationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	result, err := h.sessions.ValidateQR(c.Request.Context(), req.URL)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Register godoc
// @Summary Complete registration and start a session
// @Tags session
// @Accept json
// @Produce json
// @Param request body model.RegistrationRequest true "Registration payload"
// @Success 200 {object} model.SessionResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 502 {object} model.ErrorResponse
// @Router /api/v1/session/register [post]
func (h *SessionHandler) Register(c *gin.Context) {
	var req model.RegistrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	if _, err := h.sessions.Register(c.Request.Context(), req); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.sessionResponse(model.SessionAuthenticated))
}

// Logout godoc
// @Summary Logout
// @Description Clears stored credentials unconditionally. Idempotent.
// @Tags session
// @Produce json
// @Success 200 {object} model.LogoutResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /api/v1/session/logout [post]
func (h *SessionHandler) Logout(c *gin.Context) {
	err := h.sessions.Logout(c.Request.Context())
	// 저장소 정리에 실패해도 레코드는 이미 비워졌으므로 세션 상태는 정리
	for _, fn := range h.onLogout {
		fn()
	}
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.LogoutResponse{Status: "logged_out"})
}

// UpdateUser godoc
// @Summary Update profile fields
// @Tags session
// @Accept json
// @Produce json
// @Param request body object true "Profile fields"
// @Success 200 {object} model.User
// @Failure 400 {object} model.ErrorResponse
// @Failure 401 {object} model.ErrorResponse
// @Router /api/v1/session/user [patch]
func (h *SessionHandler) UpdateUser(c *gin.Context) {
	var fields map[string]any
	if err := c.ShouldBindJSON(&fields); err != nil || len(fields) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	user, err := h.sessions.UpdateUser(c.Request.Context(), fields)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *SessionHandler) sessionResponse(status model.SessionStatus) model.SessionResponse {
	resp := model.SessionResponse{Status: status}
	if status == model.SessionAuthenticated {
		resp.User = h.sessions.Record().User
	}
	return resp
}
