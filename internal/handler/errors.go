package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/cuceimatch/matchcore/internal/client"
	"github.com/cuceimatch/matchcore/internal/observability"
	"github.com/cuceimatch/matchcore/internal/service"
	"github.com/gin-gonic/gin"
)

// writeError - 코어 sentinel 에러를 HTTP 상태 코드로 변환
func writeError(c *gin.Context, err error) {
	var reqErr *client.RequestError

	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
	case errors.Is(err, service.ErrInvalidQR):
		c.JSON(http.StatusBadRequest, gin.H{"error": "credential qr url is invalid"})
	case errors.Is(err, service.ErrCredentialRejected):
		c.JSON(http.StatusForbidden, gin.H{"error": "student credential rejected"})
	case errors.Is(err, service.ErrCredentialTaken):
		c.JSON(http.StatusConflict, gin.H{"error": "student credential already registered"})
	case errors.Is(err, service.ErrInvalidKind):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid swipe kind"})
	case errors.Is(err, service.ErrDecisionInFlight):
		c.JSON(http.StatusConflict, gin.H{"error": "decision already in flight"})
	case errors.Is(err, service.ErrStale):
		c.JSON(http.StatusConflict, gin.H{"error": "session changed"})
	case errors.Is(err, service.ErrRenewalFailed), errors.Is(err, client.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
	case errors.Is(err, client.ErrUnexpectedResponse):
		log.Printf("[Bridge] unexpected upstream response on %s: %v", c.FullPath(), err)
		observability.CaptureError(err, c.FullPath())
		c.JSON(http.StatusBadGateway, gin.H{"error": "unexpected upstream response"})
	case errors.As(err, &reqErr) && reqErr.StatusCode == http.StatusNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.As(err, &reqErr) && reqErr.StatusCode >= 400 && reqErr.StatusCode < 500:
		c.JSON(reqErr.StatusCode, gin.H{"error": "request rejected by upstream"})
	case errors.Is(err, client.ErrRequestFailed):
		log.Printf("[Bridge] upstream request failed on %s: %v", c.FullPath(), err)
		observability.CaptureError(err, c.FullPath())
		c.JSON(http.StatusBadGateway, gin.H{"error": "upstream unavailable"})
	default:
		log.Printf("[Bridge] unexpected error on %s: %v", c.FullPath(), err)
		observability.CaptureError(err, c.FullPath())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
	}
}
