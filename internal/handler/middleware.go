package handler

import (
	"net/http"
	"strings"

	"github.com/cuceimatch/matchcore/internal/model"
	"github.com/cuceimatch/matchcore/internal/service"
	"github.com/gin-gonic/gin"
)

// SessionMiddleware - 세션이 종단 UNAUTHENTICATED면 401
//
// access가 만료됐지만 갱신 가능한 세션은 통과시킴 (원격 호출의 401 경로에서 갱신)
func SessionMiddleware(sessions *service.SessionManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		status := sessions.CurrentStatus(c.Request.Context())
		if status != model.SessionAuthenticated && !sessions.Renewable() {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}

		c.Next()
	}
}

func CORSMiddleware(allowedOrigins []string) gin.HandlerFunc {
	originMap := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		trimmed := strings.TrimSpace(origin)
		if trimmed == "" {
			continue
		}
		originMap[trimmed] = struct{}{}
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" {
			if _, ok := originMap[origin]; ok {
				c.Header("Access-Control-Allow-Origin", origin)
				c.Header("Vary", "Origin")
				c.Header("Access-Control-Allow-Headers", "Content-Type")
				c.Header("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
			}
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
