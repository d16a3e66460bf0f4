package handler

import (
	"log"
	"net/http"

	"github.com/cuceimatch/matchcore/internal/observability"
	"github.com/cuceimatch/matchcore/internal/service"
	"github.com/gin-gonic/gin"
)

// Services - 브리지가 노출하는 코어 컴포넌트
type Services struct {
	Sessions *service.SessionManager
	Swipes   *service.SwipeService
	Matches  *service.MatchRegistry
	Events   *service.Hub
}

// NewRouter - 로컬 브리지 라우터 구성
func NewRouter(svc Services, allowedOrigins []string) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.CustomRecovery(func(c *gin.Context, rec any) {
		log.Printf("[Bridge] panic recovered on %s: %v", c.FullPath(), rec)
		observability.RecoverPanic(rec, c.FullPath())
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}))
	router.Use(CORSMiddleware(allowedOrigins))

	router.GET("/ping", Ping)
	router.GET("/", Root)

	sessionHandler := NewSessionHandler(svc.Sessions, svc.Swipes.Detach, svc.Matches.Reset)
	swipeHandler := NewSwipeHandler(svc.Swipes)
	matchHandler := NewMatchHandler(svc.Matches)
	eventHandler := NewEventHandler(svc.Events)

	api := router.Group("/api/v1")
	{
		session := api.Group("/session")
		{
			session.GET("", sessionHandler.Status)
			session.POST("/login", sessionHandler.Login)
			session.POST("/verify-qr", sessionHandler.ValidateQR)
			session.POST("/register", sessionHandler.Register)
			session.POST("/logout", sessionHandler.Logout)
			session.PATCH("/user", SessionMiddleware(svc.Sessions), sessionHandler.UpdateUser)
		}

		api.GET("/events", eventHandler.Stream)

		protected := api.Group("")
		protected.Use(SessionMiddleware(svc.Sessions))
		{
			protected.POST("/candidates/load", swipeHandler.LoadCandidates)
			protected.GET("/candidates/current", swipeHandler.Current)
			protected.POST("/swipes", swipeHandler.Decide)

			protected.GET("/matches", matchHandler.List)
			protected.GET("/matches/:id", matchHandler.Get)
			protected.DELETE("/matches/:id", matchHandler.Remove)
		}
	}

	return router
}
