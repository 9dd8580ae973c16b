package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"insight-backend/internal/analyses"
	googleauth "insight-backend/internal/auth"
	"insight-backend/internal/boards"
	"insight-backend/internal/dialogues"
	"insight-backend/internal/documents"
	"insight-backend/internal/services/health"
	"insight-backend/internal/shared/config"
	"insight-backend/internal/shared/metrics"
	"insight-backend/internal/shared/server/middleware"
	"insight-backend/internal/shared/server/respond"
	"insight-backend/internal/users"
)

const analysisRateGroup = "ANALYSES_WRITE"

// RouterDeps carries the handlers the router mounts.
type RouterDeps struct {
	Config           config.Config
	Health           *health.Service
	DocumentsHandler *documents.Handler
	AnalysesHandler  *analyses.Handler
	BoardsHandler    *boards.Handler
	DialoguesHandler *dialogues.Handler
	UsersHandler     *users.Handler
	GoogleAuth       *googleauth.GoogleService
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.Auth(deps.Config.Env),
		middleware.RateLimit(middleware.RateLimitConfig{
			Rules: map[string]middleware.RateLimitRule{
				analysisRateGroup: {Rate: 1, Burst: 5},
			},
			GroupFor: analysisRateGroupFor,
		}),
	)

	healthSvc := deps.Health
	if healthSvc == nil {
		healthSvc = health.NewService()
	}

	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, healthSvc.Status())
	})
	if deps.GoogleAuth != nil {
		deps.GoogleAuth.RegisterRoutes(api)
	}
	if deps.UsersHandler != nil {
		deps.UsersHandler.RegisterRoutes(api)
	}
	if deps.DocumentsHandler != nil {
		deps.DocumentsHandler.RegisterRoutes(api)
	}
	if deps.AnalysesHandler != nil {
		deps.AnalysesHandler.RegisterRoutes(api)
	}
	if deps.BoardsHandler != nil {
		deps.BoardsHandler.RegisterRoutes(api)
	}
	if deps.DialoguesHandler != nil {
		deps.DialoguesHandler.RegisterRoutes(api)
	}

	return r
}

// analysisRateGroupFor throttles only the endpoints that start model work.
func analysisRateGroupFor(c *gin.Context) string {
	if c.Request.Method != http.MethodPost {
		return ""
	}
	path := c.FullPath()
	if path == "/api/v1/analyses" || strings.HasSuffix(path, "/analyze") {
		return analysisRateGroup
	}
	return ""
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
