package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/NarcisseDedome/gestionpersonnel/config"
	"github.com/NarcisseDedome/gestionpersonnel/internal/api/handler"
	"github.com/NarcisseDedome/gestionpersonnel/internal/api/middleware"
	"github.com/NarcisseDedome/gestionpersonnel/internal/model"
	"github.com/NarcisseDedome/gestionpersonnel/pkg/jwt"
	"github.com/NarcisseDedome/gestionpersonnel/pkg/metrics"
)

// Deps optional infrastructure behind the middleware. Nil members disable
// token revocation and rate limiting.
type Deps struct {
	Revocation  middleware.RevocationChecker
	RateLimiter middleware.RateLimiter
	Metrics     *metrics.Metrics
	// MetricsHandler serves GET /metrics; promhttp.Handler() when nil.
	MetricsHandler http.Handler
}

// Setup builds the Gin engine.
// importRoute accepts spreadsheets above the default body limit.
const importRoute = "/api/v1/admin/import"

func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, deps Deps, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	if deps.Metrics == nil {
		deps.Metrics = metrics.NewNop()
	}
	if deps.MetricsHandler == nil {
		deps.MetricsHandler = promhttp.Handler()
	}

	r := gin.New()

	// ── global middleware ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins, cfg.Server.CORS.MaxAge))
	r.Use(middleware.BodyLimit(cfg.Server.BodyLimit, map[string]int64{
		importRoute: cfg.Import.MaxFileSize,
	}))
	r.Use(middleware.Metrics(deps.Metrics))

	// ── probes ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(deps.MetricsHandler))

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		v1.POST("/auth/login",
			middleware.RateLimit(deps.RateLimiter, cfg.Auth.LoginRateLimit, time.Minute, logger),
			h.Auth.Login,
		)

		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, deps.Revocation, logger))
		{
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.Me)

			teachers := authorized.Group("/teachers")
			{
				teachers.GET("", h.Teacher.List)
				teachers.POST("", h.Teacher.Create)
				teachers.GET("/:id", h.Teacher.Get)
				teachers.PUT("/:id", h.Teacher.Update)
				teachers.PATCH("/:id/archive", h.Teacher.Archive)
				teachers.DELETE("/:id", middleware.RoleAuth(model.RoleSuperAdmin), h.Teacher.Delete)
				teachers.GET("/:id/certificate-validity", h.Teacher.ValidityCertificate)
				teachers.GET("/:id/presence-post", h.Teacher.PresenceCertificate)
			}

			authorized.POST("/retirement/preview", h.Teacher.PreviewRetirement)
			authorized.GET("/stats", h.Stats.Get)

			export := authorized.Group("/export")
			{
				export.GET("/teachers", h.Export.ExportTeachers)
				export.GET("/retirements.ics", h.Export.ExportRetirements)
			}

			admin := authorized.Group("/admin")
			{
				admin.POST("/import", h.Admin.Import)
				admin.POST("/recompute", h.Admin.Recompute)
				admin.POST("/infer-genders", h.Admin.InferGenders)
				admin.POST("/users", middleware.RoleAuth(model.RoleSuperAdmin), h.Admin.CreateAdmin)
				admin.GET("/audit-logs", middleware.RoleAuth(model.RoleSuperAdmin), h.Admin.ListAuditLogs)
			}
		}
	}

	return r
}
