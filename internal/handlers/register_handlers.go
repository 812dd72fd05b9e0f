package handlers

import (
	portssvc "github.com/clinicore/clinic_ledger_app/internal/core/ports/services"
	"github.com/clinicore/clinic_ledger_app/internal/middleware"
	"github.com/clinicore/clinic_ledger_app/internal/platform/config"
	"github.com/clinicore/clinic_ledger_app/internal/platform/metrics"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
)

// RegisterRoutes sets up all application routes, injecting dependencies
// using interfaces.
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	m *metrics.Metrics,
	limiterInstance *limiter.Limiter,
) {
	r.Use(cors.Default())
	r.Use(middleware.ActorMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})
	if m != nil {
		r.GET("/metrics", gin.WrapH(m.Handler()))
	}
	registerHomeRoutes(r)

	setupAPIV1Routes(r, services, limiterInstance)
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific
// entity route registrations.
func setupAPIV1Routes(r *gin.Engine, services *portssvc.ServiceContainer, limiterInstance *limiter.Limiter) {
	v1 := r.Group("/api/v1")
	if limiterInstance != nil {
		v1.Use(middleware.RateLimit(limiterInstance))
	}

	registerLedgerRoutes(v1, services.Ledger, services.Account)
	registerRevenueRoutes(v1, services.Revenue)
	registerAdminRoutes(v1, services)
}
