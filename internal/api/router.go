// Package api - Router setup
package api

import (
	"net/http"
	"time"

	"github.com/aethra/catalog-admin/internal/auth"
	"github.com/aethra/catalog-admin/internal/config"
	"github.com/aethra/catalog-admin/internal/ui"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(h *Handler, corsCfg config.CORSConfig) *gin.Engine {
	r := gin.New()
	r.Use(Recovery(h.log))
	r.Use(RequestLogger(h.log))

	// When credentials are used, specific origins must be provided (not *)
	corsConfig := cors.Config{
		AllowOrigins:     corsCfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Length", "Content-Type"},
		AllowCredentials: corsCfg.AllowCredentials,
		MaxAge:           12 * time.Hour,
	}
	if len(corsConfig.AllowOrigins) == 0 {
		corsConfig.AllowOrigins = []string{"http://localhost:8090"}
	}
	r.Use(cors.New(corsConfig))

	r.StaticFS("/static", ui.Static())

	// Health check (no auth required)
	r.GET("/api/health", h.Health)

	r.GET("/", func(c *gin.Context) { c.Redirect(http.StatusFound, "/panel") })
	r.GET("/login", h.LoginPage)
	r.POST("/login", h.Login)
	r.POST("/logout", h.Logout)
	r.GET("/setup", h.SetupPage)
	r.POST("/setup", h.DoSetup)

	p := r.Group("/panel")
	p.Use(h.SessionMiddleware())
	{
		p.GET("", h.Index)
		p.GET("/sections/:section", h.Section)
		p.POST("/refresh", h.Refresh)

		p.GET("/records/:kind/:id/edit", h.Edit)
		p.GET("/records/:kind/:id/delete", h.ConfirmDelete)
		p.POST("/records/:kind/:id/delete", h.Delete)
		p.POST("/save", h.Save)
		p.POST("/close", h.Close)

		p.GET("/audit", h.RequireAction(auth.ActionAudit, "audit"), h.Audit)
	}

	return r
}
