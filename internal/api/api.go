package api

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/pocompose/backend-go/internal/api/handlers"
	"github.com/pocompose/backend-go/internal/api/middleware"
	"github.com/pocompose/backend-go/internal/config"
	"github.com/pocompose/backend-go/internal/order"
)

func NewRouter(registry *order.Registry, cfg *config.Config) *gin.Engine {
	router := gin.New()

	// Add middleware
	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())

	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	corsConfig := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.Server.AllowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(cfg.Server.AllowedOrigins)
		if allowAll {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalizedOrigins) > 0 {
			corsConfig.AllowOrigins = normalizedOrigins
		}
	}
	router.Use(cors.New(corsConfig))

	apiGroup := router.Group("/api/v1")

	draftHandler := handlers.NewDraftHandler(registry, cfg.Order)
	importHandler := handlers.NewImportHandler(registry, cfg.ImportDefaults(), cfg.Import.MaxUploadBytes)

	draftGroup := apiGroup.Group("/drafts")
	{
		draftGroup.POST("", draftHandler.CreateDraft)
		draftGroup.GET("/:id", draftHandler.GetDraft)
		draftGroup.DELETE("/:id", draftHandler.DeleteDraft)

		draftGroup.POST("/:id/lines", draftHandler.AddLine)
		draftGroup.PATCH("/:id/lines/:lineId", draftHandler.UpdateLine)
		draftGroup.POST("/:id/lines/batch", draftHandler.BatchUpdate)
		draftGroup.DELETE("/:id/lines", draftHandler.RemoveLines)
		draftGroup.GET("/:id/lines/export", draftHandler.ExportLines)

		draftGroup.PUT("/:id/costs", draftHandler.SetCosts)
		draftGroup.GET("/:id/totals", draftHandler.GetTotals)

		draftGroup.POST("/:id/import", importHandler.Preview)
		draftGroup.POST("/:id/import/confirm", importHandler.Confirm)
		draftGroup.POST("/:id/import/cancel", importHandler.Cancel)
	}

	apiGroup.GET("/import/template", importHandler.Template)

	return router
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		parts := strings.Split(origin, ",")
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
