// file: internal/transport/http/router/router.go
package router

import (
	"GestionBC/internal/core/port"
	"GestionBC/internal/observe"
	"GestionBC/internal/service"
	"GestionBC/internal/service/view"
	"GestionBC/internal/transport/http/middleware"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// Dependencies is everything the HTTP layer serves.
type Dependencies struct {
	Catalog        *service.CatalogService
	BonsDeCommande *service.BonDeCommandeService
	Suivi          *service.SuiviService
	Ots            *service.OtService
	Notifications  *service.NotificationService
	Dashboard      *service.DashboardService
	Views          *view.Service
	// Limiter is optional; nil disables rate limiting.
	Limiter *middleware.RateLimiter
	// DB is pinged by the health endpoint when set.
	DB *sql.DB
}

// New builds the gin engine with every /api/v1 route.
func New(deps Dependencies) http.Handler {
	router := gin.Default()

	router.Use(middleware.RequestID())
	router.Use(observe.PrometheusMiddleware())
	router.Use(gzip.Gzip(gzip.DefaultCompression))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/healthz", healthHandler(deps.DB))
	router.GET("/metrics", gin.WrapH(observe.Handler()))

	v1 := router.Group("/api/v1")
	if deps.Limiter != nil {
		v1.Use(deps.Limiter.Chain()...)
	}
	v1.Use(middleware.ErrorHandlingMiddleware())
	{
		catalog := deps.Catalog
		v1.GET("/zones", zonesHandler(catalog))
		v1.GET("/sites", sitesHandler(catalog))
		v1.GET("/familles", famillesHandler(catalog))
		v1.POST("/familles", createFamilleHandler(catalog))
		v1.GET("/familles/:id/services", servicesByFamilleHandler(catalog))
		v1.GET("/services", servicesHandler(catalog))
		v1.POST("/services", createServiceHandler(catalog))
		v1.GET("/users/backoffices", backOfficesHandler(catalog))
		v1.GET("/users/id-by-email/:email", userIDByEmailHandler(catalog))

		bcGroup := v1.Group("/bons-de-commande")
		{
			bcs := deps.BonsDeCommande
			bcGroup.GET("", listBcHandler(bcs))
			bcGroup.POST("", createBcHandler(bcs))
			bcGroup.GET("/:numBc", getBcHandler(bcs))
			bcGroup.PUT("/:numBc", updateBcHandler(bcs))
			bcGroup.DELETE("/:numBc", deleteBcHandler(bcs))
			bcGroup.GET("/:numBc/prestations", bcPrestationsHandler(bcs))
			bcGroup.GET("/:numBc/services", bcServicesHandler(bcs))
		}
		v1.GET("/prestations", bcPrestationsHandler(deps.BonsDeCommande))

		reports := v1.Group("/reports")
		{
			reports.GET("/bc-summary", bcSummaryHandler(deps.BonsDeCommande))
			reports.GET("/bc-detail", bcDetailHandler(deps.BonsDeCommande))
			reports.GET("/tableau-de-bord", tableauDeBordHandler(deps.BonsDeCommande))
		}

		suiviGroup := v1.Group("/suivi")
		{
			suiviGroup.GET("", listSuiviHandler(deps.Suivi))
			suiviGroup.POST("", createSuiviHandler(deps.Suivi))
			suiviGroup.POST("/bulk", bulkSuiviHandler(deps.Suivi))
			suiviGroup.GET("/:id", getSuiviHandler(deps.Suivi))
			suiviGroup.PATCH("/:id", updateSuiviHandler(deps.Suivi))
		}

		otGroup := v1.Group("/ots")
		{
			otGroup.GET("", listOtsHandler(deps.Ots))
			otGroup.POST("", createOtHandler(deps.Ots))
			otGroup.GET("/metrics", otMetricsHandler(deps.Ots))
			otGroup.POST("/bulk", bulkOtsHandler(deps.Ots))
			otGroup.POST("/link", linkOtsHandler(deps.Ots))
			otGroup.GET("/:numOt", getOtHandler(deps.Ots))
			otGroup.PUT("/:numOt", updateOtHandler(deps.Ots))
		}

		v1.GET("/notifications", notificationsHandler(deps.Notifications))
		v1.POST("/notifications/:id/read", markReadHandler(deps.Notifications))
		v1.GET("/dashboard/metrics", dashboardMetricsHandler(deps.Dashboard))

		views := v1.Group("/views")
		{
			views.GET("", screensHandler(deps.Views))
			views.GET("/:screen/columns", columnsHandler(deps.Views))
			views.GET("/:screen/columns/:key/values", valuesHandler(deps.Views))
			views.GET("/:screen/rows", rowsHandler(deps.Views))
			views.POST("/:screen/refresh", refreshHandler(deps.Views))
		}
	}

	return router
}

// healthHandler reports 503 when the database does not answer.
func healthHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if db != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := db.PingContext(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

// =============================================================================
//  Helpers
// =============================================================================

// bindError keeps validator errors as they are and marks every other binding
// failure as invalid input.
func bindError(err error) error {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		return err
	}
	return fmt.Errorf("%w: %w", port.ErrInvalidInput, err)
}

func bindJSON(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		_ = c.Error(bindError(err))
		return false
	}
	return true
}

func int64Param(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		_ = c.Error(fmt.Errorf("%w: %s must be a positive integer", port.ErrInvalidInput, name))
		return 0, false
	}
	return id, true
}

// intQuery reads an optional non-negative integer query parameter.
func intQuery(c *gin.Context, name string) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %s must be a non-negative integer", port.ErrInvalidInput, name)
	}
	return n, nil
}

func boolQuery(c *gin.Context, name string) bool {
	b, _ := strconv.ParseBool(c.Query(name))
	return b
}
