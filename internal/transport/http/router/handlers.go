// file: internal/transport/http/router/handlers.go
package router

import (
	"GestionBC/internal/core/domain"
	"GestionBC/internal/core/port"
	"GestionBC/internal/service"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// --- Catalog ---

func zonesHandler(s *service.CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		zones, err := s.Zones(c.Request.Context())
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": zones})
	}
}

func sitesHandler(s *service.CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		sites, err := s.Sites(c.Request.Context())
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": sites})
	}
}

func famillesHandler(s *service.CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		familles, err := s.Familles(c.Request.Context())
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": familles})
	}
}

func createFamilleHandler(s *service.CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req domain.FamilleRequest
		if !bindJSON(c, &req) {
			return
		}
		f, err := s.CreateFamille(c.Request.Context(), &req)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"data": f})
	}
}

// servicesHandler lists the catalog, optionally restricted by ?famille_id=.
func servicesHandler(s *service.CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var familleID *int64
		if raw := c.Query("famille_id"); raw != "" {
			id, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				_ = c.Error(bindError(err))
				return
			}
			familleID = &id
		}
		services, err := s.Services(c.Request.Context(), familleID)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": services})
	}
}

func backOfficesHandler(s *service.CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		emails, err := s.BackOfficeEmails(c.Request.Context())
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": emails})
	}
}

func userIDByEmailHandler(s *service.CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := s.UserIDByEmail(c.Request.Context(), c.Param("email"))
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": id})
	}
}

func servicesByFamilleHandler(s *service.CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := int64Param(c, "id")
		if !ok {
			return
		}
		services, err := s.Services(c.Request.Context(), &id)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": services})
	}
}

func createServiceHandler(s *service.CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req domain.ServiceRequest
		if !bindJSON(c, &req) {
			return
		}
		svc, err := s.CreateService(c.Request.Context(), &req)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"data": svc})
	}
}

// --- Bons de commande ---

// listBcHandler lists every BC, or those of ?email= when given.
func listBcHandler(s *service.BonDeCommandeService) gin.HandlerFunc {
	return func(c *gin.Context) {
		bcs, err := s.List(c.Request.Context(), c.Query("email"))
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": bcs})
	}
}

func createBcHandler(s *service.BonDeCommandeService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req domain.BonDeCommandeRequest
		if !bindJSON(c, &req) {
			return
		}
		bc, err := s.Create(c.Request.Context(), &req)
		if err != nil {
			_ = c.Error(err)
			return
		}
		slog.Info("bon de commande created", "num_bc", bc.NumBc, "lines", len(bc.Prestations))
		c.JSON(http.StatusCreated, gin.H{"data": bc})
	}
}

func getBcHandler(s *service.BonDeCommandeService) gin.HandlerFunc {
	return func(c *gin.Context) {
		bc, err := s.Get(c.Request.Context(), c.Param("numBc"))
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": bc})
	}
}

func updateBcHandler(s *service.BonDeCommandeService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req domain.BonDeCommandeRequest
		if !bindJSON(c, &req) {
			return
		}
		bc, err := s.Update(c.Request.Context(), c.Param("numBc"), &req)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": bc})
	}
}

func deleteBcHandler(s *service.BonDeCommandeService) gin.HandlerFunc {
	return func(c *gin.Context) {
		numBc := c.Param("numBc")
		if err := s.Delete(c.Request.Context(), numBc); err != nil {
			_ = c.Error(err)
			return
		}
		slog.Info("bon de commande deleted", "num_bc", numBc)
		c.Status(http.StatusNoContent)
	}
}

// bcPrestationsHandler serves both /prestations and /bons-de-commande/:numBc/prestations.
func bcPrestationsHandler(s *service.BonDeCommandeService) gin.HandlerFunc {
	return func(c *gin.Context) {
		lines, err := s.Prestations(c.Request.Context(), c.Param("numBc"))
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": lines})
	}
}

func bcServicesHandler(s *service.BonDeCommandeService) gin.HandlerFunc {
	return func(c *gin.Context) {
		services, err := s.Services(c.Request.Context(), c.Param("numBc"))
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": services})
	}
}

// --- Reports ---

func bcSummaryHandler(s *service.BonDeCommandeService) gin.HandlerFunc {
	return func(c *gin.Context) {
		rows, err := s.Summaries(c.Request.Context(), c.Query("email"))
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": rows})
	}
}

func bcDetailHandler(s *service.BonDeCommandeService) gin.HandlerFunc {
	return func(c *gin.Context) {
		rows, err := s.Details(c.Request.Context(), c.Query("email"))
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": rows})
	}
}

func tableauDeBordHandler(s *service.BonDeCommandeService) gin.HandlerFunc {
	return func(c *gin.Context) {
		rows, err := s.TableauDeBord(c.Request.Context(), c.Query("email"))
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": rows})
	}
}

// --- Suivi de prestation ---

// listSuiviHandler filters by ?coordinator= or ?back_office= e-mail.
func listSuiviHandler(s *service.SuiviService) gin.HandlerFunc {
	return func(c *gin.Context) {
		scope := port.Scope{BackOfficeEmail: c.Query("back_office"), CoordinatorEmail: c.Query("coordinator")}
		rows, err := s.List(c.Request.Context(), scope)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": rows})
	}
}

func getSuiviHandler(s *service.SuiviService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := int64Param(c, "id")
		if !ok {
			return
		}
		row, err := s.Get(c.Request.Context(), id)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": row})
	}
}

func createSuiviHandler(s *service.SuiviService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req domain.SuiviRequest
		if !bindJSON(c, &req) {
			return
		}
		row, err := s.Create(c.Request.Context(), &req)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"data": row})
	}
}

// updateSuiviHandler takes a bare field map as body.
func updateSuiviHandler(s *service.SuiviService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := int64Param(c, "id")
		if !ok {
			return
		}
		var fields map[string]any
		if !bindJSON(c, &fields) {
			return
		}
		row, err := s.Update(c.Request.Context(), id, fields)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": row})
	}
}

func bulkSuiviHandler(s *service.SuiviService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var items []domain.SuiviBulkItem
		if !bindJSON(c, &items) {
			return
		}
		if err := s.BulkUpdate(c.Request.Context(), items); err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"updated": len(items)})
	}
}

// --- Ordres de travail ---

func listOtsHandler(s *service.OtService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ots, err := s.List(c.Request.Context(), c.Query("email"))
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": ots})
	}
}

func createOtHandler(s *service.OtService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req domain.OtRequest
		if !bindJSON(c, &req) {
			return
		}
		ot, err := s.Create(c.Request.Context(), &req)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"data": ot})
	}
}

func getOtHandler(s *service.OtService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ot, err := s.Get(c.Request.Context(), c.Param("numOt"))
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": ot})
	}
}

func updateOtHandler(s *service.OtService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req domain.OtRequest
		if !bindJSON(c, &req) {
			return
		}
		ot, err := s.Update(c.Request.Context(), c.Param("numOt"), &req)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": ot})
	}
}

func bulkOtsHandler(s *service.OtService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var items []domain.OtBulkItem
		if !bindJSON(c, &items) {
			return
		}
		if err := s.BulkUpdate(c.Request.Context(), items); err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"updated": len(items)})
	}
}

func linkOtsHandler(s *service.OtService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req domain.LinkOtsRequest
		if !bindJSON(c, &req) {
			return
		}
		n, err := s.Link(c.Request.Context(), &req)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"linked": n})
	}
}

func otMetricsHandler(s *service.OtService) gin.HandlerFunc {
	return func(c *gin.Context) {
		m, err := s.Metrics(c.Request.Context(), c.Query("email"))
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": m})
	}
}

// --- Notifications & dashboard ---

func notificationsHandler(s *service.NotificationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := s.List(c.Request.Context(), c.Query("email"), boolQuery(c, "unread"))
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": list})
	}
}

func markReadHandler(s *service.NotificationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := int64Param(c, "id")
		if !ok {
			return
		}
		if err := s.MarkRead(c.Request.Context(), id); err != nil {
			_ = c.Error(err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func dashboardMetricsHandler(s *service.DashboardService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var q domain.MetricsQuery
		if err := c.ShouldBindQuery(&q); err != nil {
			_ = c.Error(bindError(err))
			return
		}
		metrics, err := s.Metrics(c.Request.Context(), &q)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": metrics})
	}
}
