// file: internal/transport/http/router/views.go
package router

import (
	"GestionBC/internal/core/port"
	"GestionBC/internal/service/view"
	"GestionBC/internal/tableview"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	filterPrefix = "filter."
	maxPageSize  = 1000
)

// scopeFrom reads ?scope=<email>; ?scope_by=coordinator targets the coordinator
// instead of the back-office.
func scopeFrom(c *gin.Context) port.Scope {
	email := strings.TrimSpace(c.Query("scope"))
	if email == "" {
		return port.Scope{}
	}
	if c.Query("scope_by") == "coordinator" {
		return port.Scope{CoordinatorEmail: email}
	}
	return port.Scope{BackOfficeEmail: email}
}

// rowsQuery parses search, filter.<key> (repeatable), sort/dir, page/size, scope and format.
func rowsQuery(c *gin.Context) (view.Query, error) {
	q := view.Query{
		Search: c.Query("search"),
		Scope:  scopeFrom(c),
		Format: c.Query("format") == "1" || boolQuery(c, "format"),
	}
	var err error
	if q.Page, err = intQuery(c, "page"); err != nil {
		return q, err
	}
	if q.Size, err = intQuery(c, "size"); err != nil {
		return q, err
	}
	q.Size = min(q.Size, maxPageSize)
	if key := strings.TrimSpace(c.Query("sort")); key != "" {
		q.Sort = &tableview.Sort{Key: key, Direction: tableview.ParseDirection(c.Query("dir"))}
	}
	for name, values := range c.Request.URL.Query() {
		key, ok := strings.CutPrefix(name, filterPrefix)
		if !ok || key == "" {
			continue
		}
		if q.Filters == nil {
			q.Filters = make(tableview.Filters)
		}
		q.Filters[key] = tableview.NewValueSet(values...)
	}
	return q, nil
}

func screensHandler(s *view.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"data": s.Screens()})
	}
}

func columnsHandler(s *view.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		cols, err := s.Columns(c.Param("screen"))
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": cols})
	}
}

func rowsHandler(s *view.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		q, err := rowsQuery(c)
		if err != nil {
			_ = c.Error(err)
			return
		}
		page, err := s.Rows(c.Request.Context(), c.Param("screen"), q)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, page)
	}
}

// valuesHandler lists filter candidates; ?q= only narrows what is shown.
func valuesHandler(s *view.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		values, err := s.Values(c.Request.Context(), c.Param("screen"), c.Param("key"), c.Query("q"), scopeFrom(c))
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": values})
	}
}

func refreshHandler(s *view.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, err := s.Refresh(c.Request.Context(), c.Param("screen"), scopeFrom(c))
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": res})
	}
}
