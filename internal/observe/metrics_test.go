// file: internal/observe/metrics_test.go

package observe

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// useRegistry registers the collectors on a fresh default registry for the test.
func useRegistry(t *testing.T) *prometheus.Registry {
	t.Helper()
	reg := prometheus.NewRegistry()
	prevReg, prevGat := prometheus.DefaultRegisterer, prometheus.DefaultGatherer
	prometheus.DefaultRegisterer, prometheus.DefaultGatherer = reg, reg
	t.Cleanup(func() {
		prometheus.DefaultRegisterer, prometheus.DefaultGatherer = prevReg, prevGat
	})
	Register()
	return reg
}

func read(t *testing.T, m prometheus.Metric) *dto.Metric {
	t.Helper()
	out := &dto.Metric{}
	require.NoError(t, m.Write(out))
	return out
}

func samples(t *testing.T, path, method, code string) uint64 {
	t.Helper()
	h := httpRequestDuration.WithLabelValues(path, method, code).(prometheus.Histogram)
	return read(t, h).GetHistogram().GetSampleCount()
}

func TestPrometheusMiddleware(t *testing.T) {
	useRegistry(t)
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(PrometheusMiddleware())
	r.GET("/sites/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/boom", func(c *gin.Context) { c.Status(http.StatusBadGateway) })

	testCases := []struct {
		target     string
		label      string
		code       string
		wantFailed float64
	}{
		{"/sites/42", "/sites/:id", "200", 0},
		{"/sites/43", "/sites/:id", "200", 0},
		{"/boom", "/boom", "502", 1},
		{"/nowhere", "unmatched", "404", 0},
	}
	for _, tc := range testCases {
		t.Run(tc.target, func(t *testing.T) {
			before := samples(t, tc.label, http.MethodGet, tc.code)
			total := read(t, TotalReq).GetCounter().GetValue()
			failed := read(t, FailReq).GetCounter().GetValue()

			r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, tc.target, nil))

			assert.Equal(t, before+1, samples(t, tc.label, http.MethodGet, tc.code), "labelled by route template")
			assert.Equal(t, total+1, read(t, TotalReq).GetCounter().GetValue())
			assert.Equal(t, failed+tc.wantFailed, read(t, FailReq).GetCounter().GetValue())
		})
	}
}

func TestViewLoadsAndEndpoint(t *testing.T) {
	reg := useRegistry(t)

	ok := ViewLoads.WithLabelValues("bc-summary", "ok")
	before := read(t, ok).GetCounter().GetValue()
	ok.Inc()
	ViewLoads.WithLabelValues("bc-summary", "stale").Inc()
	assert.Equal(t, before+1, read(t, ok).GetCounter().GetValue())

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, mf := range families {
		names = append(names, mf.GetName())
	}
	assert.Contains(t, names, "gestionbc_view_loads_total")
	assert.Contains(t, names, "gestionbc_requests_total")

	w := httptest.NewRecorder()
	Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `gestionbc_view_loads_total{outcome="stale",screen="bc-summary"}`)
}
