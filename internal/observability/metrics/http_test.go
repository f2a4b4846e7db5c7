package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGinMiddlewareCountsRequests(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reg := prometheus.NewRegistry()
	m := NewHTTPMetricsWithRegistry(reg)

	r := gin.New()
	r.Use(GinMiddleware(m))
	r.GET("/api/branches/:branchId", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/branches/bogota", nil))
	}

	families, err := reg.Gather()
	require.NoError(t, err)

	var total float64
	for _, fam := range families {
		if fam.GetName() != "branchops_http_requests_total" {
			continue
		}
		for _, metric := range fam.GetMetric() {
			total += metric.GetCounter().GetValue()
		}
	}
	assert.Equal(t, float64(2), total)
}
