package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordDrawOutcome(t *testing.T) {
	before := testutil.ToFloat64(drawOutcomes.WithLabelValues("test", "extended", "none"))
	RecordDrawOutcome("test", "extended", "")
	after := testutil.ToFloat64(drawOutcomes.WithLabelValues("test", "extended", "none"))
	assert.Equal(t, before+1, after)
}

func TestInstrumentUsesRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Instrument())
	r.GET("/raffles/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	before := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/raffles/:id", "200"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/raffles/abc", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, before+1, testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/raffles/:id", "200")))
}

func TestHandlerServesRegistry(t *testing.T) {
	RecordEntry(3)
	w := httptest.NewRecorder()
	Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "winwai_ledger_tickets_spent_total")
}
