package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)

	pr.MethodSelected("18-6")
	pr.FastStarted("16-8")
	assert.Equal(t, 1.0, testutil.ToFloat64(pr.fastingActive))

	pr.FastCompleted("16-8", 16.5)
	assert.Equal(t, 1.0, testutil.ToFloat64(pr.selections.WithLabelValues("18-6")))
	assert.Equal(t, 1.0, testutil.ToFloat64(pr.started.WithLabelValues("16-8")))
	assert.Equal(t, 1.0, testutil.ToFloat64(pr.completed.WithLabelValues("16-8")))
	assert.Equal(t, 0.0, testutil.ToFloat64(pr.fastingActive))

	mfs, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, mfs)
}

func TestNilRecorderIsSafe(t *testing.T) {
	var pr *PrometheusRecorder
	assert.NotPanics(t, func() {
		pr.MethodSelected("x")
		pr.FastStarted("x")
		pr.FastCompleted("x", 1)
	})
}

func TestHTTPHandler(t *testing.T) {
	reg := prom.NewRegistry()
	NewPrometheusRecorder(reg).FastStarted("16-8")

	w := httptest.NewRecorder()
	HTTPHandler(reg).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `fasttrack_fasts_started_total{method="16-8"} 1`)
}

func TestNewPrometheusRecorderRegistersEveryCollector(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.FastStarted("16-8")
	pr.FastCompleted("16-8", 16)

	n, err := testutil.GatherAndCount(reg)
	require.NoError(t, err)
	// started, completed, duration histogram and the active gauge; no selections yet.
	assert.Equal(t, 4, n)

	// A second recorder on the same registry collides with the first.
	assert.Panics(t, func() { NewPrometheusRecorder(reg) })
}
