package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mauv0809/courtside/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServiceCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	s := metrics.NewService(reg)

	s.IncEnrollments("CONFIRMED")
	s.IncEnrollments("CONFIRMED")
	s.IncEnrollments("WAITING_LIST")
	s.IncGamesScheduled(3)
	s.IncGamesSkipped(1)

	assert.Equal(t, 2.0, testutil.ToFloat64(s.Enrollments.WithLabelValues("CONFIRMED")))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.Enrollments.WithLabelValues("WAITING_LIST")))
	assert.Equal(t, 3.0, testutil.ToFloat64(s.GamesScheduled))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.GamesSkipped))
}

func TestMetricsHandlerExposesRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	s := metrics.NewService(reg)
	s.IncPartnerMatches()

	rec := httptest.NewRecorder()
	metrics.NewMetricsHandler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "courtside_partner_matches_total 1")
}
