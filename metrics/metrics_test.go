// SPDX-License-Identifier: MIT

package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/parmatrix/metrics"
)

func TestMetrics_Record(t *testing.T) {
	t.Parallel()
	m := metrics.New()
	m.ObserveTask("pool", "ADD", time.Millisecond, false)
	m.ObserveTask("pool", "ADD", time.Millisecond, true)
	m.SetWorkers("pool", 4, 1)
	m.WorkerDied()
	m.WorkersEvicted(2)
	m.WorkersEvicted(0)

	require.Equal(t, 2.0, testutil.ToFloat64(m.TasksDispatched.WithLabelValues("pool", "ADD")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.TasksFailed.WithLabelValues("pool", "ADD")))
	require.Equal(t, 4.0, testutil.ToFloat64(m.WorkersAlive.WithLabelValues("pool")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.WorkersBusy.WithLabelValues("pool")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.WorkerDeaths))
	require.Equal(t, 2.0, testutil.ToFloat64(m.WorkerEvictions))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	t.Parallel()
	var m *metrics.Metrics
	m.ObserveTask("pool", "ADD", time.Second, true)
	m.SetWorkers("pool", 1, 1)
	m.WorkerDied()
	m.WorkersEvicted(3)
}

func TestMetrics_IndependentRegistries(t *testing.T) {
	t.Parallel()
	a, b := metrics.New(), metrics.New()
	a.WorkerDied()
	require.Equal(t, 0.0, testutil.ToFloat64(b.WorkerDeaths))
}

func TestMetrics_Handler(t *testing.T) {
	t.Parallel()
	m := metrics.New()
	m.WorkersEvicted(1)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, strings.Contains(rec.Body.String(), "parmatrix_worker_evictions_total 1"))
}
