package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMutationCounters(t *testing.T) {
	m := New()
	m.Mutation("add_weight", nil)
	m.Mutation("add_weight", nil)
	m.Mutation("add_weight", errors.New("boom"))

	if got := testutil.ToFloat64(m.Mutations.WithLabelValues("add_weight", "ok")); got != 2 {
		t.Errorf("ok count = %v; want 2", got)
	}
	if got := testutil.ToFloat64(m.Mutations.WithLabelValues("add_weight", "error")); got != 1 {
		t.Errorf("error count = %v; want 1", got)
	}
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.SetHistorySize(5)
	m.ObserveStore("select_many", "weight_entries", time.Now())
	m.ObserveHTTP("GET", 200, 10*time.Millisecond)

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(w.Body)

	for _, want := range []string{"weightlog_history_entries 5", "weightlog_store_duration_seconds", "weightlog_http_requests_total"} {
		if !strings.Contains(string(body), want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	m.Mutation("x", nil)
	m.LoadFailed()
	m.SetHistorySize(1)
	m.ObserveStore("x", "y", time.Now())
	m.ObserveHTTP("GET", 200, time.Second)

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))
	if w.Code != 404 {
		t.Errorf("expected 404 from nil metrics handler, got %d", w.Code)
	}
}
