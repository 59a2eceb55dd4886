package adapthttp

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"weightlog/internal/domain"
	"weightlog/internal/metrics"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
)

func TestLoggingMiddleware(t *testing.T) {
	var buf bytes.Buffer
	m := metrics.New()
	s := &Server{log: zerolog.New(&buf), metrics: m}

	// Create a dummy handler
	nextHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("OK"))
	})

	handler := s.loggingMiddleware(nextHandler)

	req := httptest.NewRequest("GET", "/test-path", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusTeapot {
		t.Errorf("Expected status %d, got %d", http.StatusTeapot, w.Code)
	}

	logOutput := buf.String()
	if !strings.Contains(logOutput, `"method":"GET"`) || !strings.Contains(logOutput, `"path":"/test-path"`) || !strings.Contains(logOutput, `"status":418`) {
		t.Errorf("Log output missing expected fields. Got: %s", logOutput)
	}
	if got := testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "418")); got != 1 {
		t.Errorf("expected one counted request, got %v", got)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: weight must be > 0", domain.ErrInvalidInput), http.StatusBadRequest},
		{&domain.StoreError{Op: "delete", Table: domain.TableWeightEntries, Err: domain.ErrNotFound}, http.StatusNotFound},
		{&domain.StoreError{Op: "insert", Table: domain.TableWeightEntries, Err: errors.New("timeout")}, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d; want %d", tt.err, got, tt.want)
		}
	}
}
