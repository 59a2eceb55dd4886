package adapthttp

import (
	"net/http"

	"weightlog/internal/app"
	"weightlog/internal/metrics"

	"github.com/rs/zerolog"
)

// Server is the driving HTTP adapter that routes requests to application
// services.
type Server struct {
	tracker *app.Tracker
	charts  *app.ChartsService
	metrics *metrics.Metrics
	log     zerolog.Logger
	webDir  string
}

// New creates a Server wired to the given application services. m may be nil.
func New(t *app.Tracker, cs *app.ChartsService, m *metrics.Metrics, log zerolog.Logger, webDir string) *Server {
	return &Server{tracker: t, charts: cs, metrics: m, log: log, webDir: webDir}
}

// Handler returns the root http.Handler for the application.
func (s *Server) Handler() http.Handler {
	api := http.NewServeMux()
	api.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})

	api.HandleFunc("/state", s.handleState)
	api.HandleFunc("/summary", s.handleSummary)

	api.HandleFunc("/weights", s.handleWeights)
	api.HandleFunc("/weights/{id}", s.handleWeight)

	api.HandleFunc("/profile", s.handleProfile)

	api.HandleFunc("/charts", s.handleCharts)

	root := http.NewServeMux()
	root.Handle("/api/", http.StripPrefix("/api", api))
	if s.metrics != nil {
		root.Handle("/metrics", s.metrics.Handler())
	}
	root.Handle("/", spaFromDisk(s.webDir))

	return s.loggingMiddleware(withNoCache(root))
}
