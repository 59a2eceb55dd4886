package adapthttp

import (
	"net/http"

	"weightlog/internal/app"
	"weightlog/internal/domain"
)

func (s *Server) handleCharts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	rng, err := app.ParseRange(r.URL.Query().Get("range"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	unit := r.URL.Query().Get("unit")
	if unit == "" {
		unit = domain.UnitKg
	}

	s.reload(r)
	points, err := s.charts.Series(r.Context(), rng, unit)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"range": rng,
		"days":  rng.Days(),
		"unit":  unit,
		"items": points,
	})
}
