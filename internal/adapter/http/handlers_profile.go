package adapthttp

import (
	"net/http"

	"weightlog/internal/app"
	"weightlog/internal/domain"
)

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, map[string]any{"profile": s.reload(r).Profile})

	case http.MethodPut:
		var body domain.UserProfile
		if err := parseJSON(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		if err := s.tracker.SaveProfile(r.Context(), body); err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"profile": s.tracker.Snapshot().Profile})

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	p := s.reload(r)
	writeJSON(w, http.StatusOK, map[string]any{
		"state":   p.State,
		"profile": p.Profile,
		"history": p.History,
		"summary": domain.Summarize(p.Profile, p.History),
	})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	p := s.reload(r)
	writeJSON(w, http.StatusOK, domain.Summarize(p.Profile, p.History))
}

// reload re-reads the store so reads see writes made by other processes
// sharing it.
func (s *Server) reload(r *http.Request) app.Projection {
	return s.tracker.Load(r.Context())
}
