package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"healthwatch/internal/history"
	"healthwatch/internal/supervisor"
)

// StatusSource is the read side of the supervisor.
type StatusSource interface {
	CurrentVerdict() supervisor.Verdict
	Snapshot() supervisor.State
}

// Server exposes the current verdict to the orchestrator boundary.
type Server struct {
	Logger  *zap.Logger
	Source  StatusSource
	History history.Store
	Recent  int // results included in /status; 0 means a sensible default
}

func NewServer(l *zap.Logger, src StatusSource, st history.Store, recent int) *Server {
	if recent <= 0 {
		recent = 10
	}
	return &Server{Logger: l, Source: src, History: st, Recent: recent}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.AllowAll().Handler)

	r.Get("/healthz", s.handleHealthz)
	r.Get("/status", s.handleStatus)

	return r
}

// handleHealthz answers the way an orchestrator expects: 200 while the
// verdict is starting or healthy, 503 once it is unhealthy.
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	v := s.Source.CurrentVerdict()
	if v == supervisor.VerdictUnhealthy {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("unhealthy"))
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

type statusPayload struct {
	Verdict       supervisor.Verdict `json:"verdict"`
	FailureStreak int                `json:"failure_streak"`
	StartedAt     time.Time          `json:"started_at"`
	UptimeSeconds float64            `json:"uptime_s"`
	LastProbe     any                `json:"last_probe,omitempty"`
	Recent        any                `json:"recent,omitempty"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	st := s.Source.Snapshot()

	p := statusPayload{
		Verdict:       st.Verdict,
		FailureStreak: st.FailureStreak,
		StartedAt:     st.StartedAt,
		UptimeSeconds: time.Since(st.StartedAt).Seconds(),
	}
	if st.LastProbe != nil {
		p.LastProbe = st.LastProbe
	}
	if s.History != nil {
		recent, err := s.History.Recent(r.Context(), s.Recent)
		if err != nil {
			s.Logger.Warn("status_history_error", zap.Error(err))
		} else {
			p.Recent = recent
		}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(p)
}
