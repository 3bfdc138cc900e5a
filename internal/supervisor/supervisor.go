package supervisor

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"healthwatch/internal/config"
	"healthwatch/internal/history"
	"healthwatch/internal/notify"
	"healthwatch/internal/probe"
)

// Verdict is the supervisor's current belief about service health.
type Verdict string

const (
	VerdictStarting  Verdict = "starting"
	VerdictHealthy   Verdict = "healthy"
	VerdictUnhealthy Verdict = "unhealthy"
)

// State is the supervisor's accounting between probes. It is owned by the
// polling loop; readers get copies via Snapshot.
type State struct {
	Verdict       Verdict       `json:"verdict"`
	FailureStreak int           `json:"failure_streak"`
	StartedAt     time.Time     `json:"started_at"`
	LastProbe     *probe.Result `json:"last_probe,omitempty"`

	// GraceDone latches once the start period stops absorbing failures,
	// either on the first success or when the window elapses.
	GraceDone bool `json:"-"`
}

// Evaluate folds one probe result into the state. Pure: the returned state
// is derived only from its inputs.
//
// During the start period failures are recorded but cannot flip the verdict
// away from starting. When the grace window ends without a success, the
// streak restarts from zero so startup noise never counts toward the
// threshold.
func Evaluate(st State, r probe.Result, retries int, startPeriod time.Duration) State {
	rr := r
	st.LastProbe = &rr

	if r.Kind == probe.KindSuccess {
		st.FailureStreak = 0
		st.Verdict = VerdictHealthy
		st.GraceDone = true
		return st
	}

	if !st.GraceDone {
		if r.At.Sub(st.StartedAt) < startPeriod {
			st.FailureStreak++
			return st
		}
		st.GraceDone = true
		st.FailureStreak = 0
	}

	st.FailureStreak++
	if st.FailureStreak >= retries {
		st.Verdict = VerdictUnhealthy
	}
	return st
}

type Supervisor struct {
	logger   *zap.Logger
	prober   probe.Prober
	store    history.Store
	notifier notify.Notifier
	cfg      config.Config

	mu    sync.RWMutex
	state State
}

// New wires a supervisor. store and notifier may be nil.
func New(logger *zap.Logger, prober probe.Prober, store history.Store, notifier notify.Notifier, cfg config.Config) *Supervisor {
	return &Supervisor{
		logger:   logger,
		prober:   prober,
		store:    store,
		notifier: notifier,
		cfg:      cfg,
		state: State{
			Verdict:   VerdictStarting,
			StartedAt: time.Now().UTC(),
		},
	}
}

// Run starts the polling loop: an immediate probe, then one per interval.
// One probe is in flight at a time; the gap to the next probe is the
// interval minus probe elapsed time, clamped at zero. Blocks until ctx is
// cancelled.
func (s *Supervisor) Run(ctx context.Context) {
	s.mu.Lock()
	s.state.StartedAt = time.Now().UTC()
	s.mu.Unlock()

	for {
		start := time.Now()
		res, ok := s.probeOnce(ctx)
		if !ok {
			s.logger.Info("supervisor_stopped")
			return
		}
		s.apply(ctx, res)

		sleep := s.cfg.Interval - time.Since(start)
		if sleep < 0 {
			sleep = 0
		}
		t := time.NewTimer(sleep)
		select {
		case <-ctx.Done():
			t.Stop()
			s.logger.Info("supervisor_stopped")
			return
		case <-t.C:
		}
	}
}

// probeOnce runs a single probe without holding up cancellation. On cancel
// the in-flight probe is abandoned and its result discarded.
func (s *Supervisor) probeOnce(ctx context.Context) (probe.Result, bool) {
	ch := make(chan probe.Result, 1)
	go func() {
		ch <- s.prober.Probe(ctx, s.cfg.TargetURL, s.cfg.Timeout)
	}()
	select {
	case <-ctx.Done():
		return probe.Result{}, false
	case r := <-ch:
		return r, true
	}
}

func (s *Supervisor) apply(ctx context.Context, r probe.Result) {
	s.mu.Lock()
	prev := s.state.Verdict
	s.state = Evaluate(s.state, r, s.cfg.Retries, s.cfg.StartPeriod)
	cur := s.state.Verdict
	streak := s.state.FailureStreak
	s.mu.Unlock()

	s.logger.Info("probe_checked",
		zap.String("url", s.cfg.TargetURL),
		zap.String("kind", string(r.Kind)),
		zap.Int("status", r.StatusCode),
		zap.Float64("latency_ms", r.LatencyMS),
		zap.Int("failure_streak", streak),
		zap.String("verdict", string(cur)),
	)

	if r.Kind == probe.KindError {
		s.logger.Info("dns_diagnosis",
			zap.String("url", s.cfg.TargetURL),
			zap.String("class", probe.DiagnoseDNS(s.cfg.TargetURL)),
		)
	}

	if s.store != nil {
		if err := s.store.Append(ctx, r); err != nil {
			s.logger.Warn("history_append_error", zap.Error(err))
		}
	}

	if cur != prev {
		s.logger.Info("verdict_changed",
			zap.String("from", string(prev)),
			zap.String("to", string(cur)),
		)
		s.announce(ctx, prev, cur, r)
	}
}

// announce sends best-effort notifications on the transitions an operator
// cares about: going unhealthy, and recovering from it.
func (s *Supervisor) announce(ctx context.Context, prev, cur Verdict, r probe.Result) {
	if s.notifier == nil {
		return
	}
	var title string
	switch {
	case cur == VerdictUnhealthy:
		title = "🔴 Service UNHEALTHY"
	case prev == VerdictUnhealthy && cur == VerdictHealthy:
		title = "🟢 Service RECOVERED"
	default:
		return
	}
	text := "URL: " + s.cfg.TargetURL + "\nLast probe: " + string(r.Kind) + " (" + r.Reason + ")"
	if err := s.notifier.Send(ctx, title, text); err != nil {
		s.logger.Warn("notify_error", zap.Error(err))
	}
}

// CurrentVerdict is safe to call concurrently with the loop.
func (s *Supervisor) CurrentVerdict() Verdict {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Verdict
}

// Snapshot returns a copy of the state for the reporting path.
func (s *Supervisor) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := s.state
	if s.state.LastProbe != nil {
		lp := *s.state.LastProbe
		st.LastProbe = &lp
	}
	return st
}
