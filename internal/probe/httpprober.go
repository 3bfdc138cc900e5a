package probe

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"
)

type HTTPProber struct {
	Client *http.Client
}

func NewHTTPProber() *HTTPProber {
	return &HTTPProber{
		// Per-probe deadlines come from the context; the client itself
		// must not impose a second, competing timeout.
		Client: &http.Client{},
	}
}

// Probe issues one GET bounded by timeout and classifies what came back.
// The response body is ignored; only the status line matters.
func (p *HTTPProber) Probe(ctx context.Context, target string, timeout time.Duration) Result {
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	req, err := http.NewRequestWithContext(cctx, http.MethodGet, target, nil)
	if err != nil {
		return Result{At: start, Kind: KindError, Reason: err.Error()}
	}

	resp, err := p.Client.Do(req)
	latency := time.Since(start).Seconds() * 1000
	if err != nil {
		return Result{At: start, Kind: classifyErr(err), LatencyMS: latency, Reason: err.Error()}
	}
	defer resp.Body.Close()

	kind := KindFailure
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		kind = KindSuccess
	}
	return Result{
		At:         start,
		Kind:       kind,
		StatusCode: resp.StatusCode,
		LatencyMS:  latency,
		Reason:     resp.Status,
	}
}

func classifyErr(err error) Kind {
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return KindTimeout
	}
	return KindError
}
