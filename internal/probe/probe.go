package probe

import (
	"context"
	"time"
)

// Kind classifies the outcome of a single probe.
type Kind string

const (
	KindSuccess Kind = "success" // 2xx within the timeout
	KindFailure Kind = "failure" // response received, status outside 2xx
	KindTimeout Kind = "timeout" // no response within the timeout
	KindError   Kind = "error"   // connection-level fault (refused, DNS, reset)
)

// Failed reports whether the outcome counts against the failure streak.
// Only a success resets the streak; everything else feeds it.
func (k Kind) Failed() bool { return k != KindSuccess }

// Result is the immutable outcome of one probe.
type Result struct {
	At         time.Time `json:"at"`
	Kind       Kind      `json:"kind"`
	StatusCode int       `json:"status_code,omitempty"` // 0 when no response arrived
	LatencyMS  float64   `json:"latency_ms"`
	Reason     string    `json:"reason,omitempty"`
}

// Prober performs a single bounded probe against a target URL.
type Prober interface {
	Probe(ctx context.Context, target string, timeout time.Duration) Result
}
