package history

import (
	"context"

	"healthwatch/internal/probe"
)

// Store retains recent probe results for the reporting path. Append errors
// are logged by the caller and never affect the verdict.
type Store interface {
	Append(ctx context.Context, r probe.Result) error
	// Recent returns up to n results, newest first.
	Recent(ctx context.Context, n int) ([]probe.Result, error)
}
