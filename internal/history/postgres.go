package history

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"healthwatch/internal/probe"
)

var _ Store = (*Postgres)(nil)

// Postgres persists probe results for operators who want an audit trail
// beyond the in-memory window.
type Postgres struct {
	pool *pgxpool.Pool
	log  *zap.Logger
}

func NewPostgres(ctx context.Context, dsn string, log *zap.Logger) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.New: %w", err)
	}
	ctxPing, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctxPing); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	s := &Postgres{pool: pool, log: log}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *Postgres) migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS probe_results (
	id          BIGSERIAL PRIMARY KEY,
	probed_at   TIMESTAMPTZ NOT NULL,
	kind        TEXT NOT NULL,
	status_code INT NOT NULL,
	latency_ms  DOUBLE PRECISION NOT NULL,
	reason      TEXT NOT NULL DEFAULT ''
)`)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

func (s *Postgres) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (s *Postgres) Append(ctx context.Context, r probe.Result) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO probe_results (probed_at, kind, status_code, latency_ms, reason)
		 VALUES ($1, $2, $3, $4, $5)`,
		r.At, string(r.Kind), r.StatusCode, r.LatencyMS, r.Reason,
	)
	if err != nil {
		return fmt.Errorf("insert probe result: %w", err)
	}
	return nil
}

func (s *Postgres) Recent(ctx context.Context, n int) ([]probe.Result, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT probed_at, kind, status_code, latency_ms, reason
		 FROM probe_results ORDER BY probed_at DESC LIMIT $1`, n)
	if err != nil {
		return nil, fmt.Errorf("query probe results: %w", err)
	}
	defer rows.Close()

	out := make([]probe.Result, 0, n)
	for rows.Next() {
		var r probe.Result
		var kind string
		if err := rows.Scan(&r.At, &kind, &r.StatusCode, &r.LatencyMS, &r.Reason); err != nil {
			return nil, fmt.Errorf("scan probe result: %w", err)
		}
		r.Kind = probe.Kind(kind)
		out = append(out, r)
	}
	return out, rows.Err()
}
