// Package postgres persists a diagnostic audit trail of gateway requests.
// The trail is optional: the gateway runs fully without a database.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

const qCreateGenerationLog = `
CREATE TABLE IF NOT EXISTS generation_log (
	id          UUID PRIMARY KEY,
	action      TEXT NOT NULL,
	outcome     TEXT NOT NULL,
	error_kind  TEXT NOT NULL DEFAULT '',
	latency_ms  BIGINT NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
)`

const qInsertGenerationLog = `
INSERT INTO generation_log (id, action, outcome, error_kind, latency_ms, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`

// GenerationRecord is one audited gateway request outcome.
type GenerationRecord struct {
	Action    string
	Outcome   string
	ErrorKind string
	Latency   time.Duration
}

// AuditRepo writes generation records to postgres.
type AuditRepo struct {
	pool *pgxpool.Pool
}

// NewAuditRepo wraps a pool.
func NewAuditRepo(pool *pgxpool.Pool) *AuditRepo {
	return &AuditRepo{pool: pool}
}

// EnsureSchema creates the audit table when missing.
func (r *AuditRepo) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, qCreateGenerationLog); err != nil {
		return fmt.Errorf("create generation_log: %w", err)
	}
	return nil
}

// Record inserts one audit row.
func (r *AuditRepo) Record(ctx context.Context, rec GenerationRecord) error {
	_, err := r.pool.Exec(ctx, qInsertGenerationLog,
		uuid.NewString(), rec.Action, rec.Outcome, rec.ErrorKind, rec.Latency.Milliseconds(), time.Now())
	if err != nil {
		return fmt.Errorf("insert generation_log: %w", err)
	}
	return nil
}
