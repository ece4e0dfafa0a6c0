// Package audit records one entry per completed gateway request and
// serves filtered reads for the introspection endpoint.
package audit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Outcome classes. A request rejected at admission never produces a
// "forwarded" entry.
const (
	OutcomeForwarded = "forwarded"
	OutcomeRejected  = "rejected"
	OutcomeError     = "error"
)

// Entry is one request/response pair. Append-only; CreatedAt is assigned
// at completion time, and readers must order by it explicitly because
// concurrent writers do not insert in timestamp order.
type Entry struct {
	ID            string    `json:"id"`
	Route         string    `json:"route"`
	Backend       string    `json:"service"`
	Method        string    `json:"method"`
	Status        int       `json:"status"`
	LatencyMillis int64     `json:"response_time_ms"`
	Identity      string    `json:"user"`
	ClientIP      string    `json:"client_ip"`
	Outcome       string    `json:"outcome"`
	CreatedAt     time.Time `json:"timestamp"`
}

// Filter narrows a Query. Zero values mean "no constraint".
type Filter struct {
	Identity string
	Route    string
	Status   int
	Start    time.Time
	End      time.Time
	Limit    int
}

const defaultQueryLimit = 100

type auditDB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Writer appends and reads entries in Postgres.
type Writer struct {
	DB auditDB
}

// Init creates the audit table and timestamp index if missing.
func (w *Writer) Init(ctx context.Context) error {
	_, err := w.DB.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS audit_entries (
			id          TEXT PRIMARY KEY,
			route       TEXT NOT NULL,
			backend     TEXT NOT NULL,
			method      TEXT NOT NULL,
			status      INT NOT NULL,
			latency_ms  BIGINT NOT NULL,
			identity    TEXT NOT NULL,
			client_ip   TEXT NOT NULL,
			outcome     TEXT NOT NULL,
			created_at  TIMESTAMPTZ NOT NULL
		);
		CREATE INDEX IF NOT EXISTS audit_entries_created_at_idx ON audit_entries (created_at DESC)
	`)
	return err
}

func (w *Writer) Append(ctx context.Context, e Entry) error {
	_, err := w.DB.Exec(ctx, `
		INSERT INTO audit_entries
		(id, route, backend, method, status, latency_ms, identity, client_ip, outcome, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`, e.ID, e.Route, e.Backend, e.Method, e.Status, e.LatencyMillis, e.Identity, e.ClientIP, e.Outcome, e.CreatedAt)
	return err
}

// Query returns entries most-recent-first, capped at Filter.Limit
// (default 100).
func (w *Writer) Query(ctx context.Context, f Filter) ([]Entry, error) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if f.Identity != "" {
		where = append(where, "identity = "+arg(f.Identity))
	}
	if f.Route != "" {
		where = append(where, "route = "+arg(f.Route))
	}
	if f.Status != 0 {
		where = append(where, "status = "+arg(f.Status))
	}
	if !f.Start.IsZero() {
		where = append(where, "created_at >= "+arg(f.Start))
	}
	if !f.End.IsZero() {
		where = append(where, "created_at <= "+arg(f.End))
	}
	limit := f.Limit
	if limit <= 0 || limit > 1000 {
		limit = defaultQueryLimit
	}
	sql := "SELECT id, route, backend, method, status, latency_ms, identity, client_ip, outcome, created_at FROM audit_entries"
	if len(where) > 0 {
		sql += " WHERE " + strings.Join(where, " AND ")
	}
	sql += " ORDER BY created_at DESC LIMIT " + arg(limit)

	rows, err := w.DB.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Entry{}
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Route, &e.Backend, &e.Method, &e.Status, &e.LatencyMillis, &e.Identity, &e.ClientIP, &e.Outcome, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
