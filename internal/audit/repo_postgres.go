package audit

import (
	"context"
	"database/sql"
	"errors"
)

// NOTE: This repository assumes an auth_audit_events table with an INSERT-only
// policy (no UPDATE/DELETE grants).

// PostgresRepo appends events through database/sql (pgx stdlib driver).
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

func (r *PostgresRepo) Append(ctx context.Context, e Event) error {
	if r.db == nil {
		return errors.New("audit: database not configured")
	}
	const q = `
INSERT INTO auth_audit_events (
  id, type, actor_user_id, actor_email, actor_role, ip_address, message, metadata, created_at
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9
)
`
	_, err := r.db.ExecContext(ctx, q,
		e.ID,
		e.Type,
		nullableInt64(e.ActorUserID),
		e.ActorEmail,
		e.ActorRole,
		e.IPAddress,
		e.Message,
		nullableString(e.Metadata),
		e.CreatedAt,
	)
	return err
}

func nullableInt64(v int64) sql.NullInt64 {
	return sql.NullInt64{Int64: v, Valid: v != 0}
}

func nullableString(v string) sql.NullString {
	return sql.NullString{String: v, Valid: v != ""}
}
