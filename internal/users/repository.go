package users

import (
	"context"
	"database/sql"
	"errors"
	"strings"
)

// Repository is the read contract the auth layer consumes.
type Repository interface {
	FindByID(ctx context.Context, id int64) (Record, bool, error)
	FindByEmail(ctx context.Context, email string) (Record, bool, error)
}

// NOTE: This repository assumes a users table with a unique, lower-cased email.

// PostgresRepository reads users through database/sql (pgx stdlib driver).
type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const selectUser = `
SELECT id, tenant_scope_id, email, display_name, role, password_hash, created_at, updated_at
FROM users
`

func (r *PostgresRepository) FindByID(ctx context.Context, id int64) (Record, bool, error) {
	return r.findOne(ctx, selectUser+`WHERE id = $1`, id)
}

func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (Record, bool, error) {
	return r.findOne(ctx, selectUser+`WHERE email = $1`, NormalizeEmail(email))
}

func (r *PostgresRepository) findOne(ctx context.Context, q string, arg any) (Record, bool, error) {
	if r.db == nil {
		return Record{}, false, errors.New("users: database not configured")
	}
	var u Record
	err := r.db.QueryRowContext(ctx, q, arg).Scan(
		&u.ID,
		&u.TenantScopeID,
		&u.Email,
		&u.DisplayName,
		&u.Role,
		&u.PasswordHash,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, false, nil
		}
		return Record{}, false, err
	}
	return u, true, nil
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
