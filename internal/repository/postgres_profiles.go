package repository

import (
	"context"
	"fmt"

	"AlgoSensei/internal/domain/errs"
	"AlgoSensei/internal/domain/models"
	"AlgoSensei/pkg/postgres"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// pgQuerier is the subset of *pgxpool.Pool the directory uses.
type pgQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresProfileDirectory reads and writes the users table directly.
type PostgresProfileDirectory struct {
	db    pgQuerier
	table string
}

// NewPostgresProfileDirectory creates a directory over table.
func NewPostgresProfileDirectory(db pgQuerier, table string) *PostgresProfileDirectory {
	return &PostgresProfileDirectory{db: db, table: pgx.Identifier{table}.Sanitize()}
}

// ProfilesSchema returns the DDL that creates the users table when missing.
func ProfilesSchema(table string) []string {
	return []string{fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	id         BIGSERIAL PRIMARY KEY,
	email      TEXT NOT NULL UNIQUE,
	username   TEXT,
	password   TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`, pgx.Identifier{table}.Sanitize())}
}

func (d *PostgresProfileDirectory) FindByEmail(ctx context.Context, email string) (*models.Profile, error) {
	q := fmt.Sprintf("SELECT email, COALESCE(username, '') FROM %s WHERE email = $1 LIMIT 1", d.table)

	var p models.Profile
	if err := d.db.QueryRow(ctx, q, email).Scan(&p.Email, &p.Username); err != nil {
		if postgres.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("find profile: %w", err)
	}
	return &p, nil
}

func (d *PostgresProfileDirectory) Create(ctx context.Context, p *models.Profile) error {
	q := fmt.Sprintf("INSERT INTO %s (email, username, password) VALUES ($1, $2, $3)", d.table)

	if _, err := d.db.Exec(ctx, q, p.Email, p.Username, p.PasswordHash); err != nil {
		if postgres.IsDuplicateKey(err) {
			return errs.NewAuthError(errs.EmailTaken, err)
		}
		return fmt.Errorf("create profile: %w", err)
	}
	return nil
}
