// Package postgres opens the SQL connection pool and owns the relational schema.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	"github.com/lib/pq"                 // registers the "postgres" driver

	"votegate/internal/platform/config"
	"votegate/pkg/platform/tx"
)

const uniqueViolation = "23505"

// Constraint names the stores map back to conflicting fields.
const (
	ConstraintVoterID    = "voters_voter_id_key"
	ConstraintEmail      = "voters_email_key"
	ConstraintPhone      = "voters_phone_key"
	ConstraintNationalID = "voters_national_id_key"
	ConstraintVotePair   = "votes_election_voter_verified_idx"
)

// Open connects to Postgres with the configured driver. Returns nil, nil when no URL is set.
func Open(ctx context.Context, cfg config.Postgres) (*sql.DB, error) {
	if cfg.URL == "" {
		return nil, nil
	}
	driver := cfg.Driver
	if driver == "" {
		driver = "pgx"
	}
	db, err := sql.Open(driver, cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}
	return db, nil
}

// schemaLock serializes concurrent schema bootstraps across instances.
const schemaLock = 0x766f7465

var schema = []string{
	`CREATE TABLE IF NOT EXISTS voters (
		id                  UUID PRIMARY KEY,
		voter_id            TEXT NOT NULL,
		first_name          TEXT NOT NULL,
		last_name           TEXT NOT NULL,
		email               TEXT NOT NULL,
		phone               TEXT NOT NULL,
		national_id_number  TEXT NOT NULL,
		date_of_birth       DATE NOT NULL,
		address             TEXT NOT NULL DEFAULT '',
		password_hash       TEXT NOT NULL,
		email_verified      BOOLEAN NOT NULL DEFAULT FALSE,
		phone_verified      BOOLEAN NOT NULL DEFAULT FALSE,
		id_verified         BOOLEAN NOT NULL DEFAULT FALSE,
		face_verified       BOOLEAN NOT NULL DEFAULT FALSE,
		is_active           BOOLEAN NOT NULL DEFAULT TRUE,
		registration_status TEXT NOT NULL DEFAULT 'pending',
		biometric_ref       TEXT,
		last_face_auth_at   TIMESTAMPTZ,
		created_at          TIMESTAMPTZ NOT NULL,
		updated_at          TIMESTAMPTZ NOT NULL,
		CONSTRAINT voters_voter_id_key UNIQUE (voter_id),
		CONSTRAINT voters_email_key UNIQUE (email),
		CONSTRAINT voters_phone_key UNIQUE (phone),
		CONSTRAINT voters_national_id_key UNIQUE (national_id_number)
	)`,
	`CREATE TABLE IF NOT EXISTS elections (
		id          UUID PRIMARY KEY,
		title       TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		status      TEXT NOT NULL,
		start_at    TIMESTAMPTZ NOT NULL,
		end_at      TIMESTAMPTZ NOT NULL,
		total_votes BIGINT NOT NULL DEFAULT 0,
		created_at  TIMESTAMPTZ NOT NULL,
		updated_at  TIMESTAMPTZ NOT NULL,
		CHECK (end_at > start_at)
	)`,
	`CREATE TABLE IF NOT EXISTS candidates (
		id          UUID PRIMARY KEY,
		seq         BIGSERIAL,
		election_id UUID NOT NULL REFERENCES elections (id),
		name        TEXT NOT NULL,
		party       TEXT NOT NULL DEFAULT '',
		vote_count  BIGINT NOT NULL DEFAULT 0,
		created_at  TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS candidates_election_idx ON candidates (election_id, seq)`,
	`CREATE TABLE IF NOT EXISTS votes (
		id             UUID PRIMARY KEY,
		election_id    UUID NOT NULL REFERENCES elections (id),
		voter_id       TEXT NOT NULL,
		candidate_id   UUID NOT NULL REFERENCES candidates (id),
		ip_hash        TEXT NOT NULL DEFAULT '',
		user_agent     TEXT NOT NULL DEFAULT '',
		browser        TEXT NOT NULL DEFAULT '',
		os             TEXT NOT NULL DEFAULT '',
		mobile         BOOLEAN NOT NULL DEFAULT FALSE,
		is_verified    BOOLEAN NOT NULL DEFAULT TRUE,
		vote_timestamp TIMESTAMPTZ NOT NULL
	)`,
	// The one-verified-vote-per-(election, voter) guarantee lives here.
	`CREATE UNIQUE INDEX IF NOT EXISTS votes_election_voter_verified_idx
		ON votes (election_id, voter_id) WHERE is_verified`,
	`CREATE TABLE IF NOT EXISTS token_revocations (
		jti        TEXT PRIMARY KEY,
		expires_at TIMESTAMPTZ NOT NULL
	)`,
}

// Tables lists every table Migrate creates, children first.
var Tables = []string{"votes", "candidates", "elections", "voters", "token_revocations"}

// Migrate creates the schema if it does not exist. Safe to run on every startup.
func Migrate(ctx context.Context, db *sql.DB) error {
	return tx.RunInTx(ctx, db, func(ctx context.Context) error {
		q := tx.Conn(ctx, db)
		if _, err := q.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, schemaLock); err != nil {
			return fmt.Errorf("acquire schema lock: %w", err)
		}
		for _, stmt := range schema {
			if _, err := q.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("apply schema: %w", err)
			}
		}
		return nil
	})
}

// UniqueViolation reports whether err is a unique-constraint violation from either driver,
// returning the violated constraint name.
func UniqueViolation(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return pgErr.ConstraintName, true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return pqErr.Constraint, true
	}
	return "", false
}
