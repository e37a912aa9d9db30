package revocation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"votegate/pkg/platform/tx"
)

// PostgresTRL persists revoked token ids in the token_revocations table.
type PostgresTRL struct {
	db    *sql.DB
	clock Clock
}

type PostgresTRLOption func(*PostgresTRL)

// WithPostgresClock sets the clock function for testability.
func WithPostgresClock(clock Clock) PostgresTRLOption {
	return func(trl *PostgresTRL) {
		if clock != nil {
			trl.clock = clock
		}
	}
}

func NewPostgresTRL(db *sql.DB, opts ...PostgresTRLOption) *PostgresTRL {
	trl := &PostgresTRL{db: db, clock: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(trl)
		}
	}
	return trl
}

func (t *PostgresTRL) RevokeToken(ctx context.Context, jti string, ttl time.Duration) error {
	if jti == "" {
		return nil
	}
	if err := validateTTL(ttl); err != nil {
		return err
	}
	query := `
		INSERT INTO token_revocations (jti, expires_at)
		VALUES ($1, $2)
		ON CONFLICT (jti) DO UPDATE SET
			expires_at = GREATEST(token_revocations.expires_at, EXCLUDED.expires_at)
	`
	if _, err := tx.Conn(ctx, t.db).ExecContext(ctx, query, jti, t.clock().Add(ttl)); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

func (t *PostgresTRL) IsRevoked(ctx context.Context, jti string) (bool, error) {
	var expiresAt time.Time
	err := tx.Conn(ctx, t.db).QueryRowContext(ctx,
		`SELECT expires_at FROM token_revocations WHERE jti = $1`, jti).Scan(&expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check token revocation: %w", err)
	}
	return t.clock().Before(expiresAt), nil
}

func (t *PostgresTRL) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	res, err := tx.Conn(ctx, t.db).ExecContext(ctx, `DELETE FROM token_revocations WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, fmt.Errorf("delete expired revocations: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}
