package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"votegate/internal/platform/postgres"
	"votegate/internal/voter/models"
	id "votegate/pkg/domain"
	"votegate/pkg/platform/sentinel"
	"votegate/pkg/platform/tx"
)

var constraintFields = map[string]string{
	postgres.ConstraintVoterID:    FieldVoterID,
	postgres.ConstraintEmail:      FieldEmail,
	postgres.ConstraintPhone:      FieldPhone,
	postgres.ConstraintNationalID: FieldNationalID,
}

const voterColumns = `id, voter_id, first_name, last_name, email, phone, national_id_number,
	date_of_birth, address, password_hash, email_verified, phone_verified, id_verified,
	face_verified, is_active, registration_status, biometric_ref, last_face_auth_at,
	created_at, updated_at`

// PostgresStore persists voters in PostgreSQL. Uniqueness is enforced by table constraints.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, v *models.Voter) error {
	_, err := tx.Conn(ctx, s.db).ExecContext(ctx, `
		INSERT INTO voters (`+voterColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
	`,
		v.ID, v.VoterID, v.FirstName, v.LastName, v.Email, v.Phone, v.NationalID,
		v.DateOfBirth, v.Address, v.PasswordHash, v.EmailVerified, v.PhoneVerified, v.IDVerified,
		v.FaceVerified, v.IsActive, v.Status, nullString(v.BiometricRef), v.LastFaceAuthAt,
		v.CreatedAt, v.UpdatedAt,
	)
	if err != nil {
		if constraint, ok := postgres.UniqueViolation(err); ok {
			if field, known := constraintFields[constraint]; known {
				return sentinel.NewFieldConflict(field)
			}
			return fmt.Errorf("create voter: %w", sentinel.ErrConflict)
		}
		return fmt.Errorf("create voter: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByVoterID(ctx context.Context, voterID id.VoterID) (*models.Voter, error) {
	row := tx.Conn(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+voterColumns+` FROM voters WHERE voter_id = $1`, voterID)
	return scanVoter(row)
}

func (s *PostgresStore) FindByContact(ctx context.Context, contact string) (*models.Voter, error) {
	row := tx.Conn(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+voterColumns+` FROM voters WHERE email = lower($1) OR phone = $1 LIMIT 1`, contact)
	return scanVoter(row)
}

func (s *PostgresStore) ExistsVoterID(ctx context.Context, voterID id.VoterID) (bool, error) {
	var exists bool
	err := tx.Conn(ctx, s.db).QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM voters WHERE voter_id = $1)`, voterID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check voter id: %w", err)
	}
	return exists, nil
}

// Execute locks the voter row, validates, mutates and writes back the mutable columns
// inside one transaction.
func (s *PostgresStore) Execute(ctx context.Context, voterID id.VoterID, validate func(*models.Voter) error, mutate func(*models.Voter)) (*models.Voter, error) {
	var result *models.Voter
	err := tx.RunInTx(ctx, s.db, func(ctx context.Context) error {
		q := tx.Conn(ctx, s.db)
		v, err := scanVoter(q.QueryRowContext(ctx,
			`SELECT `+voterColumns+` FROM voters WHERE voter_id = $1 FOR UPDATE`, voterID))
		if err != nil {
			return err
		}
		result = v
		if err := validate(v); err != nil {
			return err
		}
		mutate(v)
		_, err = q.ExecContext(ctx, `
			UPDATE voters SET
				email_verified = $2, phone_verified = $3, id_verified = $4, face_verified = $5,
				is_active = $6, registration_status = $7, biometric_ref = $8,
				last_face_auth_at = $9, updated_at = $10
			WHERE voter_id = $1
		`, v.VoterID, v.EmailVerified, v.PhoneVerified, v.IDVerified, v.FaceVerified,
			v.IsActive, v.Status, nullString(v.BiometricRef), v.LastFaceAuthAt, v.UpdatedAt)
		if err != nil {
			return fmt.Errorf("update voter: %w", err)
		}
		return nil
	})
	return result, err
}

func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := tx.Conn(ctx, s.db).QueryRowContext(ctx, `SELECT COUNT(*) FROM voters`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count voters: %w", err)
	}
	return n, nil
}

func scanVoter(row *sql.Row) (*models.Voter, error) {
	var (
		v            models.Voter
		biometricRef sql.NullString
		lastFaceAuth sql.NullTime
	)
	err := row.Scan(
		&v.ID, &v.VoterID, &v.FirstName, &v.LastName, &v.Email, &v.Phone, &v.NationalID,
		&v.DateOfBirth, &v.Address, &v.PasswordHash, &v.EmailVerified, &v.PhoneVerified, &v.IDVerified,
		&v.FaceVerified, &v.IsActive, &v.Status, &biometricRef, &lastFaceAuth,
		&v.CreatedAt, &v.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("voter: %w", sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("scan voter: %w", err)
	}
	v.BiometricRef = biometricRef.String
	if lastFaceAuth.Valid {
		t := lastFaceAuth.Time
		v.LastFaceAuthAt = &t
	}
	return &v, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
