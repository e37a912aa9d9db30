package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestUniqueViolation(t *testing.T) {
	t.Run("pgx error", func(t *testing.T) {
		err := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", ConstraintName: ConstraintEmail})
		name, ok := UniqueViolation(err)
		assert.True(t, ok)
		assert.Equal(t, ConstraintEmail, name)
	})

	t.Run("lib/pq error", func(t *testing.T) {
		err := fmt.Errorf("insert: %w", &pq.Error{Code: "23505", Constraint: ConstraintVotePair})
		name, ok := UniqueViolation(err)
		assert.True(t, ok)
		assert.Equal(t, ConstraintVotePair, name)
	})

	t.Run("other sql state", func(t *testing.T) {
		_, ok := UniqueViolation(&pgconn.PgError{Code: "23503"})
		assert.False(t, ok)
	})

	t.Run("plain error", func(t *testing.T) {
		_, ok := UniqueViolation(errors.New("boom"))
		assert.False(t, ok)
	})
}
