package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"votegate/internal/ballot/models"
	"votegate/internal/platform/postgres"
	id "votegate/pkg/domain"
	"votegate/pkg/platform/sentinel"
	"votegate/pkg/platform/tx"
)

const electionColumns = `id, title, description, status, start_at, end_at, total_votes, created_at, updated_at`

const candidateColumns = `id, election_id, name, party, vote_count, seq, created_at`

// PostgresStore keeps the ledger in PostgreSQL. The partial unique index on
// votes (election_id, voter_id) WHERE is_verified is what rejects a second vote.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) CreateElection(ctx context.Context, e *models.Election) error {
	_, err := tx.Conn(ctx, s.db).ExecContext(ctx, `
		INSERT INTO elections (`+electionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, e.ID, e.Title, e.Description, e.Status, e.StartAt, e.EndAt, e.TotalVotes, e.CreatedAt, e.UpdatedAt)
	if err != nil {
		if _, ok := postgres.UniqueViolation(err); ok {
			return fmt.Errorf("election %s: %w", e.ID, sentinel.ErrConflict)
		}
		return fmt.Errorf("create election: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindElection(ctx context.Context, electionID uuid.UUID) (*models.Election, error) {
	row := tx.Conn(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+electionColumns+` FROM elections WHERE id = $1`, electionID)
	e, err := scanElection(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errElectionNotFound(electionID)
	}
	return e, err
}

func (s *PostgresStore) ListElections(ctx context.Context) ([]*models.Election, error) {
	rows, err := tx.Conn(ctx, s.db).QueryContext(ctx,
		`SELECT `+electionColumns+` FROM elections ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list elections: %w", err)
	}
	defer rows.Close()

	var out []*models.Election
	for rows.Next() {
		e, err := scanElection(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *PostgresStore) ExecuteElection(ctx context.Context, electionID uuid.UUID, validate func(*models.Election) error, mutate func(*models.Election)) (*models.Election, error) {
	var result *models.Election
	err := tx.RunInTx(ctx, s.db, func(ctx context.Context) error {
		q := tx.Conn(ctx, s.db)
		e, err := scanElection(q.QueryRowContext(ctx,
			`SELECT `+electionColumns+` FROM elections WHERE id = $1 FOR UPDATE`, electionID))
		if errors.Is(err, sql.ErrNoRows) {
			return errElectionNotFound(electionID)
		}
		if err != nil {
			return err
		}
		result = e
		if err := validate(e); err != nil {
			return err
		}
		mutate(e)
		_, err = q.ExecContext(ctx, `
			UPDATE elections SET title = $2, description = $3, status = $4,
				start_at = $5, end_at = $6, updated_at = $7
			WHERE id = $1
		`, e.ID, e.Title, e.Description, e.Status, e.StartAt, e.EndAt, e.UpdatedAt)
		if err != nil {
			return fmt.Errorf("update election: %w", err)
		}
		return nil
	})
	return result, err
}

func (s *PostgresStore) AddCandidate(ctx context.Context, c *models.Candidate) error {
	err := tx.Conn(ctx, s.db).QueryRowContext(ctx, `
		INSERT INTO candidates (id, election_id, name, party, vote_count, created_at)
		SELECT $1, $2, $3, $4, 0, $5
		WHERE EXISTS (SELECT 1 FROM elections WHERE id = $2)
		RETURNING seq
	`, c.ID, c.ElectionID, c.Name, c.Party, c.CreatedAt).Scan(&c.Seq)
	if errors.Is(err, sql.ErrNoRows) {
		return errElectionNotFound(c.ElectionID)
	}
	if err != nil {
		return fmt.Errorf("add candidate: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindCandidate(ctx context.Context, candidateID uuid.UUID) (*models.Candidate, error) {
	row := tx.Conn(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+candidateColumns+` FROM candidates WHERE id = $1`, candidateID)
	c, err := scanCandidate(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errCandidateNotFound(candidateID)
	}
	return c, err
}

func (s *PostgresStore) ListCandidates(ctx context.Context, electionID uuid.UUID) ([]*models.Candidate, error) {
	byElection, err := s.CandidatesFor(ctx, []uuid.UUID{electionID})
	if err != nil {
		return nil, err
	}
	return byElection[electionID], nil
}

// CandidatesFor loads the candidates of several elections in one query.
func (s *PostgresStore) CandidatesFor(ctx context.Context, electionIDs []uuid.UUID) (map[uuid.UUID][]*models.Candidate, error) {
	out := make(map[uuid.UUID][]*models.Candidate, len(electionIDs))
	if len(electionIDs) == 0 {
		return out, nil
	}
	keys := make([]string, 0, len(electionIDs))
	for _, eid := range electionIDs {
		keys = append(keys, eid.String())
		out[eid] = []*models.Candidate{}
	}

	rows, err := tx.Conn(ctx, s.db).QueryContext(ctx, `
		SELECT `+candidateColumns+` FROM candidates
		WHERE election_id = ANY($1::uuid[])
		ORDER BY election_id, seq
	`, pq.Array(keys))
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, err
		}
		out[c.ElectionID] = append(out[c.ElectionID], c)
	}
	return out, rows.Err()
}

// RecordVote inserts the vote and, when it is verified, increments both counters
// in the same transaction.
// ON CONFLICT makes a concurrent duplicate wait for the first insert to commit
// and then affect no rows.
func (s *PostgresStore) RecordVote(ctx context.Context, v *models.Vote) (*models.TallyUpdate, error) {
	var update models.TallyUpdate
	err := tx.RunInTx(ctx, s.db, func(ctx context.Context) error {
		q := tx.Conn(ctx, s.db)
		res, err := q.ExecContext(ctx, `
			INSERT INTO votes (id, election_id, voter_id, candidate_id, ip_hash, user_agent,
				browser, os, mobile, is_verified, vote_timestamp)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			ON CONFLICT (election_id, voter_id) WHERE is_verified DO NOTHING
		`, v.ID, v.ElectionID, v.VoterID, v.CandidateID, v.IPHash, v.UserAgent,
			v.Browser, v.OS, v.Mobile, v.IsVerified, v.VoteTimestamp)
		if err != nil {
			if constraint, ok := postgres.UniqueViolation(err); ok && constraint == postgres.ConstraintVotePair {
				return errAlreadyVoted()
			}
			return fmt.Errorf("insert vote: %w", err)
		}
		if n, err := res.RowsAffected(); err != nil {
			return fmt.Errorf("insert vote: %w", err)
		} else if n == 0 {
			return errAlreadyVoted()
		}
		if !v.IsVerified {
			return q.QueryRowContext(ctx, `
				SELECT e.total_votes, c.vote_count FROM elections e JOIN candidates c ON c.election_id = e.id
				WHERE e.id = $1 AND c.id = $2
			`, v.ElectionID, v.CandidateID).Scan(&update.TotalVotes, &update.CandidateVotes)
		}

		// Election row first: Reconcile takes the same lock order.
		err = q.QueryRowContext(ctx, `
			UPDATE elections SET total_votes = total_votes + 1
			WHERE id = $1
			RETURNING total_votes
		`, v.ElectionID).Scan(&update.TotalVotes)
		if err != nil {
			return fmt.Errorf("increment election tally: %w", err)
		}

		err = q.QueryRowContext(ctx, `
			UPDATE candidates SET vote_count = vote_count + 1
			WHERE id = $1 AND election_id = $2
			RETURNING vote_count
		`, v.CandidateID, v.ElectionID).Scan(&update.CandidateVotes)
		if errors.Is(err, sql.ErrNoRows) {
			return errCandidateNotFound(v.CandidateID)
		}
		if err != nil {
			return fmt.Errorf("increment candidate tally: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &update, nil
}

func (s *PostgresStore) HasVoted(ctx context.Context, electionID uuid.UUID, voterID id.VoterID) (bool, error) {
	var exists bool
	err := tx.Conn(ctx, s.db).QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM votes WHERE election_id = $1 AND voter_id = $2 AND is_verified)
	`, electionID, voterID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check vote: %w", err)
	}
	return exists, nil
}

// Reconcile rewrites the counters from the verified vote rows while holding the
// election row lock, so it serializes with RecordVote's increment.
func (s *PostgresStore) Reconcile(ctx context.Context, electionID uuid.UUID) (*models.Reconciliation, error) {
	rec := &models.Reconciliation{ElectionID: electionID}
	err := tx.RunInTx(ctx, s.db, func(ctx context.Context) error {
		q := tx.Conn(ctx, s.db)
		err := q.QueryRowContext(ctx,
			`SELECT total_votes FROM elections WHERE id = $1 FOR UPDATE`, electionID).Scan(&rec.TotalBefore)
		if errors.Is(err, sql.ErrNoRows) {
			return errElectionNotFound(electionID)
		}
		if err != nil {
			return fmt.Errorf("lock election: %w", err)
		}

		res, err := q.ExecContext(ctx, `
			UPDATE candidates c SET vote_count = t.n
			FROM (
				SELECT c2.id, COUNT(v.id) AS n
				FROM candidates c2
				LEFT JOIN votes v ON v.candidate_id = c2.id AND v.is_verified
				WHERE c2.election_id = $1
				GROUP BY c2.id
			) t
			WHERE c.id = t.id AND c.vote_count <> t.n
		`, electionID)
		if err != nil {
			return fmt.Errorf("recount candidates: %w", err)
		}
		adjusted, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("recount candidates: %w", err)
		}
		rec.Adjusted = int(adjusted)

		return q.QueryRowContext(ctx, `
			UPDATE elections SET total_votes = (
				SELECT COUNT(*) FROM votes WHERE election_id = $1 AND is_verified
			)
			WHERE id = $1
			RETURNING total_votes
		`, electionID).Scan(&rec.TotalAfter)
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanElection(row scanner) (*models.Election, error) {
	var e models.Election
	err := row.Scan(&e.ID, &e.Title, &e.Description, &e.Status, &e.StartAt, &e.EndAt,
		&e.TotalVotes, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan election: %w", err)
	}
	return &e, nil
}

func scanCandidate(row scanner) (*models.Candidate, error) {
	var c models.Candidate
	err := row.Scan(&c.ID, &c.ElectionID, &c.Name, &c.Party, &c.VoteCount, &c.Seq, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan candidate: %w", err)
	}
	return &c, nil
}
