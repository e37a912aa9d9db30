package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"votegate/internal/ballot/models"
	"votegate/internal/ballot/service/mocks"
	"votegate/internal/platform/logger"
	votermodels "votegate/internal/voter/models"
	dErrors "votegate/pkg/domain-errors"
	"votegate/pkg/platform/sentinel"
	"votegate/pkg/requestcontext"
)

type mockedService struct {
	service     *Service
	ledger      *mocks.MockLedger
	voters      *mocks.MockVoterLookup
	broadcaster *mocks.MockBroadcaster
	ctx         context.Context
	now         time.Time
	election    *models.Election
	candidate   *models.Candidate
}

func newMockedService(t *testing.T) *mockedService {
	ctrl := gomock.NewController(t)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	m := &mockedService{
		ledger:      mocks.NewMockLedger(ctrl),
		voters:      mocks.NewMockVoterLookup(ctrl),
		broadcaster: mocks.NewMockBroadcaster(ctrl),
		ctx:         requestcontext.WithTime(context.Background(), now),
		now:         now,
	}
	m.election = &models.Election{
		ID: uuid.New(), Status: models.StatusActive,
		StartAt: now.Add(-time.Hour), EndAt: now.Add(time.Hour),
	}
	m.candidate = &models.Candidate{ID: uuid.New(), ElectionID: m.election.ID, Name: "c1"}
	m.service = New(m.ledger, m.voters, "salt",
		WithLogger(logger.Discard()),
		WithBroadcaster(m.broadcaster),
	)
	return m
}

func (m *mockedService) expectEligible() {
	m.ledger.EXPECT().FindElection(gomock.Any(), m.election.ID).Return(m.election, nil)
	m.ledger.EXPECT().FindCandidate(gomock.Any(), m.candidate.ID).Return(m.candidate, nil)
	m.voters.EXPECT().FindByVoterID(gomock.Any(), voterOne).Return(&votermodels.Voter{
		VoterID: voterOne, IsActive: true,
		EmailVerified: true, PhoneVerified: true, IDVerified: true, FaceVerified: true,
	}, nil)
}

func (m *mockedService) ballot() Ballot {
	return Ballot{
		VoterID:     voterOne,
		ElectionID:  m.election.ID,
		CandidateID: m.candidate.ID,
		ClientIP:    "198.51.100.20",
		UserAgent:   "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	}
}

func TestCastVoteRecordsMetadata(t *testing.T) {
	m := newMockedService(t)
	m.expectEligible()
	m.ledger.EXPECT().RecordVote(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, v *models.Vote) (*models.TallyUpdate, error) {
			assert.True(t, v.IsVerified)
			assert.Equal(t, m.now, v.VoteTimestamp)
			assert.NotEqual(t, "198.51.100.20", v.IPHash)
			assert.Len(t, v.IPHash, 32)
			assert.Equal(t, newIPHasher("salt").Sum("198.51.100.20"), v.IPHash)
			assert.Equal(t, "Chrome", v.Browser)
			assert.False(t, v.Mobile)
			assert.Contains(t, v.UserAgent, "Chrome/120")
			return &models.TallyUpdate{CandidateVotes: 4, TotalVotes: 9}, nil
		})
	m.broadcaster.EXPECT().Publish(gomock.Any(), gomock.Any(), gomock.Any())
	m.broadcaster.EXPECT().Publish(gomock.Any(), gomock.Any())

	receipt, err := m.service.CastVote(m.ctx, m.ballot())
	require.NoError(t, err)
	assert.Equal(t, int64(4), receipt.CandidateVotes)
	assert.Equal(t, int64(9), receipt.TotalVotes)
}

func TestCastVoteLedgerFailures(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		code   dErrors.Code
		reason dErrors.Reason
	}{
		{"duplicate pair", fmt.Errorf("vote: %w", sentinel.ErrConflict), dErrors.CodeConflict, dErrors.ReasonAlreadyVoted},
		{"candidate vanished", fmt.Errorf("candidate: %w", sentinel.ErrNotFound), dErrors.CodeNotFound, ""},
		{"database down", errors.New("connection refused"), dErrors.CodeInternal, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newMockedService(t)
			m.expectEligible()
			m.ledger.EXPECT().RecordVote(gomock.Any(), gomock.Any()).Return(nil, tt.err)
			m.broadcaster.EXPECT().Publish(gomock.Any(), gomock.Any()).Times(0)

			_, err := m.service.CastVote(m.ctx, m.ballot())
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, tt.code))
			assert.Equal(t, tt.reason, dErrors.ReasonOf(err))
		})
	}
}

func TestCastVoteLookupFailures(t *testing.T) {
	t.Run("election store down", func(t *testing.T) {
		m := newMockedService(t)
		m.ledger.EXPECT().FindElection(gomock.Any(), m.election.ID).Return(nil, errors.New("timeout"))
		m.ledger.EXPECT().RecordVote(gomock.Any(), gomock.Any()).Times(0)

		_, err := m.service.CastVote(m.ctx, m.ballot())
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))
	})

	t.Run("voter store down", func(t *testing.T) {
		m := newMockedService(t)
		m.ledger.EXPECT().FindElection(gomock.Any(), m.election.ID).Return(m.election, nil)
		m.ledger.EXPECT().FindCandidate(gomock.Any(), m.candidate.ID).Return(m.candidate, nil)
		m.voters.EXPECT().FindByVoterID(gomock.Any(), voterOne).Return(nil, errors.New("timeout"))
		m.ledger.EXPECT().RecordVote(gomock.Any(), gomock.Any()).Times(0)

		_, err := m.service.CastVote(m.ctx, m.ballot())
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))
	})
}

func TestIPHasher(t *testing.T) {
	a := newIPHasher("salt-a")
	b := newIPHasher("salt-b")

	assert.Equal(t, a.Sum("203.0.113.7"), a.Sum("203.0.113.7"))
	assert.NotEqual(t, a.Sum("203.0.113.7"), a.Sum("203.0.113.8"))
	assert.NotEqual(t, a.Sum("203.0.113.7"), b.Sum("203.0.113.7"))
	assert.Empty(t, a.Sum(""))
}
