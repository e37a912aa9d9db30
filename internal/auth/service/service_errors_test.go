package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"

	"votegate/internal/auth/service/mocks"
	"votegate/internal/auth/token"
	"votegate/internal/biometric/matcher"
	matchermocks "votegate/internal/biometric/matcher/mocks"
	biomodels "votegate/internal/biometric/models"
	"votegate/internal/platform/logger"
	"votegate/internal/voter/models"
	dErrors "votegate/pkg/domain-errors"
	"votegate/pkg/platform/password"
	"votegate/pkg/platform/sentinel"
	"votegate/pkg/requestcontext"
)

type mockedService struct {
	service   *Service
	voters    *mocks.MockVoterStore
	templates *mocks.MockTemplateStore
	matcher   *matchermocks.MockFaceMatcher
	tokens    *mocks.MockTokenService
	trl       *mocks.MockRevocationList
	now       time.Time
	ctx       context.Context
}

func newMockedService(t *testing.T) *mockedService {
	ctrl := gomock.NewController(t)
	m := &mockedService{
		voters:    mocks.NewMockVoterStore(ctrl),
		templates: mocks.NewMockTemplateStore(ctrl),
		matcher:   matchermocks.NewMockFaceMatcher(ctrl),
		tokens:    mocks.NewMockTokenService(ctrl),
		trl:       mocks.NewMockRevocationList(ctrl),
		now:       time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	m.ctx = requestcontext.WithTime(context.Background(), m.now)
	m.service = New(m.voters, m.templates, m.matcher, nil, m.tokens, m.trl,
		Config{FaceThreshold: 0.65, MatcherTimeout: 50 * time.Millisecond},
		WithLogger(logger.Discard()),
	)
	return m
}

func verifiedVoter() *models.Voter {
	return &models.Voter{
		VoterID:       testVoterID,
		Email:         "jane@example.com",
		EmailVerified: true,
		PhoneVerified: true,
		IDVerified:    true,
		FaceVerified:  true,
		IsActive:      true,
		Status:        models.StatusCompleted,
	}
}

func (m *mockedService) faceLogin() FaceLogin {
	return FaceLogin{
		VoterID:       testVoterID,
		LimitedJTI:    "limited-jti",
		LimitedExpiry: m.now.Add(3 * time.Minute),
		Sample:        biomodels.Sample{Image: []byte("img")},
	}
}

func (m *mockedService) expectVoterAndTemplate() {
	m.voters.EXPECT().FindByVoterID(gomock.Any(), testVoterID).Return(verifiedVoter(), nil)
	m.templates.EXPECT().FindActive(gomock.Any(), testVoterID).
		Return(&biomodels.Template{VoterID: testVoterID, Vector: []float64{1}}, nil)
}

func TestVerifyFaceThreshold(t *testing.T) {
	t.Run("score equal to threshold is a mismatch", func(t *testing.T) {
		m := newMockedService(t)
		m.expectVoterAndTemplate()
		m.matcher.EXPECT().Score(gomock.Any(), gomock.Any(), gomock.Any()).Return(0.65, nil)
		m.trl.EXPECT().RevokeToken(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
		m.tokens.EXPECT().IssueFull(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		_, err := m.service.VerifyFace(m.ctx, m.faceLogin())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
		assert.True(t, dErrors.HasReason(err, dErrors.ReasonFaceMismatch))
		assert.Equal(t, []string{"confidence=0.6500"}, dErrors.DetailsOf(err))
	})

	t.Run("score above threshold consumes the limited token", func(t *testing.T) {
		m := newMockedService(t)
		m.expectVoterAndTemplate()
		m.matcher.EXPECT().Score(gomock.Any(), []float64{1}, gomock.Any()).Return(0.6501, nil)
		m.trl.EXPECT().RevokeToken(gomock.Any(), "limited-jti", 3*time.Minute).Return(nil)
		m.tokens.EXPECT().IssueFull(testVoterID, "jane@example.com", token.RoleVoter, 24*time.Hour, m.now).
			Return(&token.Issued{Token: "full", JTI: "full-jti", ExpiresAt: m.now.Add(24 * time.Hour)}, nil)
		m.voters.EXPECT().Execute(gomock.Any(), testVoterID, gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ any, validate func(*models.Voter) error, mutate func(*models.Voter)) (*models.Voter, error) {
				v := verifiedVoter()
				require.NoError(t, validate(v))
				mutate(v)
				return v, nil
			})

		res, err := m.service.VerifyFace(m.ctx, m.faceLogin())
		require.NoError(t, err)
		assert.Equal(t, "full", res.Token)
		assert.InDelta(t, 0.6501, res.Confidence, 1e-9)
		require.NotNil(t, res.Voter.LastFaceAuthAt)
	})
}

func TestVerifyFaceMatcherFailures(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		code   dErrors.Code
		reason dErrors.Reason
	}{
		{"unusable sample", matcher.ErrSampleUnusable, dErrors.CodeValidation, dErrors.ReasonSampleUnusable},
		{"matcher down", matcher.ErrUnavailable, dErrors.CodeUnavailable, dErrors.ReasonMatcherUnavailable},
		{"deadline", context.DeadlineExceeded, dErrors.CodeUnavailable, dErrors.ReasonMatcherUnavailable},
		{"unexpected", errors.New("boom"), dErrors.CodeInternal, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newMockedService(t)
			m.expectVoterAndTemplate()
			m.matcher.EXPECT().Score(gomock.Any(), gomock.Any(), gomock.Any()).Return(0.0, tt.err)

			_, err := m.service.VerifyFace(m.ctx, m.faceLogin())
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, tt.code))
			assert.Equal(t, tt.reason, dErrors.ReasonOf(err))
		})
	}
}

func TestVerifyFaceAppliesMatcherTimeout(t *testing.T) {
	m := newMockedService(t)
	m.expectVoterAndTemplate()
	m.matcher.EXPECT().Score(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ []float64, _ biomodels.Sample) (float64, error) {
			deadline, ok := ctx.Deadline()
			require.True(t, ok)
			assert.WithinDuration(t, time.Now().Add(50*time.Millisecond), deadline, 50*time.Millisecond)
			<-ctx.Done()
			return 0, ctx.Err()
		})

	_, err := m.service.VerifyFace(m.ctx, m.faceLogin())
	assert.True(t, dErrors.HasReason(err, dErrors.ReasonMatcherUnavailable))
}

func TestVerifyFaceRevocationFailure(t *testing.T) {
	m := newMockedService(t)
	m.expectVoterAndTemplate()
	m.matcher.EXPECT().Score(gomock.Any(), gomock.Any(), gomock.Any()).Return(0.9, nil)
	m.trl.EXPECT().RevokeToken(gomock.Any(), "limited-jti", gomock.Any()).Return(errors.New("redis down"))
	m.tokens.EXPECT().IssueFull(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	_, err := m.service.VerifyFace(m.ctx, m.faceLogin())
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))
}

func TestVerifyFaceTemplateLookupFailure(t *testing.T) {
	m := newMockedService(t)
	m.voters.EXPECT().FindByVoterID(gomock.Any(), testVoterID).Return(verifiedVoter(), nil)
	m.templates.EXPECT().FindActive(gomock.Any(), testVoterID).Return(nil, errors.New("mongo down"))
	m.matcher.EXPECT().Score(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	_, err := m.service.VerifyFace(m.ctx, m.faceLogin())
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))
}

func TestVerifyToken(t *testing.T) {
	claims := &token.Claims{
		VoterID: testVoterID.String(),
		Role:    token.RoleVoter,
		Phase:   token.PhaseFull,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        "jti-1",
			ExpiresAt: jwt.NewNumericDate(time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)),
		},
	}

	t.Run("validation errors pass through", func(t *testing.T) {
		m := newMockedService(t)
		m.tokens.EXPECT().Validate("tok", m.now).Return(nil,
			dErrors.New(dErrors.CodeUnauthorized, "token has expired").WithReason(dErrors.ReasonTokenExpired))
		m.trl.EXPECT().IsRevoked(gomock.Any(), gomock.Any()).Times(0)

		_, err := m.service.VerifyToken(m.ctx, "tok")
		assert.True(t, dErrors.HasReason(err, dErrors.ReasonTokenExpired))
	})

	t.Run("revocation list failure is internal", func(t *testing.T) {
		m := newMockedService(t)
		m.tokens.EXPECT().Validate("tok", m.now).Return(claims, nil)
		m.trl.EXPECT().IsRevoked(gomock.Any(), "jti-1").Return(false, errors.New("redis down"))

		_, err := m.service.VerifyToken(m.ctx, "tok")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))
	})

	t.Run("maps claims", func(t *testing.T) {
		m := newMockedService(t)
		m.tokens.EXPECT().Validate("tok", m.now).Return(claims, nil)
		m.trl.EXPECT().IsRevoked(gomock.Any(), "jti-1").Return(false, nil)

		got, err := m.service.VerifyToken(m.ctx, "tok")
		require.NoError(t, err)
		assert.Equal(t, testVoterID, got.VoterID)
		assert.Equal(t, "jti-1", got.JTI)
		assert.Equal(t, token.PhaseFull, got.Phase)
		assert.Equal(t, claims.ExpiresAt.Time, got.ExpiresAt)
	})
}

func TestLookupFailureIsInternal(t *testing.T) {
	m := newMockedService(t)
	m.voters.EXPECT().FindByVoterID(gomock.Any(), testVoterID).Return(nil, errors.New("db down"))

	_, err := m.service.VerifyCredentials(m.ctx, testVoterID, testPassword)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))
}

type countingHasher struct {
	password.Hasher
	verifies int
}

func (h *countingHasher) Verify(plain, hash string) (bool, error) {
	h.verifies++
	return h.Hasher.Verify(plain, hash)
}

func TestUnknownVoterStillVerifiesAPassword(t *testing.T) {
	m := newMockedService(t)
	hasher := &countingHasher{Hasher: password.New(password.WithBcryptCost(bcrypt.MinCost))}
	m.service.hasher = hasher
	m.voters.EXPECT().FindByVoterID(gomock.Any(), testVoterID).Return(nil, sentinel.ErrNotFound).Times(2)

	for i := 0; i < 2; i++ {
		_, err := m.service.VerifyCredentials(m.ctx, testVoterID, testPassword)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	}
	assert.Equal(t, 2, hasher.verifies)
	assert.NotEmpty(t, m.service.decoy)
}
