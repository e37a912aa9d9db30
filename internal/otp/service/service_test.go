package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"votegate/internal/otp/metrics"
	"votegate/internal/otp/models"
	"votegate/internal/otp/service/mocks"
	"votegate/internal/otp/store"
	dErrors "votegate/pkg/domain-errors"
	"votegate/pkg/requestcontext"
)

type OTPServiceSuite struct {
	suite.Suite
	ctrl     *gomock.Controller
	notifier *mocks.MockNotifier
	codes    *store.InMemory
	service  *Service
	now      time.Time
	ctx      context.Context
	next     string
}

func TestOTPServiceSuite(t *testing.T) {
	suite.Run(t, new(OTPServiceSuite))
}

func (s *OTPServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.notifier = mocks.NewMockNotifier(s.ctrl)
	s.codes = store.NewInMemory()
	s.now = time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
	s.next = "424242"

	cfg := DefaultConfig()
	cfg.SendLimit = 2
	s.service = New(s.codes, s.notifier, cfg,
		WithMetrics(metrics.New(prometheus.NewRegistry())),
		WithCodeGenerator(func(int) (string, error) { return s.next, nil }),
	)
}

func (s *OTPServiceSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *OTPServiceSuite) at(d time.Duration) context.Context {
	return requestcontext.WithTime(context.Background(), s.now.Add(d))
}

func (s *OTPServiceSuite) TestIssue() {
	s.Run("stores and delivers the code", func() {
		s.notifier.EXPECT().
			SendCode(gomock.Any(), "jane@example.com", models.ChannelEmail, "424242", models.PurposeRegistration, s.now.Add(10*time.Minute)).
			Return(nil)

		res, err := s.service.Issue(s.ctx, "jane@example.com", models.ChannelEmail, models.PurposeRegistration)
		s.Require().NoError(err)
		s.True(res.Delivered)
		s.Equal(s.now.Add(10*time.Minute), res.ExpiresAt)

		code, err := s.codes.Find(s.ctx, "jane@example.com", models.PurposeRegistration)
		s.Require().NoError(err)
		s.Equal("424242", code.Value)
		s.Equal(5, code.MaxAttempts)
	})

	s.Run("notifier failure keeps the code and reports undelivered", func() {
		s.notifier.EXPECT().SendCode(gomock.Any(), "+15550001111", models.ChannelPhone, gomock.Any(), gomock.Any(), gomock.Any()).
			Return(errors.New("smtp down"))

		res, err := s.service.Issue(s.ctx, "+15550001111", models.ChannelPhone, models.PurposeRegistration)
		s.Require().NoError(err)
		s.False(res.Delivered)
		s.NoError(s.service.Redeem(s.ctx, "+15550001111", models.PurposeRegistration, "424242"))
	})

	s.Run("throttles repeated sends", func() {
		s.notifier.EXPECT().SendCode(gomock.Any(), "spam@example.com", gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil).Times(2)

		for i := 0; i < 2; i++ {
			_, err := s.service.Issue(s.ctx, "spam@example.com", models.ChannelEmail, models.PurposeRegistration)
			s.Require().NoError(err)
		}
		_, err := s.service.Issue(s.ctx, "spam@example.com", models.ChannelEmail, models.PurposeRegistration)
		s.True(dErrors.HasCode(err, dErrors.CodeTooManyRequests))
		s.True(dErrors.HasReason(err, dErrors.ReasonTooManyRequests))
	})
}

func (s *OTPServiceSuite) TestReserveSendSharesTheIssueWindow() {
	s.notifier.EXPECT().SendCode(gomock.Any(), "mix@example.com", gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil)

	s.Require().NoError(s.service.ReserveSend(s.ctx, "mix@example.com", models.PurposeEmailVerification))
	_, err := s.service.Issue(s.ctx, "mix@example.com", models.ChannelEmail, models.PurposeEmailVerification)
	s.Require().NoError(err)

	err = s.service.ReserveSend(s.ctx, "mix@example.com", models.PurposeEmailVerification)
	s.True(dErrors.HasCode(err, dErrors.CodeTooManyRequests))
	s.NoError(s.service.ReserveSend(s.ctx, "mix@example.com", models.PurposePhoneVerification))
}

func (s *OTPServiceSuite) TestRedeem() {
	s.notifier.EXPECT().SendCode(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil).AnyTimes()

	s.Run("second redemption of a correct code is already used", func() {
		_, err := s.service.Issue(s.ctx, "a@example.com", models.ChannelEmail, models.PurposeRegistration)
		s.Require().NoError(err)

		s.Require().NoError(s.service.Redeem(s.ctx, "a@example.com", models.PurposeRegistration, " 424242 "))
		err = s.service.Redeem(s.ctx, "a@example.com", models.PurposeRegistration, "424242")
		s.True(dErrors.HasReason(err, dErrors.ReasonCodeAlreadyUsed))
	})

	s.Run("correct code past expiry is rejected", func() {
		_, err := s.service.Issue(s.ctx, "b@example.com", models.ChannelEmail, models.PurposeRegistration)
		s.Require().NoError(err)

		err = s.service.Redeem(s.at(10*time.Minute), "b@example.com", models.PurposeRegistration, "424242")
		s.True(dErrors.HasReason(err, dErrors.ReasonCodeExpired))
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("wrong and unknown codes are invalid", func() {
		_, err := s.service.Issue(s.ctx, "c@example.com", models.ChannelEmail, models.PurposeRegistration)
		s.Require().NoError(err)

		err = s.service.Redeem(s.ctx, "c@example.com", models.PurposeRegistration, "000000")
		s.True(dErrors.HasReason(err, dErrors.ReasonCodeInvalid))
		err = s.service.Redeem(s.ctx, "nobody@example.com", models.PurposeRegistration, "424242")
		s.True(dErrors.HasReason(err, dErrors.ReasonCodeInvalid))
	})

	s.Run("store failure is internal", func() {
		codes := mocks.NewMockCodeStore(s.ctrl)
		svc := New(codes, s.notifier, DefaultConfig())
		codes.EXPECT().Redeem(gomock.Any(), "d@example.com", models.PurposeRegistration, "1", s.now).
			Return(errors.New("redis down"))

		err := svc.Redeem(s.ctx, "d@example.com", models.PurposeRegistration, "1")
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})
}

func (s *OTPServiceSuite) TestProofs() {
	s.Require().NoError(s.service.SaveProof(s.ctx, "jane@example.com"))

	ok, err := s.service.HasProof(s.ctx, "jane@example.com")
	s.Require().NoError(err)
	s.True(ok)

	ok, err = s.service.HasProof(s.at(31*time.Minute), "jane@example.com")
	s.Require().NoError(err)
	s.False(ok, "proofs expire after the proof TTL")

	s.Require().NoError(s.service.ConsumeProof(s.ctx, "jane@example.com"))
	err = s.service.ConsumeProof(s.ctx, "jane@example.com")
	s.True(dErrors.HasReason(err, dErrors.ReasonContactNotVerified))
}

func (s *OTPServiceSuite) TestSweep() {
	s.notifier.EXPECT().SendCode(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
	_, err := s.service.Issue(s.ctx, "old@example.com", models.ChannelEmail, models.PurposeRegistration)
	s.Require().NoError(err)

	n, err := s.service.Sweep(s.ctx, s.now.Add(time.Hour))
	s.Require().NoError(err)
	s.Equal(1, n)
}

func (s *OTPServiceSuite) TestRandomDigits() {
	for i := 0; i < 50; i++ {
		code, err := RandomDigits(6)
		s.Require().NoError(err)
		s.Len(code, 6)
		for _, c := range code {
			s.True(c >= '0' && c <= '9')
		}
	}
}
