package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	biostore "votegate/internal/biometric/store"
	"votegate/internal/biometric/matcher"
	biomodels "votegate/internal/biometric/models"
	"votegate/internal/notify"
	otpmodels "votegate/internal/otp/models"
	otpservice "votegate/internal/otp/service"
	otpstore "votegate/internal/otp/store"
	"votegate/internal/platform/logger"
	"votegate/internal/realtime"
	"votegate/internal/voter/idgen"
	"votegate/internal/voter/models"
	voterstore "votegate/internal/voter/store"
	id "votegate/pkg/domain"
	dErrors "votegate/pkg/domain-errors"
	"votegate/pkg/platform/audit"
	auditpublisher "votegate/pkg/platform/audit/publisher"
	auditmemory "votegate/pkg/platform/audit/store/memory"
	"votegate/pkg/platform/password"
	"votegate/pkg/requestcontext"
)

const (
	testEmail = "jane.doe@example.com"
	testPhone = "+15551234567"
)

type ServiceSuite struct {
	suite.Suite
	ctx       context.Context
	now       time.Time
	voters    *voterstore.InMemory
	templates *biostore.InMemory
	emails    *notify.Outbox
	texts     *notify.Outbox
	auditLog  *auditmemory.InMemoryStore
	hub       *realtime.Hub
	admins    *realtime.Client
	service   *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
	s.voters = voterstore.NewInMemory()
	s.templates = biostore.NewInMemory()
	s.emails = notify.NewOutbox(nil)
	s.texts = notify.NewOutbox(nil)
	s.auditLog = auditmemory.NewInMemoryStore()

	codes := otpservice.New(otpstore.NewInMemory(),
		notify.New(s.emails, s.texts, notify.WithLogger(logger.Discard())),
		otpservice.DefaultConfig(),
	)
	s.hub = realtime.NewHub(realtime.WithLogger(logger.Discard()))
	s.admins = realtime.NewClient("admin-1", realtime.RoleAdmin, "admin-1")
	s.hub.Register(s.admins)
	s.hub.Join(s.admins, realtime.RoomAdmins)

	s.service = New(
		s.voters,
		codes,
		s.templates,
		matcher.NewDeterministic(),
		password.New(password.WithBcryptCost(bcrypt.MinCost)),
		idgen.New(s.voters),
		Config{MinimumAge: 18},
		WithAuditPublisher(auditpublisher.NewPublisher(s.auditLog)),
		WithBroadcaster(s.hub),
	)
}

// verifyContact runs the registration code round trip for contact.
func (s *ServiceSuite) verifyContact(contact string) {
	_, err := s.service.RequestContactCode(s.ctx, contact, otpmodels.PurposeRegistration)
	s.Require().NoError(err)
	box := s.emails
	if strings.HasPrefix(contact, "+") {
		box = s.texts
	}
	_, err = s.service.RedeemContactCode(s.ctx, contact, otpmodels.PurposeRegistration, box.LastCode(contact))
	s.Require().NoError(err)
}

func (s *ServiceSuite) input() RegistrationInput {
	return RegistrationInput{
		FirstName:     "Jane",
		LastName:      "Doe",
		Email:         testEmail,
		Phone:         testPhone,
		DateOfBirth:   time.Date(1990, 5, 17, 0, 0, 0, 0, time.UTC),
		NationalID:    "NID-0001",
		Address:       "1 Main St",
		Password:      "correct horse battery",
		EmailVerified: true,
		PhoneVerified: true,
	}
}

func (s *ServiceSuite) register() *models.Voter {
	s.verifyContact(testEmail)
	s.verifyContact(testPhone)
	v, err := s.service.Register(s.ctx, s.input())
	s.Require().NoError(err)
	return v
}

func (s *ServiceSuite) drainAdmins() []realtime.Event {
	var events []realtime.Event
	for {
		select {
		case raw := <-s.admins.Send:
			var ev realtime.Event
			s.Require().NoError(json.Unmarshal(raw, &ev))
			events = append(events, ev)
		default:
			return events
		}
	}
}

func (s *ServiceSuite) TestRequestContactCode() {
	s.Run("registration code is delivered", func() {
		res, err := s.service.RequestContactCode(s.ctx, "Jane.Doe@Example.com", otpmodels.PurposeRegistration)
		s.Require().NoError(err)
		s.True(res.Sent)
		s.True(res.Delivered)
		s.Equal(testEmail, res.Contact)
		s.Equal(otpmodels.ChannelEmail, res.Channel)
		s.Len(s.emails.LastCode(testEmail), 6)
	})

	s.Run("registration for a bound contact is a conflict", func() {
		s.register()
		_, err := s.service.RequestContactCode(s.ctx, testEmail, otpmodels.PurposeRegistration)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
		s.Equal(dErrors.ReasonDuplicateContact, dErrors.ReasonOf(err))
	})

	s.Run("refresh for an unknown contact looks like success but sends nothing", func() {
		res, err := s.service.RequestContactCode(s.ctx, "nobody@example.com", otpmodels.PurposeEmailVerification)
		s.Require().NoError(err)
		s.True(res.Sent)
		s.True(res.Delivered)
		s.Zero(s.emails.Count("nobody@example.com"))
	})

	s.Run("refresh purpose must match the channel", func() {
		_, err := s.service.RequestContactCode(s.ctx, testPhone, otpmodels.PurposeEmailVerification)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("unknown purpose", func() {
		_, err := s.service.RequestContactCode(s.ctx, testEmail, otpmodels.Purpose("login"))
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func (s *ServiceSuite) TestRefreshRequestsLookTheSameForUnknownContacts() {
	s.register()
	limit := otpservice.DefaultConfig().SendLimit

	for i := 1; i <= limit+1; i++ {
		known, knownErr := s.service.RequestContactCode(s.ctx, testEmail, otpmodels.PurposeEmailVerification)
		unknown, unknownErr := s.service.RequestContactCode(s.ctx, "nobody@example.com", otpmodels.PurposeEmailVerification)

		if i <= limit {
			s.Require().NoError(knownErr, "request %d", i)
			s.Require().NoError(unknownErr, "request %d", i)
			s.Equal(known.Sent, unknown.Sent)
			s.Equal(known.Delivered, unknown.Delivered)
			s.Equal(known.ExpiresAt, unknown.ExpiresAt)
			continue
		}
		s.Require().Error(knownErr)
		s.Require().Error(unknownErr)
		s.True(dErrors.HasCode(unknownErr, dErrors.CodeTooManyRequests))
		s.Equal(knownErr.Error(), unknownErr.Error())
	}
	s.Zero(s.emails.Count("nobody@example.com"))
}

func (s *ServiceSuite) TestRedeemContactCode() {
	s.Run("single use", func() {
		_, err := s.service.RequestContactCode(s.ctx, testEmail, otpmodels.PurposeRegistration)
		s.Require().NoError(err)
		code := s.emails.LastCode(testEmail)

		res, err := s.service.RedeemContactCode(s.ctx, testEmail, otpmodels.PurposeRegistration, code)
		s.Require().NoError(err)
		s.True(res.ProofValid)

		_, err = s.service.RedeemContactCode(s.ctx, testEmail, otpmodels.PurposeRegistration, code)
		s.Equal(dErrors.ReasonCodeAlreadyUsed, dErrors.ReasonOf(err))
	})

	s.Run("expired code is rejected even when correct", func() {
		_, err := s.service.RequestContactCode(s.ctx, "late@example.com", otpmodels.PurposeRegistration)
		s.Require().NoError(err)
		code := s.emails.LastCode("late@example.com")

		later := requestcontext.WithTime(context.Background(), s.now.Add(11*time.Minute))
		_, err = s.service.RedeemContactCode(later, "late@example.com", otpmodels.PurposeRegistration, code)
		s.Equal(dErrors.ReasonCodeExpired, dErrors.ReasonOf(err))
	})

	s.Run("wrong code", func() {
		_, err := s.service.RequestContactCode(s.ctx, "wrong@example.com", otpmodels.PurposeRegistration)
		s.Require().NoError(err)
		_, err = s.service.RedeemContactCode(s.ctx, "wrong@example.com", otpmodels.PurposeRegistration, "000000x")
		s.Equal(dErrors.ReasonCodeInvalid, dErrors.ReasonOf(err))
	})

	s.Run("refresh code re-verifies the flag on the voter", func() {
		v := s.register()
		_, err := s.service.RequestContactCode(s.ctx, testPhone, otpmodels.PurposePhoneVerification)
		s.Require().NoError(err)

		res, err := s.service.RedeemContactCode(s.ctx, testPhone, otpmodels.PurposePhoneVerification, s.texts.LastCode(testPhone))
		s.Require().NoError(err)
		s.Require().NotNil(res.Voter)
		s.Equal(v.VoterID, res.Voter.VoterID)
		s.True(res.Voter.PhoneVerified)
	})
}

func (s *ServiceSuite) TestRegister() {
	s.Run("creates a pending voter with contact flags set", func() {
		v := s.register()
		s.Len(v.VoterID.String(), 8)
		s.Equal(models.StatusPending, v.Status)
		s.True(v.EmailVerified)
		s.True(v.PhoneVerified)
		s.False(v.IDVerified)
		s.False(v.FaceVerified)
		s.True(v.IsActive)
		s.NotEqual("correct horse battery", v.PasswordHash)

		events, _ := s.auditLog.ListBySubject(s.ctx, v.VoterID.String())
		s.Require().NotEmpty(events)
		s.Equal(string(audit.EventVoterRegistered), events[0].Action)

		pushed := s.drainAdmins()
		s.Require().NotEmpty(pushed)
		s.Equal(realtime.EventRegistrationCreated, pushed[len(pushed)-1].Type)
	})

	s.Run("proofs are consumed", func() {
		in := s.input()
		in.NationalID = "NID-0002"
		_, err := s.service.Register(s.ctx, in)
		s.Require().Error(err)
	})
}

func (s *ServiceSuite) TestRegisterAgeBoundary() {
	s.verifyContact(testEmail)
	s.verifyContact(testPhone)

	s.Run("one day short of eighteen", func() {
		in := s.input()
		in.DateOfBirth = time.Date(2008, 3, 2, 0, 0, 0, 0, time.UTC)
		_, err := s.service.Register(s.ctx, in)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		s.Equal(dErrors.ReasonUnderage, dErrors.ReasonOf(err))
	})

	s.Run("eighteen today", func() {
		in := s.input()
		in.DateOfBirth = time.Date(2008, 3, 1, 0, 0, 0, 0, time.UTC)
		_, err := s.service.Register(s.ctx, in)
		s.Require().NoError(err)
	})
}

func (s *ServiceSuite) TestRegisterRequiresVerifiedContacts() {
	s.Run("flags false", func() {
		in := s.input()
		in.PhoneVerified = false
		_, err := s.service.Register(s.ctx, in)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))
		s.Equal(dErrors.ReasonContactNotVerified, dErrors.ReasonOf(err))
		s.Contains(dErrors.DetailsOf(err), string(models.StepPhone))
	})

	s.Run("flags claimed without redeemed codes", func() {
		s.verifyContact(testEmail)
		_, err := s.service.Register(s.ctx, s.input())
		s.Equal(dErrors.ReasonContactNotVerified, dErrors.ReasonOf(err))
		s.Equal([]string{string(models.StepPhone)}, dErrors.DetailsOf(err))
	})
}

func (s *ServiceSuite) TestRegisterDuplicateNationalID() {
	s.register()

	s.verifyContact("other@example.com")
	s.verifyContact("+15559876543")
	in := s.input()
	in.Email = "other@example.com"
	in.Phone = "+15559876543"
	_, err := s.service.Register(s.ctx, in)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	s.Equal(dErrors.ReasonDuplicateNationalID, dErrors.ReasonOf(err))
	s.Equal([]string{voterstore.FieldNationalID}, dErrors.DetailsOf(err))
}

func (s *ServiceSuite) TestVerifyDocument() {
	v := s.register()

	s.Run("mismatch", func() {
		_, err := s.service.VerifyDocument(s.ctx, v.VoterID, "NID-9999", v.DateOfBirth)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))

		_, err = s.service.VerifyDocument(s.ctx, v.VoterID, "NID-0001", v.DateOfBirth.AddDate(0, 0, 1))
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("match sets the flag", func() {
		updated, err := s.service.VerifyDocument(s.ctx, v.VoterID, " NID-0001 ", v.DateOfBirth)
		s.Require().NoError(err)
		s.True(updated.IDVerified)
		s.Equal(models.StatusPending, updated.Status)
	})

	s.Run("repeating is harmless", func() {
		updated, err := s.service.VerifyDocument(s.ctx, v.VoterID, "NID-0001", v.DateOfBirth)
		s.Require().NoError(err)
		s.True(updated.IDVerified)
	})

	s.Run("unknown voter", func() {
		_, err := s.service.VerifyDocument(s.ctx, "ZZ99ZZ99", "NID-0001", v.DateOfBirth)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
		s.Equal(dErrors.ReasonVoterNotFound, dErrors.ReasonOf(err))
	})
}

func (s *ServiceSuite) TestEnrollBiometricCompletesRegistration() {
	v := s.register()
	_, err := s.service.AdminVerifyID(s.ctx, v.VoterID, "ops")
	s.Require().NoError(err)
	s.drainAdmins()

	res, err := s.service.EnrollBiometric(s.ctx, v.VoterID, biomodels.Sample{Image: []byte("jane")}, "")
	s.Require().NoError(err)
	s.False(res.Replaced)
	s.True(res.Voter.FaceVerified)
	s.Equal(res.Template.ID, res.Voter.BiometricRef)
	s.Equal(models.StatusCompleted, res.Voter.Status)
	s.True(res.Voter.FullyVerified())

	active, err := s.templates.FindActive(s.ctx, v.VoterID)
	s.Require().NoError(err)
	s.Equal(res.Template.ID, active.ID)

	events, _ := s.auditLog.ListBySubject(s.ctx, v.VoterID.String())
	var actions []string
	for _, e := range events {
		actions = append(actions, e.Action)
	}
	s.Contains(actions, string(audit.EventFaceEnrolled))
	s.Contains(actions, string(audit.EventVoterCompleted))

	pushed := s.drainAdmins()
	s.Require().NotEmpty(pushed)
	s.Equal(realtime.EventVerificationProgress, pushed[0].Type)
}

func (s *ServiceSuite) TestReEnrollment() {
	v := s.register()
	_, err := s.service.EnrollBiometric(s.ctx, v.VoterID, biomodels.Sample{Image: []byte("first")}, "")
	s.Require().NoError(err)

	s.Run("without the voter's token", func() {
		_, err := s.service.EnrollBiometric(s.ctx, v.VoterID, biomodels.Sample{Image: []byte("second")}, "")
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))

		_, err = s.service.EnrollBiometric(s.ctx, v.VoterID, biomodels.Sample{Image: []byte("second")}, id.VoterID("OTHER123"))
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("with the voter's token replaces the template", func() {
		res, err := s.service.EnrollBiometric(s.ctx, v.VoterID, biomodels.Sample{Image: []byte("second")}, v.VoterID)
		s.Require().NoError(err)
		s.True(res.Replaced)

		prev, err := s.templates.FindPrevious(s.ctx, v.VoterID)
		s.Require().NoError(err)
		s.False(prev.IsActive)
	})
}

func (s *ServiceSuite) TestEnrollBiometricRejections() {
	v := s.register()

	s.Run("unusable sample", func() {
		_, err := s.service.EnrollBiometric(s.ctx, v.VoterID, biomodels.Sample{}, "")
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		s.Equal(dErrors.ReasonSampleUnusable, dErrors.ReasonOf(err))
	})

	s.Run("unknown voter", func() {
		_, err := s.service.EnrollBiometric(s.ctx, "ZZ99ZZ99", biomodels.Sample{Image: []byte("x")}, "")
		s.Equal(dErrors.ReasonVoterNotFound, dErrors.ReasonOf(err))
	})

	s.Run("inactive voter", func() {
		_, err := s.service.Deactivate(s.ctx, v.VoterID, "ops")
		s.Require().NoError(err)
		_, err = s.service.EnrollBiometric(s.ctx, v.VoterID, biomodels.Sample{Image: []byte("x")}, "")
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))
		s.Equal(dErrors.ReasonAccountInactive, dErrors.ReasonOf(err))
	})
}

func (s *ServiceSuite) TestDeactivate() {
	v := s.register()

	updated, err := s.service.Deactivate(s.ctx, v.VoterID, "ops")
	s.Require().NoError(err)
	s.False(updated.IsActive)

	_, err = s.service.Deactivate(s.ctx, v.VoterID, "ops")
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))

	_, err = s.service.AdminVerifyID(s.ctx, v.VoterID, "ops")
	s.Equal(dErrors.ReasonAccountInactive, dErrors.ReasonOf(err))
}
