package models

import (
	"crypto/subtle"
	"errors"
	"strings"
	"time"

	dErrors "votegate/pkg/domain-errors"
	"votegate/pkg/platform/sentinel"
)

// Purpose distinguishes what a code proves.
type Purpose string

const (
	// PurposeRegistration proves possession of a contact before the voter exists.
	PurposeRegistration Purpose = "registration"
	// PurposeEmailVerification re-verifies the email of an existing voter.
	PurposeEmailVerification Purpose = "email_verification"
	// PurposePhoneVerification re-verifies the phone of an existing voter.
	PurposePhoneVerification Purpose = "phone_verification"
)

func (p Purpose) IsValid() bool {
	switch p {
	case PurposeRegistration, PurposeEmailVerification, PurposePhoneVerification:
		return true
	}
	return false
}

// RequiredChannel returns the channel a refresh purpose is bound to.
// Registration accepts either channel and returns ok=false.
func (p Purpose) RequiredChannel() (Channel, bool) {
	switch p {
	case PurposeEmailVerification:
		return ChannelEmail, true
	case PurposePhoneVerification:
		return ChannelPhone, true
	}
	return "", false
}

// Channel is the delivery medium implied by a contact.
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelPhone Channel = "phone"
)

// NormalizeContact lower-cases emails and strips phone formatting down to digits with an
// optional leading +. Anything that is neither an email nor an 8-15 digit phone is rejected.
func NormalizeContact(raw string) (string, Channel, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", "", dErrors.New(dErrors.CodeValidation, "contact is required")
	}
	if at := strings.IndexByte(s, '@'); at > 0 && at < len(s)-1 && strings.Count(s, "@") == 1 &&
		strings.Contains(s[at+1:], ".") && !strings.ContainsAny(s, " \t") {
		return strings.ToLower(s), ChannelEmail, nil
	}

	var b strings.Builder
	for i, r := range s {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' && i == 0:
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '(' || r == ')' || r == '.':
		default:
			return "", "", dErrors.New(dErrors.CodeValidation, "contact must be an email address or phone number")
		}
	}
	phone := b.String()
	digits := strings.TrimPrefix(phone, "+")
	if len(digits) < 8 || len(digits) > 15 {
		return "", "", dErrors.New(dErrors.CodeValidation, "phone number must have 8 to 15 digits")
	}
	return phone, ChannelPhone, nil
}

// ErrMismatch is returned by stores when the presented value does not match the live code.
var ErrMismatch = errors.New("code mismatch")

// Code is a one-time numeric code bound to a (contact, purpose) pair.
//
// Invariants:
//   - at most one live code per (Contact, Purpose)
//   - redeemable iff !Used && ExpiresAt > now && Value matches
//   - reaching MaxAttempts wrong guesses burns the code (Used = true)
type Code struct {
	Contact     string    `json:"contact"`
	Purpose     Purpose   `json:"purpose"`
	Value       string    `json:"value"`
	ExpiresAt   time.Time `json:"expires_at"`
	Used        bool      `json:"used"`
	Attempts    int       `json:"attempts"`
	MaxAttempts int       `json:"max_attempts"`
	CreatedAt   time.Time `json:"created_at"`
}

// Key identifies the (contact, purpose) slot a code occupies.
func Key(contact string, purpose Purpose) string {
	return string(purpose) + ":" + contact
}

func (c *Code) Key() string { return Key(c.Contact, c.Purpose) }

func (c *Code) IsExpired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}

// IsStale reports whether the code can no longer be redeemed and may be purged.
func (c *Code) IsStale(now time.Time) bool {
	return c.Used || c.IsExpired(now)
}

// Redeem applies one redemption attempt. Used and expired are checked before the value,
// so a replayed or late correct code is reported as such. A wrong value counts an attempt.
// Errors are store sentinels: ErrAlreadyUsed, ErrExpired or ErrMismatch.
func (c *Code) Redeem(value string, now time.Time) error {
	if c.Used {
		return sentinel.ErrAlreadyUsed
	}
	if c.IsExpired(now) {
		return sentinel.ErrExpired
	}
	if subtle.ConstantTimeCompare([]byte(c.Value), []byte(value)) != 1 {
		c.Attempts++
		if c.MaxAttempts > 0 && c.Attempts >= c.MaxAttempts {
			c.Used = true
		}
		return ErrMismatch
	}
	c.Used = true
	return nil
}

// Proof records that a registration code for Contact was redeemed.
type Proof struct {
	Contact   string    `json:"contact"`
	ExpiresAt time.Time `json:"expires_at"`
}
