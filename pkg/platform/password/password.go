// Package password is the single salted adaptive hashing capability for stored secrets.
//
// New hashes use bcrypt by default or argon2id when configured; Verify accepts either
// encoding so records hashed under the other scheme keep working.
package password

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/matthewhartstonge/argon2"
	"golang.org/x/crypto/bcrypt"

	dErrors "votegate/pkg/domain-errors"
)

// Scheme selects the algorithm for new hashes.
type Scheme string

const (
	SchemeBcrypt Scheme = "bcrypt"
	SchemeArgon2 Scheme = "argon2id"
)

// Hasher hashes and verifies secrets.
type Hasher interface {
	Hash(plain string) (string, error)
	Verify(plain, hash string) (bool, error)
}

// Service implements Hasher.
type Service struct {
	scheme     Scheme
	bcryptCost int
	argon      argon2.Config
}

type Option func(*Service)

func WithScheme(s Scheme) Option {
	return func(svc *Service) {
		if s == SchemeArgon2 || s == SchemeBcrypt {
			svc.scheme = s
		}
	}
}

// WithBcryptCost overrides the bcrypt work factor (tests use bcrypt.MinCost).
func WithBcryptCost(cost int) Option {
	return func(svc *Service) {
		svc.bcryptCost = cost
	}
}

func New(opts ...Option) *Service {
	s := &Service{
		scheme:     SchemeBcrypt,
		bcryptCost: bcrypt.DefaultCost,
		argon:      argon2.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Hash creates a salted hash of plain using the configured scheme.
func (s *Service) Hash(plain string) (string, error) {
	if plain == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "password cannot be empty")
	}
	if s.scheme == SchemeArgon2 {
		encoded, err := s.argon.HashEncoded([]byte(plain))
		if err != nil {
			return "", fmt.Errorf("could not hash password: %w", err)
		}
		return string(encoded), nil
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), s.bcryptCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", dErrors.New(dErrors.CodeInvalidInput, "password is too long")
		}
		return "", fmt.Errorf("could not hash password: %w", err)
	}
	return string(hashed), nil
}

// Verify reports whether plain matches hash. A mismatch is (false, nil); only
// malformed hashes return an error.
func (s *Service) Verify(plain, hash string) (bool, error) {
	if hash == "" {
		return false, nil
	}
	if strings.HasPrefix(hash, "$argon2") {
		ok, err := argon2.VerifyEncoded([]byte(plain), []byte(hash))
		if err != nil {
			return false, fmt.Errorf("could not verify password: %w", err)
		}
		return ok, nil
	}
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("could not verify password: %w", err)
	}
}

// GenerateToken creates a random URL-safe secret (dev admin tokens, signing keys).
func GenerateToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("could not generate secret: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
