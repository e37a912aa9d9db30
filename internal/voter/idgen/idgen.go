// Package idgen generates public voter identifiers.
//
// A candidate is 8 characters from A-Z0-9 with at least one letter and one digit.
// The first candidate is random; on collision the generator keeps its first six
// characters and appends the attempt number ("01", "02", ...) up to MaxAttempts.
// After that it falls back to a clock-derived id ("T" + base36 millis + 2 random),
// which is also checked before being returned. Random candidates never start with
// the fallback prefix, so the two schemes cannot produce the same id.
package idgen

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	id "votegate/pkg/domain"
	dErrors "votegate/pkg/domain-errors"
)

const (
	MaxAttempts      = 10
	FallbackAttempts = 3

	letters  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	digits   = "0123456789"
	alphabet = letters + digits

	fallbackPrefix = 'T'
	// leadLetters and leadAlphabet exclude fallbackPrefix.
	leadLetters  = "ABCDEFGHIJKLMNOPQRSUVWXYZ"
	leadAlphabet = leadLetters + digits
)

// Checker reports whether a voter id is already taken.
type Checker interface {
	ExistsVoterID(ctx context.Context, voterID id.VoterID) (bool, error)
}

type Generator struct {
	exists Checker
	intN   func(n int) int
	now    func() time.Time
}

type Option func(*Generator)

// WithRand replaces the random source (tests).
func WithRand(intN func(n int) int) Option {
	return func(g *Generator) {
		if intN != nil {
			g.intN = intN
		}
	}
}

// WithClock replaces the wall clock used by the fallback scheme.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) {
		if now != nil {
			g.now = now
		}
	}
}

func New(exists Checker, opts ...Option) *Generator {
	g := &Generator{exists: exists, intN: rand.IntN, now: time.Now}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate returns an unused voter id, or a GenerationExhausted error once both the
// retry and fallback budgets are spent.
func (g *Generator) Generate(ctx context.Context) (id.VoterID, error) {
	base := g.randomBase()
	for attempt := 0; attempt < MaxAttempts; attempt++ {
		candidate := base
		if attempt > 0 {
			candidate = base[:id.VoterIDLength-2] + fmt.Sprintf("%02d", attempt)
		}
		ok, err := g.available(ctx, candidate)
		if err != nil {
			return "", err
		}
		if ok {
			return id.VoterID(candidate), nil
		}
	}

	for i := 0; i < FallbackAttempts; i++ {
		candidate := g.fallback()
		ok, err := g.available(ctx, candidate)
		if err != nil {
			return "", err
		}
		if ok {
			return id.VoterID(candidate), nil
		}
	}
	return "", dErrors.New(dErrors.CodeInternal, "could not allocate a voter id").
		WithReason(dErrors.ReasonGenerationExhausted)
}

func (g *Generator) available(ctx context.Context, candidate string) (bool, error) {
	taken, err := g.exists.ExistsVoterID(ctx, id.VoterID(candidate))
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check voter id")
	}
	return !taken, nil
}

// randomBase builds a random candidate whose first six characters already hold a
// letter, so suffixed retries keep the letter guarantee.
func (g *Generator) randomBase() string {
	b := make([]byte, id.VoterIDLength)
	b[0] = leadAlphabet[g.intN(len(leadAlphabet))]
	for i := 1; i < len(b); i++ {
		b[i] = alphabet[g.intN(len(alphabet))]
	}
	if !strings.ContainsAny(string(b[:id.VoterIDLength-2]), letters) {
		b[0] = leadLetters[g.intN(len(leadLetters))]
	}
	if !strings.ContainsAny(string(b), digits) {
		b[len(b)-1] = digits[g.intN(len(digits))]
	}
	return string(b)
}

func (g *Generator) fallback() string {
	stamp := strings.ToUpper(strconv.FormatInt(g.now().UnixMilli(), 36))
	if len(stamp) > 5 {
		stamp = stamp[len(stamp)-5:]
	}
	stamp = strings.Repeat("0", 5-len(stamp)) + stamp

	b := append([]byte{fallbackPrefix}, stamp...)
	for i := 0; i < 2; i++ {
		b = append(b, alphabet[g.intN(len(alphabet))])
	}
	if !strings.ContainsAny(string(b), digits) {
		b[len(b)-1] = digits[g.intN(len(digits))]
	}
	return string(b)
}
