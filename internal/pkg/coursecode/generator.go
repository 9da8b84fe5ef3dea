// Package coursecode generates short enrollment codes for courses.
package coursecode

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"github.com/google/uuid"
)

const (
	// Alphabet is the set of characters a code is drawn from
	Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	// DefaultLength is the length of the first candidate codes
	DefaultLength = 6

	// CollisionsPerLength is how many collisions are tolerated before the length grows
	CollisionsPerLength = 3

	// DefaultMaxAttempts bounds the random search before falling back to a UUID slice
	DefaultMaxAttempts = 64

	fallbackLength = 16
)

// Checker reports whether a code is already used by an active course
type Checker interface {
	CodeExists(ctx context.Context, code string) (bool, error)
}

// Generator produces codes unique among active courses at generation time
type Generator struct {
	checker     Checker
	maxAttempts int
	intn        func(n int) (int, error)
}

// Option configures a Generator
type Option func(*Generator)

// WithMaxAttempts overrides DefaultMaxAttempts
func WithMaxAttempts(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.maxAttempts = n
		}
	}
}

// WithRandom replaces the crypto/rand source, mainly for tests
func WithRandom(intn func(n int) (int, error)) Option {
	return func(g *Generator) {
		g.intn = intn
	}
}

// NewGenerator creates a Generator backed by checker
func NewGenerator(checker Checker, opts ...Option) *Generator {
	g := &Generator{
		checker:     checker,
		maxAttempts: DefaultMaxAttempts,
		intn:        cryptoIntn,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func cryptoIntn(n int) (int, error) {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0, err
	}
	return int(v.Int64()), nil
}

// Generate returns a code not used by any active course.
// After CollisionsPerLength collisions the length grows by 1 or 2.
func (g *Generator) Generate(ctx context.Context) (string, error) {
	length := DefaultLength
	collisions := 0

	for attempt := 0; attempt < g.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		code, err := g.random(length)
		if err != nil {
			return "", fmt.Errorf("error generating course code: %w", err)
		}

		exists, err := g.checker.CodeExists(ctx, code)
		if err != nil {
			return "", fmt.Errorf("error checking course code: %w", err)
		}
		if !exists {
			return code, nil
		}

		collisions++
		if collisions >= CollisionsPerLength {
			step, err := g.intn(2)
			if err != nil {
				return "", fmt.Errorf("error generating course code: %w", err)
			}
			length += step + 1
			collisions = 0
		}
	}

	return g.fallback(ctx)
}

func (g *Generator) random(length int) (string, error) {
	var b strings.Builder
	b.Grow(length)
	for i := 0; i < length; i++ {
		idx, err := g.intn(len(Alphabet))
		if err != nil {
			return "", err
		}
		b.WriteByte(Alphabet[idx])
	}
	return b.String(), nil
}

func (g *Generator) fallback(ctx context.Context) (string, error) {
	code := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:fallbackLength]

	exists, err := g.checker.CodeExists(ctx, code)
	if err != nil {
		return "", fmt.Errorf("error checking course code: %w", err)
	}
	if exists {
		return "", fmt.Errorf("could not generate a unique course code after %d attempts", g.maxAttempts)
	}
	return code, nil
}
