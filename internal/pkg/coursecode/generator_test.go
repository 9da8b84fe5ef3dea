package coursecode

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var codePattern = regexp.MustCompile(`^[A-Z0-9]+$`)

type setChecker struct {
	mu       sync.Mutex
	codes    map[string]bool
	collide  int // first n lookups report a collision
	lookups  []string
	failWith error
}

func (c *setChecker) CodeExists(_ context.Context, code string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.failWith != nil {
		return false, c.failWith
	}
	c.lookups = append(c.lookups, code)
	if c.collide > 0 {
		c.collide--
		return true, nil
	}
	return c.codes[code], nil
}

func TestGenerate_FreshStore(t *testing.T) {
	checker := &setChecker{codes: map[string]bool{}}
	g := NewGenerator(checker)

	code, err := g.Generate(context.Background())
	require.NoError(t, err)

	assert.Len(t, code, DefaultLength)
	assert.Regexp(t, codePattern, code)
	assert.Len(t, checker.lookups, 1)
}

func TestGenerate_GrowsAfterThreeCollisions(t *testing.T) {
	for i := 0; i < 20; i++ {
		checker := &setChecker{codes: map[string]bool{}, collide: 3}
		g := NewGenerator(checker)

		code, err := g.Generate(context.Background())
		require.NoError(t, err)

		assert.GreaterOrEqual(t, len(code), 7)
		assert.LessOrEqual(t, len(code), 8)
		assert.Regexp(t, codePattern, code)
		for _, looked := range checker.lookups[:3] {
			assert.Len(t, looked, DefaultLength)
		}
	}
}

func TestGenerate_PrePopulatedStore(t *testing.T) {
	// A fixed random source makes the first three candidates identical and taken.
	taken := "AAAAAA"
	checker := &setChecker{codes: map[string]bool{taken: true}}
	g := NewGenerator(checker, WithRandom(func(n int) (int, error) { return 0, nil }))

	code, err := g.Generate(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "AAAAAAA", code)
	assert.Equal(t, []string{taken, taken, taken, "AAAAAAA"}, checker.lookups)
}

func TestGenerate_FallsBackAfterMaxAttempts(t *testing.T) {
	checker := &setChecker{codes: map[string]bool{}, collide: 5}
	g := NewGenerator(checker, WithMaxAttempts(5))

	code, err := g.Generate(context.Background())
	require.NoError(t, err)

	assert.Len(t, code, fallbackLength)
	assert.Regexp(t, `^[A-F0-9]+$`, code)
	assert.Len(t, checker.lookups, 6)
}

func TestGenerate_FallbackCollisionFails(t *testing.T) {
	checker := &setChecker{codes: map[string]bool{}, collide: 3}
	g := NewGenerator(checker, WithMaxAttempts(2))

	_, err := g.Generate(context.Background())
	assert.Error(t, err)
}

func TestGenerate_CheckerError(t *testing.T) {
	boom := errors.New("db down")
	g := NewGenerator(&setChecker{failWith: boom})

	_, err := g.Generate(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestGenerate_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewGenerator(&setChecker{codes: map[string]bool{}}).Generate(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
