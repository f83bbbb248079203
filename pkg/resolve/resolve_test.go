package resolve

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFirstMatch(t *testing.T) {
	var calls []string
	miss := Func("miss", func(ctx context.Context, q string) (int, bool) {
		calls = append(calls, "miss")
		return 0, false
	})
	hit := Func("hit", func(ctx context.Context, q string) (int, bool) {
		calls = append(calls, "hit")
		return len(q), true
	})
	never := Func("never", func(ctx context.Context, q string) (int, bool) {
		calls = append(calls, "never")
		return 99, true
	})

	result, name, ok := FirstMatch(context.Background(), "abc", miss, hit, never)

	assert.True(t, ok)
	assert.Equal(t, 3, result)
	assert.Equal(t, "hit", name)
	assert.Equal(t, []string{"miss", "hit"}, calls)
}

func TestFirstMatchAllMiss(t *testing.T) {
	miss := Func("miss", func(ctx context.Context, q string) (int, bool) { return 0, false })

	result, name, ok := FirstMatch(context.Background(), "abc", miss, miss)

	assert.False(t, ok)
	assert.Zero(t, result)
	assert.Empty(t, name)
}

func TestFirstMatchCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	hit := Func("hit", func(ctx context.Context, q string) (int, bool) {
		called = true
		return 1, true
	})

	_, _, ok := FirstMatch(ctx, "abc", hit)

	assert.False(t, ok)
	assert.False(t, called)
}
