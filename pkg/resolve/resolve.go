// Package resolve composes ordered fallback lookups. Each tier is a Strategy
// that either produces a result or reports a miss; FirstMatch runs them in
// order and stops at the first hit.
package resolve

import "context"

// Strategy is one tier of a fallback chain.
type Strategy[Q any, R any] interface {
	Name() string
	Resolve(ctx context.Context, query Q) (R, bool)
}

type funcStrategy[Q any, R any] struct {
	name string
	fn   func(ctx context.Context, query Q) (R, bool)
}

func (s funcStrategy[Q, R]) Name() string { return s.name }

func (s funcStrategy[Q, R]) Resolve(ctx context.Context, query Q) (R, bool) {
	return s.fn(ctx, query)
}

// Func adapts a plain function into a named Strategy.
func Func[Q any, R any](name string, fn func(ctx context.Context, query Q) (R, bool)) Strategy[Q, R] {
	return funcStrategy[Q, R]{name: name, fn: fn}
}

// FirstMatch runs the strategies in order and returns the first hit along with
// the name of the strategy that produced it. A cancelled context stops the chain.
func FirstMatch[Q any, R any](ctx context.Context, query Q, strategies ...Strategy[Q, R]) (R, string, bool) {
	var zero R
	for _, s := range strategies {
		if ctx.Err() != nil {
			return zero, "", false
		}
		if result, ok := s.Resolve(ctx, query); ok {
			return result, s.Name(), true
		}
	}
	return zero, "", false
}
