package usecases

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// branch is one task of a fan-out. It returns a value, whether that value is a
// substitute for a failed provider call (soft failure), or a hard error.
type branch[T any] func(ctx context.Context) (value T, substituted bool, err error)

// joined is the outcome of a successful fan-out, in branch order.
type joined[T any] struct {
	Values      []T
	Substituted []bool
}

// Substitutions counts branches that recovered with a substitute value.
func (j joined[T]) Substitutions() int {
	n := 0
	for _, s := range j.Substituted {
		if s {
			n++
		}
	}
	return n
}

// runBranches runs every branch concurrently and waits for all of them.
// The first hard failure cancels the shared context and becomes the result.
func runBranches[T any](ctx context.Context, branches ...branch[T]) (joined[T], error) {
	out := joined[T]{
		Values:      make([]T, len(branches)),
		Substituted: make([]bool, len(branches)),
	}

	g, gctx := errgroup.WithContext(ctx)
	for i, b := range branches {
		g.Go(func() error {
			v, sub, err := b(gctx)
			if err != nil {
				return err
			}
			out.Values[i] = v
			out.Substituted[i] = sub
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return joined[T]{}, err
	}
	return out, nil
}
