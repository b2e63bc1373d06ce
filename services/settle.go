package services

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Outcome pairs an input with the error its attempt returned.
type Outcome[T any] struct {
	Input T
	Err   error
}

// Settle runs fn for every input concurrently and waits for all of them.
// Per-item failures are collected in the result and never cancel siblings.
func Settle[T any](ctx context.Context, inputs []T, limit int, fn func(context.Context, T) error) []Outcome[T] {
	out := make([]Outcome[T], len(inputs))
	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, in := range inputs {
		out[i].Input = in
		g.Go(func() error {
			out[i].Err = fn(ctx, in)
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// Failed returns the outcomes that carry an error.
func Failed[T any](outcomes []Outcome[T]) []Outcome[T] {
	var failed []Outcome[T]
	for _, o := range outcomes {
		if o.Err != nil {
			failed = append(failed, o)
		}
	}
	return failed
}
