// Package social implements the interaction reducers: like toggles,
// follow toggles, view increments, and comment additions. Each follows
// one protocol: snapshot the current state, apply the change locally,
// commit it remotely, and on commit failure revert to the snapshot. The
// protocol is explicit so the revert contract is testable on its own.
package social

import (
	"context"

	"go.uber.org/zap"
)

// Mutation is one optimistic state change over a state type S.
// Apply must be pure: it derives the optimistic next state without
// touching the snapshot. Commit persists the applied state and returns
// the canonical state, which may differ (a comment placeholder is
// replaced by the server's record, a created follow edge gains its id).
type Mutation[S any] struct {
	Name   string
	Apply  func(snapshot S) S
	Commit func(ctx context.Context, applied S) (S, error)
}

// Outcome reports where a mutation landed. State is the canonical state
// after a successful commit, or the untouched snapshot after a revert.
type Outcome[S any] struct {
	State     S
	Committed bool
}

// Run executes the three-phase protocol. Commit failures never
// propagate: they are logged and answered with the snapshot, so the
// caller's state simply snaps back.
func Run[S any](ctx context.Context, logger *zap.Logger, snapshot S, m Mutation[S]) Outcome[S] {
	applied := m.Apply(snapshot)

	canonical, err := m.Commit(ctx, applied)
	if err != nil {
		logger.Warn("optimistic mutation reverted",
			zap.String("mutation", m.Name),
			zap.Error(err),
		)
		return Outcome[S]{State: snapshot, Committed: false}
	}
	return Outcome[S]{State: canonical, Committed: true}
}
