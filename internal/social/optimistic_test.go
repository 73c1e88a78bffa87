package social

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRunCommitsAppliedState(t *testing.T) {
	logger := zap.NewNop()

	m := Mutation[LikeState]{
		Name:  "test",
		Apply: func(s LikeState) LikeState { return LikeState{LikedBy: append(s.LikedBy, "u2")} },
		Commit: func(_ context.Context, applied LikeState) (LikeState, error) {
			return applied, nil
		},
	}

	outcome := Run(context.Background(), logger, LikeState{LikedBy: []string{"u1"}}, m)
	assert.True(t, outcome.Committed)
	assert.Equal(t, []string{"u1", "u2"}, outcome.State.LikedBy)
}

func TestRunRevertsToSnapshotOnCommitFailure(t *testing.T) {
	logger := zap.NewNop()
	snapshot := LikeState{LikedBy: []string{"u1"}}

	m := Mutation[LikeState]{
		Name:  "test",
		Apply: func(s LikeState) LikeState { return LikeState{LikedBy: []string{}} },
		Commit: func(context.Context, LikeState) (LikeState, error) {
			return LikeState{}, errors.New("store is down")
		},
	}

	outcome := Run(context.Background(), logger, snapshot, m)
	assert.False(t, outcome.Committed)
	assert.Equal(t, snapshot, outcome.State, "failed commit must answer with the snapshot")
}

func TestRunCommitMayReturnCanonicalState(t *testing.T) {
	logger := zap.NewNop()

	m := Mutation[FollowState]{
		Name:  "test",
		Apply: func(s FollowState) FollowState { return FollowState{Following: true, Followers: s.Followers + 1} },
		Commit: func(_ context.Context, applied FollowState) (FollowState, error) {
			applied.EdgeID = "edge-42"
			return applied, nil
		},
	}

	outcome := Run(context.Background(), logger, FollowState{Followers: 3}, m)
	require.True(t, outcome.Committed)
	assert.Equal(t, "edge-42", outcome.State.EdgeID)
	assert.Equal(t, int64(4), outcome.State.Followers)
}
