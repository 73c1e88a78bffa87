package social

import (
	"context"

	"pedium/internal/models"
)

// LikeState is the like set of one article as the client sees it
type LikeState struct {
	LikedBy []string
}

// Liked reports membership for userID
func (s LikeState) Liked(userID string) bool {
	for _, id := range s.LikedBy {
		if id == userID {
			return true
		}
	}
	return false
}

// ToggleLike builds the like-toggle mutation: the symmetric difference
// of the current set and {userID}. Applying it twice in sequence lands
// on the single-application result, since the second application
// observes the first's outcome. The commit submits the whole
// replacement set.
func ToggleLike(userID string, commit func(ctx context.Context, applied LikeState) (LikeState, error)) Mutation[LikeState] {
	return Mutation[LikeState]{
		Name: "like_toggle",
		Apply: func(snapshot LikeState) LikeState {
			next := make([]string, 0, len(snapshot.LikedBy)+1)
			found := false
			for _, id := range snapshot.LikedBy {
				if id == userID {
					found = true
					continue
				}
				next = append(next, id)
			}
			if !found {
				next = append(next, userID)
			}
			return LikeState{LikedBy: next}
		},
		Commit: commit,
	}
}

// FollowState is the follower relationship between the acting user and
// an author, plus the displayed follower count.
type FollowState struct {
	Following bool
	Followers int64
	EdgeID    string
}

// ToggleFollow builds the follow-toggle mutation: the boolean flips and
// the displayed count moves by one. The edge id is cleared on
// unfollow; a successful follow commit fills in the created (or
// pre-existing) edge's id.
func ToggleFollow(commit func(ctx context.Context, applied FollowState) (FollowState, error)) Mutation[FollowState] {
	return Mutation[FollowState]{
		Name: "follow_toggle",
		Apply: func(snapshot FollowState) FollowState {
			if snapshot.Following {
				return FollowState{Following: false, Followers: snapshot.Followers - 1}
			}
			return FollowState{Following: true, Followers: snapshot.Followers + 1}
		},
		Commit: commit,
	}
}

// ViewState is the displayed view count of one article
type ViewState struct {
	Views int64
}

// IncrementView builds the view-count mutation. The caller only runs it
// when the ViewedSet does not contain the article; the commit writes
// the observed count plus one and records the view in the set.
func IncrementView(commit func(ctx context.Context, applied ViewState) (ViewState, error)) Mutation[ViewState] {
	return Mutation[ViewState]{
		Name: "view_increment",
		Apply: func(snapshot ViewState) ViewState {
			return ViewState{Views: snapshot.Views + 1}
		},
		Commit: commit,
	}
}

// CommentState is the displayed comment list of one article
type CommentState struct {
	Comments []*models.Comment
}

// AddComment builds the comment-add mutation: a locally fabricated
// placeholder is prepended immediately; the commit creates the comment
// remotely and replaces the whole list with a fresh fetch so ids and
// ordering are canonical. On failure the list reverts to the snapshot.
func AddComment(placeholder *models.Comment, commit func(ctx context.Context, applied CommentState) (CommentState, error)) Mutation[CommentState] {
	return Mutation[CommentState]{
		Name: "comment_add",
		Apply: func(snapshot CommentState) CommentState {
			next := make([]*models.Comment, 0, len(snapshot.Comments)+1)
			next = append(next, placeholder)
			next = append(next, snapshot.Comments...)
			return CommentState{Comments: next}
		},
		Commit: commit,
	}
}
