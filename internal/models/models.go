// Package models defines Pedium's domain records as they are stored in
// (and decoded from) the hosted document store. The $-prefixed JSON tags
// map the store's system attributes.
package models

import "time"

// Article is a published story. CreatedAt is server-assigned and
// immutable; Views is monotonically non-decreasing and server
// authoritative; LikedBy holds the unique ids of liking users.
type Article struct {
	ID           string    `json:"$id"`
	Title        string    `json:"title"`
	Content      string    `json:"content"` // serialized block document (or legacy plain text)
	Summary      string    `json:"summary"`
	UserID       string    `json:"userId"`
	AuthorName   string    `json:"authorName"`
	Tags         []string  `json:"tags"`
	CoverImageID string    `json:"coverImageId,omitempty"`
	Views        int64     `json:"views"`
	LikedBy      []string  `json:"likedBy"`
	CreatedAt    time.Time `json:"$createdAt"`
}

// Liked reports whether userID is in the article's like set
func (a *Article) Liked(userID string) bool {
	for _, id := range a.LikedBy {
		if id == userID {
			return true
		}
	}
	return false
}

// Comment is a reader response to an article. Comments are created by
// authenticated users and never updated.
type Comment struct {
	ID         string    `json:"$id"`
	ArticleID  string    `json:"articleId"`
	UserID     string    `json:"userId"`
	AuthorName string    `json:"authorName"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"$createdAt"`
}

// FollowEdge is a directed follower → followed relation. At most one
// active edge exists per pair, enforced by a check-then-create at the
// application layer rather than a storage constraint.
type FollowEdge struct {
	ID         string    `json:"$id"`
	FollowerID string    `json:"followerId"`
	FollowedID string    `json:"followedId"`
	CreatedAt  time.Time `json:"$createdAt"`
}

// UserProfile is the identity service's view of a user, plus the
// preferences Pedium stores there.
type UserProfile struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Registration time.Time `json:"registration"`
	AvatarURL    string    `json:"avatarUrl,omitempty"`
}
