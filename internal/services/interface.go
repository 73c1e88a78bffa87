// Package services implements Pedium's business logic on top of the
// repositories and external collaborators. Handlers depend on these
// interfaces only; concrete implementations are assembled into a
// ServiceCollection at startup.
package services

import (
	"context"
	"mime/multipart"

	"pedium/internal/blocks"
	"pedium/internal/models"
	"pedium/internal/social"
)

// ===============================
// REQUEST / RESULT TYPES
// ===============================

// PublishRequest is a new article submission
type PublishRequest struct {
	Title      string `validate:"required,min=1,max=200"`
	Content    string `validate:"required"`
	UserID     string `validate:"required"`
	AuthorName string `validate:"required"`
	Category   string `validate:"omitempty,max=50"`

	// CoverImage is optional; when present it is uploaded before the
	// article is written so a failed upload aborts the publish.
	CoverImage       multipart.File
	CoverImageHeader *multipart.FileHeader
}

// ArticleView is an article prepared for display: the stored record
// plus the rendered block tree and derived presentation fields.
type ArticleView struct {
	Article     *models.Article      `json:"article"`
	Nodes       []blocks.DisplayNode `json:"nodes"`
	ReadMinutes int                  `json:"readMinutes"`
	CoverURL    string               `json:"coverUrl,omitempty"`
	PreviewURL  string               `json:"previewUrl,omitempty"`
}

// FeedRequest filters the home feed
type FeedRequest struct {
	Category string
	Search   string
}

// RegisterRequest is an email/password signup
type RegisterRequest struct {
	Name     string `validate:"required,min=2,max=100"`
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=8"`
}

// LoginRequest is an email/password login
type LoginRequest struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

// AuthResult is a successful authentication: the user plus the signed
// session token the handler sets as a cookie.
type AuthResult struct {
	User  *models.UserProfile `json:"user"`
	Token string              `json:"-"`
}

// CommentRequest is a new comment submission
type CommentRequest struct {
	ArticleID  string `validate:"required"`
	UserID     string `validate:"required"`
	AuthorName string `validate:"required"`
	Content    string `validate:"required,min=1,max=2000"`
}

// InteractionState is everything the article page needs about the
// acting user's relationship to an article and its author.
type InteractionState struct {
	Views     int64             `json:"views"`
	Likes     int               `json:"likes"`
	Liked     bool              `json:"liked"`
	Following bool              `json:"following"`
	Followers int64             `json:"followers"`
	Comments  []*models.Comment `json:"comments"`
}

// AuthorProfile is a public author page: identity plus follow counts
// and published work.
type AuthorProfile struct {
	User      *models.UserProfile `json:"user"`
	Followers int64               `json:"followers"`
	Following int64               `json:"following"`
	Articles  []*ArticleView      `json:"articles"`
}

// ===============================
// SERVICE INTERFACES
// ===============================

// ArticleService manages article publishing and retrieval
type ArticleService interface {
	Publish(ctx context.Context, req *PublishRequest) (*ArticleView, error)
	Get(ctx context.Context, id string) (*ArticleView, error)
	Feed(ctx context.Context, req *FeedRequest) ([]*ArticleView, error)
	ByAuthor(ctx context.Context, userID string) ([]*ArticleView, error)
}

// SocialService drives the optimistic interaction mutations. Toggle and
// add operations never fail on commit errors; the returned outcome
// carries the reverted state instead.
type SocialService interface {
	ToggleLike(ctx context.Context, articleID, userID string) (social.Outcome[social.LikeState], error)
	ToggleFollow(ctx context.Context, followerID, followedID string) (social.Outcome[social.FollowState], error)
	RegisterView(ctx context.Context, articleID, deviceID string) (social.Outcome[social.ViewState], error)
	AddComment(ctx context.Context, req *CommentRequest) (social.Outcome[social.CommentState], error)
	ListComments(ctx context.Context, articleID string) ([]*models.Comment, error)
	InteractionState(ctx context.Context, articleID, userID string) (*InteractionState, error)
}

// EnrichmentService generates presentation text for articles. Every
// method is total: when the generative backend is unconfigured or
// failing, a deterministic local fallback is returned instead of an
// error.
type EnrichmentService interface {
	Summarize(ctx context.Context, plainText string) string
	SuggestTags(ctx context.Context, plainText string) []string
	Inspire(ctx context.Context, topic string) string
}

// FileService uploads images and derives their delivery URLs
type FileService interface {
	Upload(ctx context.Context, file multipart.File, header *multipart.FileHeader) (string, error)
	PreviewURL(publicID string) string
	ViewURL(publicID string) string
}

// AuthService manages accounts and sessions
type AuthService interface {
	Register(ctx context.Context, req *RegisterRequest) (*AuthResult, error)
	Login(ctx context.Context, req *LoginRequest) (*AuthResult, error)
	GoogleLoginURL(state string) string
	GoogleCallback(ctx context.Context, code string) (*AuthResult, error)
	Profile(ctx context.Context, userID string) (*models.UserProfile, error)
	AuthorProfile(ctx context.Context, userID string) (*models.UserProfile, error)
}
