package services

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"pedium/internal/documents"
	"pedium/internal/models"
	"pedium/internal/repositories"
	"pedium/internal/social"
	"pedium/internal/viewed"
)

// socialService drives the optimistic interaction mutations. Each
// operation snapshots the current remote state, runs the mutation, and
// answers with wherever the protocol landed. Snapshot failures (the
// article does not exist, the store is down) are real errors; commit
// failures are not.
type socialService struct {
	articles *repositories.ArticleRepository
	comments *repositories.CommentRepository
	follows  *repositories.FollowRepository
	viewed   *viewed.Store
	validate *validator.Validate
	logger   *zap.Logger
}

// NewSocialService creates the interaction service
func NewSocialService(
	articles *repositories.ArticleRepository,
	comments *repositories.CommentRepository,
	follows *repositories.FollowRepository,
	viewedStore *viewed.Store,
	logger *zap.Logger,
) SocialService {
	return &socialService{
		articles: articles,
		comments: comments,
		follows:  follows,
		viewed:   viewedStore,
		validate: validator.New(),
		logger:   logger,
	}
}

// ToggleLike flips the acting user's membership in the article's like
// set. The whole replacement set is committed; on failure the like
// state snaps back to the snapshot.
func (s *socialService) ToggleLike(ctx context.Context, articleID, userID string) (social.Outcome[social.LikeState], error) {
	var zero social.Outcome[social.LikeState]
	if userID == "" {
		return zero, NewUnauthorizedError("sign in to like articles")
	}

	article, err := s.articles.Get(ctx, articleID)
	if err != nil {
		return zero, translateStoreError(err, "article")
	}

	snapshot := social.LikeState{LikedBy: article.LikedBy}
	mutation := social.ToggleLike(userID, func(ctx context.Context, applied social.LikeState) (social.LikeState, error) {
		if err := s.articles.ReplaceLikes(ctx, articleID, applied.LikedBy); err != nil {
			return social.LikeState{}, err
		}
		return applied, nil
	})
	return social.Run(ctx, s.logger, snapshot, mutation), nil
}

// ToggleFollow flips the follower edge between the acting user and an
// author. A follow commit records the canonical edge id, so the
// matching unfollow can delete it.
func (s *socialService) ToggleFollow(ctx context.Context, followerID, followedID string) (social.Outcome[social.FollowState], error) {
	var zero social.Outcome[social.FollowState]
	if followerID == "" {
		return zero, NewUnauthorizedError("sign in to follow authors")
	}
	if followerID == followedID {
		return zero, NewValidationError("you cannot follow yourself", nil)
	}

	edge, err := s.follows.FindEdge(ctx, followerID, followedID)
	if err != nil {
		return zero, translateStoreError(err, "follow")
	}
	followers, err := s.follows.CountFollowers(ctx, followedID)
	if err != nil {
		return zero, translateStoreError(err, "follow")
	}

	snapshot := social.FollowState{
		Following: edge != nil,
		Followers: followers,
	}
	if edge != nil {
		snapshot.EdgeID = edge.ID
	}

	mutation := social.ToggleFollow(func(ctx context.Context, applied social.FollowState) (social.FollowState, error) {
		if applied.Following {
			created, _, err := s.follows.Create(ctx, followerID, followedID)
			if err != nil {
				return social.FollowState{}, err
			}
			applied.EdgeID = created.ID
			return applied, nil
		}
		if snapshot.EdgeID != "" {
			if err := s.follows.Delete(ctx, snapshot.EdgeID); err != nil {
				if se, ok := documents.AsStoreError(err); !ok || se.Kind != documents.KindNotFound {
					return social.FollowState{}, err
				}
				// already gone, which is the state we wanted
			}
		}
		return applied, nil
	})
	return social.Run(ctx, s.logger, snapshot, mutation), nil
}

// RegisterView counts a view for the article, at most once per device.
// Devices that already viewed the article get the current count back
// uncommitted. The increment writes the observed count plus one and
// marks the device only after the write lands.
func (s *socialService) RegisterView(ctx context.Context, articleID, deviceID string) (social.Outcome[social.ViewState], error) {
	var zero social.Outcome[social.ViewState]

	article, err := s.articles.Get(ctx, articleID)
	if err != nil {
		return zero, translateStoreError(err, "article")
	}

	if deviceID == "" || s.viewed.Seen(ctx, deviceID, articleID) {
		return social.Outcome[social.ViewState]{
			State:     social.ViewState{Views: article.Views},
			Committed: false,
		}, nil
	}

	snapshot := social.ViewState{Views: article.Views}
	mutation := social.IncrementView(func(ctx context.Context, applied social.ViewState) (social.ViewState, error) {
		if err := s.articles.SetViews(ctx, articleID, applied.Views); err != nil {
			return social.ViewState{}, err
		}
		s.viewed.MarkSeen(ctx, deviceID, articleID)
		return applied, nil
	})
	return social.Run(ctx, s.logger, snapshot, mutation), nil
}

// AddComment appends a comment to the article's discussion. The
// mutation prepends a locally fabricated placeholder; the commit
// creates the comment and replaces the list with a fresh fetch so ids
// and ordering are canonical.
func (s *socialService) AddComment(ctx context.Context, req *CommentRequest) (social.Outcome[social.CommentState], error) {
	var zero social.Outcome[social.CommentState]
	if err := s.validate.Struct(req); err != nil {
		return zero, NewValidationError("invalid comment", err)
	}

	current, err := s.comments.ListByArticle(ctx, req.ArticleID)
	if err != nil {
		return zero, translateStoreError(err, "comment")
	}

	placeholder := &models.Comment{
		ID:         "temp-" + documents.UniqueID(),
		ArticleID:  req.ArticleID,
		UserID:     req.UserID,
		AuthorName: req.AuthorName,
		Content:    req.Content,
		CreatedAt:  time.Now(),
	}

	snapshot := social.CommentState{Comments: current}
	mutation := social.AddComment(placeholder, func(ctx context.Context, applied social.CommentState) (social.CommentState, error) {
		if _, err := s.comments.Create(ctx, placeholder); err != nil {
			return social.CommentState{}, err
		}
		fresh, err := s.comments.ListByArticle(ctx, req.ArticleID)
		if err != nil {
			// the comment was created; answer with the applied list
			// rather than failing the whole mutation over the refetch
			s.logger.Warn("comment refetch failed after create", zap.Error(err))
			return applied, nil
		}
		return social.CommentState{Comments: fresh}, nil
	})
	return social.Run(ctx, s.logger, snapshot, mutation), nil
}

// ListComments returns an article's discussion, newest first
func (s *socialService) ListComments(ctx context.Context, articleID string) ([]*models.Comment, error) {
	comments, err := s.comments.ListByArticle(ctx, articleID)
	if err != nil {
		return nil, translateStoreError(err, "comment")
	}
	return comments, nil
}

// InteractionState assembles everything the article page shows about
// likes, follows, views, and comments in one call.
func (s *socialService) InteractionState(ctx context.Context, articleID, userID string) (*InteractionState, error) {
	article, err := s.articles.Get(ctx, articleID)
	if err != nil {
		return nil, translateStoreError(err, "article")
	}

	comments, err := s.comments.ListByArticle(ctx, articleID)
	if err != nil {
		return nil, translateStoreError(err, "comment")
	}

	followers, err := s.follows.CountFollowers(ctx, article.UserID)
	if err != nil {
		return nil, translateStoreError(err, "follow")
	}

	state := &InteractionState{
		Views:     article.Views,
		Likes:     len(article.LikedBy),
		Liked:     article.Liked(userID),
		Followers: followers,
		Comments:  comments,
	}

	if userID != "" && userID != article.UserID {
		edge, err := s.follows.FindEdge(ctx, userID, article.UserID)
		if err != nil {
			return nil, translateStoreError(err, "follow")
		}
		state.Following = edge != nil
	}
	return state, nil
}
