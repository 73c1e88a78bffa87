package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"pedium/internal/cache"
	"pedium/internal/config"
	"pedium/internal/documents"
	"pedium/internal/repositories"
	"pedium/internal/viewed"
)

// scriptedStore fakes the document store underneath the repositories
type scriptedStore struct {
	getFn    func(collectionID, documentID string) (*documents.Document, error)
	listFn   func(collectionID string, queries []string) (*documents.DocumentList, error)
	createFn func(collectionID string, data map[string]interface{}) (*documents.Document, error)
	updateFn func(collectionID, documentID string, data map[string]interface{}) (*documents.Document, error)
	deleteFn func(collectionID, documentID string) error
}

func (s *scriptedStore) CreateDocument(_ context.Context, _, collectionID, _ string, data map[string]interface{}) (*documents.Document, error) {
	return s.createFn(collectionID, data)
}

func (s *scriptedStore) GetDocument(_ context.Context, _, collectionID, documentID string) (*documents.Document, error) {
	return s.getFn(collectionID, documentID)
}

func (s *scriptedStore) ListDocuments(_ context.Context, _, collectionID string, queries []string) (*documents.DocumentList, error) {
	return s.listFn(collectionID, queries)
}

func (s *scriptedStore) UpdateDocument(_ context.Context, _, collectionID, documentID string, data map[string]interface{}) (*documents.Document, error) {
	return s.updateFn(collectionID, documentID, data)
}

func (s *scriptedStore) DeleteDocument(_ context.Context, _, collectionID, documentID string) error {
	return s.deleteFn(collectionID, documentID)
}

func rawDocument(t *testing.T, payload map[string]interface{}) *documents.Document {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	doc, err := documents.NewDocument(raw)
	require.NoError(t, err)
	return doc
}

func storedArticle(t *testing.T, likedBy []string, views int64) *documents.Document {
	return rawDocument(t, map[string]interface{}{
		"$id":        "a1",
		"$createdAt": "2026-03-01T10:00:00Z",
		"title":      "a title",
		"content":    "text",
		"summary":    "sum",
		"userId":     "author-1",
		"authorName": "Ada",
		"views":      views,
		"likedBy":    likedBy,
	})
}

func newSocialService(t *testing.T, store *scriptedStore) SocialService {
	t.Helper()
	cfg := config.DocumentsConfig{
		DatabaseID:        "db",
		ArticleCollection: "articles",
		CommentCollection: "comments",
		FollowCollection:  "follows",
	}
	logger := zap.NewNop()
	repos := repositories.NewCollection(store, cfg, logger)

	c, err := cache.New(config.CacheConfig{Provider: "memory"}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })

	return NewSocialService(repos.Articles, repos.Comments, repos.Follows, viewed.NewStore(c, logger), logger)
}

func TestToggleLikeCommitsNewMember(t *testing.T) {
	var written []string
	store := &scriptedStore{
		getFn: func(_, _ string) (*documents.Document, error) {
			return storedArticle(t, []string{"u1"}, 5), nil
		},
		updateFn: func(_, _ string, data map[string]interface{}) (*documents.Document, error) {
			raw, _ := json.Marshal(data["likedBy"])
			_ = json.Unmarshal(raw, &written)
			return storedArticle(t, written, 5), nil
		},
	}
	svc := newSocialService(t, store)

	outcome, err := svc.ToggleLike(context.Background(), "a1", "u2")
	require.NoError(t, err)
	assert.True(t, outcome.Committed)
	assert.Equal(t, []string{"u1", "u2"}, outcome.State.LikedBy)
	assert.Equal(t, []string{"u1", "u2"}, written, "the whole replacement set is submitted")
}

func TestToggleLikeRevertsWhenCommitFails(t *testing.T) {
	store := &scriptedStore{
		getFn: func(_, _ string) (*documents.Document, error) {
			return storedArticle(t, []string{"u1", "u2"}, 5), nil
		},
		updateFn: func(_, _ string, _ map[string]interface{}) (*documents.Document, error) {
			return nil, &documents.StoreError{Kind: documents.KindUnavailable, Message: "gateway timeout"}
		},
	}
	svc := newSocialService(t, store)

	outcome, err := svc.ToggleLike(context.Background(), "a1", "u2")
	require.NoError(t, err, "commit failures never surface as request errors")
	assert.False(t, outcome.Committed)
	assert.Equal(t, []string{"u1", "u2"}, outcome.State.LikedBy, "state snaps back to the snapshot")
}

func TestToggleLikeRequiresIdentity(t *testing.T) {
	svc := newSocialService(t, &scriptedStore{})
	_, err := svc.ToggleLike(context.Background(), "a1", "")
	assert.True(t, IsErrorType(err, "UNAUTHORIZED"))
}

func TestToggleLikeMissingArticleIsAnError(t *testing.T) {
	store := &scriptedStore{
		getFn: func(_, _ string) (*documents.Document, error) {
			return nil, &documents.StoreError{Kind: documents.KindNotFound, StatusCode: 404, Message: "not found"}
		},
	}
	svc := newSocialService(t, store)

	_, err := svc.ToggleLike(context.Background(), "missing", "u1")
	assert.True(t, IsNotFoundError(err), "snapshot failures are real errors")
}

func TestToggleFollowRejectsSelfFollow(t *testing.T) {
	svc := newSocialService(t, &scriptedStore{})
	_, err := svc.ToggleFollow(context.Background(), "u1", "u1")
	assert.True(t, IsErrorType(err, "VALIDATION_ERROR"))
}

func TestToggleFollowCreatesEdgeAndFillsID(t *testing.T) {
	followerCount := int64(7)
	store := &scriptedStore{
		listFn: func(collectionID string, queries []string) (*documents.DocumentList, error) {
			// no existing edge; the count query sees the current total
			if len(queries) == 2 && queries[1] == documents.Limit(1) {
				return &documents.DocumentList{Total: followerCount}, nil
			}
			return &documents.DocumentList{}, nil
		},
		createFn: func(_ string, data map[string]interface{}) (*documents.Document, error) {
			return rawDocument(t, map[string]interface{}{
				"$id":        "edge-1",
				"$createdAt": "2026-03-01T10:00:00Z",
				"followerId": data["followerId"],
				"followedId": data["followedId"],
			}), nil
		},
	}
	svc := newSocialService(t, store)

	outcome, err := svc.ToggleFollow(context.Background(), "u1", "author-1")
	require.NoError(t, err)
	assert.True(t, outcome.Committed)
	assert.True(t, outcome.State.Following)
	assert.Equal(t, int64(8), outcome.State.Followers)
	assert.Equal(t, "edge-1", outcome.State.EdgeID)
}

func TestToggleFollowRevertsWhenCreateFails(t *testing.T) {
	store := &scriptedStore{
		listFn: func(_ string, queries []string) (*documents.DocumentList, error) {
			if len(queries) == 2 && queries[1] == documents.Limit(1) {
				return &documents.DocumentList{Total: 7}, nil
			}
			return &documents.DocumentList{}, nil
		},
		createFn: func(string, map[string]interface{}) (*documents.Document, error) {
			return nil, errors.New("write refused")
		},
	}
	svc := newSocialService(t, store)

	outcome, err := svc.ToggleFollow(context.Background(), "u1", "author-1")
	require.NoError(t, err)
	assert.False(t, outcome.Committed)
	assert.False(t, outcome.State.Following)
	assert.Equal(t, int64(7), outcome.State.Followers, "count snaps back with the flag")
}

func TestRegisterViewCountsOncePerDevice(t *testing.T) {
	views := int64(10)
	store := &scriptedStore{
		getFn: func(_, _ string) (*documents.Document, error) {
			return storedArticle(t, nil, views), nil
		},
		updateFn: func(_, _ string, data map[string]interface{}) (*documents.Document, error) {
			raw, _ := json.Marshal(data["views"])
			_ = json.Unmarshal(raw, &views)
			return storedArticle(t, nil, views), nil
		},
	}
	svc := newSocialService(t, store)

	first, err := svc.RegisterView(context.Background(), "a1", "device-1")
	require.NoError(t, err)
	assert.True(t, first.Committed)
	assert.Equal(t, int64(11), first.State.Views)

	second, err := svc.RegisterView(context.Background(), "a1", "device-1")
	require.NoError(t, err)
	assert.False(t, second.Committed, "a reload must not count again")
	assert.Equal(t, int64(11), second.State.Views)
}

func TestRegisterViewIgnoresAnonymousDevice(t *testing.T) {
	store := &scriptedStore{
		getFn: func(_, _ string) (*documents.Document, error) {
			return storedArticle(t, nil, 3), nil
		},
	}
	svc := newSocialService(t, store)

	outcome, err := svc.RegisterView(context.Background(), "a1", "")
	require.NoError(t, err)
	assert.False(t, outcome.Committed)
	assert.Equal(t, int64(3), outcome.State.Views)
}

func TestAddCommentReplacesPlaceholderWithCanonicalList(t *testing.T) {
	created := false
	store := &scriptedStore{
		listFn: func(_ string, _ []string) (*documents.DocumentList, error) {
			docs := []*documents.Document{}
			if created {
				docs = append(docs, rawDocument(t, map[string]interface{}{
					"$id":        "c-real",
					"$createdAt": "2026-03-01T10:00:00Z",
					"articleId":  "a1",
					"userId":     "u1",
					"authorName": "Ada",
					"content":    "great post",
				}))
			}
			return &documents.DocumentList{Total: int64(len(docs)), Documents: docs}, nil
		},
		createFn: func(_ string, _ map[string]interface{}) (*documents.Document, error) {
			created = true
			return rawDocument(t, map[string]interface{}{
				"$id":        "c-real",
				"$createdAt": "2026-03-01T10:00:00Z",
				"articleId":  "a1",
				"userId":     "u1",
				"authorName": "Ada",
				"content":    "great post",
			}), nil
		},
	}
	svc := newSocialService(t, store)

	outcome, err := svc.AddComment(context.Background(), &CommentRequest{
		ArticleID:  "a1",
		UserID:     "u1",
		AuthorName: "Ada",
		Content:    "great post",
	})
	require.NoError(t, err)
	assert.True(t, outcome.Committed)
	require.Len(t, outcome.State.Comments, 1)
	assert.Equal(t, "c-real", outcome.State.Comments[0].ID, "the canonical record replaces the placeholder")
}

func TestAddCommentRevertsWhenCreateFails(t *testing.T) {
	store := &scriptedStore{
		listFn: func(string, []string) (*documents.DocumentList, error) {
			return &documents.DocumentList{}, nil
		},
		createFn: func(string, map[string]interface{}) (*documents.Document, error) {
			return nil, errors.New("write refused")
		},
	}
	svc := newSocialService(t, store)

	outcome, err := svc.AddComment(context.Background(), &CommentRequest{
		ArticleID:  "a1",
		UserID:     "u1",
		AuthorName: "Ada",
		Content:    "great post",
	})
	require.NoError(t, err)
	assert.False(t, outcome.Committed)
	assert.Empty(t, outcome.State.Comments)
}

func TestAddCommentValidatesContent(t *testing.T) {
	svc := newSocialService(t, &scriptedStore{})
	_, err := svc.AddComment(context.Background(), &CommentRequest{
		ArticleID:  "a1",
		UserID:     "u1",
		AuthorName: "Ada",
		Content:    "",
	})
	assert.True(t, IsErrorType(err, "VALIDATION_ERROR"))
}

func TestInteractionStateAssemblesEverything(t *testing.T) {
	store := &scriptedStore{
		getFn: func(_, _ string) (*documents.Document, error) {
			return storedArticle(t, []string{"u1", "u2"}, 20), nil
		},
		listFn: func(collectionID string, queries []string) (*documents.DocumentList, error) {
			switch collectionID {
			case "comments":
				return &documents.DocumentList{Total: 1, Documents: []*documents.Document{
					rawDocument(t, map[string]interface{}{
						"$id":        "c1",
						"$createdAt": "2026-03-01T10:00:00Z",
						"articleId":  "a1",
						"userId":     "u2",
						"authorName": "Bo",
						"content":    "insightful",
					}),
				}}, nil
			case "follows":
				if len(queries) == 2 && queries[1] == documents.Limit(1) {
					return &documents.DocumentList{Total: 9}, nil
				}
				return &documents.DocumentList{Total: 1, Documents: []*documents.Document{
					rawDocument(t, map[string]interface{}{
						"$id":        "e1",
						"$createdAt": "2026-03-01T10:00:00Z",
						"followerId": "u1",
						"followedId": "author-1",
					}),
				}}, nil
			default:
				return &documents.DocumentList{}, nil
			}
		},
	}
	svc := newSocialService(t, store)

	state, err := svc.InteractionState(context.Background(), "a1", "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(20), state.Views)
	assert.Equal(t, 2, state.Likes)
	assert.True(t, state.Liked)
	assert.True(t, state.Following)
	assert.Equal(t, int64(9), state.Followers)
	require.Len(t, state.Comments, 1)
}
