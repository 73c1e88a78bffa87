package repositories

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"pedium/internal/config"
	"pedium/internal/documents"
	"pedium/internal/models"
)

// fakeStore scripts the document store's behavior per call. Handlers
// are consulted in order; the recorded calls let tests assert which
// variants were attempted.
type fakeStore struct {
	createCalls []map[string]interface{}
	listCalls   [][]string

	createFn func(call int, data map[string]interface{}) (*documents.Document, error)
	listFn   func(call int, queries []string) (*documents.DocumentList, error)
	getFn    func(documentID string) (*documents.Document, error)
	updateFn func(documentID string, data map[string]interface{}) (*documents.Document, error)
	deleteFn func(documentID string) error
}

func (f *fakeStore) CreateDocument(_ context.Context, _, _, _ string, data map[string]interface{}) (*documents.Document, error) {
	f.createCalls = append(f.createCalls, data)
	return f.createFn(len(f.createCalls)-1, data)
}

func (f *fakeStore) GetDocument(_ context.Context, _, _, documentID string) (*documents.Document, error) {
	return f.getFn(documentID)
}

func (f *fakeStore) ListDocuments(_ context.Context, _, _ string, queries []string) (*documents.DocumentList, error) {
	f.listCalls = append(f.listCalls, queries)
	return f.listFn(len(f.listCalls)-1, queries)
}

func (f *fakeStore) UpdateDocument(_ context.Context, _, _, documentID string, data map[string]interface{}) (*documents.Document, error) {
	return f.updateFn(documentID, data)
}

func (f *fakeStore) DeleteDocument(_ context.Context, _, _, documentID string) error {
	return f.deleteFn(documentID)
}

func testConfig() config.DocumentsConfig {
	return config.DocumentsConfig{
		DatabaseID:        "db",
		ArticleCollection: "articles",
		CommentCollection: "comments",
		FollowCollection:  "follows",
	}
}

func mustDocument(t *testing.T, payload map[string]interface{}) *documents.Document {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	doc, err := documents.NewDocument(raw)
	require.NoError(t, err)
	return doc
}

func articleDoc(t *testing.T, id string, extra map[string]interface{}) *documents.Document {
	payload := map[string]interface{}{
		"$id":        id,
		"$createdAt": "2026-03-01T10:00:00Z",
		"title":      "a title",
		"content":    "some content",
		"summary":    "a summary",
		"userId":     "u1",
		"authorName": "Ada",
	}
	for k, v := range extra {
		payload[k] = v
	}
	return mustDocument(t, payload)
}

func testArticle() *models.Article {
	return &models.Article{
		Title:      "a title",
		Content:    "some content",
		Summary:    "a summary",
		UserID:     "u1",
		AuthorName: "Ada",
		Tags:       []string{"General"},
	}
}

// ===============================
// ARTICLE REPOSITORY
// ===============================

func TestArticleCreateWritesExtendedFields(t *testing.T) {
	store := &fakeStore{
		createFn: func(_ int, _ map[string]interface{}) (*documents.Document, error) {
			return articleDoc(t, "a1", map[string]interface{}{"views": 0, "likedBy": []string{}}), nil
		},
	}
	repo := NewArticleRepository(store, testConfig(), zap.NewNop())

	article, err := repo.Create(context.Background(), testArticle())
	require.NoError(t, err)
	assert.Equal(t, "a1", article.ID)

	require.Len(t, store.createCalls, 1)
	assert.Contains(t, store.createCalls[0], "views")
	assert.Contains(t, store.createCalls[0], "likedBy")
}

func TestArticleCreateFallsBackOnUnknownAttribute(t *testing.T) {
	store := &fakeStore{
		createFn: func(call int, data map[string]interface{}) (*documents.Document, error) {
			if call == 0 {
				return nil, &documents.StoreError{
					Kind:      documents.KindUnknownAttribute,
					Message:   `Unknown attribute: "views"`,
					Attribute: "views",
				}
			}
			return articleDoc(t, "a1", nil), nil
		},
	}
	repo := NewArticleRepository(store, testConfig(), zap.NewNop())

	article, err := repo.Create(context.Background(), testArticle())
	require.NoError(t, err)
	assert.Equal(t, "a1", article.ID)

	require.Len(t, store.createCalls, 2)
	assert.NotContains(t, store.createCalls[1], "views", "retry must drop the social attributes")
	assert.NotContains(t, store.createCalls[1], "likedBy")
	assert.Contains(t, store.createCalls[1], "title")
}

func TestArticleCreateSurfacesMissingRequiredAttribute(t *testing.T) {
	store := &fakeStore{
		createFn: func(int, map[string]interface{}) (*documents.Document, error) {
			return nil, &documents.StoreError{
				Kind:      documents.KindUnknownAttribute,
				Message:   `Unknown attribute: "summary"`,
				Attribute: "summary",
			}
		},
	}
	repo := NewArticleRepository(store, testConfig(), zap.NewNop())

	_, err := repo.Create(context.Background(), testArticle())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "summary")
}

func TestArticleListRetriesUnsortedOnMissingIndex(t *testing.T) {
	store := &fakeStore{
		listFn: func(call int, queries []string) (*documents.DocumentList, error) {
			if call == 0 {
				return nil, &documents.StoreError{Kind: documents.KindMissingIndex, Message: "index not found"}
			}
			return &documents.DocumentList{
				Total:     1,
				Documents: []*documents.Document{articleDoc(t, "a1", nil)},
			}, nil
		},
	}
	repo := NewArticleRepository(store, testConfig(), zap.NewNop())

	articles, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, articles, 1)

	require.Len(t, store.listCalls, 2)
	assert.Contains(t, store.listCalls[0][0], "orderDesc")
	assert.Empty(t, store.listCalls[1], "fallback must drop the sort clause")
}

func TestArticleDecodeNormalizesNilSlices(t *testing.T) {
	store := &fakeStore{
		getFn: func(string) (*documents.Document, error) {
			return articleDoc(t, "a1", nil), nil
		},
	}
	repo := NewArticleRepository(store, testConfig(), zap.NewNop())

	article, err := repo.Get(context.Background(), "a1")
	require.NoError(t, err)
	assert.NotNil(t, article.LikedBy)
	assert.NotNil(t, article.Tags)
}

// ===============================
// COMMENT REPOSITORY
// ===============================

func TestCommentListFallsBackUnsorted(t *testing.T) {
	store := &fakeStore{
		listFn: func(call int, queries []string) (*documents.DocumentList, error) {
			if call == 0 {
				return nil, &documents.StoreError{Kind: documents.KindMissingIndex, Message: "index not found"}
			}
			return &documents.DocumentList{
				Total: 1,
				Documents: []*documents.Document{mustDocument(t, map[string]interface{}{
					"$id":        "c1",
					"$createdAt": "2026-03-01T10:00:00Z",
					"articleId":  "a1",
					"userId":     "u1",
					"authorName": "Ada",
					"content":    "nice read",
				})},
			}, nil
		},
	}
	repo := NewCommentRepository(store, testConfig(), zap.NewNop())

	comments, err := repo.ListByArticle(context.Background(), "a1")
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "nice read", comments[0].Content)

	require.Len(t, store.listCalls, 2)
	assert.Len(t, store.listCalls[1], 1, "fallback keeps the article filter, drops the sort")
}

// ===============================
// FOLLOW REPOSITORY
// ===============================

func followDoc(t *testing.T, id, follower, followed string) *documents.Document {
	return mustDocument(t, map[string]interface{}{
		"$id":        id,
		"$createdAt": "2026-03-01T10:00:00Z",
		"followerId": follower,
		"followedId": followed,
	})
}

func TestFindEdgeUsesCompoundFilter(t *testing.T) {
	store := &fakeStore{
		listFn: func(_ int, queries []string) (*documents.DocumentList, error) {
			require.Len(t, queries, 2)
			return &documents.DocumentList{
				Total:     1,
				Documents: []*documents.Document{followDoc(t, "e1", "u1", "u2")},
			}, nil
		},
	}
	repo := NewFollowRepository(store, testConfig(), zap.NewNop())

	edge, err := repo.FindEdge(context.Background(), "u1", "u2")
	require.NoError(t, err)
	require.NotNil(t, edge)
	assert.Equal(t, "e1", edge.ID)
}

func TestFindEdgeFiltersClientSideOnMissingIndex(t *testing.T) {
	store := &fakeStore{
		listFn: func(call int, queries []string) (*documents.DocumentList, error) {
			if call == 0 {
				return nil, &documents.StoreError{Kind: documents.KindMissingIndex, Message: "index not found"}
			}
			// single-attribute query returns all of the follower's edges
			require.Len(t, queries, 1)
			return &documents.DocumentList{
				Total: 2,
				Documents: []*documents.Document{
					followDoc(t, "e1", "u1", "u9"),
					followDoc(t, "e2", "u1", "u2"),
				},
			}, nil
		},
	}
	repo := NewFollowRepository(store, testConfig(), zap.NewNop())

	edge, err := repo.FindEdge(context.Background(), "u1", "u2")
	require.NoError(t, err)
	require.NotNil(t, edge)
	assert.Equal(t, "e2", edge.ID)
}

func TestFindEdgeReturnsNilWhenAbsent(t *testing.T) {
	store := &fakeStore{
		listFn: func(int, []string) (*documents.DocumentList, error) {
			return &documents.DocumentList{}, nil
		},
	}
	repo := NewFollowRepository(store, testConfig(), zap.NewNop())

	edge, err := repo.FindEdge(context.Background(), "u1", "u2")
	require.NoError(t, err)
	assert.Nil(t, edge)
}

func TestFollowCreateReturnsExistingEdge(t *testing.T) {
	store := &fakeStore{
		listFn: func(int, []string) (*documents.DocumentList, error) {
			return &documents.DocumentList{
				Total:     1,
				Documents: []*documents.Document{followDoc(t, "e1", "u1", "u2")},
			}, nil
		},
		createFn: func(int, map[string]interface{}) (*documents.Document, error) {
			t.Fatal("create must not run when the edge exists")
			return nil, nil
		},
	}
	repo := NewFollowRepository(store, testConfig(), zap.NewNop())

	edge, created, err := repo.Create(context.Background(), "u1", "u2")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "e1", edge.ID)
}

func TestFollowCreateInsertsNewEdge(t *testing.T) {
	store := &fakeStore{
		listFn: func(int, []string) (*documents.DocumentList, error) {
			return &documents.DocumentList{}, nil
		},
		createFn: func(_ int, data map[string]interface{}) (*documents.Document, error) {
			assert.Equal(t, "u1", data["followerId"])
			assert.Equal(t, "u2", data["followedId"])
			return followDoc(t, "e-new", "u1", "u2"), nil
		},
	}
	repo := NewFollowRepository(store, testConfig(), zap.NewNop())

	edge, created, err := repo.Create(context.Background(), "u1", "u2")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "e-new", edge.ID)
}

func TestCountFollowersUsesListTotal(t *testing.T) {
	store := &fakeStore{
		listFn: func(_ int, queries []string) (*documents.DocumentList, error) {
			// a single-document page is enough; the total carries the count
			require.Len(t, queries, 2)
			return &documents.DocumentList{Total: 42}, nil
		},
	}
	repo := NewFollowRepository(store, testConfig(), zap.NewNop())

	count, err := repo.CountFollowers(context.Background(), "u2")
	require.NoError(t, err)
	assert.Equal(t, int64(42), count)
}
