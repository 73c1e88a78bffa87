package services

import (
	"context"
	"mime/multipart"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"pedium/internal/config"
	"pedium/internal/documents"
	"pedium/internal/repositories"
)

// stubEnrichment returns canned enrichment output
type stubEnrichment struct {
	summary string
	tags    []string
}

func (s *stubEnrichment) Summarize(context.Context, string) string   { return s.summary }
func (s *stubEnrichment) SuggestTags(context.Context, string) []string { return s.tags }
func (s *stubEnrichment) Inspire(context.Context, string) string      { return "write" }

// stubFiles records uploads and derives predictable URLs
type stubFiles struct {
	uploadID  string
	uploadErr error
	uploaded  int
}

func (s *stubFiles) Upload(context.Context, multipart.File, *multipart.FileHeader) (string, error) {
	s.uploaded++
	return s.uploadID, s.uploadErr
}
func (s *stubFiles) PreviewURL(publicID string) string { return "preview/" + publicID }
func (s *stubFiles) ViewURL(publicID string) string    { return "view/" + publicID }

func newArticleService(t *testing.T, store *scriptedStore, enrich EnrichmentService, files FileService) ArticleService {
	t.Helper()
	cfg := config.DocumentsConfig{DatabaseID: "db", ArticleCollection: "articles"}
	logger := zap.NewNop()
	repo := repositories.NewArticleRepository(store, cfg, logger)
	if enrich == nil {
		enrich = &stubEnrichment{summary: "a summary", tags: []string{"General"}}
	}
	if files == nil {
		files = &stubFiles{}
	}
	return NewArticleService(repo, enrich, files, logger)
}

func TestPublishStoresEnrichedArticle(t *testing.T) {
	var written map[string]interface{}
	store := &scriptedStore{
		createFn: func(_ string, data map[string]interface{}) (*documents.Document, error) {
			written = data
			return rawDocument(t, map[string]interface{}{
				"$id":        "a1",
				"$createdAt": "2026-03-01T10:00:00Z",
				"title":      data["title"],
				"content":    data["content"],
				"summary":    data["summary"],
				"userId":     data["userId"],
				"authorName": data["authorName"],
				"views":      0,
				"likedBy":    []string{},
			}), nil
		},
	}
	enrich := &stubEnrichment{summary: "generated summary", tags: []string{"Go", "Web"}}
	svc := newArticleService(t, store, enrich, nil)

	view, err := svc.Publish(context.Background(), &PublishRequest{
		Title:      "My Story",
		Content:    `{"blocks":[{"type":"paragraph","data":{"text":"hello"}}]}`,
		UserID:     "u1",
		AuthorName: "Ada",
	})
	require.NoError(t, err)

	assert.Equal(t, "generated summary", written["summary"])
	assert.Equal(t, []string{"Go", "Web"}, written["tags"])
	assert.Equal(t, "a1", view.Article.ID)
	require.Len(t, view.Nodes, 1)
	assert.Equal(t, "hello", view.Nodes[0].Text)
}

func TestPublishPutsCategoryFirst(t *testing.T) {
	var written map[string]interface{}
	store := &scriptedStore{
		createFn: func(_ string, data map[string]interface{}) (*documents.Document, error) {
			written = data
			return rawDocument(t, map[string]interface{}{"$id": "a1", "$createdAt": "2026-03-01T10:00:00Z"}), nil
		},
	}
	enrich := &stubEnrichment{summary: "s", tags: []string{"Go", "Technology"}}
	svc := newArticleService(t, store, enrich, nil)

	_, err := svc.Publish(context.Background(), &PublishRequest{
		Title:      "t",
		Content:    "c",
		UserID:     "u1",
		AuthorName: "Ada",
		Category:   "technology",
	})
	require.NoError(t, err)

	// the chosen category leads and is not duplicated by the generated tag
	assert.Equal(t, []string{"technology", "Go"}, written["tags"])
}

func TestPublishRejectsMissingTitle(t *testing.T) {
	svc := newArticleService(t, &scriptedStore{}, nil, nil)
	_, err := svc.Publish(context.Background(), &PublishRequest{
		Content:    "c",
		UserID:     "u1",
		AuthorName: "Ada",
	})
	assert.True(t, IsErrorType(err, "VALIDATION_ERROR"))
}

func TestPublishTranslatesSchemaDrift(t *testing.T) {
	store := &scriptedStore{
		createFn: func(string, map[string]interface{}) (*documents.Document, error) {
			return nil, &documents.StoreError{
				Kind:      documents.KindUnknownAttribute,
				Message:   `Unknown attribute: "summary"`,
				Attribute: "summary",
			}
		},
	}
	svc := newArticleService(t, store, nil, nil)

	_, err := svc.Publish(context.Background(), &PublishRequest{
		Title:      "t",
		Content:    "c",
		UserID:     "u1",
		AuthorName: "Ada",
	})
	require.Error(t, err)
	se := GetServiceError(err)
	assert.Equal(t, "SCHEMA_DRIFT", se.Type)
	assert.Contains(t, se.Message, "summary")
}

func feedStore(t *testing.T) *scriptedStore {
	return &scriptedStore{
		listFn: func(_ string, _ []string) (*documents.DocumentList, error) {
			return &documents.DocumentList{Total: 2, Documents: []*documents.Document{
				rawDocument(t, map[string]interface{}{
					"$id": "a1", "$createdAt": "2026-03-02T10:00:00Z",
					"title": "Learning Go", "content": "c", "summary": "about golang",
					"userId": "u1", "authorName": "Ada", "tags": []string{"Go"},
				}),
				rawDocument(t, map[string]interface{}{
					"$id": "a2", "$createdAt": "2026-03-01T10:00:00Z",
					"title": "Gardening", "content": "c", "summary": "roses",
					"userId": "u2", "authorName": "Bo", "tags": []string{"Hobby"},
				}),
			}}, nil
		},
	}
}

func TestFeedFiltersByCategoryTag(t *testing.T) {
	svc := newArticleService(t, feedStore(t), nil, nil)

	views, err := svc.Feed(context.Background(), &FeedRequest{Category: "go"})
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "a1", views[0].Article.ID)
}

func TestFeedSearchesTitleAndSummary(t *testing.T) {
	svc := newArticleService(t, feedStore(t), nil, nil)

	byTitle, err := svc.Feed(context.Background(), &FeedRequest{Search: "garden"})
	require.NoError(t, err)
	require.Len(t, byTitle, 1)
	assert.Equal(t, "a2", byTitle[0].Article.ID)

	bySummary, err := svc.Feed(context.Background(), &FeedRequest{Search: "golang"})
	require.NoError(t, err)
	require.Len(t, bySummary, 1)
	assert.Equal(t, "a1", bySummary[0].Article.ID)
}

func TestFeedWithoutFiltersReturnsEverything(t *testing.T) {
	svc := newArticleService(t, feedStore(t), nil, nil)

	views, err := svc.Feed(context.Background(), &FeedRequest{})
	require.NoError(t, err)
	assert.Len(t, views, 2)
}

func TestGetTranslatesNotFound(t *testing.T) {
	store := &scriptedStore{
		getFn: func(_, _ string) (*documents.Document, error) {
			return nil, &documents.StoreError{Kind: documents.KindNotFound, StatusCode: 404, Message: "gone"}
		},
	}
	svc := newArticleService(t, store, nil, nil)

	_, err := svc.Get(context.Background(), "missing")
	assert.True(t, IsNotFoundError(err))
}
