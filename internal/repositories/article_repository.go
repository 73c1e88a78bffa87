package repositories

import (
	"context"
	"fmt"

	"pedium/internal/config"
	"pedium/internal/documents"
	"pedium/internal/models"

	"go.uber.org/zap"
)

// createdAtSort is the attribute list operations sort on. It is a
// custom attribute and needs an index; the fallback path covers
// projects that never provisioned one.
const createdAtSort = "createdAt"

// ArticleRepository stores and queries published articles
type ArticleRepository struct {
	store      DocumentStore
	databaseID string
	collection string
	logger     *zap.Logger
}

// NewArticleRepository creates an article repository
func NewArticleRepository(store DocumentStore, cfg config.DocumentsConfig, logger *zap.Logger) *ArticleRepository {
	return &ArticleRepository{
		store:      store,
		databaseID: cfg.DatabaseID,
		collection: cfg.ArticleCollection,
		logger:     logger,
	}
}

// Create persists a new article. The first attempt writes the extended
// field set including the social attributes; if the collection schema
// predates them the store rejects the unknown attribute and the write is
// retried with only the minimal required fields. Articles written that
// way simply have no view counter or like set until the schema catches
// up.
func (r *ArticleRepository) Create(ctx context.Context, article *models.Article) (*models.Article, error) {
	extended := map[string]interface{}{
		"title":      article.Title,
		"content":    article.Content,
		"summary":    article.Summary,
		"userId":     article.UserID,
		"authorName": article.AuthorName,
		"tags":       article.Tags,
		"views":      0,
		"likedBy":    []string{},
	}
	if article.CoverImageID != "" {
		extended["coverImageId"] = article.CoverImageID
	}

	docID := documents.UniqueID()
	doc, err := r.store.CreateDocument(ctx, r.databaseID, r.collection, docID, extended)
	if err == nil {
		return decodeArticle(doc)
	}

	se, ok := documents.AsStoreError(err)
	if !ok || se.Kind != documents.KindUnknownAttribute {
		return nil, err
	}

	r.logger.Warn("article schema missing extended attributes, retrying with minimal field set",
		zap.String("attribute", se.Attribute),
	)

	minimal := map[string]interface{}{
		"title":      article.Title,
		"content":    article.Content,
		"summary":    article.Summary,
		"userId":     article.UserID,
		"authorName": article.AuthorName,
		"tags":       article.Tags,
	}
	doc, err = r.store.CreateDocument(ctx, r.databaseID, r.collection, docID, minimal)
	if err != nil {
		if se, ok := documents.AsStoreError(err); ok && se.Kind == documents.KindUnknownAttribute {
			return nil, fmt.Errorf("article collection schema is missing required attribute %q: %w", se.Attribute, err)
		}
		return nil, err
	}
	return decodeArticle(doc)
}

// Get fetches one article by id
func (r *ArticleRepository) Get(ctx context.Context, id string) (*models.Article, error) {
	doc, err := r.store.GetDocument(ctx, r.databaseID, r.collection, id)
	if err != nil {
		return nil, err
	}
	return decodeArticle(doc)
}

// List returns all articles, newest first when the sort index exists
// and in natural storage order otherwise.
func (r *ArticleRepository) List(ctx context.Context) ([]*models.Article, error) {
	return r.list(ctx, nil)
}

// ListByAuthor returns one author's articles, with the same sort
// fallback as List.
func (r *ArticleRepository) ListByAuthor(ctx context.Context, userID string) ([]*models.Article, error) {
	return r.list(ctx, []string{documents.Equal("userId", userID)})
}

func (r *ArticleRepository) list(ctx context.Context, filters []string) ([]*models.Article, error) {
	sorted := append(append([]string{}, filters...), documents.OrderDesc(createdAtSort))
	docs, err := r.store.ListDocuments(ctx, r.databaseID, r.collection, sorted)
	if err != nil {
		if !sortFallback(err) {
			return nil, err
		}
		r.logger.Warn("article sort failed (likely missing index), fetching unsorted", zap.Error(err))
		docs, err = r.store.ListDocuments(ctx, r.databaseID, r.collection, filters)
		if err != nil {
			return nil, err
		}
	}

	articles := make([]*models.Article, 0, len(docs.Documents))
	for _, doc := range docs.Documents {
		article, err := decodeArticle(doc)
		if err != nil {
			return nil, err
		}
		articles = append(articles, article)
	}
	return articles, nil
}

// ReplaceLikes overwrites the article's like set with the full new
// membership. The store has no per-element set operations, so the
// client-computed set is submitted whole; concurrent togglers can lose
// updates to each other, which is accepted.
func (r *ArticleRepository) ReplaceLikes(ctx context.Context, articleID string, likedBy []string) error {
	if likedBy == nil {
		likedBy = []string{}
	}
	_, err := r.store.UpdateDocument(ctx, r.databaseID, r.collection, articleID, map[string]interface{}{
		"likedBy": likedBy,
	})
	return err
}

// SetViews writes an absolute view count (observed count plus one,
// computed by the caller). Not an atomic increment; concurrent viewers
// can under-count.
func (r *ArticleRepository) SetViews(ctx context.Context, articleID string, views int64) error {
	_, err := r.store.UpdateDocument(ctx, r.databaseID, r.collection, articleID, map[string]interface{}{
		"views": views,
	})
	return err
}

func decodeArticle(doc *documents.Document) (*models.Article, error) {
	var article models.Article
	if err := doc.Decode(&article); err != nil {
		return nil, fmt.Errorf("decode article %s: %w", doc.ID, err)
	}
	if article.LikedBy == nil {
		article.LikedBy = []string{}
	}
	if article.Tags == nil {
		article.Tags = []string{}
	}
	return &article, nil
}
