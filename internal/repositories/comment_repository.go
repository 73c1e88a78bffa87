package repositories

import (
	"context"
	"fmt"

	"pedium/internal/config"
	"pedium/internal/documents"
	"pedium/internal/models"

	"go.uber.org/zap"
)

// CommentRepository stores and lists article comments
type CommentRepository struct {
	store      DocumentStore
	databaseID string
	collection string
	logger     *zap.Logger
}

// NewCommentRepository creates a comment repository
func NewCommentRepository(store DocumentStore, cfg config.DocumentsConfig, logger *zap.Logger) *CommentRepository {
	return &CommentRepository{
		store:      store,
		databaseID: cfg.DatabaseID,
		collection: cfg.CommentCollection,
		logger:     logger,
	}
}

// Create persists a new comment and returns the canonical record with
// its server-assigned id and timestamp.
func (r *CommentRepository) Create(ctx context.Context, comment *models.Comment) (*models.Comment, error) {
	data := map[string]interface{}{
		"articleId":  comment.ArticleID,
		"userId":     comment.UserID,
		"authorName": comment.AuthorName,
		"content":    comment.Content,
	}
	doc, err := r.store.CreateDocument(ctx, r.databaseID, r.collection, documents.UniqueID(), data)
	if err != nil {
		return nil, err
	}
	return decodeComment(doc)
}

// ListByArticle returns an article's comments, newest first when the
// sort index exists.
func (r *CommentRepository) ListByArticle(ctx context.Context, articleID string) ([]*models.Comment, error) {
	filter := []string{documents.Equal("articleId", articleID)}
	sorted := append(append([]string{}, filter...), documents.OrderDesc(createdAtSort))

	docs, err := r.store.ListDocuments(ctx, r.databaseID, r.collection, sorted)
	if err != nil {
		if !sortFallback(err) {
			return nil, err
		}
		r.logger.Warn("comment sort failed (likely missing index), fetching unsorted", zap.Error(err))
		docs, err = r.store.ListDocuments(ctx, r.databaseID, r.collection, filter)
		if err != nil {
			return nil, err
		}
	}

	comments := make([]*models.Comment, 0, len(docs.Documents))
	for _, doc := range docs.Documents {
		comment, err := decodeComment(doc)
		if err != nil {
			return nil, err
		}
		comments = append(comments, comment)
	}
	return comments, nil
}

func decodeComment(doc *documents.Document) (*models.Comment, error) {
	var comment models.Comment
	if err := doc.Decode(&comment); err != nil {
		return nil, fmt.Errorf("decode comment %s: %w", doc.ID, err)
	}
	return &comment, nil
}
