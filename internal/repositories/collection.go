// Package repositories wraps the hosted document store behind typed
// façades for articles, comments, and follow edges. Every operation that
// depends on optional schema (extra attributes, sort indexes, compound
// filters) carries a fallback variant so a partially provisioned backend
// degrades instead of failing.
package repositories

import (
	"context"

	"pedium/internal/config"
	"pedium/internal/documents"

	"go.uber.org/zap"
)

// DocumentStore is the slice of the document store client the
// repositories consume; tests substitute a fake.
type DocumentStore interface {
	CreateDocument(ctx context.Context, databaseID, collectionID, documentID string, data map[string]interface{}) (*documents.Document, error)
	GetDocument(ctx context.Context, databaseID, collectionID, documentID string) (*documents.Document, error)
	ListDocuments(ctx context.Context, databaseID, collectionID string, queries []string) (*documents.DocumentList, error)
	UpdateDocument(ctx context.Context, databaseID, collectionID, documentID string, data map[string]interface{}) (*documents.Document, error)
	DeleteDocument(ctx context.Context, databaseID, collectionID, documentID string) error
}

// Collection bundles all repositories for dependency injection
type Collection struct {
	Articles *ArticleRepository
	Comments *CommentRepository
	Follows  *FollowRepository
}

// NewCollection creates all repositories over one store client
func NewCollection(store DocumentStore, cfg config.DocumentsConfig, logger *zap.Logger) *Collection {
	return &Collection{
		Articles: NewArticleRepository(store, cfg, logger),
		Comments: NewCommentRepository(store, cfg, logger),
		Follows:  NewFollowRepository(store, cfg, logger),
	}
}

// sortFallback reports whether a list error warrants retrying the same
// query without its sort clause. Missing indexes are the common case;
// stores that reject the order clause outright are treated the same.
func sortFallback(err error) bool {
	se, ok := documents.AsStoreError(err)
	if !ok {
		return false
	}
	return se.Kind == documents.KindMissingIndex || se.Kind == documents.KindInvalid
}
