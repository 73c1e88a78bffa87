package repositories

import (
	"context"
	"fmt"

	"pedium/internal/config"
	"pedium/internal/documents"
	"pedium/internal/models"

	"go.uber.org/zap"
)

// FollowRepository stores directed follow edges. Pair uniqueness is a
// check-then-create at this layer: the store offers no compound
// uniqueness constraint, so concurrent requests from the same follower
// can still race.
type FollowRepository struct {
	store      DocumentStore
	databaseID string
	collection string
	logger     *zap.Logger
}

// NewFollowRepository creates a follow repository
func NewFollowRepository(store DocumentStore, cfg config.DocumentsConfig, logger *zap.Logger) *FollowRepository {
	return &FollowRepository{
		store:      store,
		databaseID: cfg.DatabaseID,
		collection: cfg.FollowCollection,
		logger:     logger,
	}
}

// FindEdge looks up the edge follower → followed, or nil when absent.
// The exact compound filter needs an index over both attributes; when
// the store reports it missing, all of the follower's edges are fetched
// and filtered here instead.
func (r *FollowRepository) FindEdge(ctx context.Context, followerID, followedID string) (*models.FollowEdge, error) {
	compound := []string{
		documents.Equal("followerId", followerID),
		documents.Equal("followedId", followedID),
	}
	docs, err := r.store.ListDocuments(ctx, r.databaseID, r.collection, compound)
	if err != nil {
		se, ok := documents.AsStoreError(err)
		if !ok || se.Kind != documents.KindMissingIndex {
			return nil, err
		}
		r.logger.Warn("compound follow filter unavailable, filtering client-side", zap.Error(err))
		docs, err = r.store.ListDocuments(ctx, r.databaseID, r.collection, []string{
			documents.Equal("followerId", followerID),
		})
		if err != nil {
			return nil, err
		}
		for _, doc := range docs.Documents {
			edge, err := decodeEdge(doc)
			if err != nil {
				return nil, err
			}
			if edge.FollowedID == followedID {
				return edge, nil
			}
		}
		return nil, nil
	}

	if len(docs.Documents) == 0 {
		return nil, nil
	}
	return decodeEdge(docs.Documents[0])
}

// Create adds the edge follower → followed. An existing edge is
// returned as-is (created=false): repeat follow requests are
// best-effort idempotent, though the existence check is not atomic
// against concurrent creates.
func (r *FollowRepository) Create(ctx context.Context, followerID, followedID string) (*models.FollowEdge, bool, error) {
	existing, err := r.FindEdge(ctx, followerID, followedID)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}

	data := map[string]interface{}{
		"followerId": followerID,
		"followedId": followedID,
	}
	doc, err := r.store.CreateDocument(ctx, r.databaseID, r.collection, documents.UniqueID(), data)
	if err != nil {
		return nil, false, err
	}
	edge, err := decodeEdge(doc)
	if err != nil {
		return nil, false, err
	}
	return edge, true, nil
}

// Delete removes an edge by id
func (r *FollowRepository) Delete(ctx context.Context, edgeID string) error {
	return r.store.DeleteDocument(ctx, r.databaseID, r.collection, edgeID)
}

// CountFollowers returns how many users follow the given user
func (r *FollowRepository) CountFollowers(ctx context.Context, followedID string) (int64, error) {
	docs, err := r.store.ListDocuments(ctx, r.databaseID, r.collection, []string{
		documents.Equal("followedId", followedID),
		documents.Limit(1),
	})
	if err != nil {
		return 0, err
	}
	return docs.Total, nil
}

// CountFollowing returns how many users the given user follows
func (r *FollowRepository) CountFollowing(ctx context.Context, followerID string) (int64, error) {
	docs, err := r.store.ListDocuments(ctx, r.databaseID, r.collection, []string{
		documents.Equal("followerId", followerID),
		documents.Limit(1),
	})
	if err != nil {
		return 0, err
	}
	return docs.Total, nil
}

func decodeEdge(doc *documents.Document) (*models.FollowEdge, error) {
	var edge models.FollowEdge
	if err := doc.Decode(&edge); err != nil {
		return nil, fmt.Errorf("decode follow edge %s: %w", doc.ID, err)
	}
	return &edge, nil
}
