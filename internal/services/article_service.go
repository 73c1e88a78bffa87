package services

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"pedium/internal/blocks"
	"pedium/internal/models"
	"pedium/internal/repositories"
)

// articleService implements publishing and retrieval. Enrichment runs
// inline during publish; its failure modes are absorbed by the
// enrichment service's fallbacks, so a publish never fails because the
// generative backend is down.
type articleService struct {
	articles   *repositories.ArticleRepository
	enrichment EnrichmentService
	files      FileService
	validate   *validator.Validate
	logger     *zap.Logger
}

// NewArticleService creates the article service
func NewArticleService(
	articles *repositories.ArticleRepository,
	enrichment EnrichmentService,
	files FileService,
	logger *zap.Logger,
) ArticleService {
	return &articleService{
		articles:   articles,
		enrichment: enrichment,
		files:      files,
		validate:   validator.New(),
		logger:     logger,
	}
}

// Publish validates, enriches, and stores a new article. The cover
// image is uploaded first so a failed upload aborts the publish before
// anything is written.
func (s *articleService) Publish(ctx context.Context, req *PublishRequest) (*ArticleView, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, NewValidationError("invalid article submission", err)
	}

	coverID := ""
	if req.CoverImage != nil && req.CoverImageHeader != nil {
		id, err := s.files.Upload(ctx, req.CoverImage, req.CoverImageHeader)
		if err != nil {
			return nil, err
		}
		coverID = id
	}

	plain := blocks.PlainText(req.Content)
	summary := s.enrichment.Summarize(ctx, plain)
	tags := s.enrichment.SuggestTags(ctx, plain)
	if req.Category != "" {
		tags = mergeCategory(req.Category, tags)
	}

	article := &models.Article{
		Title:        req.Title,
		Content:      req.Content,
		Summary:      summary,
		UserID:       req.UserID,
		AuthorName:   req.AuthorName,
		Tags:         tags,
		CoverImageID: coverID,
	}

	created, err := s.articles.Create(ctx, article)
	if err != nil {
		return nil, translateStoreError(err, "article")
	}

	s.logger.Info("article published",
		zap.String("article_id", created.ID),
		zap.String("user_id", created.UserID),
		zap.Int("tags", len(created.Tags)),
	)
	return s.view(created, false), nil
}

// Get fetches one article prepared for the reading page
func (s *articleService) Get(ctx context.Context, id string) (*ArticleView, error) {
	article, err := s.articles.Get(ctx, id)
	if err != nil {
		return nil, translateStoreError(err, "article")
	}
	return s.view(article, false), nil
}

// Feed returns published articles for the home page, optionally
// narrowed to a category tag and a title/summary search term. Filtering
// runs here: the store's queries cover equality and ordering, not
// substring search.
func (s *articleService) Feed(ctx context.Context, req *FeedRequest) ([]*ArticleView, error) {
	articles, err := s.articles.List(ctx)
	if err != nil {
		return nil, translateStoreError(err, "article")
	}

	views := make([]*ArticleView, 0, len(articles))
	for _, article := range articles {
		if req != nil && !matchesFeed(article, req) {
			continue
		}
		views = append(views, s.view(article, true))
	}
	return views, nil
}

// ByAuthor returns one author's articles for their profile page
func (s *articleService) ByAuthor(ctx context.Context, userID string) ([]*ArticleView, error) {
	articles, err := s.articles.ListByAuthor(ctx, userID)
	if err != nil {
		return nil, translateStoreError(err, "article")
	}

	views := make([]*ArticleView, 0, len(articles))
	for _, article := range articles {
		views = append(views, s.view(article, true))
	}
	return views, nil
}

// view assembles the display form of an article. Feed cards carry the
// width-limited preview rendition; the reading page carries the full
// one.
func (s *articleService) view(article *models.Article, preview bool) *ArticleView {
	v := &ArticleView{
		Article:     article,
		Nodes:       blocks.Render(article.Content),
		ReadMinutes: blocks.ReadMinutes(article.Content),
	}
	if article.CoverImageID != "" {
		if preview {
			v.PreviewURL = s.files.PreviewURL(article.CoverImageID)
		} else {
			v.CoverURL = s.files.ViewURL(article.CoverImageID)
		}
	}
	return v
}

// matchesFeed applies the category and search filters
func matchesFeed(article *models.Article, req *FeedRequest) bool {
	if req.Category != "" {
		found := false
		for _, tag := range article.Tags {
			if strings.EqualFold(tag, req.Category) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if req.Search != "" {
		needle := strings.ToLower(req.Search)
		if !strings.Contains(strings.ToLower(article.Title), needle) &&
			!strings.Contains(strings.ToLower(article.Summary), needle) {
			return false
		}
	}
	return true
}

// mergeCategory puts the author's chosen category first in the tag
// list, without duplicating a generated tag.
func mergeCategory(category string, tags []string) []string {
	merged := make([]string, 0, len(tags)+1)
	merged = append(merged, category)
	for _, tag := range tags {
		if strings.EqualFold(tag, category) {
			continue
		}
		merged = append(merged, tag)
	}
	return merged
}
