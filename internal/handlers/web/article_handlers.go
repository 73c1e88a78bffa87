package web

import (
	"net/http"

	"go.uber.org/zap"

	"pedium/internal/middleware"
	"pedium/internal/response"
	"pedium/internal/services"
)

// Feed handles GET /: the home feed, optionally filtered by a category
// tag and a search term over titles and summaries.
func (h *Handlers) Feed(w http.ResponseWriter, r *http.Request) {
	search := r.URL.Query().Get("q")
	if search == "" {
		search = r.URL.Query().Get("search")
	}
	req := &services.FeedRequest{
		Category: r.URL.Query().Get("category"),
		Search:   search,
	}

	articles, err := h.services.ArticleService.Feed(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, articles)
}

// Publish handles POST /write: a multipart submission with the title,
// the serialized block content, an optional category, and an optional
// cover image.
func (h *Handlers) Publish(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(h.cfg.Storage.MaxFileSize + 1<<20); err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid multipart form")
		return
	}

	req := &services.PublishRequest{
		Title:      r.FormValue("title"),
		Content:    r.FormValue("content"),
		Category:   r.FormValue("category"),
		UserID:     middleware.GetUserID(r.Context()),
		AuthorName: middleware.GetUserName(r.Context()),
	}

	if file, header, err := r.FormFile("coverImage"); err == nil {
		defer file.Close()
		req.CoverImage = file
		req.CoverImageHeader = header
	}

	view, err := h.services.ArticleService.Publish(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, view)
}

// Article handles GET /article/{id}: the reading page payload. Fetching
// an article registers a view for the requesting device and returns the
// interaction state alongside the rendered content.
func (h *Handlers) Article(w http.ResponseWriter, r *http.Request) {
	articleID := r.PathValue("id")
	userID := middleware.GetUserID(r.Context())

	view, err := h.services.ArticleService.Get(r.Context(), articleID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	device := h.deviceID(w, r)
	viewOutcome, err := h.services.SocialService.RegisterView(r.Context(), articleID, device)
	if err != nil {
		h.logger.Warn("view registration failed", zap.String("article_id", articleID), zap.Error(err))
	}

	state, err := h.services.SocialService.InteractionState(r.Context(), articleID, userID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	if viewOutcome.Committed {
		state.Views = viewOutcome.State.Views
	}

	response.JSON(w, http.StatusOK, map[string]interface{}{
		"article":      view,
		"interactions": state,
	})
}

// Inspire handles GET /inspire: a writing prompt for the editor page,
// optionally themed by a topic query parameter.
func (h *Handlers) Inspire(w http.ResponseWriter, r *http.Request) {
	quote := h.services.EnrichmentService.Inspire(r.Context(), r.URL.Query().Get("topic"))
	response.JSON(w, http.StatusOK, map[string]string{"quote": quote})
}
