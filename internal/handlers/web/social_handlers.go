package web

import (
	"encoding/json"
	"net/http"

	"pedium/internal/middleware"
	"pedium/internal/response"
	"pedium/internal/services"
)

// ToggleLike handles POST /article/{id}/like. The response is always
// 200 when the article exists: a failed commit answers with the
// reverted state and committed=false.
func (h *Handlers) ToggleLike(w http.ResponseWriter, r *http.Request) {
	articleID := r.PathValue("id")
	userID := middleware.GetUserID(r.Context())

	outcome, err := h.services.SocialService.ToggleLike(r.Context(), articleID, userID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]interface{}{
		"likes":     len(outcome.State.LikedBy),
		"liked":     outcome.State.Liked(userID),
		"committed": outcome.Committed,
	})
}

// ToggleFollow handles POST /user/{id}/follow
func (h *Handlers) ToggleFollow(w http.ResponseWriter, r *http.Request) {
	followedID := r.PathValue("id")
	followerID := middleware.GetUserID(r.Context())

	outcome, err := h.services.SocialService.ToggleFollow(r.Context(), followerID, followedID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]interface{}{
		"following": outcome.State.Following,
		"followers": outcome.State.Followers,
		"committed": outcome.Committed,
	})
}

// ListComments handles GET /article/{id}/comments
func (h *Handlers) ListComments(w http.ResponseWriter, r *http.Request) {
	comments, err := h.services.SocialService.ListComments(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, comments)
}

// AddComment handles POST /article/{id}/comments. As with likes, a
// failed commit answers 200 with the reverted list.
func (h *Handlers) AddComment(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request body")
		return
	}

	req := &services.CommentRequest{
		ArticleID:  r.PathValue("id"),
		UserID:     middleware.GetUserID(r.Context()),
		AuthorName: middleware.GetUserName(r.Context()),
		Content:    body.Content,
	}

	outcome, err := h.services.SocialService.AddComment(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]interface{}{
		"comments":  outcome.State.Comments,
		"committed": outcome.Committed,
	})
}

// Health handles GET /health
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	health := h.services.HealthCheck(r.Context())
	status := http.StatusOK
	if health.Status != "healthy" {
		status = http.StatusServiceUnavailable
	}
	response.JSON(w, status, health)
}
