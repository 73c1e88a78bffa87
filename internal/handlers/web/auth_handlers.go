package web

import (
	"encoding/json"
	"net/http"

	"github.com/gofrs/uuid"
	"go.uber.org/zap"

	"pedium/internal/middleware"
	"pedium/internal/response"
	"pedium/internal/services"
)

// oauthStateCookie carries the CSRF state across the Google redirect
const oauthStateCookie = "pedium_oauth_state"

// Signup handles POST /signup
func (h *Handlers) Signup(w http.ResponseWriter, r *http.Request) {
	var req services.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request body")
		return
	}

	result, err := h.services.AuthService.Register(r.Context(), &req)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.setSessionCookie(w, result.Token)
	response.JSON(w, http.StatusCreated, result.User)
}

// Login handles POST /login
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req services.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request body")
		return
	}

	result, err := h.services.AuthService.Login(r.Context(), &req)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.setSessionCookie(w, result.Token)
	response.JSON(w, http.StatusOK, result.User)
}

// Logout handles POST /logout
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	h.clearSessionCookie(w)
	response.JSON(w, http.StatusOK, map[string]string{"status": "signed out"})
}

// GoogleLogin handles GET /auth/google: it parks a CSRF state in a
// cookie and redirects to the consent page.
func (h *Handlers) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	state, err := uuid.NewV4()
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to start sign-in")
		return
	}

	url := h.services.AuthService.GoogleLoginURL(state.String())
	if url == "" {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "google sign-in is not configured")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state.String(),
		Path:     "/",
		MaxAge:   600,
		HttpOnly: true,
		Secure:   h.cfg.Auth.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}

// GoogleCallback handles GET /auth/google/callback
func (h *Handlers) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	stateCookie, err := r.Cookie(oauthStateCookie)
	if err != nil || stateCookie.Value == "" || stateCookie.Value != r.URL.Query().Get("state") {
		response.Error(w, http.StatusUnauthorized, "UNAUTHORIZED", "sign-in state mismatch")
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		response.Error(w, http.StatusUnauthorized, "UNAUTHORIZED", "sign-in was cancelled")
		return
	}

	result, err := h.services.AuthService.GoogleCallback(r.Context(), code)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.setSessionCookie(w, result.Token)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Me handles GET /me: the authenticated user's own profile
func (h *Handlers) Me(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	profile, err := h.services.AuthService.Profile(r.Context(), userID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, profile)
}

// AuthorPage handles GET /user/{id}: the public author profile with
// follow counts and published articles.
func (h *Handlers) AuthorPage(w http.ResponseWriter, r *http.Request) {
	authorID := r.PathValue("id")

	profile, err := h.services.AuthService.AuthorProfile(r.Context(), authorID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	articles, err := h.services.ArticleService.ByAuthor(r.Context(), authorID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	followers, err := h.services.Repositories.Follows.CountFollowers(r.Context(), authorID)
	if err != nil {
		h.logger.Warn("follower count unavailable", zap.String("author_id", authorID), zap.Error(err))
	}
	following, err := h.services.Repositories.Follows.CountFollowing(r.Context(), authorID)
	if err != nil {
		h.logger.Warn("following count unavailable", zap.String("author_id", authorID), zap.Error(err))
	}

	response.JSON(w, http.StatusOK, &services.AuthorProfile{
		User:      profile,
		Followers: followers,
		Following: following,
		Articles:  articles,
	})
}
