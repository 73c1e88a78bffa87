package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"pedium/internal/config"
	"pedium/internal/documents"
	"pedium/internal/models"
)

// SessionClaims is the JWT payload of a Pedium session cookie
type SessionClaims struct {
	Name string `json:"name"`
	jwt.RegisteredClaims
}

// authService delegates credentials to the platform's identity service
// and manages Pedium's own session tokens. Passwords are never stored
// or verified locally.
type authService struct {
	cfg      config.AuthConfig
	account  *documents.Account
	oauth    *oauth2.Config
	validate *validator.Validate
	http     *http.Client
	logger   *zap.Logger
}

// NewAuthService creates the authentication service
func NewAuthService(cfg config.AuthConfig, account *documents.Account, googleEndpoint oauth2.Endpoint, logger *zap.Logger) AuthService {
	var oauthCfg *oauth2.Config
	if cfg.GoogleClientID != "" {
		oauthCfg = &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     googleEndpoint,
		}
	}
	return &authService{
		cfg:      cfg,
		account:  account,
		oauth:    oauthCfg,
		validate: validator.New(),
		http:     &http.Client{Timeout: 15 * time.Second},
		logger:   logger,
	}
}

// ===============================
// EMAIL / PASSWORD
// ===============================

// Register creates an account with the identity service and opens a
// session for it.
func (s *authService) Register(ctx context.Context, req *RegisterRequest) (*AuthResult, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, NewValidationError("invalid registration details", err)
	}

	user, err := s.account.Register(ctx, req.Email, req.Password, req.Name)
	if err != nil {
		return nil, translateStoreError(err, "account")
	}

	avatar := avatarURL(req.Name)
	if err := s.account.UpdatePrefs(ctx, user.ID, map[string]string{"avatarUrl": avatar}); err != nil {
		// prefs are cosmetic; registration already succeeded
		s.logger.Warn("failed to persist avatar preference", zap.String("user_id", user.ID), zap.Error(err))
	}

	profile := &models.UserProfile{
		ID:           user.ID,
		Name:         user.Name,
		Email:        user.Email,
		Registration: user.Registration,
		AvatarURL:    avatar,
	}
	return s.openSession(profile)
}

// Login verifies credentials with the identity service and opens a
// session.
func (s *authService) Login(ctx context.Context, req *LoginRequest) (*AuthResult, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, NewValidationError("invalid login details", err)
	}

	session, err := s.account.CreateEmailSession(ctx, req.Email, req.Password)
	if err != nil {
		if se, ok := documents.AsStoreError(err); ok && (se.Kind == documents.KindInvalid || se.Kind == documents.KindPermission || se.Kind == documents.KindNotFound) {
			return nil, NewUnauthorizedError("invalid email or password")
		}
		return nil, translateStoreError(err, "session")
	}

	s.closePlatformSession(ctx, session.ID)

	profile, err := s.Profile(ctx, session.UserID)
	if err != nil {
		return nil, err
	}
	return s.openSession(profile)
}

// closePlatformSession drops the identity-service session opened during
// credential verification. Pedium issues its own token; leaving the
// platform session open would accumulate dangling sessions per login.
func (s *authService) closePlatformSession(ctx context.Context, sessionID string) {
	if err := s.account.DeleteSession(ctx, sessionID); err != nil {
		s.logger.Debug("failed to close identity-service session", zap.Error(err))
	}
}

// ===============================
// GOOGLE OAUTH
// ===============================

// GoogleLoginURL returns the consent page URL for the given CSRF state
func (s *authService) GoogleLoginURL(state string) string {
	if s.oauth == nil {
		return ""
	}
	return s.oauth.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

type googleUserInfo struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// GoogleCallback completes the OAuth flow. Google identities are backed
// by a regular identity-service account whose password is derived from
// the Google subject id, so repeat logins land on the same account.
func (s *authService) GoogleCallback(ctx context.Context, code string) (*AuthResult, error) {
	if s.oauth == nil {
		return nil, NewValidationError("google sign-in is not configured", nil)
	}

	token, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, NewUnauthorizedError("google sign-in was not completed")
	}

	info, err := s.fetchGoogleUser(ctx, token)
	if err != nil {
		return nil, err
	}
	if info.Email == "" {
		return nil, NewUnauthorizedError("google account has no email address")
	}

	password := s.derivedPassword(info.ID)
	session, err := s.account.CreateEmailSession(ctx, info.Email, password)
	if err == nil {
		s.closePlatformSession(ctx, session.ID)
		profile, err := s.Profile(ctx, session.UserID)
		if err != nil {
			return nil, err
		}
		return s.openSession(profile)
	}

	// first Google sign-in: provision the backing account
	user, err := s.account.Register(ctx, info.Email, password, info.Name)
	if err != nil {
		return nil, translateStoreError(err, "account")
	}

	avatar := info.Picture
	if avatar == "" {
		avatar = avatarURL(info.Name)
	}
	if err := s.account.UpdatePrefs(ctx, user.ID, map[string]string{"avatarUrl": avatar}); err != nil {
		s.logger.Warn("failed to persist avatar preference", zap.String("user_id", user.ID), zap.Error(err))
	}

	profile := &models.UserProfile{
		ID:           user.ID,
		Name:         user.Name,
		Email:        user.Email,
		Registration: user.Registration,
		AvatarURL:    avatar,
	}
	return s.openSession(profile)
}

func (s *authService) fetchGoogleUser(ctx context.Context, token *oauth2.Token) (*googleUserInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "https://www.googleapis.com/oauth2/v2/userinfo", nil)
	if err != nil {
		return nil, NewInternalError("failed to build userinfo request")
	}
	token.SetAuthHeader(req)

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, NewSetupError("google userinfo endpoint is unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, NewUnauthorizedError(fmt.Sprintf("google userinfo returned %d", resp.StatusCode))
	}

	var info googleUserInfo
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&info); err != nil {
		return nil, NewInternalError("failed to decode google userinfo")
	}
	return &info, nil
}

// derivedPassword maps a Google subject id onto a stable identity
// service password. It never leaves the server.
func (s *authService) derivedPassword(googleID string) string {
	mac := hmac.New(sha256.New, []byte(s.cfg.JWTSecret))
	mac.Write([]byte("google-identity:" + googleID))
	return hex.EncodeToString(mac.Sum(nil))
}

// ===============================
// PROFILES AND SESSIONS
// ===============================

// Profile returns the full profile of a user, email included
func (s *authService) Profile(ctx context.Context, userID string) (*models.UserProfile, error) {
	user, err := s.account.GetUser(ctx, userID)
	if err != nil {
		return nil, translateStoreError(err, "user")
	}
	return &models.UserProfile{
		ID:           user.ID,
		Name:         user.Name,
		Email:        user.Email,
		Registration: user.Registration,
		AvatarURL:    user.Prefs["avatarUrl"],
	}, nil
}

// AuthorProfile returns the public view of a user: the email is
// withheld because author pages are visible to everyone.
func (s *authService) AuthorProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	profile, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	profile.Email = ""
	return profile, nil
}

// openSession signs a session token for the user
func (s *authService) openSession(profile *models.UserProfile) (*AuthResult, error) {
	now := time.Now()
	claims := SessionClaims{
		Name: profile.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   profile.ID,
			Issuer:    "pedium",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.JWTExpiry)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		s.logger.Error("failed to sign session token", zap.Error(err))
		return nil, NewInternalError("failed to open session")
	}
	return &AuthResult{User: profile, Token: token}, nil
}

// avatarURL derives a deterministic generated avatar from the name
func avatarURL(name string) string {
	return "https://api.dicebear.com/7.x/initials/svg?seed=" + url.QueryEscape(name)
}
