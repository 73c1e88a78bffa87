package documents

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// Account is the identity/session surface of the hosted platform. Its
// behavior is the platform's documented API; Pedium treats it as an
// external collaborator and only passes requests through.
type Account struct {
	client *Client
}

// Account returns the identity/session sub-client
func (c *Client) Account() *Account {
	return &Account{client: c}
}

// AccountUser is the platform's view of a registered user
type AccountUser struct {
	ID           string            `json:"$id"`
	Name         string            `json:"name"`
	Email        string            `json:"email"`
	Registration time.Time         `json:"registration"`
	Prefs        map[string]string `json:"prefs"`
}

// Session is an authenticated platform session
type Session struct {
	ID     string `json:"$id"`
	UserID string `json:"userId"`
}

// Register creates a user account on the identity service
func (a *Account) Register(ctx context.Context, email, password, name string) (*AccountUser, error) {
	body := map[string]interface{}{
		"userId":   UniqueID(),
		"email":    email,
		"password": password,
		"name":     name,
	}
	var user AccountUser
	if err := a.client.do(ctx, http.MethodPost, "/account", nil, body, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateEmailSession verifies credentials with the identity service and
// opens a session.
func (a *Account) CreateEmailSession(ctx context.Context, email, password string) (*Session, error) {
	body := map[string]interface{}{
		"email":    email,
		"password": password,
	}
	var session Session
	if err := a.client.do(ctx, http.MethodPost, "/account/sessions/email", nil, body, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// DeleteSession closes a platform session
func (a *Account) DeleteSession(ctx context.Context, sessionID string) error {
	path := fmt.Sprintf("/account/sessions/%s", sessionID)
	return a.client.do(ctx, http.MethodDelete, path, nil, nil, nil)
}

// GetUser looks up a user by id through the server API
func (a *Account) GetUser(ctx context.Context, userID string) (*AccountUser, error) {
	var user AccountUser
	if err := a.client.do(ctx, http.MethodGet, "/users/"+userID, nil, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdatePrefs replaces the user's preference key-value store. Pedium
// uses it to persist the avatar URL.
func (a *Account) UpdatePrefs(ctx context.Context, userID string, prefs map[string]string) error {
	body := map[string]interface{}{"prefs": prefs}
	return a.client.do(ctx, http.MethodPatch, "/users/"+userID+"/prefs", nil, body, nil)
}
