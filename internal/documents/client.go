package documents

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"pedium/internal/config"

	"github.com/cenkalti/backoff/v4"
	"github.com/gofrs/uuid"
	"go.uber.org/zap"
)

// Client talks to the hosted document store over its REST API. It is
// explicitly constructed and passed by reference so tests can substitute
// the repositories' view of it.
type Client struct {
	endpoint string
	project  string
	apiKey   string

	http   *http.Client
	logger *zap.Logger

	retryInitialDelay time.Duration
	retryMaxElapsed   time.Duration
}

// NewClient creates a document store client from configuration
func NewClient(cfg config.DocumentsConfig, logger *zap.Logger) *Client {
	return &Client{
		endpoint:          strings.TrimRight(cfg.Endpoint, "/"),
		project:           cfg.ProjectID,
		apiKey:            cfg.APIKey,
		http:              &http.Client{Timeout: cfg.RequestTimeout},
		logger:            logger,
		retryInitialDelay: cfg.RetryInitialDelay,
		retryMaxElapsed:   cfg.RetryMaxElapsed,
	}
}

// Document is a stored record: system metadata plus the raw attribute
// payload, decoded on demand into a typed model.
type Document struct {
	ID        string
	CreatedAt time.Time
	raw       json.RawMessage
}

// Decode unmarshals the document's attributes (and $-prefixed system
// fields) into v.
func (d *Document) Decode(v interface{}) error {
	return json.Unmarshal(d.raw, v)
}

// Raw returns the undecoded document payload
func (d *Document) Raw() json.RawMessage { return d.raw }

// NewDocument builds a Document from a raw payload with $id and
// $createdAt metadata. Production documents come from API responses;
// this constructor serves fixtures and fakes.
func NewDocument(raw json.RawMessage) (*Document, error) {
	return parseDocument(raw)
}

// DocumentList is a page of documents with the store-reported total
type DocumentList struct {
	Total     int64
	Documents []*Document
}

// UniqueID generates a document identifier, mirroring the store SDK's
// ID.unique() helper.
func UniqueID() string {
	if id, err := uuid.NewV4(); err == nil {
		return id.String()
	}
	return fmt.Sprintf("doc-%d", time.Now().UnixNano())
}

// CreateDocument creates a document with the given id and attribute set
func (c *Client) CreateDocument(ctx context.Context, databaseID, collectionID, documentID string, data map[string]interface{}) (*Document, error) {
	path := fmt.Sprintf("/databases/%s/collections/%s/documents", databaseID, collectionID)
	body := map[string]interface{}{
		"documentId": documentID,
		"data":       data,
	}
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodPost, path, nil, body, &raw); err != nil {
		return nil, err
	}
	return parseDocument(raw)
}

// GetDocument fetches a single document by id
func (c *Client) GetDocument(ctx context.Context, databaseID, collectionID, documentID string) (*Document, error) {
	path := fmt.Sprintf("/databases/%s/collections/%s/documents/%s", databaseID, collectionID, documentID)
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &raw); err != nil {
		return nil, err
	}
	return parseDocument(raw)
}

// ListDocuments lists documents matching the given serialized queries
func (c *Client) ListDocuments(ctx context.Context, databaseID, collectionID string, queries []string) (*DocumentList, error) {
	path := fmt.Sprintf("/databases/%s/collections/%s/documents", databaseID, collectionID)
	params := url.Values{}
	for _, q := range queries {
		params.Add("queries[]", q)
	}

	var envelope struct {
		Total     int64             `json:"total"`
		Documents []json.RawMessage `json:"documents"`
	}
	if err := c.do(ctx, http.MethodGet, path, params, nil, &envelope); err != nil {
		return nil, err
	}

	list := &DocumentList{Total: envelope.Total, Documents: make([]*Document, 0, len(envelope.Documents))}
	for _, raw := range envelope.Documents {
		doc, err := parseDocument(raw)
		if err != nil {
			return nil, err
		}
		list.Documents = append(list.Documents, doc)
	}
	return list, nil
}

// UpdateDocument patches the named attributes of an existing document
func (c *Client) UpdateDocument(ctx context.Context, databaseID, collectionID, documentID string, data map[string]interface{}) (*Document, error) {
	path := fmt.Sprintf("/databases/%s/collections/%s/documents/%s", databaseID, collectionID, documentID)
	body := map[string]interface{}{"data": data}
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodPatch, path, nil, body, &raw); err != nil {
		return nil, err
	}
	return parseDocument(raw)
}

// DeleteDocument removes a document by id
func (c *Client) DeleteDocument(ctx context.Context, databaseID, collectionID, documentID string) error {
	path := fmt.Sprintf("/databases/%s/collections/%s/documents/%s", databaseID, collectionID, documentID)
	return c.do(ctx, http.MethodDelete, path, nil, nil, nil)
}

// Health verifies the endpoint is reachable and the project accepted
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health/version", nil, nil, nil)
}

// do executes one API call with retry on transient failures. Schema-drift
// and permission errors are returned immediately so the repository
// fallbacks can react to the first occurrence.
func (c *Client) do(ctx context.Context, method, path string, params url.Values, body, out interface{}) error {
	operation := func() error {
		err := c.doOnce(ctx, method, path, params, body, out)
		if err == nil {
			return nil
		}
		if se, ok := AsStoreError(err); ok && se.Retryable() {
			c.logger.Warn("document store call failed, retrying",
				zap.String("method", method),
				zap.String("path", path),
				zap.Error(err),
			)
			return err
		}
		return backoff.Permanent(err)
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.retryInitialDelay
	policy.MaxElapsedTime = c.retryMaxElapsed
	return backoff.Retry(operation, backoff.WithContext(policy, ctx))
}

func (c *Client) doOnce(ctx context.Context, method, path string, params url.Values, body, out interface{}) error {
	target := c.endpoint + path
	if len(params) > 0 {
		target += "?" + params.Encode()
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Appwrite-Project", c.project)
	if c.apiKey != "" {
		req.Header.Set("X-Appwrite-Key", c.apiKey)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return unreachable(err)
	}
	defer resp.Body.Close()

	if elapsed := time.Since(start); elapsed > 2*time.Second {
		c.logger.Warn("slow document store call",
			zap.String("method", method),
			zap.String("path", path),
			zap.Duration("duration", elapsed),
		)
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return unreachable(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var envelope struct {
			Message string `json:"message"`
			Type    string `json:"type"`
		}
		_ = json.Unmarshal(payload, &envelope)
		if envelope.Message == "" {
			envelope.Message = strings.TrimSpace(string(payload))
		}
		return classify(resp.StatusCode, envelope.Type, envelope.Message)
	}

	if out != nil && len(payload) > 0 {
		if err := json.Unmarshal(payload, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func parseDocument(raw json.RawMessage) (*Document, error) {
	var meta struct {
		ID        string    `json:"$id"`
		CreatedAt time.Time `json:"$createdAt"`
	}
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil, fmt.Errorf("decode document metadata: %w", err)
	}
	return &Document{ID: meta.ID, CreatedAt: meta.CreatedAt, raw: raw}, nil
}
