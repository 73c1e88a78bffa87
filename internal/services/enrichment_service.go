package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strings"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"pedium/internal/config"
)

// ===============================
// CONSTANTS
// ===============================

const (
	// summaryInputLimit caps the text sent for summarization; the model
	// does not need the full body of a long article to summarize it.
	summaryInputLimit = 5000

	// tagInputLimit caps the text sent for tag suggestion
	tagInputLimit = 3000

	// fallbackSummaryLength is how much of the article opens the
	// locally derived summary.
	fallbackSummaryLength = 150
)

// fallbackTags is the tag set used when generation is unavailable
var fallbackTags = []string{"General"}

// fallbackQuotes rotate through the writing-prompt endpoint when the
// generative backend cannot answer.
var fallbackQuotes = []string{
	"Write the story only you can tell.",
	"The first draft is just you telling yourself the story.",
	"Start before you feel ready.",
	"Every great article began as a blank page.",
}

// ===============================
// SERVICE IMPLEMENTATION
// ===============================

// enrichmentService talks to a Gemini-compatible generateContent API.
// It is deliberately failure-transparent: callers always get usable
// text, and generation problems only surface in the logs.
type enrichmentService struct {
	cfg    config.AIConfig
	http   *http.Client
	logger *zap.Logger
}

// NewEnrichmentService creates the generative text service
func NewEnrichmentService(cfg config.AIConfig, logger *zap.Logger) EnrichmentService {
	return &enrichmentService{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.RequestTimeout},
		logger: logger,
	}
}

// Summarize produces a one-or-two sentence summary of the article. When
// generation is unavailable the opening of the article stands in.
func (s *enrichmentService) Summarize(ctx context.Context, plainText string) string {
	text := truncate(plainText, summaryInputLimit)
	prompt := fmt.Sprintf(
		"Summarize the following article in one or two sentences. Respond with the summary only, no preamble.\n\n%s",
		text,
	)

	out, err := s.generate(ctx, prompt)
	if err != nil || strings.TrimSpace(out) == "" {
		if err != nil {
			s.logger.Warn("summary generation failed, using local fallback", zap.Error(err))
		}
		return localSummary(plainText)
	}
	return strings.TrimSpace(out)
}

// SuggestTags produces up to five topical tags for the article
func (s *enrichmentService) SuggestTags(ctx context.Context, plainText string) []string {
	text := truncate(plainText, tagInputLimit)
	prompt := fmt.Sprintf(
		"Suggest up to 5 short topical tags for the following article. Respond with the tags only, comma-separated, no preamble.\n\n%s",
		text,
	)

	out, err := s.generate(ctx, prompt)
	if err != nil {
		s.logger.Warn("tag generation failed, using local fallback", zap.Error(err))
		return fallbackTags
	}

	tags := parseTagList(out)
	if len(tags) == 0 {
		return fallbackTags
	}
	return tags
}

// Inspire returns a short writing prompt for the editor page. An empty
// topic asks for general inspiration.
func (s *enrichmentService) Inspire(ctx context.Context, topic string) string {
	prompt := "Give me one short, original piece of writing inspiration for a blogger. One sentence, no preamble, no quotation marks."
	if topic != "" {
		prompt = fmt.Sprintf("Give me one short, original piece of writing inspiration for a blogger writing about %s. One sentence, no preamble, no quotation marks.", topic)
	}

	out, err := s.generate(ctx, prompt)
	if err != nil || strings.TrimSpace(out) == "" {
		if err != nil {
			s.logger.Warn("inspiration generation failed, using local fallback", zap.Error(err))
		}
		return fallbackQuotes[rand.Intn(len(fallbackQuotes))]
	}
	return strings.TrimSpace(out)
}

// ===============================
// GENERATION CLIENT
// ===============================

type generateRequest struct {
	Contents []generateContent `json:"contents"`
}

type generateContent struct {
	Parts []generatePart `json:"parts"`
}

type generatePart struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []generatePart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// generate sends one prompt to the generateContent endpoint and returns
// the first candidate's text.
func (s *enrichmentService) generate(ctx context.Context, prompt string) (string, error) {
	if s.cfg.APIKey == "" {
		return "", fmt.Errorf("generative API key not configured")
	}

	payload, err := json.Marshal(generateRequest{
		Contents: []generateContent{{Parts: []generatePart{{Text: prompt}}}},
	})
	if err != nil {
		return "", fmt.Errorf("marshal generate request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		strings.TrimRight(s.cfg.Endpoint, "/"), s.cfg.Model, s.cfg.APIKey)

	policy := backoff.NewExponentialBackOff()
	policy.MaxElapsedTime = s.cfg.RetryMaxElapsed

	var out string
	err = backoff.Retry(func() error {
		text, err := s.generateOnce(ctx, url, payload)
		if err != nil {
			return err
		}
		out = text
		return nil
	}, backoff.WithContext(policy, ctx))
	return out, err
}

func (s *enrichmentService) generateOnce(ctx context.Context, url string, payload []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", backoff.Permanent(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", err
	}

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return "", fmt.Errorf("generation endpoint returned %d", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return "", backoff.Permanent(fmt.Errorf("generation endpoint returned %d: %s", resp.StatusCode, string(body)))
	}

	var parsed generateResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", backoff.Permanent(fmt.Errorf("decode generate response: %w", err))
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", backoff.Permanent(fmt.Errorf("generation returned no candidates"))
	}
	return parsed.Candidates[0].Content.Parts[0].Text, nil
}

// ===============================
// LOCAL FALLBACKS
// ===============================

// localSummary derives a summary from the article's opening characters.
// The ellipsis is always appended, even when nothing was cut off.
func localSummary(plainText string) string {
	runes := []rune(plainText)
	if len(runes) > fallbackSummaryLength {
		runes = runes[:fallbackSummaryLength]
	}
	return string(runes) + "..."
}

// parseTagList splits a comma-separated model response into clean tags
func parseTagList(out string) []string {
	parts := strings.Split(out, ",")
	tags := make([]string, 0, len(parts))
	for _, part := range parts {
		tag := strings.Trim(strings.TrimSpace(part), `"'.`)
		if tag == "" {
			continue
		}
		tags = append(tags, tag)
		if len(tags) == 5 {
			break
		}
	}
	return tags
}

// truncate limits text to at most n runes
func truncate(text string, n int) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n])
}
