package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"strings"
	"time"

	"farmxchain/domain"
	"farmxchain/internal/metrics"

	"github.com/gofiber/fiber/v2/log"
)

const (
	DefaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	DefaultGeminiModel   = "gemini-2.5-flash-preview-05-20"

	// MaxAttempts caps calls to the endpoint for one analysis.
	MaxAttempts = 5
)

type (
	inlineData struct {
		MimeType string `json:"mimeType"`
		Data     string `json:"data"`
	}

	part struct {
		Text       string      `json:"text,omitempty"`
		InlineData *inlineData `json:"inlineData,omitempty"`
	}

	content struct {
		Role  string `json:"role"`
		Parts []part `json:"parts"`
	}

	schema struct {
		Type             string            `json:"type"`
		Format           string            `json:"format,omitempty"`
		Properties       map[string]schema `json:"properties,omitempty"`
		PropertyOrdering []string          `json:"propertyOrdering,omitempty"`
		Required         []string          `json:"required,omitempty"`
	}

	generationConfig struct {
		ResponseMimeType string  `json:"responseMimeType,omitempty"`
		ResponseSchema   *schema `json:"responseSchema,omitempty"`
		Temperature      float64 `json:"temperature,omitempty"`
	}

	GenerateContentRequest struct {
		Contents         []content        `json:"contents"`
		GenerationConfig generationConfig `json:"generationConfig"`
	}

	generateContentResponse struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
)

type (
	// SleepFunc waits for d or until ctx is done.
	SleepFunc func(ctx context.Context, d time.Duration) error

	GeminiClient interface {
		// GenerateContent posts body and returns the text of the first candidate part.
		GenerateContent(ctx context.Context, body GenerateContentRequest) (string, error)
	}

	geminiClient struct {
		apiKey      string
		model       string
		baseURL     string
		http        *http.Client
		maxAttempts int
		sleep       SleepFunc
		jitter      func() time.Duration
	}

	ClientOption func(*geminiClient)
)

func WithHTTPClient(c *http.Client) ClientOption {
	return func(g *geminiClient) { g.http = c }
}

func WithBaseURL(url string) ClientOption {
	return func(g *geminiClient) { g.baseURL = strings.TrimRight(url, "/") }
}

func WithSleeper(s SleepFunc) ClientOption {
	return func(g *geminiClient) { g.sleep = s }
}

func WithJitter(j func() time.Duration) ClientOption {
	return func(g *geminiClient) { g.jitter = j }
}

func WithMaxAttempts(n int) ClientOption {
	return func(g *geminiClient) {
		if n > 0 {
			g.maxAttempts = n
		}
	}
}

func NewGeminiClient(apiKey, model string, opts ...ClientOption) GeminiClient {
	if model == "" {
		model = DefaultGeminiModel
	}
	c := &geminiClient{
		apiKey:      apiKey,
		model:       model,
		baseURL:     DefaultGeminiBaseURL,
		http:        &http.Client{Timeout: 60 * time.Second},
		maxAttempts: MaxAttempts,
		sleep:       timerSleep,
		jitter:      randomJitter,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *geminiClient) endpoint() string {
	return fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
}

func (c *geminiClient) GenerateContent(ctx context.Context, body GenerateContentRequest) (string, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("%w: marshal request: %v", domain.ErrEncoding, err)
	}

	resp, err := c.postWithRetry(ctx, payload)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		metrics.AnalysisAttemptsTotal.WithLabelValues("http_error").Inc()
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, 200))
		return "", fmt.Errorf("%w: gemini API error: %s - %s", domain.ErrTransientService, resp.Status, string(excerpt))
	}
	metrics.AnalysisAttemptsTotal.WithLabelValues("ok").Inc()

	var envelope generateContentResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return "", fmt.Errorf("%w: decode envelope: %v", domain.ErrMalformedResponse, err)
	}
	if len(envelope.Candidates) == 0 || len(envelope.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("%w: model response was empty", domain.ErrMalformedResponse)
	}
	text := envelope.Candidates[0].Content.Parts[0].Text
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: model response was empty", domain.ErrMalformedResponse)
	}
	return text, nil
}

// postWithRetry retries only on 429 and transport errors. Any other response,
// successful or not, is returned to the caller as is.
func (c *geminiClient) postWithRetry(ctx context.Context, payload []byte) (*http.Response, error) {
	var lastErr error
	for attempt := 0; attempt < c.maxAttempts; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(), bytes.NewReader(payload))
		if err != nil {
			return nil, fmt.Errorf("%w: build request: %v", domain.ErrTransientService, err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.http.Do(req)
		switch {
		case err != nil:
			if ctx.Err() != nil {
				return nil, fmt.Errorf("%w: %v", domain.ErrTransientService, ctx.Err())
			}
			metrics.AnalysisAttemptsTotal.WithLabelValues("transport_error").Inc()
			lastErr = err
		case resp.StatusCode == http.StatusTooManyRequests:
			metrics.AnalysisAttemptsTotal.WithLabelValues("rate_limited").Inc()
			_, _ = io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			lastErr = fmt.Errorf("rate limited: %s", resp.Status)
		default:
			return resp, nil
		}

		if attempt == c.maxAttempts-1 {
			break
		}
		delay := BackoffDelay(attempt) + c.jitter()
		metrics.AnalysisBackoffSeconds.Observe(delay.Seconds())
		log.Warnf("gemini attempt %d/%d failed (%v), retrying in %s", attempt+1, c.maxAttempts, lastErr, delay)
		if err := c.sleep(ctx, delay); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrTransientService, err)
		}
	}
	return nil, fmt.Errorf("%w: API call failed after %d attempts: %v", domain.ErrTransientService, c.maxAttempts, lastErr)
}

// BackoffDelay is the jitter-free wait after the given zero-based attempt: 2^attempt seconds.
func BackoffDelay(attempt int) time.Duration {
	return time.Duration(1<<uint(attempt)) * time.Second
}

func randomJitter() time.Duration {
	return rand.N(time.Second)
}

func timerSleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
