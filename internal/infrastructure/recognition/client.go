// Package recognition talks to the external meal recognition service.
package recognition

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/fittrack/backend/internal/domain"
	"github.com/fittrack/backend/internal/resilience"
	"golang.org/x/time/rate"
)

// detectPrompt is the fixed instruction sent alongside every meal photo
const detectPrompt = "Identify each food in this meal photo with quantity, unit, " +
	"a short description, and per-quantity plus total nutrition values."

// ClientConfig holds the recognition client tuning
type ClientConfig struct {
	BaseURL     string
	APIKey      string
	Timeout     time.Duration
	MaxAttempts int
	BaseDelay   time.Duration
	Breaker     resilience.BreakerConfig
}

// Client handles communication with the meal recognition API. One instance
// is shared process-wide so the circuit breaker sees every call.
type Client struct {
	httpClient  *http.Client
	apiKey      string
	baseURL     string
	rateLimiter *rate.Limiter
	breaker     *resilience.CircuitBreaker
	maxAttempts int
	baseDelay   time.Duration
}

// NewClient creates a new recognition API client
func NewClient(cfg ClientConfig) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	maxAttempts := cfg.MaxAttempts
	if maxAttempts == 0 {
		maxAttempts = 3
	}
	baseDelay := cfg.BaseDelay
	if baseDelay == 0 {
		baseDelay = 2 * time.Second
	}

	// The recognition vendor allows 60 requests per minute
	limiter := rate.NewLimiter(rate.Limit(1), 5)

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		apiKey:      cfg.APIKey,
		baseURL:     cfg.BaseURL,
		rateLimiter: limiter,
		breaker:     resilience.NewCircuitBreaker("recognition", cfg.Breaker),
		maxAttempts: maxAttempts,
		baseDelay:   baseDelay,
	}
}

// DetectFoods sends a meal photo to the recognition service and returns the
// validated detection result. Retries with exponential backoff around a
// breaker-guarded call; an open circuit aborts the remaining attempts.
func (c *Client) DetectFoods(ctx context.Context, image []byte, filename string) (*domain.DetectionResult, error) {
	return resilience.Do(ctx, func(ctx context.Context) (*domain.DetectionResult, error) {
		return c.detectOnce(ctx, image, filename)
	}, c.maxAttempts, c.baseDelay)
}

// CorrectFoods sends a previous breakdown plus free-text user feedback and
// returns the full replacement detection result.
func (c *Client) CorrectFoods(ctx context.Context, previousBreakdown, userCorrection string) (*domain.DetectionResult, error) {
	return resilience.Do(ctx, func(ctx context.Context) (*domain.DetectionResult, error) {
		return c.correctOnce(ctx, previousBreakdown, userCorrection)
	}, c.maxAttempts, c.baseDelay)
}

// detectOnce issues exactly one breaker-guarded detection call
func (c *Client) detectOnce(ctx context.Context, image []byte, filename string) (*domain.DetectionResult, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}

	var result *domain.DetectionResult
	err := c.breaker.Execute(func() error {
		body, contentType, err := encodeImageForm(image, filename)
		if err != nil {
			return err
		}

		raw, err := c.doRequest(ctx, c.baseURL+"/v1/meals/detect", contentType, body)
		if err != nil {
			return err
		}

		// A malformed body on an otherwise-200 response still counts as a
		// failed call for breaker accounting: the payload was unusable
		result, err = ValidateDetectionPayload(raw)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// correctOnce issues exactly one breaker-guarded correction call
func (c *Client) correctOnce(ctx context.Context, previousBreakdown, userCorrection string) (*domain.DetectionResult, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}

	var result *domain.DetectionResult
	err := c.breaker.Execute(func() error {
		payload, err := json.Marshal(map[string]string{
			"previous_breakdown": previousBreakdown,
			"user_correction":    userCorrection,
		})
		if err != nil {
			return fmt.Errorf("failed to marshal correction request: %w", err)
		}

		raw, err := c.doRequest(ctx, c.baseURL+"/v1/meals/correct", "application/json", bytes.NewReader(payload))
		if err != nil {
			return err
		}

		result, err = ValidateDetectionPayload(raw)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// doRequest executes one POST and returns the response body. Network
// errors, timeouts, and non-2xx statuses all surface as errors so the
// breaker counts them uniformly.
func (c *Client) doRequest(ctx context.Context, reqURL, contentType string, body io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("User-Agent", "FitTrack/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrRecognitionFailure, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %v", domain.ErrRecognitionFailure, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Printf("[Recognition] API error - Status: %d, Body: %s", resp.StatusCode, truncate(raw, 512))
		return nil, fmt.Errorf("%w: status %d", domain.ErrRecognitionFailure, resp.StatusCode)
	}

	return raw, nil
}

// encodeImageForm builds the multipart body: the image file plus the fixed
// prompt field the service expects
func encodeImageForm(image []byte, filename string) (io.Reader, string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("image", filename)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(image); err != nil {
		return nil, "", fmt.Errorf("failed to write image data: %w", err)
	}
	if err := writer.WriteField("prompt", detectPrompt); err != nil {
		return nil, "", fmt.Errorf("failed to write prompt field: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finalize form: %w", err)
	}

	return &buf, writer.FormDataContentType(), nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
