// Package planner talks to the external workout plan generator service.
package planner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/fittrack/backend/internal/domain"
	"github.com/fittrack/backend/internal/resilience"
)

// ClientConfig holds the planner client tuning
type ClientConfig struct {
	BaseURL     string
	APIKey      string
	Timeout     time.Duration
	MaxAttempts int
	BaseDelay   time.Duration
	Breaker     resilience.BreakerConfig
}

// Client handles communication with the workout plan generator API. Plan
// generation is slow on the vendor side, so it gets its own breaker rather
// than sharing the recognition service's.
type Client struct {
	httpClient  *http.Client
	apiKey      string
	baseURL     string
	breaker     *resilience.CircuitBreaker
	maxAttempts int
	baseDelay   time.Duration
}

// planRequest is the wire request the generator expects
type planRequest struct {
	Age           int     `json:"age"`
	Sex           string  `json:"sex"`
	HeightCm      float64 `json:"height_cm"`
	WeightKg      float64 `json:"weight_kg"`
	ActivityLevel string  `json:"activity_level"`
	Goal          string  `json:"goal"`
}

// planResponse is the wire response: goal plus the weekly schedule
type planResponse struct {
	Goal string              `json:"goal"`
	Days []domain.WorkoutDay `json:"days"`
}

// NewClient creates a new plan generator client
func NewClient(cfg ClientConfig) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	maxAttempts := cfg.MaxAttempts
	if maxAttempts == 0 {
		maxAttempts = 2
	}
	baseDelay := cfg.BaseDelay
	if baseDelay == 0 {
		baseDelay = 2 * time.Second
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		apiKey:      cfg.APIKey,
		baseURL:     cfg.BaseURL,
		breaker:     resilience.NewCircuitBreaker("planner", cfg.Breaker),
		maxAttempts: maxAttempts,
		baseDelay:   baseDelay,
	}
}

// GenerateWorkoutPlan asks the generator for a weekly plan tailored to the
// profile. Same composition as the recognition client: retry around a
// breaker-guarded call.
func (c *Client) GenerateWorkoutPlan(ctx context.Context, profile *domain.Profile) (*domain.WorkoutPlan, error) {
	return resilience.Do(ctx, func(ctx context.Context) (*domain.WorkoutPlan, error) {
		return c.generateOnce(ctx, profile)
	}, c.maxAttempts, c.baseDelay)
}

func (c *Client) generateOnce(ctx context.Context, profile *domain.Profile) (*domain.WorkoutPlan, error) {
	var plan *domain.WorkoutPlan
	err := c.breaker.Execute(func() error {
		payload, err := json.Marshal(planRequest{
			Age:           profile.Age,
			Sex:           profile.Sex,
			HeightCm:      profile.HeightCm,
			WeightKg:      profile.WeightKg,
			ActivityLevel: profile.ActivityLevel,
			Goal:          profile.Goal,
		})
		if err != nil {
			return fmt.Errorf("failed to marshal plan request: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/plans/workout", bytes.NewReader(payload))
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.apiKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("%w: %v", domain.ErrPlannerFailure, err)
		}
		defer resp.Body.Close()

		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("%w: reading body: %v", domain.ErrPlannerFailure, err)
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			log.Printf("[Planner] API error - Status: %d", resp.StatusCode)
			return fmt.Errorf("%w: status %d", domain.ErrPlannerFailure, resp.StatusCode)
		}

		var parsed planResponse
		if err := json.Unmarshal(raw, &parsed); err != nil {
			return fmt.Errorf("%w: decoding body: %v", domain.ErrPlannerFailure, err)
		}
		if len(parsed.Days) == 0 {
			return fmt.Errorf("%w: plan has no days", domain.ErrPlannerFailure)
		}

		plan = &domain.WorkoutPlan{
			UserID:    profile.UserID,
			Goal:      parsed.Goal,
			Days:      parsed.Days,
			CreatedAt: time.Now(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return plan, nil
}
