package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/fittrack/backend/internal/domain"
	"github.com/google/uuid"
)

// PlanServiceConfig holds configuration for the plan service
type PlanServiceConfig struct {
	CacheTTL time.Duration
}

// PlanService handles workout plan generation and diet targets
type PlanService struct {
	planner  domain.PlannerClient
	plans    domain.PlanRepository
	users    domain.UserRepository
	cache    domain.CacheRepository
	cacheTTL time.Duration
}

// NewPlanService creates a new plan service with dependencies
func NewPlanService(
	planner domain.PlannerClient,
	plans domain.PlanRepository,
	users domain.UserRepository,
	cache domain.CacheRepository,
	config PlanServiceConfig,
) *PlanService {
	cacheTTL := config.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 24 * time.Hour
	}

	return &PlanService{
		planner:  planner,
		plans:    plans,
		users:    users,
		cache:    cache,
		cacheTTL: cacheTTL,
	}
}

// GenerateWorkoutPlan calls the external generator with the stored profile
// and replaces the user's current plan
func (s *PlanService) GenerateWorkoutPlan(ctx context.Context, userID string) (*domain.WorkoutPlan, error) {
	profile, err := s.users.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	plan, err := s.planner.GenerateWorkoutPlan(ctx, profile)
	if err != nil {
		return nil, err
	}
	plan.ID = uuid.New().String()
	plan.UserID = userID

	if err := s.plans.SaveWorkoutPlan(ctx, plan); err != nil {
		return nil, fmt.Errorf("failed to save plan: %w", err)
	}

	s.cachePlan(ctx, plan)
	return plan, nil
}

// GetWorkoutPlan returns the user's current plan.
// Flow: check cache -> read storage -> cache -> return
func (s *PlanService) GetWorkoutPlan(ctx context.Context, userID string) (*domain.WorkoutPlan, error) {
	if cached, err := s.cache.Get(ctx, planCacheKey(userID)); err == nil {
		var plan domain.WorkoutPlan
		if err := json.Unmarshal(cached, &plan); err == nil {
			return &plan, nil
		}
		// Unreadable cache entry, fall through to storage
	}

	plan, err := s.plans.GetWorkoutPlan(ctx, userID)
	if err != nil {
		return nil, err
	}

	s.cachePlan(ctx, plan)
	return plan, nil
}

// DietTargets derives daily intake targets from the user's profile using
// Mifflin-St Jeor for BMR and a standard activity multiplier for TDEE
func (s *PlanService) DietTargets(ctx context.Context, userID string) (*domain.DietTargets, error) {
	profile, err := s.users.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	bmr := 10*profile.WeightKg + 6.25*profile.HeightCm - 5*float64(profile.Age)
	if profile.Sex == "female" {
		bmr -= 161
	} else {
		bmr += 5
	}

	tdee := bmr * activityFactor(profile.ActivityLevel)

	goalCalories := tdee
	switch profile.Goal {
	case "lose":
		goalCalories -= 500
	case "gain":
		goalCalories += 300
	}

	proteinG := 1.8 * profile.WeightKg
	fatG := goalCalories * 0.25 / 9
	carbsG := (goalCalories - proteinG*4 - fatG*9) / 4
	if carbsG < 0 {
		carbsG = 0
	}

	return &domain.DietTargets{
		BMRKcal:        int(math.Round(bmr)),
		TDEEKcal:       int(math.Round(tdee)),
		GoalCalories:   int(math.Round(goalCalories)),
		ProteinTargetG: math.Round(proteinG*10) / 10,
		CarbsTargetG:   math.Round(carbsG*10) / 10,
		FatTargetG:     math.Round(fatG*10) / 10,
	}, nil
}

func activityFactor(level string) float64 {
	switch level {
	case "sedentary":
		return 1.2
	case "light":
		return 1.375
	case "moderate":
		return 1.55
	case "active":
		return 1.725
	case "very_active":
		return 1.9
	default:
		return 1.2
	}
}

// cachePlan best-effort caches a plan; failures are logged, not surfaced
func (s *PlanService) cachePlan(ctx context.Context, plan *domain.WorkoutPlan) {
	payload, err := json.Marshal(plan)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, planCacheKey(plan.UserID), payload, s.cacheTTL); err != nil {
		log.Printf("[Plans] failed to cache plan for user %s: %v", plan.UserID, err)
	}
}

func planCacheKey(userID string) string {
	return "plan:workout:" + userID
}
