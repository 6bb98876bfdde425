package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/fittrack/backend/internal/domain"
)

func testProfile() *domain.Profile {
	return &domain.Profile{
		UserID: "u1", Age: 30, Sex: "male", HeightCm: 180, WeightKg: 80,
		ActivityLevel: "moderate", Goal: "lose",
	}
}

func testPlan() *domain.WorkoutPlan {
	return &domain.WorkoutPlan{
		Goal: "lose",
		Days: []domain.WorkoutDay{
			{Day: "Monday", Focus: "push", Exercises: []domain.Exercise{
				{Name: "Bench press", Sets: 3, Reps: "8-10", RestSeconds: 90},
			}},
		},
		CreatedAt: time.Now().UTC(),
	}
}

func newPlanFixture() (*MockPlannerClient, *MockPlanRepository, *MockUserRepository, *MockCacheRepository, *PlanService) {
	planner := &MockPlannerClient{plan: testPlan()}
	plans := NewMockPlanRepository()
	users := NewMockUserRepository()
	cache := NewMockCacheRepository()
	service := NewPlanService(planner, plans, users, cache, PlanServiceConfig{})
	return planner, plans, users, cache, service
}

func TestGenerateWorkoutPlan(t *testing.T) {
	planner, plans, users, cache, service := newPlanFixture()
	users.profiles["u1"] = testProfile()

	plan, err := service.GenerateWorkoutPlan(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if !planner.called {
		t.Error("Expected generator to be called")
	}
	if plan.ID == "" {
		t.Error("Expected generated plan to get an ID")
	}
	if plan.UserID != "u1" {
		t.Errorf("Expected plan owner u1, got %s", plan.UserID)
	}
	if plans.plans["u1"] == nil {
		t.Error("Expected plan to be persisted")
	}
	if !cache.setCalled {
		t.Error("Expected plan to be cached")
	}
}

func TestGenerateWorkoutPlan_NoProfile(t *testing.T) {
	planner, _, _, _, service := newPlanFixture()

	_, err := service.GenerateWorkoutPlan(context.Background(), "u1")
	if !errors.Is(err, domain.ErrProfileNotFound) {
		t.Errorf("Expected ErrProfileNotFound, got %v", err)
	}
	if planner.called {
		t.Error("Expected generator not to be called without a profile")
	}
}

func TestGenerateWorkoutPlan_GeneratorError(t *testing.T) {
	planner, plans, users, _, service := newPlanFixture()
	users.profiles["u1"] = testProfile()
	planner.planError = domain.ErrPlannerFailure

	_, err := service.GenerateWorkoutPlan(context.Background(), "u1")
	if !errors.Is(err, domain.ErrPlannerFailure) {
		t.Errorf("Expected generator failure to propagate, got %v", err)
	}
	if len(plans.plans) != 0 {
		t.Error("Expected nothing persisted after generator failure")
	}
}

func TestGetWorkoutPlan_CacheHit(t *testing.T) {
	_, plans, _, cache, service := newPlanFixture()

	cached := testPlan()
	cached.ID = "plan-cached"
	cached.UserID = "u1"
	payload, _ := json.Marshal(cached)
	cache.data["plan:workout:u1"] = payload

	plan, err := service.GetWorkoutPlan(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if plan.ID != "plan-cached" {
		t.Errorf("Expected cached plan, got %s", plan.ID)
	}
	if plans.getCalls != 0 {
		t.Error("Expected storage not to be read on cache hit")
	}
}

func TestGetWorkoutPlan_CacheMiss(t *testing.T) {
	_, plans, _, cache, service := newPlanFixture()

	stored := testPlan()
	stored.ID = "plan-stored"
	stored.UserID = "u1"
	plans.plans["u1"] = stored

	plan, err := service.GetWorkoutPlan(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if plan.ID != "plan-stored" {
		t.Errorf("Expected stored plan, got %s", plan.ID)
	}
	if plans.getCalls != 1 {
		t.Errorf("Expected one storage read, got %d", plans.getCalls)
	}
	if !cache.setCalled {
		t.Error("Expected plan to be re-cached after miss")
	}
}

func TestGetWorkoutPlan_CorruptCacheEntry(t *testing.T) {
	_, plans, _, cache, service := newPlanFixture()

	cache.data["plan:workout:u1"] = []byte("{not json")
	stored := testPlan()
	stored.ID = "plan-stored"
	stored.UserID = "u1"
	plans.plans["u1"] = stored

	plan, err := service.GetWorkoutPlan(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if plan.ID != "plan-stored" {
		t.Errorf("Expected fallback to storage, got %s", plan.ID)
	}
}

func TestGetWorkoutPlan_NotFound(t *testing.T) {
	_, _, _, _, service := newPlanFixture()

	_, err := service.GetWorkoutPlan(context.Background(), "u1")
	if !errors.Is(err, domain.ErrPlanNotFound) {
		t.Errorf("Expected ErrPlanNotFound, got %v", err)
	}
}

func TestDietTargets(t *testing.T) {
	_, _, users, _, service := newPlanFixture()
	users.profiles["u1"] = testProfile() // male, 30y, 180cm, 80kg, moderate, lose

	targets, err := service.DietTargets(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	// BMR = 10*80 + 6.25*180 - 5*30 + 5 = 1780
	if targets.BMRKcal != 1780 {
		t.Errorf("Expected BMR 1780, got %d", targets.BMRKcal)
	}
	// TDEE = 1780 * 1.55 = 2759
	if targets.TDEEKcal != 2759 {
		t.Errorf("Expected TDEE 2759, got %d", targets.TDEEKcal)
	}
	// Cutting: 500 kcal deficit
	if targets.GoalCalories != 2259 {
		t.Errorf("Expected goal 2259, got %d", targets.GoalCalories)
	}
	// 1.8 g/kg protein
	if targets.ProteinTargetG != 144 {
		t.Errorf("Expected protein 144g, got %v", targets.ProteinTargetG)
	}
	if targets.FatTargetG != 62.8 {
		t.Errorf("Expected fat 62.8g, got %v", targets.FatTargetG)
	}
	if targets.CarbsTargetG != 279.6 {
		t.Errorf("Expected carbs 279.6g, got %v", targets.CarbsTargetG)
	}
}

func TestDietTargets_FemaleMaintain(t *testing.T) {
	_, _, users, _, service := newPlanFixture()
	users.profiles["u1"] = &domain.Profile{
		UserID: "u1", Age: 25, Sex: "female", HeightCm: 165, WeightKg: 60,
		ActivityLevel: "sedentary", Goal: "maintain",
	}

	targets, err := service.DietTargets(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	// BMR = 10*60 + 6.25*165 - 5*25 - 161 = 1345.25
	if targets.BMRKcal != 1345 {
		t.Errorf("Expected BMR 1345, got %d", targets.BMRKcal)
	}
	if targets.TDEEKcal != 1614 {
		t.Errorf("Expected TDEE 1614, got %d", targets.TDEEKcal)
	}
	if targets.GoalCalories != targets.TDEEKcal {
		t.Errorf("Expected maintenance calories to equal TDEE, got %d", targets.GoalCalories)
	}
	if targets.ProteinTargetG != 108 {
		t.Errorf("Expected protein 108g, got %v", targets.ProteinTargetG)
	}
}

func TestDietTargets_NoProfile(t *testing.T) {
	_, _, _, _, service := newPlanFixture()

	_, err := service.DietTargets(context.Background(), "u1")
	if !errors.Is(err, domain.ErrProfileNotFound) {
		t.Errorf("Expected ErrProfileNotFound, got %v", err)
	}
}
