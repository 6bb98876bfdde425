package domain

import (
	"context"
	"time"
)

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// RecognitionClient defines the interface for the external meal recognition service
type RecognitionClient interface {
	// DetectFoods sends a meal photo and returns the validated detection result
	DetectFoods(ctx context.Context, image []byte, filename string) (*DetectionResult, error)
	// CorrectFoods sends a previous breakdown plus free-text user feedback and
	// returns a full replacement detection result
	CorrectFoods(ctx context.Context, previousBreakdown, userCorrection string) (*DetectionResult, error)
}

// PlannerClient defines the interface for the external workout plan generator
type PlannerClient interface {
	GenerateWorkoutPlan(ctx context.Context, profile *Profile) (*WorkoutPlan, error)
}

// UserRepository defines the interface for user and profile persistence
type UserRepository interface {
	CreateUser(ctx context.Context, user *User) error
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	GetUserByID(ctx context.Context, id string) (*User, error)
	SaveProfile(ctx context.Context, profile *Profile) error
	GetProfile(ctx context.Context, userID string) (*Profile, error)
}

// MealRepository defines the interface for meal persistence
type MealRepository interface {
	SaveMeal(ctx context.Context, meal *Meal) error
	GetMeal(ctx context.Context, id string) (*Meal, error)
	ListMeals(ctx context.Context, userID string, from, to time.Time, limit int) ([]*Meal, error)
	// ApplyCorrection replaces the meal's foods/totals and appends the
	// correction record in one transaction. The update only succeeds when the
	// stored version still equals expectedVersion; otherwise ErrVersionConflict.
	ApplyCorrection(ctx context.Context, meal *Meal, record *CorrectionRecord, expectedVersion int) error
	ListCorrections(ctx context.Context, mealID string) ([]*CorrectionRecord, error)
}

// PlanRepository defines the interface for workout plan persistence
type PlanRepository interface {
	SaveWorkoutPlan(ctx context.Context, plan *WorkoutPlan) error
	GetWorkoutPlan(ctx context.Context, userID string) (*WorkoutPlan, error)
}

// ImageStore defines the interface for meal photo storage. Save returns the
// public (CDN) URL of the stored image.
type ImageStore interface {
	Save(ctx context.Context, userID, mealID string, data []byte) (string, error)
}
