package domain

import "time"

// User is a registered account
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Profile holds the physical attributes and goal used for plan generation
// and diet targets. BMR/TDEE are derived on read, not stored.
type Profile struct {
	UserID        string    `json:"userId"`
	Age           int       `json:"age"`
	Sex           string    `json:"sex"` // "male" or "female"
	HeightCm      float64   `json:"heightCm"`
	WeightKg      float64   `json:"weightKg"`
	ActivityLevel string    `json:"activityLevel"` // sedentary, light, moderate, active, very_active
	Goal          string    `json:"goal"`          // lose, maintain, gain
	UpdatedAt     time.Time `json:"updatedAt"`
}

// DietTargets are the daily intake targets derived from a profile
type DietTargets struct {
	BMRKcal        int     `json:"bmrKcal"`
	TDEEKcal       int     `json:"tdeeKcal"`
	GoalCalories   int     `json:"goalCalories"`
	ProteinTargetG float64 `json:"proteinTargetG"`
	CarbsTargetG   float64 `json:"carbsTargetG"`
	FatTargetG     float64 `json:"fatTargetG"`
}
