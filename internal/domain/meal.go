package domain

import "time"

// Meal is a logged meal with its detected foods and aggregate nutrition.
// Totals are always derived from Foods; whenever Foods changes the caller
// must recompute Totals via DetectionResult.Total to avoid drift.
type Meal struct {
	ID              string         `json:"id"`
	UserID          string         `json:"userId"`
	ImageURL        string         `json:"imageUrl,omitempty"`
	Foods           []DetectedFood `json:"foods"`
	Totals          Nutrition      `json:"totals"`
	CorrectionCount int            `json:"correctionCount"`
	Version         int            `json:"version"`
	CreatedAt       time.Time      `json:"createdAt"`
	UpdatedAt       time.Time      `json:"updatedAt"`
}

// CorrectionRecord captures one applied correction: the breakdown text the
// user saw, what they said, and the totals before the correction replaced
// the meal's foods. Records are append-only and never mutated.
type CorrectionRecord struct {
	ID                int64     `json:"id"`
	MealID            string    `json:"mealId"`
	PreviousBreakdown string    `json:"previousBreakdown"`
	UserCorrection    string    `json:"userCorrection"`
	PreviousTotals    Nutrition `json:"previousTotals"`
	CreatedAt         time.Time `json:"createdAt"`
}
