package domain

// Nutrition holds the five macro values tracked for every food and meal
type Nutrition struct {
	Calories float64 `json:"calories"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
	Protein  float64 `json:"protein"`
	Fiber    float64 `json:"fiber"`
}

// Add returns the element-wise sum of two nutrition vectors
func (n Nutrition) Add(other Nutrition) Nutrition {
	return Nutrition{
		Calories: n.Calories + other.Calories,
		Carbs:    n.Carbs + other.Carbs,
		Fat:      n.Fat + other.Fat,
		Protein:  n.Protein + other.Protein,
		Fiber:    n.Fiber + other.Fiber,
	}
}

// DetectedFood is one food item identified by the recognition service.
// The service reports both a per-quantity breakdown (flat fields) and a
// totals-per-entry breakdown (nested nutrition object); downstream code
// reads the nested one, but both are kept because the service sends both.
type DetectedFood struct {
	Name                string    `json:"name"`
	Quantity            string    `json:"quantity"`
	Unit                string    `json:"unit"`
	Description         string    `json:"description"`
	CaloriesPerQuantity float64   `json:"caloriesPerQuantity"`
	CarbsPerQuantity    float64   `json:"carbsPerQuantity"`
	FatPerQuantity      float64   `json:"fatPerQuantity"`
	ProteinPerQuantity  float64   `json:"proteinPerQuantity"`
	FiberPerQuantity    float64   `json:"fiberPerQuantity"`
	Nutrition           Nutrition `json:"nutrition"`
}

// DetectionResult is the ordered list of foods the recognition service
// extracted from one meal photo. Aggregate nutrition is always recomputed
// from the foods, never stored alongside them.
type DetectionResult struct {
	Foods []DetectedFood `json:"foods"`
}

// Total sums nutrition across all detected foods
func (r *DetectionResult) Total() Nutrition {
	var total Nutrition
	for _, food := range r.Foods {
		total = total.Add(food.Nutrition)
	}
	return total
}
