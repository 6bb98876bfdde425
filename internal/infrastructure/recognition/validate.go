package recognition

import (
	"encoding/json"
	"fmt"

	"github.com/fittrack/backend/internal/domain"
)

// ValidationError reports the first offending field in a recognition
// payload. It unwraps to domain.ErrInvalidRecognitionResponse so callers
// can distinguish a malformed body from a transport failure.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid recognition response: %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return domain.ErrInvalidRecognitionResponse
}

var nutritionFields = []string{"calories", "carbs", "fat", "protein", "fiber"}

var perQuantityFields = []string{
	"caloriesPerQuantity",
	"carbsPerQuantity",
	"fatPerQuantity",
	"proteinPerQuantity",
	"fiberPerQuantity",
}

var stringFields = []string{"name", "quantity", "unit", "description"}

// ValidateDetectionPayload checks the shape of a recognition service
// response field by field before anything downstream trusts it. The schema
// requires a foods array where every entry carries four non-empty strings,
// five non-negative per-quantity numbers, and a nested nutrition object
// with the same five numbers. Any miss is a hard failure naming the field
// path; partial data is never returned.
func ValidateDetectionPayload(raw []byte) (*domain.DetectionResult, error) {
	var payload map[string]interface{}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, &ValidationError{Field: "(root)", Reason: "not a JSON object"}
	}

	foodsRaw, ok := payload["foods"]
	if !ok {
		return nil, &ValidationError{Field: "foods", Reason: "missing required field"}
	}
	foodsList, ok := foodsRaw.([]interface{})
	if !ok {
		return nil, &ValidationError{Field: "foods", Reason: "expected an array"}
	}

	result := &domain.DetectionResult{Foods: make([]domain.DetectedFood, 0, len(foodsList))}
	for i, entryRaw := range foodsList {
		food, err := validateFoodEntry(i, entryRaw)
		if err != nil {
			return nil, err
		}
		result.Foods = append(result.Foods, *food)
	}

	return result, nil
}

func validateFoodEntry(index int, raw interface{}) (*domain.DetectedFood, error) {
	path := fmt.Sprintf("foods[%d]", index)

	entry, ok := raw.(map[string]interface{})
	if !ok {
		return nil, &ValidationError{Field: path, Reason: "expected an object"}
	}

	strings := make(map[string]string, len(stringFields))
	for _, field := range stringFields {
		value, err := requireString(entry, path, field)
		if err != nil {
			return nil, err
		}
		strings[field] = value
	}

	perQuantity := make(map[string]float64, len(perQuantityFields))
	for _, field := range perQuantityFields {
		value, err := requireNumber(entry, path, field)
		if err != nil {
			return nil, err
		}
		perQuantity[field] = value
	}

	nutritionRaw, ok := entry["nutrition"]
	if !ok {
		return nil, &ValidationError{Field: path + ".nutrition", Reason: "missing required field"}
	}
	nutritionObj, ok := nutritionRaw.(map[string]interface{})
	if !ok {
		return nil, &ValidationError{Field: path + ".nutrition", Reason: "expected an object"}
	}

	nutrition := make(map[string]float64, len(nutritionFields))
	for _, field := range nutritionFields {
		value, err := requireNumber(nutritionObj, path+".nutrition", field)
		if err != nil {
			return nil, err
		}
		nutrition[field] = value
	}

	return &domain.DetectedFood{
		Name:                strings["name"],
		Quantity:            strings["quantity"],
		Unit:                strings["unit"],
		Description:         strings["description"],
		CaloriesPerQuantity: perQuantity["caloriesPerQuantity"],
		CarbsPerQuantity:    perQuantity["carbsPerQuantity"],
		FatPerQuantity:      perQuantity["fatPerQuantity"],
		ProteinPerQuantity:  perQuantity["proteinPerQuantity"],
		FiberPerQuantity:    perQuantity["fiberPerQuantity"],
		Nutrition: domain.Nutrition{
			Calories: nutrition["calories"],
			Carbs:    nutrition["carbs"],
			Fat:      nutrition["fat"],
			Protein:  nutrition["protein"],
			Fiber:    nutrition["fiber"],
		},
	}, nil
}

func requireString(obj map[string]interface{}, path, field string) (string, error) {
	raw, ok := obj[field]
	if !ok {
		return "", &ValidationError{Field: path + "." + field, Reason: "missing required field"}
	}
	value, ok := raw.(string)
	if !ok {
		return "", &ValidationError{Field: path + "." + field, Reason: "expected a string"}
	}
	if value == "" {
		return "", &ValidationError{Field: path + "." + field, Reason: "must not be empty"}
	}
	return value, nil
}

func requireNumber(obj map[string]interface{}, path, field string) (float64, error) {
	raw, ok := obj[field]
	if !ok {
		return 0, &ValidationError{Field: path + "." + field, Reason: "missing required field"}
	}
	value, ok := raw.(float64)
	if !ok {
		return 0, &ValidationError{Field: path + "." + field, Reason: "expected a number"}
	}
	if value < 0 {
		return 0, &ValidationError{Field: path + "." + field, Reason: "must not be negative"}
	}
	return value, nil
}
