package usecase

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/fittrack/backend/internal/domain"
	"github.com/fittrack/backend/internal/imaging"
	"github.com/google/uuid"
)

// MealServiceConfig holds configuration for the meal service
type MealServiceConfig struct {
	MaxImageSizeKB int
}

// MealService handles meal photo analysis and the correction workflow
type MealService struct {
	recognizer     domain.RecognitionClient
	meals          domain.MealRepository
	images         domain.ImageStore
	maxImageSizeKB int
}

// NewMealService creates a new meal service with dependencies
func NewMealService(
	recognizer domain.RecognitionClient,
	meals domain.MealRepository,
	images domain.ImageStore,
	config MealServiceConfig,
) *MealService {
	maxImageSizeKB := config.MaxImageSizeKB
	if maxImageSizeKB == 0 {
		maxImageSizeKB = 1024 // 1MB outbound payload budget
	}

	return &MealService{
		recognizer:     recognizer,
		meals:          meals,
		images:         images,
		maxImageSizeKB: maxImageSizeKB,
	}
}

// IdentifyMeal analyzes a meal photo.
// Flow: compress -> recognize -> validate -> store image -> persist meal
func (s *MealService) IdentifyMeal(ctx context.Context, userID string, image []byte, filename string) (*domain.Meal, error) {
	if userID == "" || len(image) == 0 {
		return nil, domain.ErrInvalidRequest
	}

	// Compression failure is never worth failing the whole request over;
	// fall back to the original buffer and let the service cope
	payload, err := imaging.Compress(image, s.maxImageSizeKB)
	if err != nil {
		log.Printf("[Meals] compression failed, sending original image: %v", err)
		payload = image
	}

	result, err := s.recognizer.DetectFoods(ctx, payload, filename)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	meal := &domain.Meal{
		ID:        uuid.New().String(),
		UserID:    userID,
		Foods:     result.Foods,
		Totals:    result.Total(),
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}

	// The photo is auxiliary: a failed upload loses the thumbnail, not the meal
	if url, err := s.images.Save(ctx, userID, meal.ID, payload); err != nil {
		log.Printf("[Meals] image upload failed for meal %s: %v", meal.ID, err)
	} else {
		meal.ImageURL = url
	}

	if err := s.meals.SaveMeal(ctx, meal); err != nil {
		return nil, fmt.Errorf("failed to save meal: %w", err)
	}

	return meal, nil
}

// CorrectMeal applies free-text user feedback to a previously analyzed
// meal. The recognition service returns a full replacement breakdown, not
// a diff; the old foods are swapped out wholesale, totals are recomputed
// from the new foods, and an audit record of the pre-correction state is
// appended. Persistence is version-checked: a concurrent correction to
// the same meal fails with ErrVersionConflict instead of silently losing
// an update.
func (s *MealService) CorrectMeal(ctx context.Context, userID, mealID, correction string) (*domain.Meal, error) {
	if strings.TrimSpace(correction) == "" {
		return nil, domain.ErrInvalidRequest
	}

	meal, err := s.getOwnedMeal(ctx, userID, mealID)
	if err != nil {
		return nil, err
	}

	previous := FormatForCorrection(&domain.DetectionResult{Foods: meal.Foods})

	result, err := s.recognizer.CorrectFoods(ctx, previous, correction)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	record := &domain.CorrectionRecord{
		MealID:            meal.ID,
		PreviousBreakdown: previous,
		UserCorrection:    correction,
		PreviousTotals:    meal.Totals,
		CreatedAt:         now,
	}

	updated := *meal
	updated.Foods = result.Foods
	updated.Totals = result.Total()
	updated.CorrectionCount = meal.CorrectionCount + 1
	updated.UpdatedAt = now

	if err := s.meals.ApplyCorrection(ctx, &updated, record, meal.Version); err != nil {
		return nil, err
	}
	updated.Version = meal.Version + 1

	return &updated, nil
}

// GetMeal fetches one of the user's meals
func (s *MealService) GetMeal(ctx context.Context, userID, mealID string) (*domain.Meal, error) {
	return s.getOwnedMeal(ctx, userID, mealID)
}

// ListMeals returns the user's meal history, newest first
func (s *MealService) ListMeals(ctx context.Context, userID string, from, to time.Time, limit int) ([]*domain.Meal, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.meals.ListMeals(ctx, userID, from, to, limit)
}

// ListCorrections returns a meal's correction history, oldest first
func (s *MealService) ListCorrections(ctx context.Context, userID, mealID string) ([]*domain.CorrectionRecord, error) {
	if _, err := s.getOwnedMeal(ctx, userID, mealID); err != nil {
		return nil, err
	}
	return s.meals.ListCorrections(ctx, mealID)
}

// getOwnedMeal hides other users' meals behind ErrMealNotFound
func (s *MealService) getOwnedMeal(ctx context.Context, userID, mealID string) (*domain.Meal, error) {
	meal, err := s.meals.GetMeal(ctx, mealID)
	if err != nil {
		return nil, err
	}
	if meal.UserID != userID {
		return nil, domain.ErrMealNotFound
	}
	return meal, nil
}

// FormatForCorrection renders a detection result in the exact textual
// layout the recognition service's correction endpoint expects as context:
// one "[name][quantity unit][description]" line per food, followed by five
// total lines. The service is a black box that parses this layout, so
// format stability matters more than readability. Pure function.
func FormatForCorrection(result *domain.DetectionResult) string {
	lines := make([]string, 0, len(result.Foods)+5)
	for _, food := range result.Foods {
		lines = append(lines, fmt.Sprintf("[%s][%s %s][%s]", food.Name, food.Quantity, food.Unit, food.Description))
	}

	total := result.Total()
	lines = append(lines,
		"Total Calories: "+formatAmount(total.Calories),
		"Total Carbs: "+formatAmount(total.Carbs),
		"Total Fat: "+formatAmount(total.Fat),
		"Total Protein: "+formatAmount(total.Protein),
		"Total Fiber: "+formatAmount(total.Fiber),
	)

	return strings.Join(lines, "\n")
}

// formatAmount prints nutrition values without trailing zeros (130, 0.4)
func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
