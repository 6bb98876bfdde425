package usecase

import (
	"context"
	"time"

	"github.com/fittrack/backend/internal/domain"
)

// MockRecognitionClient is a mock implementation of domain.RecognitionClient
type MockRecognitionClient struct {
	detectResult  *domain.DetectionResult
	detectError   error
	correctResult *domain.DetectionResult
	correctError  error

	detectCalled      bool
	lastImage         []byte
	lastFilename      string
	correctCalled     bool
	lastPrevBreakdown string
	lastCorrection    string
}

func (m *MockRecognitionClient) DetectFoods(ctx context.Context, image []byte, filename string) (*domain.DetectionResult, error) {
	m.detectCalled = true
	m.lastImage = image
	m.lastFilename = filename
	if m.detectError != nil {
		return nil, m.detectError
	}
	return m.detectResult, nil
}

func (m *MockRecognitionClient) CorrectFoods(ctx context.Context, previousBreakdown, userCorrection string) (*domain.DetectionResult, error) {
	m.correctCalled = true
	m.lastPrevBreakdown = previousBreakdown
	m.lastCorrection = userCorrection
	if m.correctError != nil {
		return nil, m.correctError
	}
	return m.correctResult, nil
}

// MockMealRepository is a mock implementation of domain.MealRepository
type MockMealRepository struct {
	meals       map[string]*domain.Meal
	corrections map[string][]*domain.CorrectionRecord

	saveError  error
	applyError error

	savedMeal      *domain.Meal
	appliedMeal    *domain.Meal
	appliedRecord  *domain.CorrectionRecord
	appliedVersion int
}

func NewMockMealRepository() *MockMealRepository {
	return &MockMealRepository{
		meals:       make(map[string]*domain.Meal),
		corrections: make(map[string][]*domain.CorrectionRecord),
	}
}

func (m *MockMealRepository) SaveMeal(ctx context.Context, meal *domain.Meal) error {
	if m.saveError != nil {
		return m.saveError
	}
	m.savedMeal = meal
	m.meals[meal.ID] = meal
	return nil
}

func (m *MockMealRepository) GetMeal(ctx context.Context, id string) (*domain.Meal, error) {
	meal, ok := m.meals[id]
	if !ok {
		return nil, domain.ErrMealNotFound
	}
	return meal, nil
}

func (m *MockMealRepository) ListMeals(ctx context.Context, userID string, from, to time.Time, limit int) ([]*domain.Meal, error) {
	var out []*domain.Meal
	for _, meal := range m.meals {
		if meal.UserID == userID {
			out = append(out, meal)
		}
	}
	return out, nil
}

func (m *MockMealRepository) ApplyCorrection(ctx context.Context, meal *domain.Meal, record *domain.CorrectionRecord, expectedVersion int) error {
	m.appliedMeal = meal
	m.appliedRecord = record
	m.appliedVersion = expectedVersion
	if m.applyError != nil {
		return m.applyError
	}
	stored, ok := m.meals[meal.ID]
	if !ok {
		return domain.ErrMealNotFound
	}
	if stored.Version != expectedVersion {
		return domain.ErrVersionConflict
	}
	next := *meal
	next.Version = expectedVersion + 1
	m.meals[meal.ID] = &next
	m.corrections[meal.ID] = append(m.corrections[meal.ID], record)
	return nil
}

func (m *MockMealRepository) ListCorrections(ctx context.Context, mealID string) ([]*domain.CorrectionRecord, error) {
	return m.corrections[mealID], nil
}

// MockImageStore is a mock implementation of domain.ImageStore
type MockImageStore struct {
	saveError error
	saved     []byte
}

func (m *MockImageStore) Save(ctx context.Context, userID, mealID string, data []byte) (string, error) {
	if m.saveError != nil {
		return "", m.saveError
	}
	m.saved = data
	return "https://cdn.example.com/" + userID + "/" + mealID + ".jpg", nil
}

// MockPlannerClient is a mock implementation of domain.PlannerClient
type MockPlannerClient struct {
	plan      *domain.WorkoutPlan
	planError error
	called    bool
}

func (m *MockPlannerClient) GenerateWorkoutPlan(ctx context.Context, profile *domain.Profile) (*domain.WorkoutPlan, error) {
	m.called = true
	if m.planError != nil {
		return nil, m.planError
	}
	plan := *m.plan
	return &plan, nil
}

// MockPlanRepository is a mock implementation of domain.PlanRepository
type MockPlanRepository struct {
	plans    map[string]*domain.WorkoutPlan
	getCalls int
}

func NewMockPlanRepository() *MockPlanRepository {
	return &MockPlanRepository{plans: make(map[string]*domain.WorkoutPlan)}
}

func (m *MockPlanRepository) SaveWorkoutPlan(ctx context.Context, plan *domain.WorkoutPlan) error {
	m.plans[plan.UserID] = plan
	return nil
}

func (m *MockPlanRepository) GetWorkoutPlan(ctx context.Context, userID string) (*domain.WorkoutPlan, error) {
	m.getCalls++
	plan, ok := m.plans[userID]
	if !ok {
		return nil, domain.ErrPlanNotFound
	}
	return plan, nil
}

// MockUserRepository is a mock implementation of domain.UserRepository
type MockUserRepository struct {
	users    map[string]*domain.User
	profiles map[string]*domain.Profile
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		users:    make(map[string]*domain.User),
		profiles: make(map[string]*domain.Profile),
	}
}

func (m *MockUserRepository) CreateUser(ctx context.Context, user *domain.User) error {
	for _, existing := range m.users {
		if existing.Email == user.Email {
			return domain.ErrEmailTaken
		}
	}
	m.users[user.ID] = user
	return nil
}

func (m *MockUserRepository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, user := range m.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (m *MockUserRepository) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}

func (m *MockUserRepository) SaveProfile(ctx context.Context, profile *domain.Profile) error {
	m.profiles[profile.UserID] = profile
	return nil
}

func (m *MockUserRepository) GetProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	profile, ok := m.profiles[userID]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	return profile, nil
}

// MockCacheRepository is a mock implementation of domain.CacheRepository
type MockCacheRepository struct {
	data      map[string][]byte
	getError  error
	setError  error
	setCalled bool
}

func NewMockCacheRepository() *MockCacheRepository {
	return &MockCacheRepository{data: make(map[string][]byte)}
}

func (m *MockCacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	if value, ok := m.data[key]; ok {
		return value, nil
	}
	return nil, domain.ErrCacheMiss
}

func (m *MockCacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.setCalled = true
	if m.setError != nil {
		return m.setError
	}
	m.data[key] = value
	return nil
}

func (m *MockCacheRepository) Delete(ctx context.Context, key string) error {
	delete(m.data, key)
	return nil
}

func (m *MockCacheRepository) Exists(ctx context.Context, key string) (bool, error) {
	_, ok := m.data[key]
	return ok, nil
}
