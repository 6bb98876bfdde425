package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/fittrack/backend/internal/domain"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// UserService handles registration, login, and profile management
type UserService struct {
	users domain.UserRepository
}

// NewUserService creates a new user service
func NewUserService(users domain.UserRepository) *UserService {
	return &UserService{users: users}
}

// Register creates a new account with a bcrypt password hash
func (s *UserService) Register(ctx context.Context, email, password string) (*domain.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || !strings.Contains(email, "@") || len(password) < 8 {
		return nil, domain.ErrInvalidRequest
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate verifies credentials and returns the user. Unknown emails
// and wrong passwords are indistinguishable to the caller.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	return user, nil
}

// SaveProfile validates and upserts the user's profile
func (s *UserService) SaveProfile(ctx context.Context, profile *domain.Profile) error {
	if profile == nil || profile.UserID == "" {
		return domain.ErrInvalidRequest
	}
	if profile.Age <= 0 || profile.HeightCm <= 0 || profile.WeightKg <= 0 {
		return domain.ErrInvalidRequest
	}
	switch profile.Goal {
	case "lose", "maintain", "gain":
	default:
		return domain.ErrInvalidRequest
	}

	profile.UpdatedAt = time.Now().UTC()
	return s.users.SaveProfile(ctx, profile)
}

// GetProfile fetches the user's profile
func (s *UserService) GetProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	return s.users.GetProfile(ctx, userID)
}
