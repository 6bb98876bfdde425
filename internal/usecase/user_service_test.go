package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/fittrack/backend/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

func TestRegister(t *testing.T) {
	users := NewMockUserRepository()
	service := NewUserService(users)

	user, err := service.Register(context.Background(), "  Jo@Example.COM ", "hunter2hunter2")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if user.Email != "jo@example.com" {
		t.Errorf("Expected normalized email, got %s", user.Email)
	}
	if user.ID == "" {
		t.Error("Expected user to get an ID")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("hunter2hunter2")); err != nil {
		t.Error("Expected stored hash to verify against the password")
	}
	if user.PasswordHash == "hunter2hunter2" {
		t.Error("Expected password not to be stored in the clear")
	}
}

func TestRegister_Validation(t *testing.T) {
	service := NewUserService(NewMockUserRepository())

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"empty email", "", "hunter2hunter2"},
		{"no at sign", "jo.example.com", "hunter2hunter2"},
		{"short password", "jo@example.com", "hunter2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.Register(context.Background(), tt.email, tt.password)
			if !errors.Is(err, domain.ErrInvalidRequest) {
				t.Errorf("Expected ErrInvalidRequest, got %v", err)
			}
		})
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	service := NewUserService(NewMockUserRepository())

	if _, err := service.Register(context.Background(), "jo@example.com", "hunter2hunter2"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	_, err := service.Register(context.Background(), "JO@example.com", "hunter2hunter2")
	if !errors.Is(err, domain.ErrEmailTaken) {
		t.Errorf("Expected ErrEmailTaken, got %v", err)
	}
}

func TestAuthenticate(t *testing.T) {
	service := NewUserService(NewMockUserRepository())

	registered, err := service.Register(context.Background(), "jo@example.com", "hunter2hunter2")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	user, err := service.Authenticate(context.Background(), "Jo@Example.com", "hunter2hunter2")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if user.ID != registered.ID {
		t.Errorf("Expected user %s, got %s", registered.ID, user.ID)
	}

	// Wrong password and unknown email look the same to the caller
	if _, err := service.Authenticate(context.Background(), "jo@example.com", "wrong-password"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Errorf("Expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := service.Authenticate(context.Background(), "nobody@example.com", "hunter2hunter2"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Errorf("Expected ErrInvalidCredentials, got %v", err)
	}
}

func TestSaveProfile_Validation(t *testing.T) {
	service := NewUserService(NewMockUserRepository())

	valid := func() *domain.Profile {
		return &domain.Profile{
			UserID: "u1", Age: 30, Sex: "male", HeightCm: 180, WeightKg: 80,
			ActivityLevel: "moderate", Goal: "lose",
		}
	}

	if err := service.SaveProfile(context.Background(), valid()); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*domain.Profile)
	}{
		{"missing user", func(p *domain.Profile) { p.UserID = "" }},
		{"zero age", func(p *domain.Profile) { p.Age = 0 }},
		{"negative height", func(p *domain.Profile) { p.HeightCm = -1 }},
		{"zero weight", func(p *domain.Profile) { p.WeightKg = 0 }},
		{"unknown goal", func(p *domain.Profile) { p.Goal = "bulk-forever" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profile := valid()
			tt.mutate(profile)
			if err := service.SaveProfile(context.Background(), profile); !errors.Is(err, domain.ErrInvalidRequest) {
				t.Errorf("Expected ErrInvalidRequest, got %v", err)
			}
		})
	}
}

func TestGetProfile(t *testing.T) {
	users := NewMockUserRepository()
	service := NewUserService(users)

	_, err := service.GetProfile(context.Background(), "u1")
	if !errors.Is(err, domain.ErrProfileNotFound) {
		t.Errorf("Expected ErrProfileNotFound, got %v", err)
	}

	profile := &domain.Profile{
		UserID: "u1", Age: 30, Sex: "male", HeightCm: 180, WeightKg: 80,
		ActivityLevel: "moderate", Goal: "lose",
	}
	if err := service.SaveProfile(context.Background(), profile); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	got, err := service.GetProfile(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if got.WeightKg != 80 {
		t.Errorf("Expected weight 80, got %v", got.WeightKg)
	}
	if got.UpdatedAt.IsZero() {
		t.Error("Expected UpdatedAt to be stamped on save")
	}
}
