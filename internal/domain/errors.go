package domain

import "errors"

var (
	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrUserNotFound is returned when no user matches the given ID or email
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailTaken is returned when registering with an email that already exists
	ErrEmailTaken = errors.New("email already registered")

	// ErrInvalidCredentials is returned when login credentials don't match
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrProfileNotFound is returned when a user has no profile yet
	ErrProfileNotFound = errors.New("profile not found")

	// ErrMealNotFound is returned when a meal doesn't exist or belongs to another user
	ErrMealNotFound = errors.New("meal not found")

	// ErrPlanNotFound is returned when no workout plan has been generated yet
	ErrPlanNotFound = errors.New("workout plan not found")

	// ErrVersionConflict is returned when a meal update lost a concurrent race;
	// the caller should re-read the meal and retry the correction
	ErrVersionConflict = errors.New("meal was modified concurrently")

	// ErrRecognitionFailure is returned when the recognition service request fails
	ErrRecognitionFailure = errors.New("recognition service request failed")

	// ErrInvalidRecognitionResponse is returned when the recognition service
	// responds with a payload that fails schema validation
	ErrInvalidRecognitionResponse = errors.New("invalid recognition service response")

	// ErrPlannerFailure is returned when the plan generator request fails
	ErrPlannerFailure = errors.New("plan generator request failed")
)
