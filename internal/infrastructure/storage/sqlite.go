// Package storage persists users, meals, corrections, and plans in SQLite.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/fittrack/backend/internal/domain"
)

// SQLiteStorage implements the domain repository interfaces on a single
// SQLite database. Multi-row writes (meal + foods, correction + food
// replacement) go through transactions.
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage opens (or creates) the database and initializes the schema
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	storage := &SQLiteStorage{db: db}
	if err := storage.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return storage, nil
}

// Close closes the underlying database handle
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

func (s *SQLiteStorage) initSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS users (
        id TEXT PRIMARY KEY,
        email TEXT NOT NULL UNIQUE,
        password_hash TEXT NOT NULL,
        created_at DATETIME NOT NULL
    );

    CREATE TABLE IF NOT EXISTS profiles (
        user_id TEXT PRIMARY KEY,
        age INTEGER NOT NULL,
        sex TEXT NOT NULL,
        height_cm REAL NOT NULL,
        weight_kg REAL NOT NULL,
        activity_level TEXT NOT NULL,
        goal TEXT NOT NULL,
        updated_at DATETIME NOT NULL,
        FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
    );

    CREATE TABLE IF NOT EXISTS meals (
        id TEXT PRIMARY KEY,
        user_id TEXT NOT NULL,
        image_url TEXT NOT NULL,
        total_calories REAL NOT NULL,
        total_carbs REAL NOT NULL,
        total_fat REAL NOT NULL,
        total_protein REAL NOT NULL,
        total_fiber REAL NOT NULL,
        correction_count INTEGER NOT NULL DEFAULT 0,
        version INTEGER NOT NULL DEFAULT 1,
        created_at DATETIME NOT NULL,
        updated_at DATETIME NOT NULL
    );

    CREATE TABLE IF NOT EXISTS foods (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        meal_id TEXT NOT NULL,
        position INTEGER NOT NULL,
        name TEXT NOT NULL,
        quantity TEXT NOT NULL,
        unit TEXT NOT NULL,
        description TEXT NOT NULL,
        calories_per_quantity REAL NOT NULL,
        carbs_per_quantity REAL NOT NULL,
        fat_per_quantity REAL NOT NULL,
        protein_per_quantity REAL NOT NULL,
        fiber_per_quantity REAL NOT NULL,
        calories REAL NOT NULL,
        carbs REAL NOT NULL,
        fat REAL NOT NULL,
        protein REAL NOT NULL,
        fiber REAL NOT NULL,
        FOREIGN KEY (meal_id) REFERENCES meals(id) ON DELETE CASCADE
    );

    CREATE TABLE IF NOT EXISTS corrections (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        meal_id TEXT NOT NULL,
        previous_breakdown TEXT NOT NULL,
        user_correction TEXT NOT NULL,
        prev_calories REAL NOT NULL,
        prev_carbs REAL NOT NULL,
        prev_fat REAL NOT NULL,
        prev_protein REAL NOT NULL,
        prev_fiber REAL NOT NULL,
        created_at DATETIME NOT NULL,
        FOREIGN KEY (meal_id) REFERENCES meals(id) ON DELETE CASCADE
    );

    CREATE TABLE IF NOT EXISTS workout_plans (
        user_id TEXT PRIMARY KEY,
        id TEXT NOT NULL,
        goal TEXT NOT NULL,
        days TEXT NOT NULL,
        created_at DATETIME NOT NULL
    );

    CREATE INDEX IF NOT EXISTS idx_meals_user_created ON meals(user_id, created_at);
    CREATE INDEX IF NOT EXISTS idx_foods_meal_id ON foods(meal_id);
    CREATE INDEX IF NOT EXISTS idx_corrections_meal_id ON corrections(meal_id);
    `

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// --- users ---

// CreateUser inserts a new user; the email must be unused
func (s *SQLiteStorage) CreateUser(ctx context.Context, user *domain.User) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, email, password_hash, created_at) VALUES (?, ?, ?, ?)`,
		user.ID, user.Email, user.PasswordHash, user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrEmailTaken
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// GetUserByEmail looks a user up for login
func (s *SQLiteStorage) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.getUser(ctx, `SELECT id, email, password_hash, created_at FROM users WHERE email = ?`, email)
}

// GetUserByID looks a user up by primary key
func (s *SQLiteStorage) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	return s.getUser(ctx, `SELECT id, email, password_hash, created_at FROM users WHERE id = ?`, id)
}

func (s *SQLiteStorage) getUser(ctx context.Context, query string, arg interface{}) (*domain.User, error) {
	var user domain.User
	err := s.db.QueryRowContext(ctx, query, arg).
		Scan(&user.ID, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return &user, nil
}

// SaveProfile upserts the user's profile
func (s *SQLiteStorage) SaveProfile(ctx context.Context, profile *domain.Profile) error {
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO profiles (user_id, age, sex, height_cm, weight_kg, activity_level, goal, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(user_id) DO UPDATE SET
            age = excluded.age,
            sex = excluded.sex,
            height_cm = excluded.height_cm,
            weight_kg = excluded.weight_kg,
            activity_level = excluded.activity_level,
            goal = excluded.goal,
            updated_at = excluded.updated_at`,
		profile.UserID, profile.Age, profile.Sex, profile.HeightCm, profile.WeightKg,
		profile.ActivityLevel, profile.Goal, profile.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}

// GetProfile fetches the user's profile
func (s *SQLiteStorage) GetProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	var p domain.Profile
	err := s.db.QueryRowContext(ctx, `
        SELECT user_id, age, sex, height_cm, weight_kg, activity_level, goal, updated_at
        FROM profiles WHERE user_id = ?`, userID).
		Scan(&p.UserID, &p.Age, &p.Sex, &p.HeightCm, &p.WeightKg, &p.ActivityLevel, &p.Goal, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query profile: %w", err)
	}
	return &p, nil
}

// --- meals ---

// SaveMeal inserts a meal and its foods in one transaction
func (s *SQLiteStorage) SaveMeal(ctx context.Context, meal *domain.Meal) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
        INSERT INTO meals (id, user_id, image_url, total_calories, total_carbs, total_fat,
            total_protein, total_fiber, correction_count, version, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		meal.ID, meal.UserID, meal.ImageURL,
		meal.Totals.Calories, meal.Totals.Carbs, meal.Totals.Fat, meal.Totals.Protein, meal.Totals.Fiber,
		meal.CorrectionCount, meal.Version, meal.CreatedAt, meal.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert meal: %w", err)
	}

	if err := insertFoods(ctx, tx, meal.ID, meal.Foods); err != nil {
		return err
	}

	return tx.Commit()
}

// GetMeal fetches a meal with its foods
func (s *SQLiteStorage) GetMeal(ctx context.Context, id string) (*domain.Meal, error) {
	var meal domain.Meal
	err := s.db.QueryRowContext(ctx, `
        SELECT id, user_id, image_url, total_calories, total_carbs, total_fat,
            total_protein, total_fiber, correction_count, version, created_at, updated_at
        FROM meals WHERE id = ?`, id).
		Scan(&meal.ID, &meal.UserID, &meal.ImageURL,
			&meal.Totals.Calories, &meal.Totals.Carbs, &meal.Totals.Fat,
			&meal.Totals.Protein, &meal.Totals.Fiber,
			&meal.CorrectionCount, &meal.Version, &meal.CreatedAt, &meal.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrMealNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query meal: %w", err)
	}

	foods, err := s.loadFoods(ctx, meal.ID)
	if err != nil {
		return nil, err
	}
	meal.Foods = foods
	return &meal, nil
}

// ListMeals returns the user's meals in the date range, newest first
func (s *SQLiteStorage) ListMeals(ctx context.Context, userID string, from, to time.Time, limit int) ([]*domain.Meal, error) {
	query := `
        SELECT id, user_id, image_url, total_calories, total_carbs, total_fat,
            total_protein, total_fiber, correction_count, version, created_at, updated_at
        FROM meals WHERE user_id = ?`
	args := []interface{}{userID}

	if !from.IsZero() {
		query += " AND created_at >= ?"
		args = append(args, from)
	}
	if !to.IsZero() {
		query += " AND created_at <= ?"
		args = append(args, to)
	}
	query += " ORDER BY created_at DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query meals: %w", err)
	}
	defer rows.Close()

	var meals []*domain.Meal
	for rows.Next() {
		var meal domain.Meal
		if err := rows.Scan(&meal.ID, &meal.UserID, &meal.ImageURL,
			&meal.Totals.Calories, &meal.Totals.Carbs, &meal.Totals.Fat,
			&meal.Totals.Protein, &meal.Totals.Fiber,
			&meal.CorrectionCount, &meal.Version, &meal.CreatedAt, &meal.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan meal: %w", err)
		}
		meals = append(meals, &meal)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate meals: %w", err)
	}

	for _, meal := range meals {
		foods, err := s.loadFoods(ctx, meal.ID)
		if err != nil {
			return nil, err
		}
		meal.Foods = foods
	}

	return meals, nil
}

// ApplyCorrection replaces a meal's foods and totals and appends the
// correction record, all in one transaction. The meal row is updated with
// an optimistic version check: if another correction landed since the
// caller read the meal, nothing is written and ErrVersionConflict is
// returned so the caller can re-read and retry.
func (s *SQLiteStorage) ApplyCorrection(ctx context.Context, meal *domain.Meal, record *domain.CorrectionRecord, expectedVersion int) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
        UPDATE meals SET
            total_calories = ?, total_carbs = ?, total_fat = ?, total_protein = ?, total_fiber = ?,
            correction_count = ?, version = version + 1, updated_at = ?
        WHERE id = ? AND version = ?`,
		meal.Totals.Calories, meal.Totals.Carbs, meal.Totals.Fat, meal.Totals.Protein, meal.Totals.Fiber,
		meal.CorrectionCount, meal.UpdatedAt, meal.ID, expectedVersion)
	if err != nil {
		return fmt.Errorf("failed to update meal: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		var exists int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(1) FROM meals WHERE id = ?`, meal.ID).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check meal existence: %w", err)
		}
		if exists == 0 {
			return domain.ErrMealNotFound
		}
		return domain.ErrVersionConflict
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM foods WHERE meal_id = ?`, meal.ID); err != nil {
		return fmt.Errorf("failed to delete old foods: %w", err)
	}
	if err := insertFoods(ctx, tx, meal.ID, meal.Foods); err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
        INSERT INTO corrections (meal_id, previous_breakdown, user_correction,
            prev_calories, prev_carbs, prev_fat, prev_protein, prev_fiber, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.MealID, record.PreviousBreakdown, record.UserCorrection,
		record.PreviousTotals.Calories, record.PreviousTotals.Carbs, record.PreviousTotals.Fat,
		record.PreviousTotals.Protein, record.PreviousTotals.Fiber, record.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert correction: %w", err)
	}

	return tx.Commit()
}

// ListCorrections returns a meal's correction history, oldest first
func (s *SQLiteStorage) ListCorrections(ctx context.Context, mealID string) ([]*domain.CorrectionRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT id, meal_id, previous_breakdown, user_correction,
            prev_calories, prev_carbs, prev_fat, prev_protein, prev_fiber, created_at
        FROM corrections WHERE meal_id = ? ORDER BY id`, mealID)
	if err != nil {
		return nil, fmt.Errorf("failed to query corrections: %w", err)
	}
	defer rows.Close()

	var records []*domain.CorrectionRecord
	for rows.Next() {
		var r domain.CorrectionRecord
		if err := rows.Scan(&r.ID, &r.MealID, &r.PreviousBreakdown, &r.UserCorrection,
			&r.PreviousTotals.Calories, &r.PreviousTotals.Carbs, &r.PreviousTotals.Fat,
			&r.PreviousTotals.Protein, &r.PreviousTotals.Fiber, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan correction: %w", err)
		}
		records = append(records, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate corrections: %w", err)
	}
	return records, nil
}

// --- plans ---

// SaveWorkoutPlan stores the user's current plan, replacing any previous one
func (s *SQLiteStorage) SaveWorkoutPlan(ctx context.Context, plan *domain.WorkoutPlan) error {
	days, err := json.Marshal(plan.Days)
	if err != nil {
		return fmt.Errorf("failed to marshal plan days: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
        INSERT INTO workout_plans (user_id, id, goal, days, created_at)
        VALUES (?, ?, ?, ?, ?)
        ON CONFLICT(user_id) DO UPDATE SET
            id = excluded.id,
            goal = excluded.goal,
            days = excluded.days,
            created_at = excluded.created_at`,
		plan.UserID, plan.ID, plan.Goal, string(days), plan.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save plan: %w", err)
	}
	return nil
}

// GetWorkoutPlan fetches the user's current plan
func (s *SQLiteStorage) GetWorkoutPlan(ctx context.Context, userID string) (*domain.WorkoutPlan, error) {
	var plan domain.WorkoutPlan
	var days string
	err := s.db.QueryRowContext(ctx, `
        SELECT id, user_id, goal, days, created_at FROM workout_plans WHERE user_id = ?`, userID).
		Scan(&plan.ID, &plan.UserID, &plan.Goal, &days, &plan.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrPlanNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query plan: %w", err)
	}
	if err := json.Unmarshal([]byte(days), &plan.Days); err != nil {
		return nil, fmt.Errorf("failed to unmarshal plan days: %w", err)
	}
	return &plan, nil
}

// --- helpers ---

func insertFoods(ctx context.Context, tx *sql.Tx, mealID string, foods []domain.DetectedFood) error {
	query := `
        INSERT INTO foods (meal_id, position, name, quantity, unit, description,
            calories_per_quantity, carbs_per_quantity, fat_per_quantity,
            protein_per_quantity, fiber_per_quantity,
            calories, carbs, fat, protein, fiber)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	for i, food := range foods {
		_, err := tx.ExecContext(ctx, query,
			mealID, i, food.Name, food.Quantity, food.Unit, food.Description,
			food.CaloriesPerQuantity, food.CarbsPerQuantity, food.FatPerQuantity,
			food.ProteinPerQuantity, food.FiberPerQuantity,
			food.Nutrition.Calories, food.Nutrition.Carbs, food.Nutrition.Fat,
			food.Nutrition.Protein, food.Nutrition.Fiber)
		if err != nil {
			return fmt.Errorf("failed to insert food: %w", err)
		}
	}
	return nil
}

func (s *SQLiteStorage) loadFoods(ctx context.Context, mealID string) ([]domain.DetectedFood, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT name, quantity, unit, description,
            calories_per_quantity, carbs_per_quantity, fat_per_quantity,
            protein_per_quantity, fiber_per_quantity,
            calories, carbs, fat, protein, fiber
        FROM foods WHERE meal_id = ? ORDER BY position`, mealID)
	if err != nil {
		return nil, fmt.Errorf("failed to query foods: %w", err)
	}
	defer rows.Close()

	var foods []domain.DetectedFood
	for rows.Next() {
		var f domain.DetectedFood
		if err := rows.Scan(&f.Name, &f.Quantity, &f.Unit, &f.Description,
			&f.CaloriesPerQuantity, &f.CarbsPerQuantity, &f.FatPerQuantity,
			&f.ProteinPerQuantity, &f.FiberPerQuantity,
			&f.Nutrition.Calories, &f.Nutrition.Carbs, &f.Nutrition.Fat,
			&f.Nutrition.Protein, &f.Nutrition.Fiber); err != nil {
			return nil, fmt.Errorf("failed to scan food: %w", err)
		}
		foods = append(foods, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate foods: %w", err)
	}
	return foods, nil
}

func isUniqueViolation(err error) bool {
	// modernc.org/sqlite reports constraint failures in the error text
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "constraint failed")
}
