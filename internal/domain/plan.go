package domain

import "time"

// Exercise is one prescribed exercise within a workout day
type Exercise struct {
	Name        string `json:"name"`
	Sets        int    `json:"sets"`
	Reps        string `json:"reps"`
	RestSeconds int    `json:"restSeconds,omitempty"`
}

// WorkoutDay groups the exercises for one day of the plan
type WorkoutDay struct {
	Day       string     `json:"day"`
	Focus     string     `json:"focus"`
	Exercises []Exercise `json:"exercises"`
}

// WorkoutPlan is a generated weekly workout plan for one user
type WorkoutPlan struct {
	ID        string       `json:"id"`
	UserID    string       `json:"userId"`
	Goal      string       `json:"goal"`
	Days      []WorkoutDay `json:"days"`
	CreatedAt time.Time    `json:"createdAt"`
}
