package sdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// StageState mirrors the per-lesson stage flags.
type StageState struct {
	Read     bool `json:"read"`
	Practice bool `json:"practice"`
	Notes    bool `json:"notes"`
}

// Achievement mirrors one unlocked milestone.
type Achievement struct {
	ID         string    `json:"id"`
	Title      string    `json:"title,omitempty"`
	UnlockedAt time.Time `json:"unlocked_at"`
}

// Progress mirrors the public JSON surface of a user progress record.
// Lesson-keyed maps use the "courseID-lessonID" text form.
type Progress struct {
	UserID           string                 `json:"user_id"`
	XP               int                    `json:"xp"`
	Level            int                    `json:"level"`
	Streak           int                    `json:"streak"`
	LongestStreak    int                    `json:"longest_streak"`
	LastActivity     *time.Time             `json:"last_activity,omitempty"`
	CompletedLessons map[string]struct{}    `json:"completed_lessons"`
	StageProgress    map[string]StageState  `json:"stage_progress"`
	Achievements     map[string]Achievement `json:"achievements"`
	Updated          time.Time              `json:"updated"`
}

// ProgressResult is the consolidated outcome of a completion call.
type ProgressResult struct {
	User              Progress      `json:"user"`
	EarnedXP          int           `json:"earned_xp"`
	LeveledUp         bool          `json:"leveled_up"`
	NewLevel          *int          `json:"new_level"`
	NewAchievements   []Achievement `json:"new_achievements"`
	AllStagesComplete bool          `json:"all_stages_complete"`
}

// StageAccess reports which stages of a lesson are reachable.
type StageAccess struct {
	Read     bool `json:"read"`
	Practice bool `json:"practice"`
	Notes    bool `json:"notes"`
}

// LessonAccess is the gating data for one lesson of a course.
type LessonAccess struct {
	Lesson    string      `json:"lesson"`
	Title     string      `json:"title"`
	Unlocked  bool        `json:"unlocked"`
	Completed bool        `json:"completed"`
	State     StageState  `json:"state"`
	Stages    StageAccess `json:"stages"`
}

// QuestionResult is per-question grading feedback.
type QuestionResult struct {
	QuestionID    string `json:"question_id"`
	IsCorrect     bool   `json:"is_correct"`
	CorrectAnswer int    `json:"correct_answer"`
	Explanation   string `json:"explanation"`
}

// QuizResult is the graded outcome of a quiz submission.
type QuizResult struct {
	Score          int              `json:"score"`
	Passed         bool             `json:"passed"`
	CorrectCount   int              `json:"correct_count"`
	TotalQuestions int              `json:"total_questions"`
	Results        []QuestionResult `json:"results"`
}

// Event mirrors the WebSocket event stream payload.
type Event struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	Time        time.Time `json:"time"`
	UserID      string    `json:"user_id"`
	Lesson      string    `json:"lesson,omitempty"`
	Stage       string    `json:"stage,omitempty"`
	XP          int       `json:"xp,omitempty"`
	TotalXP     int       `json:"total_xp,omitempty"`
	Level       int       `json:"level,omitempty"`
	Streak      int       `json:"streak,omitempty"`
	Achievement string    `json:"achievement,omitempty"`
}

// HealthStatus describes the /healthz response.
type HealthStatus struct {
	Status string                 `json:"status"`
	Checks map[string]interface{} `json:"checks"`
}

func decodeJSON(resp *http.Response, target any) error {
	if resp.StatusCode >= http.StatusBadRequest {
		var apiErr struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Message != "" {
			return fmt.Errorf("request failed: status %d: %s", resp.StatusCode, apiErr.Message)
		}
		return fmt.Errorf("request failed: status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(target)
}

// ErrEmptyUserID is returned when user id is empty.
var ErrEmptyUserID = errors.New("user id is required")
