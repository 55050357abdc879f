package domain

import (
	"encoding/json"
	"time"
)

// User is a registered player.
type User struct {
	ID   ID     `json:"id"`
	Name string `json:"name"`
}

// Achievement is a badge a user can earn.
type Achievement struct {
	ID          ID      `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Points      float64 `json:"points"`
	Icon        string  `json:"icon,omitempty"`
}

// AchievementProgress records that a user earned an achievement.
type AchievementProgress struct {
	UserID        ID     `json:"userId"`
	AchievementID ID     `json:"achievementId"`
	Date          string `json:"date"`
}

// ProgressItem is an earned achievement joined with its metadata.
type ProgressItem struct {
	ID   ID     `json:"id"`
	Name string `json:"name"`
	Icon string `json:"icon,omitempty"`
	Date string `json:"date"`
}

// UserAchievement mirrors AchievementProgress in its own collection.
type UserAchievement struct {
	UserID        ID     `json:"userId"`
	AchievementID ID     `json:"achievementId"`
	Date          string `json:"date"`
}

// UserAchievementDetail is a UserAchievement joined with the achievement it points to.
type UserAchievementDetail struct {
	UserID        ID      `json:"userId"`
	AchievementID ID      `json:"achievementId"`
	Date          string  `json:"date"`
	Name          string  `json:"name"`
	Description   string  `json:"description"`
	Points        float64 `json:"points"`
}

// Option represents a possible answer for a question.
type Option struct {
	ID      string `json:"id"`
	Text    string `json:"text"`
	Correct bool   `json:"correct"`
}

// Question models an MCQ question.
type Question struct {
	ID      string   `json:"id"`
	Prompt  string   `json:"prompt"`
	Options []Option `json:"options"`
	Points  int      `json:"points,omitempty"`
}

// Quiz is a categorised collection of questions.
type Quiz struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Category  string     `json:"category"`
	Questions []Question `json:"questions"`
}

// EcoFeedback is an educational tip shown after a game, grouped by topic.
type EcoFeedback struct {
	ID      string `json:"id"`
	Topic   string `json:"topic"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

// Comment is free text left by a user.
type Comment struct {
	ID        string    `json:"id"`
	UserID    ID        `json:"userId"`
	UserName  string    `json:"userName"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
}

// CategoryResult is one scored attempt by a user within a quiz category.
type CategoryResult struct {
	UserID   ID      `json:"userId"`
	Category string  `json:"category"`
	Score    float64 `json:"score"`
}

// GameAnswer is the record of a submitted game session.
type GameAnswer struct {
	ID        string            `json:"id"`
	GameID    string            `json:"gameId"`
	UserID    ID                `json:"userId"`
	Answers   []json.RawMessage `json:"answers"`
	Score     float64           `json:"score"`
	TimeSec   float64           `json:"timeSec"`
	CreatedAt time.Time         `json:"createdAt"`
}

// AnswerFilter narrows a GameAnswer listing. Zero values match everything.
type AnswerFilter struct {
	GameID string
	UserID ID
}

// Matches reports whether the answer passes the filter.
func (f AnswerFilter) Matches(a GameAnswer) bool {
	if f.GameID != "" && a.GameID != f.GameID {
		return false
	}
	if !f.UserID.IsZero() && a.UserID != f.UserID {
		return false
	}
	return true
}
