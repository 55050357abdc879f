package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"

	"ecoclick-api/internal/domain"
	"github.com/gin-gonic/gin"
)

// numeric accepts a JSON number or a string holding one.
type numeric struct {
	Value float64
	Set   bool
}

func (n *numeric) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*n = numeric{}
		return nil
	}
	raw := string(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		raw = strings.TrimSpace(s)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return errors.New("not a number")
	}
	*n = numeric{Value: v, Set: true}
	return nil
}

type createUserRequest struct {
	Name string `json:"name" binding:"required"`
}

type createAchievementRequest struct {
	Name        string   `json:"name" binding:"required"`
	Description string   `json:"description" binding:"required"`
	Points      *float64 `json:"points" binding:"required"`
	Icon        string   `json:"icon"`
}

type progressRequest struct {
	UserID        domain.ID `json:"userId"`
	AchievementID domain.ID `json:"achievementId"`
	Date          string    `json:"date"`
}

type createQuizRequest struct {
	ID        string            `json:"id"`
	Title     string            `json:"title" binding:"required"`
	Category  string            `json:"category" binding:"required"`
	Questions []domain.Question `json:"questions"`
}

type submitAnswersRequest struct {
	UserID  domain.ID         `json:"userId"`
	Answers []json.RawMessage `json:"answers"`
	Score   numeric           `json:"score"`
	TimeSec numeric           `json:"timeSec"`
}

type addCommentRequest struct {
	UserID  domain.ID `json:"userId"`
	Comment string    `json:"comment" binding:"required"`
}

type categoryResultRequest struct {
	UserID   domain.ID       `json:"userId"`
	Category json.RawMessage `json:"category"`
	Score    numeric         `json:"score"`
}

var errCategoryNotString = errors.New("category must be a string")

// category returns the category text; ok is false when it is absent, null or empty.
func (r categoryResultRequest) category() (string, bool, error) {
	raw := bytes.TrimSpace(r.Category)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", false, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false, errCategoryNotString
	}
	return s, s != "", nil
}

// bindJSON decodes and validates the request body, answering 400 on failure.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return false
	}
	return true
}

// queryID reads an optional numeric id from the query string. Zero means absent.
func queryID(c *gin.Context, key string) (domain.ID, bool) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return 0, true
	}
	id, err := domain.ParseID(raw)
	if err != nil {
		badRequest(c, key+" must be a positive integer")
		return 0, false
	}
	return id, true
}
