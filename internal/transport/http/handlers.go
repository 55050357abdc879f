package http

import (
	"log/slog"
	"net/http"

	"ecoclick-api/internal/app"
	"ecoclick-api/internal/domain"
	"github.com/gin-gonic/gin"
)

// Handler exposes the application service over HTTP.
type Handler struct {
	service *app.Service
	logger  *slog.Logger
}

func NewHandler(service *app.Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{service: service, logger: logger}
}

func (h *Handler) register(r gin.IRoutes) {
	r.GET("/users", h.listUsers)
	r.POST("/users", h.createUser)

	r.GET("/achievements", h.listAchievements)
	r.POST("/achievements", h.createAchievement)

	r.GET("/progress", h.listProgress)
	r.POST("/progress", h.recordProgress)

	r.GET("/userAchievements", h.listUserAchievements)
	r.POST("/userAchievements", h.recordUserAchievement)

	r.GET("/quizzes", h.listQuizzes)
	r.GET("/quizzes/:id", h.getQuiz)
	r.POST("/quizzes", h.createQuiz)

	r.POST("/games/:gameId/answers", h.submitAnswers)
	r.GET("/games/:gameId/answers", h.listAnswers)
	r.GET("/feedback", h.listFeedback)

	r.GET("/comments", h.listComments)
	r.POST("/comments", h.addComment)

	r.POST("/results/category", h.recordCategoryResult)
	r.GET("/stats/responses", h.responseStats)
}

func (h *Handler) listUsers(c *gin.Context) {
	users, err := h.service.ListUsers(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *Handler) createUser(c *gin.Context) {
	var req createUserRequest
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.service.CreateUser(c.Request.Context(), req.Name)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (h *Handler) listAchievements(c *gin.Context) {
	items, err := h.service.ListAchievements(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *Handler) createAchievement(c *gin.Context) {
	var req createAchievementRequest
	if !bindJSON(c, &req) {
		return
	}
	achievement, err := h.service.CreateAchievement(c.Request.Context(), app.NewAchievement{
		Name:        req.Name,
		Description: req.Description,
		Points:      *req.Points,
		Icon:        req.Icon,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, achievement)
}

func (h *Handler) listProgress(c *gin.Context) {
	userID, ok := queryID(c, "userId")
	if !ok {
		return
	}
	items, err := h.service.ListProgress(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *Handler) recordProgress(c *gin.Context) {
	var req progressRequest
	if !bindJSON(c, &req) {
		return
	}
	item, err := h.service.RecordProgress(c.Request.Context(), req.UserID, req.AchievementID, req.Date)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"item": item})
}

func (h *Handler) listUserAchievements(c *gin.Context) {
	userID, ok := queryID(c, "userId")
	if !ok {
		return
	}
	items, err := h.service.ListUserAchievements(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *Handler) recordUserAchievement(c *gin.Context) {
	var req progressRequest
	if !bindJSON(c, &req) {
		return
	}
	item, err := h.service.RecordUserAchievement(c.Request.Context(), req.UserID, req.AchievementID, req.Date)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"item": item})
}

func (h *Handler) listQuizzes(c *gin.Context) {
	items, err := h.service.ListQuizzes(c.Request.Context(), c.Query("category"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "items": items})
}

func (h *Handler) getQuiz(c *gin.Context) {
	item, err := h.service.GetQuiz(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "item": item})
}

func (h *Handler) createQuiz(c *gin.Context) {
	var req createQuizRequest
	if !bindJSON(c, &req) {
		return
	}
	item, err := h.service.CreateQuiz(c.Request.Context(), domain.Quiz{
		ID:        req.ID,
		Title:     req.Title,
		Category:  req.Category,
		Questions: req.Questions,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "item": item})
}

func (h *Handler) submitAnswers(c *gin.Context) {
	var req submitAnswersRequest
	if !bindJSON(c, &req) {
		return
	}
	item, err := h.service.SubmitAnswers(c.Request.Context(), app.NewGameAnswer{
		GameID:  c.Param("gameId"),
		UserID:  req.UserID,
		Answers: req.Answers,
		Score:   req.Score.Value,
		TimeSec: req.TimeSec.Value,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "item": item})
}

func (h *Handler) listAnswers(c *gin.Context) {
	userID, ok := queryID(c, "userId")
	if !ok {
		return
	}
	items, err := h.service.ListAnswers(c.Request.Context(), domain.AnswerFilter{
		GameID: c.Param("gameId"),
		UserID: userID,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "items": items})
}

func (h *Handler) listFeedback(c *gin.Context) {
	items, err := h.service.ListFeedback(c.Request.Context(), c.Query("topic"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "items": items})
}

func (h *Handler) listComments(c *gin.Context) {
	items, err := h.service.ListComments(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *Handler) addComment(c *gin.Context) {
	var req addCommentRequest
	if !bindJSON(c, &req) {
		return
	}
	comment, err := h.service.AddComment(c.Request.Context(), req.UserID, req.Comment)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "comment": comment})
}

func (h *Handler) recordCategoryResult(c *gin.Context) {
	var req categoryResultRequest
	if !bindJSON(c, &req) {
		return
	}
	category, hasCategory, err := req.category()
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	if req.UserID.IsZero() || !hasCategory || !req.Score.Set {
		badRequest(c, "userId, category and score are required")
		return
	}
	if req.Score.Value < 0 {
		badRequest(c, "score must be a number >= 0")
		return
	}
	item, err := h.service.RecordCategoryResult(c.Request.Context(), req.UserID, category, req.Score.Value)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "item": item})
}

func (h *Handler) responseStats(c *gin.Context) {
	userID, ok := queryID(c, "userId")
	if !ok {
		return
	}
	report, err := h.service.ResponseStats(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "summary": report.Summary, "categories": report.Categories})
}
