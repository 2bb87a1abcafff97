package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/CSCORE-2025/cscore-web/internal/auth"
	"github.com/CSCORE-2025/cscore-web/internal/services"
	"github.com/CSCORE-2025/cscore-web/internal/utils"
)

// AttemptHandler exposes the attempt session lifecycle over HTTP. Every
// route requires an authenticated student; the session id in the path is
// checked against the caller's identity by the service.
type AttemptHandler struct {
	BaseHandler
	attempts services.AttemptService
}

func NewAttemptHandler(attempts services.AttemptService, logger utils.Logger) *AttemptHandler {
	return &AttemptHandler{
		BaseHandler: NewBaseHandler(logger),
		attempts:    attempts,
	}
}

func (h *AttemptHandler) RegisterRoutes(rg *gin.RouterGroup) {
	attempts := rg.Group("/attempts")
	{
		attempts.POST("", h.Start)
		attempts.GET("/:sessionId", h.Get)
		attempts.PUT("/:sessionId/answer", h.SetAnswer)
		attempts.PUT("/:sessionId/option", h.ToggleOption)
		attempts.POST("/:sessionId/navigate", h.Navigate)
		attempts.GET("/:sessionId/time", h.TimeRemaining)
		attempts.POST("/:sessionId/submit", h.Submit)
		attempts.DELETE("/:sessionId", h.Teardown)
	}
}

// Start loads the assignment and opens a new attempt session.
func (h *AttemptHandler) Start(c *gin.Context) {
	user, ok := auth.UserFrom(c)
	if !ok {
		h.RespondWithError(c, http.StatusUnauthorized, "unauthorized", "Not authenticated", nil)
		return
	}

	var req services.StartAttemptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "invalid_request", "Invalid request body", err.Error())
		return
	}

	resp, err := h.attempts.Start(c.Request.Context(), &req, user, auth.TokenFrom(c))
	if err != nil {
		h.handleServiceError(c, err, "start attempt")
		return
	}

	status := http.StatusCreated
	if resp.Processing {
		status = http.StatusAccepted
	}
	h.RespondWithSuccess(c, status, resp, "")
}

func (h *AttemptHandler) Get(c *gin.Context) {
	user, ok := auth.UserFrom(c)
	if !ok {
		h.RespondWithError(c, http.StatusUnauthorized, "unauthorized", "Not authenticated", nil)
		return
	}

	resp, err := h.attempts.Get(c.Request.Context(), c.Param("sessionId"), user)
	if err != nil {
		h.handleServiceError(c, err, "get attempt")
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, resp, "")
}

func (h *AttemptHandler) SetAnswer(c *gin.Context) {
	user, ok := auth.UserFrom(c)
	if !ok {
		h.RespondWithError(c, http.StatusUnauthorized, "unauthorized", "Not authenticated", nil)
		return
	}

	var req services.SetAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "invalid_request", "Invalid request body", err.Error())
		return
	}

	resp, err := h.attempts.SetAnswer(c.Request.Context(), c.Param("sessionId"), &req, user)
	if err != nil {
		h.handleServiceError(c, err, "set answer")
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, resp, "")
}

func (h *AttemptHandler) ToggleOption(c *gin.Context) {
	user, ok := auth.UserFrom(c)
	if !ok {
		h.RespondWithError(c, http.StatusUnauthorized, "unauthorized", "Not authenticated", nil)
		return
	}

	var req services.ToggleOptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "invalid_request", "Invalid request body", err.Error())
		return
	}

	resp, err := h.attempts.ToggleOption(c.Request.Context(), c.Param("sessionId"), &req, user)
	if err != nil {
		h.handleServiceError(c, err, "toggle option")
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, resp, "")
}

func (h *AttemptHandler) Navigate(c *gin.Context) {
	user, ok := auth.UserFrom(c)
	if !ok {
		h.RespondWithError(c, http.StatusUnauthorized, "unauthorized", "Not authenticated", nil)
		return
	}

	var req services.NavigateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "invalid_request", "Invalid request body", err.Error())
		return
	}

	resp, err := h.attempts.Navigate(c.Request.Context(), c.Param("sessionId"), &req, user)
	if err != nil {
		h.handleServiceError(c, err, "navigate")
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, resp, "")
}

// TimeRemaining is the lightweight poll endpoint for the countdown display.
func (h *AttemptHandler) TimeRemaining(c *gin.Context) {
	user, ok := auth.UserFrom(c)
	if !ok {
		h.RespondWithError(c, http.StatusUnauthorized, "unauthorized", "Not authenticated", nil)
		return
	}

	remaining, timed, err := h.attempts.TimeRemaining(c.Request.Context(), c.Param("sessionId"), user)
	if err != nil {
		h.handleServiceError(c, err, "time remaining")
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, gin.H{
		"timed":    timed,
		"timeLeft": remaining,
	}, "")
}

func (h *AttemptHandler) Submit(c *gin.Context) {
	user, ok := auth.UserFrom(c)
	if !ok {
		h.RespondWithError(c, http.StatusUnauthorized, "unauthorized", "Not authenticated", nil)
		return
	}

	var req services.SubmitAttemptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "invalid_request", "Invalid request body", err.Error())
		return
	}

	resp, err := h.attempts.Submit(c.Request.Context(), c.Param("sessionId"), &req, user)
	if err != nil {
		h.handleServiceError(c, err, "submit attempt")
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, resp, "Assignment submitted")
}

func (h *AttemptHandler) Teardown(c *gin.Context) {
	user, ok := auth.UserFrom(c)
	if !ok {
		h.RespondWithError(c, http.StatusUnauthorized, "unauthorized", "Not authenticated", nil)
		return
	}

	if err := h.attempts.Teardown(c.Request.Context(), c.Param("sessionId"), user); err != nil {
		h.handleServiceError(c, err, "teardown attempt")
		return
	}
	c.Status(http.StatusNoContent)
}
