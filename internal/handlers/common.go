// Package handlers contains the HTTP layer: request binding, error-to-status
// mapping and response envelopes. Business rules live in services; nothing
// here mutates an attempt directly.
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/CSCORE-2025/cscore-web/internal/gateway"
	"github.com/CSCORE-2025/cscore-web/internal/services"
	"github.com/CSCORE-2025/cscore-web/internal/session"
	"github.com/CSCORE-2025/cscore-web/internal/utils"
)

// ErrorResponse is the error envelope returned by all endpoints.
type ErrorResponse struct {
	Error   string      `json:"error"`
	Message string      `json:"message,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

// SuccessResponse is the success envelope returned by all endpoints.
type SuccessResponse struct {
	Data    interface{} `json:"data"`
	Message string      `json:"message,omitempty"`
}

// BaseHandler provides the response helpers shared by all handlers.
type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

func (h *BaseHandler) RespondWithError(c *gin.Context, statusCode int, errType, message string, details interface{}) {
	c.JSON(statusCode, ErrorResponse{
		Error:   errType,
		Message: message,
		Details: details,
	})
}

func (h *BaseHandler) RespondWithSuccess(c *gin.Context, statusCode int, data interface{}, message string) {
	c.JSON(statusCode, SuccessResponse{
		Data:    data,
		Message: message,
	})
}

// handleServiceError maps service errors onto HTTP statuses. The order
// matters: specific sentinel checks run before the broad category helpers.
func (h *BaseHandler) handleServiceError(c *gin.Context, err error, operation string) {
	var verrs services.ValidationErrors
	if errors.As(err, &verrs) {
		h.RespondWithError(c, http.StatusBadRequest, "validation_failed", "Request validation failed", verrs)
		return
	}

	var pe *services.PermissionError
	if errors.As(err, &pe) {
		h.RespondWithError(c, http.StatusForbidden, "permission_denied", pe.Error(), nil)
		return
	}

	switch {
	case errors.Is(err, services.ErrConfirmationRequired):
		h.RespondWithError(c, http.StatusBadRequest, "confirmation_required", "Submission must be confirmed", nil)
	case errors.Is(err, session.ErrEmptySubmission):
		h.RespondWithError(c, http.StatusBadRequest, "empty_submission", "At least one programming answer is required", nil)
	case errors.Is(err, session.ErrUnknownQuestion):
		h.RespondWithError(c, http.StatusBadRequest, "unknown_question", "Question does not belong to this attempt", nil)
	case services.IsValidation(err):
		h.RespondWithError(c, http.StatusBadRequest, "validation_failed", err.Error(), nil)
	case services.IsNotFound(err):
		h.RespondWithError(c, http.StatusNotFound, "not_found", err.Error(), nil)
	case services.IsConflict(err):
		h.RespondWithError(c, http.StatusConflict, "conflict", err.Error(), nil)
	case gateway.IsUnauthorized(err):
		h.RespondWithError(c, http.StatusUnauthorized, "unauthorized", "Backend rejected credentials", nil)
	case errors.Is(err, services.ErrLoadFailed):
		h.logger.LogError(err, "upstream load failed", "operation", operation)
		h.RespondWithError(c, http.StatusBadGateway, "load_failed", err.Error(), nil)
	default:
		var ue *gateway.UpstreamError
		if errors.As(err, &ue) {
			h.logger.LogError(err, "upstream error", "operation", operation)
			h.RespondWithError(c, http.StatusBadGateway, "upstream_error", ue.Message, nil)
			return
		}
		h.logger.LogError(err, "unhandled service error", "operation", operation)
		h.RespondWithError(c, http.StatusInternalServerError, "internal_error", "An unexpected error occurred", nil)
	}
}

// parseIDParam extracts a positive integer path parameter.
func parseIDParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_parameter",
			Message: "Parameter '" + name + "' must be a positive integer",
		})
		return 0, false
	}
	return id, true
}
