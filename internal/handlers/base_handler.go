package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/lecture-service/internal/services"
	"github.com/SAP-F-2025/lecture-service/internal/utils"
)

// ErrorResponse is the uniform error envelope
type ErrorResponse struct {
	Timestamp time.Time `json:"timestamp"`
	Status    int       `json:"status"`
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	Details   any       `json:"details,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

func (h *BaseHandler) log(c *gin.Context) utils.Logger {
	return utils.GetLogger(c, h.logger)
}

// LogRequest records the start of a handler at debug level
func (h *BaseHandler) LogRequest(c *gin.Context, msg string, args ...any) {
	h.log(c).Debug(msg, append(args, "path", c.FullPath())...)
}

// writeError renders the error envelope and aborts the chain
func writeError(c *gin.Context, status int, message string, details any) {
	c.AbortWithStatusJSON(status, ErrorResponse{
		Timestamp: time.Now().UTC(),
		Status:    status,
		Error:     http.StatusText(status),
		Message:   message,
		Details:   details,
	})
}

func (h *BaseHandler) badRequest(c *gin.Context, message string, err error) {
	var details any
	if err != nil {
		details = err.Error()
	}
	writeError(c, http.StatusBadRequest, message, details)
}

// handleServiceError maps a service error kind onto its HTTP status
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	var svcErr *services.ServiceError
	if !errors.As(err, &svcErr) {
		h.log(c).Error("Unhandled service error", "error", err, "path", c.FullPath())
		writeError(c, http.StatusInternalServerError, "Internal server error.", nil)
		return
	}

	status := statusOf(svcErr.Kind)
	if status == http.StatusInternalServerError {
		h.log(c).Error("Service error", "error", err, "path", c.FullPath())
	}

	var details any
	if fields := services.ValidationDetails(err); len(fields) > 0 {
		details = fields
	}
	writeError(c, status, svcErr.Message, details)
}

func statusOf(kind error) int {
	switch {
	case errors.Is(kind, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(kind, services.ErrBadRequest), errors.Is(kind, services.ErrValidationFailed):
		return http.StatusBadRequest
	case errors.Is(kind, services.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(kind, services.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(kind, services.ErrConflict):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// parseID reads a positive numeric path parameter, rendering 400 when it is malformed
func (h *BaseHandler) parseID(c *gin.Context, param string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(param), 10, 64)
	if err != nil || id == 0 {
		h.badRequest(c, "Invalid "+param+".", nil)
		return 0, false
	}
	return uint(id), true
}
