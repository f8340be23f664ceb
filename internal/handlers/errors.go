package handlers

import (
	"errors"
	"net/http"

	"finax/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	errInvalidBody      = "Invalid request body"
	errValidationFailed = "Validation failed"
	errInternal         = "Internal server error"
)

// domainErrors maps service errors to their HTTP status and client message.
var domainErrors = []struct {
	err  error
	code int
	msg  string
}{
	{service.ErrUserExists, http.StatusBadRequest, "User already exists"},
	{service.ErrInvalidCredentials, http.StatusBadRequest, "Invalid credentials"},
	{service.ErrInvalidResetToken, http.StatusBadRequest, "Invalid or expired token"},
	{service.ErrEmailTaken, http.StatusBadRequest, "Email already in use"},
	{service.ErrCategoryNotFound, http.StatusBadRequest, "Category not found"},
	{service.ErrAvatarURLRequired, http.StatusBadRequest, "Avatar URL is required"},
	{service.ErrFileRequired, http.StatusBadRequest, "No file uploaded"},
	{service.ErrInvalidFileType, http.StatusBadRequest, "Invalid file type. Only JPEG, PNG, and WebP images are allowed."},
	{service.ErrFileTooLarge, http.StatusBadRequest, "File too large"},
	{service.ErrUserNotFound, http.StatusNotFound, "User not found"},
	{service.ErrSendEmail, http.StatusInternalServerError, "Failed to send email"},
}

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		if httpCode >= http.StatusInternalServerError {
			h.log.Errorw(logKey, fields...)
		} else {
			h.log.Infow(logKey, fields...)
		}
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// respondError translates a service error into the JSON error response.
func (h *Handler) respondError(c *gin.Context, logKey string, err error, kv ...interface{}) {
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		if h.log != nil {
			h.log.Infow(logKey, append([]interface{}{"err", err}, kv...)...)
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": errValidationFailed, "details": verr.Fields})
		return
	}

	for _, de := range domainErrors {
		if errors.Is(err, de.err) {
			h.logAndJSONError(c, de.code, de.msg, logKey, err, kv...)
			return
		}
	}

	h.logAndJSONError(c, http.StatusInternalServerError, errInternal, logKey, err, kv...)
}

// bindJSONOrBadRequest tries to bind the request body into dst and writes a 400 JSON on failure.
// Returns false if the request was already handled (aborted), true otherwise.
func (h *Handler) bindJSONOrBadRequest(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		if h.log != nil {
			h.log.Infow("bad_request_body", "path", c.FullPath(), "err", err)
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBody})
		return false
	}
	return true
}
