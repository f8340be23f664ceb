package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

const (
	userIdCtx = "userId"

	errTokenMissing = "Token is missing"
	errTokenInvalid = "Invalid token"
)

func (h *Handler) userIdMiddleware(c *gin.Context) {
	header := c.GetHeader("Authorization")
	if header == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errTokenMissing})
		return
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errTokenInvalid})
		return
	}

	h.authenticate(c, strings.TrimSpace(parts[1]))
}

// wsUserIdMiddleware accepts the bearer header or a token query parameter.
func (h *Handler) wsUserIdMiddleware(c *gin.Context) {
	if c.GetHeader("Authorization") != "" {
		h.userIdMiddleware(c)
		return
	}
	token := c.Query("token")
	if token == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errTokenMissing})
		return
	}
	h.authenticate(c, token)
}

func (h *Handler) authenticate(c *gin.Context, token string) {
	userId, err := h.services.ParseToken(token)
	if err != nil {
		if h.log != nil {
			h.log.Debugw("auth_token_rejected", "path", c.FullPath(), "err", err)
		}
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errTokenInvalid})
		return
	}

	// store in Gin context
	c.Set(userIdCtx, userId)
	c.Next()
}

// currentUserID returns the id stored by the auth middleware.
func currentUserID(c *gin.Context) string {
	return c.GetString(userIdCtx)
}

func (h *Handler) requestLogger(c *gin.Context) {
	start := time.Now()
	c.Next()

	if h.log == nil {
		return
	}
	h.log.Infow("http_request",
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"status", c.Writer.Status(),
		"latency_ms", time.Since(start).Milliseconds(),
		"client_ip", c.ClientIP(),
	)
}

func (h *Handler) corsMiddleware() gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}

	allowAll := false
	for _, o := range h.opts.AllowedOrigins {
		if o == "*" {
			allowAll = true
		}
	}
	if allowAll {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = h.opts.AllowedOrigins
	}
	return cors.New(cfg)
}
