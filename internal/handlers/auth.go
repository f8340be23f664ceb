package handlers

import (
	"net/http"

	"finax/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	msgResetRequested = "If the email is registered, a password reset link has been sent"
	msgPasswordReset  = "Password reset successfully"
)

// @Summary      Register
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      service.RegisterInput  true  "Name, email and password"
// @Success      201   {object}  models.User
// @Failure      400   {object}  map[string]interface{}
// @Failure      500   {object}  map[string]string
// @Router       /auth/register [post]
func (h *Handler) register(c *gin.Context) {
	var input service.RegisterInput
	if ok := h.bindJSONOrBadRequest(c, &input); !ok {
		return
	}

	user, err := h.services.Register(c.Request.Context(), input)
	if err != nil {
		h.respondError(c, "auth_register_failed", err)
		return
	}

	c.JSON(http.StatusCreated, user)
}

// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      service.LoginInput  true  "Credentials"
// @Success      200   {object}  service.AuthResult
// @Failure      400   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /auth/login [post]
func (h *Handler) login(c *gin.Context) {
	var input service.LoginInput
	if ok := h.bindJSONOrBadRequest(c, &input); !ok {
		return
	}

	res, err := h.services.Login(c.Request.Context(), input)
	if err != nil {
		h.respondError(c, "auth_login_failed", err)
		return
	}

	c.JSON(http.StatusOK, res)
}

// @Summary      Request a password reset email
// @Description  Responds identically whether or not the email is registered
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      service.ForgotPasswordInput  true  "Email"
// @Success      200   {object}  map[string]string
// @Failure      400   {object}  map[string]interface{}
// @Failure      500   {object}  map[string]string
// @Router       /auth/forgot-password [post]
func (h *Handler) forgotPassword(c *gin.Context) {
	var input service.ForgotPasswordInput
	if ok := h.bindJSONOrBadRequest(c, &input); !ok {
		return
	}

	if err := h.services.RequestPasswordReset(c.Request.Context(), input); err != nil {
		h.respondError(c, "auth_forgot_password_failed", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": msgResetRequested})
}

// @Summary      Reset password with a token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      service.ResetPasswordInput  true  "Token and new password"
// @Success      200   {object}  map[string]string
// @Failure      400   {object}  map[string]interface{}
// @Failure      500   {object}  map[string]string
// @Router       /auth/reset-password [post]
func (h *Handler) resetPassword(c *gin.Context) {
	var input service.ResetPasswordInput
	if ok := h.bindJSONOrBadRequest(c, &input); !ok {
		return
	}

	if err := h.services.ResetPassword(c.Request.Context(), input); err != nil {
		h.respondError(c, "auth_reset_password_failed", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": msgPasswordReset})
}
