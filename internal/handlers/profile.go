package handlers

import (
	"net/http"

	"finax/internal/service"

	"github.com/gin-gonic/gin"
)

// @Summary      Current user's profile
// @Tags         profile
// @Produce      json
// @Success      200  {object}  models.User
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /auth/profile [get]
// @Security     BearerAuth
func (h *Handler) getProfile(c *gin.Context) {
	uid := currentUserID(c)
	user, err := h.services.GetProfile(c.Request.Context(), uid)
	if err != nil {
		h.respondError(c, "profile_get_failed", err, "user_id", uid)
		return
	}
	c.JSON(http.StatusOK, user)
}

// @Summary      Update profile
// @Description  Only present fields change; newPassword requires currentPassword
// @Tags         profile
// @Accept       json
// @Produce      json
// @Param        body  body      service.UpdateProfileInput  true  "Fields to change"
// @Success      200   {object}  models.User
// @Failure      400   {object}  map[string]interface{}
// @Failure      401   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /auth/profile [put]
// @Security     BearerAuth
func (h *Handler) updateProfile(c *gin.Context) {
	var input service.UpdateProfileInput
	if ok := h.bindJSONOrBadRequest(c, &input); !ok {
		return
	}

	uid := currentUserID(c)
	user, err := h.services.UpdateProfile(c.Request.Context(), uid, input)
	if err != nil {
		h.respondError(c, "profile_update_failed", err, "user_id", uid)
		return
	}
	c.JSON(http.StatusOK, user)
}

// @Summary      Set avatar URL
// @Tags         profile
// @Accept       json
// @Produce      json
// @Param        body  body      service.UpdateAvatarInput  true  "Avatar URL"
// @Success      200   {object}  models.User
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /auth/avatar [patch]
// @Security     BearerAuth
func (h *Handler) updateAvatar(c *gin.Context) {
	var input service.UpdateAvatarInput
	if ok := h.bindJSONOrBadRequest(c, &input); !ok {
		return
	}

	uid := currentUserID(c)
	user, err := h.services.UpdateAvatar(c.Request.Context(), uid, input)
	if err != nil {
		h.respondError(c, "profile_avatar_failed", err, "user_id", uid)
		return
	}
	c.JSON(http.StatusOK, user)
}
