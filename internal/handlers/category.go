package handlers

import (
	"net/http"

	"finax/internal/service"

	"github.com/gin-gonic/gin"
)

// @Summary      Create category
// @Tags         categories
// @Accept       json
// @Produce      json
// @Param        body  body      service.CategoryInput  true  "Category"
// @Success      201   {object}  models.Category
// @Failure      400   {object}  map[string]interface{}
// @Failure      401   {object}  map[string]string
// @Router       /categories [post]
// @Security     BearerAuth
func (h *Handler) createCategory(c *gin.Context) {
	var input service.CategoryInput
	if ok := h.bindJSONOrBadRequest(c, &input); !ok {
		return
	}

	uid := currentUserID(c)
	category, err := h.services.CreateCategory(c.Request.Context(), uid, input)
	if err != nil {
		h.respondError(c, "category_create_failed", err, "user_id", uid)
		return
	}
	c.JSON(http.StatusCreated, category)
}

// @Summary      List categories
// @Description  The user's own categories plus the system defaults, by name
// @Tags         categories
// @Produce      json
// @Success      200  {array}   models.Category
// @Failure      401  {object}  map[string]string
// @Router       /categories [get]
// @Security     BearerAuth
func (h *Handler) listCategories(c *gin.Context) {
	uid := currentUserID(c)
	list, err := h.services.ListCategories(c.Request.Context(), uid)
	if err != nil {
		h.respondError(c, "category_list_failed", err, "user_id", uid)
		return
	}
	c.JSON(http.StatusOK, list)
}
