package handlers

import (
	"net/http"

	"finax/internal/service"

	"github.com/gin-gonic/gin"
)

// @Summary      Create transaction
// @Description  date accepts RFC 3339 or YYYY-MM-DD and defaults to now
// @Tags         transactions
// @Accept       json
// @Produce      json
// @Param        body  body      service.TransactionInput  true  "Transaction"
// @Success      201   {object}  models.Transaction
// @Failure      400   {object}  map[string]interface{}
// @Failure      401   {object}  map[string]string
// @Router       /transactions [post]
// @Security     BearerAuth
func (h *Handler) createTransaction(c *gin.Context) {
	var input service.TransactionInput
	if ok := h.bindJSONOrBadRequest(c, &input); !ok {
		return
	}

	uid := currentUserID(c)
	t, err := h.services.CreateTransaction(c.Request.Context(), uid, input)
	if err != nil {
		h.respondError(c, "transaction_create_failed", err, "user_id", uid)
		return
	}
	c.JSON(http.StatusCreated, t)
}

// @Summary      List transactions
// @Tags         transactions
// @Produce      json
// @Success      200  {array}   models.Transaction
// @Failure      401  {object}  map[string]string
// @Router       /transactions [get]
// @Security     BearerAuth
func (h *Handler) listTransactions(c *gin.Context) {
	uid := currentUserID(c)
	list, err := h.services.ListTransactions(c.Request.Context(), uid)
	if err != nil {
		h.respondError(c, "transaction_list_failed", err, "user_id", uid)
		return
	}
	c.JSON(http.StatusOK, list)
}

// @Summary      Dashboard
// @Description  Balance plus the five most recently recorded transactions
// @Tags         transactions
// @Produce      json
// @Success      200  {object}  models.Dashboard
// @Failure      401  {object}  map[string]string
// @Router       /transactions/dashboard [get]
// @Security     BearerAuth
func (h *Handler) getDashboard(c *gin.Context) {
	uid := currentUserID(c)
	d, err := h.services.Dashboard(c.Request.Context(), uid)
	if err != nil {
		h.respondError(c, "transaction_dashboard_failed", err, "user_id", uid)
		return
	}
	c.JSON(http.StatusOK, d)
}

// @Summary      Balance
// @Tags         transactions
// @Produce      json
// @Success      200  {object}  models.Balance
// @Failure      401  {object}  map[string]string
// @Router       /transactions/balance [get]
// @Security     BearerAuth
func (h *Handler) getBalance(c *gin.Context) {
	uid := currentUserID(c)
	b, err := h.services.Balance(c.Request.Context(), uid)
	if err != nil {
		h.respondError(c, "transaction_balance_failed", err, "user_id", uid)
		return
	}
	c.JSON(http.StatusOK, b)
}
