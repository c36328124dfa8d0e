package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"go-repair-pos/internal/services"
)

func (h *Handler) GetOutstandingDues(c *gin.Context) {
	out, err := h.Dues.Outstanding(c.Request.Context(), c.Query("search"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// GetDue returns one due with its payment history.
func (h *Handler) GetDue(c *gin.Context) {
	d, err := h.Dues.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *Handler) PayDue(c *gin.Context) {
	var input services.PaymentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badInput(c)
		return
	}
	res, err := h.Dues.Pay(c.Request.Context(), c.Param("id"), input)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
