package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"go-repair-pos/internal/reports"
)

func (h *Handler) GetDashboard(c *gin.Context) {
	d, err := h.Reports.Dashboard(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

// parseRange reads ?from=YYYY-MM-DD&to=YYYY-MM-DD; "to" is inclusive.
func parseRange(c *gin.Context) (reports.Range, bool) {
	var rg reports.Range
	if s := c.Query("from"); s != "" {
		t, err := time.Parse(time.DateOnly, s)
		if err != nil {
			return rg, false
		}
		rg.From = t
	}
	if s := c.Query("to"); s != "" {
		t, err := time.Parse(time.DateOnly, s)
		if err != nil {
			return rg, false
		}
		rg.To = t.AddDate(0, 0, 1)
	}
	return rg, true
}

// --- GET: /api/reports ---
func (h *Handler) GetSalesReport(c *gin.Context) {
	rg, ok := parseRange(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Dates must be in YYYY-MM-DD format"})
		return
	}
	data, err := h.Reports.SalesReport(c.Request.Context(), rg)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, data)
}

// --- GET: /api/reports/valuation ---
// GetStockValuation prices all physical inventory at cost, by category.
func (h *Handler) GetStockValuation(c *gin.Context) {
	v, err := h.Reports.Valuation(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

func (h *Handler) GetAudit(c *gin.Context) {
	rep, err := h.Dues.Audit(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"healthy":    len(rep.Violations) == 0 && len(rep.Orphans) == 0,
		"violations": rep.Violations,
		"orphans":    rep.Orphans,
	})
}
