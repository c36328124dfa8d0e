package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"go-repair-pos/internal/models"
	"go-repair-pos/internal/services"
)

func (h *Handler) GetRepairs(c *gin.Context) {
	repairs, err := h.Repairs.List(c.Request.Context(), services.RepairFilter{
		Search: c.Query("search"),
		Status: models.RepairStatus(c.Query("status")),
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, repairs)
}

func (h *Handler) GetRepair(c *gin.Context) {
	r, err := h.Repairs.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (h *Handler) CreateRepair(c *gin.Context) {
	var input services.RepairInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badInput(c)
		return
	}
	res, err := h.Repairs.Create(c.Request.Context(), input)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

func (h *Handler) UpdateRepair(c *gin.Context) {
	var input services.RepairDetails
	if err := c.ShouldBindJSON(&input); err != nil {
		badInput(c)
		return
	}
	r, err := h.Repairs.Update(c.Request.Context(), c.Param("id"), input)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

type statusRequest struct {
	Status models.RepairStatus `json:"status" binding:"required"`
}

func (h *Handler) SetRepairStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badInput(c)
		return
	}
	r, err := h.Repairs.SetStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (h *Handler) RecordRepairPayment(c *gin.Context) {
	var input services.PaymentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badInput(c)
		return
	}
	res, err := h.Repairs.RecordPayment(c.Request.Context(), c.Param("id"), input)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

type costRequest struct {
	EstimatedCost *float64 `json:"estimatedCost" binding:"required"`
}

func (h *Handler) EditRepairCost(c *gin.Context) {
	var req costRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badInput(c)
		return
	}
	res, err := h.Repairs.EditCost(c.Request.Context(), c.Param("id"), *req.EstimatedCost)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
