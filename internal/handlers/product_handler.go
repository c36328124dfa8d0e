package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"go-repair-pos/internal/services"
)

// --- GET: List products, optionally filtered ---
func (h *Handler) GetProducts(c *gin.Context) {
	products, err := h.Products.List(c.Request.Context(), services.ProductFilter{
		Search:   c.Query("search"),
		Category: c.Query("category"),
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

func (h *Handler) GetProduct(c *gin.Context) {
	p, err := h.Products.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) GetLowStock(c *gin.Context) {
	products, err := h.Products.LowStock(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

func (h *Handler) GetCategories(c *gin.Context) {
	c.JSON(http.StatusOK, services.Categories)
}

// --- POST: Add a new product ---
func (h *Handler) AddProduct(c *gin.Context) {
	var input services.ProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badInput(c)
		return
	}
	p, err := h.Products.Create(c.Request.Context(), input)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

// --- PUT: Replace a product's details ---
func (h *Handler) UpdateProduct(c *gin.Context) {
	var input services.ProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badInput(c)
		return
	}
	p, err := h.Products.Update(c.Request.Context(), c.Param("id"), input)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product updated successfully", "product": p})
}

func (h *Handler) DeleteProduct(c *gin.Context) {
	if err := h.Products.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully"})
}

// --- POST: Checkout the cart ---
func (h *Handler) ProcessSale(c *gin.Context) {
	var req services.CheckoutInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	res, err := h.Sales.Checkout(c.Request.Context(), session(c), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":     "Sale successful!",
		"sale":        res.Sale,
		"due":         res.Due,
		"adjustments": res.Adjustments,
		"change":      res.Change,
	})
}

func (h *Handler) GetSales(c *gin.Context) {
	sales, err := h.Sales.List(c.Request.Context(), c.Query("search"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sales)
}

func (h *Handler) GetSale(c *gin.Context) {
	sale, err := h.Sales.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sale)
}
