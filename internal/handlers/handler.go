// Package handlers exposes the shop services over HTTP with gin.
package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"go-repair-pos/internal/ai"
	"go-repair-pos/internal/auth"
	"go-repair-pos/internal/jobs"
	"go-repair-pos/internal/ledger"
	"go-repair-pos/internal/middleware"
	"go-repair-pos/internal/models"
	"go-repair-pos/internal/reports"
	"go-repair-pos/internal/services"
)

// Handler holds everything the routes need.
type Handler struct {
	Issuer   *auth.Issuer
	Users    *services.Users
	Products *services.Products
	Sales    *services.Sales
	Repairs  *services.Repairs
	Dues     *services.Dues
	Settings *services.Settings
	Reports  *reports.Reports
	Agent    *ai.Agent
	Backup   *jobs.BackupJob
	Log      *slog.Logger

	// BackupQueue, when set, hands manual backups to the worker instead of
	// writing them in the request.
	BackupQueue *jobs.Client
	// StoreDriver is reported by the system status endpoint.
	StoreDriver string
}

// respondError maps service errors to HTTP statuses. Unknown errors are
// logged and hidden from the client.
func (h *Handler) respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrValidation), errors.Is(err, services.ErrEmptyCart):
		status = http.StatusBadRequest
	case errors.Is(err, services.ErrPaymentRejected):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, services.ErrConflict), errors.Is(err, ledger.ErrOrphanDue):
		status = http.StatusConflict
	case errors.Is(err, services.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, services.ErrInvalidCredentials):
		status = http.StatusUnauthorized
	case errors.Is(err, ai.ErrNotConfigured):
		status = http.StatusServiceUnavailable
	}
	if status == http.StatusInternalServerError {
		h.Log.Error("request failed", slog.String("path", c.FullPath()), slog.Any("error", err))
		c.JSON(status, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func badInput(c *gin.Context) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
}

func session(c *gin.Context) models.Session {
	sess, _ := middleware.Session(c)
	return sess
}

// Routes mounts every endpoint on r.
func (h *Handler) lookupUser(ctx context.Context, id string) (models.User, bool, error) {
	user, err := h.Users.Get(ctx, id)
	if errors.Is(err, services.ErrNotFound) {
		return models.User{}, false, nil
	}
	return user, err == nil, err
}

func (h *Handler) Routes(r gin.IRouter, allowRegistration bool) {
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "online"}) })
	r.POST("/login", h.Login)
	if allowRegistration {
		r.POST("/register", h.Register)
	}

	api := r.Group("/api")
	api.Use(middleware.AuthMiddleware(h.Issuer), middleware.ActiveUser(h.lookupUser))
	{
		api.GET("/me", h.Me)

		api.GET("/products", h.GetProducts)
		api.GET("/products/low-stock", h.GetLowStock)
		api.GET("/products/:id", h.GetProduct)
		api.GET("/categories", h.GetCategories)

		api.POST("/checkout", h.ProcessSale)
		api.GET("/sales", h.GetSales)
		api.GET("/sales/:id", h.GetSale)

		api.GET("/repairs", h.GetRepairs)
		api.POST("/repairs", h.CreateRepair)
		api.GET("/repairs/:id", h.GetRepair)
		api.PUT("/repairs/:id", h.UpdateRepair)
		api.PATCH("/repairs/:id/status", h.SetRepairStatus)
		api.POST("/repairs/:id/payments", h.RecordRepairPayment)
		api.PUT("/repairs/:id/cost", h.EditRepairCost)

		api.GET("/dues", h.GetOutstandingDues)
		api.GET("/dues/:id", h.GetDue)
		api.POST("/dues/:id/payments", h.PayDue)

		api.GET("/dashboard", h.GetDashboard)
		api.GET("/settings", h.GetSettings)

		admin := api.Group("/")
		admin.Use(middleware.RequireRole(models.RoleAdmin))
		{
			admin.POST("/ask", h.AskAI)

			admin.POST("/products", h.AddProduct)
			admin.PUT("/products/:id", h.UpdateProduct)
			admin.DELETE("/products/:id", h.DeleteProduct)

			admin.GET("/reports", h.GetSalesReport)
			admin.GET("/reports/valuation", h.GetStockValuation)
			admin.GET("/audit", h.GetAudit)

			admin.GET("/users", h.GetUsers)
			admin.POST("/users", h.CreateUser)
			admin.PUT("/users/:id", h.UpdateUser)
			admin.DELETE("/users/:id", h.DeleteUser)

			admin.PUT("/settings", h.SaveSettings)
			admin.GET("/system/status", h.GetSystemStatus)
			admin.GET("/data/stats", h.GetDataStats)
			admin.GET("/data/export", h.ExportData)
			admin.POST("/data/import", h.ImportData)
			admin.DELETE("/data", h.ClearData)
			admin.POST("/data/backup", h.RunBackup)
		}
	}
}
