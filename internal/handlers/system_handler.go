package handlers

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"go-repair-pos/internal/jobs"
	"go-repair-pos/internal/models"
)

// maxImportSize caps the accepted import document.
const maxImportSize = 32 << 20

func (h *Handler) GetSettings(c *gin.Context) {
	s, err := h.Settings.Get(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

func (h *Handler) SaveSettings(c *gin.Context) {
	var input models.Settings
	if err := c.ShouldBindJSON(&input); err != nil {
		badInput(c)
		return
	}
	s, err := h.Settings.Save(c.Request.Context(), input)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

// GetSystemStatus reports the backend and record counts for the settings page.
func (h *Handler) GetSystemStatus(c *gin.Context) {
	stats, err := h.Settings.Stats(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"store":       h.StoreDriver,
		"assistant":   h.Agent != nil,
		"backups":     h.Backup != nil,
		"stats":       stats,
		"server_time": time.Now().UTC(),
	})
}

func (h *Handler) GetDataStats(c *gin.Context) {
	stats, err := h.Settings.Stats(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// ExportData downloads the whole ledger as one JSON document.
func (h *Handler) ExportData(c *gin.Context) {
	snap, err := h.Settings.Export(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	name := fmt.Sprintf("pos-backup-%s.json", time.Now().Format(time.DateOnly))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.JSON(http.StatusOK, snap)
}

func (h *Handler) ImportData(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxImportSize))
	if err != nil {
		badInput(c)
		return
	}
	keys, err := h.Settings.Import(c.Request.Context(), body)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Data imported successfully", "collections": keys})
}

func (h *Handler) ClearData(c *gin.Context) {
	if err := h.Settings.Clear(c.Request.Context(), session(c)); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "All data cleared"})
}

// RunBackup takes a backup now, regardless of the autoBackup setting.
func (h *Handler) RunBackup(c *gin.Context) {
	payload := jobs.BackupPayload{Reason: "manual:" + session(c).Username, Force: true}
	if h.BackupQueue != nil {
		info, err := h.BackupQueue.EnqueueBackup(c.Request.Context(), payload)
		if err != nil {
			h.respondError(c, err)
			return
		}
		c.JSON(http.StatusAccepted, gin.H{"message": "Backup queued", "task_id": info.ID})
		return
	}
	if h.Backup == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Backups are not configured"})
		return
	}
	path, err := h.Backup.Run(c.Request.Context(), payload)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Backup written", "path": path})
}
