package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"khata/internal/models"
	"khata/internal/services"
)

// BackupHandler exposes full-database export and restore.
type BackupHandler struct {
	backupService services.BackupServicer
}

// NewBackupHandler creates a new BackupHandler.
func NewBackupHandler(backupService services.BackupServicer) *BackupHandler {
	return &BackupHandler{backupService: backupService}
}

// ExportBackup returns a snapshot of the entire database
// @Summary     Export a backup
// @Description Serializes every person, transaction, tag, tag link, and settlement into a single versioned snapshot.
// @Tags        backup
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} models.BackupSnapshot
// @Router      /backup [get]
func (h *BackupHandler) ExportBackup(c *gin.Context) {
	snapshot, err := h.backupService.Export()
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

// RestoreBackup replaces the database with a snapshot
// @Summary     Restore from a backup
// @Description Atomically wipes all current data and loads the snapshot. Rejects malformed or version-mismatched snapshots without touching existing data.
// @Tags        backup
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       snapshot body models.BackupSnapshot true "Backup snapshot"
// @Success     204 "Restore complete"
// @Failure     400 {object} ErrorResponse "Malformed snapshot"
// @Router      /restore [post]
func (h *BackupHandler) RestoreBackup(c *gin.Context) {
	var snapshot models.BackupSnapshot
	if err := c.ShouldBindJSON(&snapshot); err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.backupService.Restore(&snapshot); err != nil {
		respondWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
