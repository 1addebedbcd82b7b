package handler

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/dukerupert/pillbox/internal/backup"
)

const backupListLimit = 20

type BackupHandler struct {
	manager *backup.Manager
	logger  *slog.Logger
}

func NewBackupHandler(m *backup.Manager, logger *slog.Logger) *BackupHandler {
	return &BackupHandler{manager: m, logger: logger}
}

type backupListResponse struct {
	Enabled bool          `json:"enabled"`
	Status  backup.Status `json:"status"`
	Backups any           `json:"backups"`
}

func (h *BackupHandler) List(w http.ResponseWriter, r *http.Request) {
	backups, err := h.manager.List(backupListLimit)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	writeSuccess(w, http.StatusOK, "", backupListResponse{
		Enabled: h.manager.Enabled(),
		Status:  h.manager.Status(),
		Backups: backups,
	})
}

func (h *BackupHandler) Run(w http.ResponseWriter, r *http.Request) {
	b, err := h.manager.RunNow(r.Context())
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	writeSuccess(w, http.StatusCreated, fmt.Sprintf("Backup %s uploaded", b.Filename), b)
}

// Download streams the encrypted snapshot as stored in the bucket.
func (h *BackupHandler) Download(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation", "invalid backup id")
		return
	}

	rc, _, err := h.manager.Download(r.Context(), id)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=pillbox-backup-%d.db.enc", id))
	if _, err := io.Copy(w, rc); err != nil {
		h.logger.Error("stream backup", "id", id, "error", err)
	}
}
