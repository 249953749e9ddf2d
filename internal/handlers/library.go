package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/jwebster45206/encounter-tracker/internal/storage"
	"github.com/jwebster45206/encounter-tracker/pkg/library"
	"github.com/jwebster45206/encounter-tracker/pkg/transfer"
)

// LibraryHandler serves the creature template library.
//
// Routes:
// GET /v1/library                    - Full library snapshot
// GET|POST /v1/library/categories    - List / upsert categories
// DELETE /v1/library/categories/{id}
// GET|POST /v1/library/creatures     - List / upsert creature templates
// DELETE /v1/library/creatures/{id}
// GET /v1/library/export             - Export the library as a signed string
// POST /v1/library/import            - Replace the library from an export string
type LibraryHandler struct {
	storage storage.Storage
	logger  *slog.Logger
}

func NewLibraryHandler(logger *slog.Logger, storage storage.Storage) *LibraryHandler {
	return &LibraryHandler{
		storage: storage,
		logger:  logger,
	}
}

func (h *LibraryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/library"), "/")
	parts := strings.SplitN(path, "/", 2)

	switch parts[0] {
	case "":
		if r.Method != http.MethodGet {
			writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		h.handleSnapshot(w, r)
	case "categories":
		h.handleCategories(w, r, parts)
	case "creatures":
		h.handleCreatures(w, r, parts)
	case "export":
		if r.Method != http.MethodGet {
			writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		h.handleExport(w, r)
	case "import":
		if r.Method != http.MethodPost {
			writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		h.handleImport(w, r)
	default:
		writeError(w, h.logger, http.StatusNotFound, "Unknown library resource")
	}
}

func (h *LibraryHandler) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := h.storage.LibrarySnapshot(r.Context())
	if err != nil {
		h.logger.Error("Failed to load library", "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to load library")
		return
	}
	writeJSON(w, h.logger, http.StatusOK, snap)
}

func (h *LibraryHandler) handleCategories(w http.ResponseWriter, r *http.Request, parts []string) {
	switch {
	case len(parts) == 1 && r.Method == http.MethodGet:
		cats, err := h.storage.ListCategories(r.Context())
		if err != nil {
			h.logger.Error("Failed to list categories", "error", err)
			writeError(w, h.logger, http.StatusInternalServerError, "Failed to list categories")
			return
		}
		writeJSON(w, h.logger, http.StatusOK, cats)

	case len(parts) == 1 && r.Method == http.MethodPost:
		var cat library.Category
		if err := json.NewDecoder(r.Body).Decode(&cat); err != nil {
			writeError(w, h.logger, http.StatusBadRequest, "Invalid request body")
			return
		}
		if cat.ID == uuid.Nil {
			cat.ID = uuid.New()
		}
		if cat.Name == "" {
			writeError(w, h.logger, http.StatusBadRequest, "name: name is required")
			return
		}
		if err := h.storage.PutCategory(r.Context(), cat); err != nil {
			h.logger.Error("Failed to save category", "error", err)
			writeError(w, h.logger, http.StatusInternalServerError, "Failed to save category")
			return
		}
		writeJSON(w, h.logger, http.StatusOK, cat)

	case len(parts) == 2 && r.Method == http.MethodDelete:
		h.deleteRecord(w, r, parts[1], h.storage.DeleteCategory, "Category")

	default:
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (h *LibraryHandler) handleCreatures(w http.ResponseWriter, r *http.Request, parts []string) {
	switch {
	case len(parts) == 1 && r.Method == http.MethodGet:
		creatures, err := h.storage.ListCreatures(r.Context())
		if err != nil {
			h.logger.Error("Failed to list creatures", "error", err)
			writeError(w, h.logger, http.StatusInternalServerError, "Failed to list creatures")
			return
		}
		writeJSON(w, h.logger, http.StatusOK, creatures)

	case len(parts) == 1 && r.Method == http.MethodPost:
		var tmpl library.CreatureTemplate
		if err := json.NewDecoder(r.Body).Decode(&tmpl); err != nil {
			writeError(w, h.logger, http.StatusBadRequest, "Invalid request body")
			return
		}
		if tmpl.ID == uuid.Nil {
			tmpl.ID = uuid.New()
		}
		if err := tmpl.Validate(); err != nil {
			writeError(w, h.logger, http.StatusBadRequest, err.Error())
			return
		}
		if err := h.storage.PutCreature(r.Context(), tmpl); err != nil {
			h.logger.Error("Failed to save creature template", "error", err)
			writeError(w, h.logger, http.StatusInternalServerError, "Failed to save creature template")
			return
		}
		writeJSON(w, h.logger, http.StatusOK, tmpl)

	case len(parts) == 2 && r.Method == http.MethodDelete:
		h.deleteRecord(w, r, parts[1], h.storage.DeleteCreature, "Creature template")

	default:
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (h *LibraryHandler) deleteRecord(w http.ResponseWriter, r *http.Request, rawID string, del func(ctx context.Context, id uuid.UUID) error, kind string) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid ID format")
		return
	}
	err = del(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, h.logger, http.StatusNotFound, kind+" not found")
		return
	}
	if err != nil {
		h.logger.Error("Failed to delete record", "id", id, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to delete "+strings.ToLower(kind))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *LibraryHandler) handleExport(w http.ResponseWriter, r *http.Request) {
	snap, err := h.storage.LibrarySnapshot(r.Context())
	if err != nil {
		h.logger.Error("Failed to load library", "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to load library")
		return
	}

	if r.URL.Query().Get("format") == "file" {
		data, err := transfer.ExportBytes(transfer.OriginLibrary, snap)
		if err != nil {
			h.logger.Error("Failed to export library", "error", err)
			writeError(w, h.logger, http.StatusInternalServerError, "Failed to export library")
			return
		}
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Header().Set("Content-Disposition", `attachment; filename="library.enctrack"`)
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(data); err != nil {
			h.logger.Error("Failed to write export file", "error", err)
		}
		return
	}

	out, err := transfer.Export(transfer.OriginLibrary, snap)
	if err != nil {
		h.logger.Error("Failed to export library", "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to export library")
		return
	}
	writeJSON(w, h.logger, http.StatusOK, map[string]string{"data": out})
}

func (h *LibraryHandler) handleImport(w http.ResponseWriter, r *http.Request) {
	var req ImportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}

	snap, err := transfer.Import[library.Snapshot](req.Data, transfer.OriginLibrary)
	if err != nil {
		h.logger.Warn("Library import rejected", "error", err)
		writeError(w, h.logger, http.StatusUnprocessableEntity, transfer.UserMessage(err))
		return
	}

	if err := h.storage.RestoreLibrary(r.Context(), snap); err != nil {
		h.logger.Error("Failed to restore library", "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to restore library")
		return
	}
	writeJSON(w, h.logger, http.StatusOK, snap)
}
