package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/jwebster45206/encounter-tracker/internal/storage"
	"github.com/jwebster45206/encounter-tracker/pkg/session"
	"github.com/jwebster45206/encounter-tracker/pkg/transfer"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

// ImportRequest carries a pasted export string.
type ImportRequest struct {
	Data string `json:"data"`
}

// SessionHandler serves encounter sessions: CRUD, action dispatch and the
// export/import endpoints.
//
// Routes:
// POST /v1/sessions                  - Create a new session
// GET /v1/sessions/{id}              - Read session by ID
// DELETE /v1/sessions/{id}           - Delete session by ID
// POST /v1/sessions/{id}/actions     - Dispatch an action through the reducer
// GET /v1/sessions/{id}/export       - Export the session as a signed string
// POST /v1/sessions/{id}/import      - Replace the session from an export string
type SessionHandler struct {
	storage storage.Storage
	logger  *slog.Logger
	reducer session.Reducer
}

func NewSessionHandler(logger *slog.Logger, storage storage.Storage, reducer session.Reducer) *SessionHandler {
	return &SessionHandler{
		storage: storage,
		logger:  logger,
		reducer: reducer,
	}
}

func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/sessions"), "/")

	if path == "" {
		if r.Method != http.MethodPost {
			writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		h.handleCreate(w, r)
		return
	}

	parts := strings.SplitN(path, "/", 2)
	id, err := uuid.Parse(parts[0])
	if err != nil {
		h.logger.Warn("Invalid session ID", "id", parts[0], "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Invalid session ID format")
		return
	}

	if len(parts) == 1 {
		switch r.Method {
		case http.MethodGet:
			h.handleGet(w, r, id)
		case http.MethodDelete:
			h.handleDelete(w, r, id)
		default:
			writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed")
		}
		return
	}

	switch {
	case parts[1] == "actions" && r.Method == http.MethodPost:
		h.handleDispatch(w, r, id)
	case parts[1] == "export" && r.Method == http.MethodGet:
		h.handleExport(w, r, id)
	case parts[1] == "import" && r.Method == http.MethodPost:
		h.handleImport(w, r, id)
	default:
		writeError(w, h.logger, http.StatusNotFound, "Unknown session resource")
	}
}

func (h *SessionHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	s := session.New()
	if err := h.storage.SaveSession(r.Context(), s); err != nil {
		h.logger.Error("Failed to save session", "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to create session")
		return
	}
	writeJSON(w, h.logger, http.StatusCreated, s)
}

func (h *SessionHandler) handleGet(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	s, err := h.loadSession(w, r, id)
	if err != nil {
		return
	}
	writeJSON(w, h.logger, http.StatusOK, s)
}

func (h *SessionHandler) handleDelete(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	err := h.storage.DeleteSession(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, h.logger, http.StatusNotFound, "Session not found")
		return
	}
	if err != nil {
		h.logger.Error("Failed to delete session", "id", id, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to delete session")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleDispatch runs one action through the reducer and persists the
// resulting state. The stored session is untouched when anything fails.
func (h *SessionHandler) handleDispatch(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Failed to read request body")
		return
	}

	action, err := session.ParseAction(body)
	if err != nil {
		h.logger.Warn("Rejected action", "session", id, "error", err)
		writeError(w, h.logger, http.StatusBadRequest, err.Error())
		return
	}
	action, err = prepareAction(action)
	if err != nil {
		writeError(w, h.logger, http.StatusBadRequest, err.Error())
		return
	}

	s, err := h.loadSession(w, r, id)
	if err != nil {
		return
	}

	next, err := h.reducer.Apply(s, action)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, session.ErrEmptyRoster) || errors.Is(err, session.ErrNotActive) || errors.Is(err, session.ErrAlreadyActive) {
			status = http.StatusConflict
		}
		h.logger.Warn("Action not applied", "session", id, "error", err)
		writeError(w, h.logger, status, err.Error())
		return
	}

	if err := h.storage.SaveSession(r.Context(), next); err != nil {
		h.logger.Error("Failed to save session", "id", id, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to save session")
		return
	}
	writeJSON(w, h.logger, http.StatusOK, next)
}

func (h *SessionHandler) handleExport(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	s, err := h.loadSession(w, r, id)
	if err != nil {
		return
	}

	if r.URL.Query().Get("format") == "file" {
		data, err := transfer.ExportBytes(transfer.OriginSession, s)
		if err != nil {
			h.logger.Error("Failed to export session", "id", id, "error", err)
			writeError(w, h.logger, http.StatusInternalServerError, "Failed to export session")
			return
		}
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "encounter-"+id.String()+".enctrack"))
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(data); err != nil {
			h.logger.Error("Failed to write export file", "error", err)
		}
		return
	}

	out, err := transfer.Export(transfer.OriginSession, s)
	if err != nil {
		h.logger.Error("Failed to export session", "id", id, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to export session")
		return
	}
	writeJSON(w, h.logger, http.StatusOK, map[string]string{"data": out})
}

func (h *SessionHandler) handleImport(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	var req ImportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}

	snapshot, err := transfer.Import[session.Session](req.Data, transfer.OriginSession)
	if err != nil {
		h.logger.Warn("Import rejected", "session", id, "error", err)
		writeError(w, h.logger, http.StatusUnprocessableEntity, transfer.UserMessage(err))
		return
	}

	s, err := h.loadSession(w, r, id)
	if err != nil {
		return
	}

	// The imported snapshot takes this resource's identity, so the
	// session stays addressable at the same URL.
	snapshot.ID = id
	next, err := h.reducer.Apply(s, session.ImportState{Session: snapshot})
	if err != nil {
		h.logger.Error("Failed to apply imported state", "id", id, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to apply imported state")
		return
	}

	if err := h.storage.SaveSession(r.Context(), next); err != nil {
		h.logger.Error("Failed to save session", "id", id, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to save session")
		return
	}
	writeJSON(w, h.logger, http.StatusOK, next)
}

func (h *SessionHandler) loadSession(w http.ResponseWriter, r *http.Request, id uuid.UUID) (session.Session, error) {
	s, err := h.storage.LoadSession(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, h.logger, http.StatusNotFound, "Session not found")
		return session.Session{}, err
	}
	if err != nil {
		h.logger.Error("Failed to load session", "id", id, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to load session")
		return session.Session{}, err
	}
	return s, nil
}

// prepareAction validates incoming combatants and assigns IDs to new ones.
func prepareAction(a session.Action) (session.Action, error) {
	switch act := a.(type) {
	case session.AddCombatant:
		if act.Combatant.ID == uuid.Nil {
			act.Combatant.ID = uuid.New()
		}
		if err := act.Combatant.Validate(); err != nil {
			return nil, err
		}
		return act, nil
	case session.AddCombatants:
		for i := range act.Combatants {
			if act.Combatants[i].ID == uuid.Nil {
				act.Combatants[i].ID = uuid.New()
			}
			if err := act.Combatants[i].Validate(); err != nil {
				return nil, err
			}
		}
		return act, nil
	case session.UpdateCombatant:
		if err := act.Combatant.Validate(); err != nil {
			return nil, err
		}
		return act, nil
	case session.ImportState:
		if err := act.Session.Validate(); err != nil {
			return nil, err
		}
		return act, nil
	default:
		return a, nil
	}
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, status int, v any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, logger *slog.Logger, status int, msg string) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(ErrorResponse{Error: msg}); err != nil {
		logger.Error("Failed to encode error response", "error", err)
	}
}
