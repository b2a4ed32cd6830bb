package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/sigco3111/rpg-script-editor/internal/services"
	"github.com/sigco3111/rpg-script-editor/pkg/script"
)

// ProjectHandler manages the working project document.
// Routes:
// GET /v1/project           - Read the project (empty document if none saved)
// PUT /v1/project           - Replace the project
// DELETE /v1/project        - Delete the project
// PUT /v1/project/world     - Replace the world settings
// POST /v1/project/import   - Import a project from a JSON document
// GET /v1/project/export    - Download the project as a JSON attachment
type ProjectHandler struct {
	storage services.Storage
	logger  *slog.Logger
}

func NewProjectHandler(storage services.Storage, logger *slog.Logger) *ProjectHandler {
	return &ProjectHandler{
		storage: storage,
		logger:  logger,
	}
}

func (h *ProjectHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/project"), "/")

	switch {
	case path == "" && r.Method == http.MethodGet:
		h.handleRead(w, r)
	case path == "" && r.Method == http.MethodPut:
		h.handleReplace(w, r)
	case path == "" && r.Method == http.MethodDelete:
		h.handleDelete(w, r)
	case path == "world" && r.Method == http.MethodPut:
		h.handleWorldSettings(w, r)
	case path == "import" && r.Method == http.MethodPost:
		h.handleImport(w, r)
	case path == "export" && r.Method == http.MethodGet:
		h.handleExport(w, r)
	default:
		w.Header().Set("Content-Type", "application/json")
		h.logger.Warn("Unsupported project route", "method", r.Method, "path", r.URL.Path)
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed for this endpoint")
	}
}

// handleRead returns the stored project, or an empty document when nothing
// has been saved yet.
func (h *ProjectHandler) handleRead(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	project, err := h.storage.LoadProject(r.Context())
	if err != nil {
		h.logger.Error("Failed to load project", "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to load project")
		return
	}
	if project == nil {
		project = script.NewProject()
	}
	writeJSON(w, h.logger, http.StatusOK, project)
}

func (h *ProjectHandler) handleReplace(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var project script.Project
	if err := json.NewDecoder(r.Body).Decode(&project); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}
	if project.Stages == nil {
		project.Stages = []script.Stage{}
	}

	if err := h.storage.SaveProject(r.Context(), &project); err != nil {
		h.logger.Error("Failed to save project", "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to save project")
		return
	}
	writeJSON(w, h.logger, http.StatusOK, &project)
}

func (h *ProjectHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if err := h.storage.DeleteProject(r.Context()); err != nil {
		h.logger.Error("Failed to delete project", "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to delete project")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ProjectHandler) handleWorldSettings(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var ws script.WorldSettings
	if err := json.NewDecoder(r.Body).Decode(&ws); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}

	project, err := h.storage.LoadProject(r.Context())
	if err != nil {
		h.logger.Error("Failed to load project", "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to load project")
		return
	}
	if project == nil {
		project = script.NewProject()
	}

	updated := project.WithWorldSettings(&ws)
	if err := h.storage.SaveProject(r.Context(), updated); err != nil {
		h.logger.Error("Failed to save project", "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to save project")
		return
	}
	writeJSON(w, h.logger, http.StatusOK, updated)
}

// handleImport validates and stores an uploaded project document. A failed
// validation leaves the stored project untouched.
func (h *ProjectHandler) handleImport(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Failed to read request body")
		return
	}

	project, err := script.ParseProject(body)
	if err != nil {
		var importErr *script.ImportError
		if errors.As(err, &importErr) {
			h.logger.Warn("Project import rejected", "reason", importErr.Reason)
			writeError(w, h.logger, http.StatusBadRequest, "Invalid project file: "+importErr.Reason)
			return
		}
		writeError(w, h.logger, http.StatusBadRequest, "Invalid project file")
		return
	}

	if err := h.storage.SaveProject(r.Context(), project); err != nil {
		h.logger.Error("Failed to save imported project", "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to save project")
		return
	}

	h.logger.Info("Project imported", "stages", len(project.Stages))
	writeJSON(w, h.logger, http.StatusOK, project)
}

// handleExport serves the project as a downloadable JSON file.
func (h *ProjectHandler) handleExport(w http.ResponseWriter, r *http.Request) {
	project, err := h.storage.LoadProject(r.Context())
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		h.logger.Error("Failed to load project", "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to load project")
		return
	}
	if project == nil {
		project = script.NewProject()
	}

	data, err := json.MarshalIndent(project, "", "  ")
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		h.logger.Error("Failed to marshal project", "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to export project")
		return
	}

	name := "RPG"
	if project.WorldSettings != nil && project.WorldSettings.Title != "" {
		name = project.WorldSettings.Title
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name+"-project.json"))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		h.logger.Error("Failed to write export", "error", err)
	}
}
