package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/sigco3111/rpg-script-editor/internal/services"
	"github.com/sigco3111/rpg-script-editor/pkg/script"
)

// StageHandler manages stage, scene and character editing within the
// working project.
// Routes:
// GET /v1/project/stages                          - List stages
// POST /v1/project/stages                         - Create a stage
// GET /v1/project/stages/{id}                     - Read a stage
// PUT /v1/project/stages/{id}                     - Replace a stage
// DELETE /v1/project/stages/{id}                  - Delete a stage
// PUT /v1/project/stages/{id}/characters          - Replace the stage roster
// POST /v1/project/stages/{id}/scenes             - Add a scene
// PUT /v1/project/stages/{id}/scenes/{sceneId}    - Replace a scene
// DELETE /v1/project/stages/{id}/scenes/{sceneId} - Delete a scene
type StageHandler struct {
	storage services.Storage
	logger  *slog.Logger
}

func NewStageHandler(storage services.Storage, logger *slog.Logger) *StageHandler {
	return &StageHandler{
		storage: storage,
		logger:  logger,
	}
}

func (h *StageHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/project/stages"), "/")
	var parts []string
	if path != "" {
		parts = strings.Split(path, "/")
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

	switch {
	case len(parts) == 0 && r.Method == http.MethodGet:
		writeJSON(w, h.logger, http.StatusOK, project.Stages)

	case len(parts) == 0 && r.Method == http.MethodPost:
		h.handleCreateStage(w, r, project)

	case len(parts) == 1:
		h.handleStage(w, r, project, parts[0])

	case len(parts) == 2 && parts[1] == "characters" && r.Method == http.MethodPut:
		h.handleReplaceCharacters(w, r, project, parts[0])

	case len(parts) == 2 && parts[1] == "scenes" && r.Method == http.MethodPost:
		h.handleAddScene(w, r, project, parts[0])

	case len(parts) == 3 && parts[1] == "scenes":
		h.handleScene(w, r, project, parts[0], parts[2])

	default:
		h.logger.Warn("Unsupported stage route", "method", r.Method, "path", r.URL.Path)
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed for this endpoint")
	}
}

func (h *StageHandler) saveAndRespond(w http.ResponseWriter, r *http.Request, updated *script.Project, status int, body any) {
	if err := h.storage.SaveProject(r.Context(), updated); err != nil {
		h.logger.Error("Failed to save project", "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to save project")
		return
	}
	if body == nil {
		w.WriteHeader(status)
		return
	}
	writeJSON(w, h.logger, status, body)
}

func (h *StageHandler) handleCreateStage(w http.ResponseWriter, r *http.Request, project *script.Project) {
	var req struct {
		Title              string `json:"title"`
		SettingDescription string `json:"settingDescription"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}
	if req.Title == "" {
		writeError(w, h.logger, http.StatusBadRequest, "Stage title is required")
		return
	}

	stage := script.Stage{
		ID:                 script.NewID(),
		Title:              req.Title,
		SettingDescription: req.SettingDescription,
		Scenes:             []script.Scene{},
		Characters:         []script.Character{},
	}
	h.saveAndRespond(w, r, project.WithStageAdded(stage), http.StatusCreated, stage)
}

func (h *StageHandler) handleStage(w http.ResponseWriter, r *http.Request, project *script.Project, stageID string) {
	stage := project.FindStage(stageID)
	if stage == nil {
		writeError(w, h.logger, http.StatusNotFound, "Stage not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		writeJSON(w, h.logger, http.StatusOK, stage)

	case http.MethodPut:
		var updated script.Stage
		if err := json.NewDecoder(r.Body).Decode(&updated); err != nil {
			writeError(w, h.logger, http.StatusBadRequest, "Invalid JSON in request body")
			return
		}
		updated.ID = stageID
		h.saveAndRespond(w, r, project.WithStageUpdated(updated), http.StatusOK, updated)

	case http.MethodDelete:
		h.saveAndRespond(w, r, project.WithStageRemoved(stageID), http.StatusNoContent, nil)

	default:
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: GET, PUT, DELETE")
	}
}

func (h *StageHandler) handleReplaceCharacters(w http.ResponseWriter, r *http.Request, project *script.Project, stageID string) {
	if project.FindStage(stageID) == nil {
		writeError(w, h.logger, http.StatusNotFound, "Stage not found")
		return
	}

	var characters []script.Character
	if err := json.NewDecoder(r.Body).Decode(&characters); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}
	for i := range characters {
		if !characters[i].Type.Valid() {
			writeError(w, h.logger, http.StatusBadRequest, "Unknown character type: "+string(characters[i].Type))
			return
		}
		if characters[i].ID == "" {
			characters[i].ID = script.NewID()
		}
	}

	h.saveAndRespond(w, r, project.WithStageCharacters(stageID, characters), http.StatusOK, characters)
}

func (h *StageHandler) handleAddScene(w http.ResponseWriter, r *http.Request, project *script.Project, stageID string) {
	if project.FindStage(stageID) == nil {
		writeError(w, h.logger, http.StatusNotFound, "Stage not found")
		return
	}

	var scene script.Scene
	if err := json.NewDecoder(r.Body).Decode(&scene); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}
	if scene.ID == "" {
		scene.ID = script.NewID()
	}
	scene.StageID = stageID
	if err := scene.Validate(); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid scene: "+err.Error())
		return
	}

	h.saveAndRespond(w, r, project.WithSceneAdded(stageID, scene), http.StatusCreated, scene)
}

func (h *StageHandler) handleScene(w http.ResponseWriter, r *http.Request, project *script.Project, stageID, sceneID string) {
	stage := project.FindStage(stageID)
	if stage == nil {
		writeError(w, h.logger, http.StatusNotFound, "Stage not found")
		return
	}
	if stage.FindScene(sceneID) == nil {
		writeError(w, h.logger, http.StatusNotFound, "Scene not found")
		return
	}

	switch r.Method {
	case http.MethodPut:
		var scene script.Scene
		if err := json.NewDecoder(r.Body).Decode(&scene); err != nil {
			writeError(w, h.logger, http.StatusBadRequest, "Invalid JSON in request body")
			return
		}
		scene.ID = sceneID
		scene.StageID = stageID
		if err := scene.Validate(); err != nil {
			writeError(w, h.logger, http.StatusBadRequest, "Invalid scene: "+err.Error())
			return
		}
		h.saveAndRespond(w, r, project.WithSceneUpdated(stageID, scene), http.StatusOK, scene)

	case http.MethodDelete:
		h.saveAndRespond(w, r, project.WithSceneRemoved(stageID, sceneID), http.StatusNoContent, nil)

	default:
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: PUT, DELETE")
	}
}
