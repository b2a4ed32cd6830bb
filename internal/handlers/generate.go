package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/sigco3111/rpg-script-editor/internal/middleware"
	"github.com/sigco3111/rpg-script-editor/internal/services"
	"github.com/sigco3111/rpg-script-editor/pkg/generation"
	"github.com/sigco3111/rpg-script-editor/pkg/prompts"
	"github.com/sigco3111/rpg-script-editor/pkg/script"
)

// GenerateHandler runs model-backed content generation and commits accepted
// results into the working project.
// Routes:
// POST /v1/generate/stages    - Suggest stage concepts from the world settings
// POST /v1/generate/character - Generate a character into a stage's roster
// POST /v1/generate/scene     - Generate a scene into a stage
// POST /v1/generate/stage     - Generate a complete stage into the project
type GenerateHandler struct {
	llmService services.LLMService
	storage    services.Storage
	resolver   *generation.Resolver
	logger     *slog.Logger
}

func NewGenerateHandler(llmService services.LLMService, storage services.Storage, logger *slog.Logger) *GenerateHandler {
	return &GenerateHandler{
		llmService: llmService,
		storage:    storage,
		resolver:   generation.NewResolver(logger),
		logger:     logger,
	}
}

func (h *GenerateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodPost {
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: POST")
		return
	}

	kind := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/generate"), "/")

	project, err := h.storage.LoadProject(r.Context())
	if err != nil {
		h.logger.Error("Failed to load project", "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to load project")
		return
	}
	if project == nil {
		project = script.NewProject()
	}
	if project.WorldSettings == nil {
		writeError(w, h.logger, http.StatusBadRequest, "World settings must be configured before generating content")
		return
	}

	var status int
	switch kind {
	case "stages":
		status = h.handleStageList(w, r, project)
	case "character":
		status = h.handleCharacter(w, r, project)
	case "scene":
		status = h.handleScene(w, r, project)
	case "stage":
		status = h.handleFullStage(w, r, project)
	default:
		writeError(w, h.logger, http.StatusNotFound, "Unknown generation endpoint")
		return
	}

	outcome := "ok"
	if status >= 400 {
		outcome = "error"
	}
	middleware.GenerationsTotal.WithLabelValues(kind, outcome).Inc()
}

// generate runs one prompt through the model. A transport failure maps to
// 502; the zero status means success.
func (h *GenerateHandler) generate(w http.ResponseWriter, r *http.Request, prompt string) (string, int) {
	raw, err := h.llmService.GenerateContent(r.Context(), prompt)
	if err != nil {
		h.logger.Error("Generation request failed", "error", err)
		writeError(w, h.logger, http.StatusBadGateway, "Generation service unavailable")
		return "", http.StatusBadGateway
	}
	return raw, 0
}

// writeModelError maps payload errors to 422 responses. Anything else is an
// internal error.
func (h *GenerateHandler) writeModelError(w http.ResponseWriter, err error) int {
	var parseErr *generation.ParseError
	var formatErr *generation.FormatError
	switch {
	case errors.As(err, &parseErr), errors.As(err, &formatErr):
		h.logger.Warn("Model returned an unusable payload", "error", err)
		writeError(w, h.logger, http.StatusUnprocessableEntity, err.Error())
		return http.StatusUnprocessableEntity
	default:
		h.logger.Error("Generation failed", "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Generation failed")
		return http.StatusInternalServerError
	}
}

func (h *GenerateHandler) handleStageList(w http.ResponseWriter, r *http.Request, project *script.Project) int {
	raw, status := h.generate(w, r, prompts.StageList(project.WorldSettings))
	if status != 0 {
		return status
	}

	suggestions, err := generation.ParseStageSuggestions(raw)
	if err != nil {
		return h.writeModelError(w, err)
	}

	writeJSON(w, h.logger, http.StatusOK, map[string]any{
		"suggestions": suggestions,
	})
	return http.StatusOK
}

func (h *GenerateHandler) handleCharacter(w http.ResponseWriter, r *http.Request, project *script.Project) int {
	var req struct {
		StageID       string               `json:"stage_id"`
		CharacterType script.CharacterType `json:"character_type"`
		CustomPrompt  string               `json:"custom_prompt"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid JSON in request body")
		return http.StatusBadRequest
	}
	if !req.CharacterType.Valid() {
		writeError(w, h.logger, http.StatusBadRequest, "Unknown character type: "+string(req.CharacterType))
		return http.StatusBadRequest
	}
	stage := project.FindStage(req.StageID)
	if stage == nil {
		writeError(w, h.logger, http.StatusNotFound, "Stage not found")
		return http.StatusNotFound
	}

	raw, status := h.generate(w, r, prompts.Character(project.WorldSettings, stage, req.CharacterType, req.CustomPrompt))
	if status != 0 {
		return status
	}

	suggestion, err := generation.ParseCharacterSuggestion(raw, req.CharacterType)
	if err != nil {
		return h.writeModelError(w, err)
	}

	character := script.Character{
		ID:           script.NewID(),
		Name:         suggestion.Name,
		Type:         req.CharacterType,
		Description:  suggestion.Description,
		DialogueSeed: suggestion.DialogueSeed,
	}
	roster := append(append([]script.Character{}, stage.Characters...), character)

	updated := project.WithStageCharacters(req.StageID, roster)
	if err := h.storage.SaveProject(r.Context(), updated); err != nil {
		h.logger.Error("Failed to save project", "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to save project")
		return http.StatusInternalServerError
	}

	writeJSON(w, h.logger, http.StatusCreated, map[string]any{
		"character": character,
	})
	return http.StatusCreated
}

func (h *GenerateHandler) handleScene(w http.ResponseWriter, r *http.Request, project *script.Project) int {
	var req struct {
		StageID   string           `json:"stage_id"`
		SceneType script.SceneType `json:"scene_type"`
		Context   string           `json:"context"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid JSON in request body")
		return http.StatusBadRequest
	}
	if !req.SceneType.Valid() {
		writeError(w, h.logger, http.StatusBadRequest, "Unknown scene type: "+string(req.SceneType))
		return http.StatusBadRequest
	}
	stage := project.FindStage(req.StageID)
	if stage == nil {
		writeError(w, h.logger, http.StatusNotFound, "Stage not found")
		return http.StatusNotFound
	}

	prompt, err := prompts.SceneDetail(project.WorldSettings, stage, req.SceneType, req.Context)
	if err != nil {
		writeError(w, h.logger, http.StatusBadRequest, err.Error())
		return http.StatusBadRequest
	}

	raw, status := h.generate(w, r, prompt)
	if status != 0 {
		return status
	}

	suggestion, err := generation.ParseSceneSuggestion(raw, req.SceneType)
	if err != nil {
		return h.writeModelError(w, err)
	}

	scene, warnings := h.resolver.ResolveScene(suggestion, stage.Characters)

	updated := project.WithSceneAdded(req.StageID, scene)
	if err := h.storage.SaveProject(r.Context(), updated); err != nil {
		h.logger.Error("Failed to save project", "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to save project")
		return http.StatusInternalServerError
	}

	writeJSON(w, h.logger, http.StatusCreated, map[string]any{
		"scene":    updated.FindStage(req.StageID).FindScene(scene.ID),
		"warnings": warnings,
	})
	return http.StatusCreated
}

func (h *GenerateHandler) handleFullStage(w http.ResponseWriter, r *http.Request, project *script.Project) int {
	var req struct {
		TitleHint string `json:"title_hint"`
		Theme     string `json:"theme"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid JSON in request body")
		return http.StatusBadRequest
	}

	prompt := prompts.FullStage(project.WorldSettings, req.TitleHint, req.Theme, project.Stages)
	raw, status := h.generate(w, r, prompt)
	if status != 0 {
		return status
	}

	bundle, err := generation.ParseFullStageBundle(raw)
	if err != nil {
		return h.writeModelError(w, err)
	}

	processed, warnings, err := h.resolver.Resolve(bundle)
	if err != nil {
		return h.writeModelError(w, err)
	}

	stage := processed.Stage(script.NewID)
	updated := project.WithStageAdded(stage)
	if err := h.storage.SaveProject(r.Context(), updated); err != nil {
		h.logger.Error("Failed to save project", "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to save project")
		return http.StatusInternalServerError
	}

	h.logger.Info("Stage generated",
		"stage_id", stage.ID,
		"scenes", len(stage.Scenes),
		"characters", len(stage.Characters),
		"warnings", len(warnings))

	writeJSON(w, h.logger, http.StatusCreated, map[string]any{
		"stage":    stage,
		"warnings": warnings,
	})
	return http.StatusCreated
}
