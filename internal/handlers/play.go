package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sigco3111/rpg-script-editor/internal/services"
	"github.com/sigco3111/rpg-script-editor/pkg/player"
	"github.com/sigco3111/rpg-script-editor/pkg/script"
)

// Play actions accepted by the action endpoint.
const (
	PlayActionAdvance     = "advance"
	PlayActionChoose      = "choose"
	PlayActionRetry       = "retry"
	PlayActionProceed     = "proceed"
	PlayActionDefeat      = "defeat"
	PlayActionTownService = "town_service"
)

// RepeatOfferView describes a pending combat-repeat offer.
type RepeatOfferView struct {
	SceneID    string `json:"scene_id"`
	SceneTitle string `json:"scene_title"`
	Reward     string `json:"reward,omitempty"`
}

// PlayView is the client-facing state of one play session after an action.
type PlayView struct {
	SessionID   string           `json:"session_id"`
	StageID     string           `json:"stage_id,omitempty"`
	StageTitle  string           `json:"stage_title,omitempty"`
	Scene       *script.Scene    `json:"scene,omitempty"`
	SpeakerName string           `json:"speaker_name,omitempty"`
	EnemyNames  []string         `json:"enemy_names,omitempty"`
	RepeatOffer *RepeatOfferView `json:"repeat_offer,omitempty"`
	TownMessage string           `json:"town_message,omitempty"`
	Error       string           `json:"error,omitempty"`
	Ended       bool             `json:"ended"`
}

// PlayHandler manages play sessions over the working project.
// Routes:
// POST /v1/play               - Start a session at a stage's first scene
// GET /v1/play/{id}           - Read the session's current state
// POST /v1/play/{id}/action   - Apply a play action
// DELETE /v1/play/{id}        - End the session
type PlayHandler struct {
	storage services.Storage
	logger  *slog.Logger
}

func NewPlayHandler(storage services.Storage, logger *slog.Logger) *PlayHandler {
	return &PlayHandler{
		storage: storage,
		logger:  logger,
	}
}

func (h *PlayHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/play"), "/")
	var parts []string
	if path != "" {
		parts = strings.Split(path, "/")
	}

	switch {
	case len(parts) == 0 && r.Method == http.MethodPost:
		h.handleStart(w, r)
		return
	case len(parts) == 0:
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: POST")
		return
	}

	sessionID, err := uuid.Parse(parts[0])
	if err != nil {
		h.logger.Warn("Invalid play session ID", "id", parts[0], "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Invalid play session ID format")
		return
	}

	switch {
	case len(parts) == 1 && r.Method == http.MethodGet:
		h.handleRead(w, r, sessionID)
	case len(parts) == 1 && r.Method == http.MethodDelete:
		h.handleEnd(w, r, sessionID)
	case len(parts) == 2 && parts[1] == "action" && r.Method == http.MethodPost:
		h.handleAction(w, r, sessionID)
	default:
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed for this endpoint")
	}
}

func (h *PlayHandler) loadProject(w http.ResponseWriter, r *http.Request) (*script.Project, bool) {
	project, err := h.storage.LoadProject(r.Context())
	if err != nil {
		h.logger.Error("Failed to load project", "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to load project")
		return nil, false
	}
	if project == nil {
		writeError(w, h.logger, http.StatusNotFound, "No project to play")
		return nil, false
	}
	return project, true
}

func (h *PlayHandler) handleStart(w http.ResponseWriter, r *http.Request) {
	var req struct {
		StageID string `json:"stage_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}
	if req.StageID == "" {
		writeError(w, h.logger, http.StatusBadRequest, "stage_id is required")
		return
	}

	project, ok := h.loadProject(w, r)
	if !ok {
		return
	}

	p := player.New(project, req.StageID)
	session := player.NewSession(p.Snapshot())

	if err := h.storage.SavePlaySession(r.Context(), session); err != nil {
		h.logger.Error("Failed to save play session", "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to save play session")
		return
	}

	h.logger.Info("Play session started", "session_id", session.ID, "stage_id", req.StageID)
	writeJSON(w, h.logger, http.StatusCreated, buildPlayView(session, p))
}

func (h *PlayHandler) loadSession(w http.ResponseWriter, r *http.Request, sessionID uuid.UUID) (*player.Session, bool) {
	session, err := h.storage.LoadPlaySession(r.Context(), sessionID.String())
	if err != nil {
		h.logger.Error("Failed to load play session", "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to load play session")
		return nil, false
	}
	if session == nil {
		writeError(w, h.logger, http.StatusNotFound, "Play session not found")
		return nil, false
	}
	return session, true
}

func (h *PlayHandler) handleRead(w http.ResponseWriter, r *http.Request, sessionID uuid.UUID) {
	session, ok := h.loadSession(w, r, sessionID)
	if !ok {
		return
	}
	project, ok := h.loadProject(w, r)
	if !ok {
		return
	}

	p := player.Restore(project, session.Snapshot)
	writeJSON(w, h.logger, http.StatusOK, buildPlayView(session, p))
}

func (h *PlayHandler) handleAction(w http.ResponseWriter, r *http.Request, sessionID uuid.UUID) {
	var req struct {
		Action        string `json:"action"`
		TargetSceneID string `json:"target_scene_id"`
		Service       string `json:"service"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}

	session, ok := h.loadSession(w, r, sessionID)
	if !ok {
		return
	}
	project, ok := h.loadProject(w, r)
	if !ok {
		return
	}

	p := player.Restore(project, session.Snapshot)

	switch req.Action {
	case PlayActionAdvance:
		p.Next()
	case PlayActionChoose:
		p.Choose(req.TargetSceneID)
	case PlayActionRetry:
		p.Retry()
	case PlayActionProceed:
		p.Proceed()
	case PlayActionDefeat:
		p.Defeat()
	case PlayActionTownService:
		p.TownService(req.Service)
	default:
		writeError(w, h.logger, http.StatusBadRequest, "Unknown action: "+req.Action)
		return
	}

	session.Snapshot = p.Snapshot()
	session.UpdatedAt = time.Now().UTC()
	if err := h.storage.SavePlaySession(r.Context(), session); err != nil {
		h.logger.Error("Failed to save play session", "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to save play session")
		return
	}

	writeJSON(w, h.logger, http.StatusOK, buildPlayView(session, p))
}

func (h *PlayHandler) handleEnd(w http.ResponseWriter, r *http.Request, sessionID uuid.UUID) {
	if err := h.storage.DeletePlaySession(r.Context(), sessionID.String()); err != nil {
		h.logger.Error("Failed to delete play session", "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to delete play session")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// buildPlayView projects the player state into the wire shape, resolving
// character references to display names.
func buildPlayView(session *player.Session, p *player.Player) PlayView {
	view := PlayView{
		SessionID:   session.ID.String(),
		Scene:       p.Scene(),
		TownMessage: p.TownMessage(),
		Error:       p.Err(),
		Ended:       p.Ended(),
	}

	stage := p.Stage()
	if stage != nil {
		view.StageID = stage.ID
		view.StageTitle = stage.Title
	}

	if sc := p.Scene(); sc != nil && stage != nil {
		if sc.Type == script.SceneDialogue && len(sc.CharacterIDs) > 0 {
			view.SpeakerName = stage.CharacterName(sc.CharacterIDs[0])
		}
		if sc.Combat != nil {
			for _, id := range sc.Combat.EnemyCharacterIDs {
				view.EnemyNames = append(view.EnemyNames, stage.CharacterName(id))
			}
		}
	}

	if offer := p.RepeatOffer(); offer != nil {
		view.RepeatOffer = &RepeatOfferView{
			SceneID:    offer.Scene.ID,
			SceneTitle: offer.Scene.Title,
		}
		if offer.Scene.Combat != nil {
			view.RepeatOffer.Reward = offer.Scene.Combat.Reward
		}
	}

	return view
}
