package player

import (
	"time"

	"github.com/google/uuid"
	"github.com/sigco3111/rpg-script-editor/pkg/script"
)

// Snapshot is the serializable record of a player's position. It carries
// weak IDs only, so a session survives independent storage and tolerates
// the project being edited underneath it.
type Snapshot struct {
	StageID           string `json:"stage_id,omitempty"`
	SceneID           string `json:"scene_id,omitempty"`
	RepeatPending     bool   `json:"repeat_pending,omitempty"`
	RepeatSceneID     string `json:"repeat_scene_id,omitempty"`
	RepeatNextSceneID string `json:"repeat_next_scene_id,omitempty"`
	Error             string `json:"error,omitempty"`
	TownMessage       string `json:"town_message,omitempty"`
}

// Session is one persisted play session.
type Session struct {
	ID        uuid.UUID `json:"id"`
	Snapshot  Snapshot  `json:"snapshot"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewSession wraps a snapshot in a fresh session record.
func NewSession(snap Snapshot) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:        uuid.New(),
		Snapshot:  snap,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Snapshot captures the player's current position.
func (p *Player) Snapshot() Snapshot {
	snap := Snapshot{
		Error:       p.errMsg,
		TownMessage: p.townMsg,
	}
	if p.stage != nil {
		snap.StageID = p.stage.ID
	}
	if p.scene != nil {
		snap.SceneID = p.scene.ID
	}
	if p.repeat != nil {
		snap.RepeatPending = true
		snap.RepeatSceneID = p.repeat.Scene.ID
		snap.RepeatNextSceneID = p.repeat.OriginalNextSceneID
	}
	return snap
}

// Restore rebuilds a player over the current project from a stored
// snapshot. References that no longer resolve (the project was edited while
// the session was open) degrade into the player's error state.
func (p *Player) restore(snap Snapshot) {
	p.scene = nil
	p.repeat = nil
	p.errMsg = snap.Error
	p.townMsg = snap.TownMessage

	if snap.StageID == "" {
		return
	}
	p.stage = p.project.FindStage(snap.StageID)
	if p.stage == nil {
		p.errMsg = "stage not found: " + snap.StageID
		return
	}
	if snap.SceneID != "" {
		p.scene = p.stage.FindScene(snap.SceneID)
		if p.scene == nil {
			p.errMsg = brokenLinkMessage(snap.SceneID)
			return
		}
	}
	if snap.RepeatPending {
		offered := p.stage.FindScene(snap.RepeatSceneID)
		if offered == nil {
			p.errMsg = brokenLinkMessage(snap.RepeatSceneID)
			return
		}
		p.repeat = &CombatRepeatOffer{
			Scene:               offered,
			OriginalNextSceneID: snap.RepeatNextSceneID,
		}
	}
}

// Restore builds a player positioned at a stored snapshot.
func Restore(project *script.Project, snap Snapshot) *Player {
	p := &Player{project: project}
	p.restore(snap)
	return p
}
