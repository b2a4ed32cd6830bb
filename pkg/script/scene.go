package script

import "fmt"

// SceneType classifies a single narrative beat.
type SceneType string

const (
	SceneNarration       SceneType = "narration"
	SceneDialogue        SceneType = "dialogue"
	SceneChoice          SceneType = "choice"
	SceneRegularCombat   SceneType = "regular_combat"
	SceneBossCombat      SceneType = "boss_combat"
	SceneItemAcquisition SceneType = "item_acquisition"
	SceneLocationChange  SceneType = "location_change"
	SceneTown            SceneType = "town"
)

// Valid reports whether t is one of the known scene types.
func (t SceneType) Valid() bool {
	switch t {
	case SceneNarration, SceneDialogue, SceneChoice, SceneRegularCombat,
		SceneBossCombat, SceneItemAcquisition, SceneLocationChange, SceneTown:
		return true
	}
	return false
}

// IsCombat reports whether t is a combat scene type.
func (t SceneType) IsCombat() bool {
	return t == SceneRegularCombat || t == SceneBossCombat
}

// DialogueChoice is one branching option of a choice scene. NextSceneID is a
// weak reference by ID; empty means the option leads nowhere until linked.
type DialogueChoice struct {
	ID          string `json:"id"`
	Text        string `json:"text"`
	NextSceneID string `json:"nextSceneId,omitempty"`
}

// CombatDetails carries the enemy roster references and reward text of a
// combat scene. Enemy IDs are weak references into the stage's characters.
type CombatDetails struct {
	EnemyCharacterIDs []string `json:"enemyCharacterIds"`
	Reward            string   `json:"reward,omitempty"`
}

// Scene is one narrative beat inside a stage. Exactly one linkage mechanism
// is active per scene: choice scenes progress only through their options'
// NextSceneID, every other type only through the scene's own NextSceneID
// (empty meaning end of path).
type Scene struct {
	ID              string           `json:"id"`
	StageID         string           `json:"stageId"`
	Type            SceneType        `json:"type"`
	Title           string           `json:"title"`
	Content         string           `json:"content"`
	CharacterIDs    []string         `json:"characterIds,omitempty"` // e.g. the dialogue speaker
	Choices         []DialogueChoice `json:"choices,omitempty"`      // choice scenes only
	NextSceneID     string           `json:"nextSceneId,omitempty"`  // linear scenes only
	Combat          *CombatDetails   `json:"combatDetails,omitempty"`
	Item            string           `json:"item,omitempty"`
	NewLocationName string           `json:"newLocationName,omitempty"`
}

// SetType changes the scene's type and repopulates the type-specific fields
// to match, clearing everything that belongs to the previous type. Stale
// payloads from a prior type never survive a type change.
func (s *Scene) SetType(t SceneType) {
	s.Type = t

	if t == SceneChoice {
		s.NextSceneID = ""
		if s.Choices == nil {
			s.Choices = []DialogueChoice{}
		}
	} else {
		s.Choices = nil
	}

	if t.IsCombat() {
		if s.Combat == nil {
			s.Combat = &CombatDetails{EnemyCharacterIDs: []string{}}
		}
	} else {
		s.Combat = nil
	}

	if t != SceneItemAcquisition {
		s.Item = ""
	}
	if t != SceneLocationChange {
		s.NewLocationName = ""
	}
	if t != SceneDialogue {
		s.CharacterIDs = nil
	}
}

// Validate checks the scene's structural invariants.
func (s *Scene) Validate() error {
	if !s.Type.Valid() {
		return fmt.Errorf("scene %q has unknown type %q", s.ID, s.Type)
	}
	if s.Type == SceneChoice {
		if s.NextSceneID != "" {
			return fmt.Errorf("choice scene %q must not have a direct next scene link", s.ID)
		}
	} else if len(s.Choices) > 0 {
		return fmt.Errorf("%s scene %q must not carry choices", s.Type, s.ID)
	}
	if !s.Type.IsCombat() && s.Combat != nil {
		return fmt.Errorf("%s scene %q must not carry combat details", s.Type, s.ID)
	}
	if s.Type != SceneItemAcquisition && s.Item != "" {
		return fmt.Errorf("%s scene %q must not carry an item", s.Type, s.ID)
	}
	if s.Type != SceneLocationChange && s.NewLocationName != "" {
		return fmt.Errorf("%s scene %q must not carry a location change", s.Type, s.ID)
	}
	return nil
}
