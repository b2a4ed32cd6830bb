// Package generation turns raw, untrusted model output into validated
// suggestion payloads and fully linked stage graphs. JSON field names follow
// the wire format the prompts instruct the model to produce.
package generation

import (
	"github.com/sigco3111/rpg-script-editor/pkg/script"
)

// StageSuggestion is one proposed stage from a stage-list generation.
type StageSuggestion struct {
	Title              string `json:"title"`
	SettingDescription string `json:"settingDescription"`
}

// CharacterSuggestion is a proposed character. Type is only populated in
// full-stage bundles; single-character generations carry the requested type
// out of band.
type CharacterSuggestion struct {
	Name         string               `json:"name"`
	Type         script.CharacterType `json:"type,omitempty"`
	Description  string               `json:"description"`
	DialogueSeed string               `json:"dialogueSeed,omitempty"`
}

// ChoiceSuggestion is one proposed option of a choice scene. The target is a
// scene title, not an ID: the model cannot know generated IDs in advance.
type ChoiceSuggestion struct {
	Text                    string `json:"text"`
	SuggestedNextSceneTitle string `json:"suggestedNextSceneTitle,omitempty"`
}

// SceneSuggestion is one proposed scene with type-specific hint fields.
type SceneSuggestion struct {
	Type                 script.SceneType   `json:"type"`
	Title                string             `json:"title"`
	Content              string             `json:"content"`
	SpeakerCharacterName string             `json:"speakerCharacterName,omitempty"`
	Choices              []ChoiceSuggestion `json:"choices,omitempty"`
	EnemyNames           []string           `json:"enemyNames,omitempty"`
	Reward               string             `json:"reward,omitempty"`
	ItemName             string             `json:"itemName,omitempty"`
	NewLocationName      string             `json:"newLocationName,omitempty"`
}

// FullStageBundle is the model's answer to a full-stage generation: stage
// details plus unlinked character and scene suggestions.
type FullStageBundle struct {
	StageTitle              string                `json:"generatedStageTitle"`
	StageSettingDescription string                `json:"generatedStageSettingDescription"`
	Characters              []CharacterSuggestion `json:"characters"`
	Scenes                  []SceneSuggestion     `json:"scenes"`
}

// StageDetails is the header of a resolved stage.
type StageDetails struct {
	Title              string `json:"title"`
	SettingDescription string `json:"settingDescription"`
}

// ProcessedStage is a resolver output: materialized characters and scenes
// with stable IDs and resolved graph edges, ready to be committed as a
// stage.
type ProcessedStage struct {
	Details    StageDetails       `json:"stageDetails"`
	Characters []script.Character `json:"characters"`
	Scenes     []script.Scene     `json:"scenes"`
}

// Stage stamps a fresh stage ID onto the processed scenes and assembles the
// committable stage.
func (p *ProcessedStage) Stage(newID func() string) script.Stage {
	id := newID()
	scenes := make([]script.Scene, len(p.Scenes))
	for i, sc := range p.Scenes {
		sc.StageID = id
		scenes[i] = sc
	}
	return script.Stage{
		ID:                 id,
		Title:              p.Details.Title,
		SettingDescription: p.Details.SettingDescription,
		Scenes:             scenes,
		Characters:         p.Characters,
	}
}
