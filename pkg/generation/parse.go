package generation

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/sigco3111/rpg-script-editor/pkg/script"
)

var codeFenceRe = regexp.MustCompile("(?s)^```(?:\\w+)?\\s*\\n?(.*?)\\n?\\s*```$")

// StripCodeFence removes a Markdown code-fence envelope some models wrap
// around their JSON output.
func StripCodeFence(s string) string {
	trimmed := strings.TrimSpace(s)
	if m := codeFenceRe.FindStringSubmatch(trimmed); m != nil {
		return strings.TrimSpace(m[1])
	}
	return trimmed
}

func decode(raw string, v any) error {
	stripped := StripCodeFence(raw)
	if err := json.Unmarshal([]byte(stripped), v); err != nil {
		return &ParseError{Raw: stripped, Err: err}
	}
	return nil
}

// ParseStageSuggestions decodes and validates a stage-list response.
func ParseStageSuggestions(raw string) ([]StageSuggestion, error) {
	var suggestions []StageSuggestion
	if err := decode(raw, &suggestions); err != nil {
		return nil, err
	}
	if len(suggestions) == 0 {
		return nil, formatErrorf("stage suggestion response contains no stages")
	}
	for _, s := range suggestions {
		if s.Title == "" || s.SettingDescription == "" {
			return nil, formatErrorf("stage suggestion response does not match the expected shape")
		}
	}
	return suggestions, nil
}

// ParseCharacterSuggestion decodes and validates a single-character
// response for the requested character type.
func ParseCharacterSuggestion(raw string, characterType script.CharacterType) (*CharacterSuggestion, error) {
	var suggestion CharacterSuggestion
	if err := decode(raw, &suggestion); err != nil {
		return nil, err
	}
	if suggestion.Name == "" || suggestion.Description == "" {
		return nil, formatErrorf("character response for %s does not match the expected shape", characterType)
	}
	if characterType == script.CharacterNPC && suggestion.DialogueSeed == "" {
		return nil, formatErrorf("character response for an NPC is missing dialogueSeed")
	}
	return &suggestion, nil
}

// ParseSceneSuggestion decodes a per-scene content response and validates
// the type-specific hint fields for the requested scene type.
func ParseSceneSuggestion(raw string, sceneType script.SceneType) (*SceneSuggestion, error) {
	var suggestion SceneSuggestion
	if err := decode(raw, &suggestion); err != nil {
		return nil, err
	}
	suggestion.Type = sceneType

	if suggestion.Title == "" || suggestion.Content == "" {
		return nil, formatErrorf("scene response for %s is missing a title or content", sceneType)
	}
	switch sceneType {
	case script.SceneChoice:
		if len(suggestion.Choices) == 0 {
			return nil, formatErrorf("choice scene response has no choices")
		}
		for _, c := range suggestion.Choices {
			if c.Text == "" {
				return nil, formatErrorf("choice scene response has a choice without text")
			}
		}
	case script.SceneRegularCombat, script.SceneBossCombat:
		if suggestion.EnemyNames == nil {
			return nil, formatErrorf("combat scene response is missing enemyNames")
		}
	case script.SceneItemAcquisition:
		if suggestion.ItemName == "" {
			return nil, formatErrorf("item acquisition scene response is missing itemName")
		}
	case script.SceneLocationChange:
		if suggestion.NewLocationName == "" {
			return nil, formatErrorf("location change scene response is missing newLocationName")
		}
	}
	return &suggestion, nil
}

// ParseFullStageBundle decodes a full-stage response and checks its
// top-level required fields. Graph-level rules (final boss scene, minimum
// scene count) belong to the Resolver.
func ParseFullStageBundle(raw string) (*FullStageBundle, error) {
	var bundle FullStageBundle
	if err := decode(raw, &bundle); err != nil {
		return nil, err
	}
	if bundle.StageTitle == "" || bundle.Characters == nil || len(bundle.Scenes) == 0 {
		return nil, formatErrorf("full stage response is missing required fields or contains no scenes")
	}
	for _, sc := range bundle.Scenes {
		if sc.Title == "" || sc.Content == "" {
			return nil, formatErrorf("full stage response contains a scene without a title or content")
		}
		if !sc.Type.Valid() {
			return nil, formatErrorf("full stage response contains a scene with unknown type %q", sc.Type)
		}
	}
	return &bundle, nil
}
