package generation

import (
	"fmt"
	"log/slog"

	"github.com/sigco3111/rpg-script-editor/pkg/script"
)

// MinStageScenes is the scene count the full-stage prompt asks the model
// for. Falling short is a warning, not a failure.
const MinStageScenes = 20

// Resolver converts a raw full-stage bundle into a self-consistent stage
// graph with stable generated IDs. It is pure and synchronous: safe to run
// repeatedly and discard on failure.
type Resolver struct {
	Log   *slog.Logger
	NewID func() string
}

// NewResolver returns a resolver generating uuid identifiers.
func NewResolver(log *slog.Logger) *Resolver {
	return &Resolver{Log: log, NewID: script.NewID}
}

// Resolve materializes the bundle's characters and scenes and links the
// graph in two passes. Individual reference misses degrade into warnings;
// only structural violations abort with a *FormatError.
func (r *Resolver) Resolve(bundle *FullStageBundle) (*ProcessedStage, []string, error) {
	if len(bundle.Scenes) == 0 {
		return nil, nil, formatErrorf("generated stage contains no scenes")
	}
	if last := bundle.Scenes[len(bundle.Scenes)-1]; last.Type != script.SceneBossCombat {
		return nil, nil, formatErrorf("last scene of a generated stage must be a boss combat, got %q", last.Type)
	}

	var warnings []string
	warn := func(format string, args ...any) {
		msg := fmt.Sprintf(format, args...)
		warnings = append(warnings, msg)
		if r.Log != nil {
			r.Log.Warn("stage generation reference unresolved", "detail", msg)
		}
	}

	if len(bundle.Scenes) < MinStageScenes {
		warn("model produced only %d scenes (minimum %d requested)", len(bundle.Scenes), MinStageScenes)
	}

	characters := make([]script.Character, 0, len(bundle.Characters))
	for _, cs := range bundle.Characters {
		characters = append(characters, script.Character{
			ID:           r.NewID(),
			Name:         cs.Name,
			Type:         cs.Type,
			Description:  cs.Description,
			DialogueSeed: cs.DialogueSeed,
		})
	}

	// Pass 1: materialize scenes and resolve per-scene content references.
	// Choice targets are deferred: they reference scenes by title that may
	// not exist yet.
	scenes := make([]script.Scene, 0, len(bundle.Scenes))
	deferredTargets := make([][]string, len(bundle.Scenes))
	for i, ss := range bundle.Scenes {
		scene, sceneWarnings := r.materializeScene(&ss, characters)
		warnings = append(warnings, sceneWarnings...)
		if r.Log != nil {
			for _, w := range sceneWarnings {
				r.Log.Warn("stage generation reference unresolved", "detail", w)
			}
		}
		if ss.Type == script.SceneChoice {
			targets := make([]string, len(ss.Choices))
			for j, c := range ss.Choices {
				targets[j] = c.SuggestedNextSceneTitle
			}
			deferredTargets[i] = targets
		}
		scenes = append(scenes, scene)
	}

	// Pass 2: link the graph. Non-choice scenes chain linearly in list
	// order; choice targets resolve by exact title match.
	for i := range scenes {
		if scenes[i].Type != script.SceneChoice {
			if i < len(scenes)-1 {
				scenes[i].NextSceneID = scenes[i+1].ID
			}
			continue
		}
		for j := range scenes[i].Choices {
			title := deferredTargets[i][j]
			if title == "" {
				continue
			}
			target := findSceneByTitle(scenes, title)
			switch {
			case target == nil:
				warn("choice %q in scene %q points at unknown scene title %q; the option will lead nowhere until linked manually",
					scenes[i].Choices[j].Text, scenes[i].Title, title)
			case target.ID == scenes[i].ID:
				warn("choice %q in scene %q points at its own scene; the link is ignored",
					scenes[i].Choices[j].Text, scenes[i].Title)
			default:
				scenes[i].Choices[j].NextSceneID = target.ID
			}
		}
	}

	return &ProcessedStage{
		Details: StageDetails{
			Title:              bundle.StageTitle,
			SettingDescription: bundle.StageSettingDescription,
		},
		Characters: characters,
		Scenes:     scenes,
	}, warnings, nil
}

// ResolveScene materializes a single scene suggestion against an existing
// character roster. Used for per-scene generation into an already committed
// stage; choice options are created unlinked.
func (r *Resolver) ResolveScene(ss *SceneSuggestion, roster []script.Character) (script.Scene, []string) {
	scene, warnings := r.materializeScene(ss, roster)
	if r.Log != nil {
		for _, w := range warnings {
			r.Log.Warn("scene generation reference unresolved", "detail", w)
		}
	}
	return scene, warnings
}

func (r *Resolver) materializeScene(ss *SceneSuggestion, characters []script.Character) (script.Scene, []string) {
	var warnings []string
	scene := script.Scene{
		ID:      r.NewID(),
		Type:    ss.Type,
		Title:   ss.Title,
		Content: ss.Content,
	}

	switch ss.Type {
	case script.SceneDialogue:
		if ss.SpeakerCharacterName != "" {
			if speaker := findCharacter(characters, ss.SpeakerCharacterName, script.CharacterNPC); speaker != nil {
				scene.CharacterIDs = []string{speaker.ID}
			} else {
				warnings = append(warnings, fmt.Sprintf("speaker %q not found for dialogue scene %q",
					ss.SpeakerCharacterName, ss.Title))
			}
		}

	case script.SceneRegularCombat, script.SceneBossCombat:
		preferred := script.CharacterRegularMonster
		fallback := script.CharacterBossMonster
		if ss.Type == script.SceneBossCombat {
			preferred, fallback = fallback, preferred
		}
		enemyIDs := []string{}
		for _, name := range ss.EnemyNames {
			enemy := findCharacter(characters, name, preferred)
			if enemy == nil {
				enemy = findCharacter(characters, name, fallback)
			}
			if enemy == nil {
				enemy = findCharacter(characters, name)
			}
			if enemy != nil {
				enemyIDs = append(enemyIDs, enemy.ID)
			} else {
				warnings = append(warnings, fmt.Sprintf("enemy %q not found for combat scene %q", name, ss.Title))
			}
		}
		scene.Combat = &script.CombatDetails{EnemyCharacterIDs: enemyIDs, Reward: ss.Reward}

	case script.SceneChoice:
		choices := make([]script.DialogueChoice, 0, len(ss.Choices))
		for _, c := range ss.Choices {
			choices = append(choices, script.DialogueChoice{ID: r.NewID(), Text: c.Text})
		}
		scene.Choices = choices

	case script.SceneItemAcquisition:
		scene.Item = ss.ItemName

	case script.SceneLocationChange:
		scene.NewLocationName = ss.NewLocationName
	}

	return scene, warnings
}

// findCharacter returns the first roster character matching the exact name
// and, when given, one of the wanted types. No fuzzy matching.
func findCharacter(characters []script.Character, name string, types ...script.CharacterType) *script.Character {
	for i := range characters {
		if characters[i].Name != name {
			continue
		}
		if len(types) == 0 {
			return &characters[i]
		}
		for _, t := range types {
			if characters[i].Type == t {
				return &characters[i]
			}
		}
	}
	return nil
}

func findSceneByTitle(scenes []script.Scene, title string) *script.Scene {
	for i := range scenes {
		if scenes[i].Title == title {
			return &scenes[i]
		}
	}
	return nil
}
