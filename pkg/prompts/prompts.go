// Package prompts builds the generation prompts sent to the language model.
// Every prompt instructs the model to answer with raw JSON matching the wire
// shapes decoded by pkg/generation.
package prompts

import (
	"fmt"
	"strings"

	"github.com/sigco3111/rpg-script-editor/pkg/script"
)

const (
	stageSummaryLimit = 100
	minStageScenes    = 20
)

// StageListPrompt asks for three stage proposals grounded in the world
// settings.
const StageListPrompt = `Based on the following RPG world settings:
Title: %s
Description: %s
Main conflict: %s
Key locations: %s

Suggest 3 distinct stages for this RPG. For each stage, provide a "title" (max 10 words) and a "settingDescription" (1-2 sentences).
Return the response as a JSON array of objects, each with "title" and "settingDescription" properties.
Example: [{"title": "The Whispering Forest", "settingDescription": "An ancient forest said to hold a lost relic."}]`

// StageList builds the stage-suggestion prompt.
func StageList(ws *script.WorldSettings) string {
	return fmt.Sprintf(StageListPrompt, ws.Title, ws.Description, ws.MainConflict, ws.KeyLocations)
}

// Character builds a single-character generation prompt for the given type.
// customPrompt is an optional free-form user request.
func Character(ws *script.WorldSettings, stage *script.Stage, characterType script.CharacterType, customPrompt string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "RPG world: %s\n", ws.Description)
	fmt.Fprintf(&b, "Current stage: %q - %s\n", stage.Title, stage.SettingDescription)
	fmt.Fprintf(&b, "Character type to create: %s\n", characterType)
	fmt.Fprintf(&b, "Existing characters in the stage: %s\n", characterRoster(stage))
	if customPrompt != "" {
		fmt.Fprintf(&b, "\nSpecific request: %s\n", customPrompt)
	}
	fmt.Fprintf(&b, "\nCreate a compelling %s character fitting this stage.\n", characterType)
	b.WriteString(`Provide a "name", a thematic "description" (1-2 sentences)`)
	if characterType == script.CharacterNPC {
		b.WriteString(`, and a "dialogueSeed" (a short phrase or topic this NPC might talk about, max 10 words)`)
	}
	b.WriteString(".\nThe character must be original and consistent with the stage and world context.\n")
	if characterType == script.CharacterNPC {
		b.WriteString(`Return as JSON: {"name": "Character Name", "description": "Character description...", "dialogueSeed": "Example dialogue seed..."}`)
	} else {
		b.WriteString(`Return as JSON: {"name": "Character Name", "description": "Character description..."}`)
	}
	return b.String()
}

// SceneDetail builds a per-scene content prompt for the given scene type.
// context is an optional hint, such as a previous scene summary or a user
// query.
func SceneDetail(ws *script.WorldSettings, stage *script.Stage, sceneType script.SceneType, context string) (string, error) {
	instruction, ok := sceneInstructions[sceneType]
	if !ok {
		return "", fmt.Errorf("no generation prompt for scene type %q", sceneType)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "RPG world: %s\n", ws.Description)
	fmt.Fprintf(&b, "Current stage: %q - %s\n", stage.Title, stage.SettingDescription)
	fmt.Fprintf(&b, "Existing characters in the stage: %s\n", characterRoster(stage))
	if context != "" {
		fmt.Fprintf(&b, "Context/user request: %s\n", context)
	}
	b.WriteString("\n")
	b.WriteString(instruction)
	return b.String(), nil
}

var sceneInstructions = map[script.SceneType]string{
	script.SceneNarration: `Create a narration scene. Provide a "title" (max 5 words) and "content" (1-3 sentences of narration).
Return as JSON: {"title": "Example Title", "content": "Example narration content..."}`,

	script.SceneDialogue: `Create a dialogue scene spoken by an NPC.
Provide a "title" (max 5 words), "content" (the NPC's line, 1-2 sentences), and optionally a "speakerCharacterName" if one of the stage's existing NPCs fits.
Return as JSON: {"title": "Example Title", "content": "Example line...", "speakerCharacterName": "NPC Name"}`,

	script.SceneChoice: `Create a choice scene. Provide a "title" (max 5 words), "content" (the situation leading to the choice, 1-2 sentences), and a "choices" array of 2-3 player dialogue options, each an object with a "text" property.
Return as JSON: {"title": "Example Title", "content": "Example situation...", "choices": [{"text": "Option 1"}, {"text": "Option 2"}]}`,

	script.SceneRegularCombat: `Create a regular combat scene. Provide a "title" (max 5 words), "content" (a description of the combat situation, 1-2 sentences), "enemyNames" (an array of 1-3 names of the stage's existing monsters or new thematic regular monsters), and optionally a "reward" (e.g. "Healing Potion").
Return as JSON: {"title": "Example Title", "content": "Example combat description...", "enemyNames": ["Grunt 1", "Grunt 2"], "reward": "Example Reward"}`,

	script.SceneBossCombat: `Create a boss combat scene. This fight is the stage's main challenge. Provide a "title" (max 5 words, may include the boss's name), "content" (a tense description of the boss fight, 1-3 sentences), "enemyNames" (an array with one name, either the stage's existing boss monster or a new powerful boss), and a "reward" (e.g. "Legendary Relic Shard").
Return as JSON: {"title": "Boss Fight: The Shadow Lord", "content": "At last you face the Shadow Lord! His mighty blows shake the chamber.", "enemyNames": ["The Shadow Lord"], "reward": "Heart of Darkness"}`,

	script.SceneItemAcquisition: `Create an item acquisition scene. Provide a "title" (max 5 words), "content" (1-2 sentences on how the item is found or obtained), and an "itemName" (e.g. "Ancient Sword", "Healing Herb").
Return as JSON: {"title": "Example Title", "content": "Example discovery...", "itemName": "Example Item"}`,

	script.SceneLocationChange: `Create a location change scene. Provide a "title" (max 5 words), "content" (1-2 sentences about arriving at or describing the new place), and a "newLocationName" (the name of the new place or area, e.g. "Whispering Cave", "The Market").
Return as JSON: {"title": "Example Title", "content": "Example place description...", "newLocationName": "Example New Place"}`,

	script.SceneTown: `Create a town scene, a safe place where the player can rest, use shops, and prepare for the next adventure. Provide a "title" (max 5 words, may include the town's name) and "content" (1-3 sentences describing the town's mood or main features).
Return as JSON: {"title": "Peaceful Oasis Town", "content": "Nestled in the middle of the desert, this small town offers shelter to travelers. A bustling market and friendly residents greet visitors."}`,
}

// FullStage builds the full-stage wizard prompt. theme and titleHint come
// from the user's stage concept and may be empty; existingStages informs the
// model of the story so far when no theme is given.
func FullStage(ws *script.WorldSettings, titleHint, theme string, existingStages []script.Stage) string {
	var b strings.Builder
	b.WriteString("You are an RPG scenario writer. Create a complete stage from the given world settings and stage concept.\n")
	fmt.Fprintf(&b, "The stage must contain at least %d scenes, and the last scene must be a boss combat.\n", minStageScenes)
	b.WriteString("Characters (NPCs, regular monsters, boss monsters) and scenes should be organically connected.\n")
	b.WriteString("Consider including at least one town scene, a safe place where the player can regroup.\n\n")

	b.WriteString("World settings:\n")
	fmt.Fprintf(&b, "- Title: %s\n", ws.Title)
	fmt.Fprintf(&b, "- Description: %s\n", ws.Description)
	fmt.Fprintf(&b, "- Main conflict: %s\n", ws.MainConflict)
	fmt.Fprintf(&b, "- Key locations: %s\n\n", ws.KeyLocations)

	b.WriteString(themeInstruction(titleHint, theme, existingStages))
	b.WriteString("\n")

	fmt.Fprintf(&b, `Respond with the following JSON structure:
{
  "generatedStageTitle": "stage title",
  "generatedStageSettingDescription": "stage setting description (1-2 sentences)",
  "characters": [
    {
      "name": "character name",
      "type": "one of %s",
      "description": "detailed character description",
      "dialogueSeed": "(for NPCs) main dialogue topic or a short line"
    }
  ],
  "scenes": [
    {
      "type": "one of %s",
      "title": "scene title",
      "content": "scene content or situation description",
      "speakerCharacterName": "(for dialogue scenes) the name of an NPC defined in the characters array",
      "choices": [
        {
          "text": "option 1 text",
          "suggestedNextSceneTitle": "the title of the scene this option leads to (another scene in this stage)"
        }
      ],
      "enemyNames": ["monster or boss name 1"],
      "reward": "(for combat scenes) reward description",
      "itemName": "(for item acquisition scenes) name of the acquired item",
      "newLocationName": "(for location change scenes) name of the new place"
    }
  ]
}

`, joinValues(characterTypeValues()), joinValues(sceneTypeValues()))

	fmt.Fprintf(&b, `Important rules:
1. The "characters" array must define every character referenced in the "scenes" array.
2. A dialogue scene's "speakerCharacterName" must match the name of an NPC in the "characters" array.
3. The "enemyNames" of a regular combat or boss combat scene must match monster/boss names in the "characters" array.
4. The last scene in the "scenes" array must have "type": %q and must involve a %q character from the "characters" array.
5. The total scene count must be at least %d, using a variety of scene types (e.g. %s, %s, %s, %s).
6. Structure the story so it flows logically from scene to scene. Each "suggestedNextSceneTitle" in a choice scene's "choices" must reference the "title" of another scene being generated, preferably one that comes after the choice scene so the story moves forward.
7. Respond with raw JSON only, no surrounding prose.`,
		script.SceneBossCombat, script.CharacterBossMonster, minStageScenes,
		script.SceneTown, script.SceneNarration, script.SceneDialogue, script.SceneRegularCombat)

	return b.String()
}

func themeInstruction(titleHint, theme string, existingStages []script.Stage) string {
	var b strings.Builder
	b.WriteString("Stage concept:\n")
	switch {
	case theme != "":
		hint := titleHint
		if hint == "" {
			hint = "(model generated)"
		}
		fmt.Fprintf(&b, "- Title suggestion (optional): %s\n", hint)
		fmt.Fprintf(&b, "- User-provided theme/core idea: %s\n", theme)

	case len(existingStages) == 0:
		b.WriteString("- The user did not provide a theme.\n")
		b.WriteString("- Based on the given world settings, creatively devise a theme and story for an interesting first stage fitting this world.\n")
		fmt.Fprintf(&b, "- Also generate a stage title fitting the world. (User title suggestion: %s)\n", orNone(titleHint))

	default:
		recent := existingStages
		if len(recent) > 3 {
			recent = recent[len(recent)-3:]
		}
		b.WriteString("- The user did not provide a theme.\n")
		fmt.Fprintf(&b, "- The following stages already exist (last %d summarized):\n", len(recent))
		for _, s := range recent {
			fmt.Fprintf(&b, "  - %q: %s\n", s.Title, summarize(s.SettingDescription))
		}
		b.WriteString("- Considering the world settings and the previous stages above, creatively devise a theme and story for a new stage that continues the narrative or expands the world.\n")
		fmt.Fprintf(&b, "- Also generate a stage title fitting the context. (User title suggestion: %s)\n", orNone(titleHint))
	}
	return b.String()
}

func characterRoster(stage *script.Stage) string {
	if len(stage.Characters) == 0 {
		return "none yet"
	}
	entries := make([]string, len(stage.Characters))
	for i, c := range stage.Characters {
		entries[i] = fmt.Sprintf("%s (%s)", c.Name, c.Type)
	}
	return strings.Join(entries, ", ")
}

func summarize(s string) string {
	runes := []rune(s)
	if len(runes) <= stageSummaryLimit {
		return s
	}
	return string(runes[:stageSummaryLimit]) + "..."
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}

func characterTypeValues() []script.CharacterType {
	return []script.CharacterType{
		script.CharacterNPC,
		script.CharacterPlayer,
		script.CharacterRegularMonster,
		script.CharacterBossMonster,
	}
}

func sceneTypeValues() []script.SceneType {
	return []script.SceneType{
		script.SceneNarration,
		script.SceneDialogue,
		script.SceneChoice,
		script.SceneRegularCombat,
		script.SceneBossCombat,
		script.SceneItemAcquisition,
		script.SceneLocationChange,
		script.SceneTown,
	}
}

func joinValues[T ~string](values []T) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = string(v)
	}
	return strings.Join(parts, " or ")
}
