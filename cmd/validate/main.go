package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sigco3111/rpg-script-editor/pkg/script"
)

// validate checks an exported project file before it is shared or re-imported.
// Hard errors fail the run; structural warnings are printed but tolerated,
// matching the editor's own dangling-reference policy.
func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <project.json>\n", os.Args[0])
		os.Exit(1)
	}

	filename := os.Args[1]
	validator := &ProjectValidator{}

	if err := validator.validateFile(filename); err != nil {
		fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
		os.Exit(1)
	}

	for _, w := range validator.warnings {
		fmt.Printf("warning: %s\n", w)
	}
	fmt.Println("Project file is valid!")
}

type ProjectValidator struct {
	errors   []string
	warnings []string
}

func (v *ProjectValidator) validateFile(filename string) error {
	fmt.Printf("Validating %s...\n", filename)

	baseName := filepath.Base(filename)
	if !strings.HasSuffix(baseName, ".json") {
		return fmt.Errorf("project file must have .json extension: %s", baseName)
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	v.errors = nil
	v.warnings = nil

	project, err := script.ParseProject(data)
	if err != nil {
		return err
	}

	for i := range project.Stages {
		v.validateStage(&project.Stages[i])
	}

	if len(v.errors) > 0 {
		return fmt.Errorf("project has %d error(s):\n  %s",
			len(v.errors), strings.Join(v.errors, "\n  "))
	}
	return nil
}

func (v *ProjectValidator) validateStage(stage *script.Stage) {
	if stage.ID == "" {
		v.errorf("stage %q has no ID", stage.Title)
	}
	if stage.Title == "" {
		v.errorf("stage %s has no title", stage.ID)
	}

	for i := range stage.Characters {
		c := &stage.Characters[i]
		if c.ID == "" {
			v.errorf("stage %q: character %q has no ID", stage.Title, c.Name)
		}
		if !c.Type.Valid() {
			v.errorf("stage %q: character %q has unknown type %q", stage.Title, c.Name, c.Type)
		}
	}

	for i := range stage.Scenes {
		v.validateScene(stage, &stage.Scenes[i])
	}

	// The player relies on the last scene being the stage boss.
	if last := stage.LastScene(); last != nil && last.Type != script.SceneBossCombat {
		v.warnf("stage %q: last scene %q is %q, not %q; the stage cannot be cleared",
			stage.Title, last.Title, last.Type, script.SceneBossCombat)
	}
}

func (v *ProjectValidator) validateScene(stage *script.Stage, sc *script.Scene) {
	if sc.ID == "" {
		v.errorf("stage %q: scene %q has no ID", stage.Title, sc.Title)
		return
	}
	if sc.StageID != stage.ID {
		v.errorf("stage %q: scene %q belongs to stage %q", stage.Title, sc.Title, sc.StageID)
	}
	if err := sc.Validate(); err != nil {
		v.errorf("stage %q: scene %q: %v", stage.Title, sc.Title, err)
	}

	// Dangling references are tolerated at play time but worth surfacing.
	if sc.NextSceneID != "" && stage.FindScene(sc.NextSceneID) == nil {
		v.warnf("stage %q: scene %q links to unknown scene %q", stage.Title, sc.Title, sc.NextSceneID)
	}
	for _, choice := range sc.Choices {
		if choice.NextSceneID != "" && stage.FindScene(choice.NextSceneID) == nil {
			v.warnf("stage %q: scene %q: choice %q links to unknown scene %q",
				stage.Title, sc.Title, choice.Text, choice.NextSceneID)
		}
	}
	for _, id := range sc.CharacterIDs {
		if stage.FindCharacter(id) == nil {
			v.warnf("stage %q: scene %q references unknown character %q", stage.Title, sc.Title, id)
		}
	}
	if sc.Combat != nil {
		for _, id := range sc.Combat.EnemyCharacterIDs {
			if stage.FindCharacter(id) == nil {
				v.warnf("stage %q: scene %q has unknown enemy %q", stage.Title, sc.Title, id)
			}
		}
	}
}

func (v *ProjectValidator) errorf(format string, args ...any) {
	v.errors = append(v.errors, fmt.Sprintf(format, args...))
}

func (v *ProjectValidator) warnf(format string, args ...any) {
	v.warnings = append(v.warnings, fmt.Sprintf(format, args...))
}
