package script

import (
	"github.com/google/uuid"
)

// WorldSettings describes the overall world the stages play out in.
type WorldSettings struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	MainConflict string `json:"mainConflict"`
	KeyLocations string `json:"keyLocations"`
}

// Project is the root document. It exclusively owns its stages; each stage
// exclusively owns its scenes and characters. Cross-entity references are
// weak string IDs.
type Project struct {
	WorldSettings *WorldSettings `json:"worldSettings"`
	Stages        []Stage        `json:"stages"`
}

// NewProject returns an empty project document.
func NewProject() *Project {
	return &Project{Stages: []Stage{}}
}

// NewID generates a fresh unique entity identifier.
func NewID() string {
	return uuid.NewString()
}

// FindStage returns the stage with the given ID, or nil.
func (p *Project) FindStage(id string) *Stage {
	for i := range p.Stages {
		if p.Stages[i].ID == id {
			return &p.Stages[i]
		}
	}
	return nil
}

// StageIndex returns the position of the stage with the given ID, or -1.
func (p *Project) StageIndex(id string) int {
	for i := range p.Stages {
		if p.Stages[i].ID == id {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy of the project.
func (p *Project) Clone() *Project {
	out := &Project{Stages: make([]Stage, len(p.Stages))}
	if p.WorldSettings != nil {
		ws := *p.WorldSettings
		out.WorldSettings = &ws
	}
	for i := range p.Stages {
		out.Stages[i] = p.Stages[i].Clone()
	}
	return out
}

// The With* mutators are reducer-style: each deep-clones the snapshot,
// applies one edit and returns the new snapshot. The receiver is never
// modified.

// WithWorldSettings returns a snapshot with the world settings replaced.
func (p *Project) WithWorldSettings(ws *WorldSettings) *Project {
	out := p.Clone()
	out.WorldSettings = ws
	return out
}

// WithStageAdded returns a snapshot with the stage appended.
func (p *Project) WithStageAdded(st Stage) *Project {
	out := p.Clone()
	out.Stages = append(out.Stages, st.Clone())
	return out
}

// WithStageUpdated returns a snapshot with the matching stage replaced.
// Unknown IDs leave the snapshot unchanged.
func (p *Project) WithStageUpdated(st Stage) *Project {
	out := p.Clone()
	for i := range out.Stages {
		if out.Stages[i].ID == st.ID {
			out.Stages[i] = st.Clone()
			break
		}
	}
	return out
}

// WithStageRemoved returns a snapshot without the given stage. Removal
// cascades to the stage's scenes and characters only; dangling references
// from elsewhere are tolerated, never repaired.
func (p *Project) WithStageRemoved(stageID string) *Project {
	out := p.Clone()
	stages := out.Stages[:0]
	for i := range out.Stages {
		if out.Stages[i].ID != stageID {
			stages = append(stages, out.Stages[i])
		}
	}
	out.Stages = stages
	return out
}

// WithStageCharacters returns a snapshot with the stage's roster replaced.
func (p *Project) WithStageCharacters(stageID string, characters []Character) *Project {
	out := p.Clone()
	if st := out.FindStage(stageID); st != nil {
		st.Characters = append([]Character(nil), characters...)
	}
	return out
}

// WithSceneAdded returns a snapshot with the scene appended to its stage.
func (p *Project) WithSceneAdded(stageID string, sc Scene) *Project {
	out := p.Clone()
	if st := out.FindStage(stageID); st != nil {
		sc.StageID = st.ID
		st.Scenes = append(st.Scenes, cloneScene(sc))
	}
	return out
}

// WithSceneUpdated returns a snapshot with the matching scene replaced.
func (p *Project) WithSceneUpdated(stageID string, sc Scene) *Project {
	out := p.Clone()
	if st := out.FindStage(stageID); st != nil {
		for i := range st.Scenes {
			if st.Scenes[i].ID == sc.ID {
				sc.StageID = st.ID
				st.Scenes[i] = cloneScene(sc)
				break
			}
		}
	}
	return out
}

// WithSceneRemoved returns a snapshot without the given scene.
func (p *Project) WithSceneRemoved(stageID, sceneID string) *Project {
	out := p.Clone()
	if st := out.FindStage(stageID); st != nil {
		scenes := st.Scenes[:0]
		for i := range st.Scenes {
			if st.Scenes[i].ID != sceneID {
				scenes = append(scenes, st.Scenes[i])
			}
		}
		st.Scenes = scenes
	}
	return out
}
