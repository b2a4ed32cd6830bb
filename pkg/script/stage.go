package script

// Stage is a self-contained chapter: an ordered scene list plus its own
// character roster. Scene order carries no narrative meaning except that the
// first scene is the entry point, the last scene decides the
// boss-combat-advances-stage rule, and backward order is the search order for
// the nearest town scene.
type Stage struct {
	ID                 string      `json:"id"`
	Title              string      `json:"title"`
	SettingDescription string      `json:"settingDescription"`
	Scenes             []Scene     `json:"scenes"`
	Characters         []Character `json:"characters"`
}

// FindScene returns the scene with the given ID, or nil. Dangling references
// resolve to nil rather than failing.
func (st *Stage) FindScene(id string) *Scene {
	for i := range st.Scenes {
		if st.Scenes[i].ID == id {
			return &st.Scenes[i]
		}
	}
	return nil
}

// SceneIndex returns the position of the scene with the given ID, or -1.
func (st *Stage) SceneIndex(id string) int {
	for i := range st.Scenes {
		if st.Scenes[i].ID == id {
			return i
		}
	}
	return -1
}

// FindCharacter returns the roster character with the given ID, or nil.
func (st *Stage) FindCharacter(id string) *Character {
	for i := range st.Characters {
		if st.Characters[i].ID == id {
			return &st.Characters[i]
		}
	}
	return nil
}

// CharacterName returns the roster name for a character ID, or a fallback
// label for dangling references.
func (st *Stage) CharacterName(id string) string {
	if c := st.FindCharacter(id); c != nil {
		return c.Name
	}
	return "unknown character"
}

// FirstScene returns the stage's entry scene, or nil when the stage is empty.
func (st *Stage) FirstScene() *Scene {
	if len(st.Scenes) == 0 {
		return nil
	}
	return &st.Scenes[0]
}

// LastScene returns the final scene in stage order, or nil when empty.
func (st *Stage) LastScene() *Scene {
	if len(st.Scenes) == 0 {
		return nil
	}
	return &st.Scenes[len(st.Scenes)-1]
}

// NearestTownBefore searches backward from the scene at index (exclusive)
// for the closest town scene. Returns nil when there is none.
func (st *Stage) NearestTownBefore(index int) *Scene {
	if index > len(st.Scenes) {
		index = len(st.Scenes)
	}
	for i := index - 1; i >= 0; i-- {
		if st.Scenes[i].Type == SceneTown {
			return &st.Scenes[i]
		}
	}
	return nil
}

// Clone returns a deep copy of the stage.
func (st *Stage) Clone() Stage {
	out := *st
	out.Scenes = make([]Scene, len(st.Scenes))
	for i, sc := range st.Scenes {
		out.Scenes[i] = cloneScene(sc)
	}
	out.Characters = make([]Character, len(st.Characters))
	copy(out.Characters, st.Characters)
	return out
}

func cloneScene(sc Scene) Scene {
	out := sc
	if sc.CharacterIDs != nil {
		out.CharacterIDs = append([]string(nil), sc.CharacterIDs...)
	}
	if sc.Choices != nil {
		out.Choices = append([]DialogueChoice(nil), sc.Choices...)
	}
	if sc.Combat != nil {
		combat := *sc.Combat
		combat.EnemyCharacterIDs = append([]string(nil), sc.Combat.EnemyCharacterIDs...)
		out.Combat = &combat
	}
	return out
}
