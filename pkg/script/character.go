package script

// CharacterType classifies a character within a stage's roster.
type CharacterType string

const (
	CharacterNPC            CharacterType = "npc"
	CharacterPlayer         CharacterType = "player_character"
	CharacterRegularMonster CharacterType = "regular_monster"
	CharacterBossMonster    CharacterType = "boss_monster"
)

// Valid reports whether t is one of the known character types.
func (t CharacterType) Valid() bool {
	switch t {
	case CharacterNPC, CharacterPlayer, CharacterRegularMonster, CharacterBossMonster:
		return true
	}
	return false
}

// IsMonster reports whether t is a combat-capable enemy type.
func (t CharacterType) IsMonster() bool {
	return t == CharacterRegularMonster || t == CharacterBossMonster
}

// Character is an NPC or monster scoped to a single stage. Characters are
// never shared across stages; deleting a stage removes its roster with it.
type Character struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Type         CharacterType `json:"type"`
	Description  string        `json:"description"`
	DialogueSeed string        `json:"dialogueSeed,omitempty"` // short phrase or topic, NPCs only
}
