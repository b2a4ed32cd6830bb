// Package player walks a committed project's scene graph one action at a
// time, simulating play for the script preview. All mutation happens through
// a single synchronous action handler; navigation failures surface as a
// visible error state instead of ending the session.
package player

import (
	"fmt"

	"github.com/sigco3111/rpg-script-editor/pkg/script"
)

// Navigation tokens recognized while a combat-repeat offer is pending.
// Any input other than ActionRetryCombat resolves as a proceed.
const (
	ActionRetryCombat   = "RETRY_COMBAT"
	ActionProceedCombat = "PROCEED_FROM_COMBAT"
)

// Town service kinds.
const (
	TownServiceShop = "shop"
	TownServiceInn  = "inn"
)

const (
	shopMessage = "The shop is still being stocked. Come back another time."
	innMessage  = "You take a comfortable rest at the inn. (Recovery effects are not simulated.)"
)

// CombatRepeatOffer is the transient interjection shown after winning a
// regular combat, letting the tester replay it before moving on.
type CombatRepeatOffer struct {
	Scene               *script.Scene
	OriginalNextSceneID string
}

// Player is the script player state machine for one open play session.
type Player struct {
	project *script.Project
	stage   *script.Stage
	scene   *script.Scene
	repeat  *CombatRepeatOffer
	errMsg  string
	townMsg string
}

// New enters the given stage of a committed project. A missing stage or an
// empty scene list puts the player into an error state rather than failing.
func New(project *script.Project, stageID string) *Player {
	p := &Player{project: project}

	stage := project.FindStage(stageID)
	if stage == nil {
		p.errMsg = fmt.Sprintf("stage not found: %s", stageID)
		return p
	}
	p.stage = stage
	if first := stage.FirstScene(); first != nil {
		p.scene = first
	} else {
		p.errMsg = "this stage has no scenes"
	}
	return p
}

// Stage returns the stage currently being played, nil if entry failed.
func (p *Player) Stage() *script.Stage { return p.stage }

// Scene returns the currently displayed scene, nil in error and terminal
// states.
func (p *Player) Scene() *script.Scene { return p.scene }

// RepeatOffer returns the pending combat-repeat offer, if any.
func (p *Player) RepeatOffer() *CombatRepeatOffer { return p.repeat }

// Err returns the visible error message, empty when the session is healthy.
func (p *Player) Err() string { return p.errMsg }

// TownMessage returns the last town service message, if any.
func (p *Player) TownMessage() string { return p.townMsg }

// Ended reports whether the playable path has truly ended: no current
// scene, no pending offer and no error to show.
func (p *Player) Ended() bool {
	return p.scene == nil && p.repeat == nil && p.errMsg == ""
}

// Next performs the generic advance: linear progression for non-choice
// scenes, the combat-repeat offer for regular combat, end-of-path
// resolution when there is nowhere to go.
func (p *Player) Next() {
	p.Navigate(nil)
}

// Choose advances to an explicit target scene ID, as picked from a choice
// option. An empty target is a choice that leads nowhere and resolves as
// end of path.
func (p *Player) Choose(targetSceneID string) {
	p.Navigate(&targetSceneID)
}

// Retry re-enters the combat scene that offered a repeat.
func (p *Player) Retry() {
	t := ActionRetryCombat
	p.Navigate(&t)
}

// Proceed resolves a pending combat-repeat offer by continuing past the
// combat scene.
func (p *Player) Proceed() {
	t := ActionProceedCombat
	p.Navigate(&t)
}

// Navigate is the single transition handler. A nil target is the generic
// advance; a non-nil target is an explicit destination (or a repeat-offer
// token). Distinguishing the generic advance on a combat scene from an
// explicit jump relies on comparing the target to the scene's own next
// link, so callers should prefer Next over passing that ID explicitly.
func (p *Player) Navigate(target *string) {
	p.townMsg = ""
	p.errMsg = ""

	// Combat-repeat resolution phase: retry re-enters the combat, every
	// other input proceeds.
	if p.repeat != nil {
		offer := p.repeat
		p.repeat = nil

		if target != nil && *target == ActionRetryCombat {
			p.scene = offer.Scene
			return
		}
		if offer.OriginalNextSceneID != "" {
			if next := p.findScene(offer.OriginalNextSceneID); next != nil {
				p.scene = next
			} else {
				p.scene = nil
				p.errMsg = brokenLinkMessage(offer.OriginalNextSceneID)
			}
		} else {
			p.endOfPath(offer.Scene)
		}
		return
	}

	// A generic advance on a won regular combat offers a repeat first,
	// unless this is the very last scene of the whole project.
	if p.scene != nil && p.scene.Type == script.SceneRegularCombat &&
		!p.isLastSceneOfProject(p.scene) &&
		(target == nil || *target == p.scene.NextSceneID) {
		p.repeat = &CombatRepeatOffer{
			Scene:               p.scene,
			OriginalNextSceneID: p.scene.NextSceneID,
		}
		return
	}

	var nextID string
	switch {
	case target != nil:
		nextID = *target
	case p.scene != nil && p.scene.Type != script.SceneChoice:
		nextID = p.scene.NextSceneID
	}

	if nextID == "" {
		p.endOfPath(p.scene)
		return
	}

	if next := p.findScene(nextID); next != nil {
		p.scene = next
	} else {
		p.scene = nil
		p.errMsg = brokenLinkMessage(nextID)
	}
}

// Defeat returns the player to the nearest town scene before the current
// one, or to the stage's first scene when there is no town. It never leaves
// the current stage and never ends the path.
func (p *Player) Defeat() {
	if p.stage == nil || p.scene == nil {
		p.errMsg = "there is no current scene to resolve a defeat for"
		return
	}

	p.repeat = nil
	p.townMsg = ""
	p.errMsg = ""

	idx := p.stage.SceneIndex(p.scene.ID)
	if idx == -1 {
		p.errMsg = "current scene is not part of the stage"
		p.scene = nil
		return
	}

	if town := p.stage.NearestTownBefore(idx); town != nil {
		p.scene = town
		return
	}
	if first := p.stage.FirstScene(); first != nil {
		p.scene = first
		return
	}
	p.errMsg = "there is no scene to return to in this stage"
	p.scene = nil
}

// TownService handles a purely cosmetic town action. It never changes the
// current scene.
func (p *Player) TownService(kind string) {
	switch kind {
	case TownServiceShop:
		p.townMsg = shopMessage
	case TownServiceInn:
		p.townMsg = innMessage
	}
}

// endOfPath resolves a scene with no onward link. A stage-final boss combat
// chains into the next stage; everything else is the true end of the
// playable path.
func (p *Player) endOfPath(ended *script.Scene) {
	p.townMsg = ""
	p.repeat = nil

	if ended != nil && ended.Type == script.SceneBossCombat && p.stage != nil {
		if last := p.stage.LastScene(); last != nil && last.ID == ended.ID {
			idx := p.project.StageIndex(p.stage.ID)
			if idx != -1 && idx < len(p.project.Stages)-1 {
				next := &p.project.Stages[idx+1]
				p.stage = next
				if first := next.FirstScene(); first != nil {
					p.scene = first
					p.errMsg = ""
				} else {
					p.scene = nil
					p.errMsg = fmt.Sprintf("next stage %q has no scenes", next.Title)
				}
				return
			}
		}
	}
	p.scene = nil
}

func (p *Player) findScene(id string) *script.Scene {
	if p.stage == nil {
		return nil
	}
	return p.stage.FindScene(id)
}

// isLastSceneOfProject reports whether the scene is the final scene of the
// final stage.
func (p *Player) isLastSceneOfProject(sc *script.Scene) bool {
	if sc == nil || p.stage == nil {
		return false
	}
	idx := p.project.StageIndex(p.stage.ID)
	if idx == -1 || idx != len(p.project.Stages)-1 {
		return false
	}
	last := p.stage.LastScene()
	return last != nil && last.ID == sc.ID
}

func brokenLinkMessage(id string) string {
	return fmt.Sprintf("next scene not found (id: %s); the path may be broken", id)
}
