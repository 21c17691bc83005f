// Package editor is the generic authoring shell shared by every activity
// kind: a typed step workflow over a body, undo/redo history and the
// five-region surface the UI renders.
package editor

import (
	"jig_platform_backend/internal/body"
)

// Base 玩法相关的行为参数；shell 对每个步骤切换先问 Base
type Base interface {
	Kind() body.ModuleKind
	// AllowedStepChange gates TryChangeStep.
	AllowedStepChange(b *body.Body, from, to body.Step) bool
	// StepReady enables the footer "Continue" control.
	StepReady(b *body.Body, step body.Step) bool
}

// DefaultBase implements the rules shared by most kinds: a step is
// reachable when it was already completed, is the current one, or every
// prior step is completed; Preview additionally requires the body to be
// ready on its own step.
type DefaultBase struct {
	ModuleKind body.ModuleKind
}

func (d DefaultBase) Kind() body.ModuleKind { return d.ModuleKind }

// allowedStepChange is the gate shared by every base. It takes the concrete
// base's StepReady as a parameter: method values on an embedded struct bind
// statically, so each base wires its own override in here.
func allowedStepChange(kind body.ModuleKind, ready func(*body.Body, body.Step) bool, b *body.Body, from, to body.Step) bool {
	if b == nil || b.RequiresChooseMode() {
		return false
	}
	if !to.Valid(kind) || to == from {
		return false
	}
	state := b.EditorState()
	if to < from || state.IsCompleted(to) {
		return true
	}
	// forward: only one step at a time past the completed frontier, and
	// the step being left must be ready
	if !ready(b, from) {
		return false
	}
	if to == body.PreviewStep(kind) {
		// Preview is reachable once every prior step is completed or is
		// the one being left right now
		for prior := body.Step1; prior < to; prior++ {
			if prior != from && !state.IsCompleted(prior) {
				return false
			}
		}
		return true
	}
	return to == from+1
}

func (d DefaultBase) AllowedStepChange(b *body.Body, from, to body.Step) bool {
	return allowedStepChange(d.ModuleKind, d.StepReady, b, from, to)
}

func (d DefaultBase) StepReady(b *body.Body, step body.Step) bool {
	if b == nil || b.RequiresChooseMode() {
		return false
	}
	// the first step carries the kind-specific required content; later
	// steps are design/settings and are always skippable
	if step == body.Step1 {
		return b.Validate() == nil || b.Validate().Step != body.Step1
	}
	return true
}

// CardsBase memory/matching/flashcards/card-quiz：第一步要求足够的卡对
type CardsBase struct {
	DefaultBase
}

func NewCardsBase(kind body.ModuleKind) CardsBase {
	return CardsBase{DefaultBase{ModuleKind: kind}}
}

func (cb CardsBase) StepReady(b *body.Body, step body.Step) bool {
	if step != body.Step1 {
		return cb.DefaultBase.StepReady(b, step)
	}
	// the cards content is the whole of step 1; ready means complete
	return b != nil && b.IsComplete()
}

func (cb CardsBase) AllowedStepChange(b *body.Body, from, to body.Step) bool {
	return allowedStepChange(cb.ModuleKind, cb.StepReady, b, from, to)
}

// CanvasBase cover/poster/tapping-board：设计步骤要求画布非空
type CanvasBase struct {
	DefaultBase
}

func NewCanvasBase(kind body.ModuleKind) CanvasBase {
	return CanvasBase{DefaultBase{ModuleKind: kind}}
}

func (cb CanvasBase) StepReady(b *body.Body, step body.Step) bool {
	if step != body.Step1 {
		return cb.DefaultBase.StepReady(b, step)
	}
	return b != nil && b.IsComplete()
}

func (cb CanvasBase) AllowedStepChange(b *body.Body, from, to body.Step) bool {
	return allowedStepChange(cb.ModuleKind, cb.StepReady, b, from, to)
}

// BaseFor picks the base implementation for a kind.
func BaseFor(kind body.ModuleKind) Base {
	switch kind {
	case body.KindMemory, body.KindMatching, body.KindFlashcards, body.KindCardQuiz:
		return NewCardsBase(kind)
	case body.KindCover, body.KindPoster, body.KindTappingBoard:
		return NewCanvasBase(kind)
	default:
		return DefaultBase{ModuleKind: kind}
	}
}
