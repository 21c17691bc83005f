package body

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

type ModuleKind string

const (
	KindMemory       ModuleKind = "memory"
	KindMatching     ModuleKind = "matching"
	KindFlashcards   ModuleKind = "flashcards"
	KindCardQuiz     ModuleKind = "card-quiz"
	KindDragDrop     ModuleKind = "drag-drop"
	KindTappingBoard ModuleKind = "tapping-board"
	KindCover        ModuleKind = "cover"
	KindFindAnswer   ModuleKind = "find-answer"
	KindPoster       ModuleKind = "poster"
	KindVideo        ModuleKind = "video"
	KindEmbed        ModuleKind = "embed"
	KindLegacy       ModuleKind = "legacy"
)

var allKinds = []ModuleKind{
	KindMemory, KindMatching, KindFlashcards, KindCardQuiz,
	KindDragDrop, KindTappingBoard, KindCover, KindFindAnswer,
	KindPoster, KindVideo, KindEmbed, KindLegacy,
}

// KindValid reports whether k names a known activity kind.
func KindValid(k ModuleKind) bool {
	for _, known := range allKinds {
		if known == k {
			return true
		}
	}
	return false
}

var (
	ErrUnknownKind    = errors.New("unknown module kind")
	ErrModeNotChosen  = errors.New("mode not chosen yet")
	ErrModeNotAllowed = errors.New("mode not allowed for this kind")
	ErrModeChosen     = errors.New("mode already chosen")
	ErrIncompatible   = errors.New("kinds are not convertible")
)

// ValidationError publish 前的完整性检查失败：指出步骤和字段
type ValidationError struct {
	Step   Step   `json:"step"`
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("step %d: %s: %s", e.Step, e.Field, e.Reason)
}

// Body 一个活动模块的全部序列化内容。Content 为 nil 时唯一合法操作是
// ChooseMode。
type Body struct {
	Kind    ModuleKind
	Content Content
}

// New returns an empty body of the kind; the mode is not chosen yet.
func New(kind ModuleKind) (*Body, error) {
	if !KindValid(kind) {
		return nil, ErrUnknownKind
	}
	return &Body{Kind: kind}, nil
}

// NewWithMode returns a body with default content installed for the mode.
func NewWithMode(kind ModuleKind, mode Mode) (*Body, error) {
	b, err := New(kind)
	if err != nil {
		return nil, err
	}
	if err := b.ChooseMode(mode); err != nil {
		return nil, err
	}
	return b, nil
}

func newContent(kind ModuleKind, mode Mode) Content {
	bc := newBaseContent(mode)
	switch kind {
	case KindMemory, KindMatching, KindFlashcards, KindCardQuiz:
		return &CardsContent{BaseContent: bc}
	case KindDragDrop:
		return &DragDropContent{BaseContent: bc}
	case KindTappingBoard, KindCover, KindPoster:
		return &CanvasContent{BaseContent: bc}
	case KindFindAnswer:
		return &FindAnswerContent{BaseContent: bc}
	case KindVideo:
		return &VideoContent{BaseContent: bc}
	case KindEmbed:
		return &EmbedContent{BaseContent: bc}
	case KindLegacy:
		return &LegacyContent{BaseContent: bc}
	}
	return nil
}

// RequiresChooseMode is true until ChooseMode installed content.
func (b *Body) RequiresChooseMode() bool {
	return b.Content == nil
}

// ChooseMode installs default content for the mode. Rejected once content
// exists; mode is chosen exactly once at creation.
func (b *Body) ChooseMode(mode Mode) error {
	if b.Content != nil {
		return ErrModeChosen
	}
	modes := availableModes[b.Kind]
	if mode == "" && len(modes) > 0 {
		mode = modes[0]
	}
	if len(modes) > 0 && !ModeAllowed(b.Kind, mode) {
		return ErrModeNotAllowed
	}
	b.Content = newContent(b.Kind, mode)
	return nil
}

// IsComplete reports whether every required field is populated; it gates
// publishing.
func (b *Body) IsComplete() bool {
	return b.Content != nil && b.Content.isComplete()
}

// Validate returns the first completeness failure, or nil.
func (b *Body) Validate() *ValidationError {
	if b.Content == nil {
		return &ValidationError{Step: Step1, Field: "mode", Reason: "mode not chosen"}
	}
	switch c := b.Content.(type) {
	case *CardsContent:
		if len(c.Pairs) < minCardPairs {
			return &ValidationError{Step: Step1, Field: "pairs", Reason: fmt.Sprintf("min %d pairs", minCardPairs)}
		}
		for i, p := range c.Pairs {
			if p.A.isEmpty() || p.B.isEmpty() {
				return &ValidationError{Step: Step1, Field: fmt.Sprintf("pairs[%d]", i), Reason: "both sides required"}
			}
		}
	case *DragDropContent:
		if !c.isComplete() {
			return &ValidationError{Step: Step3, Field: "items", Reason: "at least one interactive item with a target"}
		}
	case *FindAnswerContent:
		if !c.isComplete() {
			return &ValidationError{Step: Step2, Field: "questions", Reason: "each question needs a title and an existing trace"}
		}
	case *VideoContent:
		if !c.isComplete() {
			return &ValidationError{Step: Step1, Field: "video", Reason: "video source required"}
		}
	case *EmbedContent:
		if !c.isComplete() {
			return &ValidationError{Step: Step1, Field: "embed", Reason: "embed url required"}
		}
	case *LegacyContent:
		if !c.isComplete() {
			return &ValidationError{Step: Step1, Field: "gameId", Reason: "legacy game id required"}
		}
	default:
		if !b.Content.isComplete() {
			return &ValidationError{Step: Step1, Field: "design", Reason: "empty design"}
		}
	}
	return nil
}

// EditorState returns the embedded editor state, or nil before ChooseMode.
func (b *Body) EditorState() *EditorState {
	if b.Content == nil {
		return nil
	}
	return &b.Content.base().EditorState
}

// SetEditorStateStep records the current step. Idempotent.
func (b *Body) SetEditorStateStep(step Step) error {
	if b.Content == nil {
		return ErrModeNotChosen
	}
	if !step.Valid(b.Kind) {
		return fmt.Errorf("step %d out of range for %s", step, b.Kind)
	}
	b.Content.base().EditorState.CurrentStep = step
	return nil
}

// InsertEditorStateStepCompleted marks a step completed. Idempotent.
func (b *Body) InsertEditorStateStepCompleted(step Step) error {
	if b.Content == nil {
		return ErrModeNotChosen
	}
	if !step.Valid(b.Kind) {
		return fmt.Errorf("step %d out of range for %s", step, b.Kind)
	}
	b.Content.base().EditorState.InsertCompleted(step)
	return nil
}

// Theme returns the theme choice; bodies without content inherit.
func (b *Body) Theme() ThemeChoice {
	if b.Content == nil {
		return ThemeChoice{Kind: ThemeInherit}
	}
	return b.Content.base().EditorState.Theme
}

func (b *Body) SetTheme(choice ThemeChoice) error {
	if b.Content == nil {
		return ErrModeNotChosen
	}
	b.Content.base().EditorState.Theme = choice
	return nil
}

// Mode returns the chosen mode, or "" before ChooseMode.
func (b *Body) Mode() Mode {
	if b.Content == nil {
		return ""
	}
	return b.Content.base().Mode
}

// PlaySettings returns the runtime settings block, or nil before ChooseMode.
func (b *Body) PlaySettings() *PlaySettings {
	if b.Content == nil {
		return nil
	}
	return &b.Content.base().Play
}

// Instructions returns the module-assist block, or nil before ChooseMode.
func (b *Body) Instructions() *ModuleAssist {
	if b.Content == nil {
		return nil
	}
	return &b.Content.base().Instructions
}

// Preloads enumerates every media URL the body depends on at play time.
func (b *Body) Preloads() []string {
	if b.Content == nil {
		return nil
	}
	return b.Content.preloads()
}

// Clone returns a deep copy via serialization.
func (b *Body) Clone() (*Body, error) {
	raw, err := json.Marshal(b)
	if err != nil {
		return nil, err
	}
	var out Body
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Equal compares two bodies by their serialized form.
func (b *Body) Equal(other *Body) bool {
	if b == nil || other == nil {
		return b == other
	}
	ra, err1 := json.Marshal(b)
	rb, err2 := json.Marshal(other)
	return err1 == nil && err2 == nil && bytes.Equal(ra, rb)
}

type bodyEnvelope struct {
	Kind    ModuleKind      `json:"kind"`
	Content json.RawMessage `json:"content,omitempty"`
}

func (b *Body) MarshalJSON() ([]byte, error) {
	env := bodyEnvelope{Kind: b.Kind}
	if b.Content != nil {
		raw, err := json.Marshal(b.Content)
		if err != nil {
			return nil, err
		}
		env.Content = raw
	}
	return json.Marshal(env)
}

func (b *Body) UnmarshalJSON(data []byte) error {
	var env bodyEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}
	if !KindValid(env.Kind) {
		return fmt.Errorf("%w: %q", ErrUnknownKind, env.Kind)
	}
	b.Kind = env.Kind
	b.Content = nil
	if len(env.Content) == 0 || bytes.Equal(env.Content, []byte("null")) {
		return nil
	}
	content := newContent(env.Kind, "")
	if err := json.Unmarshal(env.Content, content); err != nil {
		return err
	}
	b.Content = content
	return nil
}
