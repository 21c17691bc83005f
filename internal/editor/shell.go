package editor

import (
	"errors"

	"jig_platform_backend/internal/body"
	"jig_platform_backend/internal/bridge"
	"jig_platform_backend/internal/history"
	"jig_platform_backend/pkg/logger"

	"go.uber.org/zap"
)

var (
	ErrStepRejected = errors.New("step change rejected")
	ErrNoBody       = errors.New("no body loaded")
)

// Tab 侧栏子面板选择；shell 状态，不持久化
type Tab string

const (
	TabImage Tab = "image"
	TabColor Tab = "color"
	TabText  Tab = "text"
	TabAudio Tab = "audio"
	TabVideo Tab = "video"
	TabEmbed Tab = "embed"
)

// Shell 通用编辑器控制器：持有当前 Body、历史句柄和区域实现
type Shell struct {
	base      Base
	b         *body.Body
	hist      *history.Engine
	messenger *bridge.Messenger

	tabs map[body.Step]Tab

	// OnChanged fires exactly once per user-visible mutation; the main
	// region re-renders from it within the same frame.
	OnChanged func(*body.Body)
}

// Options carries the collaborators the shell does not own.
type Options struct {
	History   *history.Engine
	Messenger *bridge.Messenger
	OnChanged func(*body.Body)
}

func NewShell(base Base, b *body.Body, opts Options) *Shell {
	return &Shell{
		base:      base,
		b:         b,
		hist:      opts.History,
		messenger: opts.Messenger,
		tabs:      make(map[body.Step]Tab),
		OnChanged: opts.OnChanged,
	}
}

// Body returns the body the editor mutates; the main region observes it.
func (s *Shell) Body() *body.Body { return s.b }

// History exposes the undo/redo handle for the header controller.
func (s *Shell) History() *history.Engine { return s.hist }

// CurrentStep returns the persisted current step.
func (s *Shell) CurrentStep() body.Step {
	if s.b == nil || s.b.RequiresChooseMode() {
		return body.Step1
	}
	return s.b.EditorState().CurrentStep
}

// StepReady reports whether the footer "Continue" is enabled.
func (s *Shell) StepReady() bool {
	return s.base.StepReady(s.b, s.CurrentStep())
}

// TryChangeStep moves the workflow. The update of the current step, the
// completed-steps insertion and the history push happen as one logical
// mutation with a single save-debounce tick; a rejected change mutates
// nothing.
func (s *Shell) TryChangeStep(to body.Step) error {
	if s.b == nil {
		return ErrNoBody
	}
	from := s.CurrentStep()
	if !s.base.AllowedStepChange(s.b, from, to) {
		return ErrStepRejected
	}
	preview := body.PreviewStep(s.base.Kind())
	if from != preview {
		if err := s.b.InsertEditorStateStepCompleted(from); err != nil {
			return err
		}
	}
	if err := s.b.SetEditorStateStep(to); err != nil {
		return err
	}
	s.hist.Push(s.b)
	s.changed()
	return nil
}

// TryNextStep advances one step; no-op at the terminal step.
func (s *Shell) TryNextStep() error {
	next := s.CurrentStep().Next(s.base.Kind())
	if next == 0 {
		return nil
	}
	return s.TryChangeStep(next)
}

// ForceStep bypasses AllowedStepChange. Debug entry point only.
func (s *Shell) ForceStep(step body.Step) error {
	if s.b == nil {
		return ErrNoBody
	}
	if err := s.b.SetEditorStateStep(step); err != nil {
		return err
	}
	logger.Log.Debug("editor: forced step", zap.Int("step", int(step)))
	s.changed()
	return nil
}

// Mutate applies an edit to the body and records it as one history entry.
func (s *Shell) Mutate(edit func(*body.Body)) error {
	if s.b == nil {
		return ErrNoBody
	}
	edit(s.b)
	s.hist.Push(s.b)
	s.changed()
	return nil
}

// MutateContinuous applies an edit that belongs to the same logical action
// as the previous one (dragging): the head snapshot is replaced instead of
// pushed.
func (s *Shell) MutateContinuous(edit func(*body.Body)) error {
	if s.b == nil {
		return ErrNoBody
	}
	edit(s.b)
	s.hist.SaveCurrent(s.b)
	s.changed()
	return nil
}

// Undo steps the history back and installs the prior snapshot.
func (s *Shell) Undo() bool {
	prev := s.hist.Undo()
	if prev == nil {
		return false
	}
	s.b = prev
	s.changed()
	return true
}

// Redo steps the history forward.
func (s *Shell) Redo() bool {
	next := s.hist.Redo()
	if next == nil {
		return false
	}
	s.b = next
	s.changed()
	return true
}

// SelectTab records the sidebar tab for the current step. Not persisted.
func (s *Shell) SelectTab(tab Tab) {
	s.tabs[s.CurrentStep()] = tab
}

// SelectedTab returns the sidebar tab for the current step.
func (s *Shell) SelectedTab() Tab {
	if tab, ok := s.tabs[s.CurrentStep()]; ok {
		return tab
	}
	return TabImage
}

// NavigateToPublish asks the host to publish; the shell itself never
// performs publication.
func (s *Shell) NavigateToPublish() error {
	return s.messenger.Publish()
}

// RequestPreview asks the host to open the player preview.
func (s *Shell) RequestPreview() error {
	return s.messenger.RequestPreview()
}

// Close flushes any pending save; a returned error means the host must
// surface a dirty-state warning before letting the editor go.
func (s *Shell) Close() error {
	return s.hist.Close()
}

func (s *Shell) changed() {
	if s.OnChanged != nil {
		s.OnChanged(s.b)
	}
}
