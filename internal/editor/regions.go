package editor

import (
	"jig_platform_backend/internal/body"
)

// The five-region surface. Regions are pure view producers over the shell;
// they never mutate the body themselves.

type StepTab struct {
	Step      body.Step `json:"step"`
	Label     string    `json:"label"`
	Active    bool      `json:"active"`
	Completed bool      `json:"completed"`
	Reachable bool      `json:"reachable"`
}

type HeaderView struct {
	Undoable    bool      `json:"undoable"`
	Redoable    bool      `json:"redoable"`
	Steps       []StepTab `json:"steps"`
	PreviewMode bool      `json:"previewMode"`
	// post-preview actions replace the controller strip in preview mode
	Actions []string `json:"actions,omitempty"`
}

type SidebarView struct {
	Step   body.Step `json:"step"`
	Label  string    `json:"label"`
	Tab    Tab       `json:"tab"`
	Tabs   []Tab     `json:"tabs"`
	Locked bool      `json:"locked"`
}

type FooterView struct {
	ContinueEnabled bool `json:"continueEnabled"`
	TerminalStep    bool `json:"terminalStep"`
}

type OverlayView struct {
	Popover string `json:"popover,omitempty"`
}

type Header interface {
	RenderHeader(s *Shell) HeaderView
}

type Sidebar interface {
	RenderSidebar(s *Shell) SidebarView
}

// Main renders the authored artifact live from the same body the shell
// mutates; one change notification per frame keeps it in sync.
type Main interface {
	RenderMain(s *Shell) interface{}
}

type Footer interface {
	RenderFooter(s *Shell) FooterView
}

type Overlay interface {
	RenderOverlay(s *Shell) OverlayView
}

// DefaultHeader 撤销/重做/预览按钮 + 步骤导航
type DefaultHeader struct{}

func (DefaultHeader) RenderHeader(s *Shell) HeaderView {
	kind := s.base.Kind()
	current := s.CurrentStep()
	preview := body.PreviewStep(kind)

	view := HeaderView{
		Undoable:    s.hist.Undoable(),
		Redoable:    s.hist.Redoable(),
		PreviewMode: current == preview,
	}
	if view.PreviewMode {
		view.Actions = []string{"publish", "back-to-edit"}
		return view
	}
	state := s.b.EditorState()
	for step := body.Step1; step.Valid(kind); step++ {
		view.Steps = append(view.Steps, StepTab{
			Step:      step,
			Label:     step.Label(kind),
			Active:    step == current,
			Completed: state != nil && state.IsCompleted(step),
			Reachable: s.base.AllowedStepChange(s.b, current, step),
		})
	}
	return view
}

// stepTabs lists the sub-panels offered per step; tab selection itself is
// shell state.
var stepTabs = map[string][]Tab{
	"Design":      {TabImage, TabColor, TabText, TabAudio, TabVideo, TabEmbed},
	"Content":     {TabText, TabImage, TabAudio},
	"Interaction": {TabAudio, TabText},
	"Talk":        {TabAudio, TabText},
	"Questions":   {TabText, TabAudio},
	"Video":       {TabVideo},
	"Embed":       {TabEmbed},
	"Settings":    nil,
	"Preview":     nil,
}

type DefaultSidebar struct{}

func (DefaultSidebar) RenderSidebar(s *Shell) SidebarView {
	kind := s.base.Kind()
	step := s.CurrentStep()
	label := step.Label(kind)
	return SidebarView{
		Step:   step,
		Label:  label,
		Tab:    s.SelectedTab(),
		Tabs:   stepTabs[label],
		Locked: s.b == nil || s.b.RequiresChooseMode(),
	}
}

type DefaultFooter struct{}

func (DefaultFooter) RenderFooter(s *Shell) FooterView {
	kind := s.base.Kind()
	return FooterView{
		ContinueEnabled: s.StepReady(),
		TerminalStep:    s.CurrentStep() == body.PreviewStep(kind),
	}
}

type DefaultOverlay struct{}

func (DefaultOverlay) RenderOverlay(s *Shell) OverlayView {
	if s.b != nil && s.b.RequiresChooseMode() {
		return OverlayView{Popover: "choose-mode"}
	}
	return OverlayView{}
}
