package editor

import (
	"testing"

	"jig_platform_backend/internal/body"
)

func TestHeaderStepNavigation(t *testing.T) {
	s, _ := newTestShell(t, memoryBody(t, 3))
	view := DefaultHeader{}.RenderHeader(s)

	if view.PreviewMode {
		t.Fatal("preview mode on step 1")
	}
	if view.Undoable || view.Redoable {
		t.Fatal("history flags set with no edits")
	}
	if len(view.Steps) != body.StepCount(body.KindMemory) {
		t.Fatalf("steps = %d", len(view.Steps))
	}
	if !view.Steps[0].Active || view.Steps[0].Label != "Content" {
		t.Fatalf("step 1 tab = %+v", view.Steps[0])
	}
	// one step past the frontier is reachable, further is not
	if !view.Steps[1].Reachable {
		t.Fatal("step 2 unreachable from a ready step 1")
	}
	if view.Steps[2].Reachable {
		t.Fatal("step 3 reachable past the frontier")
	}
}

func TestHeaderPreviewMode(t *testing.T) {
	s, _ := newTestShell(t, memoryBody(t, 3))
	preview := body.PreviewStep(body.KindMemory)
	for s.CurrentStep() != preview {
		if err := s.TryNextStep(); err != nil {
			t.Fatalf("TryNextStep: %v", err)
		}
	}

	view := DefaultHeader{}.RenderHeader(s)
	if !view.PreviewMode {
		t.Fatal("preview mode not detected")
	}
	if len(view.Actions) == 0 || view.Actions[0] != "publish" {
		t.Fatalf("actions = %v", view.Actions)
	}
	if len(view.Steps) != 0 {
		t.Fatal("step tabs rendered in preview mode")
	}
}

func TestSidebarTabsFollowStep(t *testing.T) {
	s, _ := newTestShell(t, memoryBody(t, 3))
	view := DefaultSidebar{}.RenderSidebar(s)

	if view.Label != "Content" || view.Tab != TabImage {
		t.Fatalf("sidebar = %+v", view)
	}
	if len(view.Tabs) == 0 || view.Tabs[0] != TabText {
		t.Fatalf("content tabs = %v", view.Tabs)
	}
	if view.Locked {
		t.Fatal("sidebar locked with a mode chosen")
	}

	if err := s.TryChangeStep(body.Step2); err != nil {
		t.Fatalf("TryChangeStep: %v", err)
	}
	view = DefaultSidebar{}.RenderSidebar(s)
	if view.Label != "Design" || len(view.Tabs) != 6 {
		t.Fatalf("design sidebar = %+v", view)
	}
}

func TestFooterContinueGate(t *testing.T) {
	ready, _ := newTestShell(t, memoryBody(t, 3))
	if view := (DefaultFooter{}).RenderFooter(ready); !view.ContinueEnabled || view.TerminalStep {
		t.Fatalf("footer = %+v", view)
	}

	blocked, _ := newTestShell(t, memoryBody(t, 0))
	if view := (DefaultFooter{}).RenderFooter(blocked); view.ContinueEnabled {
		t.Fatal("continue enabled on an incomplete content step")
	}
}

func TestOverlayDemandsModeChoice(t *testing.T) {
	b, err := body.New(body.KindMemory)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	s, _ := newTestShell(t, b)
	if view := (DefaultOverlay{}).RenderOverlay(s); view.Popover != "choose-mode" {
		t.Fatalf("overlay = %+v", view)
	}

	chosen, _ := newTestShell(t, memoryBody(t, 1))
	if view := (DefaultOverlay{}).RenderOverlay(chosen); view.Popover != "" {
		t.Fatalf("overlay = %+v", view)
	}
}
