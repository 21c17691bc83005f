package body

import (
	"reflect"
	"testing"
)

func TestInsertCompletedIdempotentAndSorted(t *testing.T) {
	s := NewEditorState()
	s.InsertCompleted(Step3)
	s.InsertCompleted(Step1)
	s.InsertCompleted(Step3)
	s.InsertCompleted(Step2)

	want := []Step{Step1, Step2, Step3}
	if !reflect.DeepEqual(s.CompletedSteps, want) {
		t.Fatalf("CompletedSteps = %v, want %v", s.CompletedSteps, want)
	}
}

func TestAllCompletedBefore(t *testing.T) {
	s := NewEditorState()
	if !s.AllCompletedBefore(Step1) {
		t.Fatal("nothing precedes Step1")
	}
	if s.AllCompletedBefore(Step3) {
		t.Fatal("Step3 reachable with nothing completed")
	}
	s.InsertCompleted(Step1)
	s.InsertCompleted(Step2)
	if !s.AllCompletedBefore(Step3) {
		t.Fatal("Step3 blocked with 1 and 2 completed")
	}
	if s.AllCompletedBefore(Step5) {
		t.Fatal("Step5 reachable without 3 and 4")
	}
}

func TestStepWorkflow(t *testing.T) {
	if StepCount(KindDragDrop) != 5 {
		t.Fatalf("drag-drop step count = %d", StepCount(KindDragDrop))
	}
	if PreviewStep(KindCover) != Step3 {
		t.Fatalf("cover preview = %d", PreviewStep(KindCover))
	}
	if got := Step2.Next(KindEmbed); got != Step3 {
		t.Fatalf("embed Step2.Next = %d", got)
	}
	if got := Step3.Next(KindEmbed); got != 0 {
		t.Fatalf("terminal Next = %d, want 0", got)
	}
	if Step4.Valid(KindEmbed) {
		t.Fatal("Step4 valid for a 3 step workflow")
	}
	if got := Step1.Label(KindPoster); got != "Design" {
		t.Fatalf("poster Step1 label = %q", got)
	}
}
