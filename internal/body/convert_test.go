package body

import (
	"errors"
	"testing"
)

func TestCanConvertMatrix(t *testing.T) {
	yes := [][2]ModuleKind{
		{KindMemory, KindMatching},
		{KindMatching, KindCardQuiz},
		{KindFlashcards, KindMemory},
		{KindCover, KindPoster},
		{KindCover, KindTappingBoard},
		{KindPoster, KindFindAnswer},
		{KindTappingBoard, KindFindAnswer},
		{KindVideo, KindVideo},
	}
	no := [][2]ModuleKind{
		{KindMemory, KindPoster},
		{KindPoster, KindCover},
		{KindFindAnswer, KindTappingBoard},
		{KindVideo, KindEmbed},
		{KindLegacy, KindMemory},
	}
	for _, p := range yes {
		if !CanConvert(p[0], p[1]) {
			t.Errorf("CanConvert(%s, %s) = false", p[0], p[1])
		}
	}
	for _, p := range no {
		if CanConvert(p[0], p[1]) {
			t.Errorf("CanConvert(%s, %s) = true", p[0], p[1])
		}
	}
}

func TestConvertCardsKeepsPairs(t *testing.T) {
	b := completeCardsBody(t)
	b.InsertEditorStateStepCompleted(Step1)
	b.SetEditorStateStep(Step3)

	out, err := b.ConvertTo(KindCardQuiz)
	if err != nil {
		t.Fatalf("ConvertTo: %v", err)
	}
	if out.Kind != KindCardQuiz {
		t.Fatalf("Kind = %q", out.Kind)
	}
	pairs := out.Content.(*CardsContent).Pairs
	if len(pairs) != 2 || pairs[0].A.Text != "cat" {
		t.Fatalf("pairs not carried over: %+v", pairs)
	}

	// navigation resets, the source stays put
	if got := out.EditorState().CurrentStep; got != Step1 {
		t.Fatalf("converted CurrentStep = %d", got)
	}
	if len(out.EditorState().CompletedSteps) != 0 {
		t.Fatalf("converted CompletedSteps = %v", out.EditorState().CompletedSteps)
	}
	if got := b.EditorState().CurrentStep; got != Step3 {
		t.Fatalf("source mutated, CurrentStep = %d", got)
	}
}

func TestConvertCanvasToFindAnswer(t *testing.T) {
	b, _ := NewWithMode(KindPoster, ModePoster)
	c := b.Content.(*CanvasContent)
	c.Base.Backgrounds = []Background{{Kind: BackgroundColor, Color: "#fff"}}
	c.Base.Traces = []Trace{{}}

	out, err := b.ConvertTo(KindFindAnswer)
	if err != nil {
		t.Fatalf("ConvertTo: %v", err)
	}
	fa, ok := out.Content.(*FindAnswerContent)
	if !ok {
		t.Fatalf("content type %T", out.Content)
	}
	if len(fa.Base.Traces) != 1 || len(fa.Base.Backgrounds) != 1 {
		t.Fatal("design base not carried over")
	}
	// the poster mode is legal for find-answer and survives
	if fa.Mode != ModePoster {
		t.Fatalf("Mode = %q", fa.Mode)
	}
	// no questions yet, so the converted module is incomplete
	if out.IsComplete() {
		t.Fatal("converted find-answer with no questions reported complete")
	}
}

func TestConvertRemapsIllegalMode(t *testing.T) {
	b, _ := NewWithMode(KindCover, ModeCover)
	b.Content.(*CanvasContent).Base.Stickers = []Sticker{{Kind: StickerText, Text: &TextSticker{Value: "hi"}}}

	out, err := b.ConvertTo(KindTappingBoard)
	if err != nil {
		t.Fatalf("ConvertTo: %v", err)
	}
	if got := out.Mode(); got != ModeTalkingPictures {
		t.Fatalf("Mode = %q, want default %q", got, ModeTalkingPictures)
	}
}

func TestConvertIncompatible(t *testing.T) {
	b := completeCardsBody(t)
	if _, err := b.ConvertTo(KindPoster); !errors.Is(err, ErrIncompatible) {
		t.Fatalf("expected ErrIncompatible, got %v", err)
	}
	if _, err := b.ConvertTo(ModuleKind("nope")); !errors.Is(err, ErrUnknownKind) {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}
}
