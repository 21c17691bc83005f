package body

import (
	"encoding/json"
	"errors"
	"testing"
)

func completeCardsBody(t *testing.T) *Body {
	t.Helper()
	b, err := NewWithMode(KindMemory, ModeWordsImages)
	if err != nil {
		t.Fatalf("NewWithMode: %v", err)
	}
	c := b.Content.(*CardsContent)
	c.Pairs = []CardPair{
		{A: CardSide{Text: "cat"}, B: CardSide{Image: &Image{URL: "/img/cat.png"}}},
		{A: CardSide{Text: "dog"}, B: CardSide{Image: &Image{URL: "/img/dog.png"}}},
	}
	return b
}

func TestNewRejectsUnknownKind(t *testing.T) {
	if _, err := New(ModuleKind("bogus")); !errors.Is(err, ErrUnknownKind) {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}
}

func TestChooseModeOnce(t *testing.T) {
	b, err := New(KindMemory)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !b.RequiresChooseMode() {
		t.Fatal("fresh body should require mode choice")
	}
	if err := b.ChooseMode(ModeRiddles); err != nil {
		t.Fatalf("ChooseMode: %v", err)
	}
	if b.RequiresChooseMode() {
		t.Fatal("mode chosen, should not require choice")
	}
	if b.Mode() != ModeRiddles {
		t.Fatalf("mode = %q, want %q", b.Mode(), ModeRiddles)
	}
	if err := b.ChooseMode(ModeDuplicate); !errors.Is(err, ErrModeChosen) {
		t.Fatalf("second ChooseMode: expected ErrModeChosen, got %v", err)
	}
}

func TestChooseModeDefaultsToFirst(t *testing.T) {
	b, _ := New(KindDragDrop)
	if err := b.ChooseMode(""); err != nil {
		t.Fatalf("ChooseMode(\"\"): %v", err)
	}
	if b.Mode() != ModeSetting {
		t.Fatalf("default mode = %q, want %q", b.Mode(), ModeSetting)
	}
}

func TestChooseModeRejectsForeignMode(t *testing.T) {
	b, _ := New(KindVideo)
	if err := b.ChooseMode(ModeRiddles); !errors.Is(err, ErrModeNotAllowed) {
		t.Fatalf("expected ErrModeNotAllowed, got %v", err)
	}
}

func TestIsCompleteGate(t *testing.T) {
	b, _ := NewWithMode(KindMemory, ModeWordsImages)
	if b.IsComplete() {
		t.Fatal("empty cards body reported complete")
	}
	if v := b.Validate(); v == nil || v.Field != "pairs" {
		t.Fatalf("Validate = %+v, want pairs failure", v)
	}

	b = completeCardsBody(t)
	if !b.IsComplete() {
		t.Fatal("filled cards body reported incomplete")
	}
	if v := b.Validate(); v != nil {
		t.Fatalf("Validate on complete body = %+v", v)
	}
}

func TestValidateHalfPair(t *testing.T) {
	b := completeCardsBody(t)
	c := b.Content.(*CardsContent)
	c.Pairs[1].B = CardSide{}

	v := b.Validate()
	if v == nil {
		t.Fatal("half pair passed validation")
	}
	if v.Field != "pairs[1]" {
		t.Fatalf("Field = %q, want pairs[1]", v.Field)
	}
	if v.Step != Step1 {
		t.Fatalf("Step = %d, want %d", v.Step, Step1)
	}
}

func TestRoundTripPreservesEverything(t *testing.T) {
	b := completeCardsBody(t)
	b.Content.base().Instructions = ModuleAssist{Text: "match the pairs", Audio: &Audio{URL: "/audio/intro.mp3"}}
	limit := 60
	b.Content.base().Play.TimeLimitSeconds = &limit
	if err := b.SetTheme(ThemeChoice{Kind: ThemeOverride, ThemeID: "chalkboard"}); err != nil {
		t.Fatalf("SetTheme: %v", err)
	}
	b.InsertEditorStateStepCompleted(Step1)
	b.SetEditorStateStep(Step2)

	raw, err := json.Marshal(b)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var back Body
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if !b.Equal(&back) {
		t.Fatalf("round trip changed body:\n  in: %s\n out: %s", raw, mustJSON(t, &back))
	}
	if back.Kind != KindMemory {
		t.Fatalf("Kind = %q", back.Kind)
	}
	if got := back.EditorState().CurrentStep; got != Step2 {
		t.Fatalf("CurrentStep = %d, want %d", got, Step2)
	}
	if th := back.Theme(); th.Kind != ThemeOverride || th.ThemeID != "chalkboard" {
		t.Fatalf("Theme = %+v", th)
	}
	if back.PlaySettings().TimeLimitSeconds == nil || *back.PlaySettings().TimeLimitSeconds != 60 {
		t.Fatal("time limit lost in round trip")
	}
}

func TestRoundTripByteStable(t *testing.T) {
	b := completeCardsBody(t)
	b.InsertEditorStateStepCompleted(Step3)
	b.InsertEditorStateStepCompleted(Step1)
	b.InsertEditorStateStepCompleted(Step3)

	first, err := json.Marshal(b)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var back Body
	if err := json.Unmarshal(first, &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	second, err := json.Marshal(&back)
	if err != nil {
		t.Fatalf("Marshal again: %v", err)
	}
	if string(first) != string(second) {
		t.Fatalf("serialization not stable:\n%s\n%s", first, second)
	}
}

func TestRoundTripBeforeModeChoice(t *testing.T) {
	b, _ := New(KindPoster)
	raw, err := json.Marshal(b)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var back Body
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !back.RequiresChooseMode() {
		t.Fatal("nil content should survive the round trip")
	}
	if back.Kind != KindPoster {
		t.Fatalf("Kind = %q", back.Kind)
	}
}

func TestUnmarshalUnknownKind(t *testing.T) {
	var b Body
	err := json.Unmarshal([]byte(`{"kind":"mystery","content":{}}`), &b)
	if !errors.Is(err, ErrUnknownKind) {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	b := completeCardsBody(t)
	clone, err := b.Clone()
	if err != nil {
		t.Fatalf("Clone: %v", err)
	}
	if !b.Equal(clone) {
		t.Fatal("clone differs from original")
	}

	clone.Content.(*CardsContent).Pairs[0].A.Text = "hamster"
	if b.Content.(*CardsContent).Pairs[0].A.Text != "cat" {
		t.Fatal("mutating the clone leaked into the original")
	}
	if b.Equal(clone) {
		t.Fatal("Equal missed a difference")
	}
}

func TestPreloadsCollectAssets(t *testing.T) {
	b := completeCardsBody(t)
	b.Content.base().Instructions.Audio = &Audio{URL: "/audio/intro.mp3"}

	urls := b.Preloads()
	want := map[string]bool{
		"/img/cat.png":     false,
		"/img/dog.png":     false,
		"/audio/intro.mp3": false,
	}
	for _, u := range urls {
		if _, ok := want[u]; ok {
			want[u] = true
		}
	}
	for u, seen := range want {
		if !seen {
			t.Fatalf("preloads missing %s (got %v)", u, urls)
		}
	}
}

func TestVideoCompleteness(t *testing.T) {
	b, _ := NewWithMode(KindVideo, ModeVideo)
	if b.IsComplete() {
		t.Fatal("empty video complete")
	}
	c := b.Content.(*VideoContent)
	c.Video = &VideoSticker{Host: VideoHostYoutube}
	if b.IsComplete() {
		t.Fatal("youtube video without id complete")
	}
	c.Video.YoutubeID = "dQw4w9WgXcQ"
	if !b.IsComplete() {
		t.Fatal("youtube video with id incomplete")
	}
}

func mustJSON(t *testing.T, v interface{}) string {
	t.Helper()
	raw, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(raw)
}
