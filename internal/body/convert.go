package body

// convertible pairs: the source design base must be a strict subset of what
// the target can hold. The cards family shares one content type and converts
// freely; the canvas family converts towards the richer kinds only.
var convertTargets = map[ModuleKind][]ModuleKind{
	KindMemory:       {KindMatching, KindFlashcards, KindCardQuiz},
	KindMatching:     {KindMemory, KindFlashcards, KindCardQuiz},
	KindFlashcards:   {KindMemory, KindMatching, KindCardQuiz},
	KindCardQuiz:     {KindMemory, KindMatching, KindFlashcards},
	KindCover:        {KindPoster, KindTappingBoard},
	KindPoster:       {KindTappingBoard, KindFindAnswer},
	KindTappingBoard: {KindFindAnswer},
}

// CanConvert reports whether ConvertTo would accept the target kind.
func CanConvert(from, to ModuleKind) bool {
	if from == to {
		return true
	}
	for _, t := range convertTargets[from] {
		if t == to {
			return true
		}
	}
	return false
}

// ConvertTo returns a new body of the target kind carrying over the shared
// design base and editor state. The conversion never mutates the receiver;
// incompatible pairs are rejected with ErrIncompatible.
func (b *Body) ConvertTo(target ModuleKind) (*Body, error) {
	if !KindValid(target) {
		return nil, ErrUnknownKind
	}
	if b.Kind == target {
		return b.Clone()
	}
	if !CanConvert(b.Kind, target) {
		return nil, ErrIncompatible
	}
	clone, err := b.Clone()
	if err != nil {
		return nil, err
	}
	if clone.Content == nil {
		return &Body{Kind: target}, nil
	}

	src := clone.Content.base()
	out := &Body{Kind: target}

	switch c := clone.Content.(type) {
	case *CardsContent:
		// same content shape across the cards family
		out.Content = &CardsContent{BaseContent: *src, Pairs: c.Pairs}
	case *CanvasContent:
		switch target {
		case KindFindAnswer:
			out.Content = &FindAnswerContent{BaseContent: *src}
		default:
			out.Content = &CanvasContent{BaseContent: *src}
		}
	default:
		return nil, ErrIncompatible
	}

	// the target workflow may be longer; reset navigation, keep the theme
	state := &out.Content.base().EditorState
	state.CurrentStep = Step1
	state.CompletedSteps = nil

	if mode := out.Content.base().Mode; len(availableModes[target]) > 0 && !ModeAllowed(target, mode) {
		out.Content.base().Mode = availableModes[target][0]
	}
	return out, nil
}
