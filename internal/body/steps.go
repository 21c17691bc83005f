package body

// Step 编辑器工作流中的一个位置；Preview 永远是最后一步
type Step int

const (
	Step1 Step = 1
	Step2 Step = 2
	Step3 Step = 3
	Step4 Step = 4
	Step5 Step = 5
)

// stepCount is the number of steps in each kind's editor workflow,
// Preview included.
var stepCount = map[ModuleKind]int{
	KindMemory:       4,
	KindMatching:     4,
	KindFlashcards:   4,
	KindCardQuiz:     4,
	KindDragDrop:     5,
	KindTappingBoard: 4,
	KindCover:        3,
	KindFindAnswer:   5,
	KindPoster:       4,
	KindVideo:        4,
	KindEmbed:        3,
	KindLegacy:       2,
}

var stepLabels = map[ModuleKind][]string{
	KindMemory:       {"Content", "Design", "Settings", "Preview"},
	KindMatching:     {"Content", "Design", "Settings", "Preview"},
	KindFlashcards:   {"Content", "Design", "Settings", "Preview"},
	KindCardQuiz:     {"Content", "Design", "Settings", "Preview"},
	KindDragDrop:     {"Design", "Content", "Interaction", "Settings", "Preview"},
	KindTappingBoard: {"Design", "Interaction", "Settings", "Preview"},
	KindCover:        {"Design", "Settings", "Preview"},
	KindFindAnswer:   {"Design", "Questions", "Interaction", "Settings", "Preview"},
	KindPoster:       {"Design", "Talk", "Settings", "Preview"},
	KindVideo:        {"Video", "Design", "Settings", "Preview"},
	KindEmbed:        {"Embed", "Settings", "Preview"},
	KindLegacy:       {"Content", "Preview"},
}

// StepCount returns the number of editor steps for the kind.
func StepCount(kind ModuleKind) int {
	if n, ok := stepCount[kind]; ok {
		return n
	}
	return 2
}

// PreviewStep is the terminal step for the kind.
func PreviewStep(kind ModuleKind) Step {
	return Step(StepCount(kind))
}

// Label returns the sidebar label of the step for the kind, or "" if the
// step is out of range.
func (s Step) Label(kind ModuleKind) string {
	labels := stepLabels[kind]
	if s < 1 || int(s) > len(labels) {
		return ""
	}
	return labels[s-1]
}

// Next returns the following step, or 0 at the terminal step.
func (s Step) Next(kind ModuleKind) Step {
	if int(s) >= StepCount(kind) {
		return 0
	}
	return s + 1
}

// Valid reports whether the step exists in the kind's workflow.
func (s Step) Valid(kind ModuleKind) bool {
	return s >= 1 && int(s) <= StepCount(kind)
}
