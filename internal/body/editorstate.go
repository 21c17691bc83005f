package body

import "sort"

type ThemeKind string

const (
	// ThemeInherit uses the enclosing playlist/JIG theme.
	ThemeInherit ThemeKind = "inherit"
	// ThemeOverride pins a specific theme id.
	ThemeOverride ThemeKind = "override"
)

type ThemeChoice struct {
	Kind    ThemeKind `json:"kind"`
	ThemeID string    `json:"themeId,omitempty"`
}

// EditorState 嵌在 Body 内持久化；服务端视为不透明数据
type EditorState struct {
	CurrentStep    Step        `json:"currentStep"`
	CompletedSteps []Step      `json:"completedSteps"`
	Theme          ThemeChoice `json:"theme"`
}

func NewEditorState() EditorState {
	return EditorState{
		CurrentStep: Step1,
		Theme:       ThemeChoice{Kind: ThemeInherit},
	}
}

// InsertCompleted adds the step to the completed set. Idempotent; the
// serialized order stays sorted so repeated round-trips are byte-stable.
func (s *EditorState) InsertCompleted(step Step) {
	for _, c := range s.CompletedSteps {
		if c == step {
			return
		}
	}
	s.CompletedSteps = append(s.CompletedSteps, step)
	sort.Slice(s.CompletedSteps, func(i, j int) bool {
		return s.CompletedSteps[i] < s.CompletedSteps[j]
	})
}

// IsCompleted reports whether the step is in the completed set.
func (s *EditorState) IsCompleted(step Step) bool {
	for _, c := range s.CompletedSteps {
		if c == step {
			return true
		}
	}
	return false
}

// AllCompletedBefore reports whether every step prior to the given one has
// been completed, which is what gates reaching Preview.
func (s *EditorState) AllCompletedBefore(step Step) bool {
	for prior := Step1; prior < step; prior++ {
		if !s.IsCompleted(prior) {
			return false
		}
	}
	return true
}
