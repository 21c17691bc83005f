package body

type HintPolicy string

const (
	HintNone      HintPolicy = "none"
	HintHighlight HintPolicy = "highlight"
)

type NextPolicy string

const (
	// NextClickContinue waits for an explicit continue tap.
	NextClickContinue NextPolicy = "continue"
	// NextAuto advances as soon as the activity reports completion.
	NextAuto NextPolicy = "auto"
	// NextSelectAll advances once every interactive item was visited.
	NextSelectAll NextPolicy = "select-all"
)

// PlaySettings 运行时行为开关；由各玩法在 Settings 步骤编辑
type PlaySettings struct {
	TimeLimitSeconds *int       `json:"timeLimitSeconds,omitempty"`
	Hint             HintPolicy `json:"hint,omitempty"`
	Next             NextPolicy `json:"next,omitempty"`
	ShowScore        bool       `json:"showScore,omitempty"`
	TrackAttempts    bool       `json:"trackAttempts,omitempty"`
	// NextScore, when Next is "auto", is the score that triggers the ending.
	NextScore *int `json:"nextScore,omitempty"`
}

func DefaultPlaySettings() PlaySettings {
	return PlaySettings{
		Hint: HintHighlight,
		Next: NextClickContinue,
	}
}
