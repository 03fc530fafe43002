package advisor

// Stage is a step of the query pipeline.
type Stage int

const (
	StageIdle Stage = iota
	StageValidating
	StageExtracting
	StageComposing
	StageInvoking
	StageNormalizing
	StageUpdatingMemory
	StageDone
	StageError
)

var stageNames = [...]string{
	StageIdle:           "idle",
	StageValidating:     "validating",
	StageExtracting:     "extracting document",
	StageComposing:      "composing prompt",
	StageInvoking:       "consulting model",
	StageNormalizing:    "formatting answer",
	StageUpdatingMemory: "updating memory",
	StageDone:           "done",
	StageError:          "error",
}

func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return "unknown"
	}
	return stageNames[s]
}

// Terminal reports whether the pipeline has stopped.
func (s Stage) Terminal() bool {
	return s == StageDone || s == StageError
}

// Observer is notified on every stage transition. It is called synchronously
// from the goroutine running the query.
type Observer func(Stage)
