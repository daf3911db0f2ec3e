package samurai

// Step is the state of a single puzzle download.
type Step int

const (
	StepStarting Step = iota
	StepDownloading
	StepSaving
	StepComplete
	StepSkipped
	StepFailed
	StepCancelled
)

var stepNames = map[Step]string{
	StepStarting:    "Starting...",
	StepDownloading: "Downloading...",
	StepSaving:      "Saving...",
	StepComplete:    "Complete",
	StepSkipped:     "Skipped (exists)",
	StepFailed:      "Error",
	StepCancelled:   "Cancelled",
}

func (s Step) String() string {
	if name, ok := stepNames[s]; ok {
		return name
	}
	return "Unknown"
}

// Done reports whether the step ends the work on a puzzle.
func (s Step) Done() bool {
	return s >= StepComplete
}

// Progress is a single progress update.
type Progress struct {
	Current int // 1-based position of the puzzle in the batch
	Total   int
	Name    string
	Step    Step

	Err    error   // set when Step is StepFailed
	Result *Result // set when Step is StepComplete
}

// ProgressFunc receives progress updates. Calls are serialized, so it
// doesn't need to be safe for concurrent use.
type ProgressFunc func(Progress)
