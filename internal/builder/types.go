package builder

import "time"

// Stage names a phase of realizing one derivation.
type Stage string

const (
	StagePrepare  Stage = "prepare"
	StageRun      Stage = "run"
	StageRegister Stage = "register"
)

// Status captures progress within a Stage.
type Status string

const (
	StatusQueued  Status = "queued"
	StatusWorking Status = "working"
	StatusDone    Status = "done"
	StatusError   Status = "error"
)

// Event reports progress for one derivation's build.
type Event struct {
	Derivation string
	Stage      Stage
	Status     Status
	Err        error
	Elapsed    time.Duration
}

// ProgressSink consumes build events, the same role internal/ui's
// progress model plays for the compiler pipeline's own Event stream.
type ProgressSink interface {
	OnEvent(Event)
}

type nopSink struct{}

func (nopSink) OnEvent(Event) {}
