package jobscheduler

import "time"

type RunStatus string

const (
	StatusRunning   RunStatus = "running"
	StatusCompleted RunStatus = "completed"
	StatusFailed    RunStatus = "failed"
)

// Trigger names what started a refresh run.
type Trigger string

const (
	TriggerStartup  Trigger = "startup"
	TriggerSchedule Trigger = "schedule"
)

// RunEvent is the latest known state of one board refresh run.
type RunEvent struct {
	RunID        string
	JobName      string
	Trigger      Trigger
	Status       RunStatus
	Leagues      []string
	Snapshots    int
	Failures     int
	ErrorMessage string
	StartedAt    time.Time
	FinishedAt   time.Time
	TraceID      string
	SpanID       string
}

func (e RunEvent) Duration() time.Duration {
	if e.FinishedAt.IsZero() {
		return 0
	}
	return e.FinishedAt.Sub(e.StartedAt)
}
