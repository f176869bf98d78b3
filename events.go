package mixit

import "time"

// EventType identifies the kind of a job event.
type EventType string

const (
	EventTypeLine     EventType = "line"
	EventTypeProgress EventType = "progress"
	EventTypeWarning  EventType = "warning"
	EventTypeDone     EventType = "done"
)

// Event is emitted while a job runs.
type Event interface {
	Type() EventType
	Timestamp() time.Time
}

// EventHandler receives events from Mix. Returning an error cancels the job.
type EventHandler func(Event) error

// BaseEvent carries the fields common to every event.
type BaseEvent struct {
	EventType EventType
	Time      time.Time
}

func (e BaseEvent) Type() EventType      { return e.EventType }
func (e BaseEvent) Timestamp() time.Time { return e.Time }

func newBase(t EventType) BaseEvent {
	return BaseEvent{EventType: t, Time: time.Now()}
}

// LineEvent carries one raw ffmpeg stderr line.
type LineEvent struct {
	BaseEvent
	Line string
}

// ProgressEvent reports the completion fraction. Fractions never decrease
// within one job.
type ProgressEvent struct {
	BaseEvent
	Fraction    float64
	ElapsedSecs float64
}

// Percent returns the fraction scaled to 0-100.
func (e ProgressEvent) Percent() float64 {
	return e.Fraction * 100
}

// WarningEvent reports a non-fatal condition, such as a container
// substitution or a missing audio pool.
type WarningEvent struct {
	BaseEvent
	Message string
}

// DoneEvent is the last event of every job. Err is nil on success.
type DoneEvent struct {
	BaseEvent
	OutputPath   string
	Substitution string
	Blend        Blend
	Elapsed      time.Duration
	Err          error
}
