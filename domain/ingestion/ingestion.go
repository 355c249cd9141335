// Package ingestion provides value types for triggering ingestion pipelines
// and tracking their runs.
package ingestion

import (
	"errors"
	"time"
)

// State is the state of a pipeline run.
type State string

const (
	StateQueued         State = "queued"
	StateRunning        State = "running"
	StateSuccess        State = "success"
	StateFailed         State = "failed"
	StatePartialSuccess State = "partialSuccess"
)

// Terminal reports whether the run has finished.
func (s State) Terminal() bool {
	switch s {
	case StateSuccess, StateFailed, StatePartialSuccess:
		return true
	}
	return false
}

// Succeeded reports whether the run finished with usable output.
func (s State) Succeeded() bool {
	return s == StateSuccess || s == StatePartialSuccess
}

var (
	// ErrTimeout is returned when a run does not finish within its timeout.
	ErrTimeout = errors.New("pipeline run timed out")
	// ErrFailed is returned when a run finishes in the failed state.
	ErrFailed = errors.New("pipeline run failed")
)

// Default run settings.
const (
	DefaultTimeout      = time.Hour
	DefaultPollInterval = 10 * time.Second
)

// RunConfig controls how a trigger is followed up.
type RunConfig struct {
	WaitForCompletion bool
	Timeout           time.Duration
	PollInterval      time.Duration
}

// WithDefaults fills zero durations.
func (c RunConfig) WithDefaults() RunConfig {
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.PollInterval <= 0 {
		c.PollInterval = DefaultPollInterval
	}
	return c
}

// Status is the latest observed status of a pipeline.
type Status struct {
	PipelineID string `json:"pipelineId"`
	RunID      string `json:"runId,omitempty"`
	State      State  `json:"pipelineState"`
	StartDate  int64  `json:"startDate,omitempty"` // epoch millis
	EndDate    int64  `json:"endDate,omitempty"`
}

// Run is the outcome of a triggered run.
type Run struct {
	PipelineID string
	Waited     bool
	State      State
	Polls      int
	Elapsed    time.Duration
}
