package kling

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds carried as values so the transport boundary can render user
// messages without parsing error strings.
var (
	// ErrMissingTaskID indicates a success response without the task_id field.
	ErrMissingTaskID = errors.New("kling: response missing task id")
	// ErrTaskFailed indicates the remote service reported the task as failed.
	ErrTaskFailed = errors.New("kling: task failed remotely")
	// ErrAwaitTimeout indicates the polling deadline elapsed before a terminal status.
	ErrAwaitTimeout = errors.New("kling: timed out waiting for task result")
)

// SubmissionError reports a failed create-task call. StatusCode and Body are
// zero when the failure happened below the HTTP layer, in which case Err holds
// the transport error.
type SubmissionError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *SubmissionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("kling: create task: %v", e.Err)
	}
	return fmt.Sprintf("kling: create task: status %d: %s", e.StatusCode, strings.TrimSpace(e.Body))
}

func (e *SubmissionError) Unwrap() error { return e.Err }

// PollError reports a failed status query. A single bad response aborts the
// wait for that task; the watcher performs no retries.
type PollError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *PollError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("kling: query task: %v", e.Err)
	}
	return fmt.Sprintf("kling: query task: status %d: %s", e.StatusCode, strings.TrimSpace(e.Body))
}

func (e *PollError) Unwrap() error { return e.Err }
