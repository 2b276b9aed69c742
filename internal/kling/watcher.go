package kling

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"videobot/internal/infra"
)

const (
	defaultPollInterval = 5 * time.Second
	defaultPollTimeout  = 5 * time.Minute

	statusSucceed = "succeed"
	statusFailed  = "failed"
)

// WatchClient is the slice of Client the watcher needs.
type WatchClient interface {
	TaskStatus(ctx context.Context, taskID string, cred Credential) (TaskView, error)
}

// WatcherOptions configures a task watcher.
type WatcherOptions struct {
	Client WatchClient
	Tokens TokenSource
	// Interval between status queries; defaults to 5 seconds.
	Interval time.Duration
	// Timeout is the total wait budget per task; defaults to 5 minutes.
	Timeout time.Duration
	Logger  *infra.Logger
	// Now overrides the clock, for tests.
	Now func() time.Time
}

// Outcome is the terminal result of one watched task. URL is empty when the
// remote reported success without a deliverable; that is not a failure.
type Outcome struct {
	TaskID string
	URL    string
}

// Watcher polls a submitted task until it reaches a terminal state or its
// deadline elapses. Each watched task is owned by exactly one Await call.
type Watcher struct {
	client   WatchClient
	tokens   TokenSource
	interval time.Duration
	timeout  time.Duration
	logger   *infra.Logger
	now      func() time.Time
}

// NewWatcher constructs a watcher with sane defaults.
func NewWatcher(opts WatcherOptions) *Watcher {
	interval := opts.Interval
	if interval <= 0 {
		interval = defaultPollInterval
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultPollTimeout
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	var logger *infra.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	} else {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}
	return &Watcher{
		client:   opts.Client,
		tokens:   opts.Tokens,
		interval: interval,
		timeout:  timeout,
		logger:   logger,
		now:      now,
	}
}

// Await polls taskID until succeed, failed, a poll error, or the deadline.
// A fresh credential is minted per status call so waits longer than the token
// validity window stay authorized. Status comparison is case-insensitive and
// any unrecognized status means the task is still running. No status query is
// issued after the deadline.
func (w *Watcher) Await(ctx context.Context, taskID string) (Outcome, error) {
	deadline := w.now().Add(w.timeout)
	for w.now().Before(deadline) {
		cred, err := w.tokens.Issue()
		if err != nil {
			return Outcome{}, err
		}
		view, err := w.client.TaskStatus(ctx, taskID, cred)
		if err != nil {
			return Outcome{}, err
		}

		switch {
		case strings.EqualFold(view.Status, statusSucceed):
			w.logger.Debug().
				Str("task_id", taskID).
				Str("url", view.VideoURL).
				Msg("kling: task succeeded")
			return Outcome{TaskID: taskID, URL: view.VideoURL}, nil
		case strings.EqualFold(view.Status, statusFailed):
			return Outcome{}, ErrTaskFailed
		}

		select {
		case <-ctx.Done():
			return Outcome{}, ctx.Err()
		case <-time.After(w.interval):
		}
	}
	return Outcome{}, ErrAwaitTimeout
}

// IsTerminalError reports whether err represents a terminal job outcome as
// opposed to a programming or context error.
func IsTerminalError(err error) bool {
	var pollErr *PollError
	return errors.Is(err, ErrTaskFailed) || errors.Is(err, ErrAwaitTimeout) || errors.As(err, &pollErr)
}
