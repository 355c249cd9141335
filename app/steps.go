package app

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/artpar/catalogctl/ports"
	"github.com/rs/zerolog"
)

// DefaultStepTimeout bounds each UI step unless configured otherwise.
const DefaultStepTimeout = 30 * time.Second

// StepError reports the UI workflow step that failed.
type StepError struct {
	Workflow string
	Step     string
	Err      error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s: step %q: %v", e.Workflow, e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// steps runs the named steps of one UI workflow in order.
type steps struct {
	workflow string
	timeout  time.Duration
	logger   zerolog.Logger
	metrics  ports.Recorder
}

// run executes fn with the step timeout and wraps failures in *StepError.
func (s steps) run(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	timeout := s.timeout
	if timeout <= 0 {
		timeout = DefaultStepTimeout
	}
	stepCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	err := fn(stepCtx)
	if s.metrics != nil {
		s.metrics.ObserveStep(s.workflow, name, err)
	}
	if err != nil {
		s.logger.Warn().Err(err).Str("step", name).Msg("ui step failed")
		return &StepError{Workflow: s.workflow, Step: name, Err: err}
	}
	s.logger.Debug().Str("step", name).Dur("took", time.Since(start)).Msg("ui step done")
	return nil
}

// expectText fails unless the element text equals want.
func expectText(ctx context.Context, page ports.Page, selector, want string) error {
	got, err := page.Text(ctx, selector)
	if err != nil {
		return err
	}
	if got != want {
		return fmt.Errorf("%s text = %q, want %q", selector, got, want)
	}
	return nil
}

// toast waits for the alert bar to show message and then dismisses it.
func toast(ctx context.Context, page ports.Page, message string) error {
	if err := page.WaitVisible(ctx, SelAlertBar); err != nil {
		return err
	}
	got, err := page.Text(ctx, SelAlertMessage)
	if err != nil {
		return err
	}
	if !strings.Contains(got, message) {
		return fmt.Errorf("toast = %q, want %q", got, message)
	}
	return page.Click(ctx, SelAlertClose)
}

// searchResponse matches a search query response for the wildcard term.
func searchResponse(term string) func(string) bool {
	return func(raw string) bool {
		u, err := url.Parse(raw)
		if err != nil || !strings.HasSuffix(u.Path, "/api/v1/search/query") {
			return false
		}
		return u.Query().Get("q") == term
	}
}

// pathContains matches any response whose URL contains fragment.
func pathContains(fragment string) func(string) bool {
	return func(raw string) bool {
		return strings.Contains(raw, fragment)
	}
}
