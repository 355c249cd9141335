package app

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/artpar/catalogctl/ports"
)

// DefaultConnectionTimeout bounds the wait for the test connection result.
const DefaultConnectionTimeout = 150 * time.Second

// Connection test result phrasings.
const (
	ConnectionSuccessText = "Connection test was successful."
	ConnectionPartialText = "Test connection partially successful: Some steps had failures, we will only ingest partial metadata. Click here to view details."
)

var connectionResult = regexp.MustCompile(regexp.QuoteMeta(ConnectionSuccessText) + "|" + regexp.QuoteMeta(ConnectionPartialText))

// ErrUnexpectedResult is returned when the result message matches neither phrasing.
var ErrUnexpectedResult = errors.New("unexpected connection test result")

// ConnectionResult is the outcome badge of a connection test.
type ConnectionResult string

const (
	ConnectionSucceeded ConnectionResult = "success"
	ConnectionPartial   ConnectionResult = "warning"
)

// ConnectionTester runs the service connection test from the service form.
type ConnectionTester struct {
	page    ports.Page
	timeout time.Duration
	steps   steps
}

// NewConnectionTester creates a tester. A zero timeout uses DefaultConnectionTimeout.
func NewConnectionTester(page ports.Page, timeout time.Duration, cfg UIConfig) *ConnectionTester {
	if timeout <= 0 {
		timeout = DefaultConnectionTimeout
	}
	return &ConnectionTester{
		page:    page,
		timeout: timeout,
		steps: steps{
			workflow: "test_connection",
			timeout:  cfg.StepTimeout,
			logger:   cfg.Logger.With().Str("workflow", "test_connection").Logger(),
			metrics:  cfg.Metrics,
		},
	}
}

// Test starts the connection test and waits for its result badge. The check
// is never retried.
func (t *ConnectionTester) Test(ctx context.Context) (ConnectionResult, error) {
	page := t.page

	err := t.steps.run(ctx, "start", func(ctx context.Context) error {
		if err := page.Click(ctx, SelTestConnectionBtn); err != nil {
			return err
		}
		if err := page.WaitVisible(ctx, SelModalTitle()); err != nil {
			return err
		}
		return page.Click(ctx, SelModalOK())
	})
	if err != nil {
		return "", err
	}

	var result ConnectionResult
	waitResult := steps{workflow: t.steps.workflow, timeout: t.timeout, logger: t.steps.logger, metrics: t.steps.metrics}
	err = waitResult.run(ctx, "wait_result", func(ctx context.Context) error {
		r, err := t.waitBadge(ctx)
		result = r
		return err
	})
	if err != nil {
		return "", err
	}

	err = t.steps.run(ctx, "check_message", func(ctx context.Context) error {
		text, err := page.Text(ctx, SelMessageText)
		if err != nil {
			return err
		}
		if !connectionResult.MatchString(text) {
			return fmt.Errorf("%w: %q", ErrUnexpectedResult, text)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return result, nil
}

// waitBadge waits for whichever badge appears first.
func (t *ConnectionTester) waitBadge(ctx context.Context) (ConnectionResult, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type outcome struct {
		result ConnectionResult
		err    error
	}
	results := make(chan outcome, 2)
	wait := func(sel string, r ConnectionResult) {
		results <- outcome{r, t.page.WaitVisible(ctx, sel)}
	}
	go wait(SelSuccessBadge, ConnectionSucceeded)
	go wait(SelWarningBadge, ConnectionPartial)

	var lastErr error
	for i := 0; i < 2; i++ {
		o := <-results
		if o.err == nil {
			return o.result, nil
		}
		lastErr = o.err
	}
	return "", lastErr
}

// CheckFieldHighlighted waits until the service form flags field as highlighted.
func CheckFieldHighlighted(ctx context.Context, page ports.Page, field string) error {
	return page.WaitVisible(ctx, SelHighlightedField(field))
}
