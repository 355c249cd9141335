package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/artpar/catalogctl/app"
)

func TestConnectionTester_Results(t *testing.T) {
	tests := []struct {
		name    string
		absent  string
		message string
		want    app.ConnectionResult
	}{
		{"success", app.SelWarningBadge, app.ConnectionSuccessText, app.ConnectionSucceeded},
		{"partial", app.SelSuccessBadge, app.ConnectionPartialText, app.ConnectionPartial},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := newFakePage()
			page.absent[tt.absent] = true
			page.texts[app.SelMessageText] = tt.message

			tester := app.NewConnectionTester(page, time.Second, app.UIConfig{Logger: zerolog.Nop()})
			got, err := tester.Test(context.Background())
			if err != nil {
				t.Fatalf("Test failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("result = %q, want %q", got, tt.want)
			}

			clicks := callsWith(page.Calls(), "click ")
			if len(clicks) != 2 || clicks[0] != "click "+app.SelTestConnectionBtn || clicks[1] != "click "+app.SelModalOK() {
				t.Errorf("clicks = %v", clicks)
			}
		})
	}
}

func TestConnectionTester_Timeout(t *testing.T) {
	page := newFakePage()
	page.absent[app.SelSuccessBadge] = true
	page.absent[app.SelWarningBadge] = true

	tester := app.NewConnectionTester(page, 30*time.Millisecond, app.UIConfig{Logger: zerolog.Nop()})
	_, err := tester.Test(context.Background())
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("error = %v, want DeadlineExceeded", err)
	}
	var stepErr *app.StepError
	if !errors.As(err, &stepErr) || stepErr.Step != "wait_result" {
		t.Errorf("error = %v, want wait_result step", err)
	}
	if n := len(callsWith(page.Calls(), "click "+app.SelTestConnectionBtn)); n != 1 {
		t.Errorf("test connection clicked %d times, want 1", n)
	}
}

func TestConnectionTester_UnexpectedMessage(t *testing.T) {
	page := newFakePage()
	page.absent[app.SelWarningBadge] = true
	page.texts[app.SelMessageText] = "Connection failed."

	tester := app.NewConnectionTester(page, time.Second, app.UIConfig{Logger: zerolog.Nop()})
	_, err := tester.Test(context.Background())
	if !errors.Is(err, app.ErrUnexpectedResult) {
		t.Fatalf("error = %v, want ErrUnexpectedResult", err)
	}
}

func TestConnectionTester_ModalMissing(t *testing.T) {
	page := newFakePage()
	page.fail[app.SelModalTitle()] = errors.New("no modal")

	tester := app.NewConnectionTester(page, time.Second, app.UIConfig{Logger: zerolog.Nop()})
	_, err := tester.Test(context.Background())
	var stepErr *app.StepError
	if !errors.As(err, &stepErr) || stepErr.Step != "start" {
		t.Fatalf("error = %v, want start step", err)
	}
}

func TestCheckFieldHighlighted(t *testing.T) {
	page := newFakePage()
	if err := app.CheckFieldHighlighted(context.Background(), page, "root/hostPort"); err != nil {
		t.Fatalf("CheckFieldHighlighted failed: %v", err)
	}
	want := `visible [data-id="root/hostPort"][data-highlighted="true"]`
	if calls := page.Calls(); len(calls) != 1 || calls[0] != want {
		t.Errorf("calls = %v, want [%s]", calls, want)
	}
}
