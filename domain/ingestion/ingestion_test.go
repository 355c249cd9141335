package ingestion_test

import (
	"testing"
	"time"

	"github.com/artpar/catalogctl/domain/ingestion"
)

func TestState_Terminal(t *testing.T) {
	tests := []struct {
		state     ingestion.State
		terminal  bool
		succeeded bool
	}{
		{ingestion.StateQueued, false, false},
		{ingestion.StateRunning, false, false},
		{ingestion.StateSuccess, true, true},
		{ingestion.StatePartialSuccess, true, true},
		{ingestion.StateFailed, true, false},
		{"", false, false},
	}
	for _, tt := range tests {
		if got := tt.state.Terminal(); got != tt.terminal {
			t.Errorf("%q.Terminal() = %v, want %v", tt.state, got, tt.terminal)
		}
		if got := tt.state.Succeeded(); got != tt.succeeded {
			t.Errorf("%q.Succeeded() = %v, want %v", tt.state, got, tt.succeeded)
		}
	}
}

func TestRunConfig_WithDefaults(t *testing.T) {
	c := ingestion.RunConfig{}.WithDefaults()
	if c.Timeout != ingestion.DefaultTimeout || c.PollInterval != ingestion.DefaultPollInterval {
		t.Errorf("defaults = %+v", c)
	}

	c = ingestion.RunConfig{Timeout: time.Minute, PollInterval: time.Second}.WithDefaults()
	if c.Timeout != time.Minute || c.PollInterval != time.Second {
		t.Errorf("explicit values overwritten: %+v", c)
	}
}
