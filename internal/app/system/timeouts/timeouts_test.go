package timeouts

import (
	"context"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	if Ping() != DefaultPing || Short() != DefaultShort || Medium() != DefaultMedium ||
		Long() != DefaultLong || Batch() != DefaultBatch {
		t.Errorf("defaults not in effect: %+v", Current())
	}
}

func TestConfigure_IgnoresZero(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	Configure(Config{Short: 7 * time.Second})

	if Short() != 7*time.Second {
		t.Errorf("Short = %v, want 7s", Short())
	}
	if Medium() != DefaultMedium {
		t.Errorf("Medium = %v, want default", Medium())
	}
}

func TestConfigureFromEnv(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	t.Setenv("DONORHUB_TIMEOUT_PING", "500ms")
	t.Setenv("DONORHUB_TIMEOUT_BATCH", "2m")
	t.Setenv("DONORHUB_TIMEOUT_LONG", "soon")
	t.Setenv("DONORHUB_TIMEOUT_SHORT", "-1s")

	if n := ConfigureFromEnv(); n != 2 {
		t.Errorf("configured %d tiers, want 2", n)
	}
	if Ping() != 500*time.Millisecond {
		t.Errorf("Ping = %v", Ping())
	}
	if Batch() != 2*time.Minute {
		t.Errorf("Batch = %v", Batch())
	}
	if Long() != DefaultLong || Short() != DefaultShort {
		t.Errorf("invalid values should be ignored: %+v", Current())
	}
}

func TestWithTimeout(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	ctx, cancel := WithTimeout(context.Background(), Ping)
	defer cancel()

	deadline, ok := ctx.Deadline()
	if !ok {
		t.Fatal("expected a deadline")
	}
	if left := time.Until(deadline); left <= 0 || left > DefaultPing {
		t.Errorf("deadline %v out of range", left)
	}
}
