// Package timeouts holds the context deadlines used by handlers and startup.
//
// Tiers:
//   - Ping: health checks
//   - Short: one-document reads and writes (get donor, sign in)
//   - Medium: full donor snapshot loads for search, stats and export
//   - Long: startup work such as index reconciliation and the admin bootstrap
//   - Batch: mass entry and CSV import
//
// Values can be overridden once at startup with Configure or ConfigureFromEnv.
package timeouts

import (
	"context"
	"os"
	"sync"
	"time"
)

const (
	DefaultPing   = 2 * time.Second
	DefaultShort  = 5 * time.Second
	DefaultMedium = 10 * time.Second
	DefaultLong   = 30 * time.Second
	DefaultBatch  = 60 * time.Second
)

// Config holds one value per tier. Zero values keep the current setting.
type Config struct {
	Ping   time.Duration
	Short  time.Duration
	Medium time.Duration
	Long   time.Duration
	Batch  time.Duration
}

var (
	mu  sync.RWMutex
	cur = defaults()
)

func defaults() Config {
	return Config{
		Ping:   DefaultPing,
		Short:  DefaultShort,
		Medium: DefaultMedium,
		Long:   DefaultLong,
		Batch:  DefaultBatch,
	}
}

func Ping() time.Duration   { return get().Ping }
func Short() time.Duration  { return get().Short }
func Medium() time.Duration { return get().Medium }
func Long() time.Duration   { return get().Long }
func Batch() time.Duration  { return get().Batch }

func get() Config {
	mu.RLock()
	defer mu.RUnlock()
	return cur
}

// Current returns a copy of the active configuration.
func Current() Config { return get() }

// Configure overrides the tiers that are set in cfg.
func Configure(cfg Config) {
	mu.Lock()
	defer mu.Unlock()
	merge(&cur, cfg)
}

// Reset restores the defaults.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	cur = defaults()
}

// ConfigureFromEnv reads DONORHUB_TIMEOUT_PING, _SHORT, _MEDIUM, _LONG and
// _BATCH as Go durations ("500ms", "2m"). Unset, invalid or non-positive
// values are ignored. It returns how many tiers were changed.
func ConfigureFromEnv() int {
	var cfg Config
	n := 0
	for _, e := range []struct {
		key string
		dst *time.Duration
	}{
		{"DONORHUB_TIMEOUT_PING", &cfg.Ping},
		{"DONORHUB_TIMEOUT_SHORT", &cfg.Short},
		{"DONORHUB_TIMEOUT_MEDIUM", &cfg.Medium},
		{"DONORHUB_TIMEOUT_LONG", &cfg.Long},
		{"DONORHUB_TIMEOUT_BATCH", &cfg.Batch},
	} {
		v := os.Getenv(e.key)
		if v == "" {
			continue
		}
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			*e.dst = d
			n++
		}
	}
	Configure(cfg)
	return n
}

// WithTimeout derives a context bounded by the given tier.
func WithTimeout(parent context.Context, tier func() time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, tier())
}

func merge(dst *Config, src Config) {
	if src.Ping > 0 {
		dst.Ping = src.Ping
	}
	if src.Short > 0 {
		dst.Short = src.Short
	}
	if src.Medium > 0 {
		dst.Medium = src.Medium
	}
	if src.Long > 0 {
		dst.Long = src.Long
	}
	if src.Batch > 0 {
		dst.Batch = src.Batch
	}
}
