package resilience

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// Schedule is the ordered list of waits between attempts. Its length is the
// maximum number of retries after the first attempt.
type Schedule []time.Duration

// Attempts returns the maximum number of attempts the schedule allows.
func (s Schedule) Attempts() int {
	return len(s) + 1
}

// Total returns the sum of all waits.
func (s Schedule) Total() time.Duration {
	var total time.Duration
	for _, d := range s {
		total += d
	}
	return total
}

// String renders the schedule as a comma separated list of durations.
func (s Schedule) String() string {
	parts := make([]string, len(s))
	for i, d := range s {
		parts[i] = d.String()
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// BackoffStrategy defines how delays grow between retries.
type BackoffStrategy int

const (
	// BackoffExponential multiplies the delay each retry.
	BackoffExponential BackoffStrategy = iota
	// BackoffLinear increases the delay by InitialDelay each retry.
	BackoffLinear
	// BackoffConstant uses InitialDelay for every retry.
	BackoffConstant
)

func (s BackoffStrategy) String() string {
	switch s {
	case BackoffExponential:
		return "exponential"
	case BackoffLinear:
		return "linear"
	case BackoffConstant:
		return "constant"
	default:
		return "unknown"
	}
}

// ScheduleConfig describes a generated schedule.
type ScheduleConfig struct {
	// Retries is the number of waits to generate. Negative means 0.
	Retries int

	// InitialDelay is the first wait.
	// Default: 100ms
	InitialDelay time.Duration

	// MaxDelay caps every wait.
	// Default: 30s
	MaxDelay time.Duration

	// Multiplier is the growth factor for exponential backoff.
	// Default: 2.0
	Multiplier float64

	// Strategy selects the growth curve.
	// Default: BackoffExponential
	Strategy BackoffStrategy

	// Jitter adds up to 25% random extra delay to each wait.
	Jitter bool
}

// NewSchedule generates a schedule from cfg.
func NewSchedule(cfg ScheduleConfig) Schedule {
	if cfg.InitialDelay <= 0 {
		cfg.InitialDelay = 100 * time.Millisecond
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = 30 * time.Second
	}
	if cfg.Multiplier <= 0 {
		cfg.Multiplier = 2.0
	}

	s := make(Schedule, max(cfg.Retries, 0))
	for i := range s {
		s[i] = cfg.delay(i + 1)
	}
	return s
}

// delay returns the wait before retry number retry (1-based).
func (cfg ScheduleConfig) delay(retry int) time.Duration {
	var d time.Duration

	switch cfg.Strategy {
	case BackoffConstant:
		d = cfg.InitialDelay
	case BackoffLinear:
		d = cfg.InitialDelay * time.Duration(retry)
	default:
		f := float64(cfg.InitialDelay) * math.Pow(cfg.Multiplier, float64(retry-1))
		if f > float64(cfg.MaxDelay) {
			f = float64(cfg.MaxDelay)
		}
		d = time.Duration(f)
	}

	if d > cfg.MaxDelay {
		d = cfg.MaxDelay
	}

	if cfg.Jitter && d >= 4 {
		// #nosec G404 -- jitter is non-cryptographic timing variance.
		d += time.Duration(rand.Int64N(int64(d / 4)))
	}
	return d
}

// ConstantSchedule returns retries waits of delay each. A zero delay retries
// immediately.
func ConstantSchedule(delay time.Duration, retries int) Schedule {
	s := make(Schedule, max(retries, 0))
	for i := range s {
		s[i] = max(delay, 0)
	}
	return s
}

// LinearSchedule returns waits of initial, 2*initial, ... capped at maxDelay.
// Zero durations take the ScheduleConfig defaults.
func LinearSchedule(initial, maxDelay time.Duration, retries int) Schedule {
	return NewSchedule(ScheduleConfig{Strategy: BackoffLinear, InitialDelay: initial, MaxDelay: maxDelay, Retries: retries})
}

// ExponentialSchedule returns doubling waits starting at initial, capped at maxDelay.
func ExponentialSchedule(initial, maxDelay time.Duration, retries int) Schedule {
	return NewSchedule(ScheduleConfig{Strategy: BackoffExponential, InitialDelay: initial, MaxDelay: maxDelay, Retries: retries})
}

// FromBackOff materializes up to retries waits from a cenkalti/backoff
// policy. The policy is reset first; generation stops early at backoff.Stop.
func FromBackOff(b backoff.BackOff, retries int) Schedule {
	b.Reset()
	s := make(Schedule, 0, max(retries, 0))
	for range max(retries, 0) {
		d := b.NextBackOff()
		if d == backoff.Stop {
			break
		}
		s = append(s, d)
	}
	return s
}

// ParseSchedule parses duration strings such as "100ms" or "2s".
func ParseSchedule(values []string) (Schedule, error) {
	s := make(Schedule, 0, len(values))
	for i, raw := range values {
		d, err := time.ParseDuration(strings.TrimSpace(raw))
		if err != nil {
			return nil, fmt.Errorf("%w: schedule[%d] %q: %v", ErrInvalidDelay, i, raw, err)
		}
		if d < 0 {
			return nil, fmt.Errorf("%w: schedule[%d] %q is negative", ErrInvalidDelay, i, raw)
		}
		s = append(s, d)
	}
	return s, nil
}
