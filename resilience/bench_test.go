package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

// BenchmarkRetry_Do_Success measures the happy path with no retries.
func BenchmarkRetry_Do_Success(b *testing.B) {
	r := NewRetry(RetryConfig[int]{Schedule: ConstantSchedule(time.Second, 3)})
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = r.Do(ctx, func(context.Context) (int, error) {
			return 1, nil
		})
	}
}

// BenchmarkRetry_Do_Exhausted measures a full loop with zero waits.
func BenchmarkRetry_Do_Exhausted(b *testing.B) {
	r := NewRetry(RetryConfig[int]{Schedule: ConstantSchedule(0, 3)})
	ctx := context.Background()
	errFail := errors.New("fail")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = r.Do(ctx, func(context.Context) (int, error) {
			return 0, errFail
		})
	}
}

// BenchmarkRetry_Do_AttemptTimeout measures the per-attempt goroutine overhead.
func BenchmarkRetry_Do_AttemptTimeout(b *testing.B) {
	r := NewRetry(RetryConfig[int]{AttemptTimeout: time.Second})
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = r.Do(ctx, func(context.Context) (int, error) {
			return 1, nil
		})
	}
}

// BenchmarkNewSchedule_Jitter measures schedule generation.
func BenchmarkNewSchedule_Jitter(b *testing.B) {
	cfg := ScheduleConfig{Retries: 10, Jitter: true}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = NewSchedule(cfg)
	}
}
