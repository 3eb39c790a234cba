// Package resilience retries fallible operations on a fixed backoff
// schedule.
//
// A Schedule is the ordered list of waits between attempts; its length is
// the number of retries after the first attempt, so an empty schedule means
// "try once". Builders cover the usual strategies:
//
//	resilience.ConstantSchedule(200*time.Millisecond, 3)
//	resilience.LinearSchedule(100*time.Millisecond, time.Second, 5)
//	resilience.ExponentialSchedule(100*time.Millisecond, 5*time.Second, 6)
//	resilience.FromBackOff(backoff.NewExponentialBackOff(), 4)
//
// # Outcomes instead of errors
//
// The executor never returns an error. Failed attempts (a returned error, a
// panic, or a result rejected by the acceptance predicate) are contained and
// retried. The call yields an Outcome that tells success from exhaustion:
//
//	out := resilience.RunWithRetry(fetchPrice, schedule, func(p float64) bool { return p > 0 })
//	if price, ok := out.Get(); ok {
//	    use(price)
//	} else {
//	    log.Printf("gave up after %d attempts: %v", out.Attempts, out.Err)
//	}
//
// Retry adds context-aware waits, a per-attempt timeout, permanent-error
// detection, an OnRetry hook and observe integration.
package resilience
