// path: lifecycle/retry.go
package lifecycle

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/AWS-First-Cloud-Journey/Disaster-Rescue-Relief-Platform/apperr"
)

// RetryPolicy bounds retries around store calls. Delays double from
// BaseDelay. Only unclassified (UnknownError) failures are retried.
type RetryPolicy struct {
	Attempts  int
	BaseDelay time.Duration
}

var DefaultRetry = RetryPolicy{Attempts: 3, BaseDelay: 100 * time.Millisecond}

func (p RetryPolicy) backOff(ctx context.Context) backoff.BackOff {
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = p.BaseDelay
	eb.Multiplier = 2
	eb.RandomizationFactor = 0
	eb.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(eb, uint64(attempts-1)), ctx)
}

// Do runs op until it succeeds or fails with a classified error. When the
// attempts run out the last error is returned; when ctx ends, ctx.Err().
func (p RetryPolicy) Do(ctx context.Context, op func(context.Context) error) error {
	return backoff.Retry(func() error {
		err := op(ctx)
		if err != nil && apperr.KindOf(err) != apperr.Unknown {
			return backoff.Permanent(err)
		}
		return err
	}, p.backOff(ctx))
}
