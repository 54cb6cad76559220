package gateway

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/go-github/v62/github"
	"github.com/rotisserie/eris"
	"github.com/sethvargo/go-retry"

	"github.com/naka-gawa/github-trending/internal/config"
)

// ErrRateLimited is returned once a request has waited out the rate limit
// more times than the configured budget allows.
var ErrRateLimited = eris.New("rate limit wait budget exhausted")

type retryPolicy struct {
	// maxAttempts counts the first try.
	maxAttempts int
	backoffBase time.Duration
	maxWaits    int
}

func newRetryPolicy(s config.GitHubSettings) retryPolicy {
	p := retryPolicy{
		maxAttempts: s.MaxRetries,
		backoffBase: s.BackoffBase,
		maxWaits:    s.MaxRateLimitWaits,
	}
	if p.maxAttempts < 1 {
		p.maxAttempts = 1
	}
	if p.backoffBase <= 0 {
		p.backoffBase = time.Second
	}
	return p
}

func (p retryPolicy) backoff() retry.Backoff {
	return retry.WithMaxRetries(uint64(p.maxAttempts-1), retry.NewExponential(p.backoffBase))
}

// call runs fn with exponential backoff on failed attempts. A rate limited
// response makes it sleep until the reported reset and start over; those waits
// do not consume backoff attempts but are capped by maxWaits.
func (g *GitHubGateway) call(ctx context.Context, op string, fn func(ctx context.Context) (*github.Response, error)) error {
	waits := 0
	for {
		var wait time.Duration
		limited := false
		attempt := 0

		err := retry.Do(ctx, g.policy.backoff(), func(ctx context.Context) error {
			attempt++
			resp, err := fn(ctx)
			if err == nil {
				return nil
			}
			if d, ok := rateLimitWait(err, resp, g.now()); ok {
				wait, limited = d, true
				return err
			}
			if retryable(err) {
				g.logger.Warnf("%s: attempt %d/%d failed: %v", op, attempt, g.policy.maxAttempts, err)
				return retry.RetryableError(err)
			}
			return err
		})
		if !limited {
			return err
		}

		if waits >= g.policy.maxWaits {
			return eris.Wrapf(ErrRateLimited, "%s: still rate limited after %d waits: %v", op, waits, err)
		}
		waits++
		g.logger.Warnf("%s: API rate limit reached, waiting %s (%d/%d)", op, wait.Round(time.Second), waits, g.policy.maxWaits)
		if err := g.sleep(ctx, wait); err != nil {
			return eris.Wrapf(err, "%s: interrupted while waiting for rate limit reset", op)
		}
	}
}

// rateLimitWait reports whether err signals rate limiting and how long to wait.
func rateLimitWait(err error, resp *github.Response, now time.Time) (time.Duration, bool) {
	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) {
		return WaitDuration(rateErr.Rate.Reset.Time, now), true
	}

	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		if abuseErr.RetryAfter != nil {
			return max(*abuseErr.RetryAfter, 0), true
		}
		if abuseErr.Response != nil {
			return resetFromHeader(abuseErr.Response.Header, now), true
		}
		return 0, true
	}

	if resp != nil && (resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusTooManyRequests) {
		return resetFromHeader(resp.Header, now), true
	}
	return 0, false
}

// WaitDuration is max(reset - now, 0).
func WaitDuration(reset, now time.Time) time.Duration {
	return max(reset.Sub(now), 0)
}

// resetFromHeader reads X-RateLimit-Reset (epoch seconds). A missing or
// malformed header counts as an already passed reset.
func resetFromHeader(h http.Header, now time.Time) time.Duration {
	epoch, err := strconv.ParseInt(h.Get("X-RateLimit-Reset"), 10, 64)
	if err != nil {
		return 0
	}
	return WaitDuration(time.Unix(epoch, 0), now)
}

// retryable treats every failure that is not a rate limit as worth another
// attempt, error responses of any status included. Only cancellation stops early.
func retryable(err error) bool {
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
