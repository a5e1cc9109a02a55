// Package probe confirms the deployed service answers HTTP requests.
package probe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/younsl/spotstack/pkg/poll"
)

// Probe defaults: one attempt per interval up to the attempt budget.
const (
	DefaultInterval = 30 * time.Second
	DefaultAttempts = 25
)

// Prober polls an HTTP endpoint until it responds or the attempt budget is
// exhausted. Exhaustion is a warning for the caller, never a failure.
type Prober struct {
	Client   *http.Client
	Interval time.Duration
	Attempts int
	Out      io.Writer
}

// NewProber creates a Prober with the default budget.
func NewProber(out io.Writer) *Prober {
	return &Prober{
		Client:   &http.Client{Timeout: 10 * time.Second},
		Interval: DefaultInterval,
		Attempts: DefaultAttempts,
		Out:      out,
	}
}

// Wait returns true once the endpoint answers with a non-server-error
// response, false when the attempt budget runs out.
func (p *Prober) Wait(ctx context.Context, url string) bool {
	attempt := 0

	err := poll.UntilAttempts(ctx, p.Interval, p.Attempts, func(ctx context.Context) (bool, error) {
		attempt++

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			// A malformed URL never becomes reachable
			return false, err
		}

		resp, err := p.Client.Do(req)
		if err != nil {
			fmt.Fprintf(p.Out, "  readiness attempt %d/%d: %v\n", attempt, p.Attempts, err)
			return false, nil
		}
		resp.Body.Close()

		if resp.StatusCode >= http.StatusInternalServerError {
			fmt.Fprintf(p.Out, "  readiness attempt %d/%d: HTTP %d\n", attempt, p.Attempts, resp.StatusCode)
			return false, nil
		}

		fmt.Fprintf(p.Out, "  service responded with HTTP %d after %d attempt(s)\n", resp.StatusCode, attempt)
		return true, nil
	})

	if err != nil {
		if !errors.Is(err, poll.ErrAttemptsExhausted) {
			fmt.Fprintf(p.Out, "  readiness probe stopped: %v\n", err)
		}
		return false
	}
	return true
}
