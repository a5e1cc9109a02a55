package stack

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/younsl/spotstack/internal/models"
	"github.com/younsl/spotstack/pkg/formatter"
	"github.com/younsl/spotstack/pkg/poll"
)

// Monitor polling defaults.
const (
	// MonitorInterval is how often the stack status is polled
	MonitorInterval = 30 * time.Second

	// MonitorTimeout is the wall-clock budget for a deployment
	MonitorTimeout = 2400 * time.Second

	// EventDumpLimit is how many recent events a failure dump includes
	EventDumpLimit = 10
)

// ErrDeploymentFailed is wrapped by monitor errors caused by the stack
// reaching a failed or rolled-back state.
var ErrDeploymentFailed = errors.New("stack deployment failed")

// StatusReader is the read-only stack surface the monitor needs.
type StatusReader interface {
	Status(ctx context.Context) (string, error)
	RecentEvents(ctx context.Context, limit int) ([]models.StackEvent, error)
}

// Monitor polls stack status until a terminal state or timeout.
type Monitor struct {
	Stack    StatusReader
	Interval time.Duration
	Timeout  time.Duration
	Out      io.Writer
}

// NewMonitor creates a Monitor with the default interval and timeout.
func NewMonitor(stack StatusReader, out io.Writer) *Monitor {
	return &Monitor{
		Stack:    stack,
		Interval: MonitorInterval,
		Timeout:  MonitorTimeout,
		Out:      out,
	}
}

// Wait polls until the stack reaches a terminal state. Failure states
// produce a diagnostic dump of the most recent events; exceeding the
// timeout is fatal regardless of the last observed status.
func (m *Monitor) Wait(ctx context.Context) error {
	start := time.Now()

	err := poll.Until(ctx, m.Interval, m.Timeout, func(ctx context.Context) (bool, error) {
		status, err := m.Stack.Status(ctx)
		if err != nil {
			return false, err
		}

		fmt.Fprintf(m.Out, "  stack status: %-28s (elapsed %s)\n", status, time.Since(start).Round(time.Second))

		switch {
		case IsSuccessStatus(status):
			return true, nil
		case IsFailureStatus(status):
			m.dumpEvents(ctx)
			return false, fmt.Errorf("%w: stack entered %s", ErrDeploymentFailed, status)
		default:
			return false, nil
		}
	})

	if errors.Is(err, poll.ErrTimeout) {
		return fmt.Errorf("deployment did not reach a terminal state within %s", m.Timeout)
	}
	return err
}

func (m *Monitor) dumpEvents(ctx context.Context) {
	events, err := m.Stack.RecentEvents(ctx, EventDumpLimit)
	if err != nil {
		fmt.Fprintf(m.Out, "could not fetch stack events: %v\n", err)
		return
	}
	formatter.PrintStackEvents(m.Out, events)
}

// IsSuccessStatus reports whether a stack status is terminal-successful.
func IsSuccessStatus(status string) bool {
	return status == "CREATE_COMPLETE" || status == "UPDATE_COMPLETE"
}

// IsFailureStatus reports whether a stack status is terminal-failed,
// including every rollback state.
func IsFailureStatus(status string) bool {
	if strings.Contains(status, "ROLLBACK") {
		return true
	}
	if strings.HasSuffix(status, "_FAILED") {
		return true
	}
	return strings.HasPrefix(status, "DELETE_")
}
