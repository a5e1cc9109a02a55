// Package stack decides between creating and updating the fleet stack,
// submits the parameterized request, and monitors it to a terminal state.
package stack

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/younsl/spotstack/internal/models"
	awsops "github.com/younsl/spotstack/pkg/aws"
)

// ErrUpdateDeclined is returned when the operator declines to update an
// existing stack. Unlike declining the initial confirmation, this aborts a
// run that promised a deployment, so the caller exits non-zero.
var ErrUpdateDeclined = errors.New("stack update declined")

// Confirmer asks the operator a yes/no question. Injected so the flow is
// testable without a live terminal.
type Confirmer func(prompt string) (bool, error)

// StdinConfirmer returns a Confirmer reading y/N answers from in.
func StdinConfirmer(in io.Reader, out io.Writer) Confirmer {
	reader := bufio.NewReader(in)
	return func(prompt string) (bool, error) {
		fmt.Fprintf(out, "%s [y/N]: ", prompt)
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return false, fmt.Errorf("reading confirmation: %w", err)
		}
		answer := strings.ToLower(strings.TrimSpace(line))
		return answer == "y" || answer == "yes", nil
	}
}

// AlwaysConfirm is the Confirmer used when confirmations are bypassed with
// a flag.
func AlwaysConfirm(string) (bool, error) { return true, nil }

// StackService is the stack lifecycle surface the deployer needs.
type StackService interface {
	Name() string
	Exists(ctx context.Context) (bool, error)
	Create(ctx context.Context, tpl awsops.TemplateRef, params map[string]string, tags map[string]string) error
	Update(ctx context.Context, tpl awsops.TemplateRef, params map[string]string, tags map[string]string) (bool, error)
}

// Deployer submits the create-or-update request for the fleet stack. This
// is the only mutating operation that provisions billable resources.
type Deployer struct {
	Stack   StackService
	Confirm Confirmer
	Out     io.Writer
}

// Request carries everything the stack needs: the staged template, the
// computed bids, and the key-pair reference.
type Request struct {
	Template awsops.TemplateRef
	KeyName  string
	Bids     map[string]models.Bid
	Families []models.InstanceFamily
}

// Result describes what the deployer did.
type Result struct {
	Created bool // false means an update was submitted
	Changed bool // false when an update had nothing to do
}

// Deploy creates the stack when absent, or updates it after confirmation
// when present.
func (d *Deployer) Deploy(ctx context.Context, req Request) (Result, error) {
	params, err := BuildParameters(req)
	if err != nil {
		return Result{}, err
	}
	tags := map[string]string{awsops.OwnerTagKey: d.Stack.Name()}

	exists, err := d.Stack.Exists(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("checking stack existence: %w", err)
	}

	if exists {
		ok, err := d.Confirm(fmt.Sprintf("Stack %s already exists. Update it in place?", d.Stack.Name()))
		if err != nil {
			return Result{}, err
		}
		if !ok {
			return Result{}, ErrUpdateDeclined
		}

		changed, err := d.Stack.Update(ctx, req.Template, params, tags)
		if err != nil {
			return Result{}, err
		}
		if !changed {
			fmt.Fprintf(d.Out, "Stack %s is already up to date\n", d.Stack.Name())
		}
		return Result{Created: false, Changed: changed}, nil
	}

	if err := d.Stack.Create(ctx, req.Template, params, tags); err != nil {
		return Result{}, err
	}
	return Result{Created: true, Changed: true}, nil
}

// BuildParameters renders the stack parameter set: one bid price per
// family plus the key-pair reference.
func BuildParameters(req Request) (map[string]string, error) {
	params := map[string]string{
		"KeyName": req.KeyName,
	}

	for _, family := range req.Families {
		bid, ok := req.Bids[family.Name]
		if !ok {
			return nil, fmt.Errorf("no bid computed for family %s", family.Name)
		}
		params[family.ParameterKey] = fmt.Sprintf("%.4f", bid.BidPrice)
	}

	return params, nil
}
