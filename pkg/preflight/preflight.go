// Package preflight runs the ordered prerequisite checks that must pass
// before any platform mutation is attempted.
package preflight

import (
	"context"
	"fmt"
	"io"
	"os"
)

// Check is one named prerequisite. Run returns nil when the prerequisite
// is satisfied.
type Check struct {
	Name string
	Run  func(ctx context.Context) error
}

// Runner executes checks in order and stops at the first failure.
type Runner struct {
	Out io.Writer
}

// Run executes every check in order. The first failure aborts the run;
// any failure here is fatal to the whole deployment.
func (r *Runner) Run(ctx context.Context, checks []Check) error {
	for _, check := range checks {
		if err := check.Run(ctx); err != nil {
			fmt.Fprintf(r.Out, "✗ %s\n", check.Name)
			return fmt.Errorf("prerequisite %q failed: %w", check.Name, err)
		}
		fmt.Fprintf(r.Out, "✓ %s\n", check.Name)
	}
	return nil
}

// TemplateCheck verifies the stack definition file exists and is non-empty.
func TemplateCheck(path string) Check {
	return Check{
		Name: fmt.Sprintf("template file %s", path),
		Run: func(ctx context.Context) error {
			info, err := os.Stat(path)
			if err != nil {
				return fmt.Errorf("template not readable: %w", err)
			}
			if info.IsDir() {
				return fmt.Errorf("template path %s is a directory", path)
			}
			if info.Size() == 0 {
				return fmt.Errorf("template %s is empty", path)
			}
			return nil
		},
	}
}

// CredentialsCheck verifies the active credentials resolve to an identity.
func CredentialsCheck(resolve func(ctx context.Context) (string, error)) Check {
	return Check{
		Name: "AWS credentials",
		Run: func(ctx context.Context) error {
			if _, err := resolve(ctx); err != nil {
				return err
			}
			return nil
		},
	}
}

// ExistenceCheck verifies a named remote resource exists.
func ExistenceCheck(label, name string, exists func(ctx context.Context, name string) (bool, error)) Check {
	return Check{
		Name: fmt.Sprintf("%s %s", label, name),
		Run: func(ctx context.Context) error {
			ok, err := exists(ctx, name)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%s %s not found", label, name)
			}
			return nil
		},
	}
}
