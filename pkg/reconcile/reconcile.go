// Package reconcile releases orphaned Elastic IP allocations left behind
// by previous fleets, without ever touching addresses owned by the stack
// about to be deployed.
package reconcile

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/younsl/spotstack/internal/models"
)

// SettleDelay is how long the platform's eventual-consistency window is
// given to close after any release.
const SettleDelay = 30 * time.Second

// AddressService lists and releases unassociated Elastic IP allocations.
type AddressService interface {
	Unassociated(ctx context.Context) ([]models.AddressInfo, error)
	Release(ctx context.Context, allocationID string) error
}

// Reconciler releases unassociated addresses not owned by the current
// stack.
type Reconciler struct {
	Addresses AddressService
	StackName string
	Out       io.Writer

	// Sleep is replaceable so tests skip the settle delay
	Sleep func(time.Duration)
}

// NewReconciler creates a Reconciler for the named stack.
func NewReconciler(addresses AddressService, stackName string, out io.Writer) *Reconciler {
	return &Reconciler{
		Addresses: addresses,
		StackName: stackName,
		Out:       out,
		Sleep:     time.Sleep,
	}
}

// Reconcile lists unassociated addresses and releases the orphaned ones,
// returning the released set. Invariant: an address whose owner tag matches
// the current stack name is never released. An owner tag that is present
// but blank is ambiguous and also never released.
func (r *Reconciler) Reconcile(ctx context.Context) ([]models.AddressInfo, error) {
	addresses, err := r.Addresses.Unassociated(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing unassociated addresses: %w", err)
	}

	released := []models.AddressInfo{}
	for _, addr := range addresses {
		if !r.orphaned(addr) {
			continue
		}

		if err := r.Addresses.Release(ctx, addr.AllocationID); err != nil {
			return released, fmt.Errorf("releasing address %s (%s): %w", addr.AllocationID, addr.PublicIP, err)
		}
		fmt.Fprintf(r.Out, "Released orphaned Elastic IP %s (%s)\n", addr.PublicIP, addr.AllocationID)
		released = append(released, addr)
	}

	if len(released) > 0 {
		fmt.Fprintf(r.Out, "Waiting %s for released addresses to settle ...\n", SettleDelay)
		r.Sleep(SettleDelay)
	}

	return released, nil
}

// orphaned reports whether an address is safe to release.
func (r *Reconciler) orphaned(addr models.AddressInfo) bool {
	if addr.OwnerStack == r.StackName {
		return false
	}
	// Present-but-blank tag: ownership is ambiguous, keep the address
	if addr.OwnerTagPresent && addr.OwnerStack == "" {
		return false
	}
	return true
}
