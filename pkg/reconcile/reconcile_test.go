package reconcile_test

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/younsl/spotstack/internal/models"
	"github.com/younsl/spotstack/pkg/reconcile"
)

type fakeAddressService struct {
	addresses []models.AddressInfo
	listErr   error
	released  []string
	releaseErr map[string]error
}

func (f *fakeAddressService) Unassociated(ctx context.Context) ([]models.AddressInfo, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.addresses, nil
}

func (f *fakeAddressService) Release(ctx context.Context, allocationID string) error {
	if err := f.releaseErr[allocationID]; err != nil {
		return err
	}
	f.released = append(f.released, allocationID)
	return nil
}

func newTestReconciler(svc *fakeAddressService, stackName string) (*reconcile.Reconciler, *[]time.Duration) {
	r := reconcile.NewReconciler(svc, stackName, io.Discard)
	var slept []time.Duration
	r.Sleep = func(d time.Duration) { slept = append(slept, d) }
	return r, &slept
}

func TestReconcile(t *testing.T) {
	t.Run("never releases addresses owned by the current stack", func(t *testing.T) {
		svc := &fakeAddressService{addresses: []models.AddressInfo{
			{AllocationID: "eipalloc-own", PublicIP: "1.1.1.1", OwnerStack: "fleet-a", OwnerTagPresent: true},
			{AllocationID: "eipalloc-other", PublicIP: "2.2.2.2", OwnerStack: "fleet-b", OwnerTagPresent: true},
			{AllocationID: "eipalloc-untagged", PublicIP: "3.3.3.3"},
		}}
		r, _ := newTestReconciler(svc, "fleet-a")

		released, err := r.Reconcile(context.Background())
		require.NoError(t, err)

		assert.NotContains(t, svc.released, "eipalloc-own")
		assert.ElementsMatch(t, []string{"eipalloc-other", "eipalloc-untagged"}, svc.released)
		assert.Len(t, released, 2)
	})

	t.Run("blank owner tag is ambiguous and never released", func(t *testing.T) {
		svc := &fakeAddressService{addresses: []models.AddressInfo{
			{AllocationID: "eipalloc-blank", PublicIP: "4.4.4.4", OwnerStack: "", OwnerTagPresent: true},
		}}
		r, slept := newTestReconciler(svc, "fleet-a")

		released, err := r.Reconcile(context.Background())
		require.NoError(t, err)
		assert.Empty(t, released)
		assert.Empty(t, svc.released)
		assert.Empty(t, *slept, "no settle delay when nothing was released")
	})

	t.Run("waits the settle delay after releasing", func(t *testing.T) {
		svc := &fakeAddressService{addresses: []models.AddressInfo{
			{AllocationID: "eipalloc-orphan", PublicIP: "5.5.5.5", OwnerStack: "gone", OwnerTagPresent: true},
		}}
		r, slept := newTestReconciler(svc, "fleet-a")

		_, err := r.Reconcile(context.Background())
		require.NoError(t, err)
		require.Len(t, *slept, 1)
		assert.Equal(t, reconcile.SettleDelay, (*slept)[0])
	})

	t.Run("listing failure aborts before anything is released", func(t *testing.T) {
		svc := &fakeAddressService{listErr: errors.New("api down")}
		r, _ := newTestReconciler(svc, "fleet-a")

		_, err := r.Reconcile(context.Background())
		require.Error(t, err)
		assert.Empty(t, svc.released)
	})

	t.Run("release failure stops the pass and reports partial work", func(t *testing.T) {
		svc := &fakeAddressService{
			addresses: []models.AddressInfo{
				{AllocationID: "eipalloc-1", PublicIP: "6.6.6.1"},
				{AllocationID: "eipalloc-2", PublicIP: "6.6.6.2"},
			},
			releaseErr: map[string]error{"eipalloc-2": errors.New("in use")},
		}
		r, _ := newTestReconciler(svc, "fleet-a")

		released, err := r.Reconcile(context.Background())
		require.Error(t, err)
		assert.Len(t, released, 1)
	})
}
