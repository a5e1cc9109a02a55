package stack_test

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/younsl/spotstack/internal/models"
	awsops "github.com/younsl/spotstack/pkg/aws"
	"github.com/younsl/spotstack/pkg/pricing"
	"github.com/younsl/spotstack/pkg/stack"
)

type fakeStackService struct {
	name    string
	exists  bool
	noOp    bool
	created bool
	updated bool
	params  map[string]string
	tags    map[string]string
}

func (f *fakeStackService) Name() string { return f.name }

func (f *fakeStackService) Exists(ctx context.Context) (bool, error) { return f.exists, nil }

func (f *fakeStackService) Create(ctx context.Context, tpl awsops.TemplateRef, params map[string]string, tags map[string]string) error {
	f.created = true
	f.params = params
	f.tags = tags
	return nil
}

func (f *fakeStackService) Update(ctx context.Context, tpl awsops.TemplateRef, params map[string]string, tags map[string]string) (bool, error) {
	f.updated = true
	f.params = params
	f.tags = tags
	return !f.noOp, nil
}

func testRequest() stack.Request {
	families := pricing.Families()
	bids := make(map[string]models.Bid, len(families))
	for _, f := range families {
		bids[f.Name] = models.Bid{Family: f.Name, InstanceType: f.InstanceType, BidPrice: f.DefaultBid, Source: pricing.BidSourceDefault}
	}
	return stack.Request{
		Template: awsops.TemplateRef{Body: "{}"},
		KeyName:  "fleet-key",
		Bids:     bids,
		Families: families,
	}
}

func confirmAnswering(answer bool) stack.Confirmer {
	return func(string) (bool, error) { return answer, nil }
}

func TestDeploy(t *testing.T) {
	t.Run("creates when the stack is absent", func(t *testing.T) {
		svc := &fakeStackService{name: "fleet-a"}
		d := &stack.Deployer{Stack: svc, Confirm: confirmAnswering(false), Out: io.Discard}

		result, err := d.Deploy(context.Background(), testRequest())
		require.NoError(t, err)
		assert.True(t, result.Created)
		assert.True(t, result.Changed)
		assert.True(t, svc.created)
		assert.False(t, svc.updated, "create path must not prompt or update")
	})

	t.Run("updates an existing stack after confirmation", func(t *testing.T) {
		svc := &fakeStackService{name: "fleet-a", exists: true}
		d := &stack.Deployer{Stack: svc, Confirm: confirmAnswering(true), Out: io.Discard}

		result, err := d.Deploy(context.Background(), testRequest())
		require.NoError(t, err)
		assert.False(t, result.Created)
		assert.True(t, result.Changed)
		assert.True(t, svc.updated)
	})

	t.Run("declining the update is fatal", func(t *testing.T) {
		svc := &fakeStackService{name: "fleet-a", exists: true}
		d := &stack.Deployer{Stack: svc, Confirm: confirmAnswering(false), Out: io.Discard}

		_, err := d.Deploy(context.Background(), testRequest())
		assert.ErrorIs(t, err, stack.ErrUpdateDeclined)
		assert.False(t, svc.updated)
	})

	t.Run("a no-op update is reported as unchanged", func(t *testing.T) {
		svc := &fakeStackService{name: "fleet-a", exists: true, noOp: true}
		d := &stack.Deployer{Stack: svc, Confirm: confirmAnswering(true), Out: io.Discard}

		result, err := d.Deploy(context.Background(), testRequest())
		require.NoError(t, err)
		assert.False(t, result.Changed)
	})

	t.Run("parameters carry every family bid and the key pair", func(t *testing.T) {
		svc := &fakeStackService{name: "fleet-a"}
		d := &stack.Deployer{Stack: svc, Confirm: confirmAnswering(true), Out: io.Discard}

		_, err := d.Deploy(context.Background(), testRequest())
		require.NoError(t, err)

		assert.Equal(t, "fleet-key", svc.params["KeyName"])
		for _, family := range pricing.Families() {
			assert.Contains(t, svc.params, family.ParameterKey)
		}
		assert.Len(t, svc.params, len(pricing.Families())+1)
		assert.Equal(t, "fleet-a", svc.tags[awsops.OwnerTagKey])
	})
}

func TestBuildParameters(t *testing.T) {
	t.Run("bids are rendered with four decimals", func(t *testing.T) {
		req := testRequest()
		req.Bids["c4.large"] = models.Bid{Family: "c4.large", BidPrice: 0.0625}

		params, err := stack.BuildParameters(req)
		require.NoError(t, err)
		assert.Equal(t, "0.0625", params["C4LargeBidPrice"])
	})

	t.Run("a missing family bid is an error", func(t *testing.T) {
		req := testRequest()
		delete(req.Bids, "r4.large")

		_, err := stack.BuildParameters(req)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "r4.large")
	})
}

func TestStdinConfirmer(t *testing.T) {
	t.Run("accepts y and yes", func(t *testing.T) {
		for _, answer := range []string{"y\n", "yes\n", "Y\n", "YES\n"} {
			confirm := stack.StdinConfirmer(strings.NewReader(answer), io.Discard)
			ok, err := confirm("proceed?")
			require.NoError(t, err)
			assert.True(t, ok, "answer %q", answer)
		}
	})

	t.Run("anything else declines", func(t *testing.T) {
		for _, answer := range []string{"n\n", "no\n", "\n", "maybe\n"} {
			confirm := stack.StdinConfirmer(strings.NewReader(answer), io.Discard)
			ok, err := confirm("proceed?")
			require.NoError(t, err)
			assert.False(t, ok, "answer %q", answer)
		}
	})
}
