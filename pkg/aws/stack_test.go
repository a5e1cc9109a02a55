package aws_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	sdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
	cfntypes "github.com/aws/aws-sdk-go-v2/service/cloudformation/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	awsops "github.com/younsl/spotstack/pkg/aws"
)

type fakeStackAPI struct {
	describeErr error
	stack       *cfntypes.Stack
	updateErr   error

	createInput *cloudformation.CreateStackInput
	updateInput *cloudformation.UpdateStackInput
	events      []cfntypes.StackEvent
}

func (f *fakeStackAPI) DescribeStacks(ctx context.Context, in *cloudformation.DescribeStacksInput, optFns ...func(*cloudformation.Options)) (*cloudformation.DescribeStacksOutput, error) {
	if f.describeErr != nil {
		return nil, f.describeErr
	}
	return &cloudformation.DescribeStacksOutput{Stacks: []cfntypes.Stack{*f.stack}}, nil
}

func (f *fakeStackAPI) CreateStack(ctx context.Context, in *cloudformation.CreateStackInput, optFns ...func(*cloudformation.Options)) (*cloudformation.CreateStackOutput, error) {
	f.createInput = in
	return &cloudformation.CreateStackOutput{StackId: sdk.String("stack-id")}, nil
}

func (f *fakeStackAPI) UpdateStack(ctx context.Context, in *cloudformation.UpdateStackInput, optFns ...func(*cloudformation.Options)) (*cloudformation.UpdateStackOutput, error) {
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	f.updateInput = in
	return &cloudformation.UpdateStackOutput{StackId: sdk.String("stack-id")}, nil
}

func (f *fakeStackAPI) DescribeStackEvents(ctx context.Context, in *cloudformation.DescribeStackEventsInput, optFns ...func(*cloudformation.Options)) (*cloudformation.DescribeStackEventsOutput, error) {
	return &cloudformation.DescribeStackEventsOutput{StackEvents: f.events}, nil
}

func TestStackClientExists(t *testing.T) {
	t.Run("a missing stack is not an error", func(t *testing.T) {
		api := &fakeStackAPI{describeErr: fmt.Errorf("ValidationError: Stack with id fleet-a does not exist")}
		client := awsops.NewStackClientFromAPI(api, "fleet-a", "us-east-1")

		exists, err := client.Exists(context.Background())
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("an existing stack is reported", func(t *testing.T) {
		api := &fakeStackAPI{stack: &cfntypes.Stack{StackStatus: cfntypes.StackStatusCreateComplete}}
		client := awsops.NewStackClientFromAPI(api, "fleet-a", "us-east-1")

		exists, err := client.Exists(context.Background())
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("other errors propagate", func(t *testing.T) {
		api := &fakeStackAPI{describeErr: errors.New("throttled")}
		client := awsops.NewStackClientFromAPI(api, "fleet-a", "us-east-1")

		_, err := client.Exists(context.Background())
		assert.Error(t, err)
	})
}

func TestStackClientCreate(t *testing.T) {
	api := &fakeStackAPI{}
	client := awsops.NewStackClientFromAPI(api, "fleet-a", "us-east-1")

	err := client.Create(context.Background(),
		awsops.TemplateRef{Body: "Resources: {}"},
		map[string]string{"KeyName": "fleet-key", "C4LargeBidPrice": "0.0600"},
		map[string]string{awsops.OwnerTagKey: "fleet-a"},
	)
	require.NoError(t, err)
	require.NotNil(t, api.createInput)

	assert.Equal(t, "fleet-a", *api.createInput.StackName)
	assert.Equal(t, "Resources: {}", *api.createInput.TemplateBody)
	assert.Nil(t, api.createInput.TemplateURL)
	assert.Equal(t, []cfntypes.Capability{cfntypes.CapabilityCapabilityIam}, api.createInput.Capabilities)

	// Parameters arrive sorted by key for deterministic requests
	require.Len(t, api.createInput.Parameters, 2)
	assert.Equal(t, "C4LargeBidPrice", *api.createInput.Parameters[0].ParameterKey)
	assert.Equal(t, "KeyName", *api.createInput.Parameters[1].ParameterKey)

	require.Len(t, api.createInput.Tags, 1)
	assert.Equal(t, awsops.OwnerTagKey, *api.createInput.Tags[0].Key)
}

func TestStackClientUpdate(t *testing.T) {
	t.Run("no-op updates are not failures", func(t *testing.T) {
		api := &fakeStackAPI{updateErr: fmt.Errorf("ValidationError: No updates are to be performed.")}
		client := awsops.NewStackClientFromAPI(api, "fleet-a", "us-east-1")

		changed, err := client.Update(context.Background(), awsops.TemplateRef{Body: "{}"}, nil, nil)
		require.NoError(t, err)
		assert.False(t, changed)
	})

	t.Run("a staged template is submitted by URL", func(t *testing.T) {
		api := &fakeStackAPI{}
		client := awsops.NewStackClientFromAPI(api, "fleet-a", "us-east-1")

		changed, err := client.Update(context.Background(),
			awsops.TemplateRef{URL: "https://bucket.s3.us-east-1.amazonaws.com/fleet-a/t.cfn.yaml"}, nil, nil)
		require.NoError(t, err)
		assert.True(t, changed)
		assert.Nil(t, api.updateInput.TemplateBody)
		require.NotNil(t, api.updateInput.TemplateURL)
	})
}

func TestStackClientReads(t *testing.T) {
	t.Run("status comes from the stack description", func(t *testing.T) {
		api := &fakeStackAPI{stack: &cfntypes.Stack{StackStatus: cfntypes.StackStatusUpdateInProgress}}
		client := awsops.NewStackClientFromAPI(api, "fleet-a", "us-east-1")

		status, err := client.Status(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "UPDATE_IN_PROGRESS", status)
	})

	t.Run("recent events honor the limit", func(t *testing.T) {
		now := time.Now()
		api := &fakeStackAPI{}
		for i := 0; i < 15; i++ {
			api.events = append(api.events, cfntypes.StackEvent{
				Timestamp:         sdk.Time(now.Add(-time.Duration(i) * time.Minute)),
				LogicalResourceId: sdk.String(fmt.Sprintf("Resource%d", i)),
				ResourceType:      sdk.String("AWS::EC2::EIP"),
				ResourceStatus:    cfntypes.ResourceStatusCreateFailed,
			})
		}
		client := awsops.NewStackClientFromAPI(api, "fleet-a", "us-east-1")

		events, err := client.RecentEvents(context.Background(), 10)
		require.NoError(t, err)
		assert.Len(t, events, 10)
		assert.Equal(t, "Resource0", events[0].LogicalID)
	})

	t.Run("outputs become a key-value map", func(t *testing.T) {
		api := &fakeStackAPI{stack: &cfntypes.Stack{
			StackStatus: cfntypes.StackStatusCreateComplete,
			Outputs: []cfntypes.Output{
				{OutputKey: sdk.String("PublicIP"), OutputValue: sdk.String("203.0.113.7")},
				{OutputKey: sdk.String("EndpointURL"), OutputValue: sdk.String("http://203.0.113.7/")},
			},
		}}
		client := awsops.NewStackClientFromAPI(api, "fleet-a", "us-east-1")

		outputs, err := client.Outputs(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "203.0.113.7", outputs["PublicIP"])
		assert.Equal(t, "http://203.0.113.7/", outputs["EndpointURL"])
	})
}
