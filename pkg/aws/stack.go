package aws

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation/types"
	"github.com/younsl/spotstack/internal/models"
	"github.com/younsl/spotstack/pkg/utils"
)

// TemplateRef points at a stack template, either inline or staged in S3.
// Exactly one field is set.
type TemplateRef struct {
	Body string
	URL  string
}

// StackAPI is the slice of the CloudFormation API the stack client uses.
type StackAPI interface {
	DescribeStacks(ctx context.Context, params *cloudformation.DescribeStacksInput, optFns ...func(*cloudformation.Options)) (*cloudformation.DescribeStacksOutput, error)
	CreateStack(ctx context.Context, params *cloudformation.CreateStackInput, optFns ...func(*cloudformation.Options)) (*cloudformation.CreateStackOutput, error)
	UpdateStack(ctx context.Context, params *cloudformation.UpdateStackInput, optFns ...func(*cloudformation.Options)) (*cloudformation.UpdateStackOutput, error)
	DescribeStackEvents(ctx context.Context, params *cloudformation.DescribeStackEventsInput, optFns ...func(*cloudformation.Options)) (*cloudformation.DescribeStackEventsOutput, error)
}

// StackClient manages one named CloudFormation stack
type StackClient struct {
	api    StackAPI
	name   string
	region string
}

// NewStackClient creates a new StackClient for the named stack
func NewStackClient(name, region string) (*StackClient, error) {
	cfg, err := config.LoadDefaultConfig(context.TODO(), config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("error loading AWS config: %w", err)
	}

	return &StackClient{
		api:    cloudformation.NewFromConfig(cfg),
		name:   name,
		region: region,
	}, nil
}

// NewStackClientFromAPI creates a StackClient over an existing API, used by
// tests to inject fakes.
func NewStackClientFromAPI(api StackAPI, name, region string) *StackClient {
	return &StackClient{api: api, name: name, region: region}
}

// Name returns the stack name the client is bound to.
func (c *StackClient) Name() string {
	return c.name
}

// Exists reports whether the stack currently exists. A missing stack is
// reported by the API as a ValidationError, not an empty list.
func (c *StackClient) Exists(ctx context.Context) (bool, error) {
	_, err := c.describe(ctx)
	if err != nil {
		if isStackMissing(err, c.name) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Create submits a stack creation request with the given template,
// parameters and ownership tags. CAPABILITY_IAM is always granted because
// the template provisions the fleet's instance profile.
func (c *StackClient) Create(ctx context.Context, tpl TemplateRef, params map[string]string, tags map[string]string) error {
	input := &cloudformation.CreateStackInput{
		StackName:    aws.String(c.name),
		Parameters:   buildParameters(params),
		Tags:         buildTags(tags),
		Capabilities: []types.Capability{types.CapabilityCapabilityIam},
		OnFailure:    types.OnFailureRollback,
	}
	setTemplate(&input.TemplateBody, &input.TemplateURL, tpl)

	if _, err := c.api.CreateStack(ctx, input); err != nil {
		return fmt.Errorf("error creating stack %s: %w", c.name, err)
	}
	return nil
}

// Update submits a stack update request. The API rejects no-op updates with
// a dedicated error; that case is reported as changed=false, not a failure.
func (c *StackClient) Update(ctx context.Context, tpl TemplateRef, params map[string]string, tags map[string]string) (bool, error) {
	input := &cloudformation.UpdateStackInput{
		StackName:    aws.String(c.name),
		Parameters:   buildParameters(params),
		Tags:         buildTags(tags),
		Capabilities: []types.Capability{types.CapabilityCapabilityIam},
	}
	setTemplate(&input.TemplateBody, &input.TemplateURL, tpl)

	if _, err := c.api.UpdateStack(ctx, input); err != nil {
		if strings.Contains(err.Error(), "No updates are to be performed") {
			return false, nil
		}
		return false, fmt.Errorf("error updating stack %s: %w", c.name, err)
	}
	return true, nil
}

// Status returns the stack's current status string.
func (c *StackClient) Status(ctx context.Context) (string, error) {
	stack, err := c.describe(ctx)
	if err != nil {
		return "", err
	}
	return string(stack.StackStatus), nil
}

// RecentEvents returns up to limit of the stack's most recent status
// events, newest first.
func (c *StackClient) RecentEvents(ctx context.Context, limit int) ([]models.StackEvent, error) {
	result, err := c.api.DescribeStackEvents(ctx, &cloudformation.DescribeStackEventsInput{
		StackName: aws.String(c.name),
	})
	if err != nil {
		return nil, fmt.Errorf("error querying stack events for %s: %w", c.name, err)
	}

	events := []models.StackEvent{}
	for _, ev := range result.StackEvents {
		if len(events) >= limit {
			break
		}
		event := models.StackEvent{
			LogicalID:    utils.SafeDeref(ev.LogicalResourceId),
			ResourceType: utils.SafeDeref(ev.ResourceType),
			Status:       string(ev.ResourceStatus),
			Reason:       utils.SafeDeref(ev.ResourceStatusReason),
		}
		if ev.Timestamp != nil {
			event.Timestamp = *ev.Timestamp
		}
		events = append(events, event)
	}

	return events, nil
}

// Outputs returns the completed stack's named outputs.
func (c *StackClient) Outputs(ctx context.Context) (models.StackOutputs, error) {
	stack, err := c.describe(ctx)
	if err != nil {
		return nil, err
	}

	outputs := models.StackOutputs{}
	for _, out := range stack.Outputs {
		if out.OutputKey == nil {
			continue
		}
		outputs[*out.OutputKey] = utils.SafeDeref(out.OutputValue)
	}

	return outputs, nil
}

func (c *StackClient) describe(ctx context.Context) (*types.Stack, error) {
	result, err := c.api.DescribeStacks(ctx, &cloudformation.DescribeStacksInput{
		StackName: aws.String(c.name),
	})
	if err != nil {
		return nil, fmt.Errorf("error querying stack %s: %w", c.name, err)
	}
	if len(result.Stacks) == 0 {
		return nil, fmt.Errorf("stack %s not found", c.name)
	}
	return &result.Stacks[0], nil
}

func isStackMissing(err error, name string) bool {
	return strings.Contains(err.Error(), fmt.Sprintf("Stack with id %s does not exist", name)) ||
		strings.Contains(err.Error(), "does not exist")
}

func setTemplate(body, url **string, tpl TemplateRef) {
	if tpl.URL != "" {
		*url = aws.String(tpl.URL)
		return
	}
	*body = aws.String(tpl.Body)
}

func buildParameters(params map[string]string) []types.Parameter {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	result := make([]types.Parameter, 0, len(keys))
	for _, k := range keys {
		result = append(result, types.Parameter{
			ParameterKey:   aws.String(k),
			ParameterValue: aws.String(params[k]),
		})
	}
	return result
}

func buildTags(tags map[string]string) []types.Tag {
	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	result := make([]types.Tag, 0, len(keys))
	for _, k := range keys {
		result = append(result, types.Tag{
			Key:   aws.String(k),
			Value: aws.String(tags[k]),
		})
	}
	return result
}
