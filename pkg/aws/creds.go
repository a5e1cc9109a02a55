package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/younsl/spotstack/pkg/utils"
)

// CallerIdentityAPI is the slice of the STS API the credentials client uses.
type CallerIdentityAPI interface {
	GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error)
}

// CredentialsClient validates the active AWS credentials
type CredentialsClient struct {
	api CallerIdentityAPI
}

// CallerIdentity identifies the account and principal behind the active
// credentials.
type CallerIdentity struct {
	Account string
	ARN     string
}

// NewCredentialsClient creates a new CredentialsClient
func NewCredentialsClient(region string) (*CredentialsClient, error) {
	cfg, err := config.LoadDefaultConfig(context.TODO(), config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("error loading AWS config: %w", err)
	}

	return &CredentialsClient{api: sts.NewFromConfig(cfg)}, nil
}

// NewCredentialsClientFromAPI creates a CredentialsClient over an existing
// API, used by tests to inject fakes.
func NewCredentialsClientFromAPI(api CallerIdentityAPI) *CredentialsClient {
	return &CredentialsClient{api: api}
}

// Identity returns the caller identity, failing when the credentials are
// missing, expired, or otherwise invalid.
func (c *CredentialsClient) Identity(ctx context.Context) (CallerIdentity, error) {
	result, err := c.api.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return CallerIdentity{}, fmt.Errorf("error validating AWS credentials: %w", err)
	}

	return CallerIdentity{
		Account: utils.SafeDeref(result.Account),
		ARN:     utils.SafeDeref(result.Arn),
	}, nil
}
