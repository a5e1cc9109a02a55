package aws

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/aws/aws-sdk-go-v2/service/iam/types"
)

// FleetRoleName is the service-linked role the spot fleet request assumes
// for tagging and capacity management.
const FleetRoleName = "aws-ec2-spot-fleet-tagging-role"

// RoleAPI is the slice of the IAM API the role client uses.
type RoleAPI interface {
	GetRole(ctx context.Context, params *iam.GetRoleInput, optFns ...func(*iam.Options)) (*iam.GetRoleOutput, error)
}

// RoleClient looks up IAM roles
type RoleClient struct {
	api RoleAPI
}

// NewRoleClient creates a new RoleClient
func NewRoleClient(region string) (*RoleClient, error) {
	cfg, err := config.LoadDefaultConfig(context.TODO(), config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("error loading AWS config: %w", err)
	}

	return &RoleClient{api: iam.NewFromConfig(cfg)}, nil
}

// NewRoleClientFromAPI creates a RoleClient over an existing API, used by
// tests to inject fakes.
func NewRoleClientFromAPI(api RoleAPI) *RoleClient {
	return &RoleClient{api: api}
}

// Exists reports whether an IAM role with the given name exists.
func (c *RoleClient) Exists(ctx context.Context, name string) (bool, error) {
	_, err := c.api.GetRole(ctx, &iam.GetRoleInput{RoleName: aws.String(name)})
	if err != nil {
		var notFound *types.NoSuchEntityException
		if errors.As(err, &notFound) {
			return false, nil
		}
		return false, fmt.Errorf("error querying IAM role %s: %w", name, err)
	}

	return true, nil
}
