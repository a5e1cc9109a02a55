package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/younsl/spotstack/internal/models"
	"github.com/younsl/spotstack/pkg/utils"
)

// OwnerTagKey is the tag carrying the name of the stack that owns an
// Elastic IP allocation. The stack template applies it to every address
// it creates.
const OwnerTagKey = "spotstack:stack-name"

// AddressAPI is the slice of the EC2 API the address client uses.
type AddressAPI interface {
	DescribeAddresses(ctx context.Context, params *ec2.DescribeAddressesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeAddressesOutput, error)
	ReleaseAddress(ctx context.Context, params *ec2.ReleaseAddressInput, optFns ...func(*ec2.Options)) (*ec2.ReleaseAddressOutput, error)
}

// AddressClient manages Elastic IP allocations
type AddressClient struct {
	api    AddressAPI
	region string
}

// NewAddressClient creates a new AddressClient
func NewAddressClient(region string) (*AddressClient, error) {
	cfg, err := config.LoadDefaultConfig(context.TODO(), config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("error loading AWS config: %w", err)
	}

	return &AddressClient{
		api:    ec2.NewFromConfig(cfg),
		region: region,
	}, nil
}

// NewAddressClientFromAPI creates an AddressClient over an existing API,
// used by tests to inject fakes.
func NewAddressClientFromAPI(api AddressAPI, region string) *AddressClient {
	return &AddressClient{api: api, region: region}
}

// Unassociated returns every Elastic IP allocation that is not currently
// associated with an instance or network interface. Ownership tags arrive
// inline, so no per-address tag query can fail separately.
func (c *AddressClient) Unassociated(ctx context.Context) ([]models.AddressInfo, error) {
	result, err := c.api.DescribeAddresses(ctx, &ec2.DescribeAddressesInput{})
	if err != nil {
		return nil, fmt.Errorf("error querying Elastic IPs: %w", err)
	}

	addresses := []models.AddressInfo{}
	for _, addr := range result.Addresses {
		if addr.AssociationId != nil && *addr.AssociationId != "" {
			continue
		}
		if addr.AllocationId == nil {
			continue
		}

		addresses = append(addresses, models.AddressInfo{
			AllocationID:    *addr.AllocationId,
			PublicIP:        utils.SafeDeref(addr.PublicIp),
			OwnerStack:      utils.GetTagValue(addr.Tags, OwnerTagKey),
			OwnerTagPresent: utils.HasTag(addr.Tags, OwnerTagKey),
			Region:          c.region,
		})
	}

	return addresses, nil
}

// Release releases an Elastic IP allocation back to the platform.
func (c *AddressClient) Release(ctx context.Context, allocationID string) error {
	_, err := c.api.ReleaseAddress(ctx, &ec2.ReleaseAddressInput{
		AllocationId: aws.String(allocationID),
	})
	if err != nil {
		return fmt.Errorf("error releasing Elastic IP %s: %w", allocationID, err)
	}
	return nil
}
