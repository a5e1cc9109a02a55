package aws

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
)

// KeyPairAPI is the slice of the EC2 API the key pair client uses.
type KeyPairAPI interface {
	DescribeKeyPairs(ctx context.Context, params *ec2.DescribeKeyPairsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeKeyPairsOutput, error)
}

// KeyPairClient looks up EC2 key pairs
type KeyPairClient struct {
	api    KeyPairAPI
	region string
}

// NewKeyPairClient creates a new KeyPairClient
func NewKeyPairClient(region string) (*KeyPairClient, error) {
	cfg, err := config.LoadDefaultConfig(context.TODO(), config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("error loading AWS config: %w", err)
	}

	return &KeyPairClient{
		api:    ec2.NewFromConfig(cfg),
		region: region,
	}, nil
}

// NewKeyPairClientFromAPI creates a KeyPairClient over an existing API,
// used by tests to inject fakes.
func NewKeyPairClientFromAPI(api KeyPairAPI, region string) *KeyPairClient {
	return &KeyPairClient{api: api, region: region}
}

// Exists reports whether a key pair with the given name exists in the region.
func (c *KeyPairClient) Exists(ctx context.Context, name string) (bool, error) {
	result, err := c.api.DescribeKeyPairs(ctx, &ec2.DescribeKeyPairsInput{
		KeyNames: []string{name},
	})
	if err != nil {
		// The API reports a missing key pair as an error, not an empty list
		if strings.Contains(err.Error(), "InvalidKeyPair.NotFound") {
			return false, nil
		}
		return false, fmt.Errorf("error querying key pair %s: %w", name, err)
	}

	return len(result.KeyPairs) > 0, nil
}
