package aws

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/younsl/spotstack/internal/models"
	"github.com/younsl/spotstack/pkg/pricing"
)

// SpotHistoryAPI is the slice of the EC2 API the spot price client uses.
type SpotHistoryAPI interface {
	DescribeSpotPriceHistory(ctx context.Context, params *ec2.DescribeSpotPriceHistoryInput, optFns ...func(*ec2.Options)) (*ec2.DescribeSpotPriceHistoryOutput, error)
}

// SpotPriceClient fetches recent spot price history
type SpotPriceClient struct {
	api    SpotHistoryAPI
	region string
}

// NewSpotPriceClient creates a new SpotPriceClient
func NewSpotPriceClient(region string) (*SpotPriceClient, error) {
	cfg, err := config.LoadDefaultConfig(context.TODO(), config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("error loading AWS config: %w", err)
	}

	return &SpotPriceClient{
		api:    ec2.NewFromConfig(cfg),
		region: region,
	}, nil
}

// NewSpotPriceClientFromAPI creates a SpotPriceClient over an existing API,
// used by tests to inject fakes.
func NewSpotPriceClientFromAPI(api SpotHistoryAPI, region string) *SpotPriceClient {
	return &SpotPriceClient{api: api, region: region}
}

// RecentSamples returns spot price samples for an instance type over the
// history window, restricted to the given availability zones. Linux/UNIX
// product only.
func (c *SpotPriceClient) RecentSamples(ctx context.Context, instanceType string, zones []string) ([]models.SpotPriceSample, error) {
	input := &ec2.DescribeSpotPriceHistoryInput{
		InstanceTypes:       []types.InstanceType{types.InstanceType(instanceType)},
		ProductDescriptions: []string{"Linux/UNIX"},
		StartTime:           aws.Time(time.Now().Add(-pricing.HistoryWindow)),
		Filters: []types.Filter{
			{
				Name:   aws.String("availability-zone"),
				Values: zones,
			},
		},
	}

	result, err := c.api.DescribeSpotPriceHistory(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("error querying spot price history: %w", err)
	}

	samples := []models.SpotPriceSample{}
	for _, sp := range result.SpotPriceHistory {
		if sp.SpotPrice == nil {
			continue
		}
		price, err := strconv.ParseFloat(*sp.SpotPrice, 64)
		if err != nil {
			continue
		}

		sample := models.SpotPriceSample{
			Price: price,
		}
		if sp.AvailabilityZone != nil {
			sample.AvailabilityZone = *sp.AvailabilityZone
		}
		if sp.Timestamp != nil {
			sample.Timestamp = *sp.Timestamp
		}

		samples = append(samples, sample)
	}

	return samples, nil
}
