package pricing

import (
	"sync"
	"time"

	"github.com/younsl/spotstack/internal/models"
)

// PricingSource represents the source of pricing information
type PricingSource string

const (
	// PricingSourceAPI indicates pricing data came from AWS API
	PricingSourceAPI PricingSource = "API"

	// PricingSourceCache indicates pricing data came from cache
	PricingSourceCache PricingSource = "Cache"

	// PricingSourceDefault indicates pricing data came from hardcoded defaults
	PricingSourceDefault PricingSource = "Default"

	// PricingSourceNA indicates pricing data is not available
	PricingSourceNA PricingSource = "N/A"
)

// Bid computation constants. Samples are averaged over the history window,
// buffered, floored at the family default and capped at the ceiling.
const (
	// BufferRatio is the safety margin applied on top of the market average
	BufferRatio = 1.25

	// PriceCeiling is the absolute maximum bid in USD/hr for any family
	PriceCeiling = 0.500

	// HistoryWindow is how far back spot price samples are fetched
	HistoryWindow = time.Hour
)

// Sources for a computed bid.
const (
	BidSourceMarket  = "Market"
	BidSourceDefault = "Default"
)

// Stats tracking for pricing API calls
var (
	// PricingAPIStats tracks API call statistics by service and region
	PricingAPIStats = make(map[string]map[string]map[string]int) // service -> region -> {success, failure, cache}

	// PricingAPIStatsLock protects the stats map from concurrent access
	PricingAPIStatsLock sync.RWMutex
)

// On-demand price cache
var (
	// OnDemandPriceCache caches on-demand instance prices per region and type
	OnDemandPriceCache = make(map[string]float64)

	// OnDemandPriceCacheLock protects the cache from concurrent access
	OnDemandPriceCacheLock sync.RWMutex
)

// Families returns the fixed set of instance families the fleet diversifies
// across. Default bids are the fallback when the market yields no samples.
func Families() []models.InstanceFamily {
	return []models.InstanceFamily{
		{Name: "c4.large", InstanceType: "c4.large", Label: "Compute optimized, 2 vCPU", DefaultBid: 0.060, ParameterKey: "C4LargeBidPrice"},
		{Name: "c4.xlarge", InstanceType: "c4.xlarge", Label: "Compute optimized, 4 vCPU", DefaultBid: 0.120, ParameterKey: "C4XLargeBidPrice"},
		{Name: "c4.2xlarge", InstanceType: "c4.2xlarge", Label: "Compute optimized, 8 vCPU", DefaultBid: 0.240, ParameterKey: "C42XLargeBidPrice"},
		{Name: "m4.large", InstanceType: "m4.large", Label: "General purpose, 2 vCPU", DefaultBid: 0.070, ParameterKey: "M4LargeBidPrice"},
		{Name: "m4.xlarge", InstanceType: "m4.xlarge", Label: "General purpose, 4 vCPU", DefaultBid: 0.140, ParameterKey: "M4XLargeBidPrice"},
		{Name: "r4.large", InstanceType: "r4.large", Label: "Memory optimized, 2 vCPU", DefaultBid: 0.080, ParameterKey: "R4LargeBidPrice"},
	}
}

// ZoneSuffixes defines the availability zone set targeted within a region.
var ZoneSuffixes = []string{"a", "b", "c"}

// TargetZones expands the zone suffixes for a region.
func TargetZones(region string) []string {
	zones := make([]string, 0, len(ZoneSuffixes))
	for _, s := range ZoneSuffixes {
		zones = append(zones, region+s)
	}
	return zones
}

// Default on-demand prices in USD per hour, used when the Pricing API fails.
// Linux, shared tenancy.
var DefaultOnDemandPrices = map[string]map[string]float64{
	"us-east-1": {
		"c4.large":   0.100,
		"c4.xlarge":  0.199,
		"c4.2xlarge": 0.398,
		"m4.large":   0.100,
		"m4.xlarge":  0.200,
		"r4.large":   0.133,
	},
	"ap-northeast-2": { // Seoul region is about 14% more expensive
		"c4.large":   0.114,
		"c4.xlarge":  0.227,
		"c4.2xlarge": 0.454,
		"m4.large":   0.123,
		"m4.xlarge":  0.246,
		"r4.large":   0.160,
	},
	// Add more regions as needed
}
