package pricing

import (
	"context"

	"github.com/younsl/spotstack/internal/models"
)

// SampleSource fetches recent spot price samples for an instance type
// restricted to a zone set.
type SampleSource interface {
	RecentSamples(ctx context.Context, instanceType string, zones []string) ([]models.SpotPriceSample, error)
}

// Estimator computes buffered bid prices per instance family from recent
// spot market samples. Missing market data degrades to family defaults and
// is never fatal.
type Estimator struct {
	Source SampleSource
	Region string
	Zones  []string

	// OnDemand resolves the reference price; replaceable
	// so tests avoid the live Pricing API
	OnDemand func(instanceType, region string) float64
}

// NewEstimator creates an Estimator targeting the region's zone set.
func NewEstimator(source SampleSource, region string) *Estimator {
	return &Estimator{
		Source:   source,
		Region:   region,
		Zones:    TargetZones(region),
		OnDemand: OnDemandHourlyPrice,
	}
}

// EstimateBids returns one bid per family, keyed by family name. The
// returned map is a fresh value each call and is never mutated afterwards.
func (e *Estimator) EstimateBids(ctx context.Context) map[string]models.Bid {
	bids := make(map[string]models.Bid)

	for _, family := range Families() {
		bids[family.Name] = e.estimateFamily(ctx, family)
	}

	return bids
}

func (e *Estimator) estimateFamily(ctx context.Context, family models.InstanceFamily) models.Bid {
	onDemand := e.OnDemand(family.InstanceType, e.Region)

	samples, err := e.Source.RecentSamples(ctx, family.InstanceType, e.Zones)
	if err != nil || len(samples) == 0 {
		// Availability over precision: no market data means the default bid
		return models.Bid{
			Family:       family.Name,
			InstanceType: family.InstanceType,
			BidPrice:     family.DefaultBid,
			OnDemand:     onDemand,
			Source:       BidSourceDefault,
		}
	}

	var sum float64
	for _, s := range samples {
		sum += s.Price
	}
	avg := sum / float64(len(samples))

	return models.Bid{
		Family:       family.Name,
		InstanceType: family.InstanceType,
		BidPrice:     ClampBid(avg*BufferRatio, family.DefaultBid),
		AveragePrice: avg,
		SampleCount:  len(samples),
		OnDemand:     onDemand,
		Source:       BidSourceMarket,
	}
}

// ClampBid bounds a buffered bid to [defaultBid, PriceCeiling].
func ClampBid(bid, defaultBid float64) float64 {
	if bid < defaultBid {
		return defaultBid
	}
	if bid > PriceCeiling {
		return PriceCeiling
	}
	return bid
}
