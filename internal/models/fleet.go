package models

import "time"

// InstanceFamily is immutable reference data describing one compute class
// the fleet diversifies across.
type InstanceFamily struct {
	Name         string  // family code, e.g. "c4.large"
	InstanceType string  // EC2 instance type submitted to the fleet
	Label        string  // human-readable description
	DefaultBid   float64 // fallback bid in USD/hr when no market data exists
	ParameterKey string  // CloudFormation parameter carrying the bid
}

// SpotPriceSample is one (zone, price, timestamp) observation from the
// spot price history. Samples are consumed immediately to build an average.
type SpotPriceSample struct {
	AvailabilityZone string
	Price            float64
	Timestamp        time.Time
}

// Bid is the computed bid price for one instance family, valid for the
// duration of a single run.
type Bid struct {
	Family       string
	InstanceType string
	BidPrice     float64
	AveragePrice float64 // 0 when no samples were available
	SampleCount  int
	OnDemand     float64 // on-demand reference price, 0 when unavailable
	Source       string  // "Market" or "Default"
}
