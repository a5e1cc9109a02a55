package pricing

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/pricing/types"
	"github.com/younsl/spotstack/pkg/utils"
)

// OnDemandHourlyPriceWithSource returns the on-demand hourly price for an
// instance type and the source of the pricing. The price is a reference
// shown next to computed bids; failures degrade to the static default table.
func OnDemandHourlyPriceWithSource(instanceType, region string) (float64, string) {
	// Initialize pricing client if not already done
	PricingInitOnce.Do(InitPricingClient)

	cacheKey := fmt.Sprintf("%s:%s", region, instanceType)

	// Check cache first
	OnDemandPriceCacheLock.RLock()
	if price, exists := OnDemandPriceCache[cacheKey]; exists {
		OnDemandPriceCacheLock.RUnlock()
		UpdateCacheHitStats("EC2", region)
		return price, string(PricingSourceCache)
	}
	OnDemandPriceCacheLock.RUnlock()

	if PricingClient != nil {
		price, err := getOnDemandPriceFromAPI(instanceType, region)
		if err == nil {
			UpdateAPISuccessStats("EC2", region)

			OnDemandPriceCacheLock.Lock()
			OnDemandPriceCache[cacheKey] = price
			OnDemandPriceCacheLock.Unlock()

			return price, string(PricingSourceAPI)
		}
	}

	UpdateAPIFailureStats("EC2", region)

	// Fall back to the static table
	if regionPrices, ok := DefaultOnDemandPrices[region]; ok {
		if price, ok := regionPrices[instanceType]; ok {
			return price, string(PricingSourceDefault)
		}
	}

	return 0, string(PricingSourceNA)
}

// OnDemandHourlyPrice returns the on-demand hourly price for an instance type
func OnDemandHourlyPrice(instanceType, region string) float64 {
	price, _ := OnDemandHourlyPriceWithSource(instanceType, region)
	return price
}

// getOnDemandPriceFromAPI retrieves on-demand pricing from the AWS Pricing API
func getOnDemandPriceFromAPI(instanceType, region string) (float64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Filters for EC2 Linux on-demand instances
	filters := []types.Filter{
		{
			Type:  types.FilterTypeTermMatch,
			Field: aws.String("instanceType"),
			Value: aws.String(instanceType),
		},
		{
			Type:  types.FilterTypeTermMatch,
			Field: aws.String("location"),
			Value: aws.String(utils.GetRegionDescriptiveName(region)),
		},
		{
			Type:  types.FilterTypeTermMatch,
			Field: aws.String("operatingSystem"),
			Value: aws.String("Linux"),
		},
		{
			Type:  types.FilterTypeTermMatch,
			Field: aws.String("tenancy"),
			Value: aws.String("Shared"),
		},
		{
			Type:  types.FilterTypeTermMatch,
			Field: aws.String("preInstalledSw"),
			Value: aws.String("NA"),
		},
		{
			Type:  types.FilterTypeTermMatch,
			Field: aws.String("capacitystatus"),
			Value: aws.String("Used"),
		},
	}

	priceJSON, err := GetPriceFromAPI(ctx, "AmazonEC2", filters, instanceType, region)
	if err != nil {
		return 0, err
	}

	return ExtractOnDemandPrice(priceJSON)
}

// ExtractOnDemandPrice extracts the on-demand price from the pricing data JSON
func ExtractOnDemandPrice(priceJSON string) (float64, error) {
	priceData, err := utils.ParseJSON(priceJSON)
	if err != nil {
		return 0, fmt.Errorf("error parsing pricing data: %w", err)
	}

	terms, ok := priceData["terms"].(map[string]interface{})
	if !ok {
		return 0, fmt.Errorf("terms field not found or invalid")
	}

	onDemand, ok := terms["OnDemand"].(map[string]interface{})
	if !ok {
		return 0, fmt.Errorf("OnDemand field not found or invalid")
	}

	skuOffer, err := utils.GetFirstMapValue(onDemand)
	if err != nil {
		return 0, fmt.Errorf("no SKU offer found")
	}

	skuOfferMap, ok := skuOffer.(map[string]interface{})
	if !ok {
		return 0, fmt.Errorf("SKU offer is not a map")
	}

	priceDimensions, ok := skuOfferMap["priceDimensions"].(map[string]interface{})
	if !ok {
		return 0, fmt.Errorf("priceDimensions field not found or invalid")
	}

	dimension, err := utils.GetFirstMapValue(priceDimensions)
	if err != nil {
		return 0, fmt.Errorf("no price dimension found")
	}

	dimensionMap, ok := dimension.(map[string]interface{})
	if !ok {
		return 0, fmt.Errorf("price dimension is not a map")
	}

	pricePerUnit, ok := dimensionMap["pricePerUnit"].(map[string]interface{})
	if !ok {
		return 0, fmt.Errorf("pricePerUnit field not found or invalid")
	}

	usd, ok := pricePerUnit["USD"].(string)
	if !ok {
		return 0, fmt.Errorf("USD price not found or invalid")
	}

	price, err := strconv.ParseFloat(usd, 64)
	if err != nil {
		return 0, fmt.Errorf("error parsing price: %w", err)
	}

	return price, nil
}
