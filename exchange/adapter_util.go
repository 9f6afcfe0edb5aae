package exchange

import (
	"fmt"

	"github.com/prebid/prebid-eplanning/adapters"
	"github.com/prebid/prebid-eplanning/config"
	"github.com/prebid/prebid-eplanning/logger"
	"github.com/prebid/prebid-eplanning/metrics"
	"github.com/prebid/prebid-eplanning/openrtb_ext"
)

// BuildAdapters builds every enabled adapter of the configuration and wraps it so that its
// results reach the metrics engine.
func BuildAdapters(cfg *config.Configuration, me metrics.MetricsEngine) (map[openrtb_ext.BidderName]adapters.Bidder, []error) {
	bidders, errs := buildBidders(cfg.Adapters, newAdapterBuilders())
	if len(errs) > 0 {
		return nil, errs
	}

	meteredBidders := make(map[openrtb_ext.BidderName]adapters.Bidder, len(bidders))
	for bidderName, bidder := range bidders {
		meteredBidders[bidderName] = adapters.BuildMeteredBidder(bidder, bidderName, me)
	}
	return meteredBidders, nil
}

func buildBidders(adapterConfigs map[string]config.Adapter, builders map[openrtb_ext.BidderName]adapters.Builder) (map[openrtb_ext.BidderName]adapters.Bidder, []error) {
	bidders := make(map[openrtb_ext.BidderName]adapters.Bidder)
	var errs []error

	for bidder, cfg := range adapterConfigs {
		bidderName, bidderNameFound := openrtb_ext.GetBidderName(bidder)
		if !bidderNameFound {
			errs = append(errs, fmt.Errorf("%v: unknown bidder", bidder))
			continue
		}

		builder, builderFound := builders[bidderName]
		if !builderFound {
			errs = append(errs, fmt.Errorf("%v: builder not registered", bidder))
			continue
		}

		if cfg.Disabled {
			logger.Infof("Bidder %s is disabled", bidderName)
			continue
		}

		bidderInstance, builderErr := builder(bidderName, cfg)
		if builderErr != nil {
			errs = append(errs, fmt.Errorf("%v: %v", bidder, builderErr))
			continue
		}
		bidders[bidderName] = bidderInstance
	}
	return bidders, errs
}

// GetActiveBidders returns a map of all active bidder names.
func GetActiveBidders(adapterConfigs map[string]config.Adapter) map[string]openrtb_ext.BidderName {
	activeBidders := make(map[string]openrtb_ext.BidderName)

	for name, cfg := range adapterConfigs {
		if !cfg.Disabled {
			activeBidders[name] = openrtb_ext.BidderName(name)
		}
	}

	return activeBidders
}
