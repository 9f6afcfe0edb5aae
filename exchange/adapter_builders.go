package exchange

import (
	"github.com/prebid/prebid-eplanning/adapters"
	"github.com/prebid/prebid-eplanning/adapters/eplanning"
	"github.com/prebid/prebid-eplanning/openrtb_ext"
)

// Adapter registration is kept in this separate file for ease of use and to aid
// in resolving merge conflicts.

func newAdapterBuilders() map[openrtb_ext.BidderName]adapters.Builder {
	return map[openrtb_ext.BidderName]adapters.Builder{
		openrtb_ext.BidderEPlanning: eplanning.Builder,
	}
}
