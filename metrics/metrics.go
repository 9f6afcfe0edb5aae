package metrics

import (
	"github.com/prebid/prebid-eplanning/openrtb_ext"
)

// AdapterLabels defines the labels that can be attached to the adapter metrics.
type AdapterLabels struct {
	Adapter       openrtb_ext.BidderName
	AdapterBids   AdapterBid
	AdapterErrors map[AdapterError]struct{}
}

// AdapterBid : Whether or not the adapter returned bids
type AdapterBid string

// AdapterError : Errors which may have occurred during the adapter's execution
type AdapterError string

// Adapter bid response status.
const (
	AdapterBidPresent AdapterBid = "bid"
	AdapterBidNone    AdapterBid = "nobid"
)

func AdapterBids() []AdapterBid {
	return []AdapterBid{
		AdapterBidPresent,
		AdapterBidNone,
	}
}

// Adapter execution status
const (
	AdapterErrorBadInput          AdapterError = "badinput"
	AdapterErrorBadServerResponse AdapterError = "badserverresponse"
	AdapterErrorUnknown           AdapterError = "unknown_error"
)

func AdapterErrors() []AdapterError {
	return []AdapterError{
		AdapterErrorBadInput,
		AdapterErrorBadServerResponse,
		AdapterErrorUnknown,
	}
}

// MetricsEngine is a generic interface to record adapter metrics into the desired backend.
// The engine records the adapter's view only: requests built, bids interpreted and their prices.
// Transport timing belongs to whoever executes the HTTP call.
type MetricsEngine interface {
	// RecordAdapterRequest counts one adapter round: either a request which never reached the
	// exchange, or a response which was interpreted.
	RecordAdapterRequest(labels AdapterLabels)
	// RecordAdapterBidReceived records whether a bid of a particular type carried markup in `adm`.
	RecordAdapterBidReceived(labels AdapterLabels, bidType openrtb_ext.BidType, hasAdm bool)
	RecordAdapterPrice(labels AdapterLabels, cpm float64)
}
