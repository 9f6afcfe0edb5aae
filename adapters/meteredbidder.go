package adapters

import (
	"github.com/prebid/openrtb/v20/openrtb2"
	"github.com/prebid/prebid-eplanning/errortypes"
	"github.com/prebid/prebid-eplanning/metrics"
	"github.com/prebid/prebid-eplanning/openrtb_ext"
)

// MeteredBidder wraps a Bidder and records what it builds and interprets.
//
// A round which fails before any request is made is counted as a no-bid with its errors,
// so every auction the bidder takes part in shows up exactly once in the request counters.
type MeteredBidder struct {
	Bidder
	name openrtb_ext.BidderName
	me   metrics.MetricsEngine
}

// BuildMeteredBidder wraps a bidder so that its results are reported to the metrics engine.
func BuildMeteredBidder(bidder Bidder, name openrtb_ext.BidderName, me metrics.MetricsEngine) Bidder {
	return &MeteredBidder{
		Bidder: bidder,
		name:   name,
		me:     me,
	}
}

func (b *MeteredBidder) MakeRequests(request *openrtb2.BidRequest, reqInfo *ExtraRequestInfo) ([]*RequestData, []error) {
	reqData, errs := b.Bidder.MakeRequests(request, reqInfo)
	if len(reqData) == 0 && len(errs) == 0 {
		errs = []error{&errortypes.FailedToRequestBids{Message: "The adapter failed to generate any bid requests, but also failed to generate an error explaining why"}}
	}
	if len(reqData) == 0 {
		b.me.RecordAdapterRequest(b.labels(metrics.AdapterBidNone, errs))
	}
	return reqData, errs
}

func (b *MeteredBidder) MakeBids(internalRequest *openrtb2.BidRequest, externalRequest *RequestData, response *ResponseData) (*BidderResponse, []error) {
	bidResponse, errs := b.Bidder.MakeBids(internalRequest, externalRequest, response)

	bidStatus := metrics.AdapterBidNone
	if bidResponse != nil && len(bidResponse.Bids) > 0 {
		bidStatus = metrics.AdapterBidPresent
	}
	labels := b.labels(bidStatus, errs)
	b.me.RecordAdapterRequest(labels)

	if bidResponse != nil {
		for _, typedBid := range bidResponse.Bids {
			b.me.RecordAdapterBidReceived(labels, typedBid.BidType, typedBid.Bid.AdM != "")
			b.me.RecordAdapterPrice(labels, typedBid.Bid.Price)
		}
	}
	return bidResponse, errs
}

func (b *MeteredBidder) labels(bidStatus metrics.AdapterBid, errs []error) metrics.AdapterLabels {
	labels := metrics.AdapterLabels{
		Adapter:     b.name,
		AdapterBids: bidStatus,
	}
	for _, err := range errortypes.FatalOnly(errs) {
		if labels.AdapterErrors == nil {
			labels.AdapterErrors = make(map[metrics.AdapterError]struct{})
		}
		labels.AdapterErrors[adapterError(err)] = struct{}{}
	}
	return labels
}

func adapterError(err error) metrics.AdapterError {
	switch errortypes.ReadCode(err) {
	case errortypes.BadInputErrorCode:
		return metrics.AdapterErrorBadInput
	case errortypes.BadServerResponseErrorCode:
		return metrics.AdapterErrorBadServerResponse
	default:
		return metrics.AdapterErrorUnknown
	}
}
