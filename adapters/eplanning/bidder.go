package eplanning

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/prebid/openrtb/v20/openrtb2"
	"github.com/prebid/prebid-eplanning/adapters"
	"github.com/prebid/prebid-eplanning/config"
	"github.com/prebid/prebid-eplanning/errortypes"
	"github.com/prebid/prebid-eplanning/logger"
	"github.com/prebid/prebid-eplanning/openrtb_ext"
)

// EPlanningAdapter exposes the E-Planning protocol as a server side bidder.
type EPlanningAdapter struct {
	*Adapter
	scheme string
}

// Builder builds a new instance of the EPlanning adapter for the given bidder with the given config.
func Builder(bidderName openrtb_ext.BidderName, cfg config.Adapter) (adapters.Bidder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	bidder := &EPlanningAdapter{
		Adapter: New(cfg.Exchange),
		scheme:  cfg.Scheme,
	}
	return bidder, nil
}

func (adapter *EPlanningAdapter) MakeRequests(request *openrtb2.BidRequest, reqInfo *adapters.ExtraRequestInfo) ([]*adapters.RequestData, []error) {
	var errs []error
	bidRequests := make([]BidRequest, 0, len(request.Imp))
	impIDs := make([]string, 0, len(request.Imp))

	for _, imp := range request.Imp {
		bidRequest, err := toBidRequest(imp)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if !adapter.IsBidRequestValid(bidRequest) {
			errs = append(errs, &errortypes.BadInput{
				Message: fmt.Sprintf("Ignoring imp id=%s, no ci param", imp.ID),
			})
			continue
		}
		bidRequests = append(bidRequests, bidRequest)
		impIDs = append(impIDs, imp.ID)
	}

	if len(bidRequests) == 0 {
		return nil, errs
	}

	outbound := adapter.BuildRequest(bidRequests, pageContext(request))

	return []*adapters.RequestData{{
		Method:  outbound.Method,
		Uri:     adapter.scheme + ":" + outbound.String(),
		Headers: requestHeaders(request),
		ImpIDs:  impIDs,
	}}, errs
}

func toBidRequest(imp openrtb2.Imp) (BidRequest, error) {
	if imp.Banner == nil {
		return BidRequest{}, &errortypes.BadInput{
			Message: fmt.Sprintf("Ignoring imp id=%s, E-Planning supports only banner", imp.ID),
		}
	}

	var bidderExt adapters.ExtImpBidder
	if err := json.Unmarshal(imp.Ext, &bidderExt); err != nil {
		return BidRequest{}, &errortypes.BadInput{
			Message: fmt.Sprintf("Ignoring imp id=%s, error while decoding extImpBidder, err: %s", imp.ID, err),
		}
	}

	var params openrtb_ext.ExtImpEPlanning
	if err := json.Unmarshal(bidderExt.Bidder, &params); err != nil {
		return BidRequest{}, &errortypes.BadInput{
			Message: fmt.Sprintf("Ignoring imp id=%s, error while decoding impExt, err: %s", imp.ID, err),
		}
	}

	return BidRequest{
		BidID:      imp.ID,
		AdUnitCode: imp.ID,
		Params:     params,
		Sizes:      bannerSizes(imp.Banner),
	}, nil
}

func bannerSizes(banner *openrtb2.Banner) []Size {
	if len(banner.Format) > 0 {
		sizes := make([]Size, 0, len(banner.Format))
		for _, format := range banner.Format {
			sizes = append(sizes, Size{W: format.W, H: format.H})
		}
		return sizes
	}
	if banner.W != nil && banner.H != nil {
		return []Size{{W: *banner.W, H: *banner.H}}
	}
	return nil
}

func pageContext(request *openrtb2.BidRequest) PageContext {
	var page PageContext
	if request.Site == nil {
		return page
	}

	page.TopURL = request.Site.Page
	page.Referrer = request.Site.Ref
	page.Hostname = request.Site.Domain
	if page.Hostname == "" && page.TopURL != "" {
		if pageURL, err := url.Parse(page.TopURL); err == nil {
			page.Hostname = pageURL.Hostname()
		}
	}
	return page
}

func requestHeaders(request *openrtb2.BidRequest) http.Header {
	headers := http.Header{}
	headers.Add("Accept", "application/json")

	if request.Device != nil {
		if request.Device.UA != "" {
			headers.Add("User-Agent", request.Device.UA)
		}
		if request.Device.IP != "" {
			headers.Add("X-Forwarded-For", request.Device.IP)
		} else if request.Device.IPv6 != "" {
			headers.Add("X-Forwarded-For", request.Device.IPv6)
		}
	}
	return headers
}

func (adapter *EPlanningAdapter) MakeBids(internalRequest *openrtb2.BidRequest, externalRequest *adapters.RequestData, response *adapters.ResponseData) (*adapters.BidderResponse, []error) {
	if adapters.IsResponseStatusCodeNoContent(response) {
		return nil, nil
	}

	if err := adapters.CheckResponseStatusCodeForErrors(response); err != nil {
		return nil, []error{err}
	}

	serverResponse, err := ParseServerResponse(response.Body)
	if err != nil {
		return nil, []error{&errortypes.BadServerResponse{
			Message: fmt.Sprintf("Error unmarshaling E-Planning response: %v", err),
		}}
	}

	impIDs := make(map[string]struct{}, len(internalRequest.Imp))
	for _, imp := range internalRequest.Imp {
		impIDs[imp.ID] = struct{}{}
	}

	bids := adapter.InterpretResponse(serverResponse)
	bidResponse := adapters.NewBidderResponseWithBidsCapacity(len(bids))
	bidResponse.Currency = adapter.cfg.Currency

	var errs []error
	for _, bid := range bids {
		impID, ok := matchImp(impIDs, bid)
		if !ok {
			logger.Debugf("eplanning: dropping ad %q of space %q, no matching imp", bid.RequestID, bid.AdUnitCode)
			errs = append(errs, &errortypes.Warning{
				Message:     fmt.Sprintf("Ignoring ad of space %q, it matches no imp", bid.AdUnitCode),
				WarningCode: errortypes.UnmatchedAdWarningCode,
			})
			continue
		}

		bidID := bid.AdID
		if bidID == "" {
			bidID = bid.RequestID
		}

		bidResponse.Bids = append(bidResponse.Bids, &adapters.TypedBid{
			Bid: &openrtb2.Bid{
				ID:    bidID,
				ImpID: impID,
				Price: bid.CPM,
				AdM:   bid.Ad,
				CrID:  bid.CreativeID,
				W:     bid.Width,
				H:     bid.Height,
			},
			BidType: openrtb_ext.BidTypeBanner,
		})
	}
	return bidResponse, errs
}

// matchImp finds the imp a bid answers. The space name echoes the slot code sent in "e"; the ad's
// impression id is tried next.
func matchImp(impIDs map[string]struct{}, bid NormalizedBid) (string, bool) {
	if _, ok := impIDs[bid.AdUnitCode]; ok {
		return bid.AdUnitCode, true
	}
	if _, ok := impIDs[bid.RequestID]; ok {
		return bid.RequestID, true
	}
	return "", false
}
