package eplanning

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/prebid/prebid-eplanning/config"
	"github.com/prebid/prebid-eplanning/openrtb_ext"
	"github.com/prebid/prebid-eplanning/util/randomutil"
)

// defaultCacheBuster is drawn once per process. Every request built by adapters created with
// New carries the same value.
var defaultCacheBuster = randomutil.RandomNumberGenerator{}.GenerateFloat64()

// Size is one creative size accepted by an ad unit.
type Size struct {
	W int64
	H int64
}

func (s Size) String() string {
	return strconv.FormatInt(s.W, 10) + sizeDimensionSeparator + strconv.FormatInt(s.H, 10)
}

// BidRequest is one ad slot asking the exchange for a price.
type BidRequest struct {
	BidID      string
	AdUnitCode string
	Params     openrtb_ext.ExtImpEPlanning
	Sizes      []Size
}

// PageContext describes the page the auction runs on. Empty fields fall back to the file token.
type PageContext struct {
	TopURL   string
	Hostname string
	Referrer string
}

// OutboundRequest is the single call made to the exchange for a batch of bid requests.
// URL is protocol relative.
type OutboundRequest struct {
	Method string
	URL    string
	Data   url.Values
}

// String renders the request as a protocol relative URL with its query string.
func (r *OutboundRequest) String() string {
	if len(r.Data) == 0 {
		return r.URL
	}
	return r.URL + "?" + r.Data.Encode()
}

// Adapter translates bid requests into E-Planning calls and E-Planning responses into bids.
// It holds no mutable state and is safe for concurrent use.
type Adapter struct {
	cfg         config.EPlanning
	cacheBuster float64
}

// New returns an adapter sharing the process wide cache buster.
func New(cfg config.EPlanning) *Adapter {
	return &Adapter{
		cfg:         cfg,
		cacheBuster: defaultCacheBuster,
	}
}

// IsBidRequestValid reports whether the bid request carries a content id.
func (a *Adapter) IsBidRequestValid(bid BidRequest) bool {
	return bid.Params.ContentID != ""
}

// BuildRequest builds the one GET request covering every bid request in the batch.
// Shared parameters are taken from the first bid request which sets them.
func (a *Adapter) BuildRequest(bidRequests []BidRequest, page PageContext) *OutboundRequest {
	params := resolveParams(bidRequests)

	host := a.cfg.DefaultHost
	if params.ServerHost != "" {
		host = params.ServerHost
	}

	hostname := page.Hostname
	if hostname == "" {
		hostname = a.cfg.FileToken
	}

	topURL := page.TopURL
	if topURL == "" {
		topURL = a.cfg.FileToken
	}

	endpoint := protocolRelative + strings.Join([]string{
		host,
		hbPath,
		a.cfg.APIVersion,
		params.ContentID,
		a.cfg.ClientID,
		hostname,
		a.cfg.Section,
	}, pathSeparator)

	data := url.Values{}
	data.Set("rnd", strconv.FormatFloat(a.cacheBuster, 'f', -1, 64))
	data.Set("e", a.spaces(bidRequests))
	data.Set("ur", topURL)
	data.Set("r", a.cfg.Source)
	data.Set("pbv", a.cfg.VersionToken)
	if page.Referrer != "" {
		data.Set("fr", page.Referrer)
	}

	return &OutboundRequest{
		Method: http.MethodGet,
		URL:    endpoint,
		Data:   data,
	}
}

// resolveParams merges the params of a batch. Each field keeps the first non-empty value seen.
func resolveParams(bidRequests []BidRequest) openrtb_ext.ExtImpEPlanning {
	var resolved openrtb_ext.ExtImpEPlanning
	for _, bid := range bidRequests {
		if resolved.ContentID == "" {
			resolved.ContentID = bid.Params.ContentID
		}
		if resolved.ServerHost == "" {
			resolved.ServerHost = bid.Params.ServerHost
		}
		if resolved.ImpressionServer == "" {
			resolved.ImpressionServer = bid.Params.ImpressionServer
		}
		if resolved.ContentType == "" {
			resolved.ContentType = bid.Params.ContentType
		}
	}
	return resolved
}

// spaces renders the "e" descriptor, e.g. "div-1:300x250,300x600+div-2:1x1".
func (a *Adapter) spaces(bidRequests []BidRequest) string {
	spaces := make([]string, 0, len(bidRequests))
	for _, bid := range bidRequests {
		spaces = append(spaces, bid.AdUnitCode+spaceSizesSeparator+a.sizes(bid.Sizes))
	}
	return strings.Join(spaces, spaceSeparator)
}

func (a *Adapter) sizes(sizes []Size) string {
	if len(sizes) == 0 {
		return a.cfg.NullSize
	}
	formatted := make([]string, 0, len(sizes))
	for _, size := range sizes {
		formatted = append(formatted, size.String())
	}
	return strings.Join(formatted, sizeSeparator)
}
