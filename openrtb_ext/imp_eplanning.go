package openrtb_ext

// ExtImpEPlanning defines the contract for bidrequest.imp[i].ext.prebid.bidder.eplanning
type ExtImpEPlanning struct {
	// ContentID is the exchange's identifier for the publisher placement. Required.
	ContentID string `json:"ci"`
	// ServerHost overrides the default ad server host.
	ServerHost string `json:"sv,omitempty"`
	// ImpressionServer selects the impression server variant.
	ImpressionServer string `json:"isv,omitempty"`
	// ContentType is the exchange's content type hint.
	ContentType string `json:"t,omitempty"`
}
