package eplanning

import (
	"net/http"
	"testing"

	"github.com/prebid/openrtb/v20/openrtb2"
	"github.com/prebid/prebid-eplanning/adapters"
	"github.com/prebid/prebid-eplanning/adapters/adapterstest"
	"github.com/prebid/prebid-eplanning/config"
	"github.com/prebid/prebid-eplanning/errortypes"
	"github.com/prebid/prebid-eplanning/openrtb_ext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xorcare/pointer"
)

func newTestBidder() *EPlanningAdapter {
	return &EPlanningAdapter{
		Adapter: newTestAdapter(),
		scheme:  "https",
	}
}

func TestJsonSamples(t *testing.T) {
	adapterstest.RunJSONBidderTest(t, "eplanningtest", newTestBidder())
}

func TestBuilder(t *testing.T) {
	bidder, err := Builder(openrtb_ext.BidderEPlanning, config.Adapter{
		Scheme:   "https",
		Exchange: config.DefaultEPlanning(),
	})
	require.NoError(t, err)

	eplanning, ok := bidder.(*EPlanningAdapter)
	require.True(t, ok)
	assert.Equal(t, "https", eplanning.scheme)
	assert.Equal(t, defaultCacheBuster, eplanning.cacheBuster)
	assert.Equal(t, config.DefaultEPlanning(), eplanning.cfg)
}

func TestBuilderInvalidConfig(t *testing.T) {
	exchange := config.DefaultEPlanning()
	exchange.DefaultHost = "not a host"

	_, err := Builder(openrtb_ext.BidderEPlanning, config.Adapter{
		Scheme:   "https",
		Exchange: exchange,
	})
	assert.Error(t, err)

	_, err = Builder(openrtb_ext.BidderEPlanning, config.Adapter{
		Scheme:   "ftp",
		Exchange: config.DefaultEPlanning(),
	})
	assert.Error(t, err)
}

func TestPageContext(t *testing.T) {
	testCases := []struct {
		description string
		request     *openrtb2.BidRequest
		expected    PageContext
	}{
		{
			description: "No Site",
			request:     &openrtb2.BidRequest{App: &openrtb2.App{Bundle: "com.example"}},
			expected:    PageContext{},
		},
		{
			description: "Site Domain",
			request:     &openrtb2.BidRequest{Site: &openrtb2.Site{Page: "https://www.example.com/a", Domain: "example.com", Ref: "https://google.com"}},
			expected:    PageContext{TopURL: "https://www.example.com/a", Hostname: "example.com", Referrer: "https://google.com"},
		},
		{
			description: "Hostname From Page",
			request:     &openrtb2.BidRequest{Site: &openrtb2.Site{Page: "https://www.example.com:8080/a?b=c"}},
			expected:    PageContext{TopURL: "https://www.example.com:8080/a?b=c", Hostname: "www.example.com"},
		},
	}

	for _, test := range testCases {
		assert.Equal(t, test.expected, pageContext(test.request), test.description)
	}
}

func TestBannerSizes(t *testing.T) {
	assert.Equal(t, []Size{{W: 728, H: 90}, {W: 970, H: 250}},
		bannerSizes(&openrtb2.Banner{W: pointer.Int64(300), H: pointer.Int64(250), Format: []openrtb2.Format{{W: 728, H: 90}, {W: 970, H: 250}}}))
	assert.Equal(t, []Size{{W: 300, H: 250}}, bannerSizes(&openrtb2.Banner{W: pointer.Int64(300), H: pointer.Int64(250)}))
	assert.Nil(t, bannerSizes(&openrtb2.Banner{W: pointer.Int64(300)}))
}

func TestMakeBidsUnmatchedAd(t *testing.T) {
	request := &openrtb2.BidRequest{Imp: []openrtb2.Imp{{ID: "imp-1"}}}
	response := &adapters.ResponseData{
		StatusCode: http.StatusOK,
		Body:       []byte(`{"sp":[{"k":"imp-1","a":[{"i":"x","pr":1}]},{"k":"other","a":[{"i":"imp-1","pr":2},{"i":"lost","pr":3}]}]}`),
	}

	bidResponse, errs := newTestBidder().MakeBids(request, &adapters.RequestData{}, response)

	require.Len(t, errs, 1)
	assert.Equal(t, errortypes.UnmatchedAdWarningCode, errortypes.ReadCode(errs[0]))
	assert.Empty(t, errortypes.FatalOnly(errs))

	require.Len(t, bidResponse.Bids, 2)
	assert.Equal(t, "imp-1", bidResponse.Bids[0].Bid.ImpID)
	assert.Equal(t, 1.0, bidResponse.Bids[0].Bid.Price)
	assert.Equal(t, "imp-1", bidResponse.Bids[1].Bid.ImpID)
	assert.Equal(t, 2.0, bidResponse.Bids[1].Bid.Price)
}

func TestMakeBidsCurrencyFromConfig(t *testing.T) {
	bidder := newTestBidder()
	bidder.cfg.Currency = "EUR"

	request := &openrtb2.BidRequest{Imp: []openrtb2.Imp{{ID: "imp-1"}}}
	response := &adapters.ResponseData{
		StatusCode: http.StatusOK,
		Body:       []byte(`{"sp":[{"k":"imp-1","a":[{"i":"x","id":"ad-1","pr":1}]}]}`),
	}

	bidResponse, errs := bidder.MakeBids(request, &adapters.RequestData{}, response)
	assert.Empty(t, errs)
	assert.Equal(t, "EUR", bidResponse.Currency)
	assert.Equal(t, "ad-1", bidResponse.Bids[0].Bid.ID)
}
