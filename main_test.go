package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/prebid/openrtb/v20/openrtb2"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prebid/prebid-eplanning/adapters"
	"github.com/prebid/prebid-eplanning/config"
	"github.com/prebid/prebid-eplanning/errortypes"
	"github.com/prebid/prebid-eplanning/openrtb_ext"
)

const cliRequests = `{"id":"r1","imp":[{"id":"div-1","banner":{"format":[{"w":300,"h":250}]},"ext":{"bidder":{"ci":"12345"}}}],"site":{"page":"https://example.com/","domain":"example.com"}}

not json
{"id":"r2","imp":[{"id":"div-2","banner":{},"ext":{"bidder":{}}}]}
`

func TestServe(t *testing.T) {
	v := viper.New()
	config.SetupViper(v, "")
	cfg, err := config.New(v)
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, serve("test", cfg, strings.NewReader(cliRequests), &out))

	decoder := json.NewDecoder(&out)

	var first requestOutput
	require.NoError(t, decoder.Decode(&first))
	assert.Equal(t, "eplanning", string(first.Bidder))
	require.Len(t, first.Requests, 1)
	assert.Equal(t, "GET", first.Requests[0].Method)
	assert.True(t, strings.HasPrefix(first.Requests[0].Uri, "https://ads.us.e-planning.net/hb/1/12345/1/example.com/ROS?e=div-1%3A300x250&"))
	assert.Empty(t, first.Errors)

	var second requestOutput
	require.NoError(t, decoder.Decode(&second))
	assert.Empty(t, second.Requests)
	require.Len(t, second.Errors, 1)
	assert.True(t, strings.HasPrefix(second.Errors[0], "request.imp[0].ext.bidder failed validation."), second.Errors[0])
	assert.Empty(t, second.Warnings)

	assert.False(t, decoder.More())
}

func TestServeDisabledBidder(t *testing.T) {
	v := viper.New()
	config.SetupViper(v, "")
	v.Set("adapters.eplanning.disabled", true)
	cfg, err := config.New(v)
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, serve("test", cfg, strings.NewReader(cliRequests), &out))
	assert.Empty(t, out.String())
}

func TestServeMissingSchemas(t *testing.T) {
	v := viper.New()
	config.SetupViper(v, "")
	v.Set("bidder_params_dir", "does/not/exist")
	cfg, err := config.New(v)
	require.NoError(t, err)

	var out bytes.Buffer
	assert.Error(t, serve("test", cfg, strings.NewReader(cliRequests), &out))
	assert.Empty(t, out.String())
}

// recordingBidder returns a fixed outcome and keeps the request it was given.
type recordingBidder struct {
	received *openrtb2.BidRequest
	errs     []error
}

func (b *recordingBidder) MakeRequests(request *openrtb2.BidRequest, reqInfo *adapters.ExtraRequestInfo) ([]*adapters.RequestData, []error) {
	b.received = request
	return []*adapters.RequestData{{Method: "GET", Uri: "https://ads.example.com/hb"}}, b.errs
}

func (b *recordingBidder) MakeBids(internalRequest *openrtb2.BidRequest, externalRequest *adapters.RequestData, response *adapters.ResponseData) (*adapters.BidderResponse, []error) {
	return nil, nil
}

func TestRunSplitsErrorsAndWarnings(t *testing.T) {
	validator, err := openrtb_ext.NewBidderParamsValidator("static/bidder-params")
	require.NoError(t, err)

	bidder := &recordingBidder{errs: []error{
		&errortypes.Warning{Message: "careful", WarningCode: errortypes.InvalidImpWarningCode},
		&errortypes.BadInput{Message: "bad"},
	}}
	bidders := map[openrtb_ext.BidderName]adapters.Bidder{openrtb_ext.BidderEPlanning: bidder}
	order := []openrtb_ext.BidderName{openrtb_ext.BidderEPlanning}

	in := `{"id":"r1","imp":[{"id":"ok","banner":{},"ext":{"bidder":{"ci":"1"}}},{"id":"no-ci","banner":{},"ext":{"bidder":{"sv":"x"}}},{"id":"no-ext","banner":{}}]}`

	var out bytes.Buffer
	require.NoError(t, run(bidders, order, validator, strings.NewReader(in), &out))

	var output requestOutput
	require.NoError(t, json.Unmarshal(out.Bytes(), &output))
	assert.Len(t, output.Requests, 1)
	assert.Equal(t, []string{"careful"}, output.Warnings)
	require.Len(t, output.Errors, 2)
	assert.True(t, strings.HasPrefix(output.Errors[0], "request.imp[1].ext.bidder failed validation."), output.Errors[0])
	assert.Equal(t, "bad", output.Errors[1])

	require.NotNil(t, bidder.received)
	require.Len(t, bidder.received.Imp, 2)
	assert.Equal(t, "ok", bidder.received.Imp[0].ID)
	assert.Equal(t, "no-ext", bidder.received.Imp[1].ID)
}

func TestRunSkipsBidderWithoutValidImps(t *testing.T) {
	validator, err := openrtb_ext.NewBidderParamsValidator("static/bidder-params")
	require.NoError(t, err)

	bidder := &recordingBidder{}
	bidders := map[openrtb_ext.BidderName]adapters.Bidder{openrtb_ext.BidderEPlanning: bidder}

	var out bytes.Buffer
	require.NoError(t, run(bidders, []openrtb_ext.BidderName{openrtb_ext.BidderEPlanning}, validator,
		strings.NewReader(`{"id":"r1","imp":[{"id":"a","banner":{},"ext":{"bidder":{"ci":""}}}]}`), &out))

	var output requestOutput
	require.NoError(t, json.Unmarshal(out.Bytes(), &output))
	assert.Empty(t, output.Requests)
	assert.Len(t, output.Errors, 1)
	assert.Nil(t, bidder.received)
}
