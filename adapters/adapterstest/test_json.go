package adapterstest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/prebid/openrtb/v20/openrtb2"
	"github.com/prebid/prebid-eplanning/adapters"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yudai/gojsondiff"
	"github.com/yudai/gojsondiff/formatter"
)

// RunJSONBidderTest is a helper method intended to unit test Bidders' adapters.
// It requires that:
//
//   - Bidders communicate with external servers over HTTP.
//   - The HTTP request bodies are legal JSON.
//
// Although the project does not require it, it's a good idea to make test files for these
// request types, since they are more likely to trigger bugs in adapter code.
//
// Bidder implementations can reuse this code by creating test files with the following structure:
//
//	{bidder}test/exemplary/{scenario}.json
//	{bidder}test/supplemental/{scenario}.json
//
// Files in "exemplary" should be the most common, important use-cases for the Bidder. They must not
// produce any errors. Files in "supplemental" cover edge cases and error paths.
//
// Each file describes one scenario with the format described by testSpec.
func RunJSONBidderTest(t *testing.T, rootDir string, bidder adapters.Bidder) {
	runTests(t, filepath.Join(rootDir, "exemplary"), bidder, false)
	runTests(t, filepath.Join(rootDir, "supplemental"), bidder, true)
}

func runTests(t *testing.T, directory string, bidder adapters.Bidder, allowErrors bool) {
	t.Helper()

	entries, err := os.ReadDir(directory)
	if os.IsNotExist(err) {
		return
	}
	require.NoError(t, err, "Failed to read folder %s", directory)

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		filename := filepath.Join(directory, entry.Name())
		t.Run(entry.Name(), func(t *testing.T) {
			spec, err := loadFile(filename)
			require.NoError(t, err, "Failed to load contents of file %s", filename)

			if !allowErrors && spec.hasErrors() {
				t.Fatalf("Exemplary spec %s must not expect errors.", filename)
			}
			runSpec(t, filename, spec, bidder)
		})
	}
}

// loadFile reads and parses a file as a test case. If something goes wrong, it returns an error.
func loadFile(filename string) (*testSpec, error) {
	specData, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("Failed to read file %s: %v", filename, err)
	}

	var spec testSpec
	if err := json.Unmarshal(specData, &spec); err != nil {
		return nil, fmt.Errorf("Failed to unmarshal JSON from file: %v", err)
	}

	return &spec, nil
}

// runSpec runs a single test case. It will make sure:
//
//   - That the Bidder does not return nil HTTP requests, bids, or errors inside their lists
//   - That the Bidder's HTTP calls match the spec's expectations
//   - That the Bidder's Bids match the spec's expectations
//   - That the Bidder's errors match the spec's expectations
func runSpec(t *testing.T, filename string, spec *testSpec, bidder adapters.Bidder) {
	reqInfo := &adapters.ExtraRequestInfo{PbsEntryPoint: "auction"}

	requests, errs := bidder.MakeRequests(&spec.BidRequest, reqInfo)
	diffErrorLists(t, fmt.Sprintf("%s: MakeRequests", filename), errs, spec.MakeRequestErrors)
	diffHttpRequestLists(t, filename, requests, spec.HttpCalls)

	bidResponses := make([]*adapters.BidderResponse, 0)
	var bidsErrs []error
	for i := 0; i < len(spec.HttpCalls) && i < len(requests); i++ {
		bids, errs := bidder.MakeBids(&spec.BidRequest, requests[i], spec.HttpCalls[i].Response.ToResponseData())
		bidsErrs = append(bidsErrs, errs...)
		if bids != nil {
			bidResponses = append(bidResponses, bids)
		}
	}

	diffErrorLists(t, fmt.Sprintf("%s: MakeBids", filename), bidsErrs, spec.MakeBidsErrors)
	diffBidResponses(t, filename, bidResponses, spec.BidResponses)
}

type testSpec struct {
	BidRequest        openrtb2.BidRequest     `json:"mockBidRequest"`
	HttpCalls         []httpCall              `json:"httpCalls"`
	BidResponses      []expectedBidResponse   `json:"expectedBidResponses"`
	MakeRequestErrors []testSpecExpectedError `json:"expectedMakeRequestsErrors"`
	MakeBidsErrors    []testSpecExpectedError `json:"expectedMakeBidsErrors"`
}

type testSpecExpectedError struct {
	Comparison string `json:"comparison"`
	Value      string `json:"value"`
}

func (spec *testSpec) hasErrors() bool {
	return len(spec.MakeRequestErrors) > 0 || len(spec.MakeBidsErrors) > 0
}

type httpCall struct {
	Request  httpRequest  `json:"expectedRequest"`
	Response httpResponse `json:"mockResponse"`
}

type httpRequest struct {
	Method  string          `json:"method"`
	Uri     string          `json:"uri"`
	Body    json.RawMessage `json:"body"`
	Headers http.Header     `json:"headers"`
	ImpIDs  []string        `json:"impIDs"`
}

type httpResponse struct {
	Status  int             `json:"status"`
	Body    json.RawMessage `json:"body"`
	Headers http.Header     `json:"headers"`
}

// ToResponseData turns the mocked response into what the bidder receives. A string body is
// passed through unquoted so that fixtures can describe bodies which are not valid JSON.
func (resp *httpResponse) ToResponseData() *adapters.ResponseData {
	body := []byte(resp.Body)
	var text string
	if err := json.Unmarshal(resp.Body, &text); err == nil {
		body = []byte(text)
	}
	return &adapters.ResponseData{
		StatusCode: resp.Status,
		Body:       body,
		Headers:    resp.Headers,
	}
}

type expectedBidResponse struct {
	Bids     []expectedBid `json:"bids"`
	Currency string        `json:"currency"`
}

type expectedBid struct {
	Bid  json.RawMessage `json:"bid"`
	Type string          `json:"type"`
	Seat string          `json:"seat"`
}

func diffHttpRequestLists(t *testing.T, filename string, actual []*adapters.RequestData, expected []httpCall) {
	t.Helper()

	if len(expected) != len(actual) {
		t.Fatalf("%s: MakeRequests had wrong request count. Expected %d, got %d", filename, len(expected), len(actual))
	}

	for i := 0; i < len(actual); i++ {
		diffHttpRequests(t, fmt.Sprintf("%s: httpRequest[%d]", filename, i), actual[i], &(expected[i].Request))
	}
}

func diffHttpRequests(t *testing.T, description string, actual *adapters.RequestData, expected *httpRequest) {
	t.Helper()

	require.NotNil(t, actual, "%s: Bidders cannot return nil HTTP calls", description)

	assert.Equal(t, expected.Uri, actual.Uri, "%s: uri", description)
	if expected.Method != "" {
		assert.Equal(t, expected.Method, actual.Method, "%s: method", description)
	}
	if expected.Headers != nil {
		assert.Equal(t, expected.Headers, actual.Headers, "%s: headers", description)
	}
	if expected.ImpIDs != nil {
		assert.ElementsMatch(t, expected.ImpIDs, actual.ImpIDs, "%s: impIDs", description)
	}
	if len(expected.Body) > 0 {
		diffJson(t, description+": body", actual.Body, expected.Body)
	} else {
		assert.Empty(t, actual.Body, "%s: body", description)
	}
}

func diffBidResponses(t *testing.T, filename string, actual []*adapters.BidderResponse, expected []expectedBidResponse) {
	t.Helper()

	if len(actual) != len(expected) {
		t.Fatalf("%s: MakeBids returned wrong bid response count. Expected %d, got %d", filename, len(expected), len(actual))
	}

	for i := 0; i < len(actual); i++ {
		description := fmt.Sprintf("%s: bidResponse[%d]", filename, i)
		if expected[i].Currency != "" {
			assert.Equal(t, expected[i].Currency, actual[i].Currency, "%s: currency", description)
		}
		diffBidLists(t, description, actual[i].Bids, expected[i].Bids)
	}
}

func diffBidLists(t *testing.T, description string, actual []*adapters.TypedBid, expected []expectedBid) {
	t.Helper()

	if len(actual) != len(expected) {
		t.Fatalf("%s: Expected %d bids, got %d", description, len(expected), len(actual))
	}

	for i := 0; i < len(actual); i++ {
		bidDescription := fmt.Sprintf("%s: typedBid[%d]", description, i)
		require.NotNil(t, actual[i], "%s: Bidders cannot return nil bids", bidDescription)
		require.NotNil(t, actual[i].Bid, "%s: Bidders cannot return nil bids", bidDescription)

		assert.Equal(t, expected[i].Type, string(actual[i].BidType), "%s: type", bidDescription)
		if expected[i].Seat != "" {
			assert.Equal(t, expected[i].Seat, string(actual[i].Seat), "%s: seat", bidDescription)
		}

		actualJson, err := json.Marshal(actual[i].Bid)
		require.NoError(t, err, "%s: failed to marshal actual bid", bidDescription)
		diffJson(t, bidDescription+": bid", actualJson, expected[i].Bid)
	}
}

func diffErrorLists(t *testing.T, description string, actual []error, expected []testSpecExpectedError) {
	t.Helper()

	if len(expected) != len(actual) {
		t.Fatalf("%s had wrong error count. Expected %d, got %d (%v)", description, len(expected), len(actual), actual)
	}
	for i := 0; i < len(actual); i++ {
		switch expected[i].Comparison {
		case "literal":
			assert.Equal(t, expected[i].Value, actual[i].Error(), "%s: error[%d]", description, i)
		case "regex":
			matched, err := regexp.MatchString(expected[i].Value, actual[i].Error())
			require.NoError(t, err, "%s: invalid regex %q", description, expected[i].Value)
			assert.True(t, matched, "%s: error[%d] %q does not match %q", description, i, actual[i].Error(), expected[i].Value)
		default:
			t.Fatalf(`invalid 'comparison' type %q. Expected "literal" or "regex"`, expected[i].Comparison)
		}
	}
}

// diffJson compares two JSON byte arrays for structural equality. It will produce an error if either
// byte array is not actually JSON.
func diffJson(t *testing.T, description string, actual []byte, expected []byte) {
	t.Helper()

	if len(actual) == 0 {
		if len(expected) != 0 {
			t.Errorf("%s: actual JSON is empty but expected is not.", description)
		}
		return
	}

	differ := gojsondiff.New()
	diff, err := differ.Compare(actual, expected)
	if err != nil {
		t.Fatalf("%s: json diff failed: %v", description, err)
	}

	if diff.Modified() {
		var left interface{}
		if err := json.Unmarshal(actual, &left); err != nil {
			t.Fatalf("%s: json did not match, but unmarshalling failed: %v", description, err)
		}
		printer := formatter.NewAsciiFormatter(left, formatter.AsciiFormatterConfig{
			ShowArrayIndex: true,
		})
		output, err := printer.Format(diff)
		if err != nil {
			t.Errorf("%s: json diff didn't match, but diff formatting failed: %v", description, err)
		} else {
			t.Errorf("%s: json diff didn't match expected. Diff is:\n%s", description, output)
		}
	}
}
