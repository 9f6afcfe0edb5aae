package openrtb_ext

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseBidType(t *testing.T) {
	for _, bidType := range BidTypes() {
		parsed, err := ParseBidType(string(bidType))
		assert.NoError(t, err)
		assert.Equal(t, bidType, parsed)
	}

	_, err := ParseBidType("carousel")
	assert.EqualError(t, err, "invalid BidType: carousel")
}

func TestGetBidderName(t *testing.T) {
	name, ok := GetBidderName("eplanning")
	assert.True(t, ok)
	assert.Equal(t, BidderEPlanning, name)

	_, ok = GetBidderName("unknown")
	assert.False(t, ok)
}

func TestBidderParamsValidator(t *testing.T) {
	validator, err := NewBidderParamsValidator("../static/bidder-params")
	if err != nil {
		t.Fatalf("Failed to fetch the json-schemas. %v", err)
	}

	assert.NotEmpty(t, validator.Schema(BidderEPlanning))
	assert.NoError(t, validator.Validate(BidderEPlanning, []byte(`{"ci":"12345"}`)))
	assert.Error(t, validator.Validate(BidderEPlanning, []byte(`{}`)))
	assert.Error(t, validator.Validate(BidderName("unknown"), []byte(`{"ci":"12345"}`)))
}

func TestNewBidderParamsValidatorMissingDirectory(t *testing.T) {
	_, err := NewBidderParamsValidator("does/not/exist")
	assert.Error(t, err)
}
