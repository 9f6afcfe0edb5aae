package usersync

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOptionsAllows(t *testing.T) {
	testCases := []struct {
		description    string
		options        Options
		expectedIFrame bool
		expectedImage  bool
	}{
		{
			description: "None",
			options:     Options{},
		},
		{
			description:   "Pixel Only",
			options:       Options{PixelEnabled: true},
			expectedImage: true,
		},
		{
			description:    "IFrame Only",
			options:        Options{IFrameEnabled: true},
			expectedIFrame: true,
		},
		{
			description:    "Both",
			options:        Options{PixelEnabled: true, IFrameEnabled: true},
			expectedIFrame: true,
			expectedImage:  true,
		},
	}

	for _, test := range testCases {
		assert.Equal(t, test.expectedIFrame, test.options.Allows(SyncTypeIFrame), test.description+":iframe")
		assert.Equal(t, test.expectedImage, test.options.Allows(SyncTypeImage), test.description+":image")
		assert.False(t, test.options.Allows(SyncTypeUnknown), test.description+":unknown")
	}
}
