package usersync

// SyncType specifies the mechanism used to perform a user sync.
type SyncType string

const (
	// SyncTypeUnknown specifies the user sync type is invalid or not specified.
	SyncTypeUnknown SyncType = ""

	// SyncTypeIFrame specifies the user sync is to be performed within an HTML iframe.
	SyncTypeIFrame SyncType = "iframe"

	// SyncTypeImage specifies the user sync is to be performed by firing a tracking pixel.
	SyncTypeImage SyncType = "image"
)

// Options carries the sync mechanisms the page has enabled for a bidder.
type Options struct {
	PixelEnabled  bool `json:"pixelEnabled"`
	IFrameEnabled bool `json:"iframeEnabled"`
}

// Allows returns true if the given sync type is enabled.
func (o Options) Allows(syncType SyncType) bool {
	switch syncType {
	case SyncTypeImage:
		return o.PixelEnabled
	case SyncTypeIFrame:
		return o.IFrameEnabled
	default:
		return false
	}
}

// Sync represents a user sync for the user's device to perform.
type Sync struct {
	Type SyncType `json:"type"`
	URL  string   `json:"url"`
}
