package eplanning

import (
	"github.com/prebid/prebid-eplanning/logger"
	"github.com/prebid/prebid-eplanning/usersync"
)

// GetUserSyncs turns the "cs" entries of the first response into sync directives the page allows.
//
// Plain string entries become pixel syncs against the configured PixelSyncURL; the entry value
// itself is not used. Object entries become iframe syncs when their "ifr" flag is set.
func (a *Adapter) GetUserSyncs(options usersync.Options, responses []*ServerResponse) []usersync.Sync {
	syncs := make([]usersync.Sync, 0)
	if len(responses) == 0 || responses[0] == nil {
		return syncs
	}

	for i, entry := range responses[0].Syncs {
		switch {
		case entry.Kind == SyncEntryPixel && options.Allows(usersync.SyncTypeImage):
			syncs = append(syncs, usersync.Sync{Type: usersync.SyncTypeImage, URL: a.cfg.PixelSyncURL})
		case entry.Kind == SyncEntryObject && entry.IFrame && options.Allows(usersync.SyncTypeIFrame):
			syncs = append(syncs, usersync.Sync{Type: usersync.SyncTypeIFrame, URL: entry.URL})
		default:
			logger.Debugf("eplanning: skipping sync entry %d", i)
		}
	}
	return syncs
}
