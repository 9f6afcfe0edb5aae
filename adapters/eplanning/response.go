package eplanning

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/buger/jsonparser"
	"github.com/prebid/prebid-eplanning/logger"
)

// ServerResponse is the body returned by the exchange. Every field is optional. Entries that
// cannot be decoded are skipped one by one, so a broken sync list or ad never costs the others.
type ServerResponse struct {
	Spaces []Space     `json:"sp"`
	Syncs  []SyncEntry `json:"cs"`
}

// Space groups the ads returned for one slot of the "e" descriptor.
type Space struct {
	Name string `json:"k"`
	Ads  []Ad   `json:"a"`
}

func (r *ServerResponse) UnmarshalJSON(data []byte) error {
	*r = ServerResponse{}
	if value, dataType, _, err := jsonparser.Get(data, "sp"); err == nil {
		r.Spaces = decodeSpaces(value, dataType)
	}
	if value, dataType, _, err := jsonparser.Get(data, "cs"); err == nil {
		r.Syncs = decodeSyncs(value, dataType)
	}
	return nil
}

func decodeSpaces(value []byte, dataType jsonparser.ValueType) []Space {
	if dataType != jsonparser.Array {
		logger.Debugf("eplanning: ignoring \"sp\" of type %v", dataType)
		return nil
	}

	var spaces []Space
	index := 0
	jsonparser.ArrayEach(value, func(entry []byte, entryType jsonparser.ValueType, _ int, _ error) {
		defer func() { index++ }()
		if entryType != jsonparser.Object {
			logger.Debugf("eplanning: skipping space %d of type %v", index, entryType)
			return
		}
		spaces = append(spaces, decodeSpace(entry))
	})
	return spaces
}

func decodeSpace(data []byte) Space {
	var space Space
	if name, nameType, _, err := jsonparser.Get(data, "k"); err == nil {
		space.Name = parseString(name, nameType)
	}

	ads, adsType, _, err := jsonparser.Get(data, "a")
	if err != nil {
		return space
	}
	if adsType != jsonparser.Array {
		logger.Debugf("eplanning: ignoring ads of space %q, type %v", space.Name, adsType)
		return space
	}

	index := 0
	jsonparser.ArrayEach(ads, func(entry []byte, entryType jsonparser.ValueType, _ int, _ error) {
		defer func() { index++ }()
		if entryType != jsonparser.Object {
			logger.Debugf("eplanning: skipping ad %d of space %q, type %v", index, space.Name, entryType)
			return
		}
		var ad Ad
		if err := ad.UnmarshalJSON(entry); err != nil {
			logger.Debugf("eplanning: skipping ad %d of space %q: %v", index, space.Name, err)
			return
		}
		space.Ads = append(space.Ads, ad)
	})
	return space
}

func decodeSyncs(value []byte, dataType jsonparser.ValueType) []SyncEntry {
	if dataType != jsonparser.Array {
		logger.Debugf("eplanning: ignoring \"cs\" of type %v", dataType)
		return nil
	}

	var syncs []SyncEntry
	jsonparser.ArrayEach(value, func(entry []byte, entryType jsonparser.ValueType, _ int, _ error) {
		syncs = append(syncs, decodeSyncEntry(entry, entryType))
	})
	return syncs
}

// Ad is one offer. The exchange may send numeric fields as JSON strings, so decoding accepts both.
type Ad struct {
	ImpressionID string
	AdID         string
	Price        float64
	Width        int64
	Height       int64
	AdM          string
	CrID         string
}

func (ad *Ad) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}
	return jsonparser.ObjectEach(data, func(key []byte, value []byte, dataType jsonparser.ValueType, offset int) error {
		switch string(key) {
		case "i":
			ad.ImpressionID = parseString(value, dataType)
		case "id":
			ad.AdID = parseString(value, dataType)
		case "pr":
			ad.Price = parseFloat(value, dataType)
		case "w":
			ad.Width = parseInt(value, dataType)
		case "h":
			ad.Height = parseInt(value, dataType)
		case "adm":
			ad.AdM = parseString(value, dataType)
		case "crid":
			ad.CrID = parseString(value, dataType)
		}
		return nil
	})
}

// SyncEntryKind tells apart the shapes a "cs" entry can take.
type SyncEntryKind int

const (
	SyncEntryUnknown SyncEntryKind = iota
	// SyncEntryPixel is a plain string entry.
	SyncEntryPixel
	// SyncEntryObject is an object entry of the form {"u": url, "ifr": flag}.
	SyncEntryObject
)

// SyncEntry is one element of the "cs" list.
type SyncEntry struct {
	Kind   SyncEntryKind
	Value  string
	URL    string
	IFrame bool
}

func (s *SyncEntry) UnmarshalJSON(data []byte) error {
	value, dataType, _, err := jsonparser.Get(data)
	if err != nil {
		return err
	}
	*s = decodeSyncEntry(value, dataType)
	return nil
}

func decodeSyncEntry(value []byte, dataType jsonparser.ValueType) SyncEntry {
	switch dataType {
	case jsonparser.String:
		return SyncEntry{Kind: SyncEntryPixel, Value: parseString(value, dataType)}
	case jsonparser.Object:
		entry := SyncEntry{Kind: SyncEntryObject}
		if u, uType, _, err := jsonparser.Get(value, "u"); err == nil {
			entry.URL = parseString(u, uType)
		}
		if ifr, ifrType, _, err := jsonparser.Get(value, "ifr"); err == nil {
			entry.IFrame = parseTruthy(ifr, ifrType)
		}
		return entry
	}
	return SyncEntry{Kind: SyncEntryUnknown}
}

// ParseServerResponse decodes a response body. An empty body is an empty response and only a
// body that is not valid JSON is an error.
func ParseServerResponse(body []byte) (*ServerResponse, error) {
	var response ServerResponse
	if len(bytes.TrimSpace(body)) == 0 {
		return &response, nil
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

// NormalizedBid is an ad in the shape shared by every bidder.
type NormalizedBid struct {
	RequestID  string  `json:"requestId"`
	AdID       string  `json:"adId,omitempty"`
	CPM        float64 `json:"cpm"`
	Width      int64   `json:"width"`
	Height     int64   `json:"height"`
	Ad         string  `json:"ad"`
	TTL        int64   `json:"ttl"`
	CreativeID string  `json:"creativeId"`
	NetRevenue bool    `json:"netRevenue"`
	Currency   string  `json:"currency"`
	AdUnitCode string  `json:"adUnitCode,omitempty"`
}

// InterpretResponse emits one bid per ad, in response order.
func (a *Adapter) InterpretResponse(response *ServerResponse) []NormalizedBid {
	bids := make([]NormalizedBid, 0)
	if response == nil {
		return bids
	}

	for _, space := range response.Spaces {
		for _, ad := range space.Ads {
			bids = append(bids, NormalizedBid{
				RequestID:  ad.ImpressionID,
				AdID:       ad.AdID,
				CPM:        ad.Price,
				Width:      ad.Width,
				Height:     ad.Height,
				Ad:         ad.AdM,
				TTL:        a.cfg.TTL,
				CreativeID: ad.CrID,
				NetRevenue: a.cfg.NetRevenue,
				Currency:   a.cfg.Currency,
				AdUnitCode: space.Name,
			})
		}
	}
	return bids
}

func parseString(value []byte, dataType jsonparser.ValueType) string {
	switch dataType {
	case jsonparser.String:
		if s, err := jsonparser.ParseString(value); err == nil {
			return s
		}
	case jsonparser.Number:
		return string(value)
	}
	return ""
}

func parseFloat(value []byte, dataType jsonparser.ValueType) float64 {
	switch dataType {
	case jsonparser.Number:
		if f, err := jsonparser.ParseFloat(value); err == nil {
			return f
		}
	case jsonparser.String:
		if f, err := strconv.ParseFloat(strings.TrimSpace(parseString(value, dataType)), 64); err == nil {
			return f
		}
	}
	return 0
}

func parseInt(value []byte, dataType jsonparser.ValueType) int64 {
	switch dataType {
	case jsonparser.Number, jsonparser.String:
		s := strings.TrimSpace(parseString(value, dataType))
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return i
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return int64(f)
		}
	}
	return 0
}

// parseTruthy follows the loose truthiness the exchange relies on for flags.
func parseTruthy(value []byte, dataType jsonparser.ValueType) bool {
	switch dataType {
	case jsonparser.Boolean:
		b, err := jsonparser.ParseBoolean(value)
		return err == nil && b
	case jsonparser.Number:
		f, err := jsonparser.ParseFloat(value)
		return err == nil && f != 0
	case jsonparser.String:
		return len(value) > 0
	}
	return false
}
