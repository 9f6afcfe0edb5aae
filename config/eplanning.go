package config

import (
	"fmt"

	validator "github.com/asaskevich/govalidator"
	"golang.org/x/text/currency"
)

// EPlanning groups the constants of the E-Planning ad server protocol. The zero value is not
// usable; start from DefaultEPlanning.
type EPlanning struct {
	// DefaultHost is used when no bid request in the batch sets "sv".
	DefaultHost string `mapstructure:"default_host"`
	APIVersion  string `mapstructure:"api_version"`
	ClientID    string `mapstructure:"client_id"`
	Section     string `mapstructure:"section"`
	// FileToken replaces the page hostname and URL when the page has none, e.g. file:// pages.
	FileToken string `mapstructure:"file_token"`
	// NullSize is sent for ad units that declare no sizes.
	NullSize     string `mapstructure:"null_size"`
	Source       string `mapstructure:"source"`
	VersionToken string `mapstructure:"version_token"`
	TTL          int64  `mapstructure:"ttl"`
	Currency     string `mapstructure:"currency"`
	NetRevenue   bool   `mapstructure:"net_revenue"`
	// PixelSyncURL is emitted for every plain-string sync entry in a response.
	PixelSyncURL string `mapstructure:"pixel_sync_url"`
}

// DefaultEPlanning returns the protocol constants used by the public E-Planning ad servers.
func DefaultEPlanning() EPlanning {
	return EPlanning{
		DefaultHost:  "ads.us.e-planning.net",
		APIVersion:   "1",
		ClientID:     "1",
		Section:      "ROS",
		FileToken:    "file",
		NullSize:     "1x1",
		Source:       "pbjs",
		VersionToken: "$prebid.version$",
		TTL:          360,
		Currency:     currency.USD.String(),
		NetRevenue:   true,
		PixelSyncURL: "sync",
	}
}

func (cfg EPlanning) validate(name string, errs []error) []error {
	if !validator.IsDNSName(cfg.DefaultHost) {
		errs = append(errs, fmt.Errorf("adapters.%s.exchange.default_host %q is not a valid host name", name, cfg.DefaultHost))
	}
	if _, err := currency.ParseISO(cfg.Currency); err != nil {
		errs = append(errs, fmt.Errorf("adapters.%s.exchange.currency %q is not an ISO 4217 code: %v", name, cfg.Currency, err))
	}
	if cfg.TTL <= 0 {
		errs = append(errs, fmt.Errorf("adapters.%s.exchange.ttl must be positive, got %d", name, cfg.TTL))
	}

	required := []struct {
		key   string
		value string
	}{
		{"api_version", cfg.APIVersion},
		{"client_id", cfg.ClientID},
		{"section", cfg.Section},
		{"file_token", cfg.FileToken},
		{"null_size", cfg.NullSize},
		{"source", cfg.Source},
		{"version_token", cfg.VersionToken},
	}
	for _, r := range required {
		if r.value == "" {
			errs = append(errs, fmt.Errorf("adapters.%s.exchange.%s must not be empty", name, r.key))
		}
	}
	return errs
}
