package config

import (
	"fmt"
)

// Adapter holds the server side settings of one bidder.
type Adapter struct {
	// Scheme is prepended to the protocol-relative exchange URL when the request is made
	// from the server rather than from a page.
	Scheme           string `mapstructure:"scheme"`
	Disabled         bool   `mapstructure:"disabled"`
	ExtraAdapterInfo string `mapstructure:"extra_info"`

	// needed for E-Planning
	Exchange EPlanning `mapstructure:"exchange"`
}

// Validate returns the first problem found in the adapter settings, or nil.
func (cfg Adapter) Validate() error {
	if errs := cfg.validate("adapter", nil); len(errs) > 0 {
		return errs[0]
	}
	return nil
}

func (cfg Adapter) validate(name string, errs []error) []error {
	if cfg.Scheme != "http" && cfg.Scheme != "https" {
		errs = append(errs, fmt.Errorf("adapters.%s.scheme must be http or https, got %q", name, cfg.Scheme))
	}
	return cfg.Exchange.validate(name, errs)
}
