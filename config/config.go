package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/prebid/prebid-eplanning/errortypes"
	"github.com/prebid/prebid-eplanning/logger"
	"github.com/prebid/prebid-eplanning/openrtb_ext"
)

// Configuration specifies the static application config.
type Configuration struct {
	Adapters map[string]Adapter `mapstructure:"adapters"`
	Metrics  Metrics            `mapstructure:"metrics"`
	Logging  Logging            `mapstructure:"logging"`

	// BidderParamsDir holds one JSON schema per bidder for imp.ext.bidder.
	BidderParamsDir string `mapstructure:"bidder_params_dir"`
}

// Logging selects the backend behind the logger package.
type Logging struct {
	Type  string `mapstructure:"type"`
	Level string `mapstructure:"level"`
}

func (cfg Logging) validate(errs []error) []error {
	if _, err := logger.New(cfg.Type, cfg.Level); err != nil {
		errs = append(errs, fmt.Errorf("logging: %v", err))
	}
	return errs
}

func (cfg *Configuration) validate() []error {
	var errs []error
	for name, adapter := range cfg.Adapters {
		if adapter.Disabled {
			continue
		}
		errs = adapter.validate(name, errs)
	}
	errs = cfg.Metrics.validate(errs)
	errs = cfg.Logging.validate(errs)
	return errs
}

// New uses viper to get our server configurations.
func New(v *viper.Viper) (*Configuration, error) {
	var c Configuration
	if err := v.Unmarshal(&c); err != nil {
		return nil, err
	}

	if errs := c.validate(); len(errs) > 0 {
		return &c, errortypes.NewAggregateErrors("validation errors", errs)
	}

	logger.Infof("Loaded configuration for %d adapter(s)", len(c.Adapters))
	return &c, nil
}

// SetupViper sets up viper with the default values and, when filename is not empty, the
// config file search paths.
func SetupViper(v *viper.Viper, filename string) {
	if filename != "" {
		v.SetConfigName(filename)
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/config")
	}

	setAdapterDefaults(v, string(openrtb_ext.BidderEPlanning))

	v.SetDefault("metrics.influxdb.host", "")
	v.SetDefault("metrics.influxdb.database", "")
	v.SetDefault("metrics.influxdb.measurement", "")
	v.SetDefault("metrics.influxdb.username", "")
	v.SetDefault("metrics.influxdb.password", "")
	v.SetDefault("metrics.influxdb.align_timestamps", false)
	v.SetDefault("metrics.influxdb.metric_send_interval", 20)
	v.SetDefault("metrics.prometheus.port", 0)
	v.SetDefault("metrics.prometheus.namespace", "")
	v.SetDefault("metrics.prometheus.subsystem", "")
	v.SetDefault("metrics.prometheus.timeout_ms", 10000)
	v.SetDefault("logging.type", logger.TypeGlog)
	v.SetDefault("logging.level", "info")
	v.SetDefault("bidder_params_dir", "static/bidder-params")

	v.SetEnvPrefix("PBS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if filename != "" {
		if err := v.ReadInConfig(); err != nil {
			logger.Warnf("Viper failed to read config file %s, using defaults: %v", filename, err)
		} else {
			logger.Infof("Using config file %s", v.ConfigFileUsed())
		}
	}
}

func setAdapterDefaults(v *viper.Viper, bidder string) {
	prefix := "adapters." + bidder + "."
	defaults := DefaultEPlanning()

	v.SetDefault(prefix+"scheme", "https")
	v.SetDefault(prefix+"disabled", false)
	v.SetDefault(prefix+"extra_info", "")
	v.SetDefault(prefix+"exchange.default_host", defaults.DefaultHost)
	v.SetDefault(prefix+"exchange.api_version", defaults.APIVersion)
	v.SetDefault(prefix+"exchange.client_id", defaults.ClientID)
	v.SetDefault(prefix+"exchange.section", defaults.Section)
	v.SetDefault(prefix+"exchange.file_token", defaults.FileToken)
	v.SetDefault(prefix+"exchange.null_size", defaults.NullSize)
	v.SetDefault(prefix+"exchange.source", defaults.Source)
	v.SetDefault(prefix+"exchange.version_token", defaults.VersionToken)
	v.SetDefault(prefix+"exchange.ttl", defaults.TTL)
	v.SetDefault(prefix+"exchange.currency", defaults.Currency)
	v.SetDefault(prefix+"exchange.net_revenue", defaults.NetRevenue)
	v.SetDefault(prefix+"exchange.pixel_sync_url", defaults.PixelSyncURL)
}
