package config

import (
	"fmt"
	"time"
)

type Metrics struct {
	Influxdb   InfluxMetrics     `mapstructure:"influxdb"`
	Prometheus PrometheusMetrics `mapstructure:"prometheus"`
}

type InfluxMetrics struct {
	Host               string `mapstructure:"host"`
	Database           string `mapstructure:"database"`
	Measurement        string `mapstructure:"measurement"`
	Username           string `mapstructure:"username"`
	Password           string `mapstructure:"password"`
	AlignTimestamps    bool   `mapstructure:"align_timestamps"`
	MetricSendInterval int    `mapstructure:"metric_send_interval"`
}

type PrometheusMetrics struct {
	Port             int    `mapstructure:"port"`
	Namespace        string `mapstructure:"namespace"`
	Subsystem        string `mapstructure:"subsystem"`
	TimeoutMillisRaw int    `mapstructure:"timeout_ms"`
}

func (cfg *PrometheusMetrics) Timeout() time.Duration {
	return time.Duration(cfg.TimeoutMillisRaw) * time.Millisecond
}

func (cfg Metrics) validate(errs []error) []error {
	if cfg.Influxdb.Host != "" && cfg.Influxdb.MetricSendInterval <= 0 {
		errs = append(errs, fmt.Errorf("metrics.influxdb.metric_send_interval must be positive, got %d", cfg.Influxdb.MetricSendInterval))
	}
	if cfg.Prometheus.Port < 0 {
		errs = append(errs, fmt.Errorf("metrics.prometheus.port must not be negative, got %d", cfg.Prometheus.Port))
	}
	if cfg.Prometheus.Port > 0 && cfg.Prometheus.TimeoutMillisRaw <= 0 {
		errs = append(errs, fmt.Errorf("metrics.prometheus.timeout_ms must be positive, got %d", cfg.Prometheus.TimeoutMillisRaw))
	}
	return errs
}
