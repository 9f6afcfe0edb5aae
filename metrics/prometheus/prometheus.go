package prometheusmetrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/prebid/prebid-eplanning/config"
	"github.com/prebid/prebid-eplanning/metrics"
	"github.com/prebid/prebid-eplanning/openrtb_ext"
)

// Metrics defines the Prometheus metrics backing the MetricsEngine implementation.
type Metrics struct {
	Registerer prometheus.Registerer
	Gatherer   *prometheus.Registry

	adapterRequests *prometheus.CounterVec
	adapterErrors   *prometheus.CounterVec
	adapterBids     *prometheus.CounterVec
	adapterPrices   *prometheus.HistogramVec
}

const (
	adapterLabel        = "adapter"
	adapterErrorLabel   = "adapter_error"
	bidTypeLabel        = "bid_type"
	hasBidsLabel        = "has_bids"
	markupDeliveryLabel = "markup_delivery"
)

const (
	markupDeliveryAdm  = "adm"
	markupDeliveryNurl = "nurl"
)

// NewMetrics initializes a new Prometheus metrics instance with preloaded label values.
func NewMetrics(cfg config.PrometheusMetrics, registry *prometheus.Registry, adapters []openrtb_ext.BidderName) *Metrics {
	priceBuckets := prometheus.LinearBuckets(0.1, 0.1, 200)

	m := Metrics{}
	m.Registerer = prometheus.WrapRegistererWithPrefix(metricsPrefix(cfg), registry)
	m.Gatherer = registry

	m.adapterRequests = newCounter(m.Registerer,
		"adapter_requests",
		"Count of requests labeled by adapter and whether bids were returned.",
		[]string{adapterLabel, hasBidsLabel})

	m.adapterErrors = newCounter(m.Registerer,
		"adapter_errors",
		"Count of errors labeled by adapter and error type.",
		[]string{adapterLabel, adapterErrorLabel})

	m.adapterBids = newCounter(m.Registerer,
		"adapter_bids",
		"Count of bids labeled by adapter, bid type and markup delivery type (adm or nurl).",
		[]string{adapterLabel, bidTypeLabel, markupDeliveryLabel})

	m.adapterPrices = newHistogramVec(m.Registerer,
		"adapter_prices",
		"Monetary value of the bids labeled by adapter.",
		[]string{adapterLabel},
		priceBuckets)

	preloadLabelValues(&m, adapters)

	return &m
}

func metricsPrefix(cfg config.PrometheusMetrics) string {
	if cfg.Namespace != "" && cfg.Subsystem != "" {
		return cfg.Namespace + "_" + cfg.Subsystem + "_"
	} else if cfg.Namespace != "" {
		return cfg.Namespace + "_"
	} else if cfg.Subsystem != "" {
		return cfg.Subsystem + "_"
	}
	return ""
}

func newCounter(registry prometheus.Registerer, name, help string, labels []string) *prometheus.CounterVec {
	opts := prometheus.CounterOpts{
		Name: name,
		Help: help,
	}
	counter := prometheus.NewCounterVec(opts, labels)
	registry.MustRegister(counter)
	return counter
}

func newHistogramVec(registry prometheus.Registerer, name, help string, labels []string, buckets []float64) *prometheus.HistogramVec {
	opts := prometheus.HistogramOpts{
		Name:    name,
		Help:    help,
		Buckets: buckets,
	}
	histogram := prometheus.NewHistogramVec(opts, labels)
	registry.MustRegister(histogram)
	return histogram
}

func preloadLabelValues(m *Metrics, adapters []openrtb_ext.BidderName) {
	for _, adapter := range adapters {
		for _, hasBids := range []bool{true, false} {
			m.adapterRequests.WithLabelValues(string(adapter), strconv.FormatBool(hasBids))
		}
		for _, err := range metrics.AdapterErrors() {
			m.adapterErrors.WithLabelValues(string(adapter), string(err))
		}
		for _, bidType := range openrtb_ext.BidTypes() {
			m.adapterBids.WithLabelValues(string(adapter), string(bidType), markupDeliveryAdm)
			m.adapterBids.WithLabelValues(string(adapter), string(bidType), markupDeliveryNurl)
		}
		m.adapterPrices.WithLabelValues(string(adapter))
	}
}

func (m *Metrics) RecordAdapterRequest(labels metrics.AdapterLabels) {
	adapter := string(labels.Adapter)

	m.adapterRequests.With(prometheus.Labels{
		adapterLabel: adapter,
		hasBidsLabel: strconv.FormatBool(labels.AdapterBids == metrics.AdapterBidPresent),
	}).Inc()

	for err := range labels.AdapterErrors {
		m.adapterErrors.With(prometheus.Labels{
			adapterLabel:      adapter,
			adapterErrorLabel: string(err),
		}).Inc()
	}
}

func (m *Metrics) RecordAdapterBidReceived(labels metrics.AdapterLabels, bidType openrtb_ext.BidType, hasAdm bool) {
	markupDelivery := markupDeliveryNurl
	if hasAdm {
		markupDelivery = markupDeliveryAdm
	}

	m.adapterBids.With(prometheus.Labels{
		adapterLabel:        string(labels.Adapter),
		bidTypeLabel:        string(bidType),
		markupDeliveryLabel: markupDelivery,
	}).Inc()
}

func (m *Metrics) RecordAdapterPrice(labels metrics.AdapterLabels, cpm float64) {
	m.adapterPrices.With(prometheus.Labels{
		adapterLabel: string(labels.Adapter),
	}).Observe(cpm)
}
