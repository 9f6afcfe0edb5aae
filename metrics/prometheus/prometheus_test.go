package prometheusmetrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/prebid/prebid-eplanning/config"
	"github.com/prebid/prebid-eplanning/metrics"
	"github.com/prebid/prebid-eplanning/openrtb_ext"
)

func createMetricsForTesting() *Metrics {
	return NewMetrics(config.PrometheusMetrics{
		Port:      8080,
		Namespace: "prebid",
		Subsystem: "server",
	}, prometheus.NewRegistry(), []openrtb_ext.BidderName{openrtb_ext.BidderEPlanning})
}

func TestMetricCountGatekeeping(t *testing.T) {
	m := createMetricsForTesting()

	metricFamilies, err := m.Gatherer.Gather()
	assert.NoError(t, err)
	assert.Len(t, metricFamilies, 4)

	for _, family := range metricFamilies {
		assert.Contains(t, family.GetName(), "prebid_server_adapter_")
	}
}

func TestMetricsPrefix(t *testing.T) {
	assert.Equal(t, "a_b_", metricsPrefix(config.PrometheusMetrics{Namespace: "a", Subsystem: "b"}))
	assert.Equal(t, "a_", metricsPrefix(config.PrometheusMetrics{Namespace: "a"}))
	assert.Equal(t, "b_", metricsPrefix(config.PrometheusMetrics{Subsystem: "b"}))
	assert.Equal(t, "", metricsPrefix(config.PrometheusMetrics{}))
}

func TestRecordAdapterRequest(t *testing.T) {
	m := createMetricsForTesting()

	m.RecordAdapterRequest(metrics.AdapterLabels{
		Adapter:     openrtb_ext.BidderEPlanning,
		AdapterBids: metrics.AdapterBidPresent,
	})
	m.RecordAdapterRequest(metrics.AdapterLabels{
		Adapter:       openrtb_ext.BidderEPlanning,
		AdapterBids:   metrics.AdapterBidNone,
		AdapterErrors: map[metrics.AdapterError]struct{}{metrics.AdapterErrorBadServerResponse: {}},
	})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.adapterRequests.WithLabelValues("eplanning", "true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.adapterRequests.WithLabelValues("eplanning", "false")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.adapterErrors.WithLabelValues("eplanning", "badserverresponse")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.adapterErrors.WithLabelValues("eplanning", "badinput")))
}

func TestRecordAdapterBidReceived(t *testing.T) {
	m := createMetricsForTesting()
	labels := metrics.AdapterLabels{Adapter: openrtb_ext.BidderEPlanning}

	m.RecordAdapterBidReceived(labels, openrtb_ext.BidTypeBanner, true)
	m.RecordAdapterBidReceived(labels, openrtb_ext.BidTypeBanner, false)
	m.RecordAdapterBidReceived(labels, openrtb_ext.BidTypeBanner, true)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.adapterBids.WithLabelValues("eplanning", "banner", "adm")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.adapterBids.WithLabelValues("eplanning", "banner", "nurl")))
}

func TestRecordAdapterPrice(t *testing.T) {
	m := createMetricsForTesting()

	m.RecordAdapterPrice(metrics.AdapterLabels{Adapter: openrtb_ext.BidderEPlanning}, 1.3)

	assert.Equal(t, 1, testutil.CollectAndCount(m.adapterPrices))
}
