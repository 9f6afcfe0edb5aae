package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	mainConfig "github.com/prebid/prebid-eplanning/config"
	"github.com/prebid/prebid-eplanning/metrics"
	"github.com/prebid/prebid-eplanning/openrtb_ext"
)

var adapterList = []openrtb_ext.BidderName{openrtb_ext.BidderEPlanning}

func TestNilMetricsEngine(t *testing.T) {
	cfg := mainConfig.Configuration{}
	testEngine := NewMetricsEngine(&cfg, adapterList)

	_, ok := testEngine.MetricsEngine.(*NilMetricsEngine)
	assert.True(t, ok, "Expected a NilMetricsEngine, found %T", testEngine.MetricsEngine)
	assert.Nil(t, testEngine.GoMetrics)
	assert.Nil(t, testEngine.PrometheusMetrics)

	assert.NotPanics(t, func() {
		labels := metrics.AdapterLabels{Adapter: openrtb_ext.BidderEPlanning}
		testEngine.RecordAdapterRequest(labels)
		testEngine.RecordAdapterBidReceived(labels, openrtb_ext.BidTypeBanner, true)
		testEngine.RecordAdapterPrice(labels, 1.3)
	})
}

func TestGoMetricsEngine(t *testing.T) {
	cfg := mainConfig.Configuration{}
	cfg.Metrics.Influxdb.Host = "localhost"
	cfg.Metrics.Influxdb.MetricSendInterval = 3600
	testEngine := NewMetricsEngine(&cfg, adapterList)

	_, ok := testEngine.MetricsEngine.(*metrics.Metrics)
	assert.True(t, ok, "Expected a go-metrics engine, found %T", testEngine.MetricsEngine)
	assert.NotNil(t, testEngine.GoMetrics)
}

func TestPrometheusMetricsEngine(t *testing.T) {
	cfg := mainConfig.Configuration{}
	cfg.Metrics.Prometheus.Port = 8080
	testEngine := NewMetricsEngine(&cfg, adapterList)

	assert.NotNil(t, testEngine.PrometheusMetrics)
	assert.Equal(t, testEngine.PrometheusMetrics, testEngine.MetricsEngine)
}

func TestMultiMetricsEngine(t *testing.T) {
	cfg := mainConfig.Configuration{}
	cfg.Metrics.Influxdb.Host = "localhost"
	cfg.Metrics.Influxdb.MetricSendInterval = 3600
	cfg.Metrics.Prometheus.Port = 8080
	testEngine := NewMetricsEngine(&cfg, adapterList)

	multi, ok := testEngine.MetricsEngine.(*MultiMetricsEngine)
	if !ok {
		t.Fatalf("Expected a MultiMetricsEngine, found %T", testEngine.MetricsEngine)
	}
	assert.Len(t, *multi, 2)

	labels := metrics.AdapterLabels{Adapter: openrtb_ext.BidderEPlanning, AdapterBids: metrics.AdapterBidPresent}
	testEngine.RecordAdapterRequest(labels)
	testEngine.RecordAdapterBidReceived(labels, openrtb_ext.BidTypeBanner, true)
	testEngine.RecordAdapterPrice(labels, 1.3)

	am := testEngine.GoMetrics.AdapterMetrics[openrtb_ext.BidderEPlanning]
	assert.Equal(t, int64(1), am.GotBidsMeter.Count())
	assert.Equal(t, int64(1), am.MarkupMetrics[openrtb_ext.BidTypeBanner].AdmMeter.Count())
	assert.Equal(t, int64(1), am.PriceHistogram.Count())
}

func TestMultiMetricsEngineFansOut(t *testing.T) {
	first := &metrics.MetricsEngineMock{}
	second := &metrics.MetricsEngineMock{}
	labels := metrics.AdapterLabels{Adapter: openrtb_ext.BidderEPlanning, AdapterBids: metrics.AdapterBidNone}

	for _, m := range []*metrics.MetricsEngineMock{first, second} {
		m.On("RecordAdapterRequest", labels).Once()
		m.On("RecordAdapterBidReceived", labels, openrtb_ext.BidTypeBanner, false).Once()
		m.On("RecordAdapterPrice", labels, mock.AnythingOfType("float64")).Once()
	}

	engine := MultiMetricsEngine{first, second}
	engine.RecordAdapterRequest(labels)
	engine.RecordAdapterBidReceived(labels, openrtb_ext.BidTypeBanner, false)
	engine.RecordAdapterPrice(labels, 2.5)

	first.AssertExpectations(t)
	second.AssertExpectations(t)
}
