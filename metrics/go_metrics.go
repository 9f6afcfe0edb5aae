package metrics

import (
	"fmt"

	"github.com/golang/glog"
	"github.com/rcrowley/go-metrics"

	"github.com/prebid/prebid-eplanning/openrtb_ext"
)

// Metrics is the go-metrics implementation of the MetricsEngine.
type Metrics struct {
	MetricsRegistry metrics.Registry
	AdapterMetrics  map[openrtb_ext.BidderName]*AdapterMetrics
}

// AdapterMetrics houses the metrics for a particular adapter
type AdapterMetrics struct {
	NoBidMeter        metrics.Meter
	GotBidsMeter      metrics.Meter
	RequestMeter      metrics.Meter
	ErrorMeters       map[AdapterError]metrics.Meter
	PriceHistogram    metrics.Histogram
	BidsReceivedMeter metrics.Meter
	MarkupMetrics     map[openrtb_ext.BidType]*MarkupDeliveryMetrics
}

type MarkupDeliveryMetrics struct {
	AdmMeter  metrics.Meter
	NurlMeter metrics.Meter
}

// NewMetrics creates a new Metrics object with all the adapter metrics registered up front, so
// that the reporters see zero values rather than missing series.
func NewMetrics(registry metrics.Registry, exchanges []openrtb_ext.BidderName) *Metrics {
	newMetrics := &Metrics{
		MetricsRegistry: registry,
		AdapterMetrics:  make(map[openrtb_ext.BidderName]*AdapterMetrics, len(exchanges)),
	}

	for _, a := range exchanges {
		newMetrics.AdapterMetrics[a] = makeAdapterMetrics(registry, a)
	}

	return newMetrics
}

func makeAdapterMetrics(registry metrics.Registry, adapter openrtb_ext.BidderName) *AdapterMetrics {
	prefix := fmt.Sprintf("adapter.%s", adapter)

	am := &AdapterMetrics{
		NoBidMeter:        metrics.GetOrRegisterMeter(prefix+".requests.nobid", registry),
		GotBidsMeter:      metrics.GetOrRegisterMeter(prefix+".requests.gotbids", registry),
		RequestMeter:      metrics.GetOrRegisterMeter(prefix+".requests", registry),
		ErrorMeters:       make(map[AdapterError]metrics.Meter),
		PriceHistogram:    metrics.GetOrRegisterHistogram(prefix+".prices", registry, metrics.NewExpDecaySample(1028, 0.015)),
		BidsReceivedMeter: metrics.GetOrRegisterMeter(prefix+".bids_received", registry),
		MarkupMetrics:     make(map[openrtb_ext.BidType]*MarkupDeliveryMetrics),
	}

	for _, err := range AdapterErrors() {
		am.ErrorMeters[err] = metrics.GetOrRegisterMeter(fmt.Sprintf("%s.requests.%s", prefix, err), registry)
	}

	for _, bidType := range openrtb_ext.BidTypes() {
		am.MarkupMetrics[bidType] = &MarkupDeliveryMetrics{
			AdmMeter:  metrics.GetOrRegisterMeter(fmt.Sprintf("%s.%s.adm_bids_received", prefix, bidType), registry),
			NurlMeter: metrics.GetOrRegisterMeter(fmt.Sprintf("%s.%s.nurl_bids_received", prefix, bidType), registry),
		}
	}

	return am
}

// RecordAdapterRequest implements a part of the MetricsEngine interface
func (me *Metrics) RecordAdapterRequest(labels AdapterLabels) {
	am, ok := me.AdapterMetrics[labels.Adapter]
	if !ok {
		glog.Errorf("Trying to run adapter metrics on %s: adapter metrics not found", labels.Adapter)
		return
	}

	am.RequestMeter.Mark(1)
	switch labels.AdapterBids {
	case AdapterBidNone:
		am.NoBidMeter.Mark(1)
	case AdapterBidPresent:
		am.GotBidsMeter.Mark(1)
	default:
		glog.Warningf("No go-metrics logged for AdapterBids value: %s", labels.AdapterBids)
	}

	for err := range labels.AdapterErrors {
		if meter, ok := am.ErrorMeters[err]; ok {
			meter.Mark(1)
		}
	}
}

// RecordAdapterBidReceived implements a part of the MetricsEngine interface.
func (me *Metrics) RecordAdapterBidReceived(labels AdapterLabels, bidType openrtb_ext.BidType, hasAdm bool) {
	am, ok := me.AdapterMetrics[labels.Adapter]
	if !ok {
		glog.Errorf("Trying to run adapter bid metrics on %s: adapter metrics not found", labels.Adapter)
		return
	}

	am.BidsReceivedMeter.Mark(1)
	if metricsForType, ok := am.MarkupMetrics[bidType]; ok {
		if hasAdm {
			metricsForType.AdmMeter.Mark(1)
		} else {
			metricsForType.NurlMeter.Mark(1)
		}
	} else {
		glog.Errorf("bid/adm metrics map entry does not exist for type %s. This shouldn't happen.", bidType)
	}
}

// RecordAdapterPrice implements a part of the MetricsEngine interface. Generates a histogram of winning bid prices
func (me *Metrics) RecordAdapterPrice(labels AdapterLabels, cpm float64) {
	am, ok := me.AdapterMetrics[labels.Adapter]
	if !ok {
		glog.Errorf("Trying to run adapter price metrics on %s: adapter metrics not found", labels.Adapter)
		return
	}
	// Adapter metrics
	am.PriceHistogram.Update(int64(cpm))
}
