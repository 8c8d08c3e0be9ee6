package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPMetrics_Observe(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics(reg)

	m.Observe("POST", "/api/add-to-cart", 200, 120*time.Millisecond)
	m.Observe("POST", "/api/add-to-cart", 200, 80*time.Millisecond)
	m.Observe("POST", "", 404, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("POST", "/api/add-to-cart", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("POST", "unknown", "404")))

	mfs, err := reg.Gather()
	require.NoError(t, err)
	h := findHistogram(mfs, "http_request_duration_seconds", "/api/add-to-cart")
	require.NotNil(t, h)
	assert.EqualValues(t, 2, h.GetSampleCount())
	assert.InDelta(t, 0.2, h.GetSampleSum(), 0.0001)
}

func TestShopMetrics_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewShopMetrics(reg)

	m.IncCheckout(CheckoutSuccess)
	m.IncCheckout(CheckoutOutOfStock)
	m.IncCheckout(CheckoutOutOfStock)
	m.IncCartOp("add")
	m.AddOrderedUnits(3)
	m.AddOrderedUnits(-1)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.checkouts.WithLabelValues(CheckoutSuccess)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.checkouts.WithLabelValues(CheckoutOutOfStock)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cartOps.WithLabelValues("add")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.items))
}

func TestMetrics_NilSafe(t *testing.T) {
	var h *HTTPMetrics
	var s *ShopMetrics
	assert.NotPanics(t, func() {
		h.Observe("GET", "/", 200, time.Second)
		s.IncCheckout(CheckoutError)
		s.IncCartOp("clear")
		s.AddOrderedUnits(1)
		NewShopMetrics(nil).IncCheckout(CheckoutSuccess)
	})
}

func findHistogram(mfs []*dto.MetricFamily, name, route string) *dto.Histogram {
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, metric := range mf.GetMetric() {
			for _, l := range metric.GetLabel() {
				if l.GetName() == "route" && l.GetValue() == route {
					return metric.GetHistogram()
				}
			}
		}
	}
	return nil
}
