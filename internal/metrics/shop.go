package metrics

import "github.com/prometheus/client_golang/prometheus"

const (
	CheckoutSuccess    = "success"
	CheckoutOutOfStock = "out_of_stock"
	CheckoutEmptyCart  = "empty_cart"
	CheckoutError      = "error"
)

// ShopMetrics counts cart mutations and checkout outcomes.
type ShopMetrics struct {
	checkouts *prometheus.CounterVec
	cartOps   *prometheus.CounterVec
	items     prometheus.Counter
}

func NewShopMetrics(reg prometheus.Registerer) *ShopMetrics {
	if reg == nil {
		return &ShopMetrics{}
	}
	checkouts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "shop_checkouts_total",
		Help: "Checkout attempts by result.",
	}, []string{"result"})
	cartOps := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "shop_cart_operations_total",
		Help: "Cart mutations by operation.",
	}, []string{"op"})
	items := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "shop_ordered_units_total",
		Help: "Units sold through successful checkouts.",
	})
	reg.MustRegister(checkouts, cartOps, items)
	return &ShopMetrics{checkouts: checkouts, cartOps: cartOps, items: items}
}

func (m *ShopMetrics) IncCheckout(result string) {
	if m == nil || m.checkouts == nil {
		return
	}
	m.checkouts.WithLabelValues(normalizeLabel(result)).Inc()
}

func (m *ShopMetrics) AddOrderedUnits(n int64) {
	if m == nil || m.items == nil || n <= 0 {
		return
	}
	m.items.Add(float64(n))
}

func (m *ShopMetrics) IncCartOp(op string) {
	if m == nil || m.cartOps == nil {
		return
	}
	m.cartOps.WithLabelValues(normalizeLabel(op)).Inc()
}
