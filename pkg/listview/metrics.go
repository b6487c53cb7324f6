package listview

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	setups     prometheus.Counter
	binds      prometheus.Counter
	unbinds    prometheus.Counter
	teardowns  prometheus.Counter
	layouts    prometheus.Counter
	migrations prometheus.Counter
	active     prometheus.Gauge
	cached     prometheus.Gauge
}

// newMetrics registers the view metrics with r. A nil Registerer creates
// unregistered collectors.
func newMetrics(r prometheus.Registerer) *metrics {
	return &metrics{
		setups: promauto.With(r).NewCounter(prometheus.CounterOpts{
			Name: "listkit_listview_item_setups_total",
			Help: "Total number of list items set up by the factory.",
		}),
		binds: promauto.With(r).NewCounter(prometheus.CounterOpts{
			Name: "listkit_listview_item_binds_total",
			Help: "Total number of list items bound to a model position.",
		}),
		unbinds: promauto.With(r).NewCounter(prometheus.CounterOpts{
			Name: "listkit_listview_item_unbinds_total",
			Help: "Total number of list items unbound from a model position.",
		}),
		teardowns: promauto.With(r).NewCounter(prometheus.CounterOpts{
			Name: "listkit_listview_item_teardowns_total",
			Help: "Total number of list items torn down.",
		}),
		layouts: promauto.With(r).NewCounter(prometheus.CounterOpts{
			Name: "listkit_listview_layouts_total",
			Help: "Total number of layouts that changed the visible range.",
		}),
		migrations: promauto.With(r).NewCounter(prometheus.CounterOpts{
			Name: "listkit_listview_overflow_migrations_total",
			Help: "Total number of layouts whose visible items did not fit the inline buffer.",
		}),
		active: promauto.With(r).NewGauge(prometheus.GaugeOpts{
			Name: "listkit_listview_active_items",
			Help: "Number of items in the visible range.",
		}),
		cached: promauto.With(r).NewGauge(prometheus.GaugeOpts{
			Name: "listkit_listview_cached_items",
			Help: "Number of bound items kept outside the visible range.",
		}),
	}
}
