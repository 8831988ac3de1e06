package manager

import "github.com/prometheus/client_golang/prometheus"

var (
	loadedModels = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "modelmgrd",
		Subsystem: "manager",
		Name:      "loaded_models",
		Help:      "Number of models currently loaded in memory",
	})

	loadsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "modelmgrd",
		Subsystem: "manager",
		Name:      "loads_total",
		Help:      "Total successful model loads",
	})

	unloadsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "modelmgrd",
		Subsystem: "manager",
		Name:      "unloads_total",
		Help:      "Total successful model unloads",
	})

	switchesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "modelmgrd",
		Subsystem: "manager",
		Name:      "switches_total",
		Help:      "Total active-model switches",
	})

	downloadsStartedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "modelmgrd",
		Subsystem: "manager",
		Name:      "downloads_started_total",
		Help:      "Total download tasks started through the manager",
	})
)

func init() {
	prometheus.MustRegister(loadedModels, loadsTotal, unloadsTotal, switchesTotal, downloadsStartedTotal)
}
