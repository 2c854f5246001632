package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	spotsDesc = prometheus.NewDesc(
		"parking_spots",
		"Number of parking spots by size and state.",
		[]string{"size", "state"}, nil,
	)
	openTicketsDesc = prometheus.NewDesc(
		"parking_open_tickets",
		"Number of tickets issued and not yet settled.",
		nil, nil,
	)
)

// spotCollector reads the handler's current lot at scrape time.
type spotCollector struct {
	handler *Handler
}

func (c *spotCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- spotsDesc
	ch <- openTicketsDesc
}

func (c *spotCollector) Collect(ch chan<- prometheus.Metric) {
	lot := c.handler.lot()
	if lot == nil {
		return
	}

	for _, s := range lot.Summary() {
		if s.Capacity == 0 {
			continue
		}
		occupied := s.Capacity - s.Available
		ch <- prometheus.MustNewConstMetric(spotsDesc, prometheus.GaugeValue, float64(s.Available), s.Size.String(), "available")
		ch <- prometheus.MustNewConstMetric(spotsDesc, prometheus.GaugeValue, float64(occupied), s.Size.String(), "occupied")
	}
	ch <- prometheus.MustNewConstMetric(openTicketsDesc, prometheus.GaugeValue, float64(lot.OpenTickets()))
}

func newRegistry(handler *Handler) *prometheus.Registry {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		&spotCollector{handler: handler},
	)
	return registry
}
