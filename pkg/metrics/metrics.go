// Package metrics defines the prometheus counters and gauges exported by
// the router, and a helper to serve them on a separate listener.
package metrics

import (
	"fmt"
	"log"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Delivered counts datagrams fully reassembled and handed to the
	// local sink.
	//
	// Provides metric: udprouter_delivered_total
	Delivered = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "udprouter_delivered_total",
		Help: "Total number of datagrams delivered to this router's local sink.",
	})

	// Forwarded counts outbound fragments sent to a next hop.
	//
	// Provides metric: udprouter_forwarded_total
	Forwarded = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "udprouter_forwarded_total",
		Help: "Total number of outbound fragments sent to a next hop.",
	})

	// DroppedTotal counts packets dropped, partitioned by reason.
	//
	// Provides metric: udprouter_dropped_total{reason="..."}
	// Example usage:
	//   metrics.DroppedTotal.With(prometheus.Labels{"reason": "ttl_expired"}).Inc()
	DroppedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "udprouter_dropped_total",
		Help: "Total number of packets dropped, by reason.",
	}, []string{"reason"})

	// OpenFragmentGroups gauges how many fragment trains are currently
	// accumulating, awaiting completion.
	//
	// Provides metric: udprouter_open_fragment_groups
	OpenFragmentGroups = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "udprouter_open_fragment_groups",
		Help: "Number of fragment groups currently accumulating.",
	})
)

// Reasons used with DroppedTotal's "reason" label.
const (
	ReasonMalformedHeader = "malformed_header"
	ReasonTTLExpired      = "ttl_expired"
	ReasonNoRoute         = "no_route"
)

// Serve registers all metrics and starts an HTTP server exposing them at
// /metrics on addr. It returns immediately; the server runs in the
// background for the life of the process.
func Serve(addr string) {
	if addr == "" {
		log.Println("metrics: no listen address configured, not exporting")
		return
	}

	prometheus.MustRegister(Delivered, Forwarded, DroppedTotal, OpenFragmentGroups)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	log.Println(fmt.Sprintf("metrics: exporting prometheus metrics on %s", addr))
	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.Printf("metrics: server stopped: %v", err)
		}
	}()
}
