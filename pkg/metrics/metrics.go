// SPDX-License-Identifier: AGPL-3.0-or-later

// Package metrics wires pkg/rbroker's Observer hook to Prometheus,
// grounded on marmos91-dittofs's use of prometheus/client_golang for its
// request counters and duration histograms.
package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/databroker-go/rbroker/pkg/rbroker"
)

// Collector implements rbroker.Observer, recording per-opcode post and
// completion counts.
type Collector struct {
	posts     *prometheus.CounterVec
	completes *prometheus.CounterVec
}

// NewCollector builds a Collector and registers its metrics with reg. A
// nil reg registers with prometheus.DefaultRegisterer.
func NewCollector(reg prometheus.Registerer) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	c := &Collector{
		posts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rbroker",
			Name:      "requests_posted_total",
			Help:      "Requests posted to the backend, by opcode.",
		}, []string{"opcode"}),
		completes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rbroker",
			Name:      "requests_completed_total",
			Help:      "Requests completed, by opcode and status.",
		}, []string{"opcode", "status"}),
	}
	reg.MustRegister(c.posts, c.completes)
	return c
}

// OnPost implements rbroker.Observer.
func (c *Collector) OnPost(opcode rbroker.Opcode) {
	c.posts.WithLabelValues(label(opcode)).Inc()
}

// OnComplete implements rbroker.Observer.
func (c *Collector) OnComplete(opcode rbroker.Opcode, status rbroker.Status) {
	c.completes.WithLabelValues(label(opcode), strings.ToLower(status.String())).Inc()
}

func label(opcode rbroker.Opcode) string {
	return strings.ToLower(opcode.String())
}
