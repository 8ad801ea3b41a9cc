// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: MIT

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// HubGauge reports the hub's live subscriber count. hub.Hub satisfies this.
type HubGauge interface {
	Subscribers() int
}

// PollerGauge reports the poller's watermark, for staleness alerting.
type PollerGauge interface {
	Watermark() time.Time
}

// ServiceCollector exposes service-level gauges (subscriber count, poller
// watermark age) alongside the Manager's counters (GroupsIngestedTotal,
// PollTicksTotal), which the poller increments through the Manager.
type ServiceCollector struct {
	hub    HubGauge
	poller PollerGauge

	subscribersDesc     *prometheus.Desc
	watermarkAgeDesc    *prometheus.Desc
}

func NewServiceCollector(hub HubGauge, poller PollerGauge) *ServiceCollector {
	return &ServiceCollector{
		hub:    hub,
		poller: poller,

		subscribersDesc: prometheus.NewDesc(
			"anime_service_hub_subscribers",
			"Current number of live SSE/gRPC subscribers on the broadcast hub",
			nil, nil,
		),
		watermarkAgeDesc: prometheus.NewDesc(
			"anime_service_poller_watermark_age_seconds",
			"Seconds between now and the poller's current watermark",
			nil, nil,
		),
	}
}

func (c *ServiceCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.subscribersDesc
	ch <- c.watermarkAgeDesc
}

func (c *ServiceCollector) Collect(ch chan<- prometheus.Metric) {
	if c.hub != nil {
		ch <- prometheus.MustNewConstMetric(c.subscribersDesc, prometheus.GaugeValue, float64(c.hub.Subscribers()))
	}
	if c.poller != nil {
		age := time.Since(c.poller.Watermark()).Seconds()
		ch <- prometheus.MustNewConstMetric(c.watermarkAgeDesc, prometheus.GaugeValue, age)
	}
}
