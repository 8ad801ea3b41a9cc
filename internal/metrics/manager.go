// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"
)

// Manager owns the process's Prometheus registry: the service-level gauge
// collector plus a handful of counters the poller and its handlers
// increment directly.
type Manager struct {
	registry *prometheus.Registry

	GroupsIngestedTotal prometheus.Counter
	PollTicksTotal      *prometheus.CounterVec
}

// NewManager builds a registry wired to hub and poller for gauge
// collection. Either may be nil (e.g. in tests that don't run a poller).
func NewManager(hub HubGauge, poller PollerGauge) *Manager {
	registry := prometheus.NewRegistry()

	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	registry.MustRegister(NewServiceCollector(hub, poller))

	groupsIngested := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "anime_service_groups_ingested_total",
		Help: "Total number of download groups persisted by the poller",
	})
	registry.MustRegister(groupsIngested)

	pollTicks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "anime_service_poll_ticks_total",
		Help: "Total number of poller ticks, labeled by outcome",
	}, []string{"outcome"})
	registry.MustRegister(pollTicks)

	log.Info().Msg("metrics manager initialized")

	return &Manager{
		registry:            registry,
		GroupsIngestedTotal: groupsIngested,
		PollTicksTotal:      pollTicks,
	}
}

func (m *Manager) GetRegistry() *prometheus.Registry {
	return m.registry
}

// RecordTick satisfies poller.TickRecorder.
func (m *Manager) RecordTick(outcome string) {
	m.PollTicksTotal.WithLabelValues(outcome).Inc()
}

// RecordGroupsIngested satisfies poller.TickRecorder.
func (m *Manager) RecordGroupsIngested(n int) {
	m.GroupsIngestedTotal.Add(float64(n))
}
