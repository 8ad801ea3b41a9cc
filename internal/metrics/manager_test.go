// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: MIT

package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubHub struct{ n int }

func (s stubHub) Subscribers() int { return s.n }

type stubPoller struct{ watermark time.Time }

func (s stubPoller) Watermark() time.Time { return s.watermark }

func TestManagerExposesHubSubscriberGauge(t *testing.T) {
	t.Parallel()

	m := NewManager(stubHub{n: 3}, stubPoller{watermark: time.Now()})

	value, err := testutil.GatherAndCount(m.GetRegistry(), "anime_service_hub_subscribers")
	require.NoError(t, err)
	assert.Equal(t, 1, value)
}

func TestManagerRecordsTicksAndIngestedGroups(t *testing.T) {
	t.Parallel()

	m := NewManager(nil, nil)
	m.RecordTick("ok")
	m.RecordTick("error")
	m.RecordGroupsIngested(5)

	ticks, err := testutil.GatherAndCount(m.GetRegistry(), "anime_service_poll_ticks_total")
	require.NoError(t, err)
	assert.Equal(t, 2, ticks)

	ingested, err := testutil.GatherAndCount(m.GetRegistry(), "anime_service_groups_ingested_total")
	require.NoError(t, err)
	assert.Equal(t, 1, ingested)
}
