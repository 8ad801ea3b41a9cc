// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package hub fans newly persisted DownloadGroup values out to live
// subscribers (SSE and gRPC). It owns subscriber queues; each subscriber
// owns its own receive end and is responsible for draining it.
package hub

import (
	"sync"

	"github.com/animeservice/anime-service/internal/domain"
)

// DefaultCapacity is the broadcast queue depth used when a subscriber
// doesn't request a specific size.
const DefaultCapacity = 32

// Subscription is one subscriber's view of the hub: a receive-only channel
// of groups and a signal that fires once if the subscriber fell behind.
type Subscription struct {
	id     uint64
	ch     chan domain.DownloadGroup
	lagged chan struct{}
	hub    *Hub
}

// C returns the channel groups are delivered on. It is closed when the
// subscription is closed; a subscriber evicted for lagging keeps an open C
// that receives nothing further (see Lagged).
func (s *Subscription) C() <-chan domain.DownloadGroup { return s.ch }

// Lagged is closed the moment this subscriber's queue overflows. Once
// closed, no further groups will arrive; C() is left open and may still
// hold the groups queued before the overflow.
func (s *Subscription) Lagged() <-chan struct{} { return s.lagged }

// Close releases the subscription's queue and removes it from the hub. Safe
// to call more than once.
func (s *Subscription) Close() { s.hub.unsubscribe(s.id) }

// Hub is a bounded broadcast channel of DownloadGroup. Broadcast never
// blocks: a subscriber whose queue is full is dropped and notified via
// Lagged, so one slow subscriber cannot stall the producer or its peers.
type Hub struct {
	mu     sync.Mutex
	subs   map[uint64]*Subscription
	nextID uint64
}

func New() *Hub {
	return &Hub{subs: make(map[uint64]*Subscription)}
}

// Subscribe registers a new subscriber with the given queue depth. A
// capacity of 0 uses DefaultCapacity.
func (h *Hub) Subscribe(capacity int) *Subscription {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	sub := &Subscription{
		id:     h.nextID,
		ch:     make(chan domain.DownloadGroup, capacity),
		lagged: make(chan struct{}),
		hub:    h,
	}
	h.subs[sub.id] = sub
	return sub
}

func (h *Hub) unsubscribe(id uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	sub, ok := h.subs[id]
	if !ok {
		return
	}
	delete(h.subs, id)
	close(sub.ch)
}

// Broadcast delivers group to every live subscriber; the order in which
// subscribers are visited is not defined.
// A subscriber whose queue is already full is evicted and its Lagged signal
// fires; Broadcast itself never blocks on a subscriber's queue.
func (h *Hub) Broadcast(group domain.DownloadGroup) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, sub := range h.subs {
		select {
		case sub.ch <- group:
		default:
			delete(h.subs, id)
			close(sub.lagged)
			// ch is deliberately left open (and undelivered-to) rather than
			// closed here: closing both channels would make a consumer's
			// select between Lagged() and C() pick between two simultaneously
			// ready cases at random, losing the Unavailable signal roughly
			// half the time. Abandoning ch is safe — it has no more writers
			// and is unreachable once the consumer returns, so it is
			// collected like any other orphaned channel.
		}
	}
}

// Subscribers reports the current live subscriber count, for metrics.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
