// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package web

import (
	"sync"

	"github.com/Thermoquad/sextant/pkg/ubx"
)

// Broadcaster fans decoded records out to live subscribers and remembers
// the most recent record of each type.
type Broadcaster struct {
	mu     sync.RWMutex
	subs   map[int]chan *ubx.Record
	nextID int
	latest map[string]*ubx.Record
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		subs:   make(map[int]chan *ubx.Record),
		latest: make(map[string]*ubx.Record),
	}
}

// Subscribe registers a listener. Records are dropped for a listener whose
// buffer is full.
func (b *Broadcaster) Subscribe(buffer int) (int, <-chan *ubx.Record) {
	if buffer <= 0 {
		buffer = 16
	}
	ch := make(chan *ubx.Record, buffer)
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = ch
	b.mu.Unlock()
	return id, ch
}

func (b *Broadcaster) Unsubscribe(id int) {
	b.mu.Lock()
	if ch, ok := b.subs[id]; ok {
		delete(b.subs, id)
		close(ch)
	}
	b.mu.Unlock()
}

// Subscribers returns the number of live listeners
func (b *Broadcaster) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Publish stores rec as the latest of its type and offers it to every
// subscriber.
func (b *Broadcaster) Publish(rec *ubx.Record) {
	b.mu.Lock()
	b.latest[rec.Type] = rec
	b.mu.Unlock()

	// Sending under the read lock keeps Unsubscribe from closing a channel
	// mid-send.
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subs {
		select {
		case ch <- rec:
		default:
		}
	}
}

// Latest returns the most recent record of typ
func (b *Broadcaster) Latest(typ string) (*ubx.Record, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	rec, ok := b.latest[typ]
	return rec, ok
}

// LatestAll returns a copy of the latest record per type
func (b *Broadcaster) LatestAll() map[string]*ubx.Record {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make(map[string]*ubx.Record, len(b.latest))
	for k, v := range b.latest {
		out[k] = v
	}
	return out
}

// Write implements sink.Sink
func (b *Broadcaster) Write(rec *ubx.Record) error {
	b.Publish(rec)
	return nil
}

// Close drops every subscriber
func (b *Broadcaster) Close() error {
	b.mu.Lock()
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
	b.mu.Unlock()
	return nil
}
