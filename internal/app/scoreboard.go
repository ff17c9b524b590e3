// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"sync"

	"github.com/relabs-tech/gesture_quiz/internal/gesture"
)

// Scoreboard keeps the latest gesture and per-family counters for the web
// and display consumers.
type Scoreboard struct {
	mu       sync.RWMutex
	last     GestureMessage
	haveLast bool
	counts   map[gesture.Event]int
}

// BoardSnapshot is a copy of the scoreboard, safe to serialize.
type BoardSnapshot struct {
	Last      *GestureMessage `json:"last,omitempty"`
	Shakes    int             `json:"shakes"`
	Tilts     int             `json:"tilts"`
	Rotations int             `json:"rotations"`
	Total     int             `json:"total"`
}

func NewScoreboard() *Scoreboard {
	return &Scoreboard{counts: make(map[gesture.Event]int)}
}

// Record stores m as the latest gesture and bumps its counter.
func (b *Scoreboard) Record(m GestureMessage) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.last = m
	b.haveLast = true
	b.counts[m.Gesture]++
}

func (b *Scoreboard) Snapshot() BoardSnapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()

	snap := BoardSnapshot{
		Shakes:    b.counts[gesture.Shake],
		Tilts:     b.counts[gesture.Tilt],
		Rotations: b.counts[gesture.Rotate],
	}
	snap.Total = snap.Shakes + snap.Tilts + snap.Rotations
	if b.haveLast {
		last := b.last
		snap.Last = &last
	}
	return snap
}
