// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package gesture

import "time"

// debounce remembers when a gesture family last fired.
type debounce struct {
	cooldownMillis int64
	lastFiredAt    int64
	fired          bool
}

func newDebounce(cooldown time.Duration) debounce {
	return debounce{cooldownMillis: cooldown.Milliseconds()}
}

// ready reports whether more than the cooldown has passed since the last
// fire. A family that never fired is always ready, and so is one whose
// clock went backwards: the sample source restarted.
func (d *debounce) ready(now int64) bool {
	return !d.fired || now < d.lastFiredAt || now-d.lastFiredAt > d.cooldownMillis
}

// rearm forgets the last fire.
func (d *debounce) rearm() {
	d.fired = false
}

func (d *debounce) fire(now int64) {
	d.lastFiredAt = now
	d.fired = true
}
