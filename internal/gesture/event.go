// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package gesture

import "fmt"

// Event is the outcome of classifying one sample. It carries no payload:
// the emission itself is the information.
type Event int

const (
	None Event = iota
	Shake
	Tilt
	Rotate
)

func (e Event) String() string {
	switch e {
	case None:
		return "none"
	case Shake:
		return "shake"
	case Tilt:
		return "tilt"
	case Rotate:
		return "rotate"
	default:
		return fmt.Sprintf("event(%d)", int(e))
	}
}

// ParseEvent is the inverse of Event.String.
func ParseEvent(s string) (Event, error) {
	switch s {
	case "none":
		return None, nil
	case "shake":
		return Shake, nil
	case "tilt":
		return Tilt, nil
	case "rotate":
		return Rotate, nil
	default:
		return None, fmt.Errorf("unknown gesture %q", s)
	}
}

func (e Event) MarshalText() ([]byte, error) {
	return []byte(e.String()), nil
}

func (e *Event) UnmarshalText(b []byte) error {
	ev, err := ParseEvent(string(b))
	if err != nil {
		return err
	}
	*e = ev
	return nil
}

// Handlers adapts the returned events to callback style for hosts that
// prefer it. Nil callbacks are skipped.
type Handlers struct {
	OnShake  func()
	OnTilt   func()
	OnRotate func()
}

// Dispatch invokes the callback matching ev, if any.
func (h Handlers) Dispatch(ev Event) {
	var fn func()
	switch ev {
	case Shake:
		fn = h.OnShake
	case Tilt:
		fn = h.OnTilt
	case Rotate:
		fn = h.OnRotate
	}
	if fn != nil {
		fn()
	}
}
