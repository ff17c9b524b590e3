// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"time"

	"github.com/google/uuid"

	"github.com/relabs-tech/gesture_quiz/internal/gesture"
)

// Quiz navigation hints attached to each gesture.
const (
	ActionRandomQuestion = "random_question"
	ActionNextQuestion   = "next_question"
)

// ControlResetCalibration asks the detector to recapture its baselines,
// e.g. after a screen transition.
const ControlResetCalibration = "reset_calibration"

// GestureMessage is the JSON payload published on the gesture topic.
type GestureMessage struct {
	ID              string        `json:"id"`
	Gesture         gesture.Event `json:"gesture"`
	Action          string        `json:"action"`
	TimestampMillis int64         `json:"timestamp_ms"` // sensor clock
	Time            string        `json:"time"`         // wall clock, RFC3339
}

// NewGestureMessage stamps ev with a fresh ID and the wall-clock time at.
func NewGestureMessage(ev gesture.Event, timestampMillis int64, at time.Time) GestureMessage {
	return GestureMessage{
		ID:              uuid.NewString(),
		Gesture:         ev,
		Action:          NavigationAction(ev),
		TimestampMillis: timestampMillis,
		Time:            at.UTC().Format(time.RFC3339Nano),
	}
}

// NavigationAction maps a gesture to what the quiz screen does with it.
func NavigationAction(ev gesture.Event) string {
	switch ev {
	case gesture.Shake:
		return ActionRandomQuestion
	case gesture.Tilt, gesture.Rotate:
		return ActionNextQuestion
	default:
		return ""
	}
}

// ControlMessage is the JSON payload accepted on the control topic.
type ControlMessage struct {
	Action string `json:"action"`
}
