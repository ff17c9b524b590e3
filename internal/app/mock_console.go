// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/relabs-tech/gesture_quiz/internal/gesture"
	"github.com/relabs-tech/gesture_quiz/internal/sensor"
)

// RunMockConsole drives a local detector from the mock source and prints
// the quiz navigation each gesture would trigger. No broker needed.
func RunMockConsole(ctx context.Context, out io.Writer) error {
	clk := clock.New()
	det := gesture.NewDetector(gesture.DefaultThresholds())

	ticker := clk.Ticker(20 * time.Millisecond)
	defer ticker.Stop()

	return runConsoleLoop(ctx, sensor.NewMockSource(clk), det, ticker.C, out)
}

func runConsoleLoop(ctx context.Context, src sensor.Source, det *gesture.Detector, tick <-chan time.Time, out io.Writer) error {
	handlers := gesture.Handlers{
		OnShake:  func() { fmt.Fprintln(out, "SHAKE  - random question") },
		OnTilt:   func() { fmt.Fprintln(out, "TILT   - next question") },
		OnRotate: func() { fmt.Fprintln(out, "ROTATE - next question") },
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-tick:
		}

		s, err := src.Next()
		if err != nil {
			return err
		}
		handlers.Dispatch(det.OnSample(s))
	}
}
