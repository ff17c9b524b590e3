// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"log"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/devices/v3/ssd1306/image1bit"
	"periph.io/x/host/v3"

	"github.com/relabs-tech/gesture_quiz/internal/config"
)

// RunDisplay shows the latest gesture and counters on an SSD1306 OLED.
func RunDisplay(ctx context.Context) error {
	cfg := config.Get()

	// Initialize periph
	if _, err := host.Init(); err != nil {
		return fmt.Errorf("failed to initialize periph: %w", err)
	}

	// Open I2C bus
	bus, err := i2creg.Open("")
	if err != nil {
		return fmt.Errorf("failed to open I2C bus: %w", err)
	}
	defer bus.Close()

	dev, err := ssd1306.NewI2C(bus, &ssd1306.DefaultOpts)
	if err != nil {
		return fmt.Errorf("failed to initialize display: %w", err)
	}
	defer dev.Halt()
	log.Println("display: initialized")

	if err := dev.Draw(dev.Bounds(), renderSplash(), image.Point{}); err != nil {
		log.Printf("display: error showing splash: %v", err)
	}

	board := NewScoreboard()

	client, err := connectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDDisplay)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)
	log.Printf("display: connected to MQTT broker at %s", cfg.MQTTBroker)

	err = subscribe(client, cfg.TopicGesture, func(_ mqtt.Client, msg mqtt.Message) {
		var m GestureMessage
		if err := json.Unmarshal(msg.Payload(), &m); err != nil {
			log.Printf("display: gesture unmarshal error: %v", err)
			return
		}
		board.Record(m)
	})
	if err != nil {
		return err
	}
	log.Printf("display: subscribed to %s", cfg.TopicGesture)

	ticker := time.NewTicker(time.Duration(cfg.DisplayUpdateInterval) * time.Millisecond)
	defer ticker.Stop()

	log.Println("display: starting update loop")

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := dev.Draw(dev.Bounds(), renderBoard(board.Snapshot()), image.Point{}); err != nil {
				log.Printf("display: error updating display: %v", err)
			}
		}
	}
}

func newScreen() (*image1bit.VerticalLSB, *font.Drawer) {
	img := image1bit.NewVerticalLSB(image.Rect(0, 0, 128, 64))
	drawer := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{image1bit.On},
		Face: basicfont.Face7x13,
	}
	return img, drawer
}

func drawLine(d *font.Drawer, x, y int, s string) {
	d.Dot = fixed.P(x, y)
	d.DrawString(s)
}

// renderBoard draws the latest gesture, its quiz action and the counters.
func renderBoard(snap BoardSnapshot) *image1bit.VerticalLSB {
	img, d := newScreen()

	if snap.Last == nil {
		drawLine(d, 0, 26, "Gesture Quiz")
		drawLine(d, 0, 39, "Waiting...")
		return img
	}

	drawLine(d, 0, 13, strings.ToUpper(snap.Last.Gesture.String()))
	drawLine(d, 0, 26, strings.ReplaceAll(snap.Last.Action, "_", " "))
	drawLine(d, 0, 39, fmt.Sprintf("S:%d T:%d R:%d", snap.Shakes, snap.Tilts, snap.Rotations))
	drawLine(d, 0, 52, fmt.Sprintf("Total: %d", snap.Total))
	return img
}

func renderSplash() *image1bit.VerticalLSB {
	img, d := newScreen()
	drawLine(d, 10, 26, "Gesture Quiz")
	drawLine(d, 5, 43, "Shake, tilt")
	drawLine(d, 25, 56, "or rotate")
	return img
}
