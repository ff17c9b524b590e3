// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/gesture_quiz/internal/config"
)

// FormatGesture renders a gesture message as one console line.
func FormatGesture(m GestureMessage) string {
	return fmt.Sprintf("[%-6s] t=%8dms  %-15s  %s",
		strings.ToUpper(m.Gesture.String()), m.TimestampMillis, m.Action, m.ID)
}

// RunConsoleMQTT prints every published gesture until ctx is cancelled.
func RunConsoleMQTT(ctx context.Context) error {
	return runConsoleMQTT(ctx, config.Get(), os.Stdout)
}

func runConsoleMQTT(ctx context.Context, cfg *config.Config, out io.Writer) error {
	client, err := connectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDConsole)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)
	log.Printf("console: connected to MQTT broker at %s", cfg.MQTTBroker)

	err = subscribe(client, cfg.TopicGesture, func(_ mqtt.Client, msg mqtt.Message) {
		var m GestureMessage
		if err := json.Unmarshal(msg.Payload(), &m); err != nil {
			log.Printf("console: gesture unmarshal error: %v", err)
			return
		}
		fmt.Fprintln(out, FormatGesture(m))
	})
	if err != nil {
		return err
	}
	log.Printf("console: subscribed to %s", cfg.TopicGesture)

	<-ctx.Done()

	log.Println("console: shutting down")
	return nil
}
