// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/relabs-tech/gesture_quiz/internal/app"
	"github.com/relabs-tech/gesture_quiz/internal/config"
)

func main() {
	configPath := flag.String("config", "gesture_config.txt", "path to the KEY=VALUE config file")
	flag.Parse()

	log.Println("starting gesture-quiz detector (MQTT)")

	// Load configuration
	if err := config.InitGlobal(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.RunDetector(ctx); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
