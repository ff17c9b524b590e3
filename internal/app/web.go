// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/relabs-tech/gesture_quiz/internal/config"
)

const wsWriteTimeout = time.Second

// GestureHub serves the latest gestures over HTTP and streams new ones to
// websocket clients.
type GestureHub struct {
	board    *Scoreboard
	reset    func() error
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
}

// NewGestureHub creates a hub backed by board. reset is called for
// calibration reset requests.
func NewGestureHub(board *Scoreboard, reset func() error) *GestureHub {
	return &GestureHub{
		board: board,
		reset: reset,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow all origins for local development
			},
		},
		clients: make(map[*websocket.Conn]struct{}),
	}
}

// Publish records m and pushes it to every connected websocket client.
// Clients that cannot keep up are dropped.
func (h *GestureHub) Publish(m GestureMessage) {
	h.board.Record(m)

	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		if err := conn.WriteJSON(m); err != nil {
			log.Printf("web: dropping websocket client: %v", err)
			conn.Close()
			delete(h.clients, conn)
		}
	}
}

// ClientCount returns the number of connected websocket clients.
func (h *GestureHub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Handler returns the HTTP routes. Static files are served from staticDir
// when it is not empty.
func (h *GestureHub) Handler(staticDir string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/gesture", h.handleLatest)
	mux.HandleFunc("/api/gestures/stats", h.handleStats)
	mux.HandleFunc("/api/calibration/reset", h.handleReset)
	mux.HandleFunc("/ws/gestures", h.handleWS)
	if staticDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(staticDir)))
	}
	return mux
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("web: json encode error: %v", err)
	}
}

func (h *GestureHub) handleLatest(w http.ResponseWriter, r *http.Request) {
	snap := h.board.Snapshot()
	if snap.Last == nil {
		http.Error(w, "no gesture yet", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, snap.Last)
}

func (h *GestureHub) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.board.Snapshot())
}

func (h *GestureHub) handleReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := h.reset(); err != nil {
		log.Printf("web: calibration reset failed: %v", err)
		http.Error(w, "reset failed", http.StatusBadGateway)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (h *GestureHub) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("web: websocket upgrade error: %v", err)
		return
	}

	h.mu.Lock()
	h.clients[conn] = struct{}{}
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
		conn.Close()
	}()

	// Clients may ask for a reset; anything else is ignored.
	for {
		var msg ControlMessage
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}
		if msg.Action == ControlResetCalibration {
			if err := h.reset(); err != nil {
				log.Printf("web: calibration reset failed: %v", err)
			}
		}
	}
}

// RunWeb serves the gesture API and live stream until ctx is cancelled.
func RunWeb(ctx context.Context) error {
	cfg := config.Get()

	client, err := connectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDWeb)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)
	log.Printf("connected to MQTT broker at %s", cfg.MQTTBroker)

	pub := mqttPublisher{client: client}
	resetPayload, _ := json.Marshal(ControlMessage{Action: ControlResetCalibration})
	hub := NewGestureHub(NewScoreboard(), func() error {
		return pub.Publish(cfg.TopicControl, resetPayload)
	})

	err = subscribe(client, cfg.TopicGesture, func(_ mqtt.Client, msg mqtt.Message) {
		var m GestureMessage
		if err := json.Unmarshal(msg.Payload(), &m); err != nil {
			log.Printf("MQTT payload unmarshal error: %v", err)
			return
		}
		hub.Publish(m)
	})
	if err != nil {
		return err
	}
	log.Printf("subscribed to MQTT topic %s", cfg.TopicGesture)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.WebServerPort),
		Handler: hub.Handler(cfg.WebStaticDir),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("web server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
