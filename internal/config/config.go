// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package config

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/relabs-tech/gesture_quiz/internal/gesture"
)

// ErrUnknownKey is returned for keys this version does not understand.
var ErrUnknownKey = errors.New("unknown config key")

// Sample sources selectable with SAMPLE_SOURCE.
const (
	SourceMock   = "mock"
	SourceIMU    = "imu"
	SourceSerial = "serial"
)

// Config holds all application configuration values.
type Config struct {
	// MQTT
	MQTTBroker           string
	MQTTClientIDProducer string
	MQTTClientIDDetector string
	MQTTClientIDConsole  string
	MQTTClientIDWeb      string
	MQTTClientIDDisplay  string

	// Topics
	TopicSampleAccel    string
	TopicSampleRotation string
	TopicGesture        string
	TopicControl        string

	// Sample source: "mock", "imu" or "serial"
	SampleSource string

	// IMU Hardware (SAMPLE_SOURCE=imu)
	IMUSPIDevice string
	IMUCSPin     string

	// Serial bridge (SAMPLE_SOURCE=serial)
	SerialPort     string
	SerialBaudRate int

	// Timing
	SampleInterval     int // milliseconds, polled sources only
	ConsoleLogInterval int // milliseconds

	// Gesture tuning
	ShakeThreshold           float64
	ShakeCooldownMS          int
	TiltThreshold            float64
	TiltNeutralThreshold     float64
	TiltCooldownMS           int
	RotationThreshold        float64
	RotationNeutralThreshold float64
	RotationCooldownMS       int

	// Web Server
	WebServerPort int
	WebStaticDir  string

	// Display
	DisplayUpdateInterval int // milliseconds
}

// Package-level unexported variables for singleton pattern:
//   - globalConfig: only reachable through InitGlobal() and Get().
//   - configOnce: ensures InitGlobal() only runs once.
//   - configMu: write lock for initialization, read lock for Get().
var (
	globalConfig *Config
	configOnce   sync.Once
	configMu     sync.RWMutex
)

// Default returns a configuration with the phone tuning and a local broker.
func Default() *Config {
	th := gesture.DefaultThresholds()
	return &Config{
		MQTTBroker:           "tcp://localhost:1883",
		MQTTClientIDProducer: "gesture-sample-producer",
		MQTTClientIDDetector: "gesture-detector",
		MQTTClientIDConsole:  "gesture-console-subscriber",
		MQTTClientIDWeb:      "gesture-web-subscriber",
		MQTTClientIDDisplay:  "gesture-display",

		TopicSampleAccel:    "gesture/sample/accel",
		TopicSampleRotation: "gesture/sample/rotation",
		TopicGesture:        "gesture/event",
		TopicControl:        "gesture/control",

		SampleSource:   SourceMock,
		SerialBaudRate: 115200,

		SampleInterval:     20,
		ConsoleLogInterval: 1000,

		ShakeThreshold:           th.ShakeThreshold,
		ShakeCooldownMS:          int(th.ShakeCooldown.Milliseconds()),
		TiltThreshold:            th.TiltThreshold,
		TiltNeutralThreshold:     th.NeutralThreshold,
		TiltCooldownMS:           int(th.TiltCooldown.Milliseconds()),
		RotationThreshold:        th.RotationThreshold,
		RotationNeutralThreshold: th.RotationNeutralThreshold,
		RotationCooldownMS:       int(th.RotationCooldown.Milliseconds()),

		WebServerPort: 8080,
		WebStaticDir:  "web",

		DisplayUpdateInterval: 200,
	}
}

// Load reads the configuration file and returns a Config struct.
func Load(configPath string) (*Config, error) {
	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	return Parse(file)
}

// Parse reads KEY=VALUE lines on top of Default(). Blank lines and lines
// starting with '#' are ignored.
func Parse(r io.Reader) (*Config, error) {
	cfg := Default()
	scanner := bufio.NewScanner(r)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse KEY=VALUE
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid config line %d: %q", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if err := cfg.setValue(key, value); err != nil {
			return nil, fmt.Errorf("config line %d: %w", lineNum, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// setValue sets a config value based on the key.
func (c *Config) setValue(key, value string) error {
	switch key {
	// MQTT
	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID_PRODUCER":
		c.MQTTClientIDProducer = value
	case "MQTT_CLIENT_ID_DETECTOR":
		c.MQTTClientIDDetector = value
	case "MQTT_CLIENT_ID_CONSOLE":
		c.MQTTClientIDConsole = value
	case "MQTT_CLIENT_ID_WEB":
		c.MQTTClientIDWeb = value
	case "MQTT_CLIENT_ID_DISPLAY":
		c.MQTTClientIDDisplay = value

	// Topics
	case "TOPIC_SAMPLE_ACCEL":
		c.TopicSampleAccel = value
	case "TOPIC_SAMPLE_ROTATION":
		c.TopicSampleRotation = value
	case "TOPIC_GESTURE":
		c.TopicGesture = value
	case "TOPIC_CONTROL":
		c.TopicControl = value

	// Sample source
	case "SAMPLE_SOURCE":
		switch value {
		case SourceMock, SourceIMU, SourceSerial:
			c.SampleSource = value
		default:
			return fmt.Errorf("SAMPLE_SOURCE must be %q, %q or %q, got %q", SourceMock, SourceIMU, SourceSerial, value)
		}

	// IMU Hardware
	case "IMU_SPI_DEVICE":
		c.IMUSPIDevice = value
	case "IMU_CS_PIN":
		c.IMUCSPin = value

	// Serial bridge
	case "SERIAL_PORT":
		c.SerialPort = value
	case "SERIAL_BAUD_RATE":
		return parseInt(key, value, 1, 4_000_000, &c.SerialBaudRate)

	// Timing
	case "SAMPLE_INTERVAL":
		return parseInt(key, value, 1, 10_000, &c.SampleInterval)
	case "CONSOLE_LOG_INTERVAL":
		return parseInt(key, value, 1, 3_600_000, &c.ConsoleLogInterval)

	// Gesture tuning
	case "SHAKE_THRESHOLD":
		return parseFloat(key, value, &c.ShakeThreshold)
	case "SHAKE_COOLDOWN_MS":
		return parseInt(key, value, 0, 60_000, &c.ShakeCooldownMS)
	case "TILT_THRESHOLD":
		return parseFloat(key, value, &c.TiltThreshold)
	case "TILT_NEUTRAL_THRESHOLD":
		return parseFloat(key, value, &c.TiltNeutralThreshold)
	case "TILT_COOLDOWN_MS":
		return parseInt(key, value, 0, 60_000, &c.TiltCooldownMS)
	case "ROTATION_THRESHOLD":
		return parseFloat(key, value, &c.RotationThreshold)
	case "ROTATION_NEUTRAL_THRESHOLD":
		return parseFloat(key, value, &c.RotationNeutralThreshold)
	case "ROTATION_COOLDOWN_MS":
		return parseInt(key, value, 0, 60_000, &c.RotationCooldownMS)

	// Web Server
	case "WEB_SERVER_PORT":
		return parseInt(key, value, 1, 65535, &c.WebServerPort)
	case "WEB_STATIC_DIR":
		c.WebStaticDir = value

	// Display
	case "DISPLAY_UPDATE_INTERVAL":
		return parseInt(key, value, 1, 60_000, &c.DisplayUpdateInterval)

	default:
		return fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}

	return nil
}

func parseInt(key, value string, min, max int, dst *int) error {
	v, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	if v < min || v > max {
		return fmt.Errorf("%s must be %d-%d, got %d", key, min, max, v)
	}
	*dst = v
	return nil
}

func parseFloat(key, value string, dst *float64) error {
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%s must be finite, got %q", key, value)
	}
	*dst = v
	return nil
}

// validate checks that all required fields are set.
func (c *Config) validate() error {
	if c.MQTTBroker == "" {
		return fmt.Errorf("MQTT_BROKER is required")
	}
	if c.TopicSampleAccel == "" || c.TopicSampleRotation == "" || c.TopicGesture == "" || c.TopicControl == "" {
		return fmt.Errorf("TOPIC_SAMPLE_ACCEL, TOPIC_SAMPLE_ROTATION, TOPIC_GESTURE and TOPIC_CONTROL must not be empty")
	}
	switch c.SampleSource {
	case SourceIMU:
		if c.IMUSPIDevice == "" {
			return fmt.Errorf("IMU_SPI_DEVICE is required when SAMPLE_SOURCE=imu")
		}
		if c.IMUCSPin == "" {
			return fmt.Errorf("IMU_CS_PIN is required when SAMPLE_SOURCE=imu")
		}
	case SourceSerial:
		if c.SerialPort == "" {
			return fmt.Errorf("SERIAL_PORT is required when SAMPLE_SOURCE=serial")
		}
	}
	if err := c.Thresholds().Validate(); err != nil {
		return fmt.Errorf("gesture tuning: %w", err)
	}
	return nil
}

// Thresholds returns the gesture tuning as detector thresholds.
func (c *Config) Thresholds() gesture.Thresholds {
	return gesture.Thresholds{
		ShakeThreshold:           c.ShakeThreshold,
		ShakeCooldown:            time.Duration(c.ShakeCooldownMS) * time.Millisecond,
		TiltThreshold:            c.TiltThreshold,
		NeutralThreshold:         c.TiltNeutralThreshold,
		TiltCooldown:             time.Duration(c.TiltCooldownMS) * time.Millisecond,
		RotationThreshold:        c.RotationThreshold,
		RotationNeutralThreshold: c.RotationNeutralThreshold,
		RotationCooldown:         time.Duration(c.RotationCooldownMS) * time.Millisecond,
	}
}

// InitGlobal initializes the global configuration from file.
// Uses sync.Once to ensure this only runs once, even if called multiple times.
func InitGlobal(configPath string) error {
	var err error
	configOnce.Do(func() {
		configMu.Lock()
		defer configMu.Unlock()
		globalConfig, err = Load(configPath)
	})
	return err
}

// Get returns the global configuration instance.
// InitGlobal must be called first, or this will return nil.
func Get() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return globalConfig
}
