// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensor

import (
	"fmt"
	"log"

	"github.com/benbjohnson/clock"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/devices/v3/mpu9250"
	"periph.io/x/host/v3"
)

// The MPU-9250 powers up in the ±2g range: 16384 counts per g.
const (
	accelCountsPerG = 16384.0
	standardGravity = 9.80665
)

type accelReader interface {
	GetAccelerationX() (int16, error)
	GetAccelerationY() (int16, error)
	GetAccelerationZ() (int16, error)
}

type imuSource struct {
	imu   accelReader
	clk   clock.Clock
	start int64
}

// NewIMUSource initializes an MPU-9250 over SPI and returns a Source of
// accelerometer samples in m/s². The chip has no rotation vector output, so
// rotation gestures need the serial bridge or the mock source.
func NewIMUSource(spiDev, csPin string, clk clock.Clock) (Source, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("IMU: periph host init: %w", err)
	}

	cs := gpioreg.ByName(csPin)
	if cs == nil {
		return nil, fmt.Errorf("IMU: CS pin %q not found", csPin)
	}

	tr, err := mpu9250.NewSpiTransport(spiDev, cs)
	if err != nil {
		return nil, fmt.Errorf("IMU: SPI transport (%s): %w", spiDev, err)
	}

	imu, err := mpu9250.New(tr)
	if err != nil {
		return nil, fmt.Errorf("IMU: device creation: %w", err)
	}

	if err := imu.Init(); err != nil {
		return nil, fmt.Errorf("IMU: initialization: %w", err)
	}

	if err := imu.Calibrate(); err != nil {
		log.Printf("Warning: IMU calibration failed: %v", err)
	} else {
		log.Printf("IMU calibration complete")
	}

	return newIMUSource(imu, clk), nil
}

func newIMUSource(imu accelReader, clk clock.Clock) *imuSource {
	if clk == nil {
		clk = clock.New()
	}
	return &imuSource{imu: imu, clk: clk, start: clk.Now().UnixMilli()}
}

// Next reads one accelerometer triple and converts it to m/s².
func (s *imuSource) Next() (Sample, error) {
	ax, err := s.imu.GetAccelerationX()
	if err != nil {
		return Sample{}, fmt.Errorf("IMU accel X: %w", err)
	}
	ay, err := s.imu.GetAccelerationY()
	if err != nil {
		return Sample{}, fmt.Errorf("IMU accel Y: %w", err)
	}
	az, err := s.imu.GetAccelerationZ()
	if err != nil {
		return Sample{}, fmt.Errorf("IMU accel Z: %w", err)
	}

	return Sample{
		Kind:            Accelerometer,
		Values:          []float64{countsToMS2(ax), countsToMS2(ay), countsToMS2(az)},
		TimestampMillis: s.clk.Now().UnixMilli() - s.start,
	}, nil
}

func countsToMS2(c int16) float64 {
	return float64(c) / accelCountsPerG * standardGravity
}
