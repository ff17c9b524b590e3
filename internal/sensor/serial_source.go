// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensor

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"strings"

	serial "github.com/jacobsa/go-serial/serial"
)

// SerialSource reads motion sentences from a phone or microcontroller
// bridge attached to a serial port.
type SerialSource struct {
	port   io.ReadCloser
	reader *bufio.Reader

	skipped int
}

// NewSerialSource opens the serial port at the given baud rate (8N1).
func NewSerialSource(portName string, baudRate int) (*SerialSource, error) {
	opts := serial.OpenOptions{
		PortName:              portName,
		BaudRate:              uint(baudRate),
		DataBits:              8,
		StopBits:              1,
		MinimumReadSize:       1,
		ParityMode:            serial.PARITY_NONE,
		InterCharacterTimeout: 0,
	}

	port, err := serial.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("serial open %s: %w", portName, err)
	}
	log.Printf("serial: port opened on %s at %d baud", portName, baudRate)

	return newSerialSource(port), nil
}

func newSerialSource(port io.ReadCloser) *SerialSource {
	return &SerialSource{port: port, reader: bufio.NewReader(port)}
}

// Next blocks until the next valid motion sentence arrives. Noise, partial
// lines, bad checksums and non-motion sentences are skipped.
func (s *SerialSource) Next() (Sample, error) {
	for {
		line, err := s.reader.ReadString('\n')
		if err != nil {
			return Sample{}, fmt.Errorf("serial read: %w", err)
		}

		line = strings.TrimSpace(line)
		if line == "" || !strings.HasPrefix(line, "$") {
			continue
		}

		sample, err := ParseSentence(line)
		if err != nil {
			s.skipped++
			continue
		}
		if err := sample.Validate(); err != nil {
			s.skipped++
			continue
		}
		return sample, nil
	}
}

// Skipped returns how many sentences were dropped as unparseable.
func (s *SerialSource) Skipped() int {
	return s.skipped
}

// Close releases the serial port.
func (s *SerialSource) Close() error {
	return s.port.Close()
}
