// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensor

import (
	"errors"
	"fmt"

	nmea "github.com/adrianmo/go-nmea"

	"github.com/relabs-tech/gesture_quiz/internal/orientation"
)

// The serial bridge firmware streams readings as proprietary NMEA 0183
// sentences so they can share a line discipline (and checksums) with GPS
// receivers:
//
//	$PGACC,<x>,<y>,<z>,<t_ms>*hh
//	$PGROT,<x>,<y>,<z>,<w>,<t_ms>*hh
//
// The talker is "P" (proprietary), so go-nmea reports the types below.
const (
	TypeAccel    = "GACC"
	TypeRotation = "GROT"
)

// ErrUnknownSentence is returned for valid NMEA sentences that carry no
// motion data (for example GPS fixes sharing the same port).
var ErrUnknownSentence = errors.New("not a motion sentence")

// AccelSentence is a parsed $PGACC sentence.
type AccelSentence struct {
	nmea.BaseSentence
	X, Y, Z         float64
	TimestampMillis int64
}

// RotationSentence is a parsed $PGROT sentence.
type RotationSentence struct {
	nmea.BaseSentence
	X, Y, Z, W      float64
	TimestampMillis int64
}

var sentenceParser = nmea.SentenceParser{
	CustomParsers: map[string]nmea.ParserFunc{
		TypeAccel:    parseAccelSentence,
		TypeRotation: parseRotationSentence,
	},
}

func parseAccelSentence(s nmea.BaseSentence) (nmea.Sentence, error) {
	p := nmea.NewParser(s)
	p.AssertType(TypeAccel)
	return AccelSentence{
		BaseSentence:    s,
		X:               p.Float64(0, "x"),
		Y:               p.Float64(1, "y"),
		Z:               p.Float64(2, "z"),
		TimestampMillis: p.Int64(3, "timestamp"),
	}, p.Err()
}

func parseRotationSentence(s nmea.BaseSentence) (nmea.Sentence, error) {
	p := nmea.NewParser(s)
	p.AssertType(TypeRotation)
	return RotationSentence{
		BaseSentence:    s,
		X:               p.Float64(0, "x"),
		Y:               p.Float64(1, "y"),
		Z:               p.Float64(2, "z"),
		W:               p.Float64(3, "w"),
		TimestampMillis: p.Int64(4, "timestamp"),
	}, p.Err()
}

// ParseSentence decodes one bridge line into a Sample.
func ParseSentence(line string) (Sample, error) {
	sentence, err := sentenceParser.Parse(line)
	if err != nil {
		return Sample{}, fmt.Errorf("nmea parse: %w", err)
	}

	switch m := sentence.(type) {
	case AccelSentence:
		return Sample{
			Kind:            Accelerometer,
			Values:          []float64{m.X, m.Y, m.Z},
			TimestampMillis: m.TimestampMillis,
		}, nil
	case RotationSentence:
		return Sample{
			Kind:            RotationVector,
			Values:          []float64{m.X, m.Y, m.Z, m.W},
			TimestampMillis: m.TimestampMillis,
		}, nil
	default:
		return Sample{}, fmt.Errorf("%w: %s", ErrUnknownSentence, sentence.DataType())
	}
}

// FormatSentence encodes a sample the way the bridge firmware does,
// including the checksum.
func FormatSentence(s Sample) (string, error) {
	if err := s.Validate(); err != nil {
		return "", err
	}
	var body string
	switch s.Kind {
	case Accelerometer:
		body = fmt.Sprintf("P%s,%.4f,%.4f,%.4f,%d", TypeAccel, s.Values[0], s.Values[1], s.Values[2], s.TimestampMillis)
	case RotationVector:
		w := orientation.ScalarPart(s.Values)
		body = fmt.Sprintf("P%s,%.6f,%.6f,%.6f,%.6f,%d", TypeRotation, s.Values[0], s.Values[1], s.Values[2], w, s.TimestampMillis)
	}
	return "$" + body + "*" + nmea.Checksum(body), nil
}
