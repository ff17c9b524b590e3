// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package orientation

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
)

// Pose is the canonical representation of orientation, in degrees.
//
// Yaw is the azimuth (rotation about the vertical axis) in (-180, 180].
type Pose struct {
	Roll  float64 `json:"roll"`
	Pitch float64 `json:"pitch"`
	Yaw   float64 `json:"yaw"`
}

// ScalarPart returns w for a rotation vector (x, y, z[, w, ...]). Sensors
// that report only (x, y, z) rely on the unit-norm constraint.
func ScalarPart(v []float64) float64 {
	if len(v) > 3 {
		return v[3]
	}
	w := 1 - v[0]*v[0] - v[1]*v[1] - v[2]*v[2]
	if w <= 0 {
		return 0
	}
	return math.Sqrt(w)
}

// Quaternion builds the unit quaternion encoded by a rotation vector.
// Callers must pass at least three values.
func Quaternion(v []float64) quat.Number {
	q := quat.Number{Real: ScalarPart(v), Imag: v[0], Jmag: v[1], Kmag: v[2]}
	if n := quat.Abs(q); n > 0 && n != 1 {
		q = quat.Scale(1/n, q)
	}
	return q
}

// RotationMatrix returns the row-major 3x3 matrix that maps device
// coordinates to world coordinates (east, north, up) for the given
// rotation vector.
func RotationMatrix(v []float64) [9]float64 {
	q := Quaternion(v)
	var r [9]float64
	basis := [3]quat.Number{{Imag: 1}, {Jmag: 1}, {Kmag: 1}}
	for col, e := range basis {
		// q * e * q⁻¹ rotates the basis vector; it becomes column col.
		rot := quat.Mul(quat.Mul(q, e), quat.Conj(q))
		r[col] = rot.Imag
		r[3+col] = rot.Jmag
		r[6+col] = rot.Kmag
	}
	return r
}

// FromRotationMatrix extracts azimuth, pitch and roll the same way Android's
// SensorManager.getOrientation does.
func FromRotationMatrix(r [9]float64) Pose {
	return Pose{
		Yaw:   normalizeDegrees(rad2deg(math.Atan2(r[1], r[4]))),
		Pitch: rad2deg(math.Asin(clamp(-r[7], -1, 1))),
		Roll:  rad2deg(math.Atan2(-r[6], r[8])),
	}
}

// FromRotationVector converts a rotation vector sample to a Pose.
func FromRotationVector(v []float64) Pose {
	return FromRotationMatrix(RotationMatrix(v))
}

// Azimuth returns the yaw of a rotation vector in degrees, (-180, 180].
func Azimuth(v []float64) float64 {
	return FromRotationVector(v).Yaw
}

// YawRotationVector returns the rotation vector (x, y, z, w) for a
// counter-clockwise turn of deg degrees about the vertical axis. The
// resulting azimuth is -deg: azimuth grows clockwise, like a compass.
func YawRotationVector(deg float64) []float64 {
	half := deg * math.Pi / 360
	return []float64{0, 0, math.Sin(half), math.Cos(half)}
}

// AccelToPose computes roll and pitch from accelerometer values (in any unit).
// Yaw is left at 0; gravity carries no heading information.
//
// Uses simple tilt formulas:
//
//	roll  = atan2(ay, az)
//	pitch = atan2(-ax, sqrt(ay² + az²))
func AccelToPose(ax, ay, az float64) Pose {
	return Pose{
		Roll:  rad2deg(math.Atan2(ay, az)),
		Pitch: rad2deg(math.Atan2(-ax, math.Sqrt(ay*ay+az*az))),
	}
}

func rad2deg(r float64) float64 {
	return r * 180.0 / math.Pi
}

// normalizeDegrees maps an angle into (-180, 180].
func normalizeDegrees(d float64) float64 {
	d = math.Mod(d, 360)
	if d <= -180 {
		d += 360
	} else if d > 180 {
		d -= 360
	}
	return d
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
