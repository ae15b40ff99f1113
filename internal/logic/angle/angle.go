package angle

import "math"

// Steps is the resolution of the AS5600 magnetic encoder: raw readings are
// reported modulo 4096 (0 and 4095 are adjacent).
const Steps = 4096

// DegPerStep converts encoder steps to degrees (≈ 0.0879°/step).
const DegPerStep = 360.0 / float64(Steps)

// WrapError normalizes an angular difference from the modulo encoder into the
// shortest signed distance, in the range [-Steps/2, Steps/2).
//
// A naive subtraction of two raw readings produces large jumps near the
// wrap-around boundary (e.g. 4090 -> 5 gives -4085); folding keeps the error
// small, linear and correctly signed, which is what a control loop needs.
func WrapError(diff int) int {
	if diff > Steps/2 {
		diff -= Steps
	} else if diff < -Steps/2 {
		diff += Steps
	}
	return diff
}

// ToDegrees converts a raw encoder reading to a signed degree offset from the
// calibrated axis center.
func ToDegrees(raw, center int) float64 {
	return float64(WrapError(raw-center)) * DegPerStep
}

// ToQuat converts a single-axis (roll/X) angle in degrees to a unit
// quaternion (qr, qi, qj, qk). Used for the fused telemetry schema, so
// encoder and IMU orientations share one representation.
func ToQuat(deg float64) (qr, qi, qj, qk float64) {
	half := deg * math.Pi / 180.0 / 2.0
	return math.Cos(half), math.Sin(half), 0.0, 0.0
}

// RollDegrees extracts the roll angle in degrees from the real and X
// components of an orientation quaternion. Inverse of ToQuat for rotations
// about the X axis.
func RollDegrees(qr, qi float64) float64 {
	return 2.0 * math.Atan2(qi, qr) * 180.0 / math.Pi
}
