// Package calib composes the user-supplied calibration matrix with the
// device's absinfo ranges, mirroring evdev_device_calibrate in evdev.c:
//
//	M = Un-Normalize * Calibration * Normalize
package calib

import "seatcore.dev/seatcore/internal/matrix"

// AbsRange is the [minimum, maximum] reported by EVIOCGABS for one axis.
type AbsRange struct {
	Minimum int32
	Maximum int32
}

// Compose builds the device-space calibration matrix for a device whose
// x/y absinfo ranges are absX/absY, given the user-supplied 6-value
// calibration matrix. It reports false (and the identity matrix) if
// calibration is the identity transform, matching apply_calibration in
// the original.
func Compose(absX, absY AbsRange, calibration [6]float32) (matrix.Matrix, bool) {
	transform := matrix.FromArray6(calibration)
	if transform.IsIdentity() {
		return matrix.Identity(), false
	}

	sx := float64(absX.Maximum-absX.Minimum + 1)
	sy := float64(absY.Maximum-absY.Minimum + 1)

	// Un-Normalize: scale [0,1] back up to device coordinates, then
	// translate by the device's minimum.
	translate := matrix.Translate(float32(absX.Minimum), float32(absY.Minimum))
	scale := matrix.Scale(float32(sx), float32(sy))
	unnormalize := matrix.Mult(translate, scale)

	// Calibration, applied in device space.
	withCalibration := matrix.Mult(unnormalize, transform)

	// Normalize: scale device coordinates down, then translate by
	// -minimum/range, so the device range maps onto [0,1].
	normTranslate := matrix.Translate(float32(-float64(absX.Minimum)/sx), float32(-float64(absY.Minimum)/sy))
	normScale := matrix.Scale(float32(1/sx), float32(1/sy))
	normalize := matrix.Mult(normTranslate, normScale)

	return matrix.Mult(withCalibration, normalize), true
}

// DefaultMatrix derives the default calibration matrix for a device
// whose ABS_X/ABS_Y resolution differs from its physical aspect ratio,
// so that touch input preserves aspect ratio on non-square panels. A
// device with no resolution mismatch gets the identity.
func DefaultMatrix(absX, absY AbsRange, resX, resY int32) matrix.Matrix {
	if resX <= 0 || resY <= 0 || resX == resY {
		return matrix.Identity()
	}

	widthMM := float64(absX.Maximum-absX.Minimum) / float64(resX)
	heightMM := float64(absY.Maximum-absY.Minimum) / float64(resY)
	if widthMM <= 0 || heightMM <= 0 {
		return matrix.Identity()
	}

	if widthMM > heightMM {
		return matrix.Scale(1, float32(heightMM/widthMM))
	}
	return matrix.Scale(float32(widthMM/heightMM), 1)
}
