package calcs

import "github.com/go-gl/mathgl/mgl64"

// Translate linearly maps val from [leftMin, leftMax] onto
// [rightMin, rightMax]. Values outside the left range are extrapolated.
func Translate(val, leftMin, leftMax, rightMin, rightMax float64) float64 {
	// Figure out how 'wide' each range is
	leftSpan := leftMax - leftMin
	rightSpan := rightMax - rightMin

	// Convert the left range into a 0-1 range
	valueScaled := (val - leftMin) / leftSpan

	// Scale the 0-1 range back up and shift by the appropriate amount
	return rightMin + valueScaled*rightSpan
}

// TranslateInt maps val like Translate, rounds to the nearest integer and
// clamps the result into [lo, hi].
func TranslateInt(val, leftMin, leftMax, rightMin, rightMax, lo, hi int) int {
	out := Translate(float64(val), float64(leftMin), float64(leftMax), float64(rightMin), float64(rightMax))
	return int(mgl64.Clamp(mgl64.Round(out, 0), float64(lo), float64(hi)))
}
