// Package color converts float colour components to and from the integer
// encodings stored in framebuffer planes.
//
// sRGB encoding uses a 4096-entry lookup table (12-bit precision), which is
// more than enough for 8-bit output and avoids a Pow call per component.
package color

import "github.com/chewxy/math32"

// linearToSRGBLUT maps a 12-bit linear value to an 8-bit sRGB code.
var linearToSRGBLUT [4096]uint8

// sRGBToLinearLUT maps an 8-bit sRGB code to a linear value.
var sRGBToLinearLUT [256]float32

func init() {
	for i := range linearToSRGBLUT {
		linearToSRGBLUT[i] = ToUnorm8(LinearToSRGB(float32(i) / 4095))
	}
	for i := range sRGBToLinearLUT {
		sRGBToLinearLUT[i] = SRGBToLinear(float32(i) / 255)
	}
}

// Clamp01 clamps v to [0, 1]. NaN maps to 0.
func Clamp01(v float32) float32 {
	if !(v > 0) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// ToUnorm8 converts a float in [0,1] to an 8-bit unsigned normalized value
// with round-to-nearest. Out-of-range input is clamped.
func ToUnorm8(v float32) uint8 {
	return uint8(Clamp01(v)*255 + 0.5)
}

// ToUnorm16 converts a float in [0,1] to a 16-bit unsigned normalized value.
func ToUnorm16(v float32) uint16 {
	return uint16(Clamp01(v)*65535 + 0.5)
}

// ToUnorm24 converts a float in [0,1] to a 24-bit unsigned normalized value.
func ToUnorm24(v float32) uint32 {
	// float32 has 24 bits of mantissa; do the scale in float64 so the
	// top of the range does not round past 0xFFFFFF.
	return uint32(float64(Clamp01(v))*0xFFFFFF + 0.5)
}

// FromUnorm8 converts an 8-bit unsigned normalized value to a float in [0,1].
func FromUnorm8(u uint8) float32 {
	return float32(u) / 255
}

// SRGBToLinear decodes one sRGB-encoded component. Input and output are in [0,1].
func SRGBToLinear(s float32) float32 {
	if s <= 0.04045 {
		return s / 12.92
	}
	return math32.Pow((s+0.055)/1.055, 2.4)
}

// LinearToSRGB encodes one linear component as sRGB. Input and output are in [0,1].
func LinearToSRGB(l float32) float32 {
	if l <= 0.0031308 {
		return l * 12.92
	}
	return 1.055*math32.Pow(l, 1.0/2.4) - 0.055
}

// LinearToSRGB8 encodes a linear component straight to an 8-bit sRGB code
// using the lookup table. Input is clamped to [0,1].
func LinearToSRGB8(l float32) uint8 {
	return linearToSRGBLUT[int(Clamp01(l)*4095+0.5)]
}

// SRGB8ToLinear decodes an 8-bit sRGB code using the lookup table.
func SRGB8ToLinear(s uint8) float32 {
	return sRGBToLinearLUT[s]
}
