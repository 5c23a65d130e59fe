package tensor

import (
	"math"
	"testing"
)

func TestFloat16RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		in   float32
		bits uint16
		out  float32
	}{
		{"zero", 0, 0x0000, 0},
		{"negative zero", float32(math.Copysign(0, -1)), 0x8000, float32(math.Copysign(0, -1))},
		{"one", 1, 0x3C00, 1},
		{"minus two", -2, 0xC000, -2},
		{"max", 65504, 0x7BFF, 65504},
		{"overflow", 65520, 0x7C00, float32(math.Inf(1))},
		{"negative overflow", -1e6, 0xFC00, float32(math.Inf(-1))},
		{"smallest normal", 6.103515625e-05, 0x0400, 6.103515625e-05},
		{"smallest subnormal", 5.960464477539063e-08, 0x0001, 5.960464477539063e-08},
		{"underflow", 1e-9, 0x0000, 0},
		{"round to nearest even down", 2049, 0x6800, 2048},
		{"round to nearest even up", 2051, 0x6802, 2052},
		{"infinity", float32(math.Inf(1)), 0x7C00, float32(math.Inf(1))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bits := Float32ToFP16(tt.in)
			if bits != tt.bits {
				t.Errorf("Float32ToFP16(%v) = %#04x, want %#04x", tt.in, bits, tt.bits)
			}
			if got := FP16ToFloat32(bits); got != tt.out || math.Signbit(float64(got)) != math.Signbit(float64(tt.out)) {
				t.Errorf("FP16ToFloat32(%#04x) = %v, want %v", bits, got, tt.out)
			}
		})
	}
}

func TestFloat16NaN(t *testing.T) {
	bits := Float32ToFP16(float32(math.NaN()))
	if bits&0x7C00 != 0x7C00 || bits&0x3FF == 0 {
		t.Fatalf("NaN encoded as %#04x", bits)
	}
	if !math.IsNaN(float64(FP16ToFloat32(bits))) {
		t.Error("NaN did not survive the round trip")
	}
}

// TestFloat16AllBits checks that decoding then encoding every finite half
// value is the identity.
func TestFloat16AllBits(t *testing.T) {
	for h := 0; h < 1<<16; h++ {
		bits := uint16(h)
		if bits&0x7C00 == 0x7C00 {
			continue
		}
		if got := Float32ToFP16(FP16ToFloat32(bits)); got != bits {
			t.Fatalf("round trip %#04x → %#04x", bits, got)
		}
	}
}
