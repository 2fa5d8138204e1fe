package math

import "testing"

func TestClamp(t *testing.T) {
	tests := []struct {
		name         string
		f, low, high uint32
		want         uint32
	}{
		{"below", 1, 2, 10, 2},
		{"inside", 5, 2, 10, 5},
		{"above", 11, 2, 10, 10},
		{"on edge", 10, 2, 10, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clamp(tt.f, tt.low, tt.high); got != tt.want {
				t.Errorf("Clamp(%d, %d, %d) = %d, want %d", tt.f, tt.low, tt.high, got, tt.want)
			}
		})
	}

	if got := Clamp(-0.5, 0.0, 1.0); got != 0 {
		t.Errorf("Clamp(-0.5, 0, 1) = %v, want 0", got)
	}
}

func TestAspectRatio(t *testing.T) {
	if got := AspectRatio(1280, 720); got != float32(1280)/720 {
		t.Errorf("AspectRatio(1280, 720) = %v", got)
	}
	if got := AspectRatio[uint32](0, 720); got != 1 {
		t.Errorf("AspectRatio(0, 720) = %v, want 1", got)
	}
	if got := AspectRatio(-4, 3); got != 1 {
		t.Errorf("AspectRatio(-4, 3) = %v, want 1", got)
	}
}
