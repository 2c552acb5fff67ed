package visibility

import (
	"math"
	"testing"
)

func TestIsFrontFacing(t *testing.T) {
	tests := []struct {
		z    float64
		want bool
	}{
		{1, true},
		{1e-9, true},
		{0, false},
		{-1, false},
	}
	for _, tt := range tests {
		if got := IsFrontFacing(tt.z); got != tt.want {
			t.Errorf("IsFrontFacing(%v) = %v, want %v", tt.z, got, tt.want)
		}
	}
}

func TestIsInsideViewport(t *testing.T) {
	tests := []struct {
		name   string
		x, y   float64
		margin float64
		want   bool
	}{
		{"centre", 50, 50, 0, true},
		{"top-left corner", 0, 0, 0, true},
		{"bottom-right corner", 100, 80, 0, true},
		{"just left", -0.1, 40, 0, false},
		{"just below", 40, 80.1, 0, false},
		{"inside margin", -5, 85, 10, true},
		{"outside margin", -10.5, 40, 10, false},
		{"disabled", -1e9, 1e9, -1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsInsideViewport(tt.x, tt.y, tt.margin, 100, 80); got != tt.want {
				t.Errorf("IsInsideViewport(%v, %v, %v) = %v, want %v", tt.x, tt.y, tt.margin, got, tt.want)
			}
		})
	}
}

func TestIsInsideViewportNaN(t *testing.T) {
	if IsInsideViewport(math.NaN(), 10, 0, 100, 100) {
		t.Error("NaN coordinate should be outside the viewport")
	}
}

func TestOnPlane(t *testing.T) {
	if !OnPlane(0, 5e-5, PlaneEpsilon) {
		t.Error("points within epsilon should be on the plane")
	}
	if OnPlane(0, 2e-4, PlaneEpsilon) {
		t.Error("second endpoint off the plane")
	}
	if OnPlane(-1, 0, PlaneEpsilon) {
		t.Error("first endpoint off the plane")
	}
}

func TestFilter(t *testing.T) {
	f := Filter{Width: 100, Height: 100, Projective: true}
	if !f.Visible(10, 10, 1) {
		t.Error("on-screen point in front should be visible")
	}
	if f.Visible(10, 10, -1) {
		t.Error("point behind the camera should be hidden")
	}
	if f.Visible(200, 10, 1) {
		t.Error("off-screen point should be hidden")
	}

	flat := Filter{Width: 100, Height: 100}
	if !flat.Visible(10, 10, -1) {
		t.Error("flat filter should ignore depth")
	}

	all := Filter{Width: 100, Height: 100, Margin: -1, Projective: true}
	if !all.Visible(1e6, -1e6, 1) {
		t.Error("negative margin should keep off-screen points")
	}
	if all.Visible(1e6, -1e6, 0) {
		t.Error("negative margin still applies the depth test")
	}
}
