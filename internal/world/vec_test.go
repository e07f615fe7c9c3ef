package world

import (
	"errors"
	"math"
	"testing"
)

func TestNewHeadingNormalises(t *testing.T) {
	h, err := NewHeading(3, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(h.X-0.6) > 1e-12 || math.Abs(h.Y-0.8) > 1e-12 {
		t.Fatalf("expected (0.6,0.8), got %+v", h)
	}
	if math.Abs(h.Len()-1) > 1e-12 {
		t.Fatalf("expected unit length, got %v", h.Len())
	}
}

func TestNewHeadingRejectsDegenerateInput(t *testing.T) {
	cases := []struct {
		name   string
		dx, dy float64
	}{
		{"zero", 0, 0},
		{"nan", math.NaN(), 1},
		{"inf", math.Inf(1), 0},
		{"negative inf", 1, math.Inf(-1)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewHeading(tc.dx, tc.dy); !errors.Is(err, ErrInvalidHeading) {
				t.Fatalf("expected ErrInvalidHeading, got %v", err)
			}
		})
	}
}
