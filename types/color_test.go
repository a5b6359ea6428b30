package types

import (
	"image/color"
	"testing"
)

func TestColorModulateClamps(t *testing.T) {
	type spec struct {
		in      Color
		factors Vec3
		exp     Color
	}
	specs := []spec{
		{Color{100, 100, 100}, Vec3{1, 1, 1}, Color{100, 100, 100}},
		{Color{100, 200, 50}, Vec3{0.5, 2, 0}, Color{50, 255, 0}},
		{Color{255, 255, 255}, Vec3{-1, 0.5, 10}, Color{0, 127, 255}},
	}

	for index, s := range specs {
		if got := s.in.Modulate(s.factors); got != s.exp {
			t.Fatalf("[spec %d] expected %v; got %v", index, s.exp, got)
		}
	}
}

func TestColorLerp(t *testing.T) {
	a := Color{0, 100, 200}
	b := Color{200, 100, 0}

	if got := a.Lerp(b, 0); got != a {
		t.Fatalf("expected t=0 to yield %v; got %v", a, got)
	}
	if got := a.Lerp(b, 1); got != b {
		t.Fatalf("expected t=1 to yield %v; got %v", b, got)
	}
	if exp, got := (Color{100, 100, 100}), a.Lerp(b, 0.5); got != exp {
		t.Fatalf("expected t=0.5 to yield %v; got %v", exp, got)
	}
}

func TestAverageColors(t *testing.T) {
	got := AverageColors(Color{0, 0, 0}, Color{255, 255, 255}, Color{255, 0, 0}, Color{255, 0, 0})
	exp := Color{191, 63, 63}
	if got != exp {
		t.Fatalf("expected average to be %v; got %v", exp, got)
	}

	if got := AverageColors(); got != Black {
		t.Fatalf("expected average of no colors to be black; got %v", got)
	}
}

func TestColorImplementsImageColor(t *testing.T) {
	var c color.Color = Color{255, 0, 128}
	r, g, b, a := c.RGBA()
	if r != 0xffff || g != 0 || b != 0x8080 || a != 0xffff {
		t.Fatalf("expected (ffff, 0, 8080, ffff); got (%x, %x, %x, %x)", r, g, b, a)
	}
}
