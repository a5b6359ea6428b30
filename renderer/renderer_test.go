package renderer

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/achilleasa/octrace/asset/scene"
	"github.com/achilleasa/octrace/asset/texture"
	"github.com/achilleasa/octrace/tracer"
	"github.com/achilleasa/octrace/types"
)

type mockTracer struct {
	camera  *scene.Camera
	colorFn func(dir types.Vec3) types.Color

	mu   sync.Mutex
	rays int
}

func makeMockTracer(colorFn func(dir types.Vec3) types.Color) *mockTracer {
	return &mockTracer{camera: scene.DefaultCamera(), colorFn: colorFn}
}

func (tr *mockTracer) GetRayColour(origin, dir types.Vec3) types.Color {
	tr.mu.Lock()
	tr.rays++
	tr.mu.Unlock()
	return tr.colorFn(dir)
}

func (tr *mockTracer) Camera() *scene.Camera {
	return tr.camera
}

// Encode the sample direction into a color.
func directionColor(dir types.Vec3) types.Color {
	return types.Color{
		R: uint8(int(dir[0]*1000) & 0xff),
		G: uint8(int(dir[1]*1000) & 0xff),
		B: uint8(int(dir[0]*dir[1]*1e5) & 0xff),
	}
}

func TestRenderIsDeterministicAcrossWorkerCounts(t *testing.T) {
	var reference *Framebuffer
	for _, workers := range []int{1, 2, 7, 16} {
		tr := makeMockTracer(directionColor)
		fb, err := New(tr, Options{FrameW: 33, FrameH: 17, Workers: workers}).Render()
		if err != nil {
			t.Fatalf("[workers %d] unexpected error: %v", workers, err)
		}
		if tr.rays != 33*17*4 {
			t.Fatalf("[workers %d] expected 4 samples per pixel (%d rays); got %d", workers, 33*17*4, tr.rays)
		}

		if reference == nil {
			reference = fb
			continue
		}
		for index := range fb.Pixels {
			if fb.Pixels[index] != reference.Pixels[index] {
				t.Fatalf("[workers %d] pixel %d differs from single worker render: %v != %v", workers, index, fb.Pixels[index], reference.Pixels[index])
			}
		}
	}
}

func TestPixelSampling(t *testing.T) {
	// White above the horizontal canvas axis, black at or below it
	tr := makeMockTracer(func(dir types.Vec3) types.Color {
		if dir[1] > 0 {
			return types.White
		}
		return types.Black
	})

	fb, err := Render(tr, 4, 4)
	if err != nil {
		t.Fatal(err)
	}

	type spec struct {
		y   int
		exp types.Color
	}
	specs := []spec{
		// cy = 2 and cy = 1
		{0, types.White},
		{1, types.White},
		// cy = 0: half of the samples are offset above the axis
		{2, types.Color{R: 127, G: 127, B: 127}},
		// cy = -1
		{3, types.Black},
	}
	for index, s := range specs {
		for x := 0; x < fb.Width; x++ {
			if got := fb.At(x, s.y); got != s.exp {
				t.Fatalf("[spec %d] expected pixel (%d, %d) to be %v; got %v", index, x, s.y, s.exp, got)
			}
		}
	}
}

func TestPartialRender(t *testing.T) {
	tr := makeMockTracer(func(types.Vec3) types.Color { return types.White })
	r := New(tr, Options{FrameW: 8, FrameH: 8, Workers: 3})
	r.beforePixel = func(x, y int) {
		if (x == 1 && y == 1) || (x == 6 && y == 3) {
			panic(fmt.Sprintf("boom at %d,%d", x, y))
		}
	}

	fb, err := r.Render()
	var partialErr *PartialRenderError
	if !errors.As(err, &partialErr) {
		t.Fatalf("expected a *PartialRenderError; got %v", err)
	}
	if len(partialErr.Failed) != 2 {
		t.Fatalf("expected 2 failed pixels; got %d", len(partialErr.Failed))
	}
	if fb == nil {
		t.Fatal("expected a partial framebuffer")
	}

	for y := 0; y < fb.Height; y++ {
		for x := 0; x < fb.Width; x++ {
			exp := types.White
			if (x == 1 && y == 1) || (x == 6 && y == 3) {
				exp = types.Magenta
			}
			if got := fb.At(x, y); got != exp {
				t.Fatalf("expected pixel (%d, %d) to be %v; got %v", x, y, exp, got)
			}
		}
	}

	stats := r.Stats()
	if stats.FailedPixels != 2 {
		t.Fatalf("expected stats to report 2 failed pixels; got %d", stats.FailedPixels)
	}
	total := 0
	for _, ws := range stats.Workers {
		total += ws.Pixels
	}
	if total != 64 {
		t.Fatalf("expected workers to process 64 pixels; got %d", total)
	}
}

func TestCustomErrorColor(t *testing.T) {
	tr := makeMockTracer(func(types.Vec3) types.Color { return types.White })
	errColor := types.Color{R: 1, G: 2, B: 3}
	r := New(tr, Options{FrameW: 2, FrameH: 2, Workers: 1, ErrorColor: &errColor})
	r.beforePixel = func(x, y int) {
		if x == 0 && y == 0 {
			panic("boom")
		}
	}

	fb, err := r.Render()
	if err == nil {
		t.Fatal("expected an error")
	}
	expMsg := "renderer: 1 pixel(s) failed to render: pixel (0, 0): boom"
	if err.Error() != expMsg {
		t.Fatalf("expected error %q; got %q", expMsg, err.Error())
	}
	if got := fb.At(0, 0); got != errColor {
		t.Fatalf("expected failed pixel to use error color %v; got %v", errColor, got)
	}
}

func TestRenderErrors(t *testing.T) {
	if _, err := Render(nil, 10, 10); err != ErrNoScene {
		t.Fatalf("expected ErrNoScene; got %v", err)
	}

	tr := makeMockTracer(directionColor)
	tr.camera = nil
	if _, err := Render(tr, 10, 10); err != ErrNoScene {
		t.Fatalf("expected ErrNoScene for missing camera; got %v", err)
	}

	tr = makeMockTracer(directionColor)
	for _, dims := range [][2]int{{0, 10}, {10, 0}, {-1, 5}} {
		if _, err := Render(tr, dims[0], dims[1]); err != ErrInvalidFrameSize {
			t.Fatalf("expected ErrInvalidFrameSize for %v; got %v", dims, err)
		}
	}
}

func TestDefaultWorkerCount(t *testing.T) {
	r := New(makeMockTracer(directionColor), Options{FrameW: 4, FrameH: 4})
	if r.workerCount() < 1 {
		t.Fatalf("expected at least one worker; got %d", r.workerCount())
	}
	if _, err := r.Render(); err != nil {
		t.Fatal(err)
	}
	if len(r.Stats().Workers) != r.workerCount() {
		t.Fatalf("expected stats for %d workers; got %d", r.workerCount(), len(r.Stats().Workers))
	}
}

func TestRenderScene(t *testing.T) {
	mat := &scene.Material{
		Name:             "red",
		Ambient:          types.Vec3{1, 0, 0},
		SpecularExponent: scene.NoSpecular,
		Texture:          texture.Solid(types.White),
	}
	sc := scene.NewScene(scene.DefaultBounds, 0)
	sc.Lights = []scene.Light{scene.NewAmbientLight(1)}
	sc.AddTriangle(&scene.Triangle{
		V1:       types.Vec3{-10, -10, 0},
		V2:       types.Vec3{10, -10, 0},
		V3:       types.Vec3{0, 10, 0},
		Material: mat,
	})

	fb, err := Render(tracer.NewRayTracer(sc), 20, 20)
	if err != nil {
		t.Fatal(err)
	}

	if got := fb.At(10, 10); got != (types.Color{R: 255, G: 0, B: 0}) {
		t.Fatalf("expected center pixel to see the red triangle; got %v", got)
	}
	if got := fb.At(0, 0); got != types.White {
		t.Fatalf("expected corner pixel to see the background; got %v", got)
	}
}
