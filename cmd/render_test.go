package cmd

import (
	"bytes"
	"errors"
	"flag"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/achilleasa/octrace/renderer"
	"github.com/urfave/cli"
)

const testScene = `
camera_eye 0 0 -5
light_ambient 1.0
v -1 -1 0
v 1 -1 0
v 1 1 0
v -1 1 0
f 1 2 3 4
`

func makeContext(t *testing.T, args []string) *cli.Context {
	set := flag.NewFlagSet("render", flag.ContinueOnError)
	set.Int("width", 8, "")
	set.Int("height", 6, "")
	set.Int("workers", 2, "")
	set.Int("max-depth", 1, "")
	set.Int("octree-depth", 0, "")
	set.Bool("fit-bounds", false, "")
	set.String("out", "", "")
	if err := set.Parse(args); err != nil {
		t.Fatal(err)
	}
	return cli.NewContext(cli.NewApp(), set, nil)
}

func writeScene(t *testing.T) string {
	dir := t.TempDir()
	sceneFile := filepath.Join(dir, "quad.obj")
	if err := os.WriteFile(sceneFile, []byte(testScene), 0644); err != nil {
		t.Fatal(err)
	}
	return sceneFile
}

func TestRenderFrame(t *testing.T) {
	sceneFile := writeScene(t)
	outFile := filepath.Join(filepath.Dir(sceneFile), "frame.png")

	err := RenderFrame(makeContext(t, []string{"--out", outFile, sceneFile}))
	if err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(outFile)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	if bounds := img.Bounds(); bounds.Dx() != 8 || bounds.Dy() != 6 {
		t.Fatalf("expected 8x6 frame; got %dx%d", bounds.Dx(), bounds.Dy())
	}
}

func TestRenderFrameErrors(t *testing.T) {
	sceneFile := writeScene(t)
	outDir := filepath.Dir(sceneFile)

	specs := []struct {
		args   []string
		expErr string
	}{
		{[]string{"--out", filepath.Join(outDir, "a.png")}, "missing scene file argument"},
		{[]string{"--width", "0", "--out", filepath.Join(outDir, "b.png"), sceneFile}, "renderer: frame dimensions must be positive"},
		{[]string{"--out", filepath.Join(outDir, "c.jpg"), sceneFile}, `renderer: unsupported output image format ".jpg"`},
	}

	for specIndex, spec := range specs {
		err := RenderFrame(makeContext(t, spec.args))
		if err == nil || err.Error() != spec.expErr {
			t.Fatalf("[spec %d] expected error %q; got %v", specIndex, spec.expErr, err)
		}
	}
}

func TestShowSceneInfo(t *testing.T) {
	sceneFile := writeScene(t)
	if err := ShowSceneInfo(makeContext(t, []string{sceneFile})); err != nil {
		t.Fatal(err)
	}

	if err := ShowSceneInfo(makeContext(t, nil)); err == nil {
		t.Fatal("expected an error when the scene argument is missing")
	}
}

type failingCloser struct {
	bytes.Buffer
}

func (f *failingCloser) Close() error {
	return errors.New("flush failed")
}

func TestWriteFrameReportsCloseError(t *testing.T) {
	defer func(orig func(string) (io.WriteCloser, error)) { createFile = orig }(createFile)

	sink := &failingCloser{}
	createFile = func(string) (io.WriteCloser, error) {
		return sink, nil
	}

	err := writeFrame(renderer.NewFramebuffer(2, 2), "frame.png")
	if err == nil || err.Error() != "flush failed" {
		t.Fatalf("expected close error %q; got %v", "flush failed", err)
	}
	if sink.Len() == 0 {
		t.Fatal("expected encoded frame to be written before close")
	}
}
