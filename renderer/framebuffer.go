package renderer

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"path/filepath"
	"strings"

	"github.com/achilleasa/octrace/types"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// A Framebuffer holds the rendered frame as a row-major list of colors with
// row 0 at the top.
type Framebuffer struct {
	Width  int
	Height int
	Pixels []types.Color
}

// Create a framebuffer with all pixels set to black.
func NewFramebuffer(width, height int) *Framebuffer {
	return &Framebuffer{
		Width:  width,
		Height: height,
		Pixels: make([]types.Color, width*height),
	}
}

// Set the color of pixel (x, y).
func (fb *Framebuffer) Set(x, y int, c types.Color) {
	fb.Pixels[y*fb.Width+x] = c
}

// Get the color of pixel (x, y).
func (fb *Framebuffer) At(x, y int) types.Color {
	return fb.Pixels[y*fb.Width+x]
}

// Convert the framebuffer to an RGBA image.
func (fb *Framebuffer) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, fb.Width, fb.Height))
	for index, c := range fb.Pixels {
		offset := index * 4
		img.Pix[offset] = c.R
		img.Pix[offset+1] = c.G
		img.Pix[offset+2] = c.B
		img.Pix[offset+3] = 255
	}
	return img
}

// Encode the framebuffer as PNG.
func (fb *Framebuffer) WritePNG(w io.Writer) error {
	return png.Encode(w, fb.Image())
}

// Encode the framebuffer using the image format implied by the extension of
// filename (png, bmp or tiff).
func (fb *Framebuffer) WriteImage(w io.Writer, filename string) error {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".png", "":
		return fb.WritePNG(w)
	case ".bmp":
		return bmp.Encode(w, fb.Image())
	case ".tif", ".tiff":
		return tiff.Encode(w, fb.Image(), &tiff.Options{Compression: tiff.Deflate})
	}
	return fmt.Errorf("renderer: unsupported output image format %q", filepath.Ext(filename))
}
