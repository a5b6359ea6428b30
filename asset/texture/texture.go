package texture

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"math"

	"github.com/achilleasa/octrace/asset"
	"github.com/achilleasa/octrace/types"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// A decoded texture image. Texel data is stored in row-major order with the
// first row at the top of the image. Textures are immutable once created
// and may be shared between any number of materials and goroutines.
type Texture struct {
	Name string

	Width  int
	Height int

	Data []types.Color
}

// Create a new texture by decoding an image resource. Supported formats are
// png, jpeg, gif, bmp, tiff and webp.
func New(res *asset.Resource) (*Texture, error) {
	img, imgFmt, err := image.Decode(res)
	if err != nil {
		return nil, fmt.Errorf("texture: could not decode %s: %s", res.Path(), err.Error())
	}

	tex, err := FromImage(img)
	if err != nil {
		return nil, fmt.Errorf("texture: %s (%s): %s", res.Path(), imgFmt, err.Error())
	}
	tex.Name = res.Name()
	return tex, nil
}

// Create a texture from an image. Alpha is discarded.
func FromImage(img image.Image) (*Texture, error) {
	bounds := img.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		return nil, fmt.Errorf("texture: unsupported empty image")
	}

	tex := &Texture{
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
		Data:   make([]types.Color, bounds.Dx()*bounds.Dy()),
	}

	// Fast path for the most common decoder output
	if rgba, ok := img.(*image.RGBA); ok {
		for y := 0; y < tex.Height; y++ {
			rOffset := rgba.PixOffset(bounds.Min.X, bounds.Min.Y+y)
			for x := 0; x < tex.Width; x++ {
				tex.Data[y*tex.Width+x] = types.Color{R: rgba.Pix[rOffset], G: rgba.Pix[rOffset+1], B: rgba.Pix[rOffset+2]}
				rOffset += 4
			}
		}
		return tex, nil
	}

	for y := 0; y < tex.Height; y++ {
		for x := 0; x < tex.Width; x++ {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			tex.Data[y*tex.Width+x] = types.Color{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8)}
		}
	}
	return tex, nil
}

// Create a 1x1 texture with a single color.
func Solid(c types.Color) *Texture {
	return &Texture{
		Name:   c.String(),
		Width:  1,
		Height: 1,
		Data:   []types.Color{c},
	}
}

// Get the texel at (x, y). Coordinates wrap around the texture edges.
func (t *Texture) At(x, y int) types.Color {
	return t.Data[wrap(y, t.Height)*t.Width+wrap(x, t.Width)]
}

// Sample the texture using uv coordinates. The coordinates are scaled by the
// texture dimensions and the resulting texel indices wrap around (modulo
// width/height) so uv values outside [0, 1] tile the texture.
func (t *Texture) Texel(u, v float64) types.Color {
	return t.At(scaleCoord(u, t.Width), scaleCoord(v, t.Height))
}

func scaleCoord(c float64, size int) int {
	s := math.Floor(c * float64(size))
	if math.IsNaN(s) || math.IsInf(s, 0) {
		return 0
	}
	// Reduce before converting so huge coordinates do not overflow int
	return int(math.Mod(s, float64(size)))
}

func wrap(index, size int) int {
	index %= size
	if index < 0 {
		index += size
	}
	return index
}
