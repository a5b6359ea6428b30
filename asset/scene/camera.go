package scene

import (
	"fmt"

	"github.com/achilleasa/octrace/types"
)

// The viewport is a rectangle placed in front of the camera at a fixed
// distance. Canvas pixels are mapped onto the viewport to generate ray
// directions.
type Viewport struct {
	Width    float64
	Height   float64
	Distance float64
}

// A pinhole camera looking down the +Z axis. Yaw and pitch (in radians)
// rotate the generated ray directions.
type Camera struct {
	Origin   types.Vec3
	Viewport Viewport
	Yaw      float64
	Pitch    float64
}

// Create a camera at the default scene position looking through a unit viewport.
func DefaultCamera() *Camera {
	return &Camera{
		Origin:   types.Vec3{0, 0, -60},
		Viewport: Viewport{Width: 1, Height: 1, Distance: 1},
	}
}

// Get the camera rotation as a quaternion.
func (c *Camera) Orientation() types.Quat {
	return types.QuatFromYawPitch(c.Yaw, c.Pitch)
}

// Map the canvas point (cx, cy) of a canvasW x canvasH frame to a ray
// direction. Canvas coordinates are centered: (0, 0) is the middle of the
// frame and +y points up. The returned direction is not normalized.
func (c *Camera) RayDirection(cx, cy float64, canvasW, canvasH int) types.Vec3 {
	dir := types.Vec3{
		cx * c.Viewport.Width / float64(canvasW),
		cy * c.Viewport.Height / float64(canvasH),
		c.Viewport.Distance,
	}
	if c.Yaw == 0 && c.Pitch == 0 {
		return dir
	}
	return c.Orientation().Rotate(dir)
}

func (c *Camera) String() string {
	return fmt.Sprintf(
		"eye %v, viewport %.2fx%.2f at %.2f, yaw %.2f pitch %.2f",
		c.Origin, c.Viewport.Width, c.Viewport.Height, c.Viewport.Distance, c.Yaw, c.Pitch,
	)
}
