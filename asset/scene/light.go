package scene

import (
	"fmt"

	"github.com/achilleasa/octrace/types"
)

type LightType uint8

const (
	AmbientLight LightType = iota
	PointLight
	DirectionalLight
)

func (lt LightType) String() string {
	switch lt {
	case AmbientLight:
		return "ambient"
	case PointLight:
		return "point"
	case DirectionalLight:
		return "directional"
	}
	return fmt.Sprintf("LightType(%d)", lt)
}

// A scene light.
type Light struct {
	Type      LightType
	Intensity float64

	// Light position; only used by point lights.
	Position types.Vec3

	// Direction from a lit surface towards the light; only used by
	// directional lights.
	Direction types.Vec3
}

// Create an ambient light that illuminates every surface unconditionally.
func NewAmbientLight(intensity float64) Light {
	return Light{Type: AmbientLight, Intensity: intensity}
}

// Create a point light.
func NewPointLight(intensity float64, position types.Vec3) Light {
	return Light{Type: PointLight, Intensity: intensity, Position: position}
}

// Create a directional light. The direction points from the lit surfaces
// towards the light.
func NewDirectionalLight(intensity float64, direction types.Vec3) Light {
	return Light{Type: DirectionalLight, Intensity: intensity, Direction: direction}
}

func (l Light) String() string {
	switch l.Type {
	case PointLight:
		return fmt.Sprintf("%s light, intensity %.2f at %v", l.Type, l.Intensity, l.Position)
	case DirectionalLight:
		return fmt.Sprintf("%s light, intensity %.2f towards %v", l.Type, l.Intensity, l.Direction)
	}
	return fmt.Sprintf("%s light, intensity %.2f", l.Type, l.Intensity)
}

// The light rig used when a scene does not define any lights.
func DefaultLights() []Light {
	return []Light{
		NewAmbientLight(0.4),
		NewPointLight(0.7, types.Vec3{2, 2, 0}),
		NewDirectionalLight(0.5, types.Vec3{-5, 0, 2}),
	}
}
