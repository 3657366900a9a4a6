package graphics

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Light is a directional shadow-casting light. Its transform maps world space
// into the light's orthographic clip volume, the space a shadow map is
// rendered in.
type Light struct {
	Position mgl32.Vec3
	Target   mgl32.Vec3
	Extent   float32 // half width of the orthographic volume
	Near     float32
	Far      float32
}

func NewLight(position, target mgl32.Vec3) Light {
	return Light{
		Position: position,
		Target:   target,
		Extent:   5.0,
		Near:     0.1,
		Far:      30.0,
	}
}

// up picks a world up vector that is not parallel to the light direction
func (l Light) up() mgl32.Vec3 {
	dir := l.Target.Sub(l.Position)
	if dir.Len() == 0 {
		return mgl32.Vec3{0, 1, 0}
	}
	dir = dir.Normalize()
	if abs(dir.Dot(mgl32.Vec3{0, 1, 0})) > 0.999 {
		return mgl32.Vec3{0, 0, -1}
	}
	return mgl32.Vec3{0, 1, 0}
}

// ViewMatrix looks from the light position at its target
func (l Light) ViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(l.Position, l.Target, l.up())
}

// ProjectionMatrix is the orthographic volume covered by the light
func (l Light) ProjectionMatrix() mgl32.Mat4 {
	e := l.Extent
	return mgl32.Ortho(-e, e, -e, e, l.Near, l.Far)
}

// Matrix returns projection * view for the light
func (l Light) Matrix() mgl32.Mat4 {
	return l.ProjectionMatrix().Mul4(l.ViewMatrix())
}

func abs(f float32) float32 {
	if f < 0 {
		return -f
	}
	return f
}
