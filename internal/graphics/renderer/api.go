package renderer

import (
	"shadowmap/internal/graphics"
	"shadowmap/internal/graphics/gpu"

	"github.com/go-gl/mathgl/mgl32"
)

// Renderable interface defines the lifecycle for drawable scene objects.
// The device is passed to every call that touches GPU state.
type Renderable interface {
	Name() string
	Init(dev gpu.Device, program gpu.Program, mvpOut *gpu.Uniform) error
	Update(angle float32)
	Render(dev gpu.Device, view, projection mgl32.Mat4, light graphics.Light)
	Dispose(dev gpu.Device)
}
