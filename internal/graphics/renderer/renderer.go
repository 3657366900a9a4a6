package renderer

import (
	"fmt"

	"shadowmap/internal/graphics"
	"shadowmap/internal/graphics/gpu"
	"shadowmap/internal/profiling"

	"github.com/go-gl/mathgl/mgl32"
)

// ClearColor is the background behind the scene
var ClearColor = mgl32.Vec4{0.12, 0.13, 0.16, 1.0}

// Renderer drives a fixed set of renderables through one device and program.
// Renderables are drawn in the order given, one after another.
type Renderer struct {
	device      gpu.Device
	program     gpu.Program
	camera      *graphics.Camera
	light       graphics.Light
	renderables []Renderable

	mvp gpu.Uniform
}

// NewRenderer initializes every renderable against program. If one fails,
// the ones already initialized are disposed and the error is returned.
func NewRenderer(dev gpu.Device, program gpu.Program, camera *graphics.Camera, light graphics.Light, rs ...Renderable) (*Renderer, error) {
	r := &Renderer{
		device:      dev,
		program:     program,
		camera:      camera,
		light:       light,
		renderables: rs,
		mvp:         gpu.InvalidUniform,
	}

	// meshes bind their texture to unit 0
	dev.UseProgram(program)
	if sampler, err := dev.UniformLocation(program, graphics.UniformTexture); err == nil {
		dev.SetInt(sampler, 0)
	}

	// Initialize all renderables
	for i, rr := range rs {
		if err := rr.Init(dev, program, &r.mvp); err != nil {
			for j := i - 1; j >= 0; j-- {
				rs[j].Dispose(dev)
			}
			return nil, fmt.Errorf("renderer: init %s: %w", rr.Name(), err)
		}
	}

	return r, nil
}

// Update advances every renderable's rotation
func (r *Renderer) Update(angle float32) {
	for _, rr := range r.renderables {
		rr.Update(angle)
	}
}

// Render clears the frame and draws all renderables
func (r *Renderer) Render() {
	defer profiling.Track("renderer.Render")()

	r.device.Clear(ClearColor)
	r.device.UseProgram(r.program)

	view := r.camera.GetViewMatrix()
	projection := r.camera.GetProjectionMatrix()

	for _, rr := range r.renderables {
		rr.Render(r.device, view, projection, r.light)
	}
}

// Dispose cleans up all renderables in reverse order
func (r *Renderer) Dispose() {
	for i := len(r.renderables) - 1; i >= 0; i-- {
		r.renderables[i].Dispose(r.device)
	}
}

// GetCamera returns the camera instance
func (r *Renderer) GetCamera() *graphics.Camera {
	return r.camera
}

// Light returns the scene light
func (r *Renderer) Light() graphics.Light {
	return r.light
}

// SetLight replaces the scene light
func (r *Renderer) SetLight(l graphics.Light) {
	r.light = l
}

// MVPLocation is the MVP uniform location reported by the renderables at init
func (r *Renderer) MVPLocation() gpu.Uniform {
	return r.mvp
}

// UpdateViewport updates the camera's viewport dimensions
func (r *Renderer) UpdateViewport(width, height int) {
	r.camera.SetViewport(width, height)
}
