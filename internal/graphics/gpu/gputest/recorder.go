// Package gputest provides a recording gpu.Device for tests that have no GL context.
package gputest

import (
	"errors"
	"fmt"
	"image"

	"shadowmap/internal/graphics/gpu"

	"github.com/go-gl/mathgl/mgl32"
)

// Draw captures the binding and uniform state at the moment of a draw call
type Draw struct {
	Program gpu.Program
	Buffer  gpu.Buffer
	Texture gpu.Texture
	Count   int32
	Mat4    map[gpu.Uniform]mgl32.Mat4
	Mat3    map[gpu.Uniform]mgl32.Mat3
	Vec3    map[gpu.Uniform]mgl32.Vec3
}

var _ gpu.Device = (*Recorder)(nil)

// Recorder is an in-memory gpu.Device. Uniform names registered with
// NewRecorder resolve to sequential locations; anything else is reported
// as gpu.ErrUniformNotFound.
type Recorder struct {
	// Failure injection
	FailBuffers  bool
	FailTextures bool

	Draws  []Draw
	Clears int

	uniforms map[string]gpu.Uniform
	nextName uint32

	buffers  map[gpu.Buffer]int // live buffer -> float count
	textures map[gpu.Texture]image.Point

	program gpu.Program
	buffer  gpu.Buffer
	texture gpu.Texture
	mat4    map[gpu.Uniform]mgl32.Mat4
	mat3    map[gpu.Uniform]mgl32.Mat3
	vec3    map[gpu.Uniform]mgl32.Vec3
	ints    map[gpu.Uniform]int32
}

// NewRecorder returns a Recorder that knows the given uniform names
func NewRecorder(uniforms ...string) *Recorder {
	r := &Recorder{
		uniforms: make(map[string]gpu.Uniform, len(uniforms)),
		buffers:  make(map[gpu.Buffer]int),
		textures: make(map[gpu.Texture]image.Point),
		mat4:     make(map[gpu.Uniform]mgl32.Mat4),
		mat3:     make(map[gpu.Uniform]mgl32.Mat3),
		vec3:     make(map[gpu.Uniform]mgl32.Vec3),
		ints:     make(map[gpu.Uniform]int32),
	}
	for i, name := range uniforms {
		r.uniforms[name] = gpu.Uniform(i)
	}
	return r
}

func (r *Recorder) name() uint32 {
	r.nextName++
	return r.nextName
}

func (r *Recorder) NewVertexBuffer(data []float32, layout gpu.VertexLayout) (gpu.Buffer, error) {
	if r.FailBuffers {
		return gpu.Buffer{}, errors.New("gputest: buffer allocation failed")
	}
	if len(data) == 0 {
		return gpu.Buffer{}, errors.New("gputest: empty vertex data")
	}
	if layout.Stride <= 0 || len(data)%layout.FloatsPerVertex() != 0 {
		return gpu.Buffer{}, fmt.Errorf("gputest: %d floats do not fit stride %d", len(data), layout.Stride)
	}
	b := gpu.Buffer{VAO: r.name(), VBO: r.name()}
	r.buffers[b] = len(data)
	return b, nil
}

func (r *Recorder) DeleteBuffer(b gpu.Buffer) {
	delete(r.buffers, b)
}

func (r *Recorder) NewTexture(img *image.RGBA) (gpu.Texture, error) {
	if r.FailTextures {
		return 0, errors.New("gputest: texture allocation failed")
	}
	if img == nil || img.Rect.Empty() {
		return 0, errors.New("gputest: empty texture image")
	}
	t := gpu.Texture(r.name())
	r.textures[t] = img.Rect.Size()
	return t, nil
}

func (r *Recorder) DeleteTexture(t gpu.Texture) {
	delete(r.textures, t)
}

func (r *Recorder) UniformLocation(p gpu.Program, name string) (gpu.Uniform, error) {
	u, ok := r.uniforms[name]
	if !ok {
		return gpu.InvalidUniform, fmt.Errorf("%w: %q in program %d", gpu.ErrUniformNotFound, name, p)
	}
	return u, nil
}

func (r *Recorder) UseProgram(p gpu.Program)               { r.program = p }
func (r *Recorder) BindBuffer(b gpu.Buffer)                { r.buffer = b }
func (r *Recorder) BindTexture(_ uint32, t gpu.Texture)    { r.texture = t }
func (r *Recorder) SetInt(u gpu.Uniform, v int32)          { r.ints[u] = v }
func (r *Recorder) SetVec3(u gpu.Uniform, v mgl32.Vec3)    { r.vec3[u] = v }
func (r *Recorder) SetMatrix3(u gpu.Uniform, m mgl32.Mat3) { r.mat3[u] = m }
func (r *Recorder) SetMatrix4(u gpu.Uniform, m mgl32.Mat4) { r.mat4[u] = m }
func (r *Recorder) Clear(mgl32.Vec4)                       { r.Clears++ }

func (r *Recorder) DrawTriangles(count int32) {
	d := Draw{
		Program: r.program,
		Buffer:  r.buffer,
		Texture: r.texture,
		Count:   count,
		Mat4:    make(map[gpu.Uniform]mgl32.Mat4, len(r.mat4)),
		Mat3:    make(map[gpu.Uniform]mgl32.Mat3, len(r.mat3)),
		Vec3:    make(map[gpu.Uniform]mgl32.Vec3, len(r.vec3)),
	}
	for k, v := range r.mat4 {
		d.Mat4[k] = v
	}
	for k, v := range r.mat3 {
		d.Mat3[k] = v
	}
	for k, v := range r.vec3 {
		d.Vec3[k] = v
	}
	r.Draws = append(r.Draws, d)
}

// Uniform returns the location registered for name, or InvalidUniform
func (r *Recorder) Uniform(name string) gpu.Uniform {
	if u, ok := r.uniforms[name]; ok {
		return u
	}
	return gpu.InvalidUniform
}

// LiveBuffers returns the number of buffers not yet deleted
func (r *Recorder) LiveBuffers() int { return len(r.buffers) }

// LiveTextures returns the number of textures not yet deleted
func (r *Recorder) LiveTextures() int { return len(r.textures) }

// BufferFloats returns the float count uploaded into b, 0 if b is not live
func (r *Recorder) BufferFloats(b gpu.Buffer) int { return r.buffers[b] }

// TextureSize returns the dimensions uploaded into t
func (r *Recorder) TextureSize(t gpu.Texture) image.Point { return r.textures[t] }
