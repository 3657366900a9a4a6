package gpu

import (
	"errors"
	"image"

	"github.com/go-gl/mathgl/mgl32"
)

// ErrUniformNotFound is returned when a program has no active uniform with the requested name
var ErrUniformNotFound = errors.New("gpu: uniform not found")

// Buffer is a vertex array object together with its backing vertex buffer
type Buffer struct {
	VAO uint32
	VBO uint32
}

// Valid reports whether both objects were allocated
func (b Buffer) Valid() bool {
	return b.VAO != 0 && b.VBO != 0
}

// Texture is a 2D texture object name
type Texture uint32

func (t Texture) Valid() bool { return t != 0 }

// Program is a linked shader program name
type Program uint32

func (p Program) Valid() bool { return p != 0 }

// Uniform is a uniform location inside a program. -1 means unresolved.
type Uniform int32

// InvalidUniform is the location GL reports for unknown names
const InvalidUniform Uniform = -1

func (u Uniform) Valid() bool { return u >= 0 }

// Attribute describes one float attribute inside an interleaved vertex
type Attribute struct {
	Location uint32
	Size     int32 // component count
	Offset   int   // bytes from vertex start
}

// VertexLayout describes an interleaved float32 vertex stream
type VertexLayout struct {
	Stride     int // bytes per vertex
	Attributes []Attribute
}

// FloatsPerVertex returns the number of float32 values making up one vertex
func (l VertexLayout) FloatsPerVertex() int {
	return l.Stride / 4
}

// Device is the render-thread GPU context. Every call mutates shared pipeline
// binding state, so a Device must only be used from the goroutine that owns
// the GL context.
type Device interface {
	NewVertexBuffer(data []float32, layout VertexLayout) (Buffer, error)
	DeleteBuffer(b Buffer)
	NewTexture(img *image.RGBA) (Texture, error)
	DeleteTexture(t Texture)

	UniformLocation(p Program, name string) (Uniform, error)
	UseProgram(p Program)

	BindBuffer(b Buffer)
	BindTexture(unit uint32, t Texture)

	SetInt(u Uniform, v int32)
	SetVec3(u Uniform, v mgl32.Vec3)
	SetMatrix3(u Uniform, m mgl32.Mat3)
	SetMatrix4(u Uniform, m mgl32.Mat4)

	DrawTriangles(count int32)
	Clear(color mgl32.Vec4)
}
