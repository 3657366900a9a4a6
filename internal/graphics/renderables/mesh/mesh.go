package mesh

import (
	"errors"
	"fmt"
	"log"
	"math"

	"shadowmap/internal/graphics"
	"shadowmap/internal/graphics/gpu"
	"shadowmap/internal/profiling"

	"github.com/go-gl/mathgl/mgl32"
)

// ErrInit is wrapped by every error returned from Init
var ErrInit = errors.New("mesh: init failed")

// RotationMode selects how Update interprets its angle
type RotationMode int

const (
	// RotationAbsolute sets the rotation to exactly the given angle
	RotationAbsolute RotationMode = iota
	// RotationCumulative adds the given angle to the current one
	RotationCumulative
)

func (m RotationMode) String() string {
	switch m {
	case RotationAbsolute:
		return "absolute"
	case RotationCumulative:
		return "cumulative"
	}
	return fmt.Sprintf("RotationMode(%d)", int(m))
}

// RotationAxis is the fixed axis Update rotates about
var RotationAxis = mgl32.Vec3{0, 1, 0}

type uniforms struct {
	mvp      gpu.Uniform
	mv       gpu.Uniform
	mvit     gpu.Uniform
	light    gpu.Uniform
	lightMVP gpu.Uniform
}

// Mesh is a textured, lit mesh with its own GPU buffer and texture.
// All methods must run on the render thread.
type Mesh struct {
	asset Asset
	mode  RotationMode

	buffer      gpu.Buffer
	texture     gpu.Texture
	uniforms    uniforms
	vertexCount int32
	initialized bool

	angle       float32 // degrees
	translation mgl32.Mat4
	rotation    mgl32.Mat4
}

// New creates an uninitialized mesh for the given asset
func New(asset Asset) *Mesh {
	return &Mesh{
		asset:       asset,
		translation: mgl32.Ident4(),
		rotation:    mgl32.Ident4(),
	}
}

// NewTriangle creates the unit triangle mesh
func NewTriangle() *Mesh {
	return New(TriangleAsset(DefaultTextureSize))
}

// NewCube creates the unit cube mesh
func NewCube() *Mesh {
	return New(CubeAsset(DefaultTextureSize))
}

// Name returns the asset name
func (m *Mesh) Name() string { return m.asset.Name }

// SetRotationMode switches between absolute and cumulative Update angles
func (m *Mesh) SetRotationMode(mode RotationMode) { m.mode = mode }

// Init uploads geometry and texture and resolves the uniform locations in
// program. The MVP location is also written to mvpOut when it is non-nil.
// Calling Init on an initialized mesh does nothing.
func (m *Mesh) Init(dev gpu.Device, program gpu.Program, mvpOut *gpu.Uniform) error {
	defer profiling.Track("mesh.Init")()

	if m.initialized {
		if mvpOut != nil {
			*mvpOut = m.uniforms.mvp
		}
		return nil
	}

	geom, err := m.asset.Geometry()
	if err != nil {
		return fmt.Errorf("%w: %s geometry: %w", ErrInit, m.asset.Name, err)
	}
	if geom.Count() == 0 {
		return fmt.Errorf("%w: %s geometry is empty", ErrInit, m.asset.Name)
	}
	img, err := m.asset.Texture()
	if err != nil {
		return fmt.Errorf("%w: %s texture: %w", ErrInit, m.asset.Name, err)
	}

	u, err := resolveUniforms(dev, program)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInit, m.asset.Name, err)
	}

	buffer, err := dev.NewVertexBuffer(geom.Interleave(), Layout)
	if err != nil {
		return fmt.Errorf("%w: %s vertex buffer: %w", ErrInit, m.asset.Name, err)
	}
	texture, err := dev.NewTexture(img)
	if err != nil {
		dev.DeleteBuffer(buffer)
		return fmt.Errorf("%w: %s texture upload: %w", ErrInit, m.asset.Name, err)
	}

	m.buffer = buffer
	m.texture = texture
	m.uniforms = u
	m.vertexCount = geom.Count()
	m.initialized = true

	if mvpOut != nil {
		*mvpOut = u.mvp
	}

	log.Printf("mesh %s: %d vertices, texture %dx%d", m.asset.Name, m.vertexCount, img.Rect.Dx(), img.Rect.Dy())
	return nil
}

func resolveUniforms(dev gpu.Device, program gpu.Program) (uniforms, error) {
	var u uniforms
	slots := []struct {
		name string
		dst  *gpu.Uniform
	}{
		{graphics.UniformMVP, &u.mvp},
		{graphics.UniformMV, &u.mv},
		{graphics.UniformMVIT, &u.mvit},
		{graphics.UniformLight, &u.light},
		{graphics.UniformLightMVP, &u.lightMVP},
	}
	for _, s := range slots {
		loc, err := dev.UniformLocation(program, s.name)
		if err != nil {
			return uniforms{}, err
		}
		*s.dst = loc
	}
	return u, nil
}

// Update recomputes the rotation about RotationAxis. A cumulative angle is
// kept within (-360, 360) so it does not lose float32 precision over time.
func (m *Mesh) Update(angle float32) {
	if m.mode == RotationCumulative {
		m.angle = float32(math.Mod(float64(m.angle+angle), 360))
	} else {
		m.angle = angle
	}
	m.rotation = mgl32.HomogRotate3D(mgl32.DegToRad(m.angle), RotationAxis)
}

// SetPosition moves the mesh to (x, y, z) in world space
func (m *Mesh) SetPosition(x, y, z float32) {
	m.translation = mgl32.Translate3D(x, y, z)
}

// Render draws the mesh. It is a no-op before a successful Init.
func (m *Mesh) Render(dev gpu.Device, view, projection mgl32.Mat4, light graphics.Light) {
	if !m.initialized {
		return
	}
	defer profiling.Track("mesh.Render")()

	model := m.ModelMatrix()
	mv := view.Mul4(model)
	mvp := projection.Mul4(mv)
	mvit := mv.Mat3().Inv().Transpose()
	lightMVP := light.Matrix().Mul4(model)
	lightEye := view.Mul4x1(light.Position.Vec4(1)).Vec3()

	dev.BindBuffer(m.buffer)
	dev.BindTexture(0, m.texture)

	dev.SetMatrix4(m.uniforms.mvp, mvp)
	dev.SetMatrix4(m.uniforms.mv, mv)
	dev.SetMatrix3(m.uniforms.mvit, mvit)
	dev.SetVec3(m.uniforms.light, lightEye)
	dev.SetMatrix4(m.uniforms.lightMVP, lightMVP)

	dev.DrawTriangles(m.vertexCount)
}

// Dispose releases the GPU buffer and texture. The mesh can be initialized again afterwards.
func (m *Mesh) Dispose(dev gpu.Device) {
	if !m.initialized {
		return
	}
	dev.DeleteTexture(m.texture)
	dev.DeleteBuffer(m.buffer)
	m.buffer = gpu.Buffer{}
	m.texture = 0
	m.uniforms = uniforms{}
	m.vertexCount = 0
	m.initialized = false
}

// Initialized reports whether Init has succeeded
func (m *Mesh) Initialized() bool { return m.initialized }

// VertexCount is the number of vertices drawn per Render, 0 before Init
func (m *Mesh) VertexCount() int32 { return m.vertexCount }

// Buffer returns the vertex buffer handle, invalid before Init
func (m *Mesh) Buffer() gpu.Buffer { return m.buffer }

// Texture returns the texture handle, invalid before Init
func (m *Mesh) Texture() gpu.Texture { return m.texture }

// Angle returns the current rotation angle in degrees
func (m *Mesh) Angle() float32 { return m.angle }

func (m *Mesh) Translation() mgl32.Mat4 { return m.translation }

func (m *Mesh) Rotation() mgl32.Mat4 { return m.rotation }

// ModelMatrix is translation * rotation
func (m *Mesh) ModelMatrix() mgl32.Mat4 {
	return m.translation.Mul4(m.rotation)
}
