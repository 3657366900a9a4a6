package gpu

import (
	"fmt"
	"image"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
)

// GL implements Device on top of an OpenGL 4.1 core context.
// The context must be current on the calling thread before NewGL is called.
type GL struct{}

var _ Device = (*GL)(nil)

// NewGL loads the GL function pointers for the current context
func NewGL() (*GL, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("gpu: gl init: %w", err)
	}
	gl.Enable(gl.DEPTH_TEST)
	gl.Enable(gl.CULL_FACE)
	gl.CullFace(gl.BACK)
	gl.FrontFace(gl.CCW)
	return &GL{}, nil
}

// Version returns the driver's GL version string
func (d *GL) Version() string {
	return gl.GoStr(gl.GetString(gl.VERSION))
}

// Viewport resizes the drawable area, e.g. after a framebuffer resize
func (d *GL) Viewport(width, height int) {
	gl.Viewport(0, 0, int32(width), int32(height))
}

func (d *GL) NewVertexBuffer(data []float32, layout VertexLayout) (Buffer, error) {
	if len(data) == 0 {
		return Buffer{}, fmt.Errorf("gpu: empty vertex data")
	}
	if layout.Stride <= 0 || len(data)%layout.FloatsPerVertex() != 0 {
		return Buffer{}, fmt.Errorf("gpu: %d floats do not fit stride %d", len(data), layout.Stride)
	}

	var b Buffer
	gl.GenVertexArrays(1, &b.VAO)
	gl.BindVertexArray(b.VAO)

	gl.GenBuffers(1, &b.VBO)
	gl.BindBuffer(gl.ARRAY_BUFFER, b.VBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(data)*4, gl.Ptr(data), gl.STATIC_DRAW)

	for _, a := range layout.Attributes {
		gl.EnableVertexAttribArray(a.Location)
		gl.VertexAttribPointerWithOffset(a.Location, a.Size, gl.FLOAT, false, int32(layout.Stride), uintptr(a.Offset))
	}

	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)

	if err := checkError("vertex buffer"); err != nil {
		d.DeleteBuffer(b)
		return Buffer{}, err
	}
	return b, nil
}

func (d *GL) DeleteBuffer(b Buffer) {
	if b.VAO != 0 {
		gl.DeleteVertexArrays(1, &b.VAO)
	}
	if b.VBO != 0 {
		gl.DeleteBuffers(1, &b.VBO)
	}
}

func (d *GL) NewTexture(img *image.RGBA) (Texture, error) {
	if img == nil || img.Rect.Empty() {
		return 0, fmt.Errorf("gpu: empty texture image")
	}
	size := img.Rect.Size()

	var tex uint32
	gl.GenTextures(1, &tex)
	gl.BindTexture(gl.TEXTURE_2D, tex)

	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)

	gl.TexImage2D(
		gl.TEXTURE_2D,
		0,
		gl.RGBA8,
		int32(size.X),
		int32(size.Y),
		0,
		gl.RGBA,
		gl.UNSIGNED_BYTE,
		gl.Ptr(img.Pix),
	)
	gl.GenerateMipmap(gl.TEXTURE_2D)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	if err := checkError("texture"); err != nil {
		gl.DeleteTextures(1, &tex)
		return 0, err
	}
	return Texture(tex), nil
}

func (d *GL) DeleteTexture(t Texture) {
	if t == 0 {
		return
	}
	name := uint32(t)
	gl.DeleteTextures(1, &name)
}

func (d *GL) UniformLocation(p Program, name string) (Uniform, error) {
	loc := gl.GetUniformLocation(uint32(p), gl.Str(name+"\x00"))
	if loc < 0 {
		return InvalidUniform, fmt.Errorf("%w: %q in program %d", ErrUniformNotFound, name, p)
	}
	return Uniform(loc), nil
}

func (d *GL) UseProgram(p Program) {
	gl.UseProgram(uint32(p))
}

func (d *GL) BindBuffer(b Buffer) {
	gl.BindVertexArray(b.VAO)
}

func (d *GL) BindTexture(unit uint32, t Texture) {
	gl.ActiveTexture(gl.TEXTURE0 + unit)
	gl.BindTexture(gl.TEXTURE_2D, uint32(t))
}

func (d *GL) SetInt(u Uniform, v int32) {
	gl.Uniform1i(int32(u), v)
}

func (d *GL) SetVec3(u Uniform, v mgl32.Vec3) {
	gl.Uniform3f(int32(u), v[0], v[1], v[2])
}

func (d *GL) SetMatrix3(u Uniform, m mgl32.Mat3) {
	gl.UniformMatrix3fv(int32(u), 1, false, &m[0])
}

func (d *GL) SetMatrix4(u Uniform, m mgl32.Mat4) {
	gl.UniformMatrix4fv(int32(u), 1, false, &m[0])
}

func (d *GL) DrawTriangles(count int32) {
	gl.DrawArrays(gl.TRIANGLES, 0, count)
}

func (d *GL) Clear(color mgl32.Vec4) {
	gl.ClearColor(color[0], color[1], color[2], color[3])
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

// CompileProgram compiles and links a vertex/fragment program
func (d *GL) CompileProgram(vertexSrc, fragmentSrc string) (Program, error) {
	vertexShader, err := compileShader(vertexSrc, gl.VERTEX_SHADER)
	if err != nil {
		return 0, fmt.Errorf("vertex shader: %w", err)
	}
	fragmentShader, err := compileShader(fragmentSrc, gl.FRAGMENT_SHADER)
	if err != nil {
		gl.DeleteShader(vertexShader)
		return 0, fmt.Errorf("fragment shader: %w", err)
	}

	program := gl.CreateProgram()
	gl.AttachShader(program, vertexShader)
	gl.AttachShader(program, fragmentShader)
	gl.LinkProgram(program)

	// shaders can be deleted after linking
	gl.DeleteShader(vertexShader)
	gl.DeleteShader(fragmentShader)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)

		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(log))
		gl.DeleteProgram(program)

		return 0, fmt.Errorf("failed to link program: %v", strings.TrimRight(log, "\x00"))
	}
	return Program(program), nil
}

// DeleteProgram releases a program created by CompileProgram
func (d *GL) DeleteProgram(p Program) {
	if p != 0 {
		gl.DeleteProgram(uint32(p))
	}
}

func compileShader(source string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)

		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(log))
		gl.DeleteShader(shader)

		return 0, fmt.Errorf("failed to compile shader: %v", strings.TrimRight(log, "\x00"))
	}
	return shader, nil
}

func checkError(label string) error {
	if code := gl.GetError(); code != gl.NO_ERROR {
		switch code {
		case gl.OUT_OF_MEMORY:
			return fmt.Errorf("gpu: %s: out of memory", label)
		default:
			return fmt.Errorf("gpu: %s: gl error 0x%x", label, code)
		}
	}
	return nil
}
