package graphics

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
)

// Shader file names, relative to the shader directory
const (
	MeshVertShader = "mesh.vert"
	MeshFragShader = "mesh.frag"
)

// Uniform names consumed by the mesh program
const (
	UniformMVP      = "uMVPMatrix"
	UniformMV       = "uMVMatrix"
	UniformMVIT     = "uMVITMatrix"
	UniformLight    = "uLightPosition"
	UniformLightMVP = "uLightMVPMatrix"
	UniformTexture  = "sTexture"
)

// MeshUniforms lists every uniform a mesh resolves at init time
var MeshUniforms = []string{
	UniformMVP,
	UniformMV,
	UniformMVIT,
	UniformLight,
	UniformLightMVP,
}

//go:embed shaders/*.vert shaders/*.frag
var builtinShaders embed.FS

// ShaderSources holds the GLSL text for one program
type ShaderSources struct {
	Vertex   string
	Fragment string
}

// LoadShaderSources reads the mesh program from dir. An empty dir selects
// the sources compiled into the binary.
func LoadShaderSources(dir string) (ShaderSources, error) {
	if dir == "" {
		return readSources(builtinShaders.ReadFile, "shaders")
	}
	return readSources(os.ReadFile, dir)
}

func readSources(read func(string) ([]byte, error), dir string) (ShaderSources, error) {
	vertexSource, err := read(filepath.ToSlash(filepath.Join(dir, MeshVertShader)))
	if err != nil {
		return ShaderSources{}, fmt.Errorf("could not read vertex shader file: %w", err)
	}

	fragmentSource, err := read(filepath.ToSlash(filepath.Join(dir, MeshFragShader)))
	if err != nil {
		return ShaderSources{}, fmt.Errorf("could not read fragment shader file: %w", err)
	}

	return ShaderSources{Vertex: string(vertexSource), Fragment: string(fragmentSource)}, nil
}
