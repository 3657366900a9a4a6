package main

import (
	"fmt"

	"shadowmap/internal/config"
	"shadowmap/internal/graphics"
	"shadowmap/internal/graphics/gpu"
	"shadowmap/internal/graphics/renderables/mesh"
	renderer "shadowmap/internal/graphics/renderer"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"
)

func setupWindow(s config.WindowSettings) (*glfw.Window, error) {
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)

	window, err := glfw.CreateWindow(s.Width, s.Height, s.Title, nil, nil)
	if err != nil {
		return nil, err
	}
	window.MakeContextCurrent()

	if s.VSync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}
	return window, nil
}

// Scene holds the GPU objects owned by main
type Scene struct {
	Device   *gpu.GL
	Program  gpu.Program
	Renderer *renderer.Renderer
}

// Dispose releases meshes first, then the program
func (s *Scene) Dispose() {
	s.Renderer.Dispose()
	s.Device.DeleteProgram(s.Program)
}

func setupScene(dev *gpu.GL, s config.Settings) (*Scene, error) {
	src, err := graphics.LoadShaderSources(s.ShaderDir)
	if err != nil {
		return nil, err
	}
	program, err := dev.CompileProgram(src.Vertex, src.Fragment)
	if err != nil {
		return nil, err
	}

	meshes := buildMeshes(s)
	renderables := make([]renderer.Renderable, len(meshes))
	for i, m := range meshes {
		renderables[i] = m
	}

	camera := graphics.NewCamera(s.Window.Width, s.Window.Height)
	camera.FOV = s.Camera.FOV
	camera.Eye = mgl32.Vec3(s.Camera.Eye)
	camera.Target = mgl32.Vec3(s.Camera.Target)

	light := graphics.NewLight(mgl32.Vec3(s.Light.Position), mgl32.Vec3(s.Light.Target))
	light.Extent = s.Light.Extent
	light.Near = s.Light.Near
	light.Far = s.Light.Far

	r, err := renderer.NewRenderer(dev, program, camera, light, renderables...)
	if err != nil {
		dev.DeleteProgram(program)
		return nil, fmt.Errorf("setup scene: %w", err)
	}
	return &Scene{Device: dev, Program: program, Renderer: r}, nil
}

func buildMeshes(s config.Settings) []*mesh.Mesh {
	mode := mesh.RotationAbsolute
	if s.Rotation.Cumulative() {
		mode = mesh.RotationCumulative
	}

	meshes := make([]*mesh.Mesh, 0, len(s.Objects))
	for _, o := range s.Objects {
		var asset mesh.Asset
		switch o.Kind {
		case config.KindCube:
			asset = mesh.CubeAsset(s.TextureSize)
		default:
			asset = mesh.TriangleAsset(s.TextureSize)
		}
		if o.Texture != "" {
			asset = asset.WithTexturePath(o.Texture, s.TextureSize)
		}

		m := mesh.New(asset)
		m.SetRotationMode(mode)
		m.SetPosition(o.Position[0], o.Position[1], o.Position[2])
		meshes = append(meshes, m)
	}
	return meshes
}
