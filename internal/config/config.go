package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// Rotation modes accepted in the config file
const (
	RotationAbsolute   = "absolute"
	RotationCumulative = "cumulative"
)

// Object kinds accepted in the config file
const (
	KindTriangle = "triangle"
	KindCube     = "cube"
)

type WindowSettings struct {
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Title  string `yaml:"title"`
	VSync  bool   `yaml:"vsync"`
}

type CameraSettings struct {
	FOV    float32    `yaml:"fov"`
	Eye    [3]float32 `yaml:"eye"`
	Target [3]float32 `yaml:"target"`
}

type LightSettings struct {
	Position [3]float32 `yaml:"position"`
	Target   [3]float32 `yaml:"target"`
	Extent   float32    `yaml:"extent"`
	Near     float32    `yaml:"near"`
	Far      float32    `yaml:"far"`
}

type RotationSettings struct {
	Mode  string  `yaml:"mode"`
	Speed float32 `yaml:"speed"` // degrees per second
}

// ObjectSettings places one renderable in the scene
type ObjectSettings struct {
	Kind     string     `yaml:"kind"`
	Position [3]float32 `yaml:"position"`
	Texture  string     `yaml:"texture,omitempty"`
}

// Settings holds the sample configuration
type Settings struct {
	Window      WindowSettings   `yaml:"window"`
	Camera      CameraSettings   `yaml:"camera"`
	Light       LightSettings    `yaml:"light"`
	Rotation    RotationSettings `yaml:"rotation"`
	TextureSize int              `yaml:"texture_size"`
	ShaderDir   string           `yaml:"shader_dir,omitempty"`
	Objects     []ObjectSettings `yaml:"objects"`
}

var (
	mu      sync.RWMutex
	current = Default()
)

// Default returns the built-in settings: a triangle and a cube side by side
func Default() Settings {
	return Settings{
		Window: WindowSettings{Width: 900, Height: 600, Title: "shadowmap", VSync: true},
		Camera: CameraSettings{FOV: 60, Eye: [3]float32{0, 2.5, 6}},
		Light: LightSettings{
			Position: [3]float32{4, 8, 3},
			Extent:   5,
			Near:     0.1,
			Far:      30,
		},
		Rotation:    RotationSettings{Mode: RotationAbsolute, Speed: 45},
		TextureSize: 128,
		Objects: []ObjectSettings{
			{Kind: KindTriangle, Position: [3]float32{-1.5, 0, 0}},
			{Kind: KindCube, Position: [3]float32{1.5, 0, 0}},
		},
	}
}

// Load reads a YAML file on top of the defaults, normalizes it and makes it
// current. A missing file is not an error.
func Load(path string) (Settings, error) {
	s := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		log.Printf("config %s not found, using defaults", path)
	case err != nil:
		return Settings{}, fmt.Errorf("config: read %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, &s); err != nil {
			return Settings{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
		log.Printf("loaded config %s", path)
	}

	if err := s.Normalize(); err != nil {
		return Settings{}, fmt.Errorf("config: %s: %w", path, err)
	}
	set(s)
	return s, nil
}

// Normalize clamps numeric settings into usable ranges and rejects unknown
// rotation modes and object kinds, as well as a camera or light whose
// position coincides with its target.
func (s *Settings) Normalize() error {
	if s.Window.Width < 64 {
		s.Window.Width = 64
	}
	if s.Window.Height < 64 {
		s.Window.Height = 64
	}
	if s.Window.Title == "" {
		s.Window.Title = "shadowmap"
	}

	// Clamp to reasonable values
	if s.Camera.FOV < 30 {
		s.Camera.FOV = 30
	}
	if s.Camera.FOV > 120 {
		s.Camera.FOV = 120
	}

	if s.Light.Extent <= 0 {
		s.Light.Extent = 5
	}
	if s.Light.Near <= 0 {
		s.Light.Near = 0.1
	}
	if s.Light.Far <= s.Light.Near {
		s.Light.Far = s.Light.Near + 30
	}

	// a look-at from a point to itself has no direction
	if s.Camera.Eye == s.Camera.Target {
		return fmt.Errorf("camera eye and target are both %v", s.Camera.Eye)
	}
	if s.Light.Position == s.Light.Target {
		return fmt.Errorf("light position and target are both %v", s.Light.Position)
	}

	s.TextureSize = clampPow2(s.TextureSize, 16, 2048)

	switch s.Rotation.Mode {
	case "":
		s.Rotation.Mode = RotationAbsolute
	case RotationAbsolute, RotationCumulative:
	default:
		return fmt.Errorf("unknown rotation mode %q", s.Rotation.Mode)
	}

	for i, o := range s.Objects {
		if o.Kind != KindTriangle && o.Kind != KindCube {
			return fmt.Errorf("object %d: unknown kind %q", i, o.Kind)
		}
	}
	return nil
}

// Cumulative reports whether Update angles add up instead of replacing each other
func (r RotationSettings) Cumulative() bool {
	return r.Mode == RotationCumulative
}

// clampPow2 rounds v up to a power of two inside [lo, hi]
func clampPow2(v, lo, hi int) int {
	p := lo
	for p < v && p < hi {
		p <<= 1
	}
	return p
}

// Get returns the current settings
func Get() Settings {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// set replaces the current settings
func set(s Settings) {
	mu.Lock()
	defer mu.Unlock()
	current = s
}
