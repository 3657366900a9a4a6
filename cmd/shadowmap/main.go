package main

import (
	"log"
	"math"
	"os"
	"runtime"
	"time"

	"shadowmap/internal/config"
	"shadowmap/internal/graphics"
	"shadowmap/internal/graphics/gpu"
	"shadowmap/internal/profiling"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/xlab/closer"
)

const (
	defaultConfigPath = "shadowmap.yaml"
	shutdownTimeout   = 5 * time.Second
)

func init() {
	runtime.LockOSThread()
}

func main() {
	configPath := defaultConfigPath
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}
	if _, err := config.Load(configPath); err != nil {
		panic(err)
	}
	settings := config.Get()

	// closer handles signals on its own goroutine and exits once its cleanups
	// return, so it only stops the loop and waits for the deferred teardown
	// below, which runs on this locked thread.
	stop := newShutdown()
	closer.Bind(stop.interrupt(shutdownTimeout))
	defer stop.Finish()

	if err := glfw.Init(); err != nil {
		panic(err)
	}
	defer glfw.Terminate()

	window, err := setupWindow(settings.Window)
	if err != nil {
		panic(err)
	}

	dev, err := gpu.NewGL()
	if err != nil {
		panic(err)
	}
	log.Printf("OpenGL %s", dev.Version())

	scene, err := setupScene(dev, settings)
	if err != nil {
		panic(err)
	}
	defer scene.Dispose()
	// every texture is on the GPU now
	graphics.ClearImageCache()

	setupInputHandlers(window, scene)
	runLoop(window, scene, stop)
}

func setupInputHandlers(window *glfw.Window, scene *Scene) {
	window.SetKeyCallback(func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		if key == glfw.KeyEscape && action == glfw.Press {
			w.SetShouldClose(true)
		}
	})
	window.SetFramebufferSizeCallback(func(w *glfw.Window, width, height int) {
		scene.Device.Viewport(width, height)
		scene.Renderer.UpdateViewport(width, height)
	})
}

// frameAngle is the angle handed to Update: total rotation wrapped to one turn
// in absolute mode, this frame's share in cumulative mode
func frameAngle(rotation config.RotationSettings, elapsed, dt time.Duration) float32 {
	if rotation.Cumulative() {
		return float32(dt.Seconds() * float64(rotation.Speed))
	}
	return float32(math.Mod(elapsed.Seconds()*float64(rotation.Speed), 360))
}

func runLoop(window *glfw.Window, scene *Scene, stop *shutdown) {
	rotation := config.Get().Rotation
	frames := 0
	start := time.Now()
	lastTime := start
	lastFPSCheckTime := start

	const slowFrame = 50 * time.Millisecond

	for !window.ShouldClose() {
		if stop.Requested() {
			window.SetShouldClose(true)
			break
		}

		profiling.ResetFrame()
		now := time.Now()
		dt := now.Sub(lastTime)
		lastTime = now

		scene.Renderer.Update(frameAngle(rotation, now.Sub(start), dt))
		scene.Renderer.Render()

		func() { defer profiling.Track("glfw.SwapBuffers")(); window.SwapBuffers() }()
		func() { defer profiling.Track("glfw.PollEvents")(); glfw.PollEvents() }()
		frames++

		if d := time.Since(now); d > slowFrame {
			log.Printf("Slow frame: %v (meshes %v, glfw %v). Top tasks: %s",
				d, profiling.SumWithPrefix("mesh."), profiling.SumWithPrefix("glfw."), profiling.TopN(5))
		}
		if time.Since(lastFPSCheckTime) >= time.Second {
			log.Printf("FPS: %d", frames)
			frames = 0
			lastFPSCheckTime = time.Now()
		}
	}
}
