// Package viewer wires the mesh, camera, input and rendering into the
// startup sequence and the frame loop.
package viewer

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/objviewer/internal/config"
	"github.com/Faultbox/objviewer/internal/engine/camera"
	"github.com/Faultbox/objviewer/internal/engine/input"
	"github.com/Faultbox/objviewer/internal/engine/overlay"
	"github.com/Faultbox/objviewer/internal/engine/renderer"
	"github.com/Faultbox/objviewer/internal/engine/screenshot"
	"github.com/Faultbox/objviewer/internal/engine/texture"
	"github.com/Faultbox/objviewer/internal/engine/window"
	"github.com/Faultbox/objviewer/internal/logger"
	"github.com/Faultbox/objviewer/internal/mesh"
	"github.com/Faultbox/objviewer/internal/viewer/shaders"
)

// Viewer is the running viewer instance.
type Viewer struct {
	config *config.Config
	log    *zap.Logger

	window   window.Window
	renderer *renderer.Renderer
	overlay  *overlay.Overlay

	camera *camera.OrbitCamera
	router *input.Router

	screenshots *screenshot.Capture
}

// New loads the model and creates the window and GPU resources. Any error is
// fatal for the process.
func New(cfg *config.Config) (*Viewer, error) {
	v := &Viewer{
		config: cfg,
		log:    logger.Named("viewer"),
	}

	v.log.Info("initializing viewer",
		zap.String("model", cfg.Model.Path),
		zap.String("backend", cfg.Window.Backend),
	)

	m, err := mesh.Load(cfg.Model.Path, mesh.LoadOptions{Progress: cfg.Logging.Progress})
	if err != nil {
		return nil, fmt.Errorf("failed to load model: %w", err)
	}

	// Window first: the renderer needs a current OpenGL context.
	v.window, err = window.New(windowConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	width, height := v.window.DrawableSize()
	v.renderer, err = renderer.New(rendererConfig(cfg, width, height))
	if err != nil {
		v.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	textures := texture.BindTextures(m.Materials, m.MaterialDir, texture.GLUploader{})
	if err := v.renderer.Upload(m, textures); err != nil {
		v.Close()
		return nil, fmt.Errorf("failed to upload model: %w", err)
	}

	v.overlay, err = overlay.New(shaders.OverlayVertexShader, shaders.OverlayFragmentShader, overlay.Instructions, 1)
	if err != nil {
		v.Close()
		return nil, fmt.Errorf("failed to create overlay: %w", err)
	}

	v.camera = camera.NewOrbitCamera()
	v.router = input.NewRouter(v.camera, v.window, true)
	v.screenshots = screenshot.New(cfg.Screenshot.Dir, cfg.Screenshot.Prefix)

	v.log.Info("viewer initialized successfully")
	return v, nil
}

// Run runs the frame loop until the window is closed.
func (v *Viewer) Run() error {
	frameCount := 0
	fpsTimer := time.Now()

	v.log.Info("starting frame loop")

	for !v.window.ShouldClose() {
		// 1. Route input
		for _, event := range v.window.PollEvents() {
			switch event.Type {
			case input.EventWindowResize:
				v.renderer.Resize(v.window.DrawableSize())
			default:
				v.router.HandleEvent(event)
			}
		}
		changes := v.router.Tick(v.window, v.window.Now())
		if changes.Wireframe {
			v.renderer.SetWireframe(v.router.State.Wireframe)
		}

		// 2. Render
		v.renderer.Begin()
		v.renderer.Draw(v.camera.ViewMatrix(), v.renderer.Projection())
		v.overlay.Draw(v.window.Size())
		if changes.Screenshot {
			v.saveScreenshot()
		}

		// 3. Present
		v.window.SwapBuffers()

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			stats := v.renderer.Stats()
			v.log.Debug("fps",
				zap.Int("count", frameCount),
				zap.Int("draw_calls", stats.DrawCalls),
				zap.Int("texture_binds", stats.TextureBinds),
			)
			frameCount = 0
			fpsTimer = time.Now()
		}
	}

	v.log.Info("window closed")
	return nil
}

// saveScreenshot writes the back buffer before it is presented. Failures are
// logged only.
func (v *Viewer) saveScreenshot() {
	pixels, width, height := v.renderer.ReadPixels()
	name, err := v.screenshots.SaveFramebuffer(pixels, width, height)
	if err != nil {
		v.log.Warn("screenshot failed", zap.Error(err))
		return
	}
	v.log.Info("screenshot saved", zap.String("file", name))
}

// Close releases resources in reverse creation order.
func (v *Viewer) Close() {
	v.log.Info("closing viewer")

	if v.overlay != nil {
		v.overlay.Close()
		v.overlay = nil
	}
	if v.renderer != nil {
		v.renderer.Close()
		v.renderer = nil
	}
	if v.window != nil {
		v.window.Close()
		v.window = nil
	}
}

func windowConfig(cfg *config.Config) window.Config {
	return window.Config{
		Title:      cfg.Window.Title,
		Width:      cfg.Window.Width,
		Height:     cfg.Window.Height,
		Fullscreen: cfg.Window.Fullscreen,
		VSync:      cfg.Window.VSync,
		Backend:    cfg.Window.Backend,
	}
}

func rendererConfig(cfg *config.Config, width, height int) renderer.Config {
	return renderer.Config{
		Width:          width,
		Height:         height,
		FOV:            cfg.View.FOV,
		Near:           cfg.View.Near,
		Far:            cfg.View.Far,
		ClearColor:     cfg.View.ClearColor,
		VertexShader:   shaders.ModelVertexShader,
		FragmentShader: shaders.ModelFragmentShader,
	}
}
