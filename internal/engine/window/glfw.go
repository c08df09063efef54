package window

import (
	"fmt"
	"time"

	"github.com/go-gl/glfw/v3.3/glfw"
	"go.uber.org/zap"

	"github.com/Faultbox/objviewer/internal/engine/input"
	"github.com/Faultbox/objviewer/internal/logger"
)

var glfwKeys = map[input.Key]glfw.Key{
	input.KeyEscape: glfw.KeyEscape,
	input.KeyR:      glfw.KeyR,
	input.KeyF12:    glfw.KeyF12,
}

// glfwWindow wraps a GLFW window. Callbacks queue events until the next
// PollEvents.
type glfwWindow struct {
	config Config
	window *glfw.Window
	log    *zap.Logger

	events []input.Event
}

func newGLFWWindow(cfg Config) (*glfwWindow, error) {
	w := &glfwWindow{
		config: cfg,
		log:    logger.Named("window"),
		events: make([]input.Event, 0, 16),
	}

	w.log.Info("initializing GLFW")
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("glfw init failed: %w", err)
	}

	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.DepthBits, 24)

	var monitor *glfw.Monitor
	if cfg.Fullscreen {
		monitor = glfw.GetPrimaryMonitor()
	}

	window, err := glfw.CreateWindow(cfg.Width, cfg.Height, cfg.Title, monitor, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("glfw create window failed: %w", err)
	}
	w.window = window
	window.MakeContextCurrent()

	if cfg.VSync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}

	window.SetCursorPosCallback(func(_ *glfw.Window, x, y float64) {
		w.events = append(w.events, input.Event{Type: input.EventMouseMove, X: x, Y: y})
	})
	window.SetScrollCallback(func(_ *glfw.Window, _, yoff float64) {
		w.events = append(w.events, input.Event{Type: input.EventScroll, ScrollY: yoff})
	})
	window.SetSizeCallback(func(_ *glfw.Window, width, height int) {
		w.events = append(w.events, input.Event{Type: input.EventWindowResize, Width: width, Height: height})
	})

	w.log.Info("window created",
		zap.String("backend", BackendGLFW),
		zap.String("title", cfg.Title),
		zap.Int("width", cfg.Width),
		zap.Int("height", cfg.Height),
		zap.Bool("fullscreen", cfg.Fullscreen),
		zap.Bool("vsync", cfg.VSync),
	)

	return w, nil
}

func (w *glfwWindow) PollEvents() []input.Event {
	w.events = w.events[:0]
	glfw.PollEvents()
	if w.window.ShouldClose() {
		w.events = append(w.events, input.Event{Type: input.EventQuit})
	}
	return w.events
}

func (w *glfwWindow) ShouldClose() bool {
	return w.window.ShouldClose()
}

func (w *glfwWindow) KeyPressed(k input.Key) bool {
	key, ok := glfwKeys[k]
	if !ok {
		return false
	}
	return w.window.GetKey(key) == glfw.Press
}

func (w *glfwWindow) SetCursorCaptured(captured bool) {
	if captured {
		w.window.SetInputMode(glfw.CursorMode, glfw.CursorDisabled)
	} else {
		w.window.SetInputMode(glfw.CursorMode, glfw.CursorNormal)
	}
}

func (w *glfwWindow) Now() time.Duration {
	return time.Duration(glfw.GetTime() * float64(time.Second))
}

func (w *glfwWindow) SwapBuffers() {
	w.window.SwapBuffers()
}

func (w *glfwWindow) Size() (int, int) {
	return w.window.GetSize()
}

func (w *glfwWindow) DrawableSize() (int, int) {
	return w.window.GetFramebufferSize()
}

// Close destroys the window and terminates GLFW.
func (w *glfwWindow) Close() {
	w.log.Info("closing window")
	w.window.Destroy()
	glfw.Terminate()
}
