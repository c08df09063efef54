// Package window handles window and OpenGL context creation and turns
// platform events into input events.
package window

import (
	"fmt"
	"runtime"
	"time"

	"github.com/Faultbox/objviewer/internal/engine/input"
)

func init() {
	// OpenGL calls must be made from the main thread
	runtime.LockOSThread()
}

// Supported backends.
const (
	BackendSDL  = "sdl"
	BackendGLFW = "glfw"
)

// Config holds window configuration.
type Config struct {
	Title      string
	Width      int
	Height     int
	Fullscreen bool
	VSync      bool
	Backend    string
}

// Window is an OpenGL 4.1 core window with its event source.
type Window interface {
	// PollEvents returns the events received since the last call.
	PollEvents() []input.Event
	ShouldClose() bool

	KeyPressed(k input.Key) bool
	SetCursorCaptured(captured bool)

	// Now returns a monotonic clock reading.
	Now() time.Duration

	SwapBuffers()
	Size() (int, int)
	// DrawableSize returns the framebuffer size in pixels.
	DrawableSize() (int, int)
	Close()
}

// New creates a window with a current OpenGL context using the configured
// backend.
func New(cfg Config) (Window, error) {
	switch cfg.Backend {
	case BackendSDL, "":
		return newSDLWindow(cfg)
	case BackendGLFW:
		return newGLFWWindow(cfg)
	}
	return nil, fmt.Errorf("unknown window backend %q", cfg.Backend)
}
