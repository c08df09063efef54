// Package input turns window events and key state into camera movement and
// viewer toggles.
package input

import (
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/objviewer/internal/logger"
)

// Key identifies a key the viewer reacts to.
type Key int

const (
	KeyEscape Key = iota
	KeyR
	KeyF12
)

// String returns the key name.
func (k Key) String() string {
	switch k {
	case KeyEscape:
		return "Escape"
	case KeyR:
		return "R"
	case KeyF12:
		return "F12"
	}
	return "Unknown"
}

// EventType identifies a window event.
type EventType int

const (
	EventNone EventType = iota
	EventQuit
	EventWindowResize
	EventMouseMove
	EventScroll
)

// Event represents a processed window event.
type Event struct {
	Type   EventType
	Width  int
	Height int

	// Pointer position for EventMouseMove.
	X, Y float64

	// Vertical scroll offset for EventScroll; positive is away from the user.
	ScrollY float64
}

// EscapeDelay is the minimum time between two cursor lock toggles.
const EscapeDelay = 200 * time.Millisecond

// KeyState reports whether a key is currently held down.
type KeyState interface {
	KeyPressed(k Key) bool
}

// Cursor switches between a free, visible cursor and a captured, hidden one.
type Cursor interface {
	SetCursorCaptured(captured bool)
}

// Camera receives routed pointer and scroll input.
type Camera interface {
	ApplyPointerDelta(dx, dy float32)
	ApplyScroll(dy float32)
}

// ToggleState holds the viewer toggles and the key history they depend on.
type ToggleState struct {
	CursorLocked bool
	Wireframe    bool

	wireframeKeyWasDown  bool
	screenshotKeyWasDown bool
	lastEscapeToggle     time.Duration
	escapeToggled        bool
}

// Changes reports what happened during a Tick.
type Changes struct {
	CursorLocked bool
	Wireframe    bool

	// Screenshot is set on the F12 press edge.
	Screenshot bool
}

// Router routes input to the camera and owns the toggle state.
type Router struct {
	State ToggleState

	camera Camera
	cursor Cursor
	log    *zap.Logger

	// seeded is false until the first pointer sample after locking.
	seeded       bool
	lastX, lastY float64
}

// NewRouter creates a router and applies the initial cursor mode.
func NewRouter(camera Camera, cursor Cursor, locked bool) *Router {
	r := &Router{
		State:  ToggleState{CursorLocked: locked},
		camera: camera,
		cursor: cursor,
		log:    logger.Named("input"),
	}
	r.cursor.SetCursorCaptured(locked)
	return r
}

// HandleEvent routes pointer motion and scroll events. Other events are
// ignored.
func (r *Router) HandleEvent(e Event) {
	switch e.Type {
	case EventMouseMove:
		r.handleMouseMove(e.X, e.Y)
	case EventScroll:
		r.camera.ApplyScroll(float32(e.ScrollY))
	}
}

func (r *Router) handleMouseMove(x, y float64) {
	if !r.State.CursorLocked {
		return
	}
	if !r.seeded {
		r.lastX, r.lastY = x, y
		r.seeded = true
		return
	}

	dx := x - r.lastX
	dy := y - r.lastY
	r.lastX, r.lastY = x, y
	r.camera.ApplyPointerDelta(float32(dx), float32(dy))
}

// Tick samples the toggle keys once per frame. now is a monotonic clock
// reading used for the escape debounce.
func (r *Router) Tick(keys KeyState, now time.Duration) Changes {
	var changes Changes

	// Escape is level-sampled and rate-limited.
	if keys.KeyPressed(KeyEscape) {
		if !r.State.escapeToggled || now-r.State.lastEscapeToggle >= EscapeDelay {
			r.setCursorLocked(!r.State.CursorLocked)
			r.State.lastEscapeToggle = now
			r.State.escapeToggled = true
			changes.CursorLocked = true
		}
	}

	// R flips on the press edge only.
	down := keys.KeyPressed(KeyR)
	wasDown := r.State.wireframeKeyWasDown
	r.State.wireframeKeyWasDown = down
	if down && !wasDown {
		r.State.Wireframe = !r.State.Wireframe
		changes.Wireframe = true
		r.log.Debug("wireframe toggled", zap.Bool("wireframe", r.State.Wireframe))
	}

	down = keys.KeyPressed(KeyF12)
	changes.Screenshot = down && !r.State.screenshotKeyWasDown
	r.State.screenshotKeyWasDown = down

	return changes
}

func (r *Router) setCursorLocked(locked bool) {
	r.State.CursorLocked = locked
	if locked {
		// The next pointer sample seeds the last position.
		r.seeded = false
	}
	r.cursor.SetCursorCaptured(locked)
	r.log.Debug("cursor lock toggled", zap.Bool("locked", locked))
}
