// Package config handles viewer configuration loading.
package config

// Config holds all viewer settings.
type Config struct {
	Window     WindowConfig     `yaml:"window"`
	Model      ModelConfig      `yaml:"model"`
	View       ViewConfig       `yaml:"view"`
	Screenshot ScreenshotConfig `yaml:"screenshot"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// WindowConfig holds display settings.
type WindowConfig struct {
	Title      string `yaml:"title"`
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Fullscreen bool   `yaml:"fullscreen"`
	VSync      bool   `yaml:"vsync"`
	Backend    string `yaml:"backend"` // "sdl" or "glfw"
}

// ModelConfig points at the mesh shown for the lifetime of the process.
type ModelConfig struct {
	Path string `yaml:"path"`
}

// ViewConfig holds projection and framebuffer settings.
type ViewConfig struct {
	FOV        float32    `yaml:"fov"` // vertical, degrees
	Near       float32    `yaml:"near"`
	Far        float32    `yaml:"far"`
	ClearColor [4]float32 `yaml:"clear_color"`
}

// ScreenshotConfig controls where F12 captures are written.
type ScreenshotConfig struct {
	Dir    string `yaml:"dir"`
	Prefix string `yaml:"prefix"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level    string `yaml:"level"`
	LogFile  string `yaml:"log_file"`
	Progress bool   `yaml:"progress"` // show a progress bar while reading the model
}

// Backend names accepted by WindowConfig.Backend.
const (
	BackendSDL  = "sdl"
	BackendGLFW = "glfw"
)

// Default returns a Config with the viewer's built-in values.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Title:      "OBJ Viewer",
			Width:      1920,
			Height:     1080,
			Fullscreen: false,
			VSync:      true,
			Backend:    BackendSDL,
		},
		Model: ModelConfig{
			Path: "Model/Lowpoly_Fox.obj",
		},
		View: ViewConfig{
			FOV:        80,
			Near:       0.1,
			Far:        1000,
			ClearColor: [4]float32{0, 0, 0, 1},
		},
		Screenshot: ScreenshotConfig{
			Dir:    "screenshots",
			Prefix: "objviewer",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
