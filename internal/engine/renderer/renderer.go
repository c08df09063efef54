// Package renderer draws the loaded mesh with OpenGL.
package renderer

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/objviewer/internal/engine/shader"
	"github.com/Faultbox/objviewer/internal/engine/texture"
	"github.com/Faultbox/objviewer/internal/logger"
	"github.com/Faultbox/objviewer/internal/mesh"
)

// Uniform names shared with the model shaders.
const (
	UniformModel          = "model"
	UniformView           = "view"
	UniformProjection     = "projection"
	UniformTextureDiffuse = "texture_diffuse"
)

// Config holds renderer configuration.
type Config struct {
	Width  int
	Height int

	// Vertical field of view in degrees.
	FOV        float32
	Near, Far  float32
	ClearColor [4]float32

	VertexShader   string
	FragmentShader string
}

// Renderer owns the GL state for the mesh pass.
type Renderer struct {
	config Config
	log    *zap.Logger

	program *shader.Program

	vao, vbo, ebo uint32
	indexCount    int

	groups    []mesh.FaceGroup
	materials []mesh.Material
	textures  texture.Table

	// Texture currently bound to unit 0.
	boundTexture uint32

	wireframe bool
	stats     FrameStats
}

// FrameStats counts the work of the last Draw.
type FrameStats struct {
	DrawCalls    int
	TextureBinds int
}

// New creates a renderer.
// Must be called after the OpenGL context is created.
func New(cfg Config) (*Renderer, error) {
	r := &Renderer{
		config: cfg,
		log:    logger.Named("renderer"),
	}

	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	r.log.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
		zap.String("glsl", gl.GoStr(gl.GetString(gl.SHADING_LANGUAGE_VERSION))),
	)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	c := cfg.ClearColor
	gl.ClearColor(c[0], c[1], c[2], c[3])

	var err error
	r.program, err = shader.NewProgram(cfg.VertexShader, cfg.FragmentShader)
	if err != nil {
		return nil, fmt.Errorf("failed to create shader program: %w", err)
	}

	r.program.Use()
	r.program.SetMat4(UniformModel, mgl32.Translate3D(0, 0, 0))
	r.program.SetInt(UniformTextureDiffuse, 0)

	r.Resize(cfg.Width, cfg.Height)
	return r, nil
}

// Upload copies the mesh into GPU buffers and keeps its face groups and
// materials for drawing. A mesh without faces is accepted and draws nothing.
func (r *Renderer) Upload(m *mesh.Mesh, textures texture.Table) error {
	r.textures = textures
	if len(m.Vertices) == 0 || len(m.Indices) == 0 {
		r.log.Warn("mesh has no geometry, nothing will be drawn")
		return nil
	}

	gl.GenVertexArrays(1, &r.vao)
	gl.BindVertexArray(r.vao)

	gl.GenBuffers(1, &r.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(m.Vertices)*mesh.VertexStride, unsafe.Pointer(&m.Vertices[0]), gl.STATIC_DRAW)

	gl.GenBuffers(1, &r.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, r.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(m.Indices)*4, unsafe.Pointer(&m.Indices[0]), gl.STATIC_DRAW)

	// Position (location 0)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, mesh.VertexStride, mesh.VertexPositionOffset)
	// TexCoord (location 1)
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointerWithOffset(1, 2, gl.FLOAT, false, mesh.VertexStride, mesh.VertexTexCoordOffset)
	// Normal (location 2)
	gl.EnableVertexAttribArray(2)
	gl.VertexAttribPointerWithOffset(2, 3, gl.FLOAT, false, mesh.VertexStride, mesh.VertexNormalOffset)

	gl.BindVertexArray(0)

	r.indexCount = len(m.Indices)
	r.groups = m.Groups
	r.materials = m.Materials

	r.log.Info("mesh uploaded",
		zap.Int("vertices", len(m.Vertices)),
		zap.Int("indices", len(m.Indices)),
		zap.Int("groups", len(m.Groups)),
		zap.Int("textures", len(textures)),
	)
	return nil
}

// Projection returns the perspective projection for the current viewport.
func (r *Renderer) Projection() mgl32.Mat4 {
	aspect := float32(1)
	if r.config.Height > 0 {
		aspect = float32(r.config.Width) / float32(r.config.Height)
	}
	return mgl32.Perspective(mgl32.DegToRad(r.config.FOV), aspect, r.config.Near, r.config.Far)
}

// Begin starts a new frame.
func (r *Renderer) Begin() {
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

// Draw renders every face group with the given view and projection.
func (r *Renderer) Draw(view, projection mgl32.Mat4) {
	if r.vao == 0 {
		return
	}

	r.program.Use()
	r.program.SetMat4(UniformView, view)
	r.program.SetMat4(UniformProjection, projection)

	cmds, bound := PlanDraws(r.groups, r.materials, r.textures, r.boundTexture)
	r.stats = FrameStats{}

	gl.BindVertexArray(r.vao)
	for _, cmd := range cmds {
		if cmd.Bind {
			gl.ActiveTexture(gl.TEXTURE0)
			gl.BindTexture(gl.TEXTURE_2D, cmd.Texture)
			r.stats.TextureBinds++
		}
		gl.DrawElementsWithOffset(gl.TRIANGLES, cmd.Count, gl.UNSIGNED_INT, uintptr(cmd.First*4))
		r.stats.DrawCalls++
	}
	gl.BindVertexArray(0)

	r.boundTexture = bound
}

// ReadPixels returns the current framebuffer as bottom-up RGBA rows.
func (r *Renderer) ReadPixels() ([]byte, int, int) {
	w, h := r.config.Width, r.config.Height
	pixels := make([]byte, w*h*4)
	if len(pixels) == 0 {
		return pixels, w, h
	}
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(w), int32(h), gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&pixels[0]))
	return pixels, w, h
}

// Stats returns the counters of the last Draw.
func (r *Renderer) Stats() FrameStats {
	return r.stats
}

// SetWireframe switches between filled and line polygon rasterization.
func (r *Renderer) SetWireframe(on bool) {
	r.wireframe = on
	if on {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.LINE)
	} else {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.FILL)
	}
}

// Wireframe reports whether wireframe mode is on.
func (r *Renderer) Wireframe() bool {
	return r.wireframe
}

// Resize handles window resize.
func (r *Renderer) Resize(width, height int) {
	r.config.Width = width
	r.config.Height = height
	gl.Viewport(0, 0, int32(width), int32(height))
	r.log.Debug("renderer resized",
		zap.Int("width", width),
		zap.Int("height", height),
	)
}

// Close releases GPU resources.
func (r *Renderer) Close() {
	r.log.Info("closing renderer")
	if r.textures != nil {
		texture.Delete(r.textures.Handles())
	}
	if r.ebo != 0 {
		gl.DeleteBuffers(1, &r.ebo)
	}
	if r.vbo != 0 {
		gl.DeleteBuffers(1, &r.vbo)
	}
	if r.vao != 0 {
		gl.DeleteVertexArrays(1, &r.vao)
	}
	if r.program != nil {
		r.program.Delete()
	}
}
