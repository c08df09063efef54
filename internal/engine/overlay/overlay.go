package overlay

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/objviewer/internal/engine/shader"
)

// textureUnit keeps the overlay texture off unit 0, where the mesh pass
// tracks its own binding.
const textureUnit = 1

// Overlay draws a pre-rasterized text canvas as one screen-space quad.
type Overlay struct {
	program  *shader.Program
	vao, vbo uint32
	texture  uint32

	width, height int
}

// New rasterizes lines and uploads them. Must be called after the OpenGL
// context is created.
func New(vertexSrc, fragmentSrc string, lines []Line, scale int) (*Overlay, error) {
	program, err := shader.NewProgram(vertexSrc, fragmentSrc)
	if err != nil {
		return nil, fmt.Errorf("overlay shader: %w", err)
	}
	o := &Overlay{program: program}

	img := Rasterize(lines, scale)
	o.width, o.height = img.Rect.Dx(), img.Rect.Dy()

	gl.GenTextures(1, &o.texture)
	gl.ActiveTexture(gl.TEXTURE0 + textureUnit)
	gl.BindTexture(gl.TEXTURE_2D, o.texture)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(o.width), int32(o.height),
		0, gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&img.Pix[0]))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.ActiveTexture(gl.TEXTURE0)

	o.createQuad()
	return o, nil
}

// createQuad builds the canvas quad: pos(2) + texcoord(2).
func (o *Overlay) createQuad() {
	w, h := float32(o.width), float32(o.height)
	vertices := []float32{
		0, 0, 0, 0,
		w, 0, 1, 0,
		w, h, 1, 1,
		0, 0, 0, 0,
		w, h, 1, 1,
		0, h, 0, 1,
	}

	gl.GenVertexArrays(1, &o.vao)
	gl.BindVertexArray(o.vao)

	gl.GenBuffers(1, &o.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, o.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, unsafe.Pointer(&vertices[0]), gl.STATIC_DRAW)

	stride := int32(4 * 4)
	gl.VertexAttribPointerWithOffset(0, 2, gl.FLOAT, false, stride, 0)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(1, 2, gl.FLOAT, false, stride, 2*4)
	gl.EnableVertexAttribArray(1)

	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
}

// Draw renders the text over the current frame. screenWidth and screenHeight
// are the window size in the units the line positions use.
func (o *Overlay) Draw(screenWidth, screenHeight int) {
	// Save state touched by the text pass
	var prevDepth int32
	var prevPolygon [2]int32
	gl.GetIntegerv(gl.DEPTH_TEST, &prevDepth)
	gl.GetIntegerv(gl.POLYGON_MODE, &prevPolygon[0])

	gl.Disable(gl.DEPTH_TEST)
	gl.PolygonMode(gl.FRONT_AND_BACK, gl.FILL)

	proj := mgl32.Ortho(0, float32(screenWidth), float32(screenHeight), 0, -1, 1)

	o.program.Use()
	o.program.SetMat4("uProjection", proj)
	o.program.SetInt("uTexture", textureUnit)
	o.program.SetVec3("uColor", mgl32.Vec3{1, 1, 1})

	gl.ActiveTexture(gl.TEXTURE0 + textureUnit)
	gl.BindTexture(gl.TEXTURE_2D, o.texture)
	gl.BindVertexArray(o.vao)
	gl.DrawArrays(gl.TRIANGLES, 0, 6)
	gl.BindVertexArray(0)
	gl.ActiveTexture(gl.TEXTURE0)

	// Restore
	gl.PolygonMode(gl.FRONT_AND_BACK, uint32(prevPolygon[0]))
	if prevDepth != 0 {
		gl.Enable(gl.DEPTH_TEST)
	}
}

// Close releases GPU resources.
func (o *Overlay) Close() {
	if o.texture != 0 {
		gl.DeleteTextures(1, &o.texture)
	}
	if o.vbo != 0 {
		gl.DeleteBuffers(1, &o.vbo)
	}
	if o.vao != 0 {
		gl.DeleteVertexArrays(1, &o.vao)
	}
	o.program.Delete()
}
