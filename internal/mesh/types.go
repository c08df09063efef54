// Package mesh loads Wavefront OBJ meshes and their MTL material libraries
// into flat, draw-ready vertex and index buffers.
package mesh

import "github.com/go-gl/mathgl/mgl32"

// NoMaterial is the material id of faces that appear before any usemtl
// statement or reference an unknown material name.
const NoMaterial = -1

// Vertex is one interleaved vertex record as uploaded to the GPU.
// Layout: position (12 bytes), texcoord (8 bytes), normal (12 bytes).
type Vertex struct {
	Position mgl32.Vec3
	TexCoord mgl32.Vec2
	Normal   mgl32.Vec3
}

// Byte offsets of the Vertex attributes.
const (
	VertexStride         = 32
	VertexPositionOffset = 0
	VertexTexCoordOffset = 12
	VertexNormalOffset   = 20
)

// Material is a named entry from an MTL library.
type Material struct {
	Name           string
	DiffuseTexture string // map_Kd file name, empty if none
}

// Index is one face corner: zero-based attribute indices, -1 when absent.
type Index struct {
	Vertex   int
	TexCoord int
	Normal   int
}

// Attrib holds the attribute pools shared by all shapes of an OBJ file.
type Attrib struct {
	Positions []mgl32.Vec3
	TexCoords []mgl32.Vec2
	Normals   []mgl32.Vec3
}

// Shape is a named run of triangles. Indices holds three corners per face;
// FaceMaterials holds one material id per face.
type Shape struct {
	Name          string
	Indices       []Index
	FaceMaterials []int
}

// FaceCount returns the number of triangles in the shape.
func (s *Shape) FaceCount() int {
	return len(s.FaceMaterials)
}

// Scene is the parsed content of an OBJ file and its material libraries.
type Scene struct {
	Attrib    Attrib
	Shapes    []Shape
	Materials []Material
}

// FaceGroup is a contiguous run of triangles sharing one material id.
type FaceGroup struct {
	MaterialID  int // index into Mesh.Materials or NoMaterial
	FaceCount   int
	IndexOffset int // first index of the group in Mesh.Indices
}

// IndexCount returns how many indices the group draws.
func (g FaceGroup) IndexCount() int {
	return 3 * g.FaceCount
}

// Mesh is the draw-ready result of loading a model.
type Mesh struct {
	Vertices  []Vertex
	Indices   []uint32
	Groups    []FaceGroup
	Materials []Material

	// MaterialDir is the directory texture names are resolved against.
	MaterialDir string
}

// MaterialName returns the name of the material with the given id,
// or "" for NoMaterial and out-of-range ids.
func (m *Mesh) MaterialName(id int) string {
	if id < 0 || id >= len(m.Materials) {
		return ""
	}
	return m.Materials[id].Name
}
