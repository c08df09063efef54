package mesh

import "github.com/go-gl/mathgl/mgl32"

// DefaultNormal is used for corners without a normal index.
var DefaultNormal = mgl32.Vec3{0, 0, 1}

// Build flattens a parsed scene into one vertex per face corner, in encounter
// order. Repeated attribute triples are not merged, so Indices is always the
// identity sequence 0..len(Vertices)-1.
func Build(scene *Scene) *Mesh {
	corners := 0
	for i := range scene.Shapes {
		corners += len(scene.Shapes[i].Indices)
	}

	m := &Mesh{
		Vertices:  make([]Vertex, 0, corners),
		Indices:   make([]uint32, 0, corners),
		Materials: scene.Materials,
	}

	attrib := &scene.Attrib
	for si := range scene.Shapes {
		shape := &scene.Shapes[si]

		for _, idx := range shape.Indices {
			v := Vertex{
				Position: attrib.Positions[idx.Vertex],
				Normal:   DefaultNormal,
			}
			if idx.TexCoord >= 0 {
				tc := attrib.TexCoords[idx.TexCoord]
				v.TexCoord = mgl32.Vec2{tc.X(), 1 - tc.Y()}
			}
			if idx.Normal >= 0 {
				v.Normal = attrib.Normals[idx.Normal]
			}

			m.Vertices = append(m.Vertices, v)
			m.Indices = append(m.Indices, uint32(len(m.Indices)))
		}
	}

	m.Groups = GroupFaces(scene.Shapes)
	return m
}

// GroupFaces splits every shape into runs of consecutive faces sharing a
// material id. IndexOffset runs across shapes, matching Build's index order.
func GroupFaces(shapes []Shape) []FaceGroup {
	var groups []FaceGroup
	offset := 0

	for si := range shapes {
		faces := shapes[si].FaceMaterials
		start := 0
		for f := 1; f <= len(faces); f++ {
			if f < len(faces) && faces[f] == faces[start] {
				continue
			}
			count := f - start
			groups = append(groups, FaceGroup{
				MaterialID:  faces[start],
				FaceCount:   count,
				IndexOffset: offset,
			})
			offset += 3 * count
			start = f
		}
	}
	return groups
}
