package mesh

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

const twoMaterialOBJ = `# two quads and a triangle
mtllib fox.mtl
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
vt 0 0
vt 1 0
vt 1 0.25
vn 0 0 1
o Body
usemtl Fur
f 1/1/1 2/2/1 3/3/1 4/1/1
f 1/1/1 2/2/1 3/3/1
usemtl Eyes
f 1 2 3
o Tail
f -4//1 -3//1 -2//1
usemtl Fur
f 1/1 2/2 3/3
`

const foxMTL = `newmtl Fur
Kd 0.8 0.8 0.8
map_Kd -s 1 1 1 fur.png

newmtl Eyes
Kd 0 0 0
`

func libs(files map[string]string) LibraryOpener {
	return func(name string) (io.ReadCloser, error) {
		content, ok := files[name]
		if !ok {
			return nil, os.ErrNotExist
		}
		return io.NopCloser(strings.NewReader(content)), nil
	}
}

func parseString(t *testing.T, src string, lib LibraryOpener) *Scene {
	t.Helper()
	scene, _, err := ParseOBJ(strings.NewReader(src), "test.obj", lib)
	if err != nil {
		t.Fatalf("ParseOBJ failed: %v", err)
	}
	return scene
}

func TestParseOBJ_ShapesAndMaterials(t *testing.T) {
	scene := parseString(t, twoMaterialOBJ, libs(map[string]string{"fox.mtl": foxMTL}))

	if len(scene.Shapes) != 2 {
		t.Fatalf("expected 2 shapes, got %d", len(scene.Shapes))
	}
	if scene.Shapes[0].Name != "Body" || scene.Shapes[1].Name != "Tail" {
		t.Errorf("unexpected shape names %q, %q", scene.Shapes[0].Name, scene.Shapes[1].Name)
	}

	// Quad is fanned into two triangles.
	if got := scene.Shapes[0].FaceCount(); got != 4 {
		t.Errorf("Body: expected 4 faces, got %d", got)
	}
	wantMats := []int{0, 0, 0, 1}
	for i, id := range scene.Shapes[0].FaceMaterials {
		if id != wantMats[i] {
			t.Errorf("Body face %d: material %d, want %d", i, id, wantMats[i])
		}
	}

	if len(scene.Materials) != 2 {
		t.Fatalf("expected 2 materials, got %d", len(scene.Materials))
	}
	if scene.Materials[0].Name != "Fur" || scene.Materials[0].DiffuseTexture != "fur.png" {
		t.Errorf("unexpected first material %+v", scene.Materials[0])
	}
	if scene.Materials[1].DiffuseTexture != "" {
		t.Errorf("Eyes should have no texture, got %q", scene.Materials[1].DiffuseTexture)
	}
}

func TestParseOBJ_FanTriangulation(t *testing.T) {
	src := "v 0 0 0\nv 1 0 0\nv 1 1 0\nv 0 1 0\nv -1 1 0\nf 1 2 3 4 5\n"
	scene := parseString(t, src, nil)

	shape := scene.Shapes[0]
	if shape.FaceCount() != 3 {
		t.Fatalf("pentagon should become 3 triangles, got %d", shape.FaceCount())
	}
	want := []int{0, 1, 2, 0, 2, 3, 0, 3, 4}
	for i, idx := range shape.Indices {
		if idx.Vertex != want[i] {
			t.Errorf("corner %d: vertex %d, want %d", i, idx.Vertex, want[i])
		}
	}
}

func TestParseOBJ_NegativeIndices(t *testing.T) {
	src := "v 0 0 0\nv 1 0 0\nv 1 1 0\nvn 0 1 0\nf -3//-1 -2//-1 -1//-1\n"
	scene := parseString(t, src, nil)

	idx := scene.Shapes[0].Indices
	if idx[0].Vertex != 0 || idx[1].Vertex != 1 || idx[2].Vertex != 2 {
		t.Errorf("unexpected resolved vertices %+v", idx)
	}
	if idx[0].Normal != 0 || idx[0].TexCoord != -1 {
		t.Errorf("expected normal 0 and no texcoord, got %+v", idx[0])
	}
}

func TestParseOBJ_UnknownMaterialIsNoMaterial(t *testing.T) {
	src := "v 0 0 0\nv 1 0 0\nv 1 1 0\nusemtl Missing\nf 1 2 3\n"
	scene := parseString(t, src, nil)

	if id := scene.Shapes[0].FaceMaterials[0]; id != NoMaterial {
		t.Errorf("expected NoMaterial, got %d", id)
	}
}

func TestParseOBJ_LineContinuation(t *testing.T) {
	src := "v 0 0 0\nv 1 0 0\nv 1 1 0\nf 1 \\\n2 3\n"
	scene := parseString(t, src, nil)

	if scene.Shapes[0].FaceCount() != 1 {
		t.Errorf("expected 1 face, got %d", scene.Shapes[0].FaceCount())
	}
}

func TestParseOBJ_MissingLibrary(t *testing.T) {
	src := "mtllib gone.mtl\nv 0 0 0\nv 1 0 0\nv 1 1 0\nf 1 2 3\n"
	_, missing, err := ParseOBJ(strings.NewReader(src), "test.obj", libs(nil))
	if err != nil {
		t.Fatalf("missing library should not fail the parse: %v", err)
	}
	if len(missing) != 1 || missing[0] != "gone.mtl" {
		t.Errorf("expected gone.mtl reported missing, got %v", missing)
	}
}

func TestParseOBJ_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want error
		line int
	}{
		{"index past end", "v 0 0 0\nv 1 0 0\nf 1 2 3\n", ErrBadIndex, 3},
		{"zero index", "v 0 0 0\nv 1 0 0\nv 1 1 0\nf 0 1 2\n", ErrBadIndex, 4},
		{"texcoord past end", "v 0 0 0\nv 1 0 0\nv 1 1 0\nf 1/1 2/1 3/1\n", ErrBadIndex, 4},
		{"two corners", "v 0 0 0\nv 1 0 0\nf 1 2\n", ErrShortFace, 3},
		{"bad float", "v 0 zero 0\n", ErrBadNumber, 1},
		{"short vertex", "v 0 0\n", ErrShortValue, 1},
		{"bad index", "v 0 0 0\nv 1 0 0\nv 1 1 0\nf 1 two 3\n", ErrBadNumber, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ParseOBJ(strings.NewReader(tt.src), "bad.obj", nil)
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
			var perr *ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("expected *ParseError, got %T", err)
			}
			if perr.Line != tt.line {
				t.Errorf("expected line %d, got %d", tt.line, perr.Line)
			}
		})
	}
}

func TestBuild_OneVertexPerCorner(t *testing.T) {
	// Every face reuses the same triples; nothing may be merged.
	src := "v 0 0 0\nv 1 0 0\nv 1 1 0\nf 1 2 3\nf 1 2 3\nf 1 2 3\n"
	m := Build(parseString(t, src, nil))

	if len(m.Vertices) != 9 {
		t.Fatalf("expected 9 vertices, got %d", len(m.Vertices))
	}
	if len(m.Indices) != 9 {
		t.Fatalf("expected 9 indices, got %d", len(m.Indices))
	}
	for i, idx := range m.Indices {
		if idx != uint32(i) {
			t.Errorf("indices[%d] = %d, want %d", i, idx, i)
		}
	}
}

func TestBuild_CornerCountAcrossShapes(t *testing.T) {
	scene := parseString(t, twoMaterialOBJ, libs(map[string]string{"fox.mtl": foxMTL}))

	corners := 0
	for _, s := range scene.Shapes {
		corners += len(s.Indices)
	}
	m := Build(scene)

	if len(m.Vertices) != corners || len(m.Indices) != corners {
		t.Errorf("expected %d vertices and indices, got %d and %d", corners, len(m.Vertices), len(m.Indices))
	}
}

func TestBuild_AttributeDefaultsAndFlip(t *testing.T) {
	src := "v 0 0 0\nv 1 0 0\nv 1 1 0\nvt 0.5 0.25\nvn 0 1 0\nf 1/1/1 2 3//1\n"
	m := Build(parseString(t, src, nil))

	// Texcoord present: V flipped.
	if got := m.Vertices[0].TexCoord; got != (mgl32.Vec2{0.5, 0.75}) {
		t.Errorf("expected flipped texcoord (0.5, 0.75), got %v", got)
	}
	if got := m.Vertices[0].Normal; got != (mgl32.Vec3{0, 1, 0}) {
		t.Errorf("expected normal (0,1,0), got %v", got)
	}

	// Bare position: defaults.
	if got := m.Vertices[1].TexCoord; got != (mgl32.Vec2{0, 0}) {
		t.Errorf("expected default texcoord, got %v", got)
	}
	if got := m.Vertices[1].Normal; got != DefaultNormal {
		t.Errorf("expected default normal, got %v", got)
	}

	if got := m.Vertices[2].Position; got != (mgl32.Vec3{1, 1, 0}) {
		t.Errorf("unexpected position %v", got)
	}
}

func TestGroupFaces(t *testing.T) {
	shapes := []Shape{
		{FaceMaterials: []int{0, 0, 1, 1, 1, 0}},
		{FaceMaterials: []int{NoMaterial, NoMaterial}},
		{},
		{FaceMaterials: []int{2}},
	}

	want := []FaceGroup{
		{MaterialID: 0, FaceCount: 2, IndexOffset: 0},
		{MaterialID: 1, FaceCount: 3, IndexOffset: 6},
		{MaterialID: 0, FaceCount: 1, IndexOffset: 15},
		{MaterialID: NoMaterial, FaceCount: 2, IndexOffset: 18},
		{MaterialID: 2, FaceCount: 1, IndexOffset: 24},
	}

	got := GroupFaces(shapes)
	if len(got) != len(want) {
		t.Fatalf("expected %d groups, got %d: %+v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("group %d: got %+v, want %+v", i, got[i], want[i])
		}
	}
	if got[1].IndexCount() != 9 {
		t.Errorf("expected 9 indices for 3 faces, got %d", got[1].IndexCount())
	}
}

func TestGroupFaces_CoverIndexBuffer(t *testing.T) {
	m := Build(parseString(t, twoMaterialOBJ, libs(map[string]string{"fox.mtl": foxMTL})))

	total := 0
	for _, g := range m.Groups {
		if g.IndexOffset != total {
			t.Errorf("group offset %d, expected %d", g.IndexOffset, total)
		}
		total += g.IndexCount()
	}
	if total != len(m.Indices) {
		t.Errorf("groups cover %d indices, buffer has %d", total, len(m.Indices))
	}
}

func TestMaterialName(t *testing.T) {
	m := &Mesh{Materials: []Material{{Name: "Fur"}}}

	if m.MaterialName(0) != "Fur" {
		t.Errorf("expected Fur, got %q", m.MaterialName(0))
	}
	if m.MaterialName(NoMaterial) != "" || m.MaterialName(3) != "" {
		t.Error("out-of-range ids should have no name")
	}
}

func TestParseMTL(t *testing.T) {
	src := `# exported
newmtl A
map_Kd a.png
newmtl B
map_Kd -o 0.5 0.5 0 -clamp on textures/b c.tga
newmtl C
`
	mats, err := ParseMTL(strings.NewReader(src), "test.mtl")
	if err != nil {
		t.Fatalf("ParseMTL failed: %v", err)
	}

	want := []Material{
		{Name: "A", DiffuseTexture: "a.png"},
		{Name: "B", DiffuseTexture: "textures/b c.tga"},
		{Name: "C"},
	}
	if len(mats) != len(want) {
		t.Fatalf("expected %d materials, got %d", len(want), len(mats))
	}
	for i := range want {
		if mats[i] != want[i] {
			t.Errorf("material %d: got %+v, want %+v", i, mats[i], want[i])
		}
	}
}

func TestParseMTL_SkipsMalformed(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []Material
	}{
		{"map_Kd before newmtl", "map_Kd stray.png\nnewmtl skin\nmap_Kd skin.png\n", []Material{{Name: "skin", DiffuseTexture: "skin.png"}}},
		{"newmtl without a name", "newmtl A\nnewmtl\nmap_Kd lost.png\n", []Material{{Name: "A"}}},
		{"map_Kd options only", "newmtl A\nmap_Kd -s 1 1 1\n", []Material{{Name: "A"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mats, err := ParseMTL(strings.NewReader(tt.src), "bad.mtl")
			if err != nil {
				t.Fatalf("ParseMTL failed: %v", err)
			}
			if len(mats) != len(tt.want) {
				t.Fatalf("expected %d materials, got %+v", len(tt.want), mats)
			}
			for i := range tt.want {
				if mats[i] != tt.want[i] {
					t.Errorf("material %d: got %+v, want %+v", i, mats[i], tt.want[i])
				}
			}
		})
	}
}

func TestHashInNames(t *testing.T) {
	src := `mtllib lib.mtl
v 0 0 0 # origin
v 1 0 0
v 1 1 0
usemtl Mat#1 # trailing comment
f 1 2 3
`
	lib := "newmtl Mat#1\nmap_Kd tex#2.png\n"
	scene, _, err := ParseOBJ(strings.NewReader(src), "hash.obj", libs(map[string]string{"lib.mtl": lib}))
	if err != nil {
		t.Fatalf("ParseOBJ failed: %v", err)
	}
	if len(scene.Materials) != 1 || scene.Materials[0].Name != "Mat#1" || scene.Materials[0].DiffuseTexture != "tex#2.png" {
		t.Fatalf("unexpected materials %+v", scene.Materials)
	}
	if got := scene.Shapes[0].FaceMaterials[0]; got != 0 {
		t.Errorf("expected face bound to material 0, got %d", got)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	objPath := filepath.Join(dir, "fox.obj")
	if err := os.WriteFile(objPath, []byte(twoMaterialOBJ), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "fox.mtl"), []byte(foxMTL), 0644); err != nil {
		t.Fatal(err)
	}

	m, err := Load(objPath, LoadOptions{})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if m.MaterialDir != dir {
		t.Errorf("expected material dir %s, got %s", dir, m.MaterialDir)
	}
	if len(m.Materials) != 2 {
		t.Errorf("expected 2 materials, got %d", len(m.Materials))
	}
	if len(m.Vertices) != 18 {
		t.Errorf("expected 18 vertices (6 triangles), got %d", len(m.Vertices))
	}
}

func TestLoad_MissingLibraryIsNotFatal(t *testing.T) {
	dir := t.TempDir()
	objPath := filepath.Join(dir, "fox.obj")
	if err := os.WriteFile(objPath, []byte(twoMaterialOBJ), 0644); err != nil {
		t.Fatal(err)
	}

	m, err := Load(objPath, LoadOptions{})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(m.Materials) != 0 {
		t.Errorf("expected no materials, got %d", len(m.Materials))
	}
	for _, g := range m.Groups {
		if g.MaterialID != NoMaterial {
			t.Errorf("expected NoMaterial groups without a library, got %d", g.MaterialID)
		}
	}
}

func TestLoad_StrayMaterialStatement(t *testing.T) {
	dir := t.TempDir()
	objPath := filepath.Join(dir, "m.obj")
	obj := "mtllib m.mtl\nv 0 0 0\nv 1 0 0\nv 1 1 0\nusemtl skin\nf 1 2 3\n"
	if err := os.WriteFile(objPath, []byte(obj), 0644); err != nil {
		t.Fatal(err)
	}
	mtl := "map_Kd stray.png\nnewmtl skin\nmap_Kd skin.png\n"
	if err := os.WriteFile(filepath.Join(dir, "m.mtl"), []byte(mtl), 0644); err != nil {
		t.Fatal(err)
	}

	m, err := Load(objPath, LoadOptions{})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(m.Materials) != 1 || m.Materials[0].DiffuseTexture != "skin.png" {
		t.Errorf("unexpected materials %+v", m.Materials)
	}
	if len(m.Groups) != 1 || m.Groups[0].MaterialID != 0 {
		t.Errorf("unexpected groups %+v", m.Groups)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.obj"), LoadOptions{}); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoad_Malformed(t *testing.T) {
	objPath := filepath.Join(t.TempDir(), "bad.obj")
	if err := os.WriteFile(objPath, []byte("v 0 0 0\nf 1 2 3\n"), 0644); err != nil {
		t.Fatal(err)
	}
	_, err := Load(objPath, LoadOptions{})
	if !errors.Is(err, ErrBadIndex) {
		t.Errorf("expected ErrBadIndex, got %v", err)
	}
}
