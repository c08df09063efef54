package mesh

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

// Parse errors.
var (
	ErrBadIndex   = errors.New("face index out of range")
	ErrShortFace  = errors.New("face needs at least 3 corners")
	ErrBadNumber  = errors.New("malformed number")
	ErrShortValue = errors.New("too few components")
)

// LibraryOpener opens an MTL library referenced by a mtllib statement.
type LibraryOpener func(name string) (io.ReadCloser, error)

// ParseError reports the file position of a parse failure.
type ParseError struct {
	File string
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d: %v", e.File, e.Line, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// objParser accumulates state while scanning an OBJ stream.
type objParser struct {
	scene       Scene
	current     Shape
	materialIDs map[string]int
	materialID  int
	openLib     LibraryOpener

	// mtllib names that could not be opened or read
	missingLibs []string
}

// ParseOBJ reads an OBJ stream. name is used in error messages. openLib may be
// nil, in which case mtllib statements are ignored. Polygons with more than
// three corners are fan-triangulated.
func ParseOBJ(r io.Reader, name string, openLib LibraryOpener) (*Scene, []string, error) {
	p := &objParser{
		materialIDs: make(map[string]int),
		materialID:  NoMaterial,
		openLib:     openLib,
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	lineNo := 0
	var pending string
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()

		// Line continuation
		if strings.HasSuffix(line, "\\") {
			pending += strings.TrimSuffix(line, "\\") + " "
			continue
		}
		line = pending + line
		pending = ""

		if err := p.parseLine(line); err != nil {
			return nil, nil, &ParseError{File: name, Line: lineNo, Err: err}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("reading %s: %w", name, err)
	}
	if pending != "" {
		if err := p.parseLine(pending); err != nil {
			return nil, nil, &ParseError{File: name, Line: lineNo, Err: err}
		}
	}

	p.flushShape("")
	return &p.scene, p.missingLibs, nil
}

func (p *objParser) parseLine(line string) error {
	fields := strings.Fields(stripComment(line))
	if len(fields) == 0 {
		return nil
	}

	switch fields[0] {
	case "v":
		v, err := parseFloats(fields[1:], 3)
		if err != nil {
			return err
		}
		p.scene.Attrib.Positions = append(p.scene.Attrib.Positions, mgl32.Vec3{v[0], v[1], v[2]})

	case "vt":
		args := fields[1:]
		if len(args) == 1 {
			args = append(args, "0")
		}
		v, err := parseFloats(args, 2)
		if err != nil {
			return err
		}
		p.scene.Attrib.TexCoords = append(p.scene.Attrib.TexCoords, mgl32.Vec2{v[0], v[1]})

	case "vn":
		v, err := parseFloats(fields[1:], 3)
		if err != nil {
			return err
		}
		p.scene.Attrib.Normals = append(p.scene.Attrib.Normals, mgl32.Vec3{v[0], v[1], v[2]})

	case "f":
		return p.parseFace(fields[1:])

	case "o", "g":
		p.flushShape(strings.Join(fields[1:], " "))

	case "usemtl":
		name := strings.Join(fields[1:], " ")
		if id, ok := p.materialIDs[name]; ok {
			p.materialID = id
		} else {
			p.materialID = NoMaterial
		}

	case "mtllib":
		for _, lib := range fields[1:] {
			if err := p.loadLibrary(lib); err != nil {
				return err
			}
		}
	}

	// s, l, p and the rest are not needed for triangle rendering.
	return nil
}

func (p *objParser) parseFace(corners []string) error {
	if len(corners) < 3 {
		return ErrShortFace
	}

	resolved := make([]Index, len(corners))
	for i, c := range corners {
		idx, err := p.parseCorner(c)
		if err != nil {
			return err
		}
		resolved[i] = idx
	}

	for i := 1; i+1 < len(resolved); i++ {
		p.current.Indices = append(p.current.Indices, resolved[0], resolved[i], resolved[i+1])
		p.current.FaceMaterials = append(p.current.FaceMaterials, p.materialID)
	}
	return nil
}

// parseCorner parses v, v/vt, v//vn or v/vt/vn.
func (p *objParser) parseCorner(s string) (Index, error) {
	parts := strings.Split(s, "/")
	if len(parts) > 3 {
		return Index{}, fmt.Errorf("%w: corner %q", ErrBadNumber, s)
	}

	idx := Index{Vertex: -1, TexCoord: -1, Normal: -1}
	attrib := &p.scene.Attrib

	var err error
	if idx.Vertex, err = resolveIndex(parts[0], len(attrib.Positions)); err != nil {
		return Index{}, err
	}
	if idx.Vertex < 0 {
		return Index{}, fmt.Errorf("%w: corner %q has no position", ErrBadIndex, s)
	}
	if len(parts) > 1 && parts[1] != "" {
		if idx.TexCoord, err = resolveIndex(parts[1], len(attrib.TexCoords)); err != nil {
			return Index{}, err
		}
	}
	if len(parts) > 2 && parts[2] != "" {
		if idx.Normal, err = resolveIndex(parts[2], len(attrib.Normals)); err != nil {
			return Index{}, err
		}
	}
	return idx, nil
}

// resolveIndex converts a 1-based or negative relative OBJ index into a
// zero-based index into a pool of size n.
func resolveIndex(s string, n int) (int, error) {
	if s == "" {
		return -1, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrBadNumber, s)
	}

	var i int
	switch {
	case v > 0:
		i = v - 1
	case v < 0:
		i = n + v
	default:
		return 0, fmt.Errorf("%w: index 0", ErrBadIndex)
	}
	if i < 0 || i >= n {
		return 0, fmt.Errorf("%w: %d (have %d)", ErrBadIndex, v, n)
	}
	return i, nil
}

// flushShape closes the current shape if it has faces and starts a new one.
func (p *objParser) flushShape(nextName string) {
	if len(p.current.FaceMaterials) > 0 {
		p.scene.Shapes = append(p.scene.Shapes, p.current)
		p.current = Shape{Name: nextName}
		return
	}
	// Consecutive o/g lines only rename the pending shape.
	p.current.Name = nextName
}

func (p *objParser) loadLibrary(name string) error {
	if p.openLib == nil {
		return nil
	}
	rc, err := p.openLib(name)
	if err != nil {
		p.missingLibs = append(p.missingLibs, name)
		return nil
	}
	defer rc.Close()

	materials, err := ParseMTL(rc, name)
	if err != nil {
		p.missingLibs = append(p.missingLibs, name)
		return nil
	}
	for _, m := range materials {
		if _, exists := p.materialIDs[m.Name]; exists {
			continue
		}
		p.materialIDs[m.Name] = len(p.scene.Materials)
		p.scene.Materials = append(p.scene.Materials, m)
	}
	return nil
}

// stripComment drops a trailing comment. A '#' only starts a comment at the
// beginning of a field, so names like "Material#1" survive.
func stripComment(line string) string {
	for i := 0; i < len(line); i++ {
		if line[i] != '#' {
			continue
		}
		if i == 0 || line[i-1] == ' ' || line[i-1] == '\t' {
			return line[:i]
		}
	}
	return line
}

func parseFloats(fields []string, n int) ([]float32, error) {
	if len(fields) < n {
		return nil, fmt.Errorf("%w: want %d, got %d", ErrShortValue, n, len(fields))
	}
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		v, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrBadNumber, fields[i])
		}
		out[i] = float32(v)
	}
	return out, nil
}
