package mesh

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/objviewer/internal/logger"
)

// ParseMTL reads an MTL material library. Only material names and diffuse
// texture maps are kept. Malformed statements are logged and skipped; only
// read errors are returned.
func ParseMTL(r io.Reader, name string) ([]Material, error) {
	log := logger.Named("mesh")
	var materials []Material
	current := -1

	skip := func(lineNo int, reason string) {
		log.Warn("skipping material statement",
			zap.String("file", name),
			zap.Int("line", lineNo),
			zap.String("reason", reason),
		)
	}

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(stripComment(scanner.Text()))
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "newmtl":
			if len(fields) < 2 {
				// Later statements must not land on the previous material.
				current = -1
				skip(lineNo, "newmtl without a name")
				continue
			}
			materials = append(materials, Material{Name: strings.Join(fields[1:], " ")})
			current = len(materials) - 1

		case "map_Kd":
			if current < 0 {
				skip(lineNo, "map_Kd outside a material")
				continue
			}
			tex := textureFileName(fields[1:])
			if tex == "" {
				skip(lineNo, "map_Kd without a file name")
				continue
			}
			materials[current].DiffuseTexture = tex
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	return materials, nil
}

// textureOptionArgs is the number of values following each texture map option.
var textureOptionArgs = map[string]int{
	"-blendu":  1,
	"-blendv":  1,
	"-bm":      1,
	"-boost":   1,
	"-cc":      1,
	"-clamp":   1,
	"-imfchan": 1,
	"-mm":      2,
	"-o":       3,
	"-s":       3,
	"-t":       3,
	"-texres":  1,
	"-type":    1,
}

// textureFileName skips texture map options and returns the file name.
// File names containing spaces are rejoined.
func textureFileName(args []string) string {
	i := 0
	for i < len(args) {
		n, isOption := textureOptionArgs[args[i]]
		if !isOption {
			break
		}
		i += 1 + n
	}
	if i >= len(args) {
		return ""
	}
	return strings.Join(args[i:], " ")
}
