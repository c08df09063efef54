package renderer

import (
	"github.com/Faultbox/objviewer/internal/engine/texture"
	"github.com/Faultbox/objviewer/internal/mesh"
)

// DrawCommand is one indexed draw of a face group.
type DrawCommand struct {
	// Bind is set when Texture must be bound before drawing.
	Bind    bool
	Texture uint32

	// First index and index count into the element buffer.
	First int
	Count int32
}

// PlanDraws turns face groups into draw commands, in group order. A group
// whose material has a texture binds it unless it is already bound; any other
// group draws with whatever texture is bound at that point. bound is the
// texture bound before the first command; the texture bound after the last
// command is returned.
func PlanDraws(groups []mesh.FaceGroup, materials []mesh.Material, textures texture.Table, bound uint32) ([]DrawCommand, uint32) {
	cmds := make([]DrawCommand, 0, len(groups))

	for _, g := range groups {
		cmd := DrawCommand{
			First: g.IndexOffset,
			Count: int32(g.IndexCount()),
		}

		if g.MaterialID >= 0 && g.MaterialID < len(materials) {
			if h, ok := textures[materials[g.MaterialID].Name]; ok && h != bound {
				cmd.Bind = true
				cmd.Texture = h
				bound = h
			}
		}

		cmds = append(cmds, cmd)
	}
	return cmds, bound
}
