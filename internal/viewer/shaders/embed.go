// Package shaders provides embedded GLSL shader sources.
package shaders

import _ "embed"

// ModelVertexShader is the vertex shader for the mesh pass.
//
//go:embed model.vert
var ModelVertexShader string

// ModelFragmentShader is the fragment shader for the mesh pass.
//
//go:embed model.frag
var ModelFragmentShader string

// OverlayVertexShader is the vertex shader for the text overlay.
//
//go:embed overlay.vert
var OverlayVertexShader string

// OverlayFragmentShader is the fragment shader for the text overlay.
//
//go:embed overlay.frag
var OverlayFragmentShader string
