package shader

import (
	"github.com/richinsley/goshadercanvas/graphics"
)

// ────────────────────────────────── Desktop GL ──────────────────────────────────

const vertexShaderSourceGL = `#version 410 core
in vec4 position;
void main() {
    gl_Position = position;
}
`

const prefixGL = `#version 410 core
precision highp float;
out vec4 outColor;

uniform vec2  iResolution;
uniform vec2  iMouse;
uniform float iTime;

`

// ──────────────────────────────────── GLES ──────────────────────────────────────

const vertexShaderSourceGLES = `#version 300 es
in vec4 position;
void main() {
    gl_Position = position;
}
`

const prefixGLES = `#version 300 es
precision highp float;
out vec4 outColor;

uniform vec2  iResolution;
uniform vec2  iMouse;
uniform float iTime;

`

const suffix = `
void main() {
    mainImage(outColor, gl_FragCoord.xy);
}
`

// DefaultBody fills the surface with a uniform gray.
const DefaultBody = `void mainImage(out vec4 fragColor, in vec2 fragCoord)
{
    fragColor = vec4(0.5, 0.5, 0.5, 1.0);
}
`

// ExampleBody is the classic time varying palette.
const ExampleBody = `void mainImage(out vec4 fragColor, in vec2 fragCoord)
{
    // Normalized pixel coordinates (from 0 to 1)
    vec2 uv = fragCoord/iResolution.xy;

    // Time varying pixel color
    vec3 col = 0.5 + 0.5*cos(iTime+uv.xyx+vec3(0,2,4));

    fragColor = vec4(col,1.0);
}
`

// ────────────────────────────────── Public API ─────────────────────────────────

// Uniform names every assembled fragment program declares.
const (
	ResolutionUniform = "iResolution"
	MouseUniform      = "iMouse"
	TimeUniform       = "iTime"
	PositionAttrib    = "position"
)

func VertexSource(d graphics.Dialect) string {
	if d == graphics.DialectGLSL410 {
		return vertexShaderSourceGL
	}
	return vertexShaderSourceGLES
}

// Prefix declares precision, the output color and the standard uniforms.
func Prefix(d graphics.Dialect) string {
	if d == graphics.DialectGLSL410 {
		return prefixGL
	}
	return prefixGLES
}

// Suffix defines main() in terms of the user's mainImage.
func Suffix() string {
	return suffix
}

// Assemble wraps a mainImage body into a complete fragment program.
func Assemble(d graphics.Dialect, body string) string {
	return Prefix(d) + body + suffix
}
