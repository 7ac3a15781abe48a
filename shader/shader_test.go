package shader

import (
	"strings"
	"testing"

	"github.com/richinsley/goshadercanvas/graphics"
	"github.com/stretchr/testify/assert"
)

func TestAssembleWrapsBody(t *testing.T) {
	body := "void mainImage(out vec4 c, in vec2 p) { c = vec4(1.0); }"
	src := Assemble(graphics.DialectESSL300, body)

	assert.True(t, strings.HasPrefix(src, "#version 300 es\n"))
	assert.Equal(t, Prefix(graphics.DialectESSL300)+body+Suffix(), src)

	for _, decl := range []string{
		"precision highp float;",
		"out vec4 outColor;",
		"uniform vec2  iResolution;",
		"uniform vec2  iMouse;",
		"uniform float iTime;",
	} {
		assert.Contains(t, src, decl)
	}
	assert.Less(t, strings.Index(src, body), strings.Index(src, "void main()"))
	assert.Contains(t, src, "mainImage(outColor, gl_FragCoord.xy);")
}

func TestDialects(t *testing.T) {
	assert.True(t, strings.HasPrefix(Prefix(graphics.DialectGLSL410), "#version 410 core\n"))
	assert.True(t, strings.HasPrefix(VertexSource(graphics.DialectGLSL410), "#version 410 core\n"))
	assert.True(t, strings.HasPrefix(VertexSource(graphics.DialectESSL300), "#version 300 es\n"))

	for _, d := range []graphics.Dialect{graphics.DialectESSL300, graphics.DialectGLSL410} {
		assert.Contains(t, VertexSource(d), "in vec4 position;", d.String())
		assert.Contains(t, VertexSource(d), "gl_Position = position;", d.String())
	}
}

func TestBodiesDefineMainImage(t *testing.T) {
	for _, body := range []string{DefaultBody, ExampleBody} {
		assert.Contains(t, body, "void mainImage(out vec4 fragColor, in vec2 fragCoord)")
	}
	assert.Contains(t, DefaultBody, "vec4(0.5, 0.5, 0.5, 1.0)")
}
