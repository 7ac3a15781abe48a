//go:build !js

package translator

import (
	"testing"

	"github.com/richinsley/goshadercanvas/graphics"
	"github.com/richinsley/goshadercanvas/shader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestANGLETranslatesFragment(t *testing.T) {
	if testing.Short() {
		t.Skip("loads the ANGLE wasm module")
	}
	a, err := GetTranslator()
	require.NoError(t, err)

	res, err := a.Translate(shader.Assemble(graphics.DialectESSL300, shader.ExampleBody), graphics.FragmentStage, graphics.DialectGLSL410)
	require.NoError(t, err)
	assert.NotEmpty(t, res.Code)

	_, ok := res.Lookup(shader.TimeUniform)
	assert.True(t, ok)
	_, ok = res.Lookup(shader.ResolutionUniform)
	assert.True(t, ok)
}

func TestANGLERejectsBrokenSource(t *testing.T) {
	if testing.Short() {
		t.Skip("loads the ANGLE wasm module")
	}
	a, err := GetTranslator()
	require.NoError(t, err)

	_, err = a.Translate(shader.Assemble(graphics.DialectESSL300, "void mainImage(out vec4 c, in vec2 p) { c = ; }"), graphics.FragmentStage, graphics.DialectGLSL410)
	assert.Error(t, err)
}
