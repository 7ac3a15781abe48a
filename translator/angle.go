//go:build !js

package translator

import (
	"context"
	"fmt"
	"sync"

	"github.com/richinsley/goshadercanvas/graphics"
	gst "github.com/richinsley/goshadertranslator"
)

// ANGLE translates with the goshadertranslator WebAssembly build of ANGLE.
type ANGLE struct {
	t *gst.ShaderTranslator
}

var (
	shared     *ANGLE
	sharedErr  error
	sharedOnce sync.Once
)

// GetTranslator returns the process wide ANGLE translator, creating it on
// first use.
func GetTranslator() (*ANGLE, error) {
	sharedOnce.Do(func() {
		shared, sharedErr = New(context.Background())
	})
	return shared, sharedErr
}

func New(ctx context.Context) (*ANGLE, error) {
	t, err := gst.NewShaderTranslator(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create shader translator: %w", err)
	}
	return &ANGLE{t: t}, nil
}

func (a *ANGLE) Translate(source string, stage graphics.ShaderStage, target graphics.Dialect) (*Result, error) {
	format := gst.OutputFormatGLSL410
	if target == graphics.DialectESSL300 {
		format = gst.OutputFormatESSL
	}
	out, err := a.t.TranslateShader(source, stage.String(), gst.ShaderSpecWebGL2, format)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(out.Variables))
	for name, v := range out.Variables {
		names[name] = v.MappedName
	}
	return &Result{Code: out.Code, Names: names}, nil
}
