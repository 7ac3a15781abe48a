// Package translator rewrites WebGL2 shader sources for the GL dialect a
// device runs.
package translator

import (
	"github.com/richinsley/goshadercanvas/graphics"
)

// Result is a translated shader plus the names its uniforms were mapped to.
type Result struct {
	Code string
	// Names maps source uniform names to the names in Code. A nil map means
	// names were left untouched.
	Names map[string]string
}

// Lookup returns the name to query for a source uniform, or false when the
// translated program does not carry it.
func (r *Result) Lookup(name string) (string, bool) {
	if r.Names == nil {
		return name, true
	}
	mapped, ok := r.Names[name]
	return mapped, ok
}

// Translator converts WebGL2 shader source into a device dialect.
type Translator interface {
	Translate(source string, stage graphics.ShaderStage, target graphics.Dialect) (*Result, error)
}

// Identity passes sources through unchanged. WebGL2 devices need no
// translation.
type Identity struct{}

func (Identity) Translate(source string, stage graphics.ShaderStage, target graphics.Dialect) (*Result, error) {
	return &Result{Code: source}, nil
}
