package renderer

import (
	"fmt"

	"github.com/richinsley/goshadercanvas/graphics"
)

// ErrContextUnavailable is returned when no usable device or surface was
// given, and wraps context creation failures from the platform packages.
var ErrContextUnavailable = graphics.ErrContextUnavailable

// ShaderCompileError carries the driver's compile log for one stage.
type ShaderCompileError struct {
	Stage graphics.ShaderStage
	Log   string
}

func (e *ShaderCompileError) Error() string {
	return fmt.Sprintf("failed to compile %s shader: %s", e.Stage, e.Log)
}

// ProgramLinkError carries the driver's link log.
type ProgramLinkError struct {
	Log string
}

func (e *ProgramLinkError) Error() string {
	return fmt.Sprintf("failed to link program: %s", e.Log)
}

type BufferAllocationError struct{}

func (e *BufferAllocationError) Error() string { return "failed to create vertex buffer" }

type VertexArrayAllocationError struct{}

func (e *VertexArrayAllocationError) Error() string { return "failed to create vertex array object" }
