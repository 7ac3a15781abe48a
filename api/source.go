package api

import (
	"fmt"
	"log"
	"os"
)

// Source is a mainImage body ready for renderer.SetShader.
type Source struct {
	Title string
	Body  string
	// Complete is false when the shader uses passes or inputs that a single
	// quad with iResolution, iMouse and iTime cannot provide.
	Complete bool
}

// SourceFromResponse joins the common pass and the image pass of a fetched
// shader.
func SourceFromResponse(shaderData *ShadertoyResponse) (*Source, error) {
	if shaderData == nil || shaderData.Shader == nil {
		return nil, fmt.Errorf("shader data must have a 'Shader' key")
	}

	src := &Source{Complete: true}
	var common, image string
	var haveImage bool
	for _, rPass := range shaderData.Shader.RenderPass {
		switch rPass.Type {
		case "image":
			image = rPass.Code
			haveImage = true
			if len(rPass.Inputs) > 0 {
				log.Printf("Warning: image pass uses %d input channel(s), which are not bound", len(rPass.Inputs))
				src.Complete = false
			}
		case "common":
			common = rPass.Code
		default:
			log.Printf("Warning: unsupported render pass type: %s", rPass.Type)
			src.Complete = false
		}
	}
	if !haveImage {
		return nil, fmt.Errorf("shader has no image pass")
	}

	if common != "" {
		src.Body = common + "\n" + image
	} else {
		src.Body = image
	}
	info := shaderData.Shader.Info
	src.Title = fmt.Sprintf(`"%s" by %s`, info.Name, info.Username)
	return src, nil
}

// SourceFromFile reads a mainImage body from path.
func SourceFromFile(path string) (*Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read shader file: %w", err)
	}
	return &Source{Title: path, Body: string(data), Complete: true}, nil
}
