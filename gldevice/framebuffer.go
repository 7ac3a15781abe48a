//go:build !js

package gldevice

import (
	"fmt"

	gl "github.com/go-gl/gl/v4.1-core/gl"
	"github.com/richinsley/goshadercanvas/graphics"
)

func (d *Device) CreateFramebuffer(width, height int) (graphics.Handle, error) {
	var fbo, tex uint32
	gl.GenFramebuffers(1, &fbo)
	gl.BindFramebuffer(gl.FRAMEBUFFER, fbo)
	gl.GenTextures(1, &tex)
	gl.BindTexture(gl.TEXTURE_2D, tex)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(width), int32(height), 0, gl.RGBA, gl.UNSIGNED_BYTE, nil)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, tex, 0)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	if status != gl.FRAMEBUFFER_COMPLETE {
		gl.DeleteFramebuffers(1, &fbo)
		gl.DeleteTextures(1, &tex)
		return 0, fmt.Errorf("offscreen fbo is not complete: 0x%x", status)
	}

	d.textures[graphics.Handle(fbo)] = tex
	return graphics.Handle(fbo), nil
}

func (d *Device) BindFramebuffer(fbo graphics.Handle) {
	gl.BindFramebuffer(gl.FRAMEBUFFER, uint32(fbo))
}

func (d *Device) ReadPixels(width, height int, dst []byte) {
	if len(dst) < width*height*4 {
		return
	}
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadBuffer(gl.COLOR_ATTACHMENT0)
	gl.ReadPixels(0, 0, int32(width), int32(height), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(&dst[0]))
}

func (d *Device) DeleteFramebuffer(fbo graphics.Handle) {
	f := uint32(fbo)
	gl.DeleteFramebuffers(1, &f)
	if tex, ok := d.textures[fbo]; ok {
		gl.DeleteTextures(1, &tex)
		delete(d.textures, fbo)
	}
}
