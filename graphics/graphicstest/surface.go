package graphicstest

// Surface is a resizable stand-in for a window or canvas.
type Surface struct {
	Width, Height int
}

func (s *Surface) GetFramebufferSize() (int, int) {
	return s.Width, s.Height
}
