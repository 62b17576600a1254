package motion

// Frame is an interleaved RGBA pixel buffer at video resolution.
// Pix has Width*Height*4 bytes in row-major order.
type Frame struct {
	Width  int
	Height int
	Pix    []uint8
}

// NewFrame allocates a zeroed frame of the given size.
func NewFrame(width, height int) *Frame {
	if width <= 0 || height <= 0 {
		return &Frame{}
	}
	return &Frame{Width: width, Height: height, Pix: make([]uint8, width*height*4)}
}

// Valid reports whether the frame has a non-empty buffer matching its dimensions.
func (f *Frame) Valid() bool {
	return f != nil && f.Width > 0 && f.Height > 0 && len(f.Pix) == f.Width*f.Height*4
}

// SameSize reports whether two frames share dimensions.
func (f *Frame) SameSize(o *Frame) bool {
	return f != nil && o != nil && f.Width == o.Width && f.Height == o.Height
}

// Clone returns a deep copy of the frame.
func (f *Frame) Clone() *Frame {
	if f == nil {
		return nil
	}
	c := &Frame{Width: f.Width, Height: f.Height, Pix: make([]uint8, len(f.Pix))}
	copy(c.Pix, f.Pix)
	return c
}

// Fill sets every pixel to the given colour with full alpha.
func (f *Frame) Fill(r, g, b uint8) {
	for i := 0; i+3 < len(f.Pix); i += 4 {
		f.Pix[i] = r
		f.Pix[i+1] = g
		f.Pix[i+2] = b
		f.Pix[i+3] = 255
	}
}

// FillRect paints an axis-aligned rectangle, clipped to the frame.
func (f *Frame) FillRect(x0, y0, w, h int, r, g, b uint8) {
	for y := max(y0, 0); y < min(y0+h, f.Height); y++ {
		for x := max(x0, 0); x < min(x0+w, f.Width); x++ {
			i := (x + y*f.Width) * 4
			f.Pix[i] = r
			f.Pix[i+1] = g
			f.Pix[i+2] = b
			f.Pix[i+3] = 255
		}
	}
}

// grayAt returns the mean of the RGB channels at byte offset i.
// The caller guarantees i+2 < len(pix).
func grayAt(pix []uint8, i int) float64 {
	return (float64(pix[i]) + float64(pix[i+1]) + float64(pix[i+2])) / 3
}
