// display.go - 2D pixel buffer component with an integer up-scaler

package main

// Pixel is a single RGBA color; the packed wire format emitted to the
// front-end is (r<<24)|(g<<16)|(b<<8)|a.
type Pixel struct {
	R, G, B, A uint8
}

func NewPixel(r, g, b, a uint8) Pixel { return Pixel{r, g, b, a} }

func (p Pixel) packed() uint32 {
	return uint32(p.R)<<24 | uint32(p.G)<<16 | uint32(p.B)<<8 | uint32(p.A)
}

// Display is a width x height grid of pixels with an integer scale factor
// applied only when exporting via GetPixelData.
type Display struct {
	baseComponent

	width, height int
	scale         int
	pixels        []Pixel
}

// NewDisplay constructs a width x height display, scale defaulting to 1.
func NewDisplay(name string, width, height int) *Display {
	return &Display{
		baseComponent: baseComponent{name: name, kind: ComponentDisplay},
		width:         width,
		height:        height,
		scale:         1,
		pixels:        make([]Pixel, width*height),
	}
}

func (d *Display) Width() int  { return d.width }
func (d *Display) Height() int { return d.height }
func (d *Display) Scale() int  { return d.scale }

// SetScale clamps the scale factor to [1,4], matching the reference's
// display scaling bounds.
func (d *Display) SetScale(s int) {
	if s < 1 {
		s = 1
	}
	if s > 4 {
		s = 4
	}
	d.scale = s
}

func (d *Display) validate(x, y int) error {
	if x < 0 || x >= d.width || y < 0 || y >= d.height {
		return &OutOfRangeError{X: x, Y: y}
	}
	return nil
}

// ClearScreen fills every pixel with the given color.
func (d *Display) ClearScreen(p Pixel) {
	for i := range d.pixels {
		d.pixels[i] = p
	}
}

// Clear fills every pixel with the zero pixel (transparent black).
func (d *Display) Clear() { d.ClearScreen(Pixel{}) }

// GetPixel returns the pixel at (x,y), bounds-checked.
func (d *Display) GetPixel(x, y int) (Pixel, error) {
	if err := d.validate(x, y); err != nil {
		return Pixel{}, err
	}
	return d.pixels[y*d.width+x], nil
}

// SetPixel writes the pixel at (x,y), bounds-checked.
func (d *Display) SetPixel(x, y int, p Pixel) error {
	if err := d.validate(x, y); err != nil {
		return err
	}
	d.pixels[y*d.width+x] = p
	return nil
}

// GetPixelData returns a newly allocated, scaled RGBA image of dimensions
// (width*scale, height*scale); ownership transfers to the caller. Each
// source pixel is replicated as a scale x scale block, packed as
// (r<<24)|(g<<16)|(b<<8)|a.
func (d *Display) GetPixelData() (buf []uint32, w, h int) {
	w, h = d.width*d.scale, d.height*d.scale
	buf = make([]uint32, w*h)
	for i, p := range d.pixels {
		x, y := i%d.width, i/d.width
		packed := p.packed()
		for dy := 0; dy < d.scale; dy++ {
			for dx := 0; dx < d.scale; dx++ {
				idx := (y*d.scale+dy)*w + (x*d.scale + dx)
				buf[idx] = packed
			}
		}
	}
	return buf, w, h
}

func (d *Display) AttachToBus(b *Bus) error { d.bus = b; return nil }
func (d *Display) OnTick()                  {}
func (d *Display) PowerOn()                  {}
func (d *Display) PowerOff()                 { d.Clear() }

func (d *Display) ReadTyped(addr uint64, w Width) (uint32, error)  { return notImplementedRead(addr, w) }
func (d *Display) WriteTyped(addr uint64, w Width, v uint32) error { return notImplementedWrite(addr, w) }
