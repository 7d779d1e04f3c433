package soft

import (
	"fmt"
	"image"
	"image/png"
	"io"

	"golang.org/x/image/draw"

	"github.com/gekko3d/shadowgraph/render"
)

// WritePNG encodes one face of t as a 16-bit grayscale PNG. A positive
// maxSize downsamples larger maps, keeping the aspect ratio.
func WritePNG(w io.Writer, t render.Target, face render.CubeFace, maxSize int) error {
	st, ok := t.(*Target)
	if !ok || st == nil {
		return fmt.Errorf("soft: write png: %w", render.ErrUnknownTarget)
	}
	img := st.Face(face)
	if img == nil {
		return fmt.Errorf("soft: write png: no face %d", face)
	}

	var out image.Image = img
	b := img.Bounds()
	if maxSize > 0 && (b.Dx() > maxSize || b.Dy() > maxSize) {
		dw, dh := maxSize, maxSize
		if b.Dx() > b.Dy() {
			dh = max(1, b.Dy()*maxSize/b.Dx())
		} else {
			dw = max(1, b.Dx()*maxSize/b.Dy())
		}
		small := image.NewGray16(image.Rect(0, 0, dw, dh))
		draw.ApproxBiLinear.Scale(small, small.Bounds(), img, b, draw.Src, nil)
		out = small
	}
	return png.Encode(w, out)
}
