package aspen

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

// Screenshot queues a labeled capture of the current frame. The pixels are
// read at the end of this frame's Draw call, after every camera has drawn,
// and written to ScreenshotDir as a timestamped PNG. Safe to call from
// Update or Draw.
func (s *Scene) Screenshot(label string) {
	s.screenshotQueue = append(s.screenshotQueue, label)
}

// saveScreenshots reads the rendered frame once and writes one PNG per
// queued label. Failures are logged to stderr rather than returned; a
// screenshot must never take the game loop down.
func (s *Scene) saveScreenshots(screen *ebiten.Image) {
	queue := s.screenshotQueue
	if len(queue) == 0 {
		return
	}
	s.screenshotQueue = queue[:0]

	dir := s.ScreenshotDir
	if err := os.MkdirAll(dir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "[aspen] screenshot: mkdir %s: %v\n", dir, err)
		return
	}

	b := screen.Bounds()
	raw := make([]byte, 4*b.Dx()*b.Dy())
	screen.ReadPixels(raw)
	img := unpremultiply(raw, b.Dx(), b.Dy())

	ts := time.Now().Format("20060102_150405")
	for _, label := range queue {
		name := fmt.Sprintf("%s_%s.png", ts, safeLabel(label))
		if err := writePNG(filepath.Join(dir, name), img); err != nil {
			fmt.Fprintf(os.Stderr, "[aspen] screenshot: %v\n", err)
		}
	}
}

// unpremultiply converts premultiplied RGBA pixel data, as ReadPixels
// returns it, into a straight-alpha image for PNG encoding.
func unpremultiply(src []byte, w, h int) *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(src); i += 4 {
		r, g, b, a := src[i], src[i+1], src[i+2], src[i+3]
		if 0 < a && a < 255 {
			m := int(a)
			r = uint8(min(int(r)*255/m, 255))
			g = uint8(min(int(g)*255/m, 255))
			b = uint8(min(int(b)*255/m, 255))
		}
		out.Pix[i], out.Pix[i+1], out.Pix[i+2], out.Pix[i+3] = r, g, b, a
	}
	return out
}

// writePNG encodes m to a PNG file at name.
func writePNG(name string, m *image.NRGBA) error {
	f, err := os.Create(name)
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	encErr := png.Encode(f, m)
	closeErr := f.Close()
	if encErr != nil {
		return fmt.Errorf("encode %s: %w", name, encErr)
	}
	if closeErr != nil {
		return fmt.Errorf("close %s: %w", name, closeErr)
	}
	return nil
}

// safeLabel maps characters that are unsafe in file names to underscores.
// An empty or whitespace label becomes "unlabeled".
func safeLabel(label string) string {
	if label = strings.TrimSpace(label); label == "" {
		label = "unlabeled"
	}
	return strings.Map(func(r rune) rune {
		if 'a' <= r && r <= 'z' || 'A' <= r && r <= 'Z' ||
			'0' <= r && r <= '9' || r == '-' || r == '.' {
			return r
		}
		return '_'
	}, label)
}
