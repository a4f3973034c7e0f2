package aspen

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
)

// ErrRegionNotFound is returned by Atlas.Region for names the atlas does
// not contain. Test with errors.Is; the wrapping error carries the name.
var ErrRegionNotFound = errors.New("aspen: atlas region not found")

// Atlas maps TexturePacker region names to textures sharing one or more
// page images.
type Atlas struct {
	// Pages holds the page images in the order the JSON references them.
	Pages  []*ebiten.Image
	byName map[string]*Texture
}

// Region returns the texture for the given region name. All lookups of the
// same name return the same *Texture, so sprites made from it share source
// and metadata. Unknown names return an error wrapping ErrRegionNotFound.
func (a *Atlas) Region(name string) (*Texture, error) {
	if t, ok := a.byName[name]; ok {
		return t, nil
	}
	return nil, fmt.Errorf("aspen: region %q: %w", name, ErrRegionNotFound)
}

// TexturePacker JSON schema. encoding/json matches the lowercase keys
// case-insensitively, so the fields carry no tags. tpRect doubles as the
// sourceSize {w, h} object, which just leaves X and Y zero.
type tpRect struct {
	X, Y, W, H int
}

type tpFrame struct {
	Frame            tpRect
	Rotated          bool
	Trimmed          bool
	SpriteSourceSize tpRect
	SourceSize       tpRect
}

type tpPage struct {
	Image  string
	Frames map[string]tpFrame
}

// texture converts one frame entry into a Texture on the given page.
// Frame is where the pixels sit in the page, SourceSize the authored
// (untrimmed) size, and SpriteSourceSize the trim placement within it.
func (f tpFrame) texture(page *ebiten.Image) *Texture {
	t := &Texture{
		source:  page,
		frame:   Rect{float64(f.Frame.X), float64(f.Frame.Y), float64(f.Frame.W), float64(f.Frame.H)},
		origW:   float64(f.SourceSize.W),
		origH:   float64(f.SourceSize.H),
		rotated: f.Rotated,
	}
	if f.Trimmed {
		t.trim = Rect{
			X:      float64(f.SpriteSourceSize.X),
			Y:      float64(f.SpriteSourceSize.Y),
			Width:  float64(f.SpriteSourceSize.W),
			Height: float64(f.SpriteSourceSize.H),
		}
		t.trimmed = true
	}
	return t
}

// LoadAtlas parses TexturePacker JSON and associates the given page images.
// Both published layouts are accepted: the hash format, a single "frames"
// object covering one page, and the array format, a "textures" array with
// one frame map per page. Page indices referenced by the JSON must exist
// in pages.
func LoadAtlas(data []byte, pages []*ebiten.Image) (*Atlas, error) {
	var doc struct {
		Frames   map[string]tpFrame
		Textures []tpPage
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("aspen: failed to parse atlas JSON: %w", err)
	}

	// Normalize the hash format to a one-page array.
	if doc.Textures == nil {
		if doc.Frames == nil {
			return nil, errors.New(`aspen: atlas JSON has neither "frames" nor "textures" key`)
		}
		doc.Textures = []tpPage{{Frames: doc.Frames}}
	}
	if len(doc.Textures) > len(pages) {
		return nil, fmt.Errorf("aspen: atlas JSON references %d pages, got %d", len(doc.Textures), len(pages))
	}

	a := &Atlas{Pages: pages, byName: make(map[string]*Texture)}
	for i, pg := range doc.Textures {
		for name, f := range pg.Frames {
			a.byName[name] = f.texture(pages[i])
		}
	}
	return a, nil
}
