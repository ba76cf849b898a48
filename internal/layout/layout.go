// Package layout describes the regions detected on a roll, page by page.
// Layout files are written by the detect-only mode to check the calibration
// of a new template or resolution. A checked (or hand-edited) file can be
// passed back to a full run, which then uses its blocks instead of
// detecting them.
package layout

import (
	"image"

	"github.com/ivlev/voterroll/internal/config"
)

const Version = "1.0"

// Layout is the detection result of one document.
type Layout struct {
	Version     string             `yaml:"version"`
	Document    string             `yaml:"document"`
	DPI         int                `yaml:"dpi"`
	Calibration config.Calibration `yaml:"calibration"`
	Pages       []Page             `yaml:"pages"`
}

// Page lists the blocks of one page in processing order.
type Page struct {
	Number int     `yaml:"page"` // 1-based
	Width  int     `yaml:"width"`
	Height int     `yaml:"height"`
	Blocks []Block `yaml:"blocks"`
}

type Block struct {
	ID    int        `yaml:"id"` // 1-based position on the page
	Rect  Rectangle  `yaml:"rect"`
	House *Rectangle `yaml:"house,omitempty"` // page coordinates, absent for a degenerate crop
}

// Rectangle represents a bounding box
type Rectangle struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
	W int `yaml:"w"`
	H int `yaml:"h"`
}

func FromRect(r image.Rectangle) Rectangle {
	return Rectangle{X: r.Min.X, Y: r.Min.Y, W: r.Dx(), H: r.Dy()}
}

func (r Rectangle) Rect() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.W, r.Y+r.H)
}

// Page returns the page with the given 1-based number.
func (l *Layout) Page(number int) (Page, bool) {
	for _, p := range l.Pages {
		if p.Number == number {
			return p, true
		}
	}
	return Page{}, false
}

// BlockCount returns the number of blocks over all pages.
func (l *Layout) BlockCount() int {
	n := 0
	for _, p := range l.Pages {
		n += len(p.Blocks)
	}
	return n
}
