package analyzer

import (
	"image"
	"sort"

	"golang.org/x/image/draw"

	"github.com/ivlev/voterroll/internal/config"
	"github.com/ivlev/voterroll/internal/system"
)

// AdaptiveDetector finds the boxed voter blocks of a roll page: mean
// adaptive threshold (inverse binary), external contours, size filter.
type AdaptiveDetector struct {
	BlockSize int // Odd neighbourhood size of the threshold
	C         int // Offset subtracted from the neighbourhood mean
	MinWidth  int // Regions must be strictly wider than this
	MinHeight int // and strictly taller than this
}

// NewAdaptiveDetector creates a detector from a calibration already scaled
// to the rendering resolution.
func NewAdaptiveDetector(cal config.Calibration) *AdaptiveDetector {
	return &AdaptiveDetector{
		BlockSize: cal.ThresholdBlock,
		C:         cal.ThresholdC,
		MinWidth:  cal.MinWidth,
		MinHeight: cal.MinHeight,
	}
}

// Detect returns the accepted regions sorted top-to-bottom, left-to-right.
func (d *AdaptiveDetector) Detect(img image.Image) ([]Region, error) {
	gray, release := Grayscale(img)
	defer release()

	w, h := gray.Rect.Dx(), gray.Rect.Dy()
	if w < 3 || h < 3 {
		return nil, nil
	}

	mask := system.GetGray(image.Rect(0, 0, w, h))
	defer system.PutGray(mask)

	adaptiveThresholdInv(gray, mask.Pix, d.BlockSize, d.C)

	regions := []Region{}
	for _, rect := range externalBoxes(mask.Pix, w, h) {
		if rect.Dx() > d.MinWidth && rect.Dy() > d.MinHeight {
			regions = append(regions, Region{Rect: rect.Add(gray.Rect.Min)})
		}
	}

	SortRegions(regions)
	return regions, nil
}

// SortRegions orders regions by top edge, then left edge. Equal keys keep
// their detection order.
func SortRegions(regions []Region) {
	sort.SliceStable(regions, func(i, j int) bool {
		a, b := regions[i].Rect.Min, regions[j].Rect.Min
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		return a.X < b.X
	})
}

// Grayscale converts img to an 8-bit gray image. The release func hands a
// pooled buffer back; it is a no-op when img already was *image.Gray.
func Grayscale(img image.Image) (*image.Gray, func()) {
	if g, ok := img.(*image.Gray); ok {
		return g, func() {}
	}
	b := img.Bounds()
	gray := system.GetGray(b)
	draw.Draw(gray, b, img, b.Min, draw.Src)
	return gray, func() { system.PutGray(gray) }
}

// adaptiveThresholdInv writes 255 to dst where a pixel is at least c below
// the rounded mean of its block x block neighbourhood and 0 elsewhere.
// Borders replicate the edge pixels. dst is laid out with stride Dx().
func adaptiveThresholdInv(src *image.Gray, dst []uint8, block, c int) {
	w, h := src.Rect.Dx(), src.Rect.Dy()
	r := block / 2
	area := int32(block * block)

	clamp := func(v, hi int) int {
		if v < 0 {
			return 0
		}
		if v > hi {
			return hi
		}
		return v
	}

	// Horizontal box sums.
	rowSum := make([]int32, w*h)
	for y := 0; y < h; y++ {
		row := src.Pix[y*src.Stride : y*src.Stride+w]
		out := rowSum[y*w : (y+1)*w]

		var s int32
		for i := -r; i <= r; i++ {
			s += int32(row[clamp(i, w-1)])
		}
		out[0] = s
		for x := 1; x < w; x++ {
			s += int32(row[clamp(x+r, w-1)]) - int32(row[clamp(x-r-1, w-1)])
			out[x] = s
		}
	}

	// Vertical pass over the horizontal sums, one running sum per column.
	colSum := make([]int32, w)
	for i := -r; i <= r; i++ {
		row := rowSum[clamp(i, h-1)*w:]
		for x := range colSum {
			colSum[x] += row[x]
		}
	}

	offset := int32(c)
	for y := 0; y < h; y++ {
		if y > 0 {
			add := rowSum[clamp(y+r, h-1)*w:]
			sub := rowSum[clamp(y-r-1, h-1)*w:]
			for x := range colSum {
				colSum[x] += add[x] - sub[x]
			}
		}

		row := src.Pix[y*src.Stride : y*src.Stride+w]
		out := dst[y*w : (y+1)*w]
		for x := 0; x < w; x++ {
			mean := (colSum[x] + area/2) / area
			if int32(row[x]) <= mean-offset {
				out[x] = 255
			} else {
				out[x] = 0
			}
		}
	}
}

const (
	unseen  uint8 = iota
	outside       // background connected to the image frame
	labeled       // foreground already assigned to a component
)

// externalBoxes returns the bounding boxes of the outermost foreground
// components of mask (w x h, 255 = foreground). The 1-pixel frame counts as
// background. Foreground is 8-connected and background 4-connected, so a
// component inside another component's hole never touches the outside.
func externalBoxes(mask []uint8, w, h int) []image.Rectangle {
	for x := 0; x < w; x++ {
		mask[x] = 0
		mask[(h-1)*w+x] = 0
	}
	for y := 0; y < h; y++ {
		mask[y*w] = 0
		mask[y*w+w-1] = 0
	}

	state := make([]uint8, w*h)
	stack := make([]int, 0, 2*(w+h))

	// Flood the outside background from the frame.
	for x := 0; x < w; x++ {
		stack = append(stack, x, (h-1)*w+x)
	}
	for y := 1; y < h-1; y++ {
		stack = append(stack, y*w, y*w+w-1)
	}
	for _, p := range stack {
		state[p] = outside
	}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		x, y := p%w, p/w
		if x > 0 {
			stack = markOutside(mask, state, stack, p-1)
		}
		if x < w-1 {
			stack = markOutside(mask, state, stack, p+1)
		}
		if y > 0 {
			stack = markOutside(mask, state, stack, p-w)
		}
		if y < h-1 {
			stack = markOutside(mask, state, stack, p+w)
		}
	}

	// Foreground never lies on the frame, so every neighbour below is in bounds.
	neighbours := [8]int{-w - 1, -w, -w + 1, -1, 1, w - 1, w, w + 1}

	boxes := []image.Rectangle{}
	for start := range mask {
		if mask[start] == 0 || state[start] != unseen {
			continue
		}

		minX, minY := start%w, start/w
		maxX, maxY := minX, minY
		external := false

		state[start] = labeled
		stack = append(stack[:0], start)
		for len(stack) > 0 {
			p := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			x, y := p%w, p/w
			if x < minX {
				minX = x
			}
			if x > maxX {
				maxX = x
			}
			if y < minY {
				minY = y
			}
			if y > maxY {
				maxY = y
			}

			if !external && (state[p-1] == outside || state[p+1] == outside ||
				state[p-w] == outside || state[p+w] == outside) {
				external = true
			}

			for _, d := range neighbours {
				q := p + d
				if mask[q] != 0 && state[q] == unseen {
					state[q] = labeled
					stack = append(stack, q)
				}
			}
		}

		if external {
			boxes = append(boxes, image.Rect(minX, minY, maxX+1, maxY+1))
		}
	}

	return boxes
}

func markOutside(mask, state []uint8, stack []int, q int) []int {
	if mask[q] == 0 && state[q] == unseen {
		state[q] = outside
		stack = append(stack, q)
	}
	return stack
}
