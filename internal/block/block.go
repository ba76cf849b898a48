package block

import (
	"image"

	"golang.org/x/image/draw"

	"github.com/ivlev/voterroll/internal/analyzer"
	"github.com/ivlev/voterroll/internal/config"
)

// Block is the cropped content of one region, ready for OCR.
type Block struct {
	Region analyzer.Region
	Image  *image.Gray
	// House is the binarized house-number corner. Nil when the crop has no area.
	House *image.Gray
}

// Extractor crops blocks and their house-number corner out of a gray page.
type Extractor struct {
	X0, X1, Y0, Y1 float64 // House crop as fractions of the block size
	Threshold      uint8   // Global binarization threshold for the house crop
	Scale          float64 // Upscale factor for the house crop, <= 1 disables it
}

func NewExtractor(cal config.Calibration) *Extractor {
	return &Extractor{
		X0:        cal.HouseX0,
		X1:        cal.HouseX1,
		Y0:        cal.HouseY0,
		Y1:        cal.HouseY1,
		Threshold: cal.HouseThreshold,
		Scale:     cal.HouseScale,
	}
}

// Extract copies region r out of page. The copy is independent of page so
// the page buffer can be reused while OCR still holds the block.
func (e *Extractor) Extract(page *image.Gray, r analyzer.Region) Block {
	rect := r.Rect.Intersect(page.Rect)
	img := image.NewGray(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	for y := 0; y < rect.Dy(); y++ {
		off := page.PixOffset(rect.Min.X, rect.Min.Y+y)
		copy(img.Pix[y*img.Stride:y*img.Stride+rect.Dx()], page.Pix[off:off+rect.Dx()])
	}

	return Block{
		Region: r,
		Image:  img,
		House:  e.houseCrop(img),
	}
}

// HouseRect returns the house-number corner of a w x h block. Bounds are
// truncated towards zero like the pixel indices they describe.
func (e *Extractor) HouseRect(w, h int) image.Rectangle {
	return image.Rect(
		int(float64(w)*e.X0), int(float64(h)*e.Y0),
		int(float64(w)*e.X1), int(float64(h)*e.Y1),
	)
}

func (e *Extractor) houseCrop(b *image.Gray) *image.Gray {
	hr := e.HouseRect(b.Rect.Dx(), b.Rect.Dy())
	if hr.Dx() <= 0 || hr.Dy() <= 0 {
		return nil
	}

	crop := Binarize(b.SubImage(hr).(*image.Gray), e.Threshold)
	if e.Scale <= 1 {
		return crop
	}

	dst := image.NewGray(image.Rect(0, 0,
		int(float64(crop.Rect.Dx())*e.Scale), int(float64(crop.Rect.Dy())*e.Scale)))
	draw.CatmullRom.Scale(dst, dst.Rect, crop, crop.Rect, draw.Src, nil)
	return Binarize(dst, e.Threshold)
}

// Binarize returns a new image with pixels above t set to 255 and the rest to 0.
func Binarize(src *image.Gray, t uint8) *image.Gray {
	w, h := src.Rect.Dx(), src.Rect.Dy()
	dst := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		row := src.Pix[y*src.Stride : y*src.Stride+w]
		out := dst.Pix[y*dst.Stride : y*dst.Stride+w]
		for x, v := range row {
			if v > t {
				out[x] = 255
			}
		}
	}
	return dst
}
