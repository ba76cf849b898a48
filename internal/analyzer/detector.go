package analyzer

import "image"

// Region is the bounding box of one candidate voter block on a page.
type Region struct {
	Rect image.Rectangle
}

// Detector finds voter block regions on a page image, in reading order.
type Detector interface {
	Detect(img image.Image) ([]Region, error)
}
