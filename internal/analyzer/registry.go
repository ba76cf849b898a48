package analyzer

import (
	"fmt"

	"github.com/ivlev/voterroll/internal/config"
)

// NewDetector creates a detector based on the specified variant.
// cal must already be scaled to the rendering resolution.
func NewDetector(variant string, cal config.Calibration) (Detector, error) {
	switch variant {
	case "adaptive", "":
		return NewAdaptiveDetector(cal), nil
	default:
		return nil, fmt.Errorf("unknown detector variant: %s", variant)
	}
}
