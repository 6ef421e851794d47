// Package resolution estimates ground sampling distance from flight height
// so the NodeODM orthophoto-resolution option can be chosen before processing.
package resolution

import (
	"errors"
	"fmt"
	"math"
)

// DefaultFOV is the horizontal field of view, in degrees, of the DJI
// Phantom/Mavic class cameras most ODM datasets come from
const DefaultFOV = 84.0

// ErrInvalidInput is returned for non-physical heights, resolutions or fields of view
var ErrInvalidInput = errors.New("invalid input")

// Footprint returns the ground width and height in meters covered by one
// nadir image. The vertical extent follows the sensor aspect ratio.
func Footprint(height float64, xRes, yRes int, hfovDeg float64) (float64, float64, error) {
	if err := validate(height, xRes, yRes, hfovDeg); err != nil {
		return 0, 0, err
	}
	w := 2 * height * math.Tan(hfovDeg*math.Pi/360)
	return w, w * float64(yRes) / float64(xRes), nil
}

// GroundSampleDistance returns the ground size of one pixel in cm for a nadir
// image taken at height meters. Pixels are square, so one value covers both
// axes and is directly usable as NodeODM's orthophoto-resolution.
func GroundSampleDistance(height float64, xRes, yRes int, hfovDeg float64) (float64, error) {
	w, _, err := Footprint(height, xRes, yRes, hfovDeg)
	if err != nil {
		return 0, err
	}
	return w * 100 / float64(xRes), nil
}

func validate(height float64, xRes, yRes int, hfovDeg float64) error {
	switch {
	case math.IsNaN(height) || math.IsInf(height, 0) || height <= 0:
		return fmt.Errorf("%w: height must be positive, got %v", ErrInvalidInput, height)
	case xRes <= 0 || yRes <= 0:
		return fmt.Errorf("%w: resolution must be positive, got %dx%d", ErrInvalidInput, xRes, yRes)
	case math.IsNaN(hfovDeg) || hfovDeg <= 0 || hfovDeg >= 180:
		return fmt.Errorf("%w: field of view must be within (0, 180), got %v", ErrInvalidInput, hfovDeg)
	}
	return nil
}
