package orthophoto

import "fmt"

// Limits bounds the size of a mosaic before it is decoded. A zero field means
// no ceiling for that dimension. Only set these when the input does not come
// from a trusted local ODM pipeline.
type Limits struct {
	MaxDimension int
	MaxPixels    int64
}

// NoLimits disables every decode-time size check
func NoLimits() Limits {
	return Limits{}
}

// Enabled reports whether any ceiling is configured
func (l Limits) Enabled() bool {
	return l.MaxDimension > 0 || l.MaxPixels > 0
}

// Check validates image dimensions read from the header
func (l Limits) Check(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("image bounds invalid (%d x %d)", width, height)
	}
	if l.MaxDimension > 0 && (width > l.MaxDimension || height > l.MaxDimension) {
		return fmt.Errorf("image dimension exceeds limit (%d x %d > %d)", width, height, l.MaxDimension)
	}
	pixels := int64(width) * int64(height)
	if l.MaxPixels > 0 && pixels > l.MaxPixels {
		return fmt.Errorf("image pixel count %d exceeds limit %d", pixels, l.MaxPixels)
	}
	return nil
}
