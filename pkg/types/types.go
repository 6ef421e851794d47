package types

// Bounds is a geodetic bounding box in EPSG:4326 (x = longitude, y = latitude)
type Bounds struct {
	MinX float64 `json:"min_x" yaml:"min_x"`
	MaxX float64 `json:"max_x" yaml:"max_x"`
	MinY float64 `json:"min_y" yaml:"min_y"`
	MaxY float64 `json:"max_y" yaml:"max_y"`
}

// Center returns the midpoint of the box
func (b Bounds) Center() Center {
	return Center{
		Lat: (b.MaxY + b.MinY) / 2,
		Lon: (b.MaxX + b.MinX) / 2,
	}
}

// Width returns the longitudinal extent in degrees
func (b Bounds) Width() float64 {
	return b.MaxX - b.MinX
}

// Height returns the latitudinal extent in degrees
func (b Bounds) Height() float64 {
	return b.MaxY - b.MinY
}

// Center is the map center derived from Bounds
type Center struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lon float64 `json:"lon" yaml:"lon"`
}

// Summary is written to summary.json next to the orthophoto artifacts
type Summary struct {
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
	Bounds      Bounds `json:"bounds" yaml:"bounds"`
	Center      Center `json:"center" yaml:"center"`
}

// NewSummary builds a Summary whose center is derived from bounds
func NewSummary(title, description string, bounds Bounds) Summary {
	return Summary{
		Title:       title,
		Description: description,
		Bounds:      bounds,
		Center:      bounds.Center(),
	}
}
