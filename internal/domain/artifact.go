package domain

// Download describes what a presence-gated fetch did.
type Download struct {
	Path       string
	Downloaded bool  // false when the file was already present
	Bytes      int64 // size written, or size on disk when skipped
}

// Choropleth is a joined, calibrated map ready to be rasterized.
type Choropleth struct {
	Title       string
	Subtitle    string
	Caption     string
	LegendLabel string

	Result JoinResult
	Scale  ColorScale
	Labels bool // draw postal codes at region centroids
}
