package media

import (
	"fmt"
	"strings"
)

// PlaceholderMode names the low-fidelity rendition flavor committed while the
// real asset is still loading.
type PlaceholderMode string

const (
	// PlaceholderNone disables the placeholder effect.
	PlaceholderNone PlaceholderMode = ""
	// PlaceholderBlur delivers a blurred low-quality rendition.
	PlaceholderBlur PlaceholderMode = "blur"
	// PlaceholderPixelate delivers a pixelated low-quality rendition.
	PlaceholderPixelate PlaceholderMode = "pixelate"
)

// Valid reports whether the mode is one of the recognized flavors.
func (m PlaceholderMode) Valid() bool {
	switch m {
	case PlaceholderNone, PlaceholderBlur, PlaceholderPixelate:
		return true
	}
	return false
}

// Hints is the accumulated transformation state derived from plugin results.
// The zero value renders the asset untouched.
type Hints struct {
	// Width requests a scaled rendition. Zero leaves the intrinsic size.
	Width int
	// Placeholder switches the URL to a low-fidelity rendition.
	Placeholder PlaceholderMode
	// Intensity tunes the placeholder effect strength. Zero uses the
	// effect's default.
	Intensity int
	// Format forces a container format (video candidates, f_auto, ...).
	Format string
}

// variantSegment renders the hints as a canonical comma-joined URL segment.
// Segment order is fixed so identical hints always produce identical URLs.
func (h Hints) variantSegment() string {
	var parts []string
	if h.Width > 0 {
		parts = append(parts, fmt.Sprintf("w_%d", h.Width))
	}
	if h.Placeholder != PlaceholderNone {
		if h.Intensity > 0 {
			parts = append(parts, fmt.Sprintf("e_%s:%d", h.Placeholder, h.Intensity))
		} else {
			parts = append(parts, fmt.Sprintf("e_%s", h.Placeholder))
		}
		parts = append(parts, "q_auto:low")
	}
	if h.Format != "" {
		parts = append(parts, "f_"+h.Format)
	}
	return strings.Join(parts, ",")
}

// VideoSource is one playback candidate for a video element.
type VideoSource struct {
	URL      string
	MIMEType string
}
