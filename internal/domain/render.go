package domain

import "fmt"

type RenderBackend string

const (
	// RenderBackendChromium prints through a headless browser, the most
	// faithful path for decks styled with modern CSS.
	RenderBackendChromium RenderBackend = "chromium"
	// RenderBackendWkhtmltopdf lays out through the wkhtmltopdf engine.
	RenderBackendWkhtmltopdf RenderBackend = "wkhtmltopdf"
	// RenderBackendSlides draws pages directly from the structured slide
	// list, no HTML engine involved.
	RenderBackendSlides RenderBackend = "slides"
)

func (b RenderBackend) String() string {
	return string(b)
}

func (b RenderBackend) IsValid() bool {
	switch b {
	case RenderBackendChromium, RenderBackendWkhtmltopdf, RenderBackendSlides:
		return true
	default:
		return false
	}
}

type MediaType string

const (
	MediaTypeScreen MediaType = "screen"
	MediaTypePrint  MediaType = "print"
)

func (m MediaType) String() string {
	return string(m)
}

func (m MediaType) IsValid() bool {
	switch m {
	case MediaTypeScreen, MediaTypePrint:
		return true
	default:
		return false
	}
}

type PageSize string

const (
	PageSizeA4     PageSize = "A4"
	PageSizeLetter PageSize = "Letter"
)

func (p PageSize) String() string {
	return string(p)
}

func (p PageSize) IsValid() bool {
	switch p {
	case PageSizeA4, PageSizeLetter:
		return true
	default:
		return false
	}
}

// Inches returns the portrait paper dimensions in inches.
func (p PageSize) Inches() (width, height float64) {
	switch p {
	case PageSizeLetter:
		return 8.5, 11.0
	default:
		return 8.27, 11.69 // A4
	}
}

type Orientation string

const (
	OrientationPortrait  Orientation = "portrait"
	OrientationLandscape Orientation = "landscape"
)

func (o Orientation) String() string {
	return string(o)
}

func (o Orientation) IsValid() bool {
	switch o {
	case OrientationPortrait, OrientationLandscape:
		return true
	default:
		return false
	}
}

// RenderOptions selects the backend and page setup for one PDF export.
type RenderOptions struct {
	Backend     RenderBackend `json:"backend"`
	Media       MediaType     `json:"media"`
	PageSize    PageSize      `json:"page_size"`
	Orientation Orientation   `json:"orientation"`
	Filename    string        `json:"filename,omitempty"`
}

// ApplyDefaults fills unset fields with the standard export setup:
// chromium backend, screen media, A4 portrait.
func (o *RenderOptions) ApplyDefaults() {
	if o.Backend == "" {
		o.Backend = RenderBackendChromium
	}
	if o.Media == "" {
		o.Media = MediaTypeScreen
	}
	if o.PageSize == "" {
		o.PageSize = PageSizeA4
	}
	if o.Orientation == "" {
		o.Orientation = OrientationPortrait
	}
}

func (o *RenderOptions) Validate() error {
	if !o.Backend.IsValid() {
		return fmt.Errorf("unknown render backend: %q", o.Backend)
	}
	if !o.Media.IsValid() {
		return fmt.Errorf("unknown media type: %q", o.Media)
	}
	if !o.PageSize.IsValid() {
		return fmt.Errorf("unknown page size: %q", o.PageSize)
	}
	if !o.Orientation.IsValid() {
		return fmt.Errorf("unknown orientation: %q", o.Orientation)
	}
	return nil
}
