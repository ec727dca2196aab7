package media

import (
	"fmt"
	"net/url"
	"strings"

	glimmererrors "github.com/glimmerlabs/glimmer/pkg/errors"
)

// Cloud identifies the delivery endpoint media URLs are built against.
type Cloud struct {
	BaseURL string
	Space   string
}

// Validate checks the cloud configuration is usable for URL generation.
func (c Cloud) Validate() error {
	if strings.TrimSpace(c.BaseURL) == "" {
		return glimmererrors.NewValidationError("cloud.base_url", "base URL is required", nil)
	}
	if _, err := url.Parse(c.BaseURL); err != nil {
		return glimmererrors.NewValidationError("cloud.base_url", "base URL is not a valid URL", err)
	}
	if strings.TrimSpace(c.Space) == "" {
		return glimmererrors.NewValidationError("cloud.space", "space is required", nil)
	}
	return nil
}

// Descriptor is an immutable handle to one media asset plus the context
// needed to derive delivery URLs from plugin-produced hints.
type Descriptor struct {
	cloud    Cloud
	path     string
	sdk      SDKInfo
	features Feature
	tracked  bool
}

// NewDescriptor builds a descriptor for the asset at publicPath within the cloud.
func NewDescriptor(cloud Cloud, publicPath string) (*Descriptor, error) {
	if err := cloud.Validate(); err != nil {
		return nil, err
	}
	path := strings.TrimPrefix(strings.TrimSpace(publicPath), "/")
	if path == "" {
		return nil, glimmererrors.NewValidationError("descriptor.path", "asset path is required", nil)
	}
	return &Descriptor{cloud: cloud, path: path}, nil
}

// FromSource derives a descriptor from a raw element source value. Absolute
// URLs keep only their path component; a leading space segment matching the
// cloud space is stripped so re-enhanced documents stay stable.
func FromSource(cloud Cloud, src string) (*Descriptor, error) {
	trimmed := strings.TrimSpace(src)
	if trimmed == "" {
		return nil, glimmererrors.NewValidationError("descriptor.source", "element has no source to derive an asset from", nil)
	}

	parsed, err := url.Parse(trimmed)
	if err != nil {
		return nil, glimmererrors.NewValidationError("descriptor.source", fmt.Sprintf("cannot parse source %q", src), err)
	}

	path := strings.TrimPrefix(parsed.Path, "/")
	if rest, ok := strings.CutPrefix(path, cloud.Space+"/"); ok {
		// Already a delivery URL for this space; unwrap any variant segment.
		if seg, remainder, found := strings.Cut(rest, "/"); found && isVariantSegment(seg) {
			rest = remainder
		}
		path = rest
	}

	return NewDescriptor(cloud, path)
}

// Path returns the asset's public path.
func (d *Descriptor) Path() string {
	return d.path
}

// Cloud returns the delivery configuration the descriptor was built with.
func (d *Descriptor) Cloud() Cloud {
	return d.cloud
}

// WithAnalytics returns a derived descriptor whose URLs carry the analytics
// token for the given SDK metadata and active plugin set. The receiver is
// left untouched.
func (d *Descriptor) WithAnalytics(sdk SDKInfo, features Feature) *Descriptor {
	derived := *d
	derived.sdk = sdk
	derived.features = features
	derived.tracked = true
	return &derived
}

// URL renders the delivery URL for the asset with the supplied hints applied.
// The result is deterministic for identical descriptor, hints and analytics
// metadata.
func (d *Descriptor) URL(h Hints) string {
	var b strings.Builder
	b.WriteString(strings.TrimSuffix(d.cloud.BaseURL, "/"))
	b.WriteByte('/')
	b.WriteString(d.cloud.Space)
	b.WriteByte('/')

	if variant := h.variantSegment(); variant != "" {
		b.WriteString(variant)
		b.WriteByte('/')
	}
	b.WriteString(d.path)

	if d.tracked {
		b.WriteString("?_a=")
		b.WriteString(Token(d.sdk, d.features))
	}
	return b.String()
}

func isVariantSegment(seg string) bool {
	for _, part := range strings.Split(seg, ",") {
		if !strings.ContainsRune(part, '_') && !strings.ContainsRune(part, ':') {
			return false
		}
	}
	return seg != ""
}
