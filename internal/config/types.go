package config

import (
	"gopkg.in/yaml.v3"
)

// Config represents the full glimmer configuration document.
type Config struct {
	Version     string    `yaml:"version" validate:"required,semver"`
	Name        string    `yaml:"name" validate:"required,min=1,max=100"`
	Description string    `yaml:"description,omitempty"`
	Cloud       Cloud     `yaml:"cloud"`
	Settings    Settings  `yaml:"settings,omitempty"`
	Profiles    []Profile `yaml:"profiles" validate:"required,min=1,dive"`
}

// Cloud holds the delivery endpoint media URLs are built against.
type Cloud struct {
	BaseURL string `yaml:"base_url" validate:"required,url"`
	Space   string `yaml:"space" validate:"required,space_id"`
}

// Settings holds global execution parameters.
type Settings struct {
	// Parallel bounds concurrent element pipelines during a document pass.
	Parallel int `yaml:"parallel,omitempty" validate:"omitempty,min=1,max=32"`
	// SettleTimeout is the per-pipeline settle deadline in milliseconds.
	SettleTimeout int `yaml:"settle_timeout,omitempty" validate:"omitempty,min=1,max=360000"`
	// ProbeTimeout is the per-request probe deadline in milliseconds.
	ProbeTimeout int `yaml:"probe_timeout,omitempty" validate:"omitempty,min=1,max=360000"`
	// ProbeCache is the probe result cache size in entries.
	ProbeCache int `yaml:"probe_cache,omitempty" validate:"omitempty,min=1,max=65536"`
	Verbose    bool `yaml:"verbose,omitempty"`
}

// Profile binds a plugin pipeline to the elements it enhances.
type Profile struct {
	Name    string       `yaml:"name" validate:"required,profile_name"`
	Match   Match        `yaml:"match"`
	Plugins []PluginSpec `yaml:"plugins,omitempty" validate:"omitempty,dive"`
}

// Match selects target elements by tag and optional class token. An empty
// class matches every element of the tag.
type Match struct {
	Tag   string `yaml:"tag" validate:"required,oneof=img video"`
	Class string `yaml:"class,omitempty" validate:"omitempty,class_token"`
}

// PluginSpec describes one plugin entry of a profile pipeline.
type PluginSpec struct {
	Type string `yaml:"type" validate:"required,oneof=placeholder responsive accessibility lazyload"`

	Placeholder   *PlaceholderSpec   `yaml:",inline,omitempty"`
	Responsive    *ResponsiveSpec    `yaml:",inline,omitempty"`
	Accessibility *AccessibilitySpec `yaml:",inline,omitempty"`
	Lazyload      *LazyloadSpec      `yaml:",inline,omitempty"`
}

// UnmarshalYAML customises plugin decoding to populate type-specific structures without conflicts.
func (s *PluginSpec) UnmarshalYAML(value *yaml.Node) error {
	type baseSpec struct {
		Type string `yaml:"type"`
	}

	var base baseSpec
	if err := value.Decode(&base); err != nil {
		return err
	}

	s.Type = base.Type
	s.Placeholder = nil
	s.Responsive = nil
	s.Accessibility = nil
	s.Lazyload = nil

	switch base.Type {
	case "placeholder":
		var ph PlaceholderSpec
		if err := value.Decode(&ph); err != nil {
			return err
		}
		s.Placeholder = &ph
	case "responsive":
		var rs ResponsiveSpec
		if err := value.Decode(&rs); err != nil {
			return err
		}
		s.Responsive = &rs
	case "accessibility":
		var ac AccessibilitySpec
		if err := value.Decode(&ac); err != nil {
			return err
		}
		s.Accessibility = &ac
	case "lazyload":
		var lz LazyloadSpec
		if err := value.Decode(&lz); err != nil {
			return err
		}
		s.Lazyload = &lz
	}

	return nil
}

// UnmarshalYAML applies defaults for placeholder entries.
func (p *PlaceholderSpec) UnmarshalYAML(value *yaml.Node) error {
	type rawPlaceholder PlaceholderSpec
	var temp rawPlaceholder
	if err := value.Decode(&temp); err != nil {
		return err
	}
	*p = PlaceholderSpec(temp)
	if p.Mode == "" {
		p.Mode = "blur"
	}
	return nil
}

// PlaceholderSpec configures the staged placeholder plugin.
type PlaceholderSpec struct {
	Mode      string `yaml:"mode,omitempty" validate:"omitempty,oneof=blur pixelate"`
	Intensity int    `yaml:"intensity,omitempty" validate:"omitempty,min=1,max=5000"`
}

// ResponsiveSpec configures width resolution.
type ResponsiveSpec struct {
	// Step is the width rounding granularity in pixels.
	Step int `yaml:"step,omitempty" validate:"omitempty,min=10,max=1000"`
	// MaxWidth caps the resolved width.
	MaxWidth int `yaml:"max_width,omitempty" validate:"omitempty,min=16,max=8192"`
}

// AccessibilitySpec configures alt text derivation.
type AccessibilitySpec struct {
	DefaultAlt string `yaml:"default_alt,omitempty" validate:"omitempty,max=300"`
}

// LazyloadSpec has no options today; it exists so every plugin entry decodes
// into a typed section.
type LazyloadSpec struct{}

// ProfileMap builds a lookup table for profiles by name.
func ProfileMap(profiles []Profile) map[string]Profile {
	out := make(map[string]Profile, len(profiles))
	for _, profile := range profiles {
		out[profile.Name] = profile
	}
	return out
}
