package media

import (
	"strconv"
	"strings"
)

// Version is the SDK version encoded into analytics tokens.
const Version = "1.2.0"

// tokenAlphabet maps 6-bit values to URL-safe characters.
const tokenAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"

// tokenLayout marks the token format revision.
const tokenLayout = 'B'

// Feature is a bit set recording which plugin kinds were active in the
// pipeline that produced a URL.
type Feature uint8

const (
	// FeatureResponsive marks an active responsive plugin.
	FeatureResponsive Feature = 1 << iota
	// FeaturePlaceholder marks an active placeholder plugin.
	FeaturePlaceholder
	// FeatureAccessibility marks an active accessibility plugin.
	FeatureAccessibility
	// FeatureLazyload marks an active lazy-loading plugin.
	FeatureLazyload
)

// FeatureForPlugin maps a plugin type name to its token bit.
func FeatureForPlugin(name string) (Feature, bool) {
	switch name {
	case "responsive":
		return FeatureResponsive, true
	case "placeholder":
		return FeaturePlaceholder, true
	case "accessibility":
		return FeatureAccessibility, true
	case "lazyload":
		return FeatureLazyload, true
	}
	return 0, false
}

// SDKInfo identifies the SDK build stamped into analytics tokens.
type SDKInfo struct {
	// Marker is the single-character SDK identifier.
	Marker byte
	// Version is the SDK semver whose major.minor is encoded.
	Version string
}

// DefaultSDK is the token identity for this build.
var DefaultSDK = SDKInfo{Marker: 'M', Version: Version}

// Token renders the fixed-length analytics token for the SDK metadata and
// active feature set. It is a pure function: identical inputs always yield
// the identical token, independent of plugin execution order or timing.
func Token(sdk SDKInfo, features Feature) string {
	major, minor := splitVersion(sdk.Version)
	token := [5]byte{
		tokenLayout,
		sdk.Marker,
		tokenAlphabet[clampIndex(major)],
		tokenAlphabet[clampIndex(minor)],
		tokenAlphabet[int(features)&0x3f],
	}
	return string(token[:])
}

func splitVersion(version string) (major, minor int) {
	parts := strings.SplitN(version, ".", 3)
	if len(parts) > 0 {
		major, _ = strconv.Atoi(parts[0])
	}
	if len(parts) > 1 {
		minor, _ = strconv.Atoi(parts[1])
	}
	return major, minor
}

func clampIndex(v int) int {
	if v < 0 {
		return 0
	}
	if v >= len(tokenAlphabet) {
		return len(tokenAlphabet) - 1
	}
	return v
}
