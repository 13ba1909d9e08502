// Package constant defines immutable application-level identifiers and configuration defaults.
package constant

const (
	// Unpuzzle is the canonical application identifier used for filesystem paths and CLI branding.
	Unpuzzle = "unpuzzle"

	// Version is the current application semantic version string.
	Version = "0.1.0"

	// UserAgent is the default HTTP User-Agent string used for network requests to the platform API.
	UserAgent = "unpuzzle-cli/" + Version
)

// Build metadata, overridden at release time via ldflags.
var (
	BuiltAt  = "unknown"
	BuiltBy  = "unknown"
	Revision = "unknown"
)
