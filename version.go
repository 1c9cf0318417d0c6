package handheld

import _ "embed"

// Version is the release of the handheld runtime, read from the VERSION file.
//
//go:embed VERSION
var Version string
