// Package puzzles bundles the default puzzle catalog into the binary.
package puzzles

import "embed"

// FS holds the bundled puzzle documents.
//
//go:embed *.yaml *.txt
var FS embed.FS
