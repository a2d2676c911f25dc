// Package docs bundles long-form documentation into the mgp binary.
package docs

import "embed"

// FS holds the bundled markdown documentation.
//
//go:embed *.md
var FS embed.FS
