// Package resources embeds the HTML templates into the binary.
package resources

import "embed"

//go:embed views/*.html
var Views embed.FS
