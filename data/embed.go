// Package data embeds the bundled sample payloads and the regulatory
// desk-mapping taxonomy so the binary can run without a data directory.
//
// Usage:
//
//	import "github.com/seenimoa/marketdesk/data"
//	samples := datasource.NewSamplesFS(data.FS(), "embedded")
package data

import (
	"embed"
	"io/fs"
)

//go:embed *.json *.yaml
var files embed.FS

// FS returns the embedded sample files.
func FS() fs.FS { return files }
