// Package catalog embeds the built-in command catalog.
package catalog

import (
	"embed"
	"io/fs"
)

// FileName is the name of the built-in catalog inside FS.
const FileName = "commands.yaml"

//go:embed commands.yaml
var builtin embed.FS

// FS returns the embedded filesystem containing the built-in catalog.
// This is used by the registry service to load the default entries.
func FS() fs.FS {
	return builtin
}
