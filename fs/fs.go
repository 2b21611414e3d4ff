// Package appfs embeds the assets shipped with the binaries: SQL migrations, the common passwords list and templates.
package appfs

import "embed"

//go:embed migrations passwords all:templates
var FS embed.FS
