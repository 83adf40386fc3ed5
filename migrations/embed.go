// Package migrations embeds the per-dialect schema migrations so both
// binaries can apply them without shipping loose SQL files.
package migrations

import "embed"

//go:embed sqlite/*.sql postgres/*.sql mysql/*.sql
var FS embed.FS
