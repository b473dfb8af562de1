// Package migrations embeds the SQL schema so binaries migrate without
// shipping the directory alongside them.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
