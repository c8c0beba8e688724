// Package migrations embeds the goose SQL migrations so the binary can run
// them at startup without a filesystem checkout.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
