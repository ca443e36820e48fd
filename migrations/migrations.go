// Package migrations embeds the SQL schema applied at server start.
package migrations

import "embed"

// FS holds the *.up.sql files in lexical order.
//
//go:embed *.sql
var FS embed.FS
