package migrations

import "embed"

// Files contains SQL migrations embedded into the binary, named with a flat
// numeric convention (e.g. 001_init.sql) so they apply in lexical order.
//
//go:embed *.sql
var Files embed.FS
