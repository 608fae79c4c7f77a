// Package migrations встраивает схему MySQL, чтобы бинарник мигрировал без исходников.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
