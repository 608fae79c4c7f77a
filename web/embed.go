// Package web встраивает HTML-шаблоны консоли.
package web

import "embed"

// all: нужен, иначе партиалы с префиксом "_" не попадают в FS.
//
//go:embed all:templates
var Templates embed.FS
