package web

import (
	"io/fs"
	"testing"
)

func TestPartialsAreEmbedded(t *testing.T) {
	for _, name := range []string{
		"templates/layout.tmpl",
		"templates/admin/_failed.tmpl",
		"templates/admin/_refresh.tmpl",
	} {
		if _, err := fs.Stat(Templates, name); err != nil {
			t.Errorf("%s: %v", name, err)
		}
	}
}
