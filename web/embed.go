// Package web holds the page templates and static assets of the web UI.
package web

import (
	"embed"
	"fmt"
	"io/fs"
)

//go:embed static templates
var content embed.FS

// StaticFS returns the stylesheet and other files served under /static/.
func StaticFS() (fs.FS, error) {
	return sub("static")
}

// TemplatesFS returns the page templates.
func TemplatesFS() (fs.FS, error) {
	return sub("templates")
}

func sub(dir string) (fs.FS, error) {
	f, err := fs.Sub(content, dir)
	if err != nil {
		return nil, fmt.Errorf("opening embedded %s: %w", dir, err)
	}
	return f, nil
}
