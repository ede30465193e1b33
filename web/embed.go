package web

import (
	"embed"
	"io/fs"
)

// FS contains all embedded web assets. The patterns are relative to this
// file's directory (the 'web' directory).
//
//go:embed static/* public/*.html
var FS embed.FS

// Static returns the assets served under /static.
func Static() fs.FS {
	sub, err := fs.Sub(FS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

// Public returns the informational page fragments.
func Public() fs.FS {
	sub, err := fs.Sub(FS, "public")
	if err != nil {
		panic(err)
	}
	return sub
}
