// Package migrations embeds the goose migrations of the local SQLite store
// and of the PostgreSQL cloud collection.
package migrations

import (
	"embed"
	"io/fs"
)

//go:embed local/*.sql cloud/*.sql
var files embed.FS

// Local returns the SQLite migrations. Every step is additive so that an
// older data file is upgraded without losing rows.
func Local() fs.FS {
	return sub("local")
}

// Cloud returns the PostgreSQL migrations.
func Cloud() fs.FS {
	return sub("cloud")
}

func sub(dir string) fs.FS {
	f, err := fs.Sub(files, dir)
	if err != nil {
		panic(err)
	}
	return f
}
