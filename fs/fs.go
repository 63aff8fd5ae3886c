// Package appfs bundles the files shipped inside the binaries.
package appfs

import "embed"

//go:embed migrations/*.sql assets/*
var FS embed.FS
