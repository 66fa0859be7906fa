package poetbook

import "embed"

// EmbeddedAssets contains the stylesheet and the admin session script served
// under /public/ and copied by Snapshot.
//
//go:embed embedded/*
var EmbeddedAssets embed.FS
