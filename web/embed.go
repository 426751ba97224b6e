// Package web embeds the static demo chat page served at /.
package web

import "embed"

// StaticFS holds the demo page and its assets.
//
//go:embed static/*
var StaticFS embed.FS
