// Package web embeds the static manager UI.
package web

import "embed"

// Static embeds the manager page and its assets.
//
//go:embed static/*
var Static embed.FS
