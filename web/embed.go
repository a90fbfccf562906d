// Package web provides embedded templates and static assets for the sync
// application's pages.
package web

import "embed"

// TemplatesFS contains the embedded HTML templates.
//
//go:embed all:templates
var TemplatesFS embed.FS

// StaticFS contains the embedded static assets.
//
//go:embed all:static
var StaticFS embed.FS
