package tutorials

import "embed"

// EmbeddedAssets contains static assets shipped with the default views:
// styles.css and search.js, the listing's live filter.
//
//go:embed embedded/*
var EmbeddedAssets embed.FS
