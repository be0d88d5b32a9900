// Package views is the default markup for a tutorials site. Sites that want
// their own templates build a tutorials.ViewFuncs of their own instead.
//
// The *_templ.go files are generated from the .templ sources with
// `templ generate`; edit the sources, not the output.
package views

import "github.com/eringen/tutorials"

// Default returns the built-in view set.
func Default() tutorials.ViewFuncs {
	return tutorials.ViewFuncs{
		Home:          Home,
		Tutorials:     TutorialsPage,
		SearchResults: SearchResults,
		Tutorial:      TutorialPage,
		Tag:           TagPage,
		NotFound:      NotFound,
		ServerError:   ServerError,
	}
}
