// Package fileclass categorizes changed file paths as tests or documentation.
package fileclass

import (
	"path"
	"slices"
	"strings"

	"github.com/src-d/enry/v2"
)

var testMarkers = []string{".test.", ".spec.", "__test__", "__tests__", "/test/", "/tests/"}

var (
	docSuffixes = []string{".md", ".rst", ".txt"}
	docMarkers  = []string{"/docs/", "/doc/"}
)

const readmePrefix = "readme"

// Class is the category set of one path. A path may be both a test and a doc.
type Class struct {
	Test bool
	Doc  bool
}

// Classify returns the categories of p. Matching is case-insensitive.
func Classify(p string) Class {
	return Class{Test: IsTest(p), Doc: IsDoc(p)}
}

// IsTest reports whether p looks like a test file.
func IsTest(p string) bool {
	lower := strings.ToLower(p)

	for _, marker := range testMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}

	return false
}

// IsDoc reports whether p looks like documentation.
func IsDoc(p string) bool {
	lower := strings.ToLower(p)

	for _, suffix := range docSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return true
		}
	}

	if strings.HasPrefix(lower, readmePrefix) {
		return true
	}

	for _, marker := range docMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}

	return false
}

// preferredLanguages break ties when an extension maps to several languages,
// in order. enry would otherwise pick the first candidate alphabetically.
var preferredLanguages = []string{"Markdown", "Text", "C", "C++", "Objective-C", "TypeScript", "XML"}

// Language guesses the programming language of p from its name alone.
// It returns "" when the name is not recognized or stays ambiguous.
func Language(p string) string {
	base := path.Base(p)

	lang, safe := enry.GetLanguageByExtension(base)
	if safe {
		return lang
	}

	if lang != "" {
		candidates := enry.GetLanguagesByExtension(base, nil, nil)
		for _, preferred := range preferredLanguages {
			if slices.Contains(candidates, preferred) {
				return preferred
			}
		}
	}

	lang, safe = enry.GetLanguageByFilename(base)
	if safe {
		return lang
	}

	return ""
}

// Tally accumulates a set of distinct paths. The zero value is ready to use.
type Tally struct {
	paths map[string]Class
}

// Add records p. Adding the same path again has no effect.
func (t *Tally) Add(p string) {
	if t.paths == nil {
		t.paths = make(map[string]Class)
	}

	if _, seen := t.paths[p]; seen {
		return
	}

	t.paths[p] = Classify(p)
}

// Files returns the number of distinct paths.
func (t *Tally) Files() int {
	return len(t.paths)
}

// TestFiles returns the number of distinct test paths.
func (t *Tally) TestFiles() int {
	n := 0

	for _, c := range t.paths {
		if c.Test {
			n++
		}
	}

	return n
}

// DocFiles returns the number of distinct documentation paths.
func (t *Tally) DocFiles() int {
	n := 0

	for _, c := range t.paths {
		if c.Doc {
			n++
		}
	}

	return n
}

// Languages returns the distinct-file count per recognized language, or nil
// when no path was recognized.
func (t *Tally) Languages() map[string]int {
	var out map[string]int

	for p := range t.paths {
		lang := Language(p)
		if lang == "" {
			continue
		}

		if out == nil {
			out = make(map[string]int)
		}

		out[lang]++
	}

	return out
}
