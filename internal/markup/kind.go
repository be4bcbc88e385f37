// Package markup maps a document to its markup kind and renders it through
// the registered backend.
package markup

import (
	"regexp"
	"strings"
)

// Kind identifies a lightweight markup language.
type Kind string

const (
	Markdown Kind = "markdown"
	Textile  Kind = "textile"
	RST      Kind = "rst"
)

// Spec is the static description of a known kind: the filename pattern that
// selects it and the backend that has to be present to render it.
type Spec struct {
	Kind       Kind
	Extensions []string
	Backend    string
}

// Pattern returns the case-sensitive suffix matcher for the kind's extensions.
func (s Spec) Pattern() *regexp.Regexp {
	return ExtensionPattern(s.Extensions...)
}

// Catalog lists the known kinds in detection priority order.
var Catalog = []Spec{
	{Kind: Markdown, Extensions: []string{"markdown", "md", "mdown", "mkd", "mkdn"}, Backend: "goldmark"},
	{Kind: Textile, Extensions: []string{"textile", "txtile"}, Backend: "pandoc"},
	{Kind: RST, Extensions: []string{"rst", "rest"}, Backend: "pandoc"},
}

// Lookup returns the catalog entry for k.
func Lookup(k Kind) (Spec, bool) {
	for _, s := range Catalog {
		if s.Kind == k {
			return s, true
		}
	}
	return Spec{}, false
}

// ExtensionPattern builds `\.(ext1|ext2)$`.
func ExtensionPattern(exts ...string) *regexp.Regexp {
	quoted := make([]string, len(exts))
	for i, e := range exts {
		quoted[i] = regexp.QuoteMeta(e)
	}
	return regexp.MustCompile(`\.(` + strings.Join(quoted, "|") + `)$`)
}
