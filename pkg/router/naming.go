package router

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// PascalCase converts an action segment to its action name.
// The first letter and every "-" or "_" delimited word are capitalized and
// the delimiters are dropped; the remaining letters are kept as-is.
//
//	PascalCase("view-post")  // "ViewPost"
//	PascalCase("list_all")   // "ListAll"
//	PascalCase("checkout")   // "Checkout"
func PascalCase(s string) string {
	words := strings.FieldsFunc(s, func(r rune) bool {
		return r == '-' || r == '_'
	})
	// Casers are stateful and must not be shared between goroutines.
	caser := cases.Title(language.Und, cases.NoLower)

	var b strings.Builder
	b.Grow(len(s))
	for _, w := range words {
		b.WriteString(caser.String(w))
	}
	return b.String()
}
