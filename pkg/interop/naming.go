package interop

import (
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/lance2088/NiL.JS/pkg/config"
)

// naming maps Go identifiers to script names. A cases.Caser keeps state, so
// one is made per conversion.
type naming struct {
	mode string
}

// scriptName lowers the leading capital run of a Go name: "Add" becomes
// "add", "URLPath" becomes "urlPath" and "ID" becomes "id".
func (n naming) scriptName(goName string) string {
	if n.mode == config.NamingGo || goName == "" {
		return goName
	}
	run, capitals := 0, 0
	for i, r := range goName {
		if !unicode.IsUpper(r) {
			break
		}
		run = i + utf8.RuneLen(r)
		capitals++
	}
	if run == 0 {
		return goName
	}
	if run < len(goName) && capitals > 1 {
		// keep the last capital of "URLPath", it starts the next word
		_, size := utf8.DecodeLastRuneInString(goName[:run])
		run -= size
	}
	return cases.Lower(language.Und).String(goName[:run]) + goName[run:]
}
