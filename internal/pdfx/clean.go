package pdfx

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

const softHyphen = "\u00ad"

// CleanText normalises extracted page text: NFKC folds ligatures and
// compatibility forms, soft hyphens are dropped and runs of whitespace
// collapse to single spaces.
func CleanText(text string) string {
	text = norm.NFKC.String(text)
	text = strings.ReplaceAll(text, softHyphen, "")
	return strings.Join(strings.Fields(text), " ")
}
