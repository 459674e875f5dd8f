package markup

import "strings"

// Preprocess converts the storage escape for line breaks into literal
// newlines: every two-character sequence `\` `n` becomes "\n". The scan is
// left to right and non-overlapping, so in `\\n` the second backslash pairs
// with the n. A backslash followed by anything else is left untouched.
//
// The transformation is display-only and not invertible; the stored string is
// what gets edited and persisted, so nothing ever needs to invert it. Total
// over all inputs.
func Preprocess(raw string) string {
	return strings.ReplaceAll(raw, `\n`, "\n")
}
