package sparse

import "regexp"

var tokenPattern = regexp.MustCompile(`[A-Za-z0-9_]+`)

// Tokenize splits text into lowercase tokens. A token is a maximal run of
// ASCII letters, digits and underscores; everything else is a separator.
// Empty input yields an empty slice.
func Tokenize(text string) []string {
	matches := tokenPattern.FindAllString(text, -1)
	tokens := make([]string, 0, len(matches))
	for _, m := range matches {
		tokens = append(tokens, toLower(m))
	}
	return tokens
}

// toLower lowercases ASCII letters. Tokens only ever contain
// [A-Za-z0-9_], so the full unicode case tables are not needed.
func toLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
