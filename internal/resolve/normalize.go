package resolve

import "strings"

// Normalize lower-cases and trims raw, then applies the config-supplied
// mapping when it has an entry for the result. It is total: an empty token
// stays empty and an unmapped token passes through lower-cased.
func Normalize(raw string, mapping map[string]string) string {
	token := strings.ToLower(strings.TrimSpace(raw))
	if token == "" {
		return ""
	}
	if mapped, ok := mapping[token]; ok && mapped != "" {
		return mapped
	}
	return token
}
