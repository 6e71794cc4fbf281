package catalog

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	maxFileNameRunes = 200
	// leaves room for an extension within the usual 255 byte limit
	maxFileNameBytes = 250
)

var (
	invalidFileNameChars = regexp.MustCompile(`[<>:"/\\|?*]`)
	fileNameWhitespace   = regexp.MustCompile(`\s+`)
)

// SanitizeFileName makes `name` safe to use as a single path element on
// common filesystems, the result is at most 200 runes and 250 bytes long.
// Extensions should be appended after sanitizing so they survive the cut.
func SanitizeFileName(name string) string {
	name = invalidFileNameChars.ReplaceAllString(name, "_")
	name = fileNameWhitespace.ReplaceAllString(name, " ")
	name = strings.TrimSpace(name)

	runes := 0
	for i := range name {
		if runes == maxFileNameRunes {
			return strings.TrimSpace(name[:i])
		}
		_, size := utf8.DecodeRuneInString(name[i:])
		if i+size > maxFileNameBytes {
			return strings.TrimSpace(name[:i])
		}
		runes++
	}
	return name
}
