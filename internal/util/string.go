package util

import "strings"

// TruncateString truncates a string to maxRunes characters (rune-based, not byte-based)
// If truncated, appends "..." to the result
func TruncateString(s string, maxRunes int) string {
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	return string(runes[:maxRunes]) + "..."
}

// CollapseSpaces trims a string and folds internal whitespace runs into single spaces
func CollapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// SanitizeFilename makes a user-supplied download name safe for a
// Content-Disposition header: path separators and control characters are
// dropped, spaces become underscores, and a .pdf extension is enforced.
func SanitizeFilename(name, fallback string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		name = fallback
	}

	var builder strings.Builder
	for _, r := range name {
		switch {
		case r == '/' || r == '\\' || r == ':' || r == '"' || r == '\'':
			continue
		case r < 0x20 || r == 0x7f:
			continue
		case r == ' ':
			builder.WriteRune('_')
		default:
			builder.WriteRune(r)
		}
	}

	name = strings.Trim(builder.String(), "._")
	if name == "" {
		name = fallback
	}
	if !strings.HasSuffix(strings.ToLower(name), ".pdf") {
		name += ".pdf"
	}
	return name
}
