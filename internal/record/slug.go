package record

import "strings"

const maxSlugLen = 80

// Slug reduces a label or stream name to a filesystem-safe name
// component: alphanumerics, dash, underscore and dot survive, whitespace
// becomes dashes, everything else is removed.
func Slug(s string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-' || r == '_' || r == '.':
			b.WriteRune(r)
		case r == ' ' || r == '\t':
			b.WriteByte('-')
		}
	}
	out := strings.Trim(b.String(), "-._")
	if out == "" {
		return "stream"
	}
	if len(out) > maxSlugLen {
		out = out[:maxSlugLen]
	}
	return out
}
