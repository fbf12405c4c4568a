package newick

import "strings"

// quoteForcing are the characters that cannot appear in an unquoted label.
// A space can, written as an underscore.
const quoteForcing = ",;\t\n\r():[]'"

// IsSingleQuoted reports whether label is wrapped in single quotes.
func IsSingleQuoted(label string) bool {
	return len(label) >= 2 && label[0] == '\'' && label[len(label)-1] == '\''
}

// IsEscaped reports whether label can be written as is: either it is
// single quoted with every inner quote doubled, or it contains no space and
// no special character.
func IsEscaped(label string) bool {
	if IsSingleQuoted(label) {
		inner := label[1 : len(label)-1]
		for i := 0; i < len(inner); i++ {
			if inner[i] != '\'' {
				continue
			}
			if i+1 >= len(inner) || inner[i+1] != '\'' {
				return false
			}
			i++
		}
		return true
	}
	return !strings.ContainsAny(label, " "+quoteForcing)
}

// EscapeLabel returns label in a form that can be written to a Newick or
// NEXUS file. Labels with special characters are single quoted (doubling any
// inner quote); otherwise spaces become underscores. Labels that are already
// escaped are returned unchanged.
func EscapeLabel(label string) string {
	if IsEscaped(label) {
		return label
	}
	if IsSingleQuoted(label) {
		inner := label[1 : len(label)-1]
		var b strings.Builder
		b.Grow(len(label) + 2)
		b.WriteByte('\'')
		for i := 0; i < len(inner); i++ {
			b.WriteByte(inner[i])
			if inner[i] == '\'' {
				b.WriteByte('\'')
				if i+1 < len(inner) && inner[i+1] == '\'' {
					i++
				}
			}
		}
		b.WriteByte('\'')
		return b.String()
	}
	if strings.ContainsAny(label, quoteForcing) {
		return "'" + strings.ReplaceAll(label, "'", "''") + "'"
	}
	return strings.ReplaceAll(label, " ", "_")
}

// UnescapeLabel reverses EscapeLabel: quotes are removed, doubled quotes are
// collapsed and underscores become spaces. The underscore convention is
// lossy: a label that really contains an underscore comes back with a space.
func UnescapeLabel(label string) string {
	if IsSingleQuoted(label) {
		label = strings.ReplaceAll(label[1:len(label)-1], "''", "'")
	}
	return strings.ReplaceAll(label, "_", " ")
}
