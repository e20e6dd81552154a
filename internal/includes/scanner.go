package includes

import "strings"

// Occurrence locates one `(!...!)` directive inside a string.
type Occurrence struct {
	Start int
	End   int
	Raw   string
}

// Scan returns every directive in text, left to right. The `!)` terminator
// is only recognised outside double-quoted values, so a value such as
// "Installation has failed!" does not end the directive early.
func Scan(text string) []Occurrence {
	var out []Occurrence
	for i := 0; i < len(text); {
		idx := strings.Index(text[i:], "(!")
		if idx < 0 {
			break
		}
		start := i + idx
		end := terminator(text, start+2)
		if end < 0 {
			i = start + 2
			continue
		}
		out = append(out, Occurrence{Start: start, End: end, Raw: text[start:end]})
		i = end
	}
	return out
}

func terminator(text string, from int) int {
	inQuote := false
	for j := from; j < len(text)-1; j++ {
		switch text[j] {
		case '\\':
			j++
		case '"':
			inQuote = !inQuote
		case '!':
			if !inQuote && text[j+1] == ')' {
				return j + 2
			}
		}
	}
	return -1
}

// IsSoleDirective reports whether text, once trimmed, is exactly one
// directive and nothing else.
func IsSoleDirective(text string) (string, bool) {
	trimmed := strings.TrimSpace(text)
	found := Scan(trimmed)
	if len(found) != 1 || found[0].Start != 0 || found[0].End != len(trimmed) {
		return "", false
	}
	return trimmed, true
}
