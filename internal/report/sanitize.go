package report

import "strings"

// reasoningTags are the markup pairs some chat models leak into their
// output before the visible answer.
var reasoningTags = [][2]string{
	{"<think>", "</think>"},
	{"<reasoning>", "</reasoning>"},
}

// StripReasoning removes chain-of-thought markup from model output.
//
// Matched open/close pairs are removed together with their contents.
// An opening tag with no closing tag drops everything from the tag to
// the end of the string. A stray closing tag is removed on its own.
// Matching is case-insensitive. The result is whitespace-trimmed.
func StripReasoning(s string) string {
	for _, pair := range reasoningTags {
		s = stripTagPair(s, pair[0], pair[1])
	}
	return strings.TrimSpace(s)
}

func stripTagPair(s, open, closeTag string) string {
	var b strings.Builder
	lower := strings.ToLower(s)
	for {
		i := strings.Index(lower, open)
		j := strings.Index(lower, closeTag)
		switch {
		case i == -1 && j == -1:
			b.WriteString(s)
			return b.String()
		case i == -1 || (j != -1 && j < i):
			// Closing tag with no opener before it.
			b.WriteString(s[:j])
			s = s[j+len(closeTag):]
			lower = lower[j+len(closeTag):]
		default:
			b.WriteString(s[:i])
			end := strings.Index(lower[i:], closeTag)
			if end == -1 {
				// Unterminated block, drop the rest.
				return b.String()
			}
			cut := i + end + len(closeTag)
			s = s[cut:]
			lower = lower[cut:]
		}
	}
}
