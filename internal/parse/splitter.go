package parse

import (
	"regexp"
	"strings"
)

// amountTokenRe matches an amount-like token: a number optionally followed by
// a magnitude suffix or currency marker.
var amountTokenRe = regexp.MustCompile(`(?i)\b\d[\d,]*(?:\.\d+)?\s*(?:cr|k|m|l|pkr|rs)?\b`)

// andRe locates the word "and" as a potential candidate boundary.
var andRe = regexp.MustCompile(`(?i)\s+and\s+`)

// HasAmountToken reports whether the text contains an amount-like token.
func HasAmountToken(text string) bool {
	return amountTokenRe.MatchString(text)
}

// FindAmountToken returns the first amount-like token in the text, or "".
func FindAmountToken(text string) string {
	return strings.TrimSpace(amountTokenRe.FindString(text))
}

// SplitCandidates segments a message into per-expense fragments. Commas and
// semicolons separate candidates; "and" separates them only when both sides
// carry an amount-like token. Fragments without an amount merge into their
// neighbor so "iced coffee, large" stays one candidate. Always returns at
// least one fragment.
func SplitCandidates(text string) []string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return []string{text}
	}

	var pieces []string
	for _, piece := range splitDelimiters(trimmed) {
		pieces = append(pieces, splitOnAnd(piece)...)
	}

	fragments := mergeAmountless(pieces)
	if len(fragments) == 0 {
		return []string{trimmed}
	}
	return fragments
}

// splitDelimiters breaks on commas and semicolons, dropping empty pieces.
func splitDelimiters(text string) []string {
	raw := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == ';'
	})
	pieces := make([]string, 0, len(raw))
	for _, p := range raw {
		if p = strings.TrimSpace(p); p != "" {
			pieces = append(pieces, p)
		}
	}
	return pieces
}

// splitOnAnd cuts a piece at "and" boundaries where the text on both sides
// contains an amount-like token ("fuel 500 and hat 2k"), leaving phrases like
// "tea and biscuits 300" whole.
func splitOnAnd(piece string) []string {
	matches := andRe.FindAllStringIndex(piece, -1)
	if len(matches) == 0 {
		return []string{piece}
	}

	var segments []string
	last := 0
	for _, m := range matches {
		left := piece[last:m[0]]
		right := piece[m[1]:]
		if HasAmountToken(left) && HasAmountToken(right) {
			segments = append(segments, strings.TrimSpace(left))
			last = m[1]
		}
	}
	segments = append(segments, strings.TrimSpace(piece[last:]))
	return segments
}

// mergeAmountless folds fragments lacking an amount token into a neighbor:
// into the preceding fragment when one exists, otherwise onto the front of
// the next one.
func mergeAmountless(pieces []string) []string {
	var fragments []string
	var prefix []string

	for _, piece := range pieces {
		switch {
		case HasAmountToken(piece):
			if len(prefix) > 0 {
				piece = strings.Join(append(prefix, piece), ", ")
				prefix = nil
			}
			fragments = append(fragments, piece)
		case len(fragments) == 0:
			prefix = append(prefix, piece)
		default:
			fragments[len(fragments)-1] += ", " + piece
		}
	}

	if len(prefix) > 0 {
		joined := strings.Join(prefix, ", ")
		if len(fragments) > 0 {
			fragments[len(fragments)-1] += ", " + joined
		} else {
			fragments = append(fragments, joined)
		}
	}

	return fragments
}
