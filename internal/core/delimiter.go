package core

import "strings"

// delimiterCandidates is in priority order; earlier entries win ties.
var delimiterCandidates = []rune{',', ';', '\t'}

// DetectDelimiter picks the candidate that occurs most often in the header
// line. It defaults to a comma when no candidate occurs at all.
func DetectDelimiter(headerLine string) rune {
	best, bestCount := ',', 0
	for _, d := range delimiterCandidates {
		count := strings.Count(headerLine, string(d))
		if count > bestCount {
			best, bestCount = d, count
		}
	}
	return best
}

// FirstLine returns the text before the first line feed, without a trailing
// carriage return.
func FirstLine(text string) string {
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = text[:i]
	}
	return strings.TrimSuffix(text, "\r")
}
