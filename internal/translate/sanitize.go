package translate

import (
	"regexp"
	"strings"
)

var (
	// (Note: ...) and [Note: ...] anywhere in the text.
	inlineNoteRe = regexp.MustCompile(`(?i)[(\[（]\s*(note|disclaimer|translator'?s? note)\s*[:：][^)\]）]*[)\]）]`)
	// A whole line that is a disclaimer.
	lineNoteRe = regexp.MustCompile(`(?i)^\s*\**(note|disclaimer|translation note)\**\s*[:：]`)
	// Preambles like "Translation:" or "Here is the translation:".
	preambleRe = regexp.MustCompile(`(?i)^\s*(here is the translation|translation|translated text)\s*[:：]\s*`)
	spacesRe   = regexp.MustCompile(`[ \t]{2,}`)
)

// SanitizeAIText removes machine-translation disclaimers and preambles that
// chat models add around a translation.
func SanitizeAIText(s string) string {
	s = inlineNoteRe.ReplaceAllString(s, "")

	var kept []string
	for _, line := range strings.Split(s, "\n") {
		if lineNoteRe.MatchString(line) {
			continue
		}
		line = preambleRe.ReplaceAllString(line, "")
		line = strings.TrimSpace(spacesRe.ReplaceAllString(line, " "))
		if line != "" {
			kept = append(kept, line)
		}
	}

	out := strings.Join(kept, "\n")
	return strings.Trim(out, `"“”`)
}
