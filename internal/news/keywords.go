package news

import (
	"regexp"
	"strings"
)

var (
	ordinalPrefix  = regexp.MustCompile(`^\d+[.、][\s\p{Z}]*`)
	bracketChars   = regexp.MustCompile(`[【】《》「」『』（）()\[\]"“”]`)
	hashtagToken   = regexp.MustCompile(`[＃#][^\s\p{Z}]+`)
	trailingHotTag = regexp.MustCompile(`[\s\p{Z}]*热$`)
)

// Keywords turns a raw headline into the key used for similarity checks.
// Rank prefixes, brackets, quotes, hashtags and a trailing 热 are removed.
func Keywords(title string) string {
	if title == "" {
		return ""
	}
	s := ordinalPrefix.ReplaceAllString(title, "")
	s = bracketChars.ReplaceAllString(s, " ")
	s = hashtagToken.ReplaceAllString(s, "")
	// 热 counts only as the very last character, before any trimming.
	s = trailingHotTag.ReplaceAllString(s, "")
	return strings.Join(strings.Fields(s), " ")
}
