package common

import "regexp"

// FirstSubmatch returns the first capture group of re in text, or "" when
// there is no match.
func FirstSubmatch(re *regexp.Regexp, text string) string {
	m := re.FindStringSubmatch(text)
	if len(m) < 2 {
		return ""
	}
	return m[1]
}
