package schedule

import "strings"

// The report parser needs two patterns: a clock time (\d{1,2}:\d{2}) and a
// maximal run of pmset day letters ([MTWRFSU]+). Both are leftmost-first
// scans over ASCII input.

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

// findTime returns the first substring of s shaped like H:MM or HH:MM.
// At each starting digit a two-digit hour is tried before a one-digit hour,
// so "123:45" yields "23:45".
func findTime(s string) (string, bool) {
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) {
			continue
		}
		for _, hourLen := range []int{2, 1} {
			if m, ok := matchTimeAt(s, i, hourLen); ok {
				return m, true
			}
		}
	}
	return "", false
}

func matchTimeAt(s string, i, hourLen int) (string, bool) {
	colon := i + hourLen
	end := colon + 3
	if end > len(s) {
		return "", false
	}
	for j := i; j < colon; j++ {
		if !isDigit(s[j]) {
			return "", false
		}
	}
	if s[colon] != ':' || !isDigit(s[colon+1]) || !isDigit(s[colon+2]) {
		return "", false
	}
	return s[i:end], true
}

// findDayRun returns the first maximal run of pmset day letters in s.
func findDayRun(s string) (string, bool) {
	start := strings.IndexFunc(s, isDayLetter)
	if start < 0 {
		return "", false
	}
	end := start
	for end < len(s) && isDayLetter(rune(s[end])) {
		end++
	}
	return s[start:end], true
}
