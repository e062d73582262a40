package session

import "strings"

var postpixPrefixes = [...]string{"SUMMARY:", "RESULT:", "REPORT:"}

// ExtractPostpixLines keeps only the first SUMMARY:, RESULT: and REPORT:
// lines of a worker reply when all three are present. Otherwise the whole
// reply is returned trimmed.
func ExtractPostpixLines(raw string) string {
	var found [len(postpixPrefixes)]string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		for i, prefix := range postpixPrefixes {
			if found[i] == "" && strings.HasPrefix(line, prefix) {
				found[i] = line
				break
			}
		}
	}
	for _, line := range found {
		if line == "" {
			return strings.TrimSpace(raw)
		}
	}
	return strings.Join(found[:], "\n")
}

// ExtractResultValue picks the value shown in a Working row: the first
// non-empty answer= value, else the first non-empty RESULT: value, else the
// whole output on one line.
func ExtractResultValue(raw string) string {
	lines := strings.Split(raw, "\n")
	for _, line := range lines {
		if _, after, ok := strings.Cut(strings.TrimSpace(line), "answer="); ok {
			if v := strings.TrimSpace(after); v != "" {
				return v
			}
		}
	}
	for _, line := range lines {
		if after, ok := strings.CutPrefix(strings.TrimSpace(line), "RESULT:"); ok {
			if v := strings.TrimSpace(after); v != "" {
				return v
			}
		}
	}
	return strings.ReplaceAll(strings.TrimSpace(raw), "\n", " / ")
}
