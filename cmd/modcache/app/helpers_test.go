package app

import (
	"regexp"
	"strings"
	"testing"
)

var shaPattern = regexp.MustCompile(`\b[0-9a-f]{40}\b`)

// shaOnLine returns the commit hash printed on the table row mentioning text
func shaOnLine(t *testing.T, table, text string) string {
	t.Helper()

	for line := range strings.SplitSeq(table, "\n") {
		if strings.Contains(line, text) {
			if sha := shaPattern.FindString(line); sha != "" {
				return sha
			}
		}
	}
	t.Fatalf("no commit found for %q in:\n%s", text, table)
	return ""
}
