package diff

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/sergi/go-diff/diffmatchpatch"
)

const (
	maxLines        = 10000
	truncateMessage = "... (diff truncated, exceeds 10,000 lines) ..."
)

// Unified renders a unified diff between the original and enhanced documents.
// Returns an empty string when the documents are identical. Diffs beyond
// 10,000 lines are cut off with a truncation marker.
func Unified(original, enhanced []byte, originalLabel, enhancedLabel string) string {
	if bytes.Equal(original, enhanced) {
		return ""
	}

	dmp := diffmatchpatch.New()
	c1, c2, lineArray := dmp.DiffLinesToChars(string(original), string(enhanced))
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(c1, c2, false), lineArray)

	var buf bytes.Buffer
	timestamp := time.Now().Format("2006-01-02 15:04:05")
	fmt.Fprintf(&buf, "--- %s\t%s\n", originalLabel, timestamp)
	fmt.Fprintf(&buf, "+++ %s\t%s\n", enhancedLabel, timestamp)
	fmt.Fprintf(&buf, "@@ -1,%d +1,%d @@\n",
		strings.Count(string(original), "\n")+1,
		strings.Count(string(enhanced), "\n")+1)

	for _, d := range diffs {
		prefix := " "
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			prefix = "-"
		case diffmatchpatch.DiffInsert:
			prefix = "+"
		}
		for _, line := range splitLines(d.Text) {
			buf.WriteString(prefix)
			buf.WriteString(line)
			buf.WriteString("\n")
		}
	}

	result := buf.String()
	lines := strings.Split(result, "\n")
	if len(lines) > maxLines {
		return strings.Join(lines[:maxLines], "\n") + "\n" + truncateMessage + "\n"
	}
	return result
}

// splitLines drops the empty trailing element Split produces for text that
// ends in a newline.
func splitLines(text string) []string {
	lines := strings.Split(text, "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" && strings.HasSuffix(text, "\n") {
		lines = lines[:len(lines)-1]
	}
	return lines
}
