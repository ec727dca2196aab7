package diff

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUnified_IdenticalContent(t *testing.T) {
	t.Parallel()

	doc := []byte("<html><body><img src=\"/a.jpg\"></body></html>\n")
	require.Empty(t, Unified(doc, doc, "original", "enhanced"))
}

func TestUnified_SingleLineChange(t *testing.T) {
	t.Parallel()

	original := []byte("<body>\n<img src=\"/a.jpg\">\n</body>\n")
	enhanced := []byte("<body>\n<img src=\"https://cdn.example.com/a.jpg\" loading=\"lazy\"/>\n</body>\n")

	result := Unified(original, enhanced, "original", "enhanced")

	require.Contains(t, result, "--- original")
	require.Contains(t, result, "+++ enhanced")
	require.Contains(t, result, `-<img src="/a.jpg">`)
	require.Contains(t, result, `+<img src="https://cdn.example.com/a.jpg" loading="lazy"/>`)
}

func TestUnified_KeepsContextLines(t *testing.T) {
	t.Parallel()

	original := []byte("<head>\n<title>x</title>\n</head>\n<body>\n<img src=\"/a.jpg\">\n</body>\n")
	enhanced := []byte("<head>\n<title>x</title>\n</head>\n<body>\n<img src=\"/b.jpg\">\n</body>\n")

	result := Unified(original, enhanced, "a.html", "b.html")

	require.Contains(t, result, " <head>")
	require.Contains(t, result, " <body>")
	require.Contains(t, result, "-<img src=\"/a.jpg\">")
	require.Contains(t, result, "+<img src=\"/b.jpg\">")
}

func TestUnified_EmptyOriginal(t *testing.T) {
	t.Parallel()

	result := Unified([]byte(""), []byte("<html></html>\n"), "original", "enhanced")

	require.NotEmpty(t, result)
	require.Contains(t, result, "+<html></html>")
}

func TestUnified_Labels(t *testing.T) {
	t.Parallel()

	result := Unified([]byte("old"), []byte("new"), "page.html", "page.enhanced.html")

	require.Contains(t, result, "--- page.html")
	require.Contains(t, result, "+++ page.enhanced.html")
}

func TestUnified_TruncatesLargeDiffs(t *testing.T) {
	t.Parallel()

	var originalLines, enhancedLines []string
	for i := 0; i < 11000; i++ {
		originalLines = append(originalLines, "<p>original</p>")
		if i%2 == 0 {
			enhancedLines = append(enhancedLines, "<p>enhanced</p>")
		} else {
			enhancedLines = append(enhancedLines, "<p>original</p>")
		}
	}

	result := Unified(
		[]byte(strings.Join(originalLines, "\n")),
		[]byte(strings.Join(enhancedLines, "\n")),
		"original", "enhanced",
	)

	require.Contains(t, result, "truncated")
	require.LessOrEqual(t, strings.Count(result, "\n"), maxLines+2)
}
