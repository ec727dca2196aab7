package audit

import (
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/net/html"

	"github.com/glimmerlabs/glimmer/internal/media"
)

const sampleLimit = 3

// checkAltText verifies every img element carries non-empty alt text.
func checkAltText(doc *html.Node) error {
	var offenders []string
	for _, n := range collectElements(doc, "img") {
		if strings.TrimSpace(attrValue(n, "alt")) == "" {
			offenders = append(offenders, describeNode(n))
		}
	}
	if len(offenders) > 0 {
		return fmt.Errorf("%d img element(s) missing alt text: %s", len(offenders), sample(offenders))
	}
	return nil
}

// checkDeferredLoading verifies every img declares a loading strategy and
// every video declares a preload strategy.
func checkDeferredLoading(doc *html.Node) error {
	var offenders []string
	for _, n := range collectElements(doc, "img") {
		if attrValue(n, "loading") == "" {
			offenders = append(offenders, describeNode(n))
		}
	}
	for _, n := range collectElements(doc, "video") {
		if attrValue(n, "preload") == "" {
			offenders = append(offenders, describeNode(n))
		}
	}
	if len(offenders) > 0 {
		return fmt.Errorf("%d media element(s) without a loading strategy: %s", len(offenders), sample(offenders))
	}
	return nil
}

// checkAnalyticsTokens verifies every delivery URL in the document carries
// the _a analytics parameter. URLs outside the configured cloud are ignored.
func checkAnalyticsTokens(doc *html.Node, cloud media.Cloud) error {
	base := strings.TrimSuffix(cloud.BaseURL, "/")
	if base == "" {
		return nil
	}

	var offenders []string
	flag := func(raw string) {
		if raw == "" || !strings.HasPrefix(raw, base) {
			return
		}
		parsed, err := url.Parse(raw)
		if err != nil || parsed.Query().Get("_a") == "" {
			offenders = append(offenders, raw)
		}
	}

	for _, tag := range []string{"img", "video", "source"} {
		for _, n := range collectElements(doc, tag) {
			flag(attrValue(n, "src"))
			if tag == "video" {
				flag(attrValue(n, "poster"))
			}
		}
	}

	if len(offenders) > 0 {
		return fmt.Errorf("%d delivery URL(s) without analytics token: %s", len(offenders), sample(offenders))
	}
	return nil
}

func collectElements(doc *html.Node, tag string) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == tag {
			out = append(out, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return out
}

func attrValue(n *html.Node, name string) string {
	for _, attr := range n.Attr {
		if attr.Key == name {
			return attr.Val
		}
	}
	return ""
}

func describeNode(n *html.Node) string {
	if src := attrValue(n, "src"); src != "" {
		return fmt.Sprintf("%s[src=%s]", n.Data, src)
	}
	if class := attrValue(n, "class"); class != "" {
		return n.Data + "." + strings.Fields(class)[0]
	}
	return n.Data
}

func sample(offenders []string) string {
	if len(offenders) > sampleLimit {
		return strings.Join(offenders[:sampleLimit], ", ") + ", ..."
	}
	return strings.Join(offenders, ", ")
}
