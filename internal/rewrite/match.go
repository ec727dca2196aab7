package rewrite

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/glimmerlabs/glimmer/internal/config"
)

// target pairs a matched document node with the profile that claimed it.
type target struct {
	node    *html.Node
	profile config.Profile
}

func (t target) tag() string {
	return t.node.Data
}

func (t target) source() string {
	return attrValue(t.node, "src")
}

// describe names the target the way reports do: tag plus first class token.
func (t target) describe() string {
	if fields := strings.Fields(attrValue(t.node, "class")); len(fields) > 0 {
		return t.node.Data + "." + fields[0]
	}
	return t.node.Data
}

// collectTargets walks the document and claims every media element for the
// first profile whose matcher accepts it. Document order is preserved.
func collectTargets(doc *html.Node, profiles []config.Profile) []target {
	var out []target
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if profile, ok := matchProfile(n, profiles); ok {
				out = append(out, target{node: n, profile: profile})
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return out
}

func matchProfile(n *html.Node, profiles []config.Profile) (config.Profile, bool) {
	for _, profile := range profiles {
		if profile.Match.Tag != n.Data {
			continue
		}
		if profile.Match.Class != "" && !hasClassToken(n, profile.Match.Class) {
			continue
		}
		return profile, true
	}
	return config.Profile{}, false
}

func hasClassToken(n *html.Node, token string) bool {
	for _, field := range strings.Fields(attrValue(n, "class")) {
		if field == token {
			return true
		}
	}
	return false
}

func attrValue(n *html.Node, name string) string {
	for _, attr := range n.Attr {
		if attr.Key == name {
			return attr.Val
		}
	}
	return ""
}
