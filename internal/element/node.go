package element

import (
	"context"
	"strings"
	"sync"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/glimmerlabs/glimmer/internal/media"
	glimmererrors "github.com/glimmerlabs/glimmer/pkg/errors"
)

// NodeOptions configures a parsed-document element.
type NodeOptions struct {
	// Context bounds resource probes triggered by source assignments.
	Context context.Context

	// Loader, when set, retrieves assigned sources so the node can fire
	// its load event the way a browser would. Without it the node never
	// fires loads on its own; callers drive FireLoad directly.
	Loader Loader
}

// Node adapts a parsed HTML element node to the Element interface. All
// attribute mutations write through to the underlying document tree.
type Node struct {
	Emitter

	mu     sync.Mutex
	node   *html.Node
	ctx    context.Context
	loader Loader
}

var _ VideoElement = (*Node)(nil)

// NewNode wraps n. The node must be an element node.
func NewNode(n *html.Node, opts NodeOptions) (*Node, error) {
	if n == nil {
		return nil, glimmererrors.NewTargetError("html node is nil", nil)
	}
	if n.Type != html.ElementNode {
		return nil, glimmererrors.NewTargetError("html node is not an element", nil)
	}

	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	return &Node{node: n, ctx: ctx, loader: opts.Loader}, nil
}

// Tag returns the lower-case tag name.
func (n *Node) Tag() string {
	return strings.ToLower(n.node.Data)
}

// Source returns the src attribute.
func (n *Node) Source() string {
	src, _ := n.Attr("src")
	return src
}

// SetSource assigns src and, when a loader is attached, schedules the
// resource fetch that ends in a load event.
func (n *Node) SetSource(url string) {
	n.writeAttr("src", url)
	n.scheduleLoad(url)
}

// Attr reads an attribute from the underlying node.
func (n *Node) Attr(name string) (string, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, attr := range n.node.Attr {
		if attr.Key == name {
			return attr.Val, true
		}
	}
	return "", false
}

// SetAttr writes an attribute on the underlying node. Assigning src this way
// behaves like SetSource: the resource is fetched and a load event follows.
func (n *Node) SetAttr(name, value string) {
	n.writeAttr(name, value)
	if name == "src" {
		n.scheduleLoad(value)
	}
}

// SetPoster assigns the poster attribute.
func (n *Node) SetPoster(url string) {
	n.writeAttr("poster", url)
}

// ReplaceSources drops the node's <source> children and appends one child
// per candidate, preserving order.
func (n *Node) ReplaceSources(sources []media.VideoSource) {
	n.mu.Lock()
	defer n.mu.Unlock()

	child := n.node.FirstChild
	for child != nil {
		next := child.NextSibling
		if child.Type == html.ElementNode && strings.EqualFold(child.Data, "source") {
			n.node.RemoveChild(child)
		}
		child = next
	}

	for _, src := range sources {
		attrs := []html.Attribute{{Key: "src", Val: src.URL}}
		if src.MIMEType != "" {
			attrs = append(attrs, html.Attribute{Key: "type", Val: src.MIMEType})
		}
		n.node.AppendChild(&html.Node{
			Type:     html.ElementNode,
			DataAtom: atom.Source,
			Data:     "source",
			Attr:     attrs,
		})
	}
}

// Unwrap exposes the underlying document node for serialization.
func (n *Node) Unwrap() *html.Node {
	return n.node
}

func (n *Node) writeAttr(name, value string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for i, attr := range n.node.Attr {
		if attr.Key == name {
			n.node.Attr[i].Val = value
			return
		}
	}
	n.node.Attr = append(n.node.Attr, html.Attribute{Key: name, Val: value})
}

func (n *Node) scheduleLoad(url string) {
	if n.loader == nil || url == "" {
		return
	}
	go func() {
		load, err := n.loader.Probe(n.ctx, url)
		if err != nil {
			return
		}
		// A later assignment supersedes this fetch, as it would in a
		// browser.
		if n.Source() != url {
			return
		}
		n.FireLoad(load)
	}()
}
