package extract

import (
	"strings"

	"golang.org/x/net/html"
)

type matcher func(*html.Node) bool

func tag(name string) matcher {
	return func(n *html.Node) bool {
		return n.Type == html.ElementNode && strings.EqualFold(n.Data, name)
	}
}

// tagClass matches an element by tag name and one of its class tokens. An
// empty name matches any element.
func tagClass(name, class string) matcher {
	return func(n *html.Node) bool {
		if n.Type != html.ElementNode {
			return false
		}
		if name != "" && !strings.EqualFold(n.Data, name) {
			return false
		}
		return hasClass(n, class)
	}
}

func tagID(name, id string) matcher {
	return func(n *html.Node) bool {
		if n.Type != html.ElementNode || !strings.EqualFold(n.Data, name) {
			return false
		}
		return attr(n, "id") == id
	}
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

// findFirst returns the first node in document order, n included, that
// satisfies m.
func findFirst(n *html.Node, m matcher) *html.Node {
	var res *html.Node
	var dfs func(*html.Node)
	dfs = func(cur *html.Node) {
		if res != nil {
			return
		}
		if m(cur) {
			res = cur
			return
		}
		for c := cur.FirstChild; c != nil; c = c.NextSibling {
			dfs(c)
			if res != nil {
				return
			}
		}
	}
	dfs(n)
	return res
}

// children returns the direct element children of n satisfying m.
func children(n *html.Node, m matcher) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if m(c) {
			out = append(out, c)
		}
	}
	return out
}

// textOf returns the text content of n with whitespace runs collapsed and
// script/style bodies skipped.
func textOf(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(cur *html.Node) {
		if cur.Type == html.ElementNode {
			switch strings.ToLower(cur.Data) {
			case "script", "style", "noscript":
				return
			}
		}
		if cur.Type == html.TextNode {
			b.WriteString(cur.Data)
			b.WriteByte(' ')
		}
		for c := cur.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return collapseSpaces(b.String())
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
