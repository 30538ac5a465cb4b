package render

import (
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

type Heading struct {
	ID    string `json:"id"`
	Text  string `json:"text"`
	Level int    `json:"level"`
}

var tocLevels = map[atom.Atom]int{
	atom.H1: 1,
	atom.H2: 2,
	atom.H3: 3,
}

// HeadingID is the anchor used for a heading without an id: its text lowercased, with
// runs of whitespace replaced by a hyphen.
func HeadingID(text string) string {
	return strings.ToLower(strings.Join(strings.Fields(text), "-"))
}

func getAttr(n *html.Node, key string) (string, bool) {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val, true
		}
	}
	return "", false
}

func setAttr(n *html.Node, key, val string) {
	for i := range n.Attr {
		if n.Attr[i].Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// tableOfContents collects the h1 to h3 headings of the tree in document order and gives
// every one of them an id. Repeated ids get a numeric suffix.
func tableOfContents(root *html.Node) []Heading {
	toc := make([]Heading, 0)
	seen := make(map[string]int)

	walk(root, func(n *html.Node) {
		level, ok := tocLevels[n.DataAtom]
		if n.Type != html.ElementNode || !ok {
			return
		}

		text := strings.TrimSpace(textContent(n))
		id, ok := getAttr(n, "id")
		if !ok || id == "" {
			id = HeadingID(text)
			if id == "" {
				return
			}
			if count := seen[id]; count > 0 {
				id += "-" + strconv.Itoa(count+1)
			}
			setAttr(n, "id", id)
		}
		seen[id]++

		toc = append(toc, Heading{ID: id, Text: text, Level: level})
	})
	return toc
}

// TableOfContents returns content with ids on its headings and the headings themselves.
func TableOfContents(content string) (string, []Heading, error) {
	nodes, err := parseFragment(content)
	if err != nil {
		return "", nil, err
	}
	root := wrap(nodes)
	toc := tableOfContents(root)

	out, err := renderChildren(root)
	if err != nil {
		return "", nil, err
	}
	return out, toc, nil
}
