package render

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Nodes builds the DOM fragment for a message body.
func Nodes(segs []Segment) []*html.Node {
	nodes := make([]*html.Node, 0, len(segs))
	for _, seg := range segs {
		switch seg.Kind {
		case Text:
			nodes = append(nodes, textNode(seg.Text))
		case CodeBlock:
			pre := element(atom.Pre)
			code := element(atom.Code)
			code.AppendChild(textNode(seg.Text))
			pre.AppendChild(code)
			nodes = append(nodes, pre)
		case InlineCode:
			code := element(atom.Code)
			for i, line := range strings.Split(seg.Text, "\n") {
				if i > 0 {
					code.AppendChild(element(atom.Br))
				}
				if line != "" {
					code.AppendChild(textNode(line))
				}
			}
			nodes = append(nodes, code)
		case LineBreak:
			nodes = append(nodes, element(atom.Br))
		}
	}
	return nodes
}

// HTML renders message content the way the web transcript shows it:
// <pre><code> for fenced blocks, <code> for inline spans and <br> for
// newlines. Text is escaped.
func HTML(content string) (string, error) {
	var sb strings.Builder
	for _, n := range Nodes(Parse(content)) {
		if err := html.Render(&sb, n); err != nil {
			return "", err
		}
	}
	return sb.String(), nil
}

// MessageHTML wraps a rendered message in the transcript markup:
// <div class="message message-{role}"><div class="message-content">...
func MessageHTML(role, content string) (string, error) {
	body, err := HTML(content)
	if err != nil {
		return "", err
	}
	return `<div class="message message-` + html.EscapeString(role) + `"><div class="message-content">` +
		body + `</div></div>`, nil
}

func element(a atom.Atom) *html.Node {
	return &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String()}
}

func textNode(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}
