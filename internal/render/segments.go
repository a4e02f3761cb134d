// Package render turns transcript text into a structured view model and
// renders it for HTML and terminal output. It also wraps glamour for full
// markdown documents such as saved prompt bodies.
package render

import (
	"regexp"
	"strings"
)

// Kind classifies a transcript segment.
type Kind int

const (
	// Text is ordinary prose. It never contains a newline.
	Text Kind = iota
	// CodeBlock is the trimmed body of a ``` fenced block.
	CodeBlock
	// InlineCode is the body of a single-backtick span. It may hold
	// newlines; renderers break the line inside the span.
	InlineCode
	// LineBreak stands for a newline outside any code.
	LineBreak
)

func (k Kind) String() string {
	switch k {
	case Text:
		return "text"
	case CodeBlock:
		return "code_block"
	case InlineCode:
		return "inline_code"
	case LineBreak:
		return "line_break"
	default:
		return "unknown"
	}
}

// Segment is one node of a rendered message.
type Segment struct {
	Kind Kind
	Text string
}

var (
	fencePattern  = regexp.MustCompile("(?s)```(.*?)```")
	inlinePattern = regexp.MustCompile("`([^`]+)`")
)

// Parse splits message content into segments. Substitutions run in a fixed
// order: fenced blocks first, then inline code in the remaining text, then
// newlines in the remaining text. Text captured by an earlier pass is never
// revisited, so backticks inside a fenced block stay literal.
func Parse(content string) []Segment {
	var segs []Segment
	last := 0
	for _, loc := range fencePattern.FindAllStringSubmatchIndex(content, -1) {
		segs = appendInline(segs, content[last:loc[0]])
		segs = append(segs, Segment{Kind: CodeBlock, Text: strings.TrimSpace(content[loc[2]:loc[3]])})
		last = loc[1]
	}
	return appendInline(segs, content[last:])
}

func appendInline(segs []Segment, s string) []Segment {
	last := 0
	for _, loc := range inlinePattern.FindAllStringSubmatchIndex(s, -1) {
		segs = appendLines(segs, s[last:loc[0]])
		segs = append(segs, Segment{Kind: InlineCode, Text: s[loc[2]:loc[3]]})
		last = loc[1]
	}
	return appendLines(segs, s[last:])
}

func appendLines(segs []Segment, s string) []Segment {
	for i, line := range strings.Split(s, "\n") {
		if i > 0 {
			segs = append(segs, Segment{Kind: LineBreak})
		}
		if line != "" {
			segs = append(segs, Segment{Kind: Text, Text: line})
		}
	}
	return segs
}
