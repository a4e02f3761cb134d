package render

import "strings"

// Styler decorates code segments for terminal output. Nil funcs fall back
// to PlainStyler.
type Styler struct {
	InlineCode func(string) string
	CodeBlock  func(string) string
}

// PlainStyler renders without colors: inline code keeps its backticks and
// blocks are indented by four spaces.
var PlainStyler = Styler{
	InlineCode: func(s string) string { return "`" + s + "`" },
	CodeBlock: func(s string) string {
		lines := strings.Split(s, "\n")
		for i, l := range lines {
			lines[i] = "    " + l
		}
		return strings.Join(lines, "\n")
	},
}

// Terminal renders segments as terminal text. Code blocks always start and
// end on their own line.
func Terminal(segs []Segment, st Styler) string {
	if st.InlineCode == nil {
		st.InlineCode = PlainStyler.InlineCode
	}
	if st.CodeBlock == nil {
		st.CodeBlock = PlainStyler.CodeBlock
	}

	var sb strings.Builder
	for _, seg := range segs {
		switch seg.Kind {
		case Text:
			sb.WriteString(seg.Text)
		case InlineCode:
			for i, line := range strings.Split(seg.Text, "\n") {
				if i > 0 {
					sb.WriteString("\n")
				}
				sb.WriteString(st.InlineCode(line))
			}
		case LineBreak:
			sb.WriteString("\n")
		case CodeBlock:
			if sb.Len() > 0 && !strings.HasSuffix(sb.String(), "\n") {
				sb.WriteString("\n")
			}
			sb.WriteString(st.CodeBlock(seg.Text))
			sb.WriteString("\n")
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}
