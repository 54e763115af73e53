package render

import (
	"bufio"
	"io"
	"strings"
)

// Text writes lines as plain text, indenting nested blocks. With color set,
// substituted characters and block markers are wrapped in ANSI escapes.
func Text(w io.Writer, lines []Line, theme *Theme, color bool) error {
	if theme == nil {
		theme = DefaultTheme()
	}
	bw := bufio.NewWriter(w)
	for _, line := range lines {
		bw.WriteString(strings.Repeat(" ", line.Depth*IndentWidth))
		if n := len(line.Tags); n > 0 {
			marker := string(BlockMarker)
			if color {
				marker = theme.ANSI(line.Tags[n-1], marker)
			}
			bw.WriteString(marker + " ")
		}
		for _, c := range line.Cells {
			if c.Tag != "" && color {
				bw.WriteString(theme.ANSI(c.Tag, c.Text))
				continue
			}
			bw.WriteString(c.Text)
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}
