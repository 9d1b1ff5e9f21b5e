package util

import (
	"fmt"
	"strings"
)

// GetLineAndColumn converts a byte offset into 1-based line and column.
func GetLineAndColumn(src string, pos int) (line int, column int) {
	line = 1
	column = 1
	for i, char := range src {
		if i == pos {
			break
		}
		if char == '\n' {
			line++
			column = 1
		} else {
			column++
		}
	}
	return
}

// GetContextLines renders the error line with up to two preceding lines and
// a caret under the error column.
func GetContextLines(src string, errorLine, errorCol int) string {
	lines := strings.Split(src, "\n")
	if errorLine < 1 || errorLine > len(lines) {
		return ""
	}

	var out strings.Builder
	start := errorLine - 2
	if start < 1 {
		start = 1
	}

	for i := start; i <= errorLine; i++ {
		content := lines[i-1]
		if i != errorLine {
			out.WriteString(fmt.Sprintf("     %3d | %s\n", i, content))
			continue
		}
		margin := fmt.Sprintf("  >  %3d | ", i)
		out.WriteString(margin + content + "\n")
		caretCol := errorCol - 1
		if caretCol > len(content) {
			caretCol = len(content)
		}
		out.WriteString(blankOut(margin+content[:caretCol]) + "^ unexpected here")
	}

	return out.String()
}

// blankOut replaces visible characters with spaces, keeping tabs so the
// caret lines up under tabulated source.
func blankOut(s string) string {
	var buf strings.Builder
	for _, c := range s {
		if c == '\t' {
			buf.WriteRune('\t')
		} else {
			buf.WriteRune(' ')
		}
	}
	return buf.String()
}
