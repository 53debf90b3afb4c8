package validation

import (
	"path/filepath"
	"strings"
)

// =============================================================================
// SOURCE VIEWS
// =============================================================================

// source holds three aligned views of one file. Every view has the same
// number of lines and the same byte length per line, so a column found in
// one view is valid in the others.
//
//	raw  - the text as given
//	code - comments blanked to spaces
//	mask - comments and the contents of string/char literals blanked
type source struct {
	fileName string
	raw      []string
	code     []string
	mask     []string
	maskText string
	blocks   []*block
}

func newSource(fileName, text string) *source {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	code, mask := blankCommentsAndStrings(text, commentStyleFor(fileName))
	s := &source{
		fileName: fileName,
		raw:      strings.Split(text, "\n"),
		code:     strings.Split(code, "\n"),
		mask:     strings.Split(mask, "\n"),
		maskText: mask,
	}
	s.blocks = parseBlocks(mask)
	return s
}

// snippet returns the trimmed raw text of a 1-based line.
func (s *source) snippet(line int) string {
	if line < 1 || line > len(s.raw) {
		return ""
	}
	return strings.TrimSpace(s.raw[line-1])
}

type commentStyle struct {
	slashes bool // "//" and "/* */"
	hash    bool // "#"
}

func commentStyleFor(fileName string) commentStyle {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".py", ".rb", ".sh", ".bash", ".yaml", ".yml", ".pl", ".r", ".toml", ".properties":
		return commentStyle{hash: true}
	case ".php":
		return commentStyle{slashes: true, hash: true}
	default:
		return commentStyle{slashes: true}
	}
}

// blankCommentsAndStrings produces the code and mask views in one pass.
// Newlines are always preserved. Quote characters stay in the mask so that
// string boundaries remain visible; only literal contents are blanked.
// Unterminated double- and single-quoted literals end at the newline.
func blankCommentsAndStrings(text string, style commentStyle) (string, string) {
	code := []byte(text)
	mask := []byte(text)

	const (
		stNormal = iota
		stLineComment
		stBlockComment
		stString
		stTextBlock
	)
	state := stNormal
	var quote byte

	blank := func(buf []byte, i int) {
		if buf[i] != '\n' {
			buf[i] = ' '
		}
	}

	for i := 0; i < len(text); i++ {
		c := text[i]
		switch state {
		case stNormal:
			switch {
			case style.slashes && c == '/' && i+1 < len(text) && text[i+1] == '/':
				state = stLineComment
				blank(code, i)
				blank(mask, i)
			case style.slashes && c == '/' && i+1 < len(text) && text[i+1] == '*':
				state = stBlockComment
				blank(code, i)
				blank(mask, i)
				i++
				blank(code, i)
				blank(mask, i)
			case style.hash && c == '#':
				state = stLineComment
				blank(code, i)
				blank(mask, i)
			case c == '"' && strings.HasPrefix(text[i:], `"""`):
				state = stTextBlock
				i += 2
			case c == '"' || c == '\'' || c == '`':
				state = stString
				quote = c
			}
		case stLineComment:
			if c == '\n' {
				state = stNormal
				continue
			}
			blank(code, i)
			blank(mask, i)
		case stBlockComment:
			if c == '*' && i+1 < len(text) && text[i+1] == '/' {
				blank(code, i)
				blank(mask, i)
				i++
				blank(code, i)
				blank(mask, i)
				state = stNormal
				continue
			}
			blank(code, i)
			blank(mask, i)
		case stString:
			switch {
			case c == '\\' && quote != '`' && i+1 < len(text) && text[i+1] != '\n':
				blank(mask, i)
				i++
				blank(mask, i)
			case c == quote:
				state = stNormal
			case c == '\n' && quote != '`':
				state = stNormal
			default:
				blank(mask, i)
			}
		case stTextBlock:
			if strings.HasPrefix(text[i:], `"""`) {
				i += 2
				state = stNormal
				continue
			}
			blank(mask, i)
		}
	}
	return string(code), string(mask)
}
