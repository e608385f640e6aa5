package refs

import (
	"sort"
	"strings"
)

// span is a byte range [start, end] of the original text.
type span struct {
	start, end int
}

// literals holds the string literal spans of a text, in order.
type literals []span

// contains reports whether offset lies inside a string literal.
func (l literals) contains(offset int) bool {
	i := sort.Search(len(l), func(i int) bool { return l[i].end >= offset })
	return i < len(l) && l[i].start <= offset
}

// regexKeywords may directly precede a regular expression literal.
var regexKeywords = map[string]bool{
	"return": true, "typeof": true, "case": true, "do": true, "else": true,
	"in": true, "of": true, "void": true, "yield": true, "await": true,
	"delete": true, "throw": true, "new": true, "instanceof": true,
}

// scan prepares text for the reference patterns. Comments, template literal
// bodies and regular expression bodies are blanked. String literals are kept,
// since specifiers live in them, and their spans are returned so matches
// starting inside one can be dropped. Every blanked byte becomes a space
// except newlines, which keeps offsets and line numbers aligned with the
// original text.
//
// This is a lexical pass, not a parser. Regex literals are told apart from
// division by the token before the slash, and ${} expressions inside
// templates are blanked with the rest of the template. An unterminated
// template blanks everything up to the end of the file.
func scan(text string) (string, literals) {
	const (
		code = iota
		lineComment
		blockComment
		singleQuote
		doubleQuote
		template
		regex
	)

	out := []byte(text)
	var spans literals
	state := code
	// prev is the offset of the last significant byte in code, or -1.
	prev := -1
	inClass := false
	for i := 0; i < len(out); i++ {
		c := out[i]
		switch state {
		case code:
			switch {
			case c == '/' && i+1 < len(out) && out[i+1] == '/':
				state = lineComment
				out[i], out[i+1] = ' ', ' '
				i++
			case c == '/' && i+1 < len(out) && out[i+1] == '*':
				state = blockComment
				out[i], out[i+1] = ' ', ' '
				i++
			case c == '/' && regexAllowed(out, prev):
				state = regex
				inClass = false
				prev = i
			case c == '\'':
				state = singleQuote
				spans = append(spans, span{start: i, end: len(out) - 1})
			case c == '"':
				state = doubleQuote
				spans = append(spans, span{start: i, end: len(out) - 1})
			case c == '`':
				state = template
				prev = i
			case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			default:
				prev = i
			}
		case lineComment:
			if c == '\n' {
				state = code
				continue
			}
			out[i] = ' '
		case blockComment:
			if c == '*' && i+1 < len(out) && out[i+1] == '/' {
				out[i], out[i+1] = ' ', ' '
				i++
				state = code
				continue
			}
			if c != '\n' {
				out[i] = ' '
			}
		case singleQuote, doubleQuote:
			quote := byte('\'')
			if state == doubleQuote {
				quote = '"'
			}
			switch c {
			case '\\':
				i++
			case quote, '\n':
				// an unterminated literal ends at the line break
				state = code
				spans[len(spans)-1].end = i
				prev = i
			}
		case template:
			switch c {
			case '\\':
				out[i] = ' '
				if i+1 < len(out) && out[i+1] != '\n' {
					out[i+1] = ' '
				}
				i++
			case '`':
				state = code
				prev = i
			case '\n':
			default:
				out[i] = ' '
			}
		case regex:
			switch {
			case c == '\n':
				state = code
			case c == '\\':
				out[i] = ' '
				if i+1 < len(out) && out[i+1] != '\n' {
					out[i+1] = ' '
				}
				i++
			case c == '[':
				inClass = true
				out[i] = ' '
			case c == ']':
				inClass = false
				out[i] = ' '
			case c == '/' && !inClass:
				state = code
				prev = i
			default:
				out[i] = ' '
			}
		}
	}
	return string(out), spans
}

// regexAllowed reports whether a slash following the byte at prev starts a
// regular expression literal rather than a division.
func regexAllowed(out []byte, prev int) bool {
	if prev < 0 {
		return true
	}
	c := out[prev]
	if isIdentByte(c) {
		start := prev
		for start > 0 && isIdentByte(out[start-1]) {
			start--
		}
		return regexKeywords[string(out[start:prev+1])]
	}
	return strings.IndexByte("(,=:[!&|?{};}+-*%<>~^", c) >= 0
}

func isIdentByte(c byte) bool {
	return c == '_' || c == '$' ||
		c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}
