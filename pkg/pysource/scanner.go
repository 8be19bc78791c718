package pysource

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Operators ordered longest first for maximal munch.
var operators = []string{
	"**=", "//=", ">>=", "<<=", "...",
	"**", "//", ">>", "<<", "<=", ">=", "==", "!=", "->", ":=",
	"+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=", "@=",
}

// Scanner performs lexical analysis on Python source.
type Scanner struct {
	src    string
	cursor int
	line   int
	depth  int

	// lineHasContent is set once the current logical line holds a token so
	// that blank and comment-only lines do not emit Newline tokens.
	lineHasContent bool
}

// NewScanner creates a new scanner for the given source.
func NewScanner(src string) *Scanner {
	return &Scanner{src: src, line: 1}
}

// Tokenize scans the whole source and returns every token, ending with a
// single KindEOF token.
func Tokenize(src string) []Token {
	s := NewScanner(src)
	tokens := make([]Token, 0, len(src)/4+1)
	for {
		tok := s.Next()
		tokens = append(tokens, tok)
		if tok.Kind == KindEOF {
			return tokens
		}
	}
}

// Next returns the next token from the source.
func (s *Scanner) Next() Token {
	for {
		s.skipSpace()
		if s.cursor >= len(s.src) {
			if s.lineHasContent {
				s.lineHasContent = false
				return s.token(KindNewline, s.cursor, s.cursor)
			}
			return s.token(KindEOF, s.cursor, s.cursor)
		}

		ch := s.src[s.cursor]
		switch {
		case ch == '\n':
			start := s.cursor
			s.cursor++
			s.line++
			if s.depth == 0 && s.lineHasContent {
				s.lineHasContent = false
				tok := s.token(KindNewline, start, s.cursor)
				tok.Line = s.line - 1
				return tok
			}
			continue
		case ch == '\\' && s.peek(1) == '\n':
			s.cursor += 2
			s.line++
			continue
		case ch == '\\' && s.peek(1) == '\r' && s.peek(2) == '\n':
			s.cursor += 3
			s.line++
			continue
		case ch == '#':
			return s.scanComment()
		}

		s.lineHasContent = true

		if prefix, ok := s.stringPrefix(); ok {
			return s.scanString(prefix)
		}

		switch {
		case isDigit(ch) || (ch == '.' && isDigit(s.peek(1))):
			return s.scanNumber()
		case isNameStart(s.src, s.cursor):
			return s.scanName()
		default:
			return s.scanOp()
		}
	}
}

func (s *Scanner) token(kind Kind, start, end int) Token {
	return Token{
		Kind:  kind,
		Start: start,
		End:   end,
		Line:  s.line,
		Depth: s.depth,
		Text:  s.src[start:end],
	}
}

func (s *Scanner) peek(n int) byte {
	if s.cursor+n >= len(s.src) {
		return 0
	}
	return s.src[s.cursor+n]
}

func (s *Scanner) skipSpace() {
	for s.cursor < len(s.src) {
		switch s.src[s.cursor] {
		case ' ', '\t', '\r', '\f':
			s.cursor++
		default:
			return
		}
	}
}

func (s *Scanner) scanComment() Token {
	start := s.cursor
	for s.cursor < len(s.src) && s.src[s.cursor] != '\n' {
		s.cursor++
	}
	return s.token(KindComment, start, s.cursor)
}

// stringPrefix reports whether a string literal starts at the cursor and
// returns its prefix letters.
func (s *Scanner) stringPrefix() (string, bool) {
	n := 0
	for n < 2 && s.cursor+n < len(s.src) && isPrefixLetter(s.src[s.cursor+n]) {
		n++
	}
	for ; n >= 0; n-- {
		if s.cursor+n >= len(s.src) {
			continue
		}
		if q := s.src[s.cursor+n]; q == '\'' || q == '"' {
			prefix := s.src[s.cursor : s.cursor+n]
			if validPrefix(prefix) {
				return prefix, true
			}
		}
	}
	return "", false
}

func (s *Scanner) scanString(prefix string) Token {
	start := s.cursor
	startLine := s.line
	s.cursor += len(prefix)

	q := s.src[s.cursor]
	quote := string(q)
	if s.peek(1) == q && s.peek(2) == q {
		quote = strings.Repeat(quote, 3)
	}
	s.cursor += len(quote)
	contentStart := s.cursor

	tok := Token{
		Kind:         KindString,
		Start:        start,
		Line:         startLine,
		Depth:        s.depth,
		Prefix:       prefix,
		Quote:        quote,
		ContentStart: contentStart,
	}

	for s.cursor < len(s.src) {
		ch := s.src[s.cursor]
		switch {
		case ch == '\\':
			// A backslash always consumes the next byte, even in raw strings,
			// so an escaped quote never closes the literal.
			if s.peek(1) == '\n' {
				s.line++
			}
			s.cursor += 2
			continue
		case ch == '\n':
			if len(quote) == 1 {
				return s.finishString(tok, s.cursor, s.cursor, false)
			}
			s.line++
		case strings.HasPrefix(s.src[s.cursor:], quote):
			end := s.cursor
			s.cursor += len(quote)
			return s.finishString(tok, end, s.cursor, true)
		}
		s.cursor++
	}

	s.cursor = len(s.src)
	return s.finishString(tok, len(s.src), len(s.src), false)
}

func (s *Scanner) finishString(tok Token, contentEnd, end int, terminated bool) Token {
	if contentEnd > len(s.src) {
		contentEnd = len(s.src)
	}
	tok.ContentEnd = contentEnd
	tok.End = end
	tok.Text = s.src[tok.Start:end]
	tok.Terminated = terminated
	return tok
}

func (s *Scanner) scanNumber() Token {
	start := s.cursor
	for s.cursor < len(s.src) {
		ch := s.src[s.cursor]
		switch {
		case isDigit(ch) || isASCIILetter(ch) || ch == '_' || ch == '.':
			s.cursor++
		case (ch == '+' || ch == '-') && (s.src[s.cursor-1] == 'e' || s.src[s.cursor-1] == 'E') &&
			!strings.HasPrefix(strings.ToLower(s.src[start:s.cursor]), "0x"):
			s.cursor++
		default:
			return s.token(KindNumber, start, s.cursor)
		}
	}
	return s.token(KindNumber, start, s.cursor)
}

func (s *Scanner) scanName() Token {
	start := s.cursor
	for s.cursor < len(s.src) {
		r, size := utf8.DecodeRuneInString(s.src[s.cursor:])
		if r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			break
		}
		s.cursor += size
	}
	return s.token(KindName, start, s.cursor)
}

func (s *Scanner) scanOp() Token {
	start := s.cursor
	rest := s.src[s.cursor:]
	for _, op := range operators {
		if strings.HasPrefix(rest, op) {
			s.cursor += len(op)
			return s.token(KindOp, start, s.cursor)
		}
	}

	_, size := utf8.DecodeRuneInString(rest)
	tok := s.token(KindOp, start, start+size)
	switch rest[0] {
	case '(', '[', '{':
		s.depth++
	case ')', ']', '}':
		if s.depth > 0 {
			s.depth--
		}
	}
	s.cursor += size
	return tok
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isASCIILetter(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isNameStart(src string, pos int) bool {
	r, _ := utf8.DecodeRuneInString(src[pos:])
	return r == '_' || unicode.IsLetter(r)
}

func isPrefixLetter(ch byte) bool {
	switch ch {
	case 'r', 'R', 'u', 'U', 'f', 'F', 'b', 'B':
		return true
	}
	return false
}

func validPrefix(prefix string) bool {
	switch strings.ToLower(prefix) {
	case "", "r", "u", "f", "b", "br", "rb", "fr", "rf":
		return true
	}
	return false
}
