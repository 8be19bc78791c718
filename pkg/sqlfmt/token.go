package sqlfmt

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// tokenKind classifies a lexical unit of a query.
type tokenKind uint8

const (
	tokWord tokenKind = iota
	tokString
	tokQuotedIdent
	tokNumber
	tokPlaceholder
	tokOperator
	tokOpenParen
	tokCloseParen
	tokOpenBracket
	tokCloseBracket
	tokComma
	tokDot
	tokSemicolon
	tokLineComment
	tokBlockComment

	// tokEscape is a host-language backslash escape outside any quoted run.
	// It is printed verbatim and never separated from its neighbours.
	tokEscape
)

type token struct {
	kind tokenKind
	text string
}

// lower returns the lowercase text of a word token, or "" for any other kind.
func (t token) lower() string {
	if t.kind != tokWord {
		return ""
	}
	return strings.ToLower(t.text)
}

var sqlOperators = []string{
	"<=>", "<>", "<=", ">=", "!=", "==", "||", "::", "->", "=>", "&&", "<<", ">>",
}

// tokenize splits a query into tokens, discarding whitespace. It never fails:
// unterminated strings and comments run to the end of input.
//
// Queries arrive as the source text of a Python literal, so backslash
// escapes are still in place. \' and \" delimit a string like a bare quote
// would, \n, \t, \r and a line continuation count as whitespace, and any
// other escape becomes a tokEscape.
func tokenize(src string) []token {
	var tokens []token
	pos := 0
	for pos < len(src) {
		ch := src[pos]
		switch {
		case ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r' || ch == '\f':
			pos++
			continue
		case ch == '-' && strings.HasPrefix(src[pos:], "--"):
			end := lineCommentEnd(src, pos)
			tokens = append(tokens, token{tokLineComment, strings.TrimRight(src[pos:end], " \t\r")})
			pos = end
		case ch == '/' && strings.HasPrefix(src[pos:], "/*"):
			end := indexFrom(src, pos+2, "*/")
			if end < len(src) {
				end += 2
			}
			tokens = append(tokens, token{tokBlockComment, src[pos:end]})
			pos = end
		case ch == '\'' || ch == '"':
			end := scanQuoted(src, pos, ch)
			tokens = append(tokens, token{tokString, src[pos:end]})
			pos = end
		case ch == '`':
			end := scanQuoted(src, pos, '`')
			tokens = append(tokens, token{tokQuotedIdent, src[pos:end]})
			pos = end
		case ch == '\\':
			if pos+1 < len(src) && isWhitespaceEscape(src[pos+1]) {
				pos += 2
				continue
			}
			kind := tokEscape
			if pos+1 < len(src) && (src[pos+1] == '\'' || src[pos+1] == '"') {
				kind = tokString
			}
			end := scanEscape(src, pos)
			tokens = append(tokens, token{kind, src[pos:end]})
			pos = end
		case ch == '{' || (ch == '$' && strings.HasPrefix(src[pos:], "${")):
			end := scanBraces(src, pos)
			tokens = append(tokens, token{tokPlaceholder, src[pos:end]})
			pos = end
		case ch == '%' && pos+1 < len(src) && isPercentParam(src[pos+1]):
			end := scanPercentParam(src, pos)
			tokens = append(tokens, token{tokPlaceholder, src[pos:end]})
			pos = end
		case ch == ':' && pos+1 < len(src) && isWordStart(src, pos+1):
			end := scanWord(src, pos+1)
			tokens = append(tokens, token{tokPlaceholder, src[pos:end]})
			pos = end
		case ch == '?':
			tokens = append(tokens, token{tokPlaceholder, "?"})
			pos++
		case isDigit(ch) || (ch == '.' && pos+1 < len(src) && isDigit(src[pos+1])):
			end := scanNumber(src, pos)
			tokens = append(tokens, token{tokNumber, src[pos:end]})
			pos = end
		case isWordStart(src, pos):
			end := scanWord(src, pos)
			tokens = append(tokens, token{tokWord, src[pos:end]})
			pos = end
		case ch == '(':
			tokens = append(tokens, token{tokOpenParen, "("})
			pos++
		case ch == ')':
			tokens = append(tokens, token{tokCloseParen, ")"})
			pos++
		case ch == '[':
			tokens = append(tokens, token{tokOpenBracket, "["})
			pos++
		case ch == ']':
			tokens = append(tokens, token{tokCloseBracket, "]"})
			pos++
		case ch == ',':
			tokens = append(tokens, token{tokComma, ","})
			pos++
		case ch == '.':
			tokens = append(tokens, token{tokDot, "."})
			pos++
		case ch == ';':
			tokens = append(tokens, token{tokSemicolon, ";"})
			pos++
		default:
			op := operatorAt(src, pos)
			tokens = append(tokens, token{tokOperator, op})
			pos += len(op)
		}
	}
	return tokens
}

func indexFrom(src string, from int, sub string) int {
	if idx := strings.Index(src[from:], sub); idx >= 0 {
		return from + idx
	}
	return len(src)
}

// scanQuoted returns the end of a quoted run starting at pos. A doubled
// delimiter or a backslash escape does not terminate it.
func scanQuoted(src string, pos int, quote byte) int {
	i := pos + 1
	for i < len(src) {
		switch src[i] {
		case '\\':
			i += 2
			continue
		case quote:
			if i+1 < len(src) && src[i+1] == quote {
				i += 2
				continue
			}
			return i + 1
		}
		i++
	}
	return len(src)
}

// lineCommentEnd returns the offset of the newline, real or escaped, that
// ends the comment starting at pos.
func lineCommentEnd(src string, pos int) int {
	for i := pos; i < len(src); i++ {
		switch src[i] {
		case '\n':
			return i
		case '\\':
			if i+1 < len(src) && src[i+1] == 'n' {
				return i
			}
			i++
		}
	}
	return len(src)
}

func isWhitespaceEscape(ch byte) bool {
	return ch == 'n' || ch == 't' || ch == 'r' || ch == '\n' || ch == '\r'
}

// scanEscape returns the end of the escape starting at the backslash at pos.
// An escaped quote opens a string that runs to the matching escaped quote;
// inside it an escaped backslash before an escaped quote, or a doubled
// escaped quote, does not terminate it.
func scanEscape(src string, pos int) int {
	if pos+1 >= len(src) {
		return len(src)
	}
	quote := src[pos+1]
	if quote != '\'' && quote != '"' {
		_, size := utf8.DecodeRuneInString(src[pos+1:])
		return pos + 1 + size
	}

	closing := `\` + string(quote)
	i := pos + 2
	for i < len(src) {
		switch {
		case strings.HasPrefix(src[i:], closing+closing):
			i += 4
		case strings.HasPrefix(src[i:], closing):
			return i + 2
		case strings.HasPrefix(src[i:], `\\`+closing):
			i += 4
		case src[i] == '\\':
			i += 2
		default:
			i++
		}
	}
	return len(src)
}

func scanBraces(src string, pos int) int {
	depth := 0
	for i := pos; i < len(src); i++ {
		switch src[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i + 1
			}
		}
	}
	return len(src)
}

func isPercentParam(ch byte) bool {
	return ch == 's' || ch == 'd' || ch == 'f' || ch == 'r' || ch == '('
}

func scanPercentParam(src string, pos int) int {
	if src[pos+1] != '(' {
		return pos + 2
	}
	end := indexFrom(src, pos, ")")
	if end+1 < len(src) {
		return end + 2
	}
	return len(src)
}

func scanNumber(src string, pos int) int {
	i := pos
	for i < len(src) {
		ch := src[i]
		switch {
		case isDigit(ch) || ch == '.' || ch == '_':
			i++
		case ch == 'e' || ch == 'E':
			i++
			if i < len(src) && (src[i] == '+' || src[i] == '-') {
				i++
			}
		case isLetter(ch):
			// Typed literal suffixes such as 10L or 1.5BD.
			i++
		default:
			return i
		}
	}
	return i
}

func scanWord(src string, pos int) int {
	i := pos
	for i < len(src) {
		r, size := utf8.DecodeRuneInString(src[i:])
		if r != '_' && r != '$' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			break
		}
		i += size
	}
	return i
}

func operatorAt(src string, pos int) string {
	for _, op := range sqlOperators {
		if strings.HasPrefix(src[pos:], op) {
			return op
		}
	}
	_, size := utf8.DecodeRuneInString(src[pos:])
	return src[pos : pos+size]
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isLetter(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isWordStart(src string, pos int) bool {
	r, _ := utf8.DecodeRuneInString(src[pos:])
	return r == '_' || unicode.IsLetter(r)
}
