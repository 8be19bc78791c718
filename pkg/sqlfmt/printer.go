package sqlfmt

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// frame is one level of parenthesized nesting.
type frame struct {
	// query is set for frames holding a full query, whose clauses break lines.
	query bool

	// base is the indent level of clause heads in a query frame.
	base int

	// opener is the indent level of the line the opening paren was on.
	opener int

	clause  string
	inJoin  bool
	between bool
}

// printer renders a token stream with clause-per-line layout.
type printer struct {
	style  Style
	caser  cases.Caser
	recase bool
	tokens []token
	pos    int

	out         strings.Builder
	frames      []frame
	lineLevel   int
	atLineStart bool

	prev        token
	hasPrev     bool
	prevUnary   bool
	prevKeyword bool
}

func newPrinter(style Style, tokens []token) *printer {
	p := &printer{
		style:       style,
		tokens:      tokens,
		frames:      []frame{{query: true}},
		atLineStart: true,
	}
	switch style.KeywordCase {
	case KeywordCaseUpper:
		p.caser, p.recase = cases.Upper(language.Und), true
	case KeywordCaseLower:
		p.caser, p.recase = cases.Lower(language.Und), true
	}
	return p
}

func (p *printer) top() *frame {
	return &p.frames[len(p.frames)-1]
}

func (p *printer) String() string {
	return strings.TrimRight(p.out.String(), " \n")
}

func (p *printer) newline(level int) {
	p.out.WriteByte('\n')
	p.atLineStart = true
	p.lineLevel = level
}

func (p *printer) write(tok token, text string) {
	if p.atLineStart {
		p.out.WriteString(strings.Repeat(p.style.Indent, p.lineLevel))
		p.atLineStart = false
	} else if p.needSpace(tok) {
		p.out.WriteByte(' ')
	}
	p.out.WriteString(text)

	p.prevUnary = tok.kind == tokOperator && p.isUnary(tok)
	p.prevKeyword = tok.kind == tokWord && reserved[tok.lower()] && !p.afterDot()
	p.prev = tok
	p.hasPrev = true
}

func (p *printer) afterDot() bool {
	return p.hasPrev && p.prev.kind == tokDot
}

func (p *printer) needSpace(tok token) bool {
	if !p.hasPrev {
		return false
	}
	switch tok.kind {
	case tokComma, tokCloseParen, tokCloseBracket, tokSemicolon, tokDot, tokEscape:
		return false
	}
	switch p.prev.kind {
	case tokOpenParen, tokOpenBracket, tokDot, tokEscape:
		return false
	}
	if p.prevUnary || tok.text == "::" || p.prev.text == "::" {
		return false
	}
	switch tok.kind {
	case tokOpenParen:
		switch p.prev.kind {
		case tokWord:
			return p.prevKeyword && spacedBeforeParen[p.prev.lower()]
		case tokQuotedIdent, tokPlaceholder:
			return false
		}
	case tokOpenBracket:
		// Subscripts attach to their operand: a[0], map('k', 1)['k'].
		switch p.prev.kind {
		case tokOperator, tokComma:
			return true
		case tokWord:
			return p.prevKeyword
		}
		return false
	}
	return true
}

// isUnary reports whether a sign operator at the current position applies
// to the following operand only.
func (p *printer) isUnary(tok token) bool {
	if tok.text != "-" && tok.text != "+" && tok.text != "~" {
		return false
	}
	if !p.hasPrev {
		return true
	}
	switch p.prev.kind {
	case tokOperator, tokOpenParen, tokOpenBracket, tokComma:
		return true
	case tokWord:
		return p.prevKeyword
	}
	return false
}

func (p *printer) keyword(text string) string {
	if !p.recase {
		return text
	}
	return p.caser.String(text)
}

// peekWord returns the lowercase word n significant tokens ahead.
func (p *printer) peekWord(n int) string {
	for i := p.pos + 1; i < len(p.tokens); i++ {
		switch p.tokens[i].kind {
		case tokLineComment, tokBlockComment:
			continue
		}
		if n == 1 {
			return p.tokens[i].lower()
		}
		n--
	}
	return ""
}

func (p *printer) run() {
	for p.pos = 0; p.pos < len(p.tokens); p.pos++ {
		tok := p.tokens[p.pos]
		switch tok.kind {
		case tokWord:
			p.word(tok)
		case tokOpenParen, tokOpenBracket:
			p.openParen(tok)
		case tokCloseParen, tokCloseBracket:
			p.closeParen(tok)
		case tokComma:
			p.write(tok, tok.text)
			if f := p.top(); f.query {
				p.newline(f.base + 1)
			}
		case tokSemicolon:
			p.write(tok, tok.text)
			p.frames = []frame{{query: true}}
			if p.pos < len(p.tokens)-1 {
				p.out.WriteString(strings.Repeat("\n", p.style.LinesBetweenQueries))
				p.newline(0)
				p.hasPrev = false
			}
		case tokLineComment:
			p.write(tok, tok.text)
			p.newline(p.lineLevel)
		default:
			p.write(tok, tok.text)
		}
	}
}

func (p *printer) word(tok token) {
	w := tok.lower()
	f := p.top()

	if p.afterDot() || !reserved[w] {
		p.write(tok, tok.text)
		return
	}

	if f.query {
		if p.clause(tok, w) {
			return
		}
		if joinWords[w] && !f.inJoin && f.clause == "from" && p.startsJoin() {
			if !p.atLineStart {
				p.newline(f.base + 1)
			}
			f.inJoin = true
		}
		switch {
		case w == "between":
			f.between = true
		case (w == "and" || w == "or") && conditionClauses[f.clause]:
			if f.between && w == "and" {
				f.between = false
			} else if !p.atLineStart {
				p.newline(f.base + 1)
			}
		}
	}

	text := p.keyword(tok.text)
	p.write(tok, text)
	if w == "join" || w == "view" {
		p.top().inJoin = false
	}
}

// clause writes a clause head starting at the current token and reports
// whether one was found.
func (p *printer) clause(tok token, w string) bool {
	f := p.top()
	follow, ok := clauses[w]
	if !ok {
		return false
	}
	if clauseHeadRequires[w] && (p.pos+1 >= len(p.tokens) || !contains(follow, p.tokens[p.pos+1].lower())) {
		return false
	}
	if w == "set" && f.clause != "" && f.clause != "update" {
		return false
	}

	if !p.atLineStart {
		p.newline(f.base)
	} else {
		p.lineLevel = f.base
	}
	p.write(tok, p.keyword(tok.text))
	for p.pos+1 < len(p.tokens) && contains(follow, p.tokens[p.pos+1].lower()) {
		p.pos++
		next := p.tokens[p.pos]
		p.write(next, p.keyword(next.text))
	}

	f.clause = w
	f.inJoin = false
	f.between = false
	if setOperators[w] {
		p.newline(f.base)
	} else {
		p.newline(f.base + 1)
	}
	return true
}

// startsJoin reports whether the join-capable words at the current position
// end in JOIN, or form LATERAL VIEW.
func (p *printer) startsJoin() bool {
	if p.tokens[p.pos].lower() == "lateral" && p.peekWord(1) == "view" {
		return true
	}
	for n := 0; ; n++ {
		var w string
		if n == 0 {
			w = p.tokens[p.pos].lower()
		} else {
			w = p.peekWord(n)
		}
		if w == "join" {
			return true
		}
		if !joinWords[w] {
			return false
		}
	}
}

func (p *printer) openParen(tok token) {
	level := p.lineLevel
	w := p.peekWord(1)
	p.write(tok, tok.text)
	if tok.kind == tokOpenParen && (w == "select" || w == "with") {
		p.frames = append(p.frames, frame{query: true, base: level + 1, opener: level})
		p.newline(level + 1)
		return
	}
	p.frames = append(p.frames, frame{opener: level})
}

func (p *printer) closeParen(tok token) {
	if len(p.frames) == 1 {
		p.write(tok, tok.text)
		return
	}
	f := p.frames[len(p.frames)-1]
	p.frames = p.frames[:len(p.frames)-1]
	if f.query {
		if !p.atLineStart {
			p.newline(f.opener)
		} else {
			p.lineLevel = f.opener
		}
	}
	p.write(tok, tok.text)
}

func contains(words []string, w string) bool {
	if w == "" {
		return false
	}
	for _, candidate := range words {
		if candidate == w {
			return true
		}
	}
	return false
}
