// Package scanner turns Cave source bytes into a stream of tokens. The
// scanner is byte-oriented (Cave treats source as an opaque byte sequence,
// not Unicode text) and carries two pieces of state across calls to Scan
// that make string interpolation possible: strDepth, the number of ${…}
// contexts currently open, and inStr, set when a closing } should resume a
// string literal instead of starting a new token.
package scanner

import (
	"github.com/cave-lang/cave/lang/token"
)

// Tok is one scanned token: its kind, the literal source bytes that
// produced it (quotes included for strings), the line it started on, and
// — for ILLEGAL tokens — a human-readable message.
type Tok struct {
	Type    token.Token
	Lexeme  []byte
	Line    int
	Message string
}

// Scanner holds the byte-level scanning state for a single source buffer.
type Scanner struct {
	src     []byte
	start   int
	current int
	line    int

	strDepth int
	inStr    bool
}

// New returns a Scanner positioned at the start of src.
func New(src []byte) *Scanner {
	return &Scanner{src: src, line: 1}
}

func (s *Scanner) atEnd() bool { return s.current >= len(s.src) }

func (s *Scanner) advance() byte {
	c := s.src[s.current]
	s.current++
	return c
}

func (s *Scanner) peek() byte {
	if s.atEnd() {
		return 0
	}
	return s.src[s.current]
}

func (s *Scanner) peekNext() byte {
	if s.current+1 >= len(s.src) {
		return 0
	}
	return s.src[s.current+1]
}

func (s *Scanner) match(expected byte) bool {
	if s.atEnd() || s.src[s.current] != expected {
		return false
	}
	s.current++
	return true
}

func isAlpha(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_'
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func (s *Scanner) make(typ token.Token) Tok {
	return Tok{Type: typ, Lexeme: s.src[s.start:s.current], Line: s.line}
}

// makeInterpolate pads the lexeme by one byte, matching the original
// scanner's compensation for the opening quote the compiler strips when it
// resumes an interpolated string segment.
func (s *Scanner) makeInterpolate(typ token.Token) Tok {
	end := s.current + 1
	if end > len(s.src) {
		end = len(s.src)
	}
	return Tok{Type: typ, Lexeme: s.src[s.start:end], Line: s.line}
}

func (s *Scanner) errorTok(msg string) Tok {
	return Tok{Type: token.ILLEGAL, Line: s.line, Message: msg}
}

func (s *Scanner) skipWhitespace() {
	for {
		switch s.peek() {
		case ' ', '\r', '\t':
			s.advance()
		case '\n':
			s.line++
			s.advance()
		case '/':
			switch s.peekNext() {
			case '/':
				for s.peek() != '\n' && !s.atEnd() {
					s.advance()
				}
			case '*':
				for !s.atEnd() && !(s.peek() == '*' && s.peekNext() == '/') {
					if s.peek() == '\n' {
						s.line++
					}
					s.advance()
				}
				if !s.atEnd() {
					s.advance()
				}
				if !s.atEnd() {
					s.advance()
				}
			default:
				return
			}
		default:
			return
		}
	}
}

func (s *Scanner) identifier() Tok {
	for isAlpha(s.peek()) || isDigit(s.peek()) {
		s.advance()
	}
	lex := s.src[s.start:s.current]
	return Tok{Type: token.Lookup(string(lex)), Lexeme: lex, Line: s.line}
}

func (s *Scanner) number() Tok {
	for isDigit(s.peek()) {
		s.advance()
	}
	if s.peek() == '.' && isDigit(s.peekNext()) {
		s.advance()
		for isDigit(s.peek()) {
			s.advance()
		}
	}
	return s.make(token.NUMBER)
}

// string scans a string literal (or the resumed tail of one after a ${…}
// interpolation), stopping at a closing quote, end of input, or the start
// of a ${ interpolation.
func (s *Scanner) string() Tok {
	for s.peek() != '"' && !s.atEnd() && !(s.peek() == '$' && s.peekNext() == '{') {
		if s.peek() == '\n' {
			s.line++
		}
		s.advance()
	}

	s.inStr = false

	if s.peek() == '$' && s.peekNext() == '{' {
		s.strDepth++
		return s.makeInterpolate(token.STRING)
	}
	if s.atEnd() {
		return s.errorTok("Unterminated string")
	}
	s.advance() // closing quote
	return s.make(token.STRING)
}

// rightBrace closes either a block scope or, when strDepth > 0, an
// interpolation segment — in which case it may arm inStr so the next Scan
// call resumes the string instead of scanning a fresh token.
func (s *Scanner) rightBrace() Tok {
	if s.strDepth > 0 {
		s.strDepth--
		if !s.match('"') {
			s.inStr = true
		}
	}
	return s.make(token.RBRACE)
}

// Scan returns the next token in the stream, including a terminal EOF once
// the source is exhausted.
func (s *Scanner) Scan() Tok {
	if s.inStr {
		s.start = s.current - 1
		return s.string()
	}

	s.skipWhitespace()
	s.start = s.current

	if s.atEnd() {
		return s.make(token.EOF)
	}

	c := s.advance()
	if isAlpha(c) {
		return s.identifier()
	}
	if isDigit(c) {
		return s.number()
	}

	switch c {
	case '(':
		return s.make(token.LPAREN)
	case ')':
		return s.make(token.RPAREN)
	case '{':
		return s.make(token.LBRACE)
	case '}':
		return s.rightBrace()
	case '[':
		return s.make(token.LBRACK)
	case ']':
		return s.make(token.RBRACK)
	case ':':
		return s.make(token.COLON)
	case ';':
		return s.make(token.SEMI)
	case ',':
		return s.make(token.COMMA)
	case '.':
		return s.make(token.DOT)
	case '?':
		return s.make(token.QUESTION)
	case '!':
		if s.match('=') {
			return s.make(token.BANG_EQ)
		}
		return s.make(token.BANG)
	case '=':
		if s.match('=') {
			return s.make(token.EQ_EQ)
		}
		return s.make(token.EQ)
	case '<':
		if s.match('=') {
			return s.make(token.LE)
		}
		return s.make(token.LT)
	case '>':
		if s.match('=') {
			return s.make(token.GE)
		}
		return s.make(token.GT)
	case '+':
		if s.match('=') {
			return s.make(token.PLUS_EQ)
		}
		return s.make(token.PLUS)
	case '-':
		if s.match('=') {
			return s.make(token.MINUS_EQ)
		}
		return s.make(token.MINUS)
	case '/':
		if s.match('=') {
			return s.make(token.SLASH_EQ)
		}
		return s.make(token.SLASH)
	case '*':
		if s.match('=') {
			return s.make(token.STAR_EQ)
		}
		return s.make(token.STAR)
	case '%':
		if s.match('=') {
			return s.make(token.PERCENT_EQ)
		}
		return s.make(token.PERCENT)
	case '"':
		return s.string()
	case '$':
		if s.strDepth > 0 && s.match('{') {
			return s.make(token.DOLLAR_BRACE)
		}
	}

	return s.errorTok("Unexpected character")
}
