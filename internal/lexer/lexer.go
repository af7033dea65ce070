// Package lexer turns raw source text into a flat token sequence. It is
// language-aware only at the level of comment and literal delimiters,
// which come from the language profile. Tokenization never fails:
// malformed input degrades to Error tokens and every byte of the input is
// covered by exactly one token.
package lexer

import (
	"bytes"
	"unicode"
	"unicode/utf8"

	"github.com/declscan/declscan/internal/lang"
)

// Lexer produces tokens lazily over a single input. It is not safe for
// concurrent use; create a new Lexer to restart.
type Lexer struct {
	src     []byte
	profile *lang.Profile
	pos     int
	line    int
}

// New creates a lexer over src using the delimiters from profile.
func New(src []byte, profile *lang.Profile) *Lexer {
	return &Lexer{src: src, profile: profile, line: 1}
}

// Scan runs a fresh lexer to completion and returns all tokens.
func Scan(src []byte, profile *lang.Profile) []Token {
	lx := New(src, profile)
	var tokens []Token
	for {
		tok, ok := lx.Next()
		if !ok {
			return tokens
		}
		tokens = append(tokens, tok)
	}
}

// Next returns the next token. It reports false once the input is
// exhausted.
func (l *Lexer) Next() (Token, bool) {
	if l.pos >= len(l.src) {
		return Token{}, false
	}

	start := l.pos
	startLine := l.line
	c := l.src[l.pos]

	switch {
	case isSpace(c):
		l.consumeSpace()
		return l.emit(KindWhitespace, start, startLine), true

	case l.hasPrefix(l.profile.LineComment):
		l.consumeLineComment()
		return l.emit(KindComment, start, startLine), true

	case l.hasPrefix(l.profile.BlockCommentStart):
		kind := l.consumeBlockComment()
		return l.emit(kind, start, startLine), true

	case rune(c) == l.profile.StringDelim:
		kind := l.consumeQuoted(l.profile.StringDelim, KindString)
		return l.emit(kind, start, startLine), true

	case l.profile.CharDelim != 0 && rune(c) == l.profile.CharDelim:
		kind := l.consumeQuoted(l.profile.CharDelim, KindChar)
		return l.emit(kind, start, startLine), true

	case isIdentStart(c):
		l.consumeIdent()
		word := string(l.src[start:l.pos])
		kind := KindIdent
		if l.profile.Keywords[word] {
			kind = KindKeyword
		}
		return l.emit(kind, start, startLine), true

	case c >= '0' && c <= '9':
		l.consumeNumber()
		return l.emit(KindNumber, start, startLine), true

	default:
		l.advanceRune()
		return l.emit(KindPunct, start, startLine), true
	}
}

func (l *Lexer) emit(kind Kind, start, startLine int) Token {
	return Token{Kind: kind, Start: start, End: l.pos, Line: startLine}
}

func (l *Lexer) hasPrefix(prefix string) bool {
	if prefix == "" {
		return false
	}
	return bytes.HasPrefix(l.src[l.pos:], []byte(prefix))
}

func (l *Lexer) consumeSpace() {
	for l.pos < len(l.src) && isSpace(l.src[l.pos]) {
		if l.src[l.pos] == '\n' {
			l.line++
		}
		l.pos++
	}
}

func (l *Lexer) consumeLineComment() {
	for l.pos < len(l.src) && l.src[l.pos] != '\n' {
		l.pos++
	}
}

// consumeBlockComment scans to the closing delimiter. An unterminated
// comment swallows the remainder of the input as a single Error token.
func (l *Lexer) consumeBlockComment() Kind {
	end := l.profile.BlockCommentEnd
	l.pos += len(l.profile.BlockCommentStart)
	idx := bytes.Index(l.src[l.pos:], []byte(end))
	if idx < 0 {
		l.countLines(l.pos, len(l.src))
		l.pos = len(l.src)
		return KindError
	}
	l.countLines(l.pos, l.pos+idx+len(end))
	l.pos += idx + len(end)
	return KindComment
}

// consumeQuoted scans a string or character literal, honoring backslash
// escapes. A newline before the closing delimiter ends the token at the
// line boundary as an Error so that lexing resumes on the next line;
// end-of-input produces an Error covering the remainder.
func (l *Lexer) consumeQuoted(delim rune, kind Kind) Kind {
	l.pos++ // opening delimiter
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case c == '\\' && l.pos+1 < len(l.src):
			// An escaped newline continues the literal onto the next line.
			if l.src[l.pos+1] == '\n' {
				l.line++
			}
			l.pos += 2
		case rune(c) == delim:
			l.pos++
			return kind
		case c == '\n':
			return KindError
		default:
			l.pos++
		}
	}
	return KindError
}

func (l *Lexer) consumeIdent() {
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		if isIdentStart(c) || (c >= '0' && c <= '9') {
			l.pos++
			continue
		}
		if c >= utf8.RuneSelf {
			r, size := utf8.DecodeRune(l.src[l.pos:])
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				l.pos += size
				continue
			}
		}
		return
	}
}

// consumeNumber accepts a permissive numeric shape: digits, letters (hex
// digits and suffixes), underscores, and dots. Precision is not required
// here; the scanner only needs literal boundaries.
func (l *Lexer) consumeNumber() {
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		if c == '.' || c == '_' || isIdentStart(c) || (c >= '0' && c <= '9') {
			l.pos++
			continue
		}
		return
	}
}

func (l *Lexer) advanceRune() {
	if l.src[l.pos] < utf8.RuneSelf {
		l.pos++
		return
	}
	_, size := utf8.DecodeRune(l.src[l.pos:])
	l.pos += size
}

func (l *Lexer) countLines(from, to int) {
	for i := from; i < to && i < len(l.src); i++ {
		if l.src[i] == '\n' {
			l.line++
		}
	}
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\v' || c == '\f'
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c >= utf8.RuneSelf
}
