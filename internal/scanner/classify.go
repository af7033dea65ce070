package scanner

import (
	"strings"

	"github.com/declscan/declscan/internal/lexer"
	"github.com/declscan/declscan/internal/model"
)

// tryFunction attempts to read a function candidate whose name is the
// identifier at index i (or the destructor tilde at i). It reports the
// index to resume at and whether a declaration was emitted.
//
// The shape is: [type tokens] name ( params ) [trailer] `{` body `}` | `;`
// Prototypes are only candidates at file and type scope; inside function
// bodies an identifier-paren-semicolon sequence is a call.
func (s *Scanner) tryFunction(i, hi int, sc scope) (int, bool) {
	nameIdx := i
	name := ""

	if s.toks[i].Kind == lexer.KindPunct { // destructor `~Name`
		if sc != scopeType {
			return i + 1, false
		}
		nameIdx = i + 1
		if nameIdx >= hi || s.toks[nameIdx].Kind != lexer.KindIdent {
			return i + 1, false
		}
		name = "~" + s.text(nameIdx)
	} else {
		name = s.text(i)
	}

	parenIdx := nameIdx + 1
	if parenIdx >= hi || s.toks[parenIdx].Kind != lexer.KindPunct || s.text(parenIdx) != "(" {
		return i + 1, false
	}

	declStart := s.toks[i].Start
	line := s.toks[i].Line
	if s.toks[i].Kind == lexer.KindIdent {
		start, ln, ok := s.precedingType(i, sc)
		if !ok {
			return i + 1, false
		}
		declStart, line = start, ln
	}

	closeParen, balanced := s.matchDelim(parenIdx, "(", ")", hi)
	decl := model.Declaration{
		Kind: model.KindFunction,
		Name: name,
		Line: line,
		Span: model.Span{Start: declStart},
	}

	if !balanced {
		// Open parameter list at end of input: force-close.
		decl.Span.End = s.regionEnd(hi)
		decl.Signature = trimText(s.src, s.toks[parenIdx].Start, s.regionEnd(hi))
		decl.Flags |= model.FlagTruncated
		s.decls = append(s.decls, decl)
		return hi, true
	}

	decl.Signature = string(s.src[s.toks[parenIdx].Start:s.toks[closeParen].End])

	// Trailer between the parameter list and the body or terminator:
	// cv-qualifiers, noexcept, pure/defaulted specifiers, initializer
	// lists, trailing return types. Anything outside that vocabulary
	// rejects the candidate so a stray call or macro invocation never
	// swallows unrelated code.
	k := closeParen + 1
	for k < hi {
		tok := s.toks[k]
		w := s.text(k)

		if tok.Kind == lexer.KindPunct {
			switch w {
			case ";":
				if sc == scopeFunction {
					return i + 1, false
				}
				decl.Span.End = tok.End
				s.decls = append(s.decls, decl)
				return k + 1, true

			case "{":
				close, ok := s.matchDelim(k, "{", "}", hi)
				if !ok {
					decl.Body = model.Span{Start: tok.End, End: s.regionEnd(hi)}
					decl.Span.End = s.regionEnd(hi)
					decl.Flags |= model.FlagTruncated
					s.decls = append(s.decls, decl)
					s.scanRegion(k+1, hi, scopeFunction)
					return hi, true
				}
				decl.Body = model.Span{Start: tok.End, End: s.toks[close].Start}
				decl.Span.End = s.toks[close].End
				s.decls = append(s.decls, decl)
				s.scanRegion(k+1, close, scopeFunction)
				return close + 1, true

			case ":", ",", "&", "*", "=", "-", ">", "<", "[", "]":
				k++

			case "(":
				inner, ok := s.matchDelim(k, "(", ")", hi)
				if !ok {
					return i + 1, false
				}
				k = inner + 1

			default:
				return i + 1, false
			}
			continue
		}

		if tok.Kind == lexer.KindKeyword {
			switch w {
			case "const", "volatile", "noexcept", "override", "final",
				"throw", "try", "mutable", "default", "delete", "requires":
				k++
			default:
				return i + 1, false
			}
			continue
		}

		if tok.Kind == lexer.KindIdent || tok.Kind == lexer.KindNumber || tok.Kind == lexer.KindString {
			k++
			continue
		}

		return i + 1, false
	}

	return i + 1, false
}

// precedingType validates the tokens before a function-name candidate
// and returns the start offset and line of the declaration. At file and
// function scope a function must be preceded by a type-ish token chain;
// at type scope a statement boundary is also acceptable (constructors
// carry no return type).
func (s *Scanner) precedingType(i int, sc scope) (int, int, bool) {
	j := i - 1
	for j >= 0 && s.toks[j].Kind == lexer.KindPunct {
		w := s.text(j)
		if w == "*" || w == "&" {
			j--
			continue
		}
		// `::` scope qualifier (two adjacent colon tokens). A lone colon
		// is an access specifier or label and ends the chain.
		if w == ":" && j-1 >= 0 && s.text(j-1) == ":" {
			j -= 2
			continue
		}
		break
	}

	if j < 0 || !s.typeish(s.toks[j], s.text(j)) {
		if sc == scopeType && s.constructorPosition(j) {
			return s.toks[i].Start, s.toks[i].Line, true
		}
		return 0, 0, false
	}

	// Walk the type chain back to find where the declaration starts. A
	// tag keyword belongs to the chain when the return type is a tagged
	// type (`struct point make_point(...)`).
	start := j
	for start >= 0 {
		tok := s.toks[start]
		w := s.text(start)
		if s.typeish(tok, w) ||
			(tok.Kind == lexer.KindKeyword && tagWord(w)) ||
			(tok.Kind == lexer.KindPunct && (w == "*" || w == "&" || w == "<" || w == ">" || w == ",")) {
			start--
			continue
		}
		if tok.Kind == lexer.KindPunct && w == ":" && start-1 >= 0 && s.text(start-1) == ":" {
			start -= 2
			continue
		}
		break
	}
	start++
	if start > j {
		start = j
	}
	return s.toks[start].Start, s.toks[start].Line, true
}

// constructorPosition reports whether index j (the token before the
// candidate, or -1) is a statement boundary where a constructor or
// conversion member may start.
func (s *Scanner) constructorPosition(j int) bool {
	if j < 0 {
		return true
	}
	tok := s.toks[j]
	w := s.text(j)
	if tok.Kind == lexer.KindPunct {
		return w == "{" || w == "}" || w == ";" || w == ":"
	}
	if tok.Kind == lexer.KindKeyword {
		switch w {
		case "public", "private", "protected", "explicit", "inline", "virtual", "friend":
			return true
		}
	}
	return false
}

// typeish reports whether a token can be part of a return/declarator
// type chain. The profile's keyword tables decide: control keywords and
// declaration introducers never are, access specifiers end a chain.
func (s *Scanner) typeish(tok lexer.Token, text string) bool {
	if tok.Kind == lexer.KindIdent {
		return true
	}
	if tok.Kind != lexer.KindKeyword {
		return false
	}
	switch text {
	case "public", "private", "protected":
		return false
	}
	return !s.profile.IsControlKeyword(text) && !s.profile.IsDeclKeyword(text)
}

// tagWord reports whether w introduces a tagged type that can appear in
// a return-type position. Mirrors the kinds tagKind maps.
func tagWord(w string) bool {
	switch w {
	case "struct", "union", "enum", "class":
		return true
	}
	return false
}

// typedefAliasName extracts the alias identifier from the token range
// (from, to) of a brace-free typedef body or a post-body declarator.
// Function-pointer aliases name the identifier inside `(* name)`; array
// aliases name the identifier before `[`; otherwise the last identifier
// wins.
func (s *Scanner) typedefAliasName(from, to int) string {
	// Function pointer: `( * name` possibly with several stars.
	for k := from; k < to-1; k++ {
		if s.toks[k].Kind != lexer.KindPunct || s.text(k) != "(" {
			continue
		}
		m := k + 1
		stars := 0
		for m < to && s.toks[m].Kind == lexer.KindPunct && s.text(m) == "*" {
			stars++
			m++
		}
		if stars > 0 && m < to && s.toks[m].Kind == lexer.KindIdent {
			return s.text(m)
		}
	}

	// Array: identifier immediately before the bracket.
	for k := from + 1; k < to; k++ {
		if s.toks[k].Kind == lexer.KindPunct && s.text(k) == "[" {
			if s.toks[k-1].Kind == lexer.KindIdent {
				return s.text(k - 1)
			}
		}
	}

	// Plain alias: last identifier.
	for k := to - 1; k >= from; k-- {
		if s.toks[k].Kind == lexer.KindIdent {
			return s.text(k)
		}
	}
	return ""
}

// trimText returns the trimmed source text between two byte offsets,
// with interior whitespace runs collapsed to single spaces.
func trimText(src []byte, start, end int) string {
	if start < 0 || end > len(src) || start >= end {
		return ""
	}
	return strings.Join(strings.Fields(string(src[start:end])), " ")
}
