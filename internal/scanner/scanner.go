// Package scanner finds declaration boundaries in a token stream and
// classifies each span into a construct kind. It tracks brace and paren
// depth instead of parsing a grammar: the goal is reliable enumeration of
// declaration-shaped spans, not language-correct parsing. Malformed input
// degrades to flagged declarations, never to an error.
package scanner

import (
	"github.com/declscan/declscan/internal/lang"
	"github.com/declscan/declscan/internal/lexer"
	"github.com/declscan/declscan/internal/model"
)

// scope describes what kinds of candidates are valid at the current
// nesting level. Prototypes inside function bodies are calls, not
// declarations, so they are only recognized at type and file scope.
type scope int

const (
	scopeFile scope = iota
	scopeType
	scopeFunction
)

// Scanner emits declarations for one tokenized source file in source
// (pre-)order: an enclosing declaration is emitted before anything found
// inside its body.
type Scanner struct {
	src     []byte
	profile *lang.Profile
	toks    []lexer.Token // code tokens only
	decls   []model.Declaration
}

// New tokenizes src and prepares a scanner over its code tokens.
func New(src []byte, profile *lang.Profile) *Scanner {
	all := lexer.Scan(src, profile)
	code := make([]lexer.Token, 0, len(all))
	for _, t := range all {
		if t.IsCode() {
			code = append(code, t)
		}
	}
	return &Scanner{src: src, profile: profile, toks: code}
}

// Scan walks the whole file and returns every declaration found, ordered
// for the model assembler.
func (s *Scanner) Scan() []model.Declaration {
	s.scanRegion(0, len(s.toks), scopeFile)
	return s.decls
}

func (s *Scanner) text(i int) string {
	return s.toks[i].Text(s.src)
}

// scanRegion scans the token index range [lo, hi) at the given scope.
func (s *Scanner) scanRegion(lo, hi int, sc scope) {
	i := lo
	for i < hi {
		t := s.toks[i]
		switch {
		case t.Kind == lexer.KindPunct && s.text(i) == "#":
			i = s.scanPreproc(i, hi)

		case t.Kind == lexer.KindKeyword && s.text(i) == "typedef":
			i = s.scanTypedef(i, hi)

		case t.Kind == lexer.KindKeyword && s.profile.IsDeclKeyword(s.text(i)):
			i, _ = s.scanTagged(i, hi, true)

		case t.Kind == lexer.KindKeyword && s.text(i) == "extern":
			i = s.scanExtern(i, hi, sc)

		case t.Kind == lexer.KindPunct && s.text(i) == "{":
			// Unrecognized brace block (aggregate initializer and the
			// like): skip it wholesale so its contents cannot produce
			// false candidates.
			end, ok := s.matchDelim(i, "{", "}", hi)
			if !ok {
				return
			}
			i = end + 1

		case t.Kind == lexer.KindIdent || t.Kind == lexer.KindPunct && s.text(i) == "~":
			next, emitted := s.tryFunction(i, hi, sc)
			if emitted {
				i = next
			} else {
				i++
			}

		default:
			i++
		}
	}
}

// scanExtern handles `extern "C" { ... }` linkage blocks transparently:
// declarations inside keep the enclosing scope. A plain extern declaration
// falls through to the normal candidate handling.
func (s *Scanner) scanExtern(i, hi int, sc scope) int {
	j := i + 1
	if j < hi && s.toks[j].Kind == lexer.KindString {
		j++
	}
	if j < hi && s.toks[j].Kind == lexer.KindPunct && s.text(j) == "{" {
		end, ok := s.matchDelim(j, "{", "}", hi)
		if !ok {
			s.scanRegion(j+1, hi, sc)
			return hi
		}
		s.scanRegion(j+1, end, sc)
		return end + 1
	}
	return i + 1
}

// scanPreproc handles a preprocessor line starting at the '#' token.
// Only #define produces a declaration; other directives are skipped to
// the end of their (continuation-aware) line.
func (s *Scanner) scanPreproc(i, hi int) int {
	hashTok := s.toks[i]
	lineEnd := s.logicalLineEnd(hashTok.Start)

	// Advance the token index past the directive regardless of shape.
	next := i
	for next < hi && s.toks[next].Start < lineEnd {
		next++
	}

	j := i + 1
	if j >= hi || s.toks[j].Start >= lineEnd || s.text(j) != "define" {
		return next
	}

	decl := model.Declaration{
		Kind: model.KindMacro,
		Span: model.Span{Start: hashTok.Start, End: lineEnd},
		Line: hashTok.Line,
	}

	nameIdx := j + 1
	if nameIdx < hi && s.toks[nameIdx].Start < lineEnd && s.toks[nameIdx].Kind == lexer.KindIdent {
		name := s.toks[nameIdx]
		decl.Name = name.Text(s.src)

		// A parameter list only exists when the paren is glued to the
		// macro name; `#define X (y)` defines an object-like macro.
		parenIdx := nameIdx + 1
		if parenIdx < hi && s.toks[parenIdx].Start == name.End && s.text(parenIdx) == "(" {
			if close, ok := s.matchDelim(parenIdx, "(", ")", hi); ok && s.toks[close].End <= lineEnd {
				decl.Signature = string(s.src[s.toks[parenIdx].Start:s.toks[close].End])
			}
		}
	} else {
		decl.Flags |= model.FlagUnresolvedName
	}

	s.decls = append(s.decls, decl)
	return next
}

// logicalLineEnd returns the offset just past the directive line starting
// at from, honoring backslash line continuations.
func (s *Scanner) logicalLineEnd(from int) int {
	i := from
	for i < len(s.src) {
		if s.src[i] != '\n' {
			i++
			continue
		}
		// A backslash (optionally with a carriage return) continues the
		// directive onto the next line.
		j := i - 1
		if j >= 0 && s.src[j] == '\r' {
			j--
		}
		if j >= 0 && s.src[j] == '\\' {
			i++
			continue
		}
		return i
	}
	return len(s.src)
}

// scanTagged handles struct/union/enum/class/namespace constructs
// starting at the keyword token. When consumeSemi is false the trailing
// `;` (and any declarator before it) is left for the caller, which is how
// typedef wraps a tagged body. Returns the next token index and the index
// of the emitted declaration in s.decls, or -1 when control is handed
// back without a declaration.
func (s *Scanner) scanTagged(i, hi int, consumeSemi bool) (int, int) {
	kw := s.toks[i]
	kind := tagKind(kw.Text(s.src))

	decl := model.Declaration{
		Kind: kind,
		Span: model.Span{Start: kw.Start, End: kw.End},
		Line: kw.Line,
	}

	j := i + 1

	// `enum class Name` / `enum struct Name` (scoped enums).
	if kind == model.KindEnum && j < hi && s.toks[j].Kind == lexer.KindKeyword {
		if w := s.text(j); w == "class" || w == "struct" {
			j++
		}
	}

	nameIdx := -1
	if j < hi && s.toks[j].Kind == lexer.KindIdent {
		decl.Name = s.text(j)
		nameIdx = j
		j++
	}

	// Skip enum underlying type (`enum E : uint8_t`) and class bases
	// (`class D : public B`) up to the body or terminator.
	for j < hi {
		w := s.text(j)
		if w == "{" || w == ";" {
			break
		}
		if s.toks[j].Kind == lexer.KindPunct && w != ":" && w != "," && w != "<" && w != ">" && w != "*" && w != "&" {
			break
		}
		j++
	}

	if j >= hi {
		// Ran off the region with the construct still open.
		decl.Flags |= model.FlagTruncated
		decl.Span.End = s.regionEnd(hi)
		s.decls = append(s.decls, decl)
		return hi, len(s.decls) - 1
	}

	switch s.text(j) {
	case ";":
		// Forward declaration.
		decl.Span.End = s.toks[j].End
		s.decls = append(s.decls, decl)
		return j + 1, len(s.decls) - 1

	case "{":
		close, ok := s.matchDelim(j, "{", "}", hi)
		declIdx := len(s.decls)
		if !ok {
			decl.Flags |= model.FlagTruncated
			decl.Span.End = s.regionEnd(hi)
			decl.Body = model.Span{Start: s.toks[j].End, End: s.regionEnd(hi)}
			s.decls = append(s.decls, decl)
			s.recurseTagged(kind, j+1, hi)
			return hi, declIdx
		}

		decl.Body = model.Span{Start: s.toks[j].End, End: s.toks[close].Start}
		end := close + 1
		decl.Span.End = s.toks[close].End

		if consumeSemi && tagWantsSemi(kind) {
			if semi, ok := s.findDeclaratorSemi(close+1, hi); ok {
				decl.Span.End = s.toks[semi].End
				end = semi + 1
			}
		}

		s.decls = append(s.decls, decl)
		s.recurseTagged(kind, j+1, close)
		return end, declIdx

	default:
		// A declarator with a parameter list is a function returning the
		// tagged type (`struct point make_point(...)`). Hand control back
		// at the function name so the function heuristic owns the whole
		// span; the tag keyword joins its return-type chain. The shape
		// `struct point (*fp)(...)` stays a variable statement because
		// the paren follows the tag name itself.
		if s.text(j) == "(" && j-1 > nameIdx && s.toks[j-1].Kind == lexer.KindIdent {
			return j - 1, -1
		}

		// Otherwise the keyword is part of a larger statement
		// (`struct X x;`). Enumerate it as a bodiless declaration ending
		// at the statement terminator so the keyword occurrence is never
		// silently dropped.
		semi := j
		for semi < hi && s.text(semi) != ";" && s.text(semi) != "{" {
			semi++
		}
		if semi < hi && s.text(semi) == ";" {
			decl.Span.End = s.toks[semi].End
			s.decls = append(s.decls, decl)
			return semi + 1, len(s.decls) - 1
		}
		decl.Span.End = s.toks[j-1].End
		s.decls = append(s.decls, decl)
		return j, len(s.decls) - 1
	}
}

// recurseTagged scans the interior of a tagged body for nested
// declarations. Enum bodies hold enumerators, not declarations.
func (s *Scanner) recurseTagged(kind model.Kind, lo, hi int) {
	switch kind {
	case model.KindEnum:
		return
	case model.KindNamespace:
		s.scanRegion(lo, hi, scopeFile)
	default:
		s.scanRegion(lo, hi, scopeType)
	}
}

// scanTypedef handles a typedef starting at the keyword token. Two
// shapes matter: `typedef <tagged body> Name;`, which also yields the
// nested tagged declaration, and the brace-free form covering aliases,
// function-pointer aliases, and array aliases.
func (s *Scanner) scanTypedef(i, hi int) int {
	kw := s.toks[i]

	// Find whichever of `{` or `;` comes first at this depth.
	j := i + 1
	for j < hi {
		w := s.text(j)
		if w == "{" || w == ";" {
			break
		}
		j++
	}

	if j >= hi {
		s.decls = append(s.decls, model.Declaration{
			Kind:  model.KindTypedef,
			Span:  model.Span{Start: kw.Start, End: s.regionEnd(hi)},
			Line:  kw.Line,
			Flags: model.FlagTruncated | model.FlagUnresolvedName,
		})
		return hi
	}

	if s.text(j) == ";" {
		// Brace-free typedef: alias, function pointer, or array.
		decl := model.Declaration{
			Kind:      model.KindTypedef,
			Span:      model.Span{Start: kw.Start, End: s.toks[j].End},
			Line:      kw.Line,
			Signature: trimText(s.src, kw.End, s.toks[j].Start),
		}
		decl.Name = s.typedefAliasName(i+1, j)
		if decl.Name == "" {
			decl.Flags |= model.FlagUnresolvedName
		}
		s.decls = append(s.decls, decl)

		// `typedef struct X X;` also references a tagged type; surface
		// it as a nested forward declaration so the keyword occurrence
		// is enumerated.
		for k := i + 1; k < j; k++ {
			if s.toks[k].Kind != lexer.KindKeyword || !s.profile.IsDeclKeyword(s.text(k)) {
				continue
			}
			nested := model.Declaration{
				Kind: tagKind(s.text(k)),
				Span: model.Span{Start: s.toks[k].Start, End: s.toks[k].End},
				Line: s.toks[k].Line,
			}
			if k+1 < j && s.toks[k+1].Kind == lexer.KindIdent {
				nested.Name = s.text(k + 1)
				nested.Span.End = s.toks[k+1].End
			}
			s.decls = append(s.decls, nested)
			break
		}
		return j + 1
	}

	// Tagged-body typedef. The typedef span runs to the `;` after the
	// closing brace; the tagged construct nests inside it.
	declIdx := len(s.decls)
	decl := model.Declaration{
		Kind: model.KindTypedef,
		Span: model.Span{Start: kw.Start, End: kw.End},
		Line: kw.Line,
	}
	s.decls = append(s.decls, decl)

	// Locate the introducing keyword between typedef and the brace, if
	// any, and scan the tagged construct without its trailing `;`.
	tagIdx := -1
	for k := i + 1; k < j; k++ {
		if s.toks[k].Kind == lexer.KindKeyword && s.profile.IsDeclKeyword(s.text(k)) {
			tagIdx = k
			break
		}
	}

	var next int
	if tagIdx >= 0 {
		var inner int
		next, inner = s.scanTagged(tagIdx, hi, false)
		s.decls[declIdx].Signature = trimText(s.src, kw.End, s.toks[j].Start)
		if inner >= 0 && s.decls[inner].Flags.Has(model.FlagTruncated) {
			s.decls[declIdx].Flags |= model.FlagTruncated
			s.decls[declIdx].Span.End = s.regionEnd(hi)
		}
	} else {
		close, ok := s.matchDelim(j, "{", "}", hi)
		if !ok {
			s.decls[declIdx].Flags |= model.FlagTruncated | model.FlagUnresolvedName
			s.decls[declIdx].Span.End = s.regionEnd(hi)
			return hi
		}
		next = close + 1
	}

	if s.decls[declIdx].Flags.Has(model.FlagTruncated) {
		return hi
	}

	// Alias name and terminator after the body.
	if semi, ok := s.findDeclaratorSemi(next, hi); ok {
		s.decls[declIdx].Span.End = s.toks[semi].End
		s.decls[declIdx].Name = s.typedefAliasName(next, semi)
		if s.decls[declIdx].Name == "" {
			s.decls[declIdx].Flags |= model.FlagUnresolvedName
		}
		return semi + 1
	}

	s.decls[declIdx].Span.End = s.toks[next-1].End
	s.decls[declIdx].Flags |= model.FlagUnresolvedName
	return next
}

// findDeclaratorSemi scans forward over declarator-shaped tokens
// (identifiers, pointers, array brackets, commas) looking for the
// statement terminator. Anything else means the `;` does not belong to
// the construct.
func (s *Scanner) findDeclaratorSemi(from, hi int) (int, bool) {
	for k := from; k < hi; k++ {
		switch {
		case s.text(k) == ";":
			return k, true
		case s.toks[k].Kind == lexer.KindIdent,
			s.toks[k].Kind == lexer.KindNumber:
		case s.toks[k].Kind == lexer.KindPunct:
			switch s.text(k) {
			case "*", "&", ",", "[", "]":
			default:
				return 0, false
			}
		default:
			return 0, false
		}
	}
	return 0, false
}

// matchDelim returns the index of the token closing the delimiter opened
// at i, scanning no further than hi.
func (s *Scanner) matchDelim(i int, open, close string, hi int) (int, bool) {
	depth := 0
	for k := i; k < hi; k++ {
		if s.toks[k].Kind != lexer.KindPunct {
			continue
		}
		switch s.text(k) {
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return k, true
			}
		}
	}
	return hi, false
}

// regionEnd returns the byte offset where the token region [_, hi) ends:
// the end of the last token, or of the source for the outermost region.
func (s *Scanner) regionEnd(hi int) int {
	if hi >= len(s.toks) {
		return len(s.src)
	}
	if hi == 0 {
		return 0
	}
	return s.toks[hi-1].End
}

func tagKind(keyword string) model.Kind {
	switch keyword {
	case "struct":
		return model.KindStruct
	case "union":
		return model.KindUnion
	case "enum":
		return model.KindEnum
	case "class":
		return model.KindClass
	case "namespace":
		return model.KindNamespace
	default:
		return model.KindStruct
	}
}

// tagWantsSemi reports whether the construct's span extends past its
// closing brace to a statement terminator.
func tagWantsSemi(kind model.Kind) bool {
	switch kind {
	case model.KindStruct, model.KindUnion, model.KindEnum:
		return true
	}
	return false
}
