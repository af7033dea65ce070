package lexer

// Kind classifies a lexical token.
type Kind int

const (
	KindWhitespace Kind = iota
	KindComment
	KindIdent
	KindKeyword
	KindPunct
	KindNumber
	KindString
	KindChar
	KindError
)

// String returns the kind name for diagnostics and tests.
func (k Kind) String() string {
	switch k {
	case KindWhitespace:
		return "whitespace"
	case KindComment:
		return "comment"
	case KindIdent:
		return "ident"
	case KindKeyword:
		return "keyword"
	case KindPunct:
		return "punct"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindChar:
		return "char"
	case KindError:
		return "error"
	default:
		return "unknown"
	}
}

// Token is one lexical unit. Start and End are byte offsets into the
// source; Line is the 1-based line of the token's first byte. Tokens are
// produced once and read-only afterwards.
type Token struct {
	Kind  Kind
	Start int
	End   int
	Line  int
}

// Text returns the token's text from the source it was lexed from.
func (t Token) Text(src []byte) string {
	return string(src[t.Start:t.End])
}

// IsCode reports whether the token carries code content, i.e. it is not
// whitespace, a comment, or an error placeholder.
func (t Token) IsCode() bool {
	switch t.Kind {
	case KindWhitespace, KindComment, KindError:
		return false
	}
	return true
}
