package lexer

// Test Plan:
// - Tokenize identifiers, keywords, punctuation, numbers per profile
// - Delimit string and char literals, honoring backslash escapes
// - Delimit line and block comments
// - Unterminated block comment at EOF yields one Error token to the end
// - Unterminated string stops at the line boundary and lexing resumes
// - Every byte of the input is covered by exactly one token
// - Line numbers are 1-based and advance across newlines

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/declscan/declscan/internal/lang"
)

func cProfile(t *testing.T) *lang.Profile {
	t.Helper()
	p, ok := lang.ByTag("c")
	require.True(t, ok)
	return p
}

func kinds(tokens []Token) []Kind {
	out := make([]Kind, len(tokens))
	for i, tok := range tokens {
		out[i] = tok.Kind
	}
	return out
}

func codeTexts(src []byte, tokens []Token) []string {
	var out []string
	for _, tok := range tokens {
		if tok.IsCode() {
			out = append(out, tok.Text(src))
		}
	}
	return out
}

func TestLexer_BasicTokens(t *testing.T) {
	t.Parallel()

	src := []byte("int count = 42;")
	tokens := Scan(src, cProfile(t))

	assert.Equal(t, []string{"int", "count", "=", "42", ";"}, codeTexts(src, tokens))

	require.NotEmpty(t, tokens)
	assert.Equal(t, KindKeyword, tokens[0].Kind, "int is a C keyword")
}

func TestLexer_KeywordVsIdent(t *testing.T) {
	t.Parallel()

	src := []byte("struct structure")
	tokens := Scan(src, cProfile(t))

	require.Len(t, tokens, 3) // struct, space, structure
	assert.Equal(t, KindKeyword, tokens[0].Kind)
	assert.Equal(t, KindIdent, tokens[2].Kind)
}

func TestLexer_StringEscapes(t *testing.T) {
	t.Parallel()

	src := []byte(`printf("a \"quoted\" word");`)
	tokens := Scan(src, cProfile(t))

	var strTok *Token
	for i := range tokens {
		if tokens[i].Kind == KindString {
			strTok = &tokens[i]
			break
		}
	}
	require.NotNil(t, strTok, "expected a string token")
	assert.Equal(t, `"a \"quoted\" word"`, strTok.Text(src))
}

func TestLexer_CharLiteral(t *testing.T) {
	t.Parallel()

	src := []byte(`char c = '\n';`)
	tokens := Scan(src, cProfile(t))

	assert.Contains(t, kinds(tokens), KindChar)
}

func TestLexer_Comments(t *testing.T) {
	t.Parallel()

	src := []byte("// line\nint x; /* block\nstill block */ int y;")
	tokens := Scan(src, cProfile(t))

	comments := 0
	for _, tok := range tokens {
		if tok.Kind == KindComment {
			comments++
		}
	}
	assert.Equal(t, 2, comments)
	assert.Equal(t, []string{"int", "x", ";", "int", "y", ";"}, codeTexts(src, tokens))
}

func TestLexer_UnterminatedBlockComment(t *testing.T) {
	t.Parallel()

	src := []byte("int x;\n/* never closed")
	tokens := Scan(src, cProfile(t))

	require.NotEmpty(t, tokens)
	last := tokens[len(tokens)-1]
	assert.Equal(t, KindError, last.Kind)
	assert.Equal(t, len(src), last.End, "error token covers the remainder")
}

func TestLexer_UnterminatedStringResumesNextLine(t *testing.T) {
	t.Parallel()

	src := []byte("char *s = \"oops;\nint y;")
	tokens := Scan(src, cProfile(t))

	assert.Contains(t, kinds(tokens), KindError)
	// Lexing recovered: the next line's tokens are intact.
	assert.Contains(t, codeTexts(src, tokens), "y")
}

func TestLexer_TotalCoverage(t *testing.T) {
	t.Parallel()

	src := []byte("struct S { int a; };\n// done\n\"str\" 'c' 3.14 /*x*/")
	tokens := Scan(src, cProfile(t))

	pos := 0
	for _, tok := range tokens {
		require.Equal(t, pos, tok.Start, "tokens must be contiguous")
		require.Greater(t, tok.End, tok.Start, "tokens must be non-empty")
		pos = tok.End
	}
	assert.Equal(t, len(src), pos, "tokens must cover the whole input")
}

func TestLexer_LineNumbers(t *testing.T) {
	t.Parallel()

	src := []byte("int a;\nint b;\n\nint c;")
	tokens := Scan(src, cProfile(t))

	lineOf := map[string]int{}
	for _, tok := range tokens {
		if tok.Kind == KindIdent {
			lineOf[tok.Text(src)] = tok.Line
		}
	}
	assert.Equal(t, 1, lineOf["a"])
	assert.Equal(t, 2, lineOf["b"])
	assert.Equal(t, 4, lineOf["c"])
}

func TestLexer_LineNumbersAfterContinuedString(t *testing.T) {
	t.Parallel()

	// A backslash-newline inside a literal continues it onto the next
	// line; tokens after it still report the right line.
	src := []byte("char *s = \"split\\\nend\";\nint after;\n")
	tokens := Scan(src, cProfile(t))

	for _, tok := range tokens {
		if tok.Kind == KindIdent && tok.Text(src) == "after" {
			assert.Equal(t, 3, tok.Line)
			return
		}
	}
	t.Fatal("ident after not found")
}

func TestLexer_Restartable(t *testing.T) {
	t.Parallel()

	src := []byte("enum E { A, B };")
	p := cProfile(t)

	first := Scan(src, p)
	second := Scan(src, p)
	assert.Equal(t, first, second, "a fresh lexer over the same input restarts identically")
}
