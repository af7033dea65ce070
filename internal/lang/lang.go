// Package lang defines the per-language configuration consumed by the
// lexer and scanner. Languages are table entries, not types: adding a
// language means adding a Profile to the registry.
package lang

import (
	"path/filepath"
	"strings"
)

// Profile describes the lexical surface of one language: how comments and
// literals are delimited and which keywords introduce declarations.
type Profile struct {
	// Name is the human-readable language name (e.g. "C++").
	Name string

	// Tag is the canonical language tag used throughout the pipeline
	// (e.g. "cpp"). Tags are lowercase and stable.
	Tag string

	// Extensions lists file extensions (with leading dot) mapped to this
	// profile.
	Extensions []string

	// LineComment starts a comment running to end of line (e.g. "//").
	// Empty if the language has no line comments.
	LineComment string

	// BlockCommentStart and BlockCommentEnd delimit block comments.
	// Both empty if the language has no block comments.
	BlockCommentStart string
	BlockCommentEnd   string

	// StringDelim and CharDelim delimit string and character literals.
	// CharDelim is zero if the language has no character literals.
	StringDelim rune
	CharDelim   rune

	// DeclKeywords are the keywords that introduce a declaration at any
	// scope (struct, class, typedef, ...).
	DeclKeywords map[string]bool

	// ControlKeywords are keywords that look like function calls when
	// followed by a parenthesis (if, while, ...) and must never be taken
	// as function names.
	ControlKeywords map[string]bool

	// Keywords is the full reserved-word set, used by the lexer to tag
	// tokens as KindKeyword rather than KindIdent.
	Keywords map[string]bool
}

// IsDeclKeyword reports whether word introduces a declaration.
func (p *Profile) IsDeclKeyword(word string) bool {
	return p.DeclKeywords[word]
}

// IsControlKeyword reports whether word is a control-flow keyword.
func (p *Profile) IsControlKeyword(word string) bool {
	return p.ControlKeywords[word]
}

var registry = map[string]*Profile{}
var byExtension = map[string]*Profile{}

func register(p *Profile) {
	registry[p.Tag] = p
	for _, ext := range p.Extensions {
		byExtension[ext] = p
	}
}

// ByTag returns the profile registered for a language tag.
func ByTag(tag string) (*Profile, bool) {
	p, ok := registry[strings.ToLower(tag)]
	return p, ok
}

// ByPath returns the profile for a file path based on its extension.
func ByPath(path string) (*Profile, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	p, ok := byExtension[ext]
	return p, ok
}

// Tags returns all registered language tags in sorted order.
func Tags() []string {
	tags := make([]string, 0, len(registry))
	for tag := range registry {
		tags = append(tags, tag)
	}
	sortStrings(tags)
	return tags
}

// All returns all registered profiles ordered by tag.
func All() []*Profile {
	profiles := make([]*Profile, 0, len(registry))
	for _, tag := range Tags() {
		profiles = append(profiles, registry[tag])
	}
	return profiles
}

// sortStrings is a small insertion sort; the registry stays tiny.
func sortStrings(s []string) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j] < s[j-1]; j-- {
			s[j], s[j-1] = s[j-1], s[j]
		}
	}
}

func wordSet(words ...string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}

func init() {
	cControl := wordSet("if", "else", "for", "while", "do", "switch",
		"return", "sizeof", "goto", "case")

	cKeywords := wordSet("auto", "break", "case", "char", "const",
		"continue", "default", "do", "double", "else", "enum", "extern",
		"float", "for", "goto", "if", "inline", "int", "long", "register",
		"restrict", "return", "short", "signed", "sizeof", "static",
		"struct", "switch", "typedef", "union", "unsigned", "void",
		"volatile", "while")

	register(&Profile{
		Name:              "C",
		Tag:               "c",
		Extensions:        []string{".c", ".h"},
		LineComment:       "//",
		BlockCommentStart: "/*",
		BlockCommentEnd:   "*/",
		StringDelim:       '"',
		CharDelim:         '\'',
		DeclKeywords:      wordSet("struct", "union", "enum", "typedef"),
		ControlKeywords:   cControl,
		Keywords:          cKeywords,
	})

	cppKeywords := wordSet("alignas", "alignof", "auto", "bool", "break",
		"case", "catch", "char", "class", "const", "constexpr",
		"const_cast", "continue", "decltype", "default", "delete", "do",
		"double", "dynamic_cast", "else", "enum", "explicit", "extern",
		"false", "float", "for", "friend", "goto", "if", "inline", "int",
		"long", "mutable", "namespace", "new", "noexcept", "nullptr",
		"operator", "override", "private", "protected", "public",
		"register", "reinterpret_cast", "return", "short", "signed",
		"sizeof", "static", "static_assert", "static_cast", "struct",
		"switch", "template",
		"this", "throw", "true", "try", "typedef", "typeid", "typename",
		"union", "unsigned", "using", "virtual", "void", "volatile",
		"while")

	cppControl := wordSet("if", "else", "for", "while", "do", "switch",
		"return", "sizeof", "goto", "case", "catch", "throw", "new",
		"delete", "decltype", "alignof", "static_assert")

	register(&Profile{
		Name:              "C++",
		Tag:               "cpp",
		Extensions:        []string{".cpp", ".cc", ".cxx", ".hpp", ".hh", ".hxx"},
		LineComment:       "//",
		BlockCommentStart: "/*",
		BlockCommentEnd:   "*/",
		StringDelim:       '"',
		CharDelim:         '\'',
		DeclKeywords:      wordSet("struct", "union", "enum", "class", "namespace", "typedef"),
		ControlKeywords:   cppControl,
		Keywords:          cppKeywords,
	})
}
