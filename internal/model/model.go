// Package model holds the declaration tree produced for one source file.
// Declarations live in a flat per-file arena; parent/child links are
// arena indices, so the tree carries no ownership cycles.
package model

// Kind is the semantic category of a declaration.
type Kind string

const (
	KindStruct    Kind = "struct"
	KindUnion     Kind = "union"
	KindEnum      Kind = "enum"
	KindClass     Kind = "class"
	KindNamespace Kind = "namespace"
	KindFunction  Kind = "function"
	KindTypedef   Kind = "typedef"
	KindMacro     Kind = "macro"
)

// DiagFlag marks recoverable problems found while extracting a
// declaration. Diagnostics ride on the declaration itself; extraction
// never aborts a file.
type DiagFlag uint8

const (
	// FlagUnresolvedName is set when a declaration span was found but no
	// identifier could be extracted from it.
	FlagUnresolvedName DiagFlag = 1 << iota

	// FlagTruncated is set when the declaration's closing boundary was
	// forced at end-of-input due to unbalanced nesting.
	FlagTruncated
)

// Has reports whether all bits in flag are set.
func (f DiagFlag) Has(flag DiagFlag) bool {
	return f&flag == flag
}

// Span is a contiguous byte range [Start, End) in the source text.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Contains reports whether other lies fully within s.
func (s Span) Contains(other Span) bool {
	return s.Start <= other.Start && other.End <= s.End
}

// Overlaps reports whether s and other share at least one byte.
func (s Span) Overlaps(other Span) bool {
	return s.Start < other.End && other.Start < s.End
}

// Len returns the span length in bytes.
func (s Span) Len() int {
	return s.End - s.Start
}

// DeclID indexes a declaration within its file's arena.
type DeclID int32

// NoDecl is the absent-parent sentinel.
const NoDecl DeclID = -1

// Declaration is one recognized construct. Name may be empty for
// anonymous constructs; Signature is a raw textual summary (parameter
// list for functions and macros, aliased declarator text for typedefs).
type Declaration struct {
	ID        DeclID
	Kind      Kind
	Name      string
	Signature string
	Span      Span
	Body      Span // zero for forward declarations, prototypes, macros
	Line      int
	Parent    DeclID
	Children  []DeclID
	Flags     DiagFlag
}

// HasBody reports whether the declaration has a brace-delimited body.
func (d *Declaration) HasBody() bool {
	return d.Body.End > d.Body.Start
}

// Model owns the ordered declaration tree for one source file. It is
// immutable once the assembler finishes it.
type Model struct {
	Path     string
	Language string

	decls []Declaration
	roots []DeclID
}

// Len returns the total number of declarations in the file.
func (m *Model) Len() int {
	return len(m.decls)
}

// Decl returns the declaration with the given ID. The returned pointer
// aliases the arena; callers must not mutate it.
func (m *Model) Decl(id DeclID) *Declaration {
	return &m.decls[id]
}

// Roots returns the IDs of the top-level declarations in source order.
func (m *Model) Roots() []DeclID {
	return m.roots
}

// Walk visits the tree in source (pre-)order. Returning false from the
// visitor skips the declaration's children.
func (m *Model) Walk(visit func(d *Declaration, depth int) bool) {
	var walk func(id DeclID, depth int)
	walk = func(id DeclID, depth int) {
		d := &m.decls[id]
		if !visit(d, depth) {
			return
		}
		for _, child := range d.Children {
			walk(child, depth+1)
		}
	}
	for _, root := range m.roots {
		walk(root, 0)
	}
}

// CountByKind tallies declarations per kind across the whole tree.
func (m *Model) CountByKind() map[Kind]int {
	counts := make(map[Kind]int)
	for i := range m.decls {
		counts[m.decls[i].Kind]++
	}
	return counts
}
