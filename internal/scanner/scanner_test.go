package scanner

// Test Plan:
// - Tagged types: struct/union/enum with bodies, spans ending at `;`
// - Forward declarations end at the bare `;`
// - Anonymous tagged types keep an empty name without a diagnostic
// - Scoped enums (`enum class E : base`) classify as enum
// - Macros: object-like, function-like (signature is the parameter
//   list), line continuations, and nameless #define flagged unresolved
// - Non-define preprocessor lines produce no declarations
// - Typedefs: plain alias, function pointer, array, tagged-body form
//   (which also emits the nested tagged declaration)
// - Functions: definitions, prototypes, parameter-list signatures,
//   pointer return types, tagged return types (`struct point f(...)`),
//   out-of-line qualified methods
// - Calls inside function bodies are not declarations
// - Class bodies: methods, constructors, destructors, access specifiers
// - Namespaces recurse with file-scope rules
// - extern "C" blocks are transparent
// - Unbalanced input force-closes open declarations with FlagTruncated

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/declscan/declscan/internal/lang"
	"github.com/declscan/declscan/internal/model"
)

func scanSource(t *testing.T, tag, src string) []model.Declaration {
	t.Helper()
	profile, ok := lang.ByTag(tag)
	require.True(t, ok, "profile for %q", tag)
	return New([]byte(src), profile).Scan()
}

func findDecl(t *testing.T, decls []model.Declaration, kind model.Kind, name string) model.Declaration {
	t.Helper()
	for _, d := range decls {
		if d.Kind == kind && d.Name == name {
			return d
		}
	}
	t.Fatalf("no %s declaration named %q in %v", kind, name, declNames(decls))
	return model.Declaration{}
}

func declNames(decls []model.Declaration) []string {
	out := make([]string, len(decls))
	for i, d := range decls {
		out[i] = string(d.Kind) + ":" + d.Name
	}
	return out
}

func TestScanner_StructWithBody(t *testing.T) {
	t.Parallel()

	src := "struct Cache {\n\tint hits;\n\tint misses;\n};\n"
	decls := scanSource(t, "c", src)

	require.Len(t, decls, 1)
	d := decls[0]
	assert.Equal(t, model.KindStruct, d.Kind)
	assert.Equal(t, "Cache", d.Name)
	assert.Equal(t, 1, d.Line)
	assert.True(t, d.HasBody())
	assert.Equal(t, 0, d.Span.Start)
	assert.Equal(t, len(src)-1, d.Span.End, "span runs through the terminating semicolon")
}

func TestScanner_UnionAndEnum(t *testing.T) {
	t.Parallel()

	src := `
union Value {
	int i;
	float f;
};

enum Status {
	OK = 0,
	EVICTED = 1
};
`
	decls := scanSource(t, "c", src)
	require.Len(t, decls, 2)
	findDecl(t, decls, model.KindUnion, "Value")
	findDecl(t, decls, model.KindEnum, "Status")
}

func TestScanner_ForwardDeclaration(t *testing.T) {
	t.Parallel()

	decls := scanSource(t, "c", "struct Node;\n")
	require.Len(t, decls, 1)
	assert.Equal(t, model.KindStruct, decls[0].Kind)
	assert.Equal(t, "Node", decls[0].Name)
	assert.False(t, decls[0].HasBody())
}

func TestScanner_AnonymousStruct(t *testing.T) {
	t.Parallel()

	decls := scanSource(t, "c", "struct {\n\tint x;\n} point;\n")
	require.Len(t, decls, 1)
	assert.Equal(t, model.KindStruct, decls[0].Kind)
	assert.Empty(t, decls[0].Name, "anonymous structs keep an empty name")
	assert.False(t, decls[0].Flags.Has(model.FlagUnresolvedName),
		"an anonymous tag is not a naming failure")
}

func TestScanner_ScopedEnum(t *testing.T) {
	t.Parallel()

	decls := scanSource(t, "cpp", "enum class Color : uint8_t { Red, Green };\n")
	require.Len(t, decls, 1)
	assert.Equal(t, model.KindEnum, decls[0].Kind)
	assert.Equal(t, "Color", decls[0].Name)
}

func TestScanner_ObjectMacro(t *testing.T) {
	t.Parallel()

	decls := scanSource(t, "c", "#define CACHE_INIT 128\n")
	require.Len(t, decls, 1)
	d := decls[0]
	assert.Equal(t, model.KindMacro, d.Kind)
	assert.Equal(t, "CACHE_INIT", d.Name)
	assert.Empty(t, d.Signature, "object-like macros have no parameter list")
}

func TestScanner_FunctionMacro(t *testing.T) {
	t.Parallel()

	decls := scanSource(t, "c", "#define LOG(msg) log_message(msg)\n")
	require.Len(t, decls, 1)
	d := decls[0]
	assert.Equal(t, model.KindMacro, d.Kind)
	assert.Equal(t, "LOG", d.Name)
	assert.Equal(t, "(msg)", d.Signature)
}

func TestScanner_MacroSpacedParenIsObjectLike(t *testing.T) {
	t.Parallel()

	// A space before the paren makes the parens part of the body.
	decls := scanSource(t, "c", "#define ANSWER (42)\n")
	require.Len(t, decls, 1)
	assert.Equal(t, "ANSWER", decls[0].Name)
	assert.Empty(t, decls[0].Signature)
}

func TestScanner_MacroLineContinuation(t *testing.T) {
	t.Parallel()

	src := "#define SUM(a, b) \\\n\t((a) + (b))\nint after(void);\n"
	decls := scanSource(t, "c", src)

	require.Len(t, decls, 2)
	macro := findDecl(t, decls, model.KindMacro, "SUM")
	assert.Equal(t, "(a, b)", macro.Signature)
	assert.Contains(t, string([]byte(src)[macro.Span.Start:macro.Span.End]), "((a) + (b))",
		"continued line belongs to the macro")
	findDecl(t, decls, model.KindFunction, "after")
}

func TestScanner_NamelessDefineFlagged(t *testing.T) {
	t.Parallel()

	decls := scanSource(t, "c", "#define\nint x;\n")
	require.Len(t, decls, 1)
	assert.Equal(t, model.KindMacro, decls[0].Kind)
	assert.Empty(t, decls[0].Name)
	assert.True(t, decls[0].Flags.Has(model.FlagUnresolvedName))
}

func TestScanner_NonDefineDirectivesSkipped(t *testing.T) {
	t.Parallel()

	src := "#include <stdio.h>\n#pragma once\n#ifdef X\n#endif\nstruct S;\n"
	decls := scanSource(t, "c", src)
	require.Len(t, decls, 1)
	assert.Equal(t, model.KindStruct, decls[0].Kind)
}

func TestScanner_PlainTypedef(t *testing.T) {
	t.Parallel()

	decls := scanSource(t, "c", "typedef unsigned long word_t;\n")
	require.Len(t, decls, 1)
	d := decls[0]
	assert.Equal(t, model.KindTypedef, d.Kind)
	assert.Equal(t, "word_t", d.Name)
	assert.Equal(t, "unsigned long word_t", d.Signature)
}

func TestScanner_FunctionPointerTypedef(t *testing.T) {
	t.Parallel()

	decls := scanSource(t, "c", "typedef int (*handler_fn)(int);\n")
	require.Len(t, decls, 1)
	d := decls[0]
	assert.Equal(t, model.KindTypedef, d.Kind)
	assert.Equal(t, "handler_fn", d.Name)
	assert.Contains(t, d.Signature, "(*handler_fn)(int)")
}

func TestScanner_ArrayTypedef(t *testing.T) {
	t.Parallel()

	decls := scanSource(t, "c", "typedef int Buffer[16];\n")
	require.Len(t, decls, 1)
	assert.Equal(t, model.KindTypedef, decls[0].Kind)
	assert.Equal(t, "Buffer", decls[0].Name)
}

func TestScanner_TypedefStruct(t *testing.T) {
	t.Parallel()

	src := "typedef struct Server {\n\tint port;\n} Server;\n"
	decls := scanSource(t, "c", src)

	require.Len(t, decls, 2)
	td := findDecl(t, decls, model.KindTypedef, "Server")
	st := findDecl(t, decls, model.KindStruct, "Server")
	assert.True(t, td.Span.Contains(st.Span), "the tagged type nests inside the typedef span")
	assert.Equal(t, "struct Server", td.Signature)
}

func TestScanner_TypedefForwardStruct(t *testing.T) {
	t.Parallel()

	decls := scanSource(t, "c", "typedef struct Conn Conn;\n")
	require.Len(t, decls, 2)
	td := findDecl(t, decls, model.KindTypedef, "Conn")
	st := findDecl(t, decls, model.KindStruct, "Conn")
	assert.True(t, td.Span.Contains(st.Span))
}

func TestScanner_FunctionDefinition(t *testing.T) {
	t.Parallel()

	src := "int cache_put(Cache *cache, int key) {\n\treturn key;\n}\n"
	decls := scanSource(t, "c", src)

	require.Len(t, decls, 1)
	d := decls[0]
	assert.Equal(t, model.KindFunction, d.Kind)
	assert.Equal(t, "cache_put", d.Name)
	assert.Equal(t, "(Cache *cache, int key)", d.Signature)
	assert.True(t, d.HasBody())
	assert.Equal(t, 0, d.Span.Start, "span starts at the return type")
}

func TestScanner_FunctionPrototype(t *testing.T) {
	t.Parallel()

	decls := scanSource(t, "c", "int cache_get(int key);\n")
	require.Len(t, decls, 1)
	assert.Equal(t, model.KindFunction, decls[0].Kind)
	assert.Equal(t, "cache_get", decls[0].Name)
	assert.False(t, decls[0].HasBody())
}

func TestScanner_PointerReturnFunction(t *testing.T) {
	t.Parallel()

	decls := scanSource(t, "c", "static char *name_of(int id) { return 0; }\n")
	require.Len(t, decls, 1)
	assert.Equal(t, "name_of", decls[0].Name)
}

func TestScanner_CallsAreNotDeclarations(t *testing.T) {
	t.Parallel()

	src := `
void run(void) {
	helper(1);
	other_call(2);
}
`
	decls := scanSource(t, "c", src)
	require.Len(t, decls, 1)
	assert.Equal(t, "run", decls[0].Name)
}

func TestScanner_GlobalInitializersSkipped(t *testing.T) {
	t.Parallel()

	src := "int table[2] = {1, 2};\nstruct S { int x; };\n"
	decls := scanSource(t, "c", src)
	require.Len(t, decls, 1)
	assert.Equal(t, model.KindStruct, decls[0].Kind)
}

func TestScanner_ClassWithMethods(t *testing.T) {
	t.Parallel()

	src := `
class Greeter {
public:
	Greeter(int n) : n_(n) {}
	~Greeter() {}
	void greet() {}
	void wave();
private:
	int n_;
};
`
	decls := scanSource(t, "cpp", src)

	cls := findDecl(t, decls, model.KindClass, "Greeter")
	assert.True(t, cls.HasBody())

	ctor := findDecl(t, decls, model.KindFunction, "Greeter")
	dtor := findDecl(t, decls, model.KindFunction, "~Greeter")
	greet := findDecl(t, decls, model.KindFunction, "greet")
	wave := findDecl(t, decls, model.KindFunction, "wave")

	for _, d := range []model.Declaration{ctor, dtor, greet, wave} {
		assert.True(t, cls.Span.Contains(d.Span), "%s lies within the class span", d.Name)
	}
	assert.False(t, wave.HasBody(), "wave is only declared")

	// Source order among the members.
	assert.Less(t, ctor.Span.Start, dtor.Span.Start)
	assert.Less(t, dtor.Span.Start, greet.Span.Start)
	assert.Less(t, greet.Span.Start, wave.Span.Start)
}

func TestScanner_OutOfLineMethod(t *testing.T) {
	t.Parallel()

	decls := scanSource(t, "cpp", "void Greeter::greet() { }\n")
	require.Len(t, decls, 1)
	assert.Equal(t, model.KindFunction, decls[0].Kind)
	assert.Equal(t, "greet", decls[0].Name)
	assert.Equal(t, 0, decls[0].Span.Start, "span starts at the return type")
}

func TestScanner_Namespace(t *testing.T) {
	t.Parallel()

	src := `
namespace demo {

class Widget {
public:
	int size() { return 0; }
};

int add(int a, int b) { return a + b; }

} // namespace demo
`
	decls := scanSource(t, "cpp", src)

	ns := findDecl(t, decls, model.KindNamespace, "demo")
	widget := findDecl(t, decls, model.KindClass, "Widget")
	size := findDecl(t, decls, model.KindFunction, "size")
	add := findDecl(t, decls, model.KindFunction, "add")

	assert.True(t, ns.Span.Contains(widget.Span))
	assert.True(t, widget.Span.Contains(size.Span))
	assert.True(t, ns.Span.Contains(add.Span))
	assert.False(t, widget.Span.Contains(add.Span))
}

func TestScanner_ExternCBlockTransparent(t *testing.T) {
	t.Parallel()

	src := "extern \"C\" {\nint bridge(void);\n}\n"
	decls := scanSource(t, "cpp", src)
	require.Len(t, decls, 1)
	assert.Equal(t, "bridge", decls[0].Name)
}

func TestScanner_TruncatedStruct(t *testing.T) {
	t.Parallel()

	src := "struct Foo {\n\tint x;\n"
	decls := scanSource(t, "c", src)

	require.Len(t, decls, 1)
	d := decls[0]
	assert.Equal(t, "Foo", d.Name)
	assert.True(t, d.Flags.Has(model.FlagTruncated))
	assert.Equal(t, len(src), d.Span.End, "forced closed at end of input")
}

func TestScanner_TruncatedNesting(t *testing.T) {
	t.Parallel()

	src := "class A {\nvoid f() {\n"
	decls := scanSource(t, "cpp", src)

	cls := findDecl(t, decls, model.KindClass, "A")
	fn := findDecl(t, decls, model.KindFunction, "f")
	assert.True(t, cls.Flags.Has(model.FlagTruncated))
	assert.True(t, fn.Flags.Has(model.FlagTruncated))
	assert.True(t, cls.Span.Contains(fn.Span))
}

func TestScanner_DefaultedMethod(t *testing.T) {
	t.Parallel()

	src := "class Pod {\npublic:\n\tPod() = default;\n};\n"
	decls := scanSource(t, "cpp", src)

	findDecl(t, decls, model.KindClass, "Pod")
	ctor := findDecl(t, decls, model.KindFunction, "Pod")
	assert.False(t, ctor.HasBody())
}

func TestScanner_TaggedReturnFunction(t *testing.T) {
	t.Parallel()

	src := `
struct point { int x; int y; };

struct point make_point(int x, int y) {
	struct point p;
	p.x = x;
	p.y = y;
	return p;
}
`
	decls := scanSource(t, "c", src)

	def := findDecl(t, decls, model.KindStruct, "point")
	fn := findDecl(t, decls, model.KindFunction, "make_point")
	assert.Equal(t, "(int x, int y)", fn.Signature)
	assert.True(t, fn.HasBody())
	assert.False(t, def.Span.Contains(fn.Span))
	assert.Contains(t, string([]byte(src)[fn.Span.Start:fn.Span.End]), "struct point make_point",
		"span starts at the tagged return type")

	// The local `struct point p;` is enumerated inside the body.
	var local *model.Declaration
	for i := range decls {
		d := &decls[i]
		if d.Kind == model.KindStruct && fn.Span.Contains(d.Span) {
			local = d
		}
	}
	require.NotNil(t, local, "local tagged statement inside the body")
	assert.Equal(t, "point", local.Name)
	assert.False(t, local.HasBody())
}

func TestScanner_TaggedReturnPrototype(t *testing.T) {
	t.Parallel()

	decls := scanSource(t, "c", "struct point make_point(int x, int y);\n")
	require.Len(t, decls, 1)
	d := decls[0]
	assert.Equal(t, model.KindFunction, d.Kind)
	assert.Equal(t, "make_point", d.Name)
	assert.False(t, d.HasBody())
	assert.Equal(t, 0, d.Span.Start, "span starts at the tag keyword")
}

func TestScanner_EnumReturnFunction(t *testing.T) {
	t.Parallel()

	decls := scanSource(t, "c", "enum color pick(int i) { return i; }\n")
	require.Len(t, decls, 1)
	assert.Equal(t, model.KindFunction, decls[0].Kind)
	assert.Equal(t, "pick", decls[0].Name)
}

func TestScanner_TaggedPointerReturn(t *testing.T) {
	t.Parallel()

	decls := scanSource(t, "c", "struct node *next_node(struct node *n);\n")
	require.Len(t, decls, 1)
	assert.Equal(t, model.KindFunction, decls[0].Kind)
	assert.Equal(t, "next_node", decls[0].Name)
}

func TestScanner_TaggedFunctionPointerVariable(t *testing.T) {
	t.Parallel()

	// The paren follows the tag name itself, so this stays a variable
	// statement rather than a function.
	decls := scanSource(t, "c", "struct point (*factory)(void);\n")
	require.Len(t, decls, 1)
	assert.Equal(t, model.KindStruct, decls[0].Kind)
	assert.Equal(t, "point", decls[0].Name)
}

func TestScanner_ControlKeywordsFromProfileTable(t *testing.T) {
	t.Parallel()

	// Keywords in the profile's control table never join a return-type
	// chain, including the C++-only entries like static_assert.
	decls := scanSource(t, "cpp", "static_assert check_size();\n")
	assert.Empty(t, decls)

	decls = scanSource(t, "c", "return make_point(1, 2);\n")
	assert.Empty(t, decls)
}

func TestScanner_StructVariableStatement(t *testing.T) {
	t.Parallel()

	// The keyword occurrence is still enumerated even when it is part of
	// a variable statement.
	decls := scanSource(t, "c", "struct Flags f;\n")
	require.Len(t, decls, 1)
	assert.Equal(t, model.KindStruct, decls[0].Kind)
	assert.Equal(t, "Flags", decls[0].Name)
	assert.False(t, decls[0].HasBody())
}
