package lang

// Test Plan:
// - Tag lookup is case-insensitive and rejects unknown tags
// - Extension lookup maps every registered extension to its profile
// - Tags and All come back sorted and consistent
// - Keyword classification helpers agree with the registered word sets

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestByTag(t *testing.T) {
	t.Parallel()

	c, ok := ByTag("c")
	require.True(t, ok)
	assert.Equal(t, "C", c.Name)

	cpp, ok := ByTag("CPP")
	require.True(t, ok, "tag lookup is case-insensitive")
	assert.Equal(t, "C++", cpp.Name)

	_, ok = ByTag("cobol")
	assert.False(t, ok)
}

func TestByPath(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"src/cache.c":     "c",
		"include/cache.h": "c",
		"src/Socket.CPP":  "cpp",
		"lib/widget.hpp":  "cpp",
		"deep/path/x.cc":  "cpp",
		"deep/path/x.hxx": "cpp",
	}
	for path, tag := range cases {
		p, ok := ByPath(path)
		require.True(t, ok, "path %s", path)
		assert.Equal(t, tag, p.Tag, "path %s", path)
	}

	_, ok := ByPath("README.md")
	assert.False(t, ok)
	_, ok = ByPath("Makefile")
	assert.False(t, ok)
}

func TestTagsSorted(t *testing.T) {
	t.Parallel()

	tags := Tags()
	require.NotEmpty(t, tags)
	assert.True(t, sort.StringsAreSorted(tags))
	assert.Contains(t, tags, "c")
	assert.Contains(t, tags, "cpp")

	profiles := All()
	require.Len(t, profiles, len(tags))
	for i, p := range profiles {
		assert.Equal(t, tags[i], p.Tag)
	}
}

func TestKeywordClassification(t *testing.T) {
	t.Parallel()

	c, _ := ByTag("c")
	assert.True(t, c.IsDeclKeyword("struct"))
	assert.True(t, c.IsDeclKeyword("typedef"))
	assert.False(t, c.IsDeclKeyword("class"), "class is not a C keyword")
	assert.True(t, c.IsControlKeyword("while"))
	assert.False(t, c.IsControlKeyword("struct"))

	cpp, _ := ByTag("cpp")
	assert.True(t, cpp.IsDeclKeyword("class"))
	assert.True(t, cpp.IsDeclKeyword("namespace"))
	assert.True(t, cpp.Keywords["noexcept"])
}
