// Package source defines the immutable input unit of the extraction
// pipeline. Reading bytes off disk is the caller's job; a File is just
// path, content, and language tag.
package source

import (
	"bytes"
	"fmt"

	"github.com/declscan/declscan/internal/lang"
)

// DefaultMaxFileSize is the largest file the discovery layer will load,
// in bytes.
const DefaultMaxFileSize = 10 * 1024 * 1024

// ErrUnknownLanguage is wrapped by NewFromPath when no profile matches
// the file extension.
var ErrUnknownLanguage = fmt.Errorf("unknown language")

// File is one source file to extract from. Immutable once constructed.
type File struct {
	Path     string
	Content  []byte
	Language string
}

// New creates a File with an explicit language tag.
func New(path string, content []byte, language string) *File {
	return &File{Path: path, Content: content, Language: language}
}

// NewFromPath creates a File, inferring the language from the path's
// extension.
func NewFromPath(path string, content []byte) (*File, error) {
	profile, ok := lang.ByPath(path)
	if !ok {
		return nil, fmt.Errorf("%w for %s", ErrUnknownLanguage, path)
	}
	return New(path, content, profile.Tag), nil
}

// IsBinary reports whether content is likely binary. A NUL byte anywhere
// is taken as evidence; text files do not contain NUL.
func IsBinary(content []byte) bool {
	return bytes.IndexByte(content, 0) >= 0
}
