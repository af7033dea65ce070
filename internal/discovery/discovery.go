// Package discovery walks a directory tree and loads the source files the
// extraction pipeline can work on: known language, not ignored, not
// binary, not oversized.
package discovery

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"

	"github.com/declscan/declscan/internal/lang"
	"github.com/declscan/declscan/internal/source"
)

// DefaultIgnorePatterns are skipped in every walk unless overridden.
var DefaultIgnorePatterns = []string{
	"**/.git/**",
	"**/node_modules/**",
	"**/build/**",
	"**/target/**",
	"**/vendor/**",
}

// SkipReason says why a walked file was not loaded.
type SkipReason string

const (
	SkipIgnored  SkipReason = "ignored"
	SkipLanguage SkipReason = "unknown-language"
	SkipBinary   SkipReason = "binary"
	SkipTooLarge SkipReason = "too-large"
)

// Skipped records one file the walk saw but did not load.
type Skipped struct {
	Path   string
	Reason SkipReason
}

// compiledPattern keeps the pattern string next to its compiled form for
// the root-level **/ fallback.
type compiledPattern struct {
	pattern string
	glob    glob.Glob
}

// Discovery walks a root directory applying include and ignore globs.
type Discovery struct {
	rootDir       string
	includes      []compiledPattern
	ignores       []compiledPattern
	maxFileSize   int64
	includeHidden bool
}

// Option configures a Discovery.
type Option func(*Discovery)

// WithMaxFileSize overrides the size cap. Zero or negative keeps the
// default.
func WithMaxFileSize(n int64) Option {
	return func(d *Discovery) {
		if n > 0 {
			d.maxFileSize = n
		}
	}
}

// WithHidden includes dot-directories and dot-files in the walk.
func WithHidden() Option {
	return func(d *Discovery) { d.includeHidden = true }
}

// New compiles the glob patterns and returns a Discovery rooted at
// rootDir. Empty includes means every file with a known language.
func New(rootDir string, includes, ignores []string, opts ...Option) (*Discovery, error) {
	d := &Discovery{
		rootDir:     rootDir,
		maxFileSize: source.DefaultMaxFileSize,
	}

	var err error
	if d.includes, err = compilePatterns(includes); err != nil {
		return nil, err
	}
	if ignores == nil {
		ignores = DefaultIgnorePatterns
	}
	if d.ignores, err = compilePatterns(ignores); err != nil {
		return nil, err
	}

	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

func compilePatterns(patterns []string) ([]compiledPattern, error) {
	compiled := make([]compiledPattern, 0, len(patterns))
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("bad glob pattern %q: %w", pattern, err)
		}
		compiled = append(compiled, compiledPattern{pattern: pattern, glob: g})
	}
	return compiled, nil
}

// Discover walks the tree and loads every matching file. Skipped files
// are reported, not silently dropped; walk errors on unreadable entries
// abort the walk.
func (d *Discovery) Discover() ([]*source.File, []Skipped, error) {
	var files []*source.File
	var skipped []Skipped

	err := filepath.Walk(d.rootDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(d.rootDir, path)
		if err != nil {
			return err
		}
		relPath = filepath.ToSlash(relPath)

		if info.IsDir() {
			if relPath == "." {
				return nil
			}
			if !d.includeHidden && strings.HasPrefix(info.Name(), ".") {
				return filepath.SkipDir
			}
			if d.shouldIgnore(relPath) {
				return filepath.SkipDir
			}
			return nil
		}

		if !d.includeHidden && strings.HasPrefix(info.Name(), ".") {
			return nil
		}
		if d.shouldIgnore(relPath) || !d.matchesInclude(relPath) {
			skipped = append(skipped, Skipped{Path: relPath, Reason: SkipIgnored})
			return nil
		}

		if _, ok := lang.ByPath(path); !ok {
			skipped = append(skipped, Skipped{Path: relPath, Reason: SkipLanguage})
			return nil
		}
		if info.Size() > d.maxFileSize {
			skipped = append(skipped, Skipped{Path: relPath, Reason: SkipTooLarge})
			return nil
		}

		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		if source.IsBinary(content) {
			skipped = append(skipped, Skipped{Path: relPath, Reason: SkipBinary})
			return nil
		}

		f, err := source.NewFromPath(relPath, content)
		if err != nil {
			return err
		}
		files = append(files, f)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return files, skipped, nil
}

// LoadFile loads a single explicit path, applying the same binary and
// size checks as the walk but no glob filtering.
func (d *Discovery) LoadFile(path string) (*source.File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.Size() > d.maxFileSize {
		return nil, fmt.Errorf("%s exceeds size limit (%d bytes)", path, d.maxFileSize)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if source.IsBinary(content) {
		return nil, fmt.Errorf("%s looks binary", path)
	}
	return source.NewFromPath(path, content)
}

func (d *Discovery) shouldIgnore(relPath string) bool {
	// The tool's own state directory is never scanned.
	if relPath == ".declscan" || strings.HasPrefix(relPath, ".declscan/") {
		return true
	}
	if matchesAny(relPath, d.ignores) {
		return true
	}
	// A directory should match its own "dir/**" pattern.
	return matchesAny(relPath+"/**", d.ignores)
}

// matchesInclude reports whether relPath passes the include patterns.
// No patterns means everything is included.
func (d *Discovery) matchesInclude(relPath string) bool {
	if len(d.includes) == 0 {
		return true
	}
	if matchesAny(relPath, d.includes) {
		return true
	}
	// Let "**/*.c" also match a root-level "main.c".
	if !strings.Contains(relPath, "/") {
		for _, cp := range d.includes {
			if rest, ok := strings.CutPrefix(cp.pattern, "**/"); ok {
				if g, err := glob.Compile(rest, '/'); err == nil && g.Match(relPath) {
					return true
				}
			}
		}
	}
	return false
}

func matchesAny(path string, patterns []compiledPattern) bool {
	for _, cp := range patterns {
		if cp.glob.Match(path) {
			return true
		}
	}
	return false
}
