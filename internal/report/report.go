// Package report renders extraction results for humans and machines.
// Rendering is pure: a reporter takes assembled models and writes to an
// io.Writer, touching no global state.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/declscan/declscan/internal/extract"
	"github.com/declscan/declscan/internal/model"
)

// Format selects an output rendering.
type Format string

const (
	FormatTree     Format = "tree"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
	FormatPaths    Format = "paths"
	FormatSummary  Format = "summary"
)

// Formats lists the supported format names.
func Formats() []string {
	return []string{
		string(FormatTree), string(FormatJSON), string(FormatMarkdown),
		string(FormatPaths), string(FormatSummary),
	}
}

// ParseFormat maps a user-supplied name to a Format.
func ParseFormat(name string) (Format, error) {
	switch Format(strings.ToLower(name)) {
	case FormatTree:
		return FormatTree, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatMarkdown:
		return FormatMarkdown, nil
	case FormatPaths:
		return FormatPaths, nil
	case FormatSummary:
		return FormatSummary, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want one of %s)",
			name, strings.Join(Formats(), ", "))
	}
}

// Reporter renders extraction results in one format.
type Reporter struct {
	format      Format
	lineNumbers bool
}

// Option configures a Reporter.
type Option func(*Reporter)

// WithLineNumbers annotates tree and markdown output with source lines.
func WithLineNumbers() Option {
	return func(r *Reporter) { r.lineNumbers = true }
}

// New creates a Reporter for the given format.
func New(format Format, opts ...Option) *Reporter {
	r := &Reporter{format: format}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Write renders results to w. Results with a nil model (failed files)
// appear in the JSON diagnostics and are skipped by the other formats.
func (r *Reporter) Write(w io.Writer, results []extract.Result) error {
	switch r.format {
	case FormatTree:
		return r.writeTree(w, results)
	case FormatJSON:
		return r.writeJSON(w, results)
	case FormatMarkdown:
		return r.writeMarkdown(w, results)
	case FormatPaths:
		return r.writePaths(w, results)
	case FormatSummary:
		return r.writeSummary(w, results)
	default:
		return fmt.Errorf("unknown output format %q", r.format)
	}
}

func (r *Reporter) writeTree(w io.Writer, results []extract.Result) error {
	for _, res := range results {
		if res.Model == nil {
			continue
		}
		if _, err := fmt.Fprintf(w, "%s (%s)\n", res.Path, res.Model.Language); err != nil {
			return err
		}
		var walkErr error
		res.Model.Walk(func(d *model.Declaration, depth int) bool {
			if walkErr != nil {
				return false
			}
			indent := strings.Repeat("  ", depth+1)
			line := fmt.Sprintf("%s%s %s", indent, d.Kind, displayName(d))
			if d.Signature != "" {
				line += " " + d.Signature
			}
			if r.lineNumbers {
				line += fmt.Sprintf("  [line %d]", d.Line)
			}
			if flags := flagNames(d.Flags); len(flags) > 0 {
				line += " !" + strings.Join(flags, ",")
			}
			_, walkErr = fmt.Fprintln(w, line)
			return true
		})
		if walkErr != nil {
			return walkErr
		}
	}
	return nil
}

// jsonDecl is the wire form of one declaration.
type jsonDecl struct {
	Kind      string     `json:"kind"`
	Name      string     `json:"name"`
	Signature string     `json:"signature,omitempty"`
	Line      int        `json:"line"`
	Span      [2]int     `json:"span"`
	Flags     []string   `json:"flags,omitempty"`
	Children  []jsonDecl `json:"children,omitempty"`
}

type jsonFile struct {
	Path         string     `json:"path"`
	Language     string     `json:"language,omitempty"`
	Declarations []jsonDecl `json:"declarations,omitempty"`
	Error        string     `json:"error,omitempty"`
}

type jsonEnvelope struct {
	RunID       string     `json:"run_id"`
	GeneratedAt time.Time  `json:"generated_at"`
	FileCount   int        `json:"file_count"`
	Files       []jsonFile `json:"files"`
}

func (r *Reporter) writeJSON(w io.Writer, results []extract.Result) error {
	env := jsonEnvelope{
		RunID:       uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
		FileCount:   len(results),
		Files:       make([]jsonFile, 0, len(results)),
	}
	for _, res := range results {
		jf := jsonFile{Path: res.Path}
		if res.Err != nil {
			jf.Error = res.Err.Error()
		}
		if res.Model != nil {
			jf.Language = res.Model.Language
			for _, id := range res.Model.Roots() {
				jf.Declarations = append(jf.Declarations, toJSONDecl(res.Model, id))
			}
		}
		env.Files = append(env.Files, jf)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(env)
}

func toJSONDecl(m *model.Model, id model.DeclID) jsonDecl {
	d := m.Decl(id)
	jd := jsonDecl{
		Kind:      string(d.Kind),
		Name:      d.Name,
		Signature: d.Signature,
		Line:      d.Line,
		Span:      [2]int{d.Span.Start, d.Span.End},
		Flags:     flagNames(d.Flags),
	}
	for _, child := range d.Children {
		jd.Children = append(jd.Children, toJSONDecl(m, child))
	}
	return jd
}

func (r *Reporter) writeMarkdown(w io.Writer, results []extract.Result) error {
	for _, res := range results {
		if res.Model == nil {
			continue
		}
		if _, err := fmt.Fprintf(w, "## %s\n\n", res.Path); err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w, "```"); err != nil {
			return err
		}
		var walkErr error
		res.Model.Walk(func(d *model.Declaration, depth int) bool {
			if walkErr != nil {
				return false
			}
			indent := strings.Repeat("  ", depth)
			line := fmt.Sprintf("%s%s %s", indent, d.Kind, displayName(d))
			if d.Signature != "" {
				line += " " + d.Signature
			}
			if r.lineNumbers {
				line += fmt.Sprintf("  (line %d)", d.Line)
			}
			_, walkErr = fmt.Fprintln(w, line)
			return true
		})
		if walkErr != nil {
			return walkErr
		}
		if _, err := fmt.Fprintf(w, "```\n\n"); err != nil {
			return err
		}
	}
	return nil
}

func (r *Reporter) writePaths(w io.Writer, results []extract.Result) error {
	for _, res := range results {
		if res.Model == nil || res.Model.Len() == 0 {
			continue
		}
		if _, err := fmt.Fprintln(w, res.Path); err != nil {
			return err
		}
	}
	return nil
}

func (r *Reporter) writeSummary(w io.Writer, results []extract.Result) error {
	totals := make(map[model.Kind]int)
	files, failed := 0, 0
	for _, res := range results {
		if res.Err != nil {
			failed++
			continue
		}
		files++
		for kind, n := range res.Model.CountByKind() {
			totals[kind] += n
		}
	}

	if _, err := fmt.Fprintf(w, "files: %d", files); err != nil {
		return err
	}
	if failed > 0 {
		if _, err := fmt.Fprintf(w, " (%d failed)", failed); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}

	kinds := make([]string, 0, len(totals))
	for kind := range totals {
		kinds = append(kinds, string(kind))
	}
	sort.Strings(kinds)
	for _, kind := range kinds {
		if _, err := fmt.Fprintf(w, "%-10s %d\n", kind, totals[model.Kind(kind)]); err != nil {
			return err
		}
	}
	return nil
}

func displayName(d *model.Declaration) string {
	if d.Name == "" {
		return "<anonymous>"
	}
	return d.Name
}

func flagNames(f model.DiagFlag) []string {
	var names []string
	if f.Has(model.FlagUnresolvedName) {
		names = append(names, "unresolved-name")
	}
	if f.Has(model.FlagTruncated) {
		names = append(names, "truncated")
	}
	return names
}
