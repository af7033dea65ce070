// Package extract wires the tokenizer, scanner, and assembler into the
// per-file extraction operation, plus a concurrent runner for batches of
// files.
package extract

import (
	"fmt"

	"github.com/declscan/declscan/internal/lang"
	"github.com/declscan/declscan/internal/model"
	"github.com/declscan/declscan/internal/scanner"
	"github.com/declscan/declscan/internal/source"
)

// Extract enumerates the declarations of one source file. It is pure and
// deterministic: the same file always yields a structurally identical
// model. Malformed input never fails extraction; problems surface as
// diagnostic flags on individual declarations. The only error condition
// is a language tag with no registered profile.
func Extract(file *source.File) (*model.Model, error) {
	profile, ok := lang.ByTag(file.Language)
	if !ok {
		return nil, fmt.Errorf("no language profile for tag %q (file %s)", file.Language, file.Path)
	}

	decls := scanner.New(file.Content, profile).Scan()

	asm := model.NewAssembler(file.Path, profile.Tag)
	for _, d := range decls {
		asm.Add(d)
	}
	return asm.Finish(), nil
}
