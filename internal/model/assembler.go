package model

// Assembler builds a Model from a pre-ordered stream of declarations.
// Parentage is reconstructed purely from span containment: a declaration
// becomes a child of the innermost still-open declaration whose span
// contains it. Every added declaration appears in the finished tree
// exactly once.
type Assembler struct {
	model *Model
	open  []DeclID // stack of enclosing declarations
}

// NewAssembler starts an empty model for one source file.
func NewAssembler(path, language string) *Assembler {
	return &Assembler{
		model: &Model{Path: path, Language: language},
	}
}

// Add appends a declaration. Declarations must arrive ordered by start
// offset, with an enclosing declaration before anything inside it (the
// scanner's natural emission order).
func (a *Assembler) Add(d Declaration) DeclID {
	id := DeclID(len(a.model.decls))
	d.ID = id
	d.Parent = NoDecl
	d.Children = nil

	// Close every open declaration that cannot contain this one.
	for len(a.open) > 0 {
		top := &a.model.decls[a.open[len(a.open)-1]]
		if top.Span.Contains(d.Span) && top.ID != id {
			break
		}
		a.open = a.open[:len(a.open)-1]
	}

	if len(a.open) > 0 {
		parent := a.open[len(a.open)-1]
		d.Parent = parent
		a.model.decls = append(a.model.decls, d)
		p := &a.model.decls[parent]
		p.Children = append(p.Children, id)
	} else {
		a.model.decls = append(a.model.decls, d)
		a.model.roots = append(a.model.roots, id)
	}

	a.open = append(a.open, id)
	return id
}

// Finish seals and returns the model. The assembler must not be reused.
func (a *Assembler) Finish() *Model {
	m := a.model
	a.model = nil
	a.open = nil
	return m
}
