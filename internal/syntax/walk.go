package syntax

// Visitor is called once for each declaration of the kind it is
// registered under.
type Visitor func(d *Decl)

// Walk dispatches every declaration of f to the visitor registered for
// its kind. Declarations are visited in source pre-order, each exactly once.
func Walk(f *File, visitors map[DeclKind]Visitor) {
	if f == nil || len(visitors) == 0 {
		return
	}
	for _, d := range f.Decls {
		if d == nil {
			continue
		}
		if v, ok := visitors[d.Kind]; ok && v != nil {
			v(d)
		}
	}
}
