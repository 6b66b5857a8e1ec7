package syntax

// This file defines resolver data types referenced by the syntax tree.
// We cannot guarantee API stability for these types
// as they are closely tied to the implementation.

// A Binding ties together all identifiers that denote the same variable.
// The resolver computes a binding for every Ident that is a reference
// or declaration; labels such as property names have none.
type Binding struct {
	Scope Scope
	Kind  Kind
	Name  string

	First *Ident // declaring identifier; nil for globals and synthetic bindings

	// For Scope == ImportScope:
	Module   string // module specifier
	Imported string // name in Module, "default", or "*" for a namespace import
}

// The Scope of a Binding indicates what kind of scope it has.
type Scope uint8

const (
	UndefinedScope Scope = iota // name is not declared in the module (a global)
	LocalScope                  // name is local to a function or block
	ModuleScope                 // name is declared at top level
	ImportScope                 // name is bound by an import declaration
)

var scopeNames = [...]string{
	UndefinedScope: "undefined",
	LocalScope:     "local",
	ModuleScope:    "module",
	ImportScope:    "import",
}

func (scope Scope) String() string { return scopeNames[scope] }

// The Kind of a Binding records the construct that declared it.
type Kind uint8

const (
	GlobalKind   Kind = iota // undeclared
	VarKind                  // var
	LetKind                  // let
	ConstKind                // const
	FunctionKind             // function declaration, or named function expression
	ClassKind                // class declaration, or named class expression
	ParamKind                // function parameter
	CatchKind                // catch clause parameter
	ImportKind               // import binding
	DefaultKind              // the anonymous value of 'export default'
)

var kindNames = [...]string{
	GlobalKind:   "global",
	VarKind:      "var",
	LetKind:      "let",
	ConstKind:    "const",
	FunctionKind: "function",
	ClassKind:    "class",
	ParamKind:    "param",
	CatchKind:    "catch",
	ImportKind:   "import",
	DefaultKind:  "default",
}

func (kind Kind) String() string { return kindNames[kind] }

// An Export is an entry of a module's export table.
type Export struct {
	Name string // exported name; "default" for the default export

	// A local export refers to a module-scope or import binding.
	Binding *Binding

	// A re-export refers to a name of another module.
	Module   string // module specifier; empty for local exports
	Imported string // name in Module, or "*" for 'export * as Name from'
}
