// Package wasm hand-encodes the subset of the core WebAssembly binary
// format (https://webassembly.github.io/spec/core/binary/) this compiler
// needs: function types, one import, plain linear memory, exports, and
// function bodies built from a small structured-control-flow instruction
// set. There is no WAT parser here and no general disassembler — only
// what spec.md's emitter actually has to produce.
package wasm

// ValType is a WebAssembly value type. Only the two this language's Type
// maps to are needed.
type ValType byte

const (
	I32 ValType = 0x7F
	I64 ValType = 0x7E
)

// FuncType is a function signature.
type FuncType struct {
	Params  []ValType
	Results []ValType
}

func (a FuncType) equal(b FuncType) bool {
	if len(a.Params) != len(b.Params) || len(a.Results) != len(b.Results) {
		return false
	}
	for i := range a.Params {
		if a.Params[i] != b.Params[i] {
			return false
		}
	}
	for i := range a.Results {
		if a.Results[i] != b.Results[i] {
			return false
		}
	}
	return true
}

// Import is a single function import. This compiler only ever imports one
// thing (wasi_snapshot_preview1.fd_write), but the encoder supports a
// vector of them for generality.
type Import struct {
	Module string
	Name   string
	Type   FuncType
}

// Local is one named local slot; Name exists only so internal/codegen can
// resolve an identifier to an index while lowering — it is never encoded
// (this module carries no name section).
type Local struct {
	Name string
	Type ValType
}

// Function is a module-defined (non-imported) function.
type Function struct {
	Name   string
	Type   FuncType
	Locals []Local // in addition to the function's own parameters
	Body   []Instr
	Export bool // whether to export it under Name
}

// Module is the whole core module this compiler ever needs to produce:
// one memory, some imports, some defined functions, with every function
// reachable by its declared index (imports first, then defined functions,
// matching the core module index space rule).
type Module struct {
	Imports          []Import
	Functions        []Function
	MemoryPages      uint32
	MemoryExportName string // empty means do not export memory
}

// FuncIndex returns the module-wide function index of name, searching
// imports then defined functions in declaration order (the core module
// index space). ok is false if no import or function has that name.
func (m *Module) FuncIndex(name string) (uint32, bool) {
	for i, imp := range m.Imports {
		if imp.Name == name {
			return uint32(i), true
		}
	}
	base := uint32(len(m.Imports))
	for i, fn := range m.Functions {
		if fn.Name == name {
			return base + uint32(i), true
		}
	}
	return 0, false
}
