// Package codegen lowers a parsed program to the core WebAssembly module
// that the component template embeds (spec.md §4.3's "Main" module):
// function types and locals from the AST's own declarations, instruction
// sequences produced statement-by-statement and expression-by-expression,
// plus the two WASI-backed builtins every compiled program gets for free.
package codegen

import (
	"fmt"
	"strconv"

	"github.com/tuslang/langc/internal/ast"
	"github.com/tuslang/langc/internal/diagnostic"
	"github.com/tuslang/langc/internal/wasm"
)

// logger is silent unless LANGC_DEBUG is set in the environment; Lower logs
// one record per function it lowers, the emitter's equivalent of the
// lexer's and parser's own per-stage debug trace.
var logger = diagnostic.DebugLogger("codegen")

// fdWriteType is the signature of the one import the Main module ever
// needs: WASI preview1's fd_write(fd, iovs_ptr, iovs_len, nwritten_ptr) -> errno.
var fdWriteType = wasm.FuncType{
	Params:  []wasm.ValType{wasm.I32, wasm.I32, wasm.I32, wasm.I32},
	Results: []wasm.ValType{wasm.I32},
}

// Lower builds the Main core module for prog: the two builtins first (so
// their function indices are stable and low), then one wasm.Function per
// source FunctionDefinition in program order.
func Lower(prog *ast.Program) (*wasm.Module, error) {
	logger.Debug("lowering program", "functions", len(prog.Functions))
	m := &wasm.Module{
		Imports: []wasm.Import{
			{Module: "wasi_snapshot_preview1", Name: "fd_write", Type: fdWriteType},
		},
		MemoryPages:      1,
		MemoryExportName: "memory",
	}

	m.Functions = append(m.Functions, printIntDecl(), printCharDecl())
	baseUserIdx := len(m.Functions)
	for _, fn := range prog.Functions {
		m.Functions = append(m.Functions, wasm.Function{
			Name:   fn.Name,
			Type:   lowerFuncType(fn),
			Export: true,
		})
	}

	fdWriteIdx, _ := m.FuncIndex("fd_write")
	m.Functions[0].Body = printIntBody(fdWriteIdx)
	m.Functions[1].Body = printCharBody(fdWriteIdx)

	for i, fn := range prog.Functions {
		logger.Debug("lowering function", "name", fn.Name, "params", len(fn.Params))
		locals, body, err := lowerFunction(fn, m)
		if err != nil {
			return nil, err
		}
		idx := baseUserIdx + i
		m.Functions[idx].Locals = locals
		m.Functions[idx].Body = body
	}

	return m, nil
}

func lowerFuncType(fn *ast.FunctionDefinition) wasm.FuncType {
	t := wasm.FuncType{Results: []wasm.ValType{lowerValType(fn.ReturnType)}}
	for _, p := range fn.Params {
		t.Params = append(t.Params, lowerValType(p.Type))
	}
	return t
}

func lowerValType(t ast.Type) wasm.ValType {
	if t.Kind == ast.I64 {
		return wasm.I64
	}
	return wasm.I32
}

// lowerFunction scans fn's body for its locals vector (only the top-level
// statements are scanned — a VariableDefinition nested inside an IfStatement
// block never reaches the function's own locals vector, matching the
// original generator's generate_locals), builds the param/local index map,
// and lowers the body.
func lowerFunction(fn *ast.FunctionDefinition, m *wasm.Module) ([]wasm.Local, []wasm.Instr, error) {
	idx := newLocalIndex()
	for _, p := range fn.Params {
		idx.declare(p.Name, lowerValType(p.Type))
	}

	var locals []wasm.Local
	for _, stmt := range fn.Body.Statements {
		if vd, ok := stmt.(*ast.VariableDefinition); ok {
			typ := lowerValType(vd.Type)
			idx.declare(vd.Name, typ)
			locals = append(locals, wasm.Local{Name: vd.Name, Type: typ})
		}
	}

	body, err := lowerBlock(fn.Body, idx, m)
	if err != nil {
		return nil, nil, fmt.Errorf("function %q: %w", fn.Name, err)
	}
	return locals, body, nil
}

// localIndex resolves a source identifier to its WebAssembly local index
// (params, then declared locals, in the order each was first seen).
type localIndex struct {
	byName map[string]uint32
	next   uint32
}

func newLocalIndex() *localIndex {
	return &localIndex{byName: make(map[string]uint32)}
}

func (l *localIndex) declare(name string, _ wasm.ValType) {
	l.byName[name] = l.next
	l.next++
}

func (l *localIndex) get(name string) (uint32, bool) {
	idx, ok := l.byName[name]
	return idx, ok
}

// lowerBlock lowers every statement in order, then — if the block ends in a
// trailing expression — appends its instructions with no Drop, leaving its
// value as the block's result.
func lowerBlock(b *ast.Block, idx *localIndex, m *wasm.Module) ([]wasm.Instr, error) {
	var out []wasm.Instr
	for _, stmt := range b.Statements {
		instrs, err := lowerStatement(stmt, idx, m)
		if err != nil {
			return nil, err
		}
		out = append(out, instrs...)
	}
	if b.Trailing != nil {
		instrs, err := lowerExpr(b.Trailing, idx, m)
		if err != nil {
			return nil, err
		}
		out = append(out, instrs...)
	}
	return out, nil
}

func lowerStatement(stmt ast.Statement, idx *localIndex, m *wasm.Module) ([]wasm.Instr, error) {
	switch s := stmt.(type) {
	case *ast.VariableDefinition:
		if s.Init == nil {
			return nil, nil
		}
		initInstrs, err := lowerExpr(s.Init, idx, m)
		if err != nil {
			return nil, err
		}
		localIdx, ok := idx.get(s.Name)
		if !ok {
			return nil, fmt.Errorf("internal error: local %q not declared", s.Name)
		}
		return append(initInstrs, wasm.LocalSet(localIdx)), nil

	case *ast.ExpressionStatement:
		exprInstrs, err := lowerExpr(s.Expr, idx, m)
		if err != nil {
			return nil, err
		}
		return append(exprInstrs, wasm.Drop()), nil

	case *ast.IfStatement:
		condInstrs, err := lowerExpr(s.Condition, idx, m)
		if err != nil {
			return nil, err
		}
		thenInstrs, err := lowerBlock(s.Then, idx, m)
		if err != nil {
			return nil, err
		}
		var elseInstrs []wasm.Instr
		if s.Else != nil {
			elseInstrs, err = lowerBlock(s.Else, idx, m)
			if err != nil {
				return nil, err
			}
		}
		return append(condInstrs, wasm.If(nil, thenInstrs, elseInstrs)), nil

	default:
		return nil, fmt.Errorf("internal error: unhandled statement type %T", stmt)
	}
}

func lowerExpr(expr ast.Expression, idx *localIndex, m *wasm.Module) ([]wasm.Instr, error) {
	switch e := expr.(type) {
	case *ast.IntegerLiteral:
		v, err := strconv.ParseInt(e.Value, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("integer literal %q does not fit in i32: %w", e.Value, err)
		}
		return []wasm.Instr{wasm.I32Const(int32(v))}, nil

	case *ast.Identifier:
		localIdx, ok := idx.get(e.Name)
		if !ok {
			return nil, fmt.Errorf("undefined local %q", e.Name)
		}
		return []wasm.Instr{wasm.LocalGet(localIdx)}, nil

	case *ast.AssignmentExpression:
		valInstrs, err := lowerExpr(e.Value, idx, m)
		if err != nil {
			return nil, err
		}
		localIdx, ok := idx.get(e.Target)
		if !ok {
			return nil, fmt.Errorf("undefined local %q", e.Target)
		}
		out := append(valInstrs, wasm.LocalSet(localIdx))
		return append(out, wasm.LocalGet(localIdx)), nil

	case *ast.FunctionCall:
		var out []wasm.Instr
		for _, arg := range e.Args {
			argInstrs, err := lowerExpr(arg, idx, m)
			if err != nil {
				return nil, err
			}
			out = append(out, argInstrs...)
		}
		calleeIdx, ok := m.FuncIndex(e.Callee)
		if !ok {
			return nil, fmt.Errorf("call to undefined function %q", e.Callee)
		}
		return append(out, wasm.Call(calleeIdx)), nil

	case *ast.BinaryExpression:
		return lowerBinary(e, idx, m)

	case *ast.UnaryExpression:
		operand, err := lowerExpr(e.Operand, idx, m)
		if err != nil {
			return nil, err
		}
		out := append(operand, wasm.I32Const(0), wasm.Simple(wasm.OpI32Ne))
		return append(out, wasm.Simple(wasm.OpI32Eqz)), nil

	case *ast.IfElseExpression:
		condInstrs, err := lowerExpr(e.Condition, idx, m)
		if err != nil {
			return nil, err
		}
		thenInstrs, err := lowerBlock(e.Then, idx, m)
		if err != nil {
			return nil, err
		}
		elseInstrs, err := lowerBlock(e.Else, idx, m)
		if err != nil {
			return nil, err
		}
		result := lowerValType(e.ReturnType)
		return append(condInstrs, wasm.If(&result, thenInstrs, elseInstrs)), nil

	default:
		return nil, fmt.Errorf("internal error: unhandled expression type %T", expr)
	}
}

func lowerBinary(e *ast.BinaryExpression, idx *localIndex, m *wasm.Module) ([]wasm.Instr, error) {
	left, err := lowerExpr(e.Left, idx, m)
	if err != nil {
		return nil, err
	}
	right, err := lowerExpr(e.Right, idx, m)
	if err != nil {
		return nil, err
	}

	if e.Op == ast.LogicalAnd || e.Op == ast.LogicalOr {
		out := append([]wasm.Instr{}, left...)
		out = append(out, wasm.I32Const(0), wasm.Simple(wasm.OpI32Ne))
		out = append(out, right...)
		out = append(out, wasm.I32Const(0), wasm.Simple(wasm.OpI32Ne))
		if e.Op == ast.LogicalAnd {
			out = append(out, wasm.Simple(wasm.OpI32And))
		} else {
			out = append(out, wasm.Simple(wasm.OpI32Or))
		}
		return out, nil
	}

	op, ok := binOpcode[e.Op]
	if !ok {
		return nil, fmt.Errorf("internal error: unhandled binary operator %v", e.Op)
	}
	out := append([]wasm.Instr{}, left...)
	out = append(out, right...)
	return append(out, wasm.Simple(op)), nil
}

var binOpcode = map[ast.BinaryOp]wasm.Op{
	ast.Add:                wasm.OpI32Add,
	ast.Subtract:           wasm.OpI32Sub,
	ast.Multiply:           wasm.OpI32Mul,
	ast.Divide:             wasm.OpI32DivS,
	ast.Equal:              wasm.OpI32Eq,
	ast.NotEqual:           wasm.OpI32Ne,
	ast.LessThan:           wasm.OpI32LtS,
	ast.LessThanOrEqual:    wasm.OpI32LeS,
	ast.GreaterThan:        wasm.OpI32GtS,
	ast.GreaterThanOrEqual: wasm.OpI32GeS,
}
