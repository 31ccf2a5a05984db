package wasm

import (
	"bytes"
	"fmt"
)

// uleb128 appends an unsigned LEB128 encoding of v.
func uleb128(buf *bytes.Buffer, v uint64) {
	for {
		b := byte(v & 0x7F)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		buf.WriteByte(b)
		if v == 0 {
			return
		}
	}
}

// sleb128 appends a signed LEB128 encoding of v, the form i32.const and
// branch-depth-free instructions with signed immediates require.
func sleb128(buf *bytes.Buffer, v int64) {
	for {
		b := byte(v & 0x7F)
		v >>= 7
		signBitSet := b&0x40 != 0
		done := (v == 0 && !signBitSet) || (v == -1 && signBitSet)
		if !done {
			b |= 0x80
		}
		buf.WriteByte(b)
		if done {
			return
		}
	}
}

func name(buf *bytes.Buffer, s string) {
	uleb128(buf, uint64(len(s)))
	buf.WriteString(s)
}

// section wraps body as section id, with a ULEB128 byte-length prefix.
func section(out *bytes.Buffer, id byte, body []byte) {
	out.WriteByte(id)
	uleb128(out, uint64(len(body)))
	out.Write(body)
}

func funcTypeKey(t FuncType) string {
	var b bytes.Buffer
	for _, p := range t.Params {
		b.WriteByte(byte(p))
	}
	b.WriteByte(0xFF)
	for _, r := range t.Results {
		b.WriteByte(byte(r))
	}
	return b.String()
}

// Encode produces the canonical binary encoding of the module.
func (m *Module) Encode() ([]byte, error) {
	// Deduplicate function types across imports and defined functions,
	// assigning each a type index in first-use order.
	var types []FuncType
	typeIndex := make(map[string]uint32)
	indexOf := func(t FuncType) uint32 {
		key := funcTypeKey(t)
		if idx, ok := typeIndex[key]; ok {
			return idx
		}
		idx := uint32(len(types))
		types = append(types, t)
		typeIndex[key] = idx
		return idx
	}

	importTypeIdx := make([]uint32, len(m.Imports))
	for i, imp := range m.Imports {
		importTypeIdx[i] = indexOf(imp.Type)
	}
	funcTypeIdx := make([]uint32, len(m.Functions))
	for i, fn := range m.Functions {
		funcTypeIdx[i] = indexOf(fn.Type)
	}

	var out bytes.Buffer
	out.Write([]byte{0x00, 0x61, 0x73, 0x6D}) // magic "\0asm"
	out.Write([]byte{0x01, 0x00, 0x00, 0x00}) // version 1

	// 1: Type section
	{
		var body bytes.Buffer
		uleb128(&body, uint64(len(types)))
		for _, t := range types {
			body.WriteByte(0x60)
			uleb128(&body, uint64(len(t.Params)))
			for _, p := range t.Params {
				body.WriteByte(byte(p))
			}
			uleb128(&body, uint64(len(t.Results)))
			for _, r := range t.Results {
				body.WriteByte(byte(r))
			}
		}
		section(&out, 1, body.Bytes())
	}

	// 2: Import section
	if len(m.Imports) > 0 {
		var body bytes.Buffer
		uleb128(&body, uint64(len(m.Imports)))
		for i, imp := range m.Imports {
			name(&body, imp.Module)
			name(&body, imp.Name)
			body.WriteByte(0x00) // func import kind
			uleb128(&body, uint64(importTypeIdx[i]))
		}
		section(&out, 2, body.Bytes())
	}

	// 3: Function section
	{
		var body bytes.Buffer
		uleb128(&body, uint64(len(m.Functions)))
		for _, idx := range funcTypeIdx {
			uleb128(&body, uint64(idx))
		}
		section(&out, 3, body.Bytes())
	}

	// 5: Memory section
	if m.MemoryPages > 0 {
		var body bytes.Buffer
		uleb128(&body, 1) // one memory
		body.WriteByte(0x00)
		uleb128(&body, uint64(m.MemoryPages))
		section(&out, 5, body.Bytes())
	}

	// 7: Export section
	{
		var exports []Function
		for _, fn := range m.Functions {
			if fn.Export {
				exports = append(exports, fn)
			}
		}
		count := len(exports)
		if m.MemoryExportName != "" {
			count++
		}
		var body bytes.Buffer
		uleb128(&body, uint64(count))
		for _, fn := range exports {
			idx, _ := m.FuncIndex(fn.Name)
			name(&body, fn.Name)
			body.WriteByte(0x00) // func export kind
			uleb128(&body, uint64(idx))
		}
		if m.MemoryExportName != "" {
			name(&body, m.MemoryExportName)
			body.WriteByte(0x02) // memory export kind
			uleb128(&body, 0)
		}
		section(&out, 7, body.Bytes())
	}

	// 10: Code section
	{
		var body bytes.Buffer
		uleb128(&body, uint64(len(m.Functions)))
		for _, fn := range m.Functions {
			fnBody, err := encodeFunctionBody(m, fn)
			if err != nil {
				return nil, fmt.Errorf("function %q: %w", fn.Name, err)
			}
			uleb128(&body, uint64(len(fnBody)))
			body.Write(fnBody)
		}
		section(&out, 10, body.Bytes())
	}

	return out.Bytes(), nil
}

// encodeFunctionBody encodes one code-section entry: its locals vector
// followed by its instructions and a final End.
func encodeFunctionBody(m *Module, fn Function) ([]byte, error) {
	var body bytes.Buffer

	// Group consecutive same-typed locals (the binary format is a vector
	// of (count, type) runs, not one entry per local).
	type run struct {
		count uint64
		typ   ValType
	}
	var runs []run
	for _, l := range fn.Locals {
		if len(runs) > 0 && runs[len(runs)-1].typ == l.Type {
			runs[len(runs)-1].count++
			continue
		}
		runs = append(runs, run{count: 1, typ: l.Type})
	}
	uleb128(&body, uint64(len(runs)))
	for _, r := range runs {
		uleb128(&body, r.count)
		body.WriteByte(byte(r.typ))
	}

	for _, instr := range fn.Body {
		if err := encodeInstr(m, &body, instr); err != nil {
			return nil, err
		}
	}
	body.WriteByte(byte(OpEnd))
	return body.Bytes(), nil
}

func encodeInstr(m *Module, buf *bytes.Buffer, instr Instr) error {
	switch instr.Op {
	case OpI32Const:
		buf.WriteByte(byte(OpI32Const))
		sleb128(buf, int64(instr.I32))
	case OpLocalGet, OpLocalSet, OpLocalTee, OpCall, OpBr, OpBrIf:
		buf.WriteByte(byte(instr.Op))
		uleb128(buf, uint64(instr.Index))
	case OpI32Load, OpI32Store, OpI32Store8:
		buf.WriteByte(byte(instr.Op))
		uleb128(buf, 0) // align
		uleb128(buf, uint64(instr.MemOffset))
	case OpBlock, OpLoop:
		buf.WriteByte(byte(instr.Op))
		writeBlockType(buf, instr.BlockResult)
		if err := encodeInstrs(m, buf, instr.Body); err != nil {
			return err
		}
		buf.WriteByte(byte(OpEnd))
	case OpIf:
		buf.WriteByte(byte(OpIf))
		writeBlockType(buf, instr.BlockResult)
		if err := encodeInstrs(m, buf, instr.Body); err != nil {
			return err
		}
		if instr.Else != nil {
			buf.WriteByte(byte(OpElse))
			if err := encodeInstrs(m, buf, instr.Else); err != nil {
				return err
			}
		}
		buf.WriteByte(byte(OpEnd))
	default:
		buf.WriteByte(byte(instr.Op))
	}
	return nil
}

func encodeInstrs(m *Module, buf *bytes.Buffer, instrs []Instr) error {
	for _, in := range instrs {
		if err := encodeInstr(m, buf, in); err != nil {
			return err
		}
	}
	return nil
}

func writeBlockType(buf *bytes.Buffer, result *ValType) {
	if result == nil {
		buf.WriteByte(0x40)
		return
	}
	buf.WriteByte(byte(*result))
}
