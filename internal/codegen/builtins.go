package codegen

import "github.com/tuslang/langc/internal/wasm"

// Scratch memory layout the two builtins share. Nothing else in a compiled
// program ever touches these offsets; user locals live entirely in the
// WebAssembly local index space, never in linear memory.
const (
	itoaBufOffset  = 0  // 16 bytes: decimal digits of print_int's argument, written back-to-front
	itoaBufSize    = 16
	charBufOffset  = 16 // 4 bytes: the UTF-8 encoding of print_char's argument
	iovecOffset    = 32 // 8 bytes: {ptr: i32, len: i32} passed to fd_write
	nwrittenOffset = 40 // 4 bytes: fd_write's output param, result unused
)

var i32Result = wasm.I32

func printIntDecl() wasm.Function {
	return wasm.Function{
		Name: "print_int",
		Type: wasm.FuncType{Params: []wasm.ValType{wasm.I32}, Results: []wasm.ValType{wasm.I32}},
		// locals 1-4: isNeg, n, pos, len (local 0 is the x parameter itself)
		Locals: []wasm.Local{
			{Name: "isNeg", Type: wasm.I32},
			{Name: "n", Type: wasm.I32},
			{Name: "pos", Type: wasm.I32},
			{Name: "len", Type: wasm.I32},
		},
	}
}

func printCharDecl() wasm.Function {
	return wasm.Function{
		Name: "print_char",
		Type: wasm.FuncType{Params: []wasm.ValType{wasm.I32}, Results: []wasm.ValType{wasm.I32}},
		// local 1: len (local 0 is the c parameter itself)
		Locals: []wasm.Local{
			{Name: "len", Type: wasm.I32},
		},
	}
}

// printIntBody writes the signed decimal form of local 0 to WASI stdout.
// Locals: 0 = x (param), 1 = isNeg, 2 = n (the non-negative magnitude,
// destructively divided down to 0 one digit at a time), 3 = pos (a cursor
// into the scratch buffer, starting past its end and moving backward), 4 =
// len (the final byte count, including a leading '-' if present).
func printIntBody(fdWriteIdx uint32) []wasm.Instr {
	const (
		x      = 0
		isNeg  = 1
		n      = 2
		pos    = 3
		length = 4
	)
	bufEnd := int32(itoaBufOffset + itoaBufSize)

	var out []wasm.Instr

	// isNeg = x < 0
	out = append(out,
		wasm.LocalGet(x), wasm.I32Const(0), wasm.Simple(wasm.OpI32LtS),
		wasm.LocalSet(isNeg),
	)

	// n = isNeg ? (0 - x) : x
	out = append(out, wasm.LocalGet(isNeg), wasm.If(
		&i32Result,
		[]wasm.Instr{wasm.I32Const(0), wasm.LocalGet(x), wasm.Simple(wasm.OpI32Sub)},
		[]wasm.Instr{wasm.LocalGet(x)},
	), wasm.LocalSet(n))

	// pos = bufEnd
	out = append(out, wasm.I32Const(bufEnd), wasm.LocalSet(pos))

	// do { pos--; *pos = '0' + n%10; n /= 10 } while (n != 0)
	loopBody := []wasm.Instr{
		wasm.LocalGet(pos), wasm.I32Const(1), wasm.Simple(wasm.OpI32Sub), wasm.LocalTee(pos),
		wasm.LocalGet(n), wasm.I32Const(10), wasm.Simple(wasm.OpI32RemU), wasm.I32Const('0'), wasm.Simple(wasm.OpI32Add),
		wasm.Store8(0),
		wasm.LocalGet(n), wasm.I32Const(10), wasm.Simple(wasm.OpI32DivU), wasm.LocalSet(n),
		wasm.LocalGet(n), wasm.I32Const(0), wasm.Simple(wasm.OpI32Ne), wasm.BrIf(0),
	}
	out = append(out, wasm.Loop(loopBody))

	// if (isNeg) { pos--; *pos = '-'; }
	out = append(out, wasm.LocalGet(isNeg), wasm.If(nil, []wasm.Instr{
		wasm.LocalGet(pos), wasm.I32Const(1), wasm.Simple(wasm.OpI32Sub), wasm.LocalTee(pos),
		wasm.I32Const('-'), wasm.Store8(0),
	}, nil))

	// len = bufEnd - pos
	out = append(out, wasm.I32Const(bufEnd), wasm.LocalGet(pos), wasm.Simple(wasm.OpI32Sub), wasm.LocalSet(length))

	out = append(out, writeIovecAndFlush([]wasm.Instr{wasm.LocalGet(pos)}, length, fdWriteIdx)...)
	out = append(out, wasm.I32Const(0))
	return out
}

// printCharBody UTF-8 encodes local 0 (a Unicode scalar value) into the
// shared char scratch buffer and writes it to WASI stdout.
// Locals: 0 = c (param), 1 = len (how many bytes the encoding used).
func printCharBody(fdWriteIdx uint32) []wasm.Instr {
	const (
		c      = 0
		length = 1
	)
	chain := encodeChain(c, length)

	var out []wasm.Instr
	out = append(out, chain...)
	out = append(out, writeIovecAndFlush([]wasm.Instr{wasm.I32Const(charBufOffset)}, length, fdWriteIdx)...)
	out = append(out, wasm.I32Const(0))
	return out
}

// writeIovecAndFlush builds the iovec at iovecOffset from ptrInstrs (pushes
// the buffer start address) and lenLocal, then calls fd_write(1,
// iovecOffset, 1, nwrittenOffset), discarding the errno result.
func writeIovecAndFlush(ptrInstrs []wasm.Instr, lenLocal int, fdWriteIdx uint32) []wasm.Instr {
	var out []wasm.Instr
	out = append(out, wasm.I32Const(iovecOffset))
	out = append(out, ptrInstrs...)
	out = append(out, wasm.Store(0))
	out = append(out, wasm.I32Const(iovecOffset))
	out = append(out, wasm.LocalGet(uint32(lenLocal)))
	out = append(out, wasm.Store(4))
	out = append(out,
		wasm.I32Const(1),
		wasm.I32Const(iovecOffset),
		wasm.I32Const(1),
		wasm.I32Const(nwrittenOffset),
		wasm.Call(fdWriteIdx),
		wasm.Drop(),
	)
	return out
}

// encodeChain builds the nested if/else that picks a 1-, 2-, 3-, or 4-byte
// UTF-8 encoding for local cIdx and writes it into the char scratch buffer,
// setting lenIdx to the byte count used.
func encodeChain(cIdx, lenIdx int) []wasm.Instr {
	branch := func(n int) []wasm.Instr {
		instrs := storeBytes(charBufOffset, utf8Bytes(cIdx, n))
		return append(instrs, wasm.I32Const(int32(n)), wasm.LocalSet(uint32(lenIdx)))
	}

	threeOrFour := append(lessThan(cIdx, 0x10000), wasm.If(nil, branch(3), branch(4)))
	twoOrMore := append(lessThan(cIdx, 0x800), wasm.If(nil, branch(2), threeOrFour))
	return append(lessThan(cIdx, 0x80), wasm.If(nil, branch(1), twoOrMore))
}

func lessThan(idx int, v int32) []wasm.Instr {
	return []wasm.Instr{wasm.LocalGet(uint32(idx)), wasm.I32Const(v), wasm.Simple(wasm.OpI32LtS)}
}

func storeBytes(base int32, byteExprs [][]wasm.Instr) []wasm.Instr {
	var out []wasm.Instr
	for i, expr := range byteExprs {
		out = append(out, wasm.I32Const(base+int32(i)))
		out = append(out, expr...)
		out = append(out, wasm.Store8(0))
	}
	return out
}

// utf8Bytes returns, for an n-byte UTF-8 encoding of the scalar in local
// cIdx, one instruction sequence per output byte (most significant first).
func utf8Bytes(cIdx, n int) [][]wasm.Instr {
	switch n {
	case 1:
		return [][]wasm.Instr{{wasm.LocalGet(uint32(cIdx))}}
	case 2:
		return [][]wasm.Instr{
			byteExpr(cIdx, 6, 0x1F, 0xC0),
			byteExpr(cIdx, 0, 0x3F, 0x80),
		}
	case 3:
		return [][]wasm.Instr{
			byteExpr(cIdx, 12, 0x0F, 0xE0),
			byteExpr(cIdx, 6, 0x3F, 0x80),
			byteExpr(cIdx, 0, 0x3F, 0x80),
		}
	default:
		return [][]wasm.Instr{
			byteExpr(cIdx, 18, 0x07, 0xF0),
			byteExpr(cIdx, 12, 0x3F, 0x80),
			byteExpr(cIdx, 6, 0x3F, 0x80),
			byteExpr(cIdx, 0, 0x3F, 0x80),
		}
	}
}

// byteExpr computes ((c >> shift) & mask) | tag.
func byteExpr(cIdx int, shift uint32, mask, tag int32) []wasm.Instr {
	out := []wasm.Instr{wasm.LocalGet(uint32(cIdx))}
	if shift > 0 {
		out = append(out, wasm.I32Const(int32(shift)), wasm.Simple(wasm.OpI32ShrU))
	}
	out = append(out, wasm.I32Const(mask), wasm.Simple(wasm.OpI32And))
	out = append(out, wasm.I32Const(tag), wasm.Simple(wasm.OpI32Or))
	return out
}
