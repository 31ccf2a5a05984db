package wasm

// Op names a core WebAssembly instruction opcode. Only the subset this
// compiler ever emits is listed; this is not a general-purpose
// disassembler.
type Op byte

const (
	OpEnd       Op = 0x0B
	OpElse      Op = 0x05
	OpBlock     Op = 0x02
	OpLoop      Op = 0x03
	OpIf        Op = 0x04
	OpBr        Op = 0x0C
	OpBrIf      Op = 0x0D
	OpReturn    Op = 0x0F
	OpCall      Op = 0x10
	OpDrop      Op = 0x1A
	OpLocalGet  Op = 0x20
	OpLocalSet  Op = 0x21
	OpLocalTee  Op = 0x22
	OpI32Const  Op = 0x41
	OpI32Eqz    Op = 0x45
	OpI32Eq     Op = 0x46
	OpI32Ne     Op = 0x47
	OpI32LtS    Op = 0x48
	OpI32GtS    Op = 0x4A
	OpI32LeS    Op = 0x4C
	OpI32GeS    Op = 0x4E
	OpI32Add    Op = 0x6A
	OpI32Sub    Op = 0x6B
	OpI32Mul    Op = 0x6C
	OpI32DivS   Op = 0x6D
	OpI32DivU   Op = 0x6E
	OpI32RemU   Op = 0x70
	OpI32And    Op = 0x71
	OpI32Or     Op = 0x72
	OpI32ShrU   Op = 0x76

	OpI32Load   Op = 0x28
	OpI32Store  Op = 0x36
	OpI32Store8 Op = 0x3A
)

// Instr is one node of an instruction tree. Structured control flow
// (Block/Loop/If) nests its body directly as child slices instead of a
// flat byte stream with hand-tracked branch offsets, so encode (see
// encode.go) can never mismatch an End.
type Instr struct {
	Op Op

	I32   int32  // OpI32Const
	Index uint32 // OpLocalGet/Set/Tee, OpCall, OpBr/OpBrIf (relative label depth)

	// BlockResult is the declared result type of a Block/Loop/If, nil for
	// a value-less ("empty") block type.
	BlockResult *ValType

	Body []Instr // OpBlock, OpLoop, OpIf (the "then" arm)
	Else []Instr // OpIf only; nil if there is no else arm

	MemOffset uint32 // OpI32Load/Store/Store8: the memarg offset immediate (the alignment immediate is always emitted as 0, i.e. byte alignment)
}

func I32Const(v int32) Instr       { return Instr{Op: OpI32Const, I32: v} }
func LocalGet(idx uint32) Instr    { return Instr{Op: OpLocalGet, Index: idx} }
func LocalSet(idx uint32) Instr    { return Instr{Op: OpLocalSet, Index: idx} }
func LocalTee(idx uint32) Instr    { return Instr{Op: OpLocalTee, Index: idx} }
func Call(idx uint32) Instr        { return Instr{Op: OpCall, Index: idx} }
func Br(depth uint32) Instr        { return Instr{Op: OpBr, Index: depth} }
func BrIf(depth uint32) Instr      { return Instr{Op: OpBrIf, Index: depth} }
func Drop() Instr                  { return Instr{Op: OpDrop} }
func Simple(op Op) Instr           { return Instr{Op: op} }

// Block wraps body in a value-less block.
func Block(body []Instr) Instr { return Instr{Op: OpBlock, Body: body} }

// Loop wraps body in a loop whose backward branch target is the loop
// header itself (label depth 0 from directly inside it).
func Loop(body []Instr) Instr { return Instr{Op: OpLoop, Body: body} }

// If emits an if/then/else with the given result type (nil for none).
func If(result *ValType, then, els []Instr) Instr {
	return Instr{Op: OpIf, BlockResult: result, Body: then, Else: els}
}

func Load(offset uint32) Instr   { return Instr{Op: OpI32Load, MemOffset: offset} }
func Store(offset uint32) Instr  { return Instr{Op: OpI32Store, MemOffset: offset} }
func Store8(offset uint32) Instr { return Instr{Op: OpI32Store8, MemOffset: offset} }
