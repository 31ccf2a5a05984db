package wasm_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuslang/langc/internal/wasm"
)

func TestEncodeMagicAndVersion(t *testing.T) {
	m := &wasm.Module{
		Functions: []wasm.Function{
			{
				Name:   "main",
				Type:   wasm.FuncType{Results: []wasm.ValType{wasm.I32}},
				Body:   []wasm.Instr{wasm.I32Const(0)},
				Export: true,
			},
		},
	}
	bin, err := m.Encode()
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(bin), 8)
	assert.Equal(t, []byte{0x00, 0x61, 0x73, 0x6D}, bin[0:4])
	assert.Equal(t, []byte{0x01, 0x00, 0x00, 0x00}, bin[4:8])
}

func TestEncodeDeduplicatesFunctionTypes(t *testing.T) {
	sig := wasm.FuncType{Params: []wasm.ValType{wasm.I32, wasm.I32}, Results: []wasm.ValType{wasm.I32}}
	m := &wasm.Module{
		Functions: []wasm.Function{
			{Name: "add", Type: sig, Body: []wasm.Instr{wasm.LocalGet(0), wasm.LocalGet(1), wasm.Simple(wasm.OpI32Add)}, Export: true},
			{Name: "sub", Type: sig, Body: []wasm.Instr{wasm.LocalGet(0), wasm.LocalGet(1), wasm.Simple(wasm.OpI32Sub)}, Export: true},
		},
	}
	bin, err := m.Encode()
	require.NoError(t, err)
	// type section (id 1 at bin[8], size at bin[9]) should declare exactly
	// one type at bin[10], not two, since add/sub share a signature.
	require.Equal(t, byte(1), bin[8])
	require.Equal(t, byte(1), bin[10])
}

func TestFuncIndexAccountsForImports(t *testing.T) {
	m := &wasm.Module{
		Imports: []wasm.Import{{Module: "wasi_snapshot_preview1", Name: "fd_write", Type: wasm.FuncType{
			Params:  []wasm.ValType{wasm.I32, wasm.I32, wasm.I32, wasm.I32},
			Results: []wasm.ValType{wasm.I32},
		}}},
		Functions: []wasm.Function{
			{Name: "main", Type: wasm.FuncType{Results: []wasm.ValType{wasm.I32}}, Body: []wasm.Instr{wasm.I32Const(0)}, Export: true},
		},
	}
	idx, ok := m.FuncIndex("main")
	require.True(t, ok)
	assert.Equal(t, uint32(1), idx, "main is the second entry in the index space, after the one import")

	fdIdx, ok := m.FuncIndex("fd_write")
	require.True(t, ok)
	assert.Equal(t, uint32(0), fdIdx)
}

func TestEncodeNestedIfElse(t *testing.T) {
	result := wasm.I32
	m := &wasm.Module{
		Functions: []wasm.Function{
			{
				Name: "pick",
				Type: wasm.FuncType{Params: []wasm.ValType{wasm.I32}, Results: []wasm.ValType{wasm.I32}},
				Body: []wasm.Instr{
					wasm.LocalGet(0),
					wasm.If(&result, []wasm.Instr{wasm.I32Const(1)}, []wasm.Instr{wasm.I32Const(2)}),
				},
				Export: true,
			},
		},
	}
	bin, err := m.Encode()
	require.NoError(t, err)
	require.NotEmpty(t, bin)
}
