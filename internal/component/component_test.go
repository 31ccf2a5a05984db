package component_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuslang/langc/internal/component"
	"github.com/tuslang/langc/internal/wasm"
)

func sampleMain() *wasm.Module {
	return &wasm.Module{
		Functions: []wasm.Function{
			{Name: "main", Type: wasm.FuncType{Results: []wasm.ValType{wasm.I32}}, Body: []wasm.Instr{wasm.I32Const(0)}, Export: true},
		},
	}
}

func TestWrapProducesComponentPreamble(t *testing.T) {
	bin, err := component.Wrap(sampleMain())
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(bin), 8)
	assert.Equal(t, []byte{0x00, 0x61, 0x73, 0x6D}, bin[0:4])
	assert.Equal(t, []byte{0x0D, 0x00, 0x01, 0x00}, bin[4:8], "component layer/version, distinct from a bare core module's 01 00 00 00")
}

func TestExtractCoreModuleRoundTrips(t *testing.T) {
	main := sampleMain()
	wantCore, err := main.Encode()
	require.NoError(t, err)

	wrapped, err := component.Wrap(main)
	require.NoError(t, err)

	gotCore, err := component.ExtractCoreModule(wrapped)
	require.NoError(t, err)
	assert.Equal(t, wantCore, gotCore)
}

func TestWrapRejectsModuleWithoutMain(t *testing.T) {
	m := &wasm.Module{Functions: []wasm.Function{
		{Name: "helper", Type: wasm.FuncType{Results: []wasm.ValType{wasm.I32}}, Body: []wasm.Instr{wasm.I32Const(0)}, Export: true},
	}}
	_, err := component.Wrap(m)
	assert.Error(t, err)
}

func TestExtractCoreModuleRejectsBareModule(t *testing.T) {
	m := sampleMain()
	bare, err := m.Encode()
	require.NoError(t, err)
	_, err = component.ExtractCoreModule(bare)
	assert.Error(t, err)
}
