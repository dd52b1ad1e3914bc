package testutil

import (
	"context"
	"encoding/binary"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/vk/shaderpack/internal/stage"
	"github.com/vk/shaderpack/internal/toolchain"
)

// FakeDisassembly is what the fake spirv-dis prints for every artifact.
const FakeDisassembly = "; SPIR-V\n; Version: 1.5\n; Generator: fake\nOpCapability Shader\n"

// FakeSDK is an on-disk SDK layout whose tools are executed in-process.
// glslc emits FakeModule(source), spirv-opt and spirv-remap check their
// input exists, and spirv-dis prints FakeDisassembly.
type FakeSDK struct {
	Root string

	// FailTool makes that tool exit with FailCode for the asset whose base
	// name is FailAsset (every asset when empty).
	FailTool  string
	FailAsset string
	FailCode  int
	// DisFail makes every disassembly fail.
	DisFail bool
	// Delay is applied to every compile.
	Delay time.Duration

	mu    sync.Mutex
	calls map[string]int
}

// NewFakeSDK creates the bin/ layout with empty tool files under a temp dir.
func NewFakeSDK(t *testing.T) *FakeSDK {
	t.Helper()
	root := t.TempDir()
	bin := filepath.Join(root, "bin")
	require.NoError(t, os.MkdirAll(bin, 0755))
	ext := ""
	if runtime.GOOS == "windows" {
		ext = ".exe"
	}
	for _, name := range []string{toolchain.CompilerName, toolchain.OptimizerName, toolchain.RemapperName, toolchain.DisassemblerName} {
		require.NoError(t, os.WriteFile(filepath.Join(bin, name+ext), nil, 0755))
	}
	return &FakeSDK{Root: root, FailCode: 1}
}

// FakeModule is the bytecode the fake compiler produces for src: a SPIR-V
// magic number and version word followed by src, zero padded to a word.
func FakeModule(src []byte) []byte {
	code := make([]byte, 8, 8+len(src)+3)
	binary.LittleEndian.PutUint32(code, 0x07230203)
	binary.LittleEndian.PutUint32(code[4:], 0x00010500)
	code = append(code, src...)
	for len(code)%4 != 0 {
		code = append(code, 0)
	}
	return code
}

// Calls reports how often tool ran.
func (f *FakeSDK) Calls(tool string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[tool]
}

// Run implements stage.Executor.
func (f *FakeSDK) Run(ctx context.Context, name string, args ...string) (stage.Result, error) {
	tool := strings.TrimSuffix(filepath.Base(name), ".exe")
	f.mu.Lock()
	if f.calls == nil {
		f.calls = make(map[string]int)
	}
	f.calls[tool]++
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return stage.Result{}, err
	}

	var asset, input string
	switch tool {
	case toolchain.CompilerName:
		input = args[len(args)-1]
		asset = filepath.Base(input)
	case toolchain.OptimizerName, toolchain.RemapperName:
		input = args[len(args)-3]
		asset = strings.TrimSuffix(filepath.Base(input), ".spv")
	case toolchain.DisassemblerName:
		input = args[0]
		asset = strings.TrimSuffix(filepath.Base(input), ".spv")
	}

	if tool == f.FailTool && (f.FailAsset == "" || f.FailAsset == asset) {
		return stage.Result{ExitCode: f.FailCode, Output: []byte(asset + ": error: " + tool + " failed\n")}, nil
	}

	switch tool {
	case toolchain.CompilerName:
		if f.Delay > 0 {
			select {
			case <-time.After(f.Delay):
			case <-ctx.Done():
				return stage.Result{}, ctx.Err()
			}
		}
		src, err := os.ReadFile(input)
		if err != nil {
			return stage.Result{ExitCode: 2, Output: []byte(err.Error())}, nil
		}
		out := args[len(args)-2]
		return stage.Result{}, os.WriteFile(out, FakeModule(src), 0644)
	case toolchain.OptimizerName, toolchain.RemapperName:
		if _, err := os.Stat(input); err != nil {
			return stage.Result{ExitCode: 2, Output: []byte(err.Error())}, nil
		}
	case toolchain.DisassemblerName:
		if f.DisFail {
			return stage.Result{ExitCode: 1, Output: []byte("error: invalid module\n")}, nil
		}
		return stage.Result{Output: []byte(FakeDisassembly)}, nil
	}
	return stage.Result{}, nil
}
