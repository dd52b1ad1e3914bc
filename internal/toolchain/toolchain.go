// Package toolchain locates the Vulkan SDK tools that compile, optimize,
// remap and disassemble SPIR-V.
package toolchain

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/vk/shaderpack/internal/ctxlog"
	"github.com/vk/shaderpack/internal/shadererr"
)

// SDKEnv is the environment variable consulted when no SDK root is configured.
const SDKEnv = "VULKAN_SDK"

// Tool names, without platform executable suffix.
const (
	CompilerName     = "glslc"
	OptimizerName    = "spirv-opt"
	RemapperName     = "spirv-remap"
	DisassemblerName = "spirv-dis"
)

// binDirs are probed under the SDK root in order. Windows installs use Bin,
// Linux and macOS installs use bin.
var binDirs = []string{"Bin", "bin"}

// Toolchain holds resolved absolute tool paths. It is read-only after
// Locate returns and may be shared by all workers.
type Toolchain struct {
	SDKRoot      string
	Compiler     string
	Optimizer    string
	Remapper     string
	Disassembler string
}

// Locate resolves the four tools under sdkRoot for the running platform.
func Locate(ctx context.Context, sdkRoot string) (*Toolchain, error) {
	return locate(ctx, sdkRoot, runtime.GOOS)
}

func locate(ctx context.Context, sdkRoot, goos string) (*Toolchain, error) {
	logger := ctxlog.FromContext(ctx)

	if sdkRoot == "" {
		return nil, shadererr.New(shadererr.ToolNotFound, "", "locate",
			fmt.Errorf("SDK root is not set (configure toolchain.sdk_root or %s)", SDKEnv))
	}
	info, err := os.Stat(sdkRoot)
	if err != nil {
		return nil, shadererr.New(shadererr.ToolNotFound, "", "locate", fmt.Errorf("SDK root %s: %w", sdkRoot, err))
	}
	if !info.IsDir() {
		return nil, shadererr.New(shadererr.ToolNotFound, "", "locate", fmt.Errorf("SDK root %s is not a directory", sdkRoot))
	}

	tc := &Toolchain{SDKRoot: sdkRoot}
	targets := []struct {
		name string
		dst  *string
	}{
		{CompilerName, &tc.Compiler},
		{OptimizerName, &tc.Optimizer},
		{RemapperName, &tc.Remapper},
		{DisassemblerName, &tc.Disassembler},
	}
	for _, t := range targets {
		p, err := find(sdkRoot, t.name, goos)
		if err != nil {
			return nil, shadererr.New(shadererr.ToolNotFound, "", "locate", err)
		}
		*t.dst = p
	}

	logger.Info("Vulkan SDK located.", "sdk_root", tc.SDKRoot)
	logger.Info("Toolchain resolved.",
		"compiler", tc.Compiler,
		"optimizer", tc.Optimizer,
		"remapper", tc.Remapper,
		"disassembler", tc.Disassembler,
	)
	return tc, nil
}

func find(root, name, goos string) (string, error) {
	exe := name
	if goos == "windows" {
		exe += ".exe"
	}
	var tried []string
	for _, dir := range binDirs {
		p := filepath.Join(root, dir, exe)
		info, err := os.Stat(p)
		if err == nil && !info.IsDir() {
			return p, nil
		}
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("checking %s: %w", p, err)
		}
		tried = append(tried, p)
	}
	return "", fmt.Errorf("%s not found (tried %v)", name, tried)
}
