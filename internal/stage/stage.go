// Package stage drives the external SPIR-V toolchain for one shader:
// compile, optimize and remap run strictly in order on a private
// workspace, and the disassembler documents the result.
package stage

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/vk/shaderpack/internal/ctxlog"
	"github.com/vk/shaderpack/internal/shadererr"
	"github.com/vk/shaderpack/internal/toolchain"
)

// Stage names as they appear in errors and logs.
const (
	Compile     = "compile"
	Optimize    = "optimize"
	Remap       = "remap"
	Disassemble = "disassemble"
	Read        = "read"
)

// step is one external invocation of the chain.
type step struct {
	name string
	tool func(*toolchain.Toolchain) string
	// args builds the argument list from the source path, the artifact path
	// and the workspace directory.
	args func(src, artifact, dir string) []string
}

// chain is the fixed compile -> optimize -> remap sequence. Every step
// reads the artifact the previous one wrote.
var chain = []step{
	{
		name: Compile,
		tool: func(tc *toolchain.Toolchain) string { return tc.Compiler },
		args: func(src, artifact, _ string) []string {
			return []string{"-std=450core", "--target-env=opengl4.5", "--target-spv=spv1.5", "-o", artifact, src}
		},
	},
	{
		name: Optimize,
		tool: func(tc *toolchain.Toolchain) string { return tc.Optimizer },
		args: func(_, artifact, _ string) []string {
			return []string{"--loop-unswitch", "--merge-return", "-O", artifact, "-o", artifact}
		},
	},
	{
		name: Remap,
		tool: func(tc *toolchain.Toolchain) string { return tc.Remapper },
		args: func(_, artifact, dir string) []string {
			return []string{"--map", "all", "--strip-all", "--dce", "all", "--opt", "all", "-i", artifact, "-o", dir}
		},
	},
}

// Runner executes the chain with a resolved toolchain. It holds no per-asset
// state and may be shared between workers.
type Runner struct {
	tc      *toolchain.Toolchain
	exec    Executor
	tempDir string
}

// NewRunner returns a Runner. A nil executor runs real processes; tempDir
// empty means os.TempDir.
func NewRunner(tc *toolchain.Toolchain, ex Executor, tempDir string) *Runner {
	if ex == nil {
		ex = OSExecutor{}
	}
	return &Runner{tc: tc, exec: ex, tempDir: tempDir}
}

// Artifact is the compiled bytecode of one asset, living in its workspace
// until Close.
type Artifact struct {
	Asset string
	ws    *Workspace
}

// Path is the artifact file.
func (a *Artifact) Path() string { return a.ws.ArtifactPath() }

// Bytes reads the artifact.
func (a *Artifact) Bytes() ([]byte, error) {
	data, err := os.ReadFile(a.Path())
	if err != nil {
		return nil, shadererr.New(shadererr.EncodingError, a.Asset, Read, err)
	}
	return data, nil
}

// Close deletes the artifact and its workspace.
func (a *Artifact) Close() error {
	return a.ws.Close()
}

// Build runs compile, optimize and remap for the shader at src. On success
// the caller owns the Artifact and must Close it. On failure nothing is
// left on disk and the error names the failing stage; no later stage runs.
func (r *Runner) Build(ctx context.Context, src string) (_ *Artifact, err error) {
	logger := ctxlog.FromContext(ctx)

	ws, err := NewWorkspace(r.tempDir, src)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			ws.Close()
		}
	}()

	for _, st := range chain {
		args := st.args(src, ws.ArtifactPath(), ws.Dir())
		if err := r.invoke(ctx, src, st.name, st.tool(r.tc), args); err != nil {
			return nil, err
		}
		logger.Debug("Stage finished.", "stage", st.name)
	}

	if _, err := os.Stat(ws.ArtifactPath()); err != nil {
		return nil, shadererr.New(shadererr.EncodingError, src, Remap, fmt.Errorf("remapped artifact missing: %w", err))
	}
	return &Artifact{Asset: src, ws: ws}, nil
}

// Disassemble runs the disassembler with comments on the artifact and
// returns its output split into lines.
func (r *Runner) Disassemble(ctx context.Context, a *Artifact) ([]string, error) {
	res, err := r.run(ctx, r.tc.Disassembler, a.Path(), "--comment")
	if err != nil {
		return nil, err
	}
	if res.ExitCode != 0 {
		return nil, toolFailure(a.Asset, Disassemble, res)
	}
	return splitLines(string(res.Output)), nil
}

func (r *Runner) invoke(ctx context.Context, src, stage, tool string, args []string) error {
	res, err := r.run(ctx, tool, args...)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("asset %s: stage %s: %w", src, stage, err)
		}
		return &shadererr.Error{
			Kind:     shadererr.ToolExecutionFailed,
			Asset:    src,
			Stage:    stage,
			ExitCode: -1,
			Output:   string(res.Output),
			Err:      err,
		}
	}
	if res.ExitCode != 0 {
		return toolFailure(src, stage, res)
	}
	return nil
}

func (r *Runner) run(ctx context.Context, tool string, args ...string) (Result, error) {
	ctxlog.FromContext(ctx).Debug("Running tool.", "tool", tool, "args", args)
	return r.exec.Run(ctx, tool, args...)
}

func toolFailure(asset, stage string, res Result) *shadererr.Error {
	return &shadererr.Error{
		Kind:     shadererr.ToolExecutionFailed,
		Asset:    asset,
		Stage:    stage,
		ExitCode: res.ExitCode,
		Output:   string(res.Output),
	}
}

// splitLines splits tool output on \n or \r\n, dropping one trailing
// terminator.
func splitLines(s string) []string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.TrimSuffix(s, "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}
