package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/vk/shaderpack/internal/ctxlog"
	"github.com/vk/shaderpack/internal/naming"
	"github.com/vk/shaderpack/internal/shadererr"
	"github.com/vk/shaderpack/internal/stage"
	"github.com/vk/shaderpack/internal/symbol"
	"github.com/vk/shaderpack/internal/symcache"
)

// Asset is one shader source as read at the start of its pipeline run.
type Asset struct {
	Path   string
	Stage  naming.Stage
	Source []byte
}

// ReadAsset reads the shader at path and infers its stage.
func ReadAsset(path string) (*Asset, error) {
	st, err := naming.StageOf(path)
	if err != nil {
		return nil, shadererr.New(shadererr.SourceReadError, path, stage.Read, err)
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, shadererr.New(shadererr.SourceReadError, path, stage.Read, err)
	}
	return &Asset{Path: path, Stage: st, Source: src}, nil
}

// Symbolize turns one asset into its embedded symbol under profile p.
// Bytecode mode drives the toolchain and always removes the intermediate
// artifact before returning; source mode embeds the text directly.
func (b *Builder) Symbolize(ctx context.Context, p naming.Profile, a *Asset, identifier string) (symbol.Symbol, error) {
	logger := ctxlog.FromContext(ctx)

	key := symcache.KeyFor(a.Path, a.Source, p, b.toolchain)
	if s, ok := b.cache.Get(key); ok {
		logger.Debug("Symbol cache hit.", "identifier", identifier)
		b.cacheHits.Add(1)
		return s, nil
	}

	var (
		s   symbol.Symbol
		err error
	)
	switch p.Mode {
	case naming.Source:
		s = symbol.FromSource(identifier, a.Source)
	case naming.Bytecode:
		s, err = b.compile(ctx, a, identifier)
	default:
		err = fmt.Errorf("profile %q: unsupported mode %v", p.Name, p.Mode)
	}
	if err != nil {
		return symbol.Symbol{}, err
	}

	b.cache.Add(key, s)
	return s, nil
}

func (b *Builder) compile(ctx context.Context, a *Asset, identifier string) (_ symbol.Symbol, err error) {
	logger := ctxlog.FromContext(ctx)
	if b.runner == nil {
		return symbol.Symbol{}, shadererr.New(shadererr.ToolNotFound, a.Path, stage.Compile,
			fmt.Errorf("no toolchain configured for bytecode mode"))
	}

	art, err := b.runner.Build(ctx, a.Path)
	if err != nil {
		return symbol.Symbol{}, err
	}
	defer func() {
		if cerr := art.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("removing workspace of %s: %w", a.Path, cerr)
		}
	}()

	dis := &symbol.Disassembly{}
	lines, derr := b.runner.Disassemble(ctx, art)
	if derr != nil {
		if ctx.Err() != nil {
			return symbol.Symbol{}, ctx.Err()
		}
		logger.Warn("Disassembly unavailable.", "stage", stage.Disassemble, "error", derr)
		dis.Unavailable = true
		dis.Reason = disassemblyReason(derr)
	} else {
		dis.Lines = lines
	}

	code, err := art.Bytes()
	if err != nil {
		return symbol.Symbol{}, err
	}
	if err := symbol.ValidateSPIRV(code); err != nil {
		return symbol.Symbol{}, shadererr.New(shadererr.EncodingError, a.Path, "encode", err)
	}
	logger.Debug("Artifact encoded.", "identifier", identifier, "bytes", len(code))
	return symbol.FromBytecode(identifier, code, dis), nil
}

// disassemblyReason condenses a disassembler failure into the one-line note
// written into the header.
func disassemblyReason(err error) string {
	var se *shadererr.Error
	if errors.As(err, &se) && se.Kind == shadererr.ToolExecutionFailed {
		if se.Err != nil {
			return "disassembler could not run: " + se.Err.Error()
		}
		return fmt.Sprintf("disassembler exited with status %d", se.ExitCode)
	}
	return err.Error()
}
