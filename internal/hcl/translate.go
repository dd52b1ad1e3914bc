package hcl

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/vk/shaderpack/internal/config"
	"github.com/vk/shaderpack/internal/ctxlog"
	"github.com/vk/shaderpack/internal/fsutil"
	"github.com/vk/shaderpack/internal/naming"
	"github.com/vk/shaderpack/internal/toolchain"
)

// translate merges the decoded files into one manifest. Profiles are
// collected first so a target may use a profile declared in any file.
func (l *Loader) translate(ctx context.Context, files []decodedFile, getenv func(string) string) (*config.Manifest, error) {
	logger := ctxlog.FromContext(ctx)

	m := &config.Manifest{Profiles: naming.Builtins()}
	var toolchainFile string

	for _, f := range files {
		m.Files = append(m.Files, f.path)

		if tb := f.root.Toolchain; tb != nil {
			if toolchainFile != "" {
				return nil, fmt.Errorf("%s: toolchain block already declared in %s", f.path, toolchainFile)
			}
			toolchainFile = f.path
			if tb.SDKRoot != nil {
				m.Toolchain.SDKRoot = resolve(f.path, *tb.SDKRoot)
			}
		}

		for _, pb := range f.root.Profiles {
			p, err := translateProfile(pb)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", f.path, err)
			}
			if _, builtin := naming.Builtins()[p.Name]; builtin {
				logger.Debug("Profile overrides built-in.", "profile", p.Name, "file", f.path)
			}
			m.Profiles[p.Name] = p
		}
	}

	if m.Toolchain.SDKRoot == "" {
		m.Toolchain.SDKRoot = getenv(toolchain.SDKEnv)
	}

	for _, f := range files {
		for _, tb := range f.root.Targets {
			t, err := translateTarget(f.path, tb, m.Profiles)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", f.path, err)
			}
			m.Targets = append(m.Targets, t)
		}
	}

	for _, name := range sortedKeys(m.Profiles) {
		p := m.Profiles[name]
		logger.Debug("Profile available.", "profile", name, "prefix", p.Prefix, "suffix_style", p.Style.String(), "mode", p.Mode.String())
	}
	return m, nil
}

// translateProfile converts a profile block into a naming.Profile.
func translateProfile(pb *ProfileBlock) (naming.Profile, error) {
	style, err := naming.ParseSuffixStyle(pb.SuffixStyle)
	if err != nil {
		return naming.Profile{}, fmt.Errorf("profile %q: %w", pb.Name, err)
	}
	mode, err := naming.ParseMode(pb.Mode)
	if err != nil {
		return naming.Profile{}, fmt.Errorf("profile %q: %w", pb.Name, err)
	}
	p := naming.Profile{Name: pb.Name, Prefix: pb.Prefix, Style: style, Mode: mode}
	return p, p.Validate()
}

// translateTarget converts a target block, resolving its paths against the
// manifest file and expanding source_dir.
func translateTarget(file string, tb *TargetBlock, profiles map[string]naming.Profile) (*config.Target, error) {
	p, ok := profiles[tb.Profile]
	if !ok {
		return nil, fmt.Errorf("target %q: unknown profile %q", tb.Name, tb.Profile)
	}

	t := &config.Target{Name: tb.Name, Profile: p}
	if tb.OutputDir != "" {
		t.OutputDir = resolve(file, tb.OutputDir)
	}
	if tb.Aggregate != "" {
		t.Aggregate = resolve(file, tb.Aggregate)
	}
	for _, src := range tb.Sources {
		t.Sources = append(t.Sources, resolve(file, src))
	}
	if tb.SourceDir != "" {
		t.SourceDir = resolve(file, tb.SourceDir)
		found, err := fsutil.FindFilesByExtension(t.SourceDir, naming.Extensions()...)
		if err != nil {
			return nil, fmt.Errorf("target %q: scanning %s: %w", tb.Name, t.SourceDir, err)
		}
		t.Sources = append(t.Sources, found...)
	}
	return t, nil
}

// resolve makes p relative to the directory of the manifest that declared it.
func resolve(manifest, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(filepath.Dir(manifest), p)
}
