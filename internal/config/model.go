package config

import (
	"errors"
	"fmt"

	"github.com/vk/shaderpack/internal/naming"
)

// Manifest is the unified representation of every loaded manifest file.
type Manifest struct {
	Toolchain Toolchain
	Profiles  map[string]naming.Profile
	Targets   []*Target

	// Files lists the manifest files that were read, in load order.
	Files []string
}

// Toolchain configures where the SDK tools live.
type Toolchain struct {
	// SDKRoot is empty when neither the manifest nor the environment set it.
	SDKRoot string
}

// Target is one `target` block: a profile and a list of shaders, written
// either one header per shader (OutputDir) or as one aggregate header.
type Target struct {
	Name    string
	Profile naming.Profile

	OutputDir string
	Aggregate string

	// Sources are the shader paths in emission order, relative paths already
	// resolved against the declaring manifest.
	Sources []string
	// SourceDir is the directory Sources were partly discovered in, if any.
	SourceDir string
}

// IsAggregate reports whether the target writes a single shared header.
func (t *Target) IsAggregate() bool {
	return t.Aggregate != ""
}

// Validate checks a single target.
func (t *Target) Validate() error {
	if t.Name == "" {
		return errors.New("target name must not be empty")
	}
	if (t.OutputDir == "") == (t.Aggregate == "") {
		return fmt.Errorf("target %q: exactly one of output_dir or aggregate must be set", t.Name)
	}
	if len(t.Sources) == 0 {
		return fmt.Errorf("target %q: no shader sources", t.Name)
	}
	for _, src := range t.Sources {
		if _, err := naming.StageOf(src); err != nil {
			return fmt.Errorf("target %q: %w", t.Name, err)
		}
	}
	return t.Profile.Validate()
}

// Validate checks the whole manifest.
func (m *Manifest) Validate() error {
	if len(m.Targets) == 0 {
		return errors.New("manifest declares no targets")
	}
	seen := make(map[string]struct{}, len(m.Targets))
	for _, t := range m.Targets {
		if _, dup := seen[t.Name]; dup {
			return fmt.Errorf("target %q declared more than once", t.Name)
		}
		seen[t.Name] = struct{}{}
		if err := t.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// NeedsToolchain reports whether any target compiles bytecode.
func (m *Manifest) NeedsToolchain() bool {
	for _, t := range m.Targets {
		if t.Profile.Mode == naming.Bytecode {
			return true
		}
	}
	return false
}
