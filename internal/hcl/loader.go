package hcl

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/shaderpack/internal/config"
	"github.com/vk/shaderpack/internal/ctxlog"
	"github.com/vk/shaderpack/internal/fsutil"
)

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct {
	// Environ supplies the process environment for `env` and `getenv`.
	Environ func() []string
}

// NewLoader creates a new HCL manifest loader reading the real environment.
func NewLoader() *Loader {
	return &Loader{Environ: os.Environ}
}

// Load orchestrates the entire HCL manifest loading process: discover the
// files, parse and decode each, then translate and merge them into one
// manifest.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Manifest, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	hclFiles, err := l.findAllHCLFiles(paths)
	if err != nil {
		return nil, err
	}
	if len(hclFiles) == 0 {
		return nil, fmt.Errorf("no .hcl manifest found in %v", paths)
	}
	logger.Debug("Discovered HCL files.", "count", len(hclFiles))

	environ := l.Environ
	if environ == nil {
		environ = os.Environ
	}
	env := environ()
	evalCtx := newEvalContext(env)
	parser := hclparse.NewParser()

	var decoded []decodedFile
	for _, file := range hclFiles {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}

		var root fileRoot
		diags = gohcl.DecodeBody(hclFile.Body, evalCtx, &root)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
		}
		decoded = append(decoded, decodedFile{path: file, root: &root})
	}

	manifest, err := l.translate(ctx, decoded, lookupEnv(env))
	if err != nil {
		return nil, err
	}
	if err := manifest.Validate(); err != nil {
		return nil, fmt.Errorf("invalid manifest: %w", err)
	}

	logger.Debug("HCL loading complete.",
		"files", len(manifest.Files),
		"profiles", len(manifest.Profiles),
		"targets", len(manifest.Targets),
	)
	return manifest, nil
}

// findAllHCLFiles walks all given paths and returns a flat, de-duplicated
// list of all .hcl files found. Files inside one directory come out sorted.
func (l *Loader) findAllHCLFiles(paths []string) ([]string, error) {
	var allFiles []string
	seen := make(map[string]struct{})
	add := func(p string) {
		if _, wasSeen := seen[p]; !wasSeen {
			allFiles = append(allFiles, p)
			seen[p] = struct{}{}
		}
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("error accessing path %s: %w", path, err)
		}

		if info.IsDir() {
			files, err := fsutil.FindFilesByExtension(path, ".hcl")
			if err != nil {
				return nil, err
			}
			for _, f := range files {
				add(f)
			}
		} else if filepath.Ext(path) == ".hcl" {
			add(path)
		} else {
			return nil, fmt.Errorf("%s is not an .hcl file", path)
		}
	}
	return allFiles, nil
}

func lookupEnv(environ []string) func(string) string {
	m := envMap(environ)
	return func(k string) string { return m[k] }
}
