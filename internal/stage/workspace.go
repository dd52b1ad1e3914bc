package stage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Workspace is the private scratch directory of one asset's pipeline run.
// Its name carries a random suffix, so two assets that share a base name
// (shaders/a/x.vert and shaders/b/x.vert) never share intermediate files.
type Workspace struct {
	dir      string
	artifact string
}

// NewWorkspace creates a scratch directory under parent (os.TempDir when
// empty) for asset.
func NewWorkspace(parent, asset string) (*Workspace, error) {
	base := filepath.Base(asset)
	dir, err := os.MkdirTemp(parent, "shaderpack-"+safeName(base)+"-*")
	if err != nil {
		return nil, fmt.Errorf("creating workspace for %s: %w", asset, err)
	}
	return &Workspace{
		dir:      dir,
		artifact: filepath.Join(dir, base+".spv"),
	}, nil
}

// Dir is the workspace directory.
func (w *Workspace) Dir() string { return w.dir }

// ArtifactPath is where every stage reads and writes the bytecode.
func (w *Workspace) ArtifactPath() string { return w.artifact }

// Close removes the workspace and everything in it. It is safe to call
// more than once.
func (w *Workspace) Close() error {
	if w.dir == "" {
		return nil
	}
	err := os.RemoveAll(w.dir)
	w.dir = ""
	return err
}

func safeName(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == '*' || r == os.PathSeparator {
			return '_'
		}
		return r
	}, s)
}
