// Package header assembles embedded symbols into include-guarded C header
// documents and writes them to disk.
//
// A Document is built completely in memory and validated before anything
// touches the file system, so a failed build never leaves a partial header.
package header

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/vk/shaderpack/internal/ctxlog"
	"github.com/vk/shaderpack/internal/fsutil"
	"github.com/vk/shaderpack/internal/naming"
	"github.com/vk/shaderpack/internal/shadererr"
	"github.com/vk/shaderpack/internal/symbol"
)

// Entry is a symbol together with the shader source it was produced from.
type Entry struct {
	Asset  string
	Symbol symbol.Symbol
}

// Document is one header file: a guard and its symbols in emission order.
type Document struct {
	Path    string
	Guard   string
	Symbols []symbol.Symbol
}

// New builds a document for path. Identifiers must be unique; the first
// duplicate aborts with a NamingCollision.
func New(path string, entries []Entry, storage symbol.Storage) (*Document, error) {
	scope := naming.NewScope()
	doc := &Document{
		Path:    path,
		Guard:   naming.Guard(filepath.Base(path)),
		Symbols: make([]symbol.Symbol, 0, len(entries)),
	}
	for _, e := range entries {
		if err := scope.Claim(e.Symbol.Identifier, e.Asset); err != nil {
			return nil, err
		}
		doc.Symbols = append(doc.Symbols, e.Symbol.WithStorage(storage))
	}
	return doc, nil
}

// Render returns the complete header text.
func (d *Document) Render() ([]byte, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "#ifndef %s\n#define %s\n\n", d.Guard, d.Guard)
	for _, s := range d.Symbols {
		if err := s.Render(&b); err != nil {
			return nil, err
		}
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "#endif /* %s */\n", d.Guard)
	return []byte(b.String()), nil
}

// Write renders the document and atomically replaces its file.
func (d *Document) Write(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)

	data, err := d.Render()
	if err != nil {
		return shadererr.New(shadererr.EncodingError, "", "write", err)
	}
	changed, err := fsutil.WriteFileAtomic(d.Path, data, 0o644)
	if err != nil {
		return fmt.Errorf("writing header %s: %w", d.Path, err)
	}
	if changed {
		logger.Info("Header written.", "path", d.Path, "symbols", len(d.Symbols), "bytes", len(data))
	} else {
		logger.Debug("Header unchanged.", "path", d.Path)
	}
	return nil
}

// SinglePath is the file a single-asset header for identifier is written to.
func SinglePath(dir, identifier string) string {
	return filepath.Join(dir, identifier+".h")
}

// EmitSingle writes one header containing exactly one symbol with plain
// storage, named after the symbol's identifier inside dir.
func EmitSingle(ctx context.Context, dir string, e Entry) (*Document, error) {
	doc, err := New(SinglePath(dir, e.Symbol.Identifier), []Entry{e}, symbol.Plain)
	if err != nil {
		return nil, err
	}
	return doc, doc.Write(ctx)
}

// EmitAggregate writes every entry into one header at path under a shared
// guard, each declared file-local. Either the whole document is written or,
// on any error, nothing is.
func EmitAggregate(ctx context.Context, path string, entries []Entry) (*Document, error) {
	doc, err := New(path, entries, symbol.FileLocal)
	if err != nil {
		return nil, err
	}
	return doc, doc.Write(ctx)
}
