// Package symbol turns compiled bytecode or shader text into C array
// definitions. The rendered text is deterministic: the same payload always
// produces the same bytes.
package symbol

import (
	"fmt"
	"io"
	"strings"
)

// BytesPerRow is the number of byte values written per line of a bytecode array.
const BytesPerRow = 6

const rowIndent = "    "

// Storage is the storage qualifier a symbol is declared with.
type Storage int

const (
	// Plain declares the array with external linkage.
	Plain Storage = iota
	// FileLocal prefixes the declaration with `static`.
	FileLocal
)

// Kind tells which payload a Symbol carries.
type Kind int

const (
	BytecodeKind Kind = iota + 1
	SourceKind
)

// Symbol is one embedded array: an identifier and its payload.
type Symbol struct {
	Identifier string
	Kind       Kind
	Storage    Storage

	// Bytes holds the artifact for BytecodeKind.
	Bytes []byte
	// Disassembly is documentation rendered above a bytecode array.
	Disassembly *Disassembly

	// Lines holds already escaped text fragments for SourceKind, each
	// without its surrounding quotes.
	Lines []string
}

// Disassembly is the disassembler's report for a bytecode symbol.
type Disassembly struct {
	Lines []string
	// Unavailable is set when the disassembler failed; Reason says why.
	Unavailable bool
	Reason      string
}

// WithStorage returns a copy of s declared with the given storage.
func (s Symbol) WithStorage(st Storage) Symbol {
	s.Storage = st
	return s
}

// Render writes the symbol's C text to w.
func (s Symbol) Render(w io.Writer) error {
	var b strings.Builder
	switch s.Kind {
	case BytecodeKind:
		s.renderBytecode(&b)
	case SourceKind:
		s.renderSource(&b)
	default:
		return fmt.Errorf("symbol %s: unknown kind %d", s.Identifier, s.Kind)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// String renders the symbol into a string.
func (s Symbol) String() string {
	var b strings.Builder
	_ = s.Render(&b)
	return b.String()
}

func (s Symbol) qualifier() string {
	if s.Storage == FileLocal {
		return "static const"
	}
	return "const"
}

func (s Symbol) renderBytecode(b *strings.Builder) {
	if d := s.Disassembly; d != nil {
		b.WriteString("#if 0\n")
		if d.Unavailable {
			fmt.Fprintf(b, "// disassembly unavailable: %s\n", oneLine(d.Reason))
		}
		for _, line := range d.Lines {
			b.WriteString("// ")
			b.WriteString(line)
			b.WriteByte('\n')
		}
		b.WriteString("#endif\n\n")
	}

	fmt.Fprintf(b, "%s uint8_t %s[] = \n{", s.qualifier(), s.Identifier)
	for i, v := range s.Bytes {
		if i%BytesPerRow == 0 {
			b.WriteString("\n" + rowIndent)
		}
		fmt.Fprintf(b, "%4d,", v)
	}
	b.WriteString("\n};\n")
}

func (s Symbol) renderSource(b *strings.Builder) {
	fmt.Fprintf(b, "%s char %s[] = \n{", s.qualifier(), s.Identifier)
	for _, line := range s.Lines {
		b.WriteString("\n" + rowIndent + `"`)
		b.WriteString(line)
		b.WriteString(`"`)
	}
	b.WriteString("\n};\n")
}

func oneLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, "\r\n"); i >= 0 {
		s = s[:i]
	}
	if s == "" {
		return "unknown error"
	}
	return s
}
