package symbol

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"

	"github.com/gogpu/naga/spirv"
)

// FromBytecode builds a bytecode symbol. The byte slice is copied.
func FromBytecode(identifier string, code []byte, dis *Disassembly) Symbol {
	return Symbol{
		Identifier:  identifier,
		Kind:        BytecodeKind,
		Bytes:       append([]byte(nil), code...),
		Disassembly: dis,
	}
}

// ValidateSPIRV checks that code looks like a SPIR-V module: non-empty,
// word aligned and starting with the magic number in either byte order.
func ValidateSPIRV(code []byte) error {
	if len(code) == 0 {
		return errors.New("artifact is empty")
	}
	if len(code)%4 != 0 {
		return fmt.Errorf("artifact size %d is not a multiple of 4", len(code))
	}
	if binary.LittleEndian.Uint32(code) != spirv.MagicNumber && binary.BigEndian.Uint32(code) != spirv.MagicNumber {
		return fmt.Errorf("artifact does not start with the SPIR-V magic number %#08x", uint32(spirv.MagicNumber))
	}
	return nil
}

// FromSource builds a source-text symbol. Each source line becomes one
// escaped fragment ending in an explicit newline escape; a final line with
// no terminator in the source gets none in the fragment, so concatenating
// the fragments reproduces text exactly.
func FromSource(identifier string, text []byte) Symbol {
	return Symbol{
		Identifier: identifier,
		Kind:       SourceKind,
		Lines:      SplitSource(string(text)),
	}
}

// SplitSource splits text into escaped fragments. Empty text yields a single
// empty fragment so the rendered array is never empty.
func SplitSource(text string) []string {
	if text == "" {
		return []string{""}
	}

	var lines []string
	for len(text) > 0 {
		i := strings.IndexByte(text, '\n')
		if i < 0 {
			lines = append(lines, Escape(text))
			break
		}
		line := text[:i]
		term := `\n`
		if strings.HasSuffix(line, "\r") {
			line = line[:len(line)-1]
			term = `\r\n`
		}
		lines = append(lines, Escape(line)+term)
		text = text[i+1:]
	}
	return lines
}

// Escape makes s safe inside a C string literal. Quotes and backslashes are
// backslash-escaped; control characters other than tab become three-digit
// octal escapes.
func Escape(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '"' || c == '\\':
			b.WriteByte('\\')
			b.WriteByte(c)
		case c == '\t':
			b.WriteByte(c)
		case c < 0x20 || c == 0x7f:
			fmt.Fprintf(&b, `\%03o`, c)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
