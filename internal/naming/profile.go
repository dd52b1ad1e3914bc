package naming

import "fmt"

// Stage is the role of a shader, taken from its file extension.
type Stage int

const (
	Vertex Stage = iota + 1
	Fragment
)

func (s Stage) String() string {
	switch s {
	case Vertex:
		return "vertex"
	case Fragment:
		return "fragment"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

// stageExtensions maps source file extensions to stages.
var stageExtensions = map[string]Stage{
	".vert": Vertex,
	".frag": Fragment,
}

// Extensions returns the recognised shader source extensions.
func Extensions() []string {
	return []string{".vert", ".frag"}
}

// SuffixStyle selects how the stage is spelled at the end of an identifier.
type SuffixStyle int

const (
	// Verbose spells the stage out: _vertex_shader, _fragment_shader.
	Verbose SuffixStyle = iota + 1
	// Abbreviated uses three-letter suffixes: _vsh, _fsh.
	Abbreviated
)

// suffixes is the (style, stage) -> suffix table.
var suffixes = map[SuffixStyle]map[Stage]string{
	Verbose: {
		Vertex:   "_vertex_shader",
		Fragment: "_fragment_shader",
	},
	Abbreviated: {
		Vertex:   "_vsh",
		Fragment: "_fsh",
	},
}

// ParseSuffixStyle converts a manifest value into a SuffixStyle.
func ParseSuffixStyle(s string) (SuffixStyle, error) {
	switch s {
	case "verbose":
		return Verbose, nil
	case "abbreviated":
		return Abbreviated, nil
	}
	return 0, fmt.Errorf("unknown suffix style %q: must be 'verbose' or 'abbreviated'", s)
}

func (s SuffixStyle) String() string {
	switch s {
	case Verbose:
		return "verbose"
	case Abbreviated:
		return "abbreviated"
	default:
		return fmt.Sprintf("style(%d)", int(s))
	}
}

// Mode selects what gets embedded for a profile.
type Mode int

const (
	// Bytecode compiles sources through the toolchain and embeds SPIR-V.
	Bytecode Mode = iota + 1
	// Source embeds the shader text as-is.
	Source
)

// ParseMode converts a manifest value into a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "bytecode":
		return Bytecode, nil
	case "source":
		return Source, nil
	}
	return 0, fmt.Errorf("unknown embedding mode %q: must be 'bytecode' or 'source'", s)
}

func (m Mode) String() string {
	switch m {
	case Bytecode:
		return "bytecode"
	case Source:
		return "source"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Profile is one backend generation's embedding convention.
type Profile struct {
	Name   string
	Prefix string
	Style  SuffixStyle
	Mode   Mode
}

// Built-in profiles.
var (
	GL4 = Profile{Name: "gl4", Prefix: "hz_gl4_", Style: Verbose, Mode: Bytecode}
	GL3 = Profile{Name: "gl3", Prefix: "hz_gl3_", Style: Abbreviated, Mode: Source}
)

// Builtins returns the profiles every manifest starts with, keyed by name.
func Builtins() map[string]Profile {
	return map[string]Profile{
		GL4.Name: GL4,
		GL3.Name: GL3,
	}
}

// Validate checks that the profile can produce identifiers.
func (p Profile) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("profile name must not be empty")
	}
	if _, ok := suffixes[p.Style]; !ok {
		return fmt.Errorf("profile %q: invalid suffix style %v", p.Name, p.Style)
	}
	if p.Mode != Bytecode && p.Mode != Source {
		return fmt.Errorf("profile %q: invalid mode %v", p.Name, p.Mode)
	}
	if p.Prefix != "" && !isIdentStart(rune(p.Prefix[0])) {
		return fmt.Errorf("profile %q: prefix %q must start with a letter or underscore", p.Name, p.Prefix)
	}
	return nil
}
