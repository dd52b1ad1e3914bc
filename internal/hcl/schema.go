package hcl

import "github.com/hashicorp/hcl/v2"

// fileRoot is a struct used to decode all possible top-level blocks from any file.
type fileRoot struct {
	Toolchain *ToolchainBlock `hcl:"toolchain,block"`
	Profiles  []*ProfileBlock `hcl:"profile,block"`
	Targets   []*TargetBlock  `hcl:"target,block"`
	Remain    hcl.Body        `hcl:",remain"`
}

// ToolchainBlock represents the `toolchain` block.
type ToolchainBlock struct {
	SDKRoot *string `hcl:"sdk_root,optional"`
}

// ProfileBlock represents a `profile` block declaring or overriding an
// embedding convention.
type ProfileBlock struct {
	Name        string `hcl:"name,label"`
	Prefix      string `hcl:"prefix"`
	SuffixStyle string `hcl:"suffix_style"`
	Mode        string `hcl:"mode"`
}

// TargetBlock represents a `target` block: which shaders to embed, with
// which profile, and where to write them.
type TargetBlock struct {
	Name      string   `hcl:"name,label"`
	Profile   string   `hcl:"profile"`
	OutputDir string   `hcl:"output_dir,optional"`
	Aggregate string   `hcl:"aggregate,optional"`
	Sources   []string `hcl:"sources,optional"`
	SourceDir string   `hcl:"source_dir,optional"`
}

// decodedFile pairs a decoded root with the file it came from, so relative
// paths can be resolved against the right directory.
type decodedFile struct {
	path string
	root *fileRoot
}
