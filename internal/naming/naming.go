// Package naming derives C identifiers and include guards for embedded
// shaders and enforces identifier uniqueness inside one header.
package naming

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/vk/shaderpack/internal/shadererr"
)

// StageOf infers the shader stage from the source path's extension.
func StageOf(path string) (Stage, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if st, ok := stageExtensions[ext]; ok {
		return st, nil
	}
	return 0, fmt.Errorf("cannot infer shader stage of %s: extension must be one of %s",
		path, strings.Join(Extensions(), ", "))
}

// Identifier returns profile prefix + sanitized file stem + stage suffix.
//
//	Identifier(GL4, "shaders/test.vert", Vertex) == "hz_gl4_test_vertex_shader"
func Identifier(p Profile, path string, st Stage) (string, error) {
	suffix, ok := suffixes[p.Style][st]
	if !ok {
		return "", fmt.Errorf("profile %q has no %v suffix for stage %v", p.Name, p.Style, st)
	}
	slashed := strings.ReplaceAll(path, `\`, "/")
	base := slashed[strings.LastIndex(slashed, "/")+1:]
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if stem == "" {
		return "", fmt.Errorf("cannot derive identifier from %q: empty file stem", path)
	}

	id := sanitize(p.Prefix + stem + suffix)
	if !isIdentStart(rune(id[0])) {
		id = "_" + id
	}
	return id, nil
}

// Guard returns the include guard for a header file name: the upper-cased
// stem with non-identifier characters replaced, followed by _H.
//
//	Guard("out/hz_gl3_glsl_shaders.h") == "HZ_GL3_GLSL_SHADERS_H"
func Guard(filename string) string {
	base := filepath.Base(filename)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	token := strings.ToUpper(sanitize(stem))
	if token == "" || !isIdentStart(rune(token[0])) {
		token = "_" + token
	}
	return token + "_H"
}

// sanitize replaces every byte that cannot appear in a C identifier with '_'.
func sanitize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isIdentChar(rune(c)) {
			b.WriteByte(c)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}

func isIdentStart(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isIdentChar(r rune) bool {
	return isIdentStart(r) || (r >= '0' && r <= '9')
}

// Scope tracks the identifiers already claimed in one header document.
// It is not safe for concurrent use; documents are assembled by one writer.
type Scope struct {
	owners map[string]string
}

// NewScope returns an empty Scope.
func NewScope() *Scope {
	return &Scope{owners: make(map[string]string)}
}

// Claim records id as belonging to asset. A second claim for the same id is
// a NamingCollision naming both assets.
func (s *Scope) Claim(id, asset string) error {
	if owner, taken := s.owners[id]; taken {
		return shadererr.New(shadererr.NamingCollision, asset, "name",
			fmt.Errorf("identifier %s already used by %s", id, owner))
	}
	s.owners[id] = asset
	return nil
}

// Len returns the number of claimed identifiers.
func (s *Scope) Len() int {
	return len(s.owners)
}
