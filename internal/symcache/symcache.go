// Package symcache memoizes encoded symbols between builds of one process.
//
// Entries are keyed by everything that determines a symbol: the asset path,
// its source bytes, the profile and the tool binaries. In watch mode an
// unchanged shader is therefore never sent through the toolchain again.
package symcache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"

	lru "github.com/hashicorp/golang-lru"
	"github.com/vk/shaderpack/internal/naming"
	"github.com/vk/shaderpack/internal/symbol"
	"github.com/vk/shaderpack/internal/toolchain"
)

// DefaultSize is the number of symbols kept when no size is given.
const DefaultSize = 512

// Key identifies one encoding result.
type Key string

// Cache is a bounded, concurrency-safe symbol memo.
type Cache struct {
	lru *lru.Cache
}

// New returns a cache holding at most size symbols.
func New(size int) (*Cache, error) {
	if size <= 0 {
		size = DefaultSize
	}
	c, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("creating symbol cache: %w", err)
	}
	return &Cache{lru: c}, nil
}

// Get returns a copy of the cached symbol for k.
func (c *Cache) Get(k Key) (symbol.Symbol, bool) {
	if c == nil {
		return symbol.Symbol{}, false
	}
	v, ok := c.lru.Get(k)
	if !ok {
		return symbol.Symbol{}, false
	}
	return clone(v.(symbol.Symbol)), true
}

// Add stores s under k.
func (c *Cache) Add(k Key, s symbol.Symbol) {
	if c == nil {
		return
	}
	c.lru.Add(k, clone(s))
}

// Len reports how many symbols are cached.
func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	return c.lru.Len()
}

// Purge drops every entry.
func (c *Cache) Purge() {
	if c != nil {
		c.lru.Purge()
	}
}

// KeyFor derives the key of an asset. tc may be nil for source mode. Tool
// binaries contribute their path, size and modification time, so an SDK
// upgrade in place invalidates every entry.
func KeyFor(asset string, source []byte, p naming.Profile, tc *toolchain.Toolchain) Key {
	h := sha256.New()
	fmt.Fprintf(h, "asset=%s\x00", asset)
	fmt.Fprintf(h, "profile=%s|%s|%s|%s\x00", p.Name, p.Prefix, p.Style, p.Mode)
	if tc != nil && p.Mode == naming.Bytecode {
		for _, tool := range []string{tc.Compiler, tc.Optimizer, tc.Remapper, tc.Disassembler} {
			fmt.Fprintf(h, "tool=%s", tool)
			if fi, err := os.Stat(tool); err == nil {
				fmt.Fprintf(h, "|%d|%d", fi.Size(), fi.ModTime().UnixNano())
			}
			h.Write([]byte{0})
		}
	}
	fmt.Fprintf(h, "source=%d\x00", len(source))
	h.Write(source)
	return Key(hex.EncodeToString(h.Sum(nil)))
}

func clone(s symbol.Symbol) symbol.Symbol {
	s.Bytes = append([]byte(nil), s.Bytes...)
	s.Lines = append([]string(nil), s.Lines...)
	if s.Disassembly != nil {
		d := *s.Disassembly
		d.Lines = append([]string(nil), d.Lines...)
		s.Disassembly = &d
	}
	return s
}
