package compiler

import (
	"path/filepath"
	"regexp"
	"strings"
)

var manglerUnsafe = regexp.MustCompile(`[^a-zA-Z0-9]`)

// Mangle implements spec §4.1's five ordered rules: `main` and externs pass
// through unmangled; everything else becomes
// "<sanitized-relative-path>__<name>".
func (c *Compiler) Mangle(file, name string) string {
	if name == "main" {
		return "main"
	}
	if c.isExtern(name) {
		return name
	}
	return mangledPrefix(c.Root, file) + "__" + name
}

// isExtern reports whether name was declared with `define` (extern linkage),
// which bypasses mangling per spec §4.1 rule 2.
func (c *Compiler) isExtern(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.externs[name]
	return ok
}

// mangledPrefix computes the sanitized-path half of a mangled name: the
// defining file's path relative to root, extension stripped, every
// non-alphanumeric byte replaced with '_', trailing underscores trimmed. If
// the file cannot be made relative to root (any Rel failure) or lies outside
// it (the relative path starts with ".."), the base filename is used
// instead, per spec §4.1 rule 3.
func mangledPrefix(root, file string) string {
	rel, err := filepath.Rel(root, file)
	if err != nil || strings.HasPrefix(rel, "..") {
		rel = filepath.Base(file)
	}
	rel = strings.TrimSuffix(rel, filepath.Ext(rel))
	rel = manglerUnsafe.ReplaceAllString(rel, "_")
	rel = strings.TrimRight(rel, "_")
	return rel
}
