package modules

import (
	"fmt"
	"path"
	"strings"
	"sync"
)

// MemoryResolver resolves specifiers against an in-memory path→source
// map, the way the teacher's MemoryResolver lets tests and embedders
// avoid touching a real file system. Paths are canonicalized with
// path.Clean the same way FileSystemResolver canonicalizes fs paths, so
// a MemoryResolver and a FileSystemResolver produce comparable cache
// keys for the same relative-import shape.
type MemoryResolver struct {
	mu      sync.RWMutex
	sources map[string]string
}

func NewMemoryResolver() *MemoryResolver {
	return &MemoryResolver{sources: make(map[string]string)}
}

// Put registers resolvedPath's source text, as a host would when
// embedding pre-bundled modules rather than reading them from disk.
func (r *MemoryResolver) Put(resolvedPath, source string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sources[path.Clean(strings.TrimPrefix(resolvedPath, "/"))] = source
}

func (r *MemoryResolver) Resolve(specifier, referrerPath string) (string, error) {
	target := specifier
	if strings.HasPrefix(specifier, "./") || strings.HasPrefix(specifier, "../") {
		dir := "."
		if referrerPath != "" {
			dir = path.Dir(referrerPath)
		}
		target = path.Join(dir, specifier)
	}
	target = path.Clean(strings.TrimPrefix(target, "/"))

	r.mu.RLock()
	defer r.mu.RUnlock()
	if _, ok := r.sources[target]; ok {
		return target, nil
	}
	if _, ok := r.sources[target+".js"]; ok {
		return target + ".js", nil
	}
	return "", fmt.Errorf("module not found: %s (from %s)", specifier, referrerPath)
}

func (r *MemoryResolver) Load(resolvedPath string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	src, ok := r.sources[resolvedPath]
	if !ok {
		return "", fmt.Errorf("module not loaded: %s", resolvedPath)
	}
	return src, nil
}

var (
	_ Resolver = (*MemoryResolver)(nil)
	_ Loader   = (*MemoryResolver)(nil)
)
