package modules

import (
	"fmt"
	"io/fs"
	"path"
	"strings"
)

// Resolve implements Resolver: relative specifiers are joined against
// the referrer's directory, then probed (exact path, each extension,
// each index file inside a directory), matching the teacher's
// FileSystemResolver.tryResolve strategy order.
func (r *FileSystemResolver) Resolve(specifier, referrerPath string) (string, error) {
	target := specifier
	if strings.HasPrefix(specifier, "./") || strings.HasPrefix(specifier, "../") {
		dir := "."
		if referrerPath != "" {
			dir = path.Dir(referrerPath)
		}
		target = path.Join(dir, specifier)
	}
	target = path.Clean(strings.TrimPrefix(target, "/"))

	if r.isFile(target) {
		return target, nil
	}
	for _, ext := range r.extensions {
		if candidate := target + ext; r.isFile(candidate) {
			return candidate, nil
		}
	}
	for _, idx := range r.indexFiles {
		if candidate := path.Join(target, idx); r.isFile(candidate) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("module not found: %s (from %s)", specifier, referrerPath)
}

// Load implements Loader by reading the already-resolved path.
func (r *FileSystemResolver) Load(resolvedPath string) (string, error) {
	data, err := fs.ReadFile(r.fsys, resolvedPath)
	if err != nil {
		return "", fmt.Errorf("failed to read module %s: %w", resolvedPath, err)
	}
	return string(data), nil
}

func (r *FileSystemResolver) isFile(p string) bool {
	info, err := fs.Stat(r.fsys, p)
	return err == nil && !info.IsDir()
}
