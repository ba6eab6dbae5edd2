// Package modules owns per-realm module resolution and caching: the
// host-facing "load_imported_module" seam (§8 of SPEC_FULL.md) plus the
// bookkeeping a ModuleMap needs to avoid resolving or loading the same
// specifier twice. It deliberately does not itself parse, compile, or
// evaluate a module body — that needs pkg/parser/pkg/compiler/pkg/vm,
// and importing any of those here would cycle back against
// pkg/runtime's dependency on this package, so pkg/runtime drives
// linking/evaluation and calls back into a ModuleMap only for
// resolve/cache/store. Grounded structurally on the teacher's
// pkg/modules (resolver interface + file-system resolver + registry),
// stripped of its dependency analyzer, parallel worker pool, and
// type-checker factory hook, none of which this lean engine needs.
package modules

import "io/fs"

// Resolver turns an import specifier plus the path of the module that
// referenced it into a single resolved, canonical module path — the
// cache key a ModuleMap uses to dedupe. Mirrors the teacher's
// ModuleResolver.Resolve, narrowed to the one step pkg/runtime actually
// needs (no resolver priority list; one resolver per ModuleMap).
type Resolver interface {
	Resolve(specifier, referrerPath string) (string, error)
}

// Loader reads the source text at a path a Resolver already resolved.
// This is the Go shape of SPEC_FULL.md §8's `load_imported_module` host
// hook: a host embedding this engine can supply any Loader (in-memory
// map, network fetch, the OS file system) without pkg/modules caring
// which.
type Loader interface {
	Load(resolvedPath string) (string, error)
}

// FileSystemResolver resolves and loads modules against an fs.FS,
// trying a fixed extension list and directory index files the way the
// teacher's FileSystemResolver does, minus its TypeScript-specific
// `.js`→`.ts` remapping (this engine has no TypeScript surface).
type FileSystemResolver struct {
	fsys       fs.FS
	extensions []string
	indexFiles []string
}

// NewFileSystemResolver creates a resolver rooted at fsys (typically
// os.DirFS(dir)); specifiers are resolved relative to their referrer's
// directory the same way Node's CommonJS/ESM relative resolution does.
func NewFileSystemResolver(fsys fs.FS) *FileSystemResolver {
	return &FileSystemResolver{
		fsys:       fsys,
		extensions: []string{".js", ".mjs"},
		indexFiles: []string{"index.js", "index.mjs"},
	}
}

var _ Resolver = (*FileSystemResolver)(nil)
var _ Loader = (*FileSystemResolver)(nil)
