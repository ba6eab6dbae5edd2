package modules

import (
	"testing"
	"testing/fstest"
)

func mapFS() fstest.MapFS {
	return fstest.MapFS{
		"main.js":          {Data: []byte("var m = 1;")},
		"lib/util.js":      {Data: []byte("var u = 1;")},
		"lib/pkg/index.js": {Data: []byte("var p = 1;")},
	}
}

func TestFileSystemResolverExactPath(t *testing.T) {
	r := NewFileSystemResolver(mapFS())
	resolved, err := r.Resolve("./main.js", "")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if resolved != "main.js" {
		t.Fatalf("got %q, want main.js", resolved)
	}
}

func TestFileSystemResolverExtensionInference(t *testing.T) {
	r := NewFileSystemResolver(mapFS())
	resolved, err := r.Resolve("./util", "lib/main.js")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if resolved != "lib/util.js" {
		t.Fatalf("got %q, want lib/util.js", resolved)
	}
}

func TestFileSystemResolverDirectoryIndex(t *testing.T) {
	r := NewFileSystemResolver(mapFS())
	resolved, err := r.Resolve("./pkg", "lib/main.js")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if resolved != "lib/pkg/index.js" {
		t.Fatalf("got %q, want lib/pkg/index.js", resolved)
	}
}

func TestFileSystemResolverNotFound(t *testing.T) {
	r := NewFileSystemResolver(mapFS())
	if _, err := r.Resolve("./missing", ""); err == nil {
		t.Fatal("expected an error resolving a path with no matching file")
	}
}

func TestFileSystemResolverLoad(t *testing.T) {
	r := NewFileSystemResolver(mapFS())
	src, err := r.Load("main.js")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if src != "var m = 1;" {
		t.Fatalf("got %q", src)
	}
	if _, err := r.Load("nope.js"); err == nil {
		t.Fatal("expected an error loading a nonexistent path")
	}
}
