package modules

import "testing"

func TestMemoryResolverRelativeResolve(t *testing.T) {
	r := NewMemoryResolver()
	r.Put("dir/util.js", "var x = 1;")

	resolved, err := r.Resolve("./util.js", "dir/main.js")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if resolved != "dir/util.js" {
		t.Fatalf("got %q, want %q", resolved, "dir/util.js")
	}
}

func TestMemoryResolverExtensionInference(t *testing.T) {
	r := NewMemoryResolver()
	r.Put("lib.js", "var y = 2;")

	resolved, err := r.Resolve("./lib", "")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if resolved != "lib.js" {
		t.Fatalf("got %q, want %q", resolved, "lib.js")
	}
}

func TestMemoryResolverNotFound(t *testing.T) {
	r := NewMemoryResolver()
	if _, err := r.Resolve("./missing", ""); err == nil {
		t.Fatal("expected an error resolving a module that was never Put")
	}
}

func TestMemoryResolverLoad(t *testing.T) {
	r := NewMemoryResolver()
	r.Put("a.js", "var a = 1;")

	src, err := r.Load("a.js")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if src != "var a = 1;" {
		t.Fatalf("got %q", src)
	}

	if _, err := r.Load("never-put.js"); err == nil {
		t.Fatal("expected an error loading an unregistered path")
	}
}
