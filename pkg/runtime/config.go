package runtime

// Config carries the ambient knobs SPEC_FULL.md §3 asks for in the
// teacher's own idiom: the teacher has no structured-config library
// (pkg/driver.FeatureFlags is a plain struct of bools checked directly
// by callers), so Config follows the same shape rather than reaching
// for a flag/env parsing dependency nothing in the pack ever imports.
type Config struct {
	// GCEnabled gates whether RunGC actually sweeps; a host embedding
	// this engine for one short-lived script can disable it entirely.
	GCEnabled bool

	// Verbose gates fmt.Fprintf(os.Stderr, ...) trace lines the way the
	// teacher's debugPrintAST/REPL verbosity flags do — no logging
	// library in the teacher's go.mod, so none is introduced here.
	Verbose bool

	// BlockOnMain makes Instance.RunTasks block (spin-then-sleep
	// backoff, per SPEC_FULL.md §11's decided Open Question) until
	// every job and timeout has drained, rather than returning after
	// one pass over whatever is already ready.
	BlockOnMain bool

	// ExposeInternals is not read by any code in this repository; the
	// Agent, Realm and VM fields are exported whether or not it is set.
	ExposeInternals bool

	// StrictModeDefault is threaded into a script's top-level
	// Executable.IsStrict; module code is always strict regardless of
	// this flag.
	StrictModeDefault bool
}

// DefaultConfig matches what a bare `go run ./cmd/ecmacore script.js`
// invocation wants: GC on, quiet, non-blocking single pass, sloppy
// mode by default (matching the teacher's own default REPL behavior).
func DefaultConfig() Config {
	return Config{GCEnabled: true}
}
