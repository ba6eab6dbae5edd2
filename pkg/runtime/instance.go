package runtime

import (
	"fmt"
	"os"
	"time"

	"ecmacore/pkg/compiler"
	"ecmacore/pkg/errors"
	"ecmacore/pkg/gc"
	"ecmacore/pkg/modules"
	"ecmacore/pkg/object"
	"ecmacore/pkg/parser"
	"ecmacore/pkg/source"
	"ecmacore/pkg/value"
)

// Instance is the SPEC_FULL.md §8 embedding API surface: one Agent plus
// the driving methods a host calls (`initialize_module_map`, `run_in`,
// `run_job`, `run_gc`, `run_tasks`, rendered here as their Go-idiomatic
// exported-method-name equivalents, matching how every other Go-cased
// identifier in this repo already renders the spec's snake_case
// operation names).
type Instance struct {
	Agent *Agent
}

// NewInstance creates an Instance with a fresh Agent and no realms;
// call NewRealm + a builtins bootstrapper, then AddRealm, before
// running anything.
func NewInstance(cfg Config) *Instance {
	return &Instance{Agent: NewAgent(cfg)}
}

// InitializeModuleMap wires realm to resolve/load imports through
// resolver/loader (the `load_imported_module` host hook surface),
// replacing any ModuleMap it already had.
func (i *Instance) InitializeModuleMap(realm *Realm, resolver modules.Resolver, loader modules.Loader) {
	realm.Modules = modules.NewModuleMap(i.Agent.Heap, resolver, loader)
}

// RunIn parses, compiles, and executes sourceCode as a top-level script
// against realm, pushing and popping one ExecutionContext around the
// run the way the teacher's Paserati.RunString drives one VM.Interpret
// call per evaluation, but against a specific realm instead of a single
// implicit global VM.
func (i *Instance) RunIn(realm *Realm, name, sourceCode string) (value.Value, []errors.EngineError) {
	src := source.NewEvalSource(sourceCode)
	src.Name = name
	return i.run(realm, src, "")
}

// RunFile reads filename and evaluates it as a top-level script against
// realm.
func (i *Instance) RunFile(realm *Realm, filename string) (value.Value, []errors.EngineError) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return value.Undefined, []errors.EngineError{&errors.HostError{Msg: fmt.Sprintf("failed to read %q: %v", filename, err)}}
	}
	return i.run(realm, source.FromFile(filename, string(data)), "")
}

func (i *Instance) run(realm *Realm, src *source.SourceFile, scriptOwner string) (value.Value, []errors.EngineError) {
	prog, parseErrs := parser.ParseProgram(src)
	if len(parseErrs) > 0 {
		return value.Undefined, parseErrs
	}

	exe, compileErrs := compiler.Compile(i.Agent.Heap, prog, src.Name)
	if len(compileErrs) > 0 {
		return value.Undefined, compileErrs
	}
	exe.IsStrict = i.Agent.Config.StrictModeDefault || scriptOwner != ""

	i.Agent.enterRealm(realm)
	i.Agent.PushContext(&ExecutionContext{Function: value.Undefined, Realm: realm, Env: realm.GlobalEnv, Script: scriptOwner})
	defer i.Agent.PopContext()

	if i.Agent.Config.Verbose {
		fmt.Fprintf(os.Stderr, "[ecmacore] running %q (%d bytes of bytecode)\n", src.Name, len(exe.Code))
	}

	result, thrown := i.Agent.VM.RunScript(exe)
	if thrown != nil {
		return value.Undefined, []errors.EngineError{uncaughtError(i.Agent, thrown)}
	}
	return result, nil
}

func uncaughtError(a *Agent, thrown *object.Throw) errors.EngineError {
	msg, tErr := a.VM.ToDisplayString(thrown.Value)
	if tErr != nil {
		msg = "<error converting thrown value to string>"
	}
	return &errors.RuntimeError{Msg: msg}
}

// RunJob runs exactly one queued job, preferring the promise-job FIFO
// queue (drained first, per SPEC_FULL.md §7's "promise reactions FIFO
// within a resolution epoch") and falling back to the first
// ready generic or timeout job. Returns false if nothing was runnable.
func (i *Instance) RunJob() bool {
	a := i.Agent
	if len(a.promiseJobs) > 0 {
		job := a.promiseJobs[0]
		a.promiseJobs = a.promiseJobs[1:]
		i.runJob(job)
		return true
	}
	for idx, g := range a.genericJobs {
		if g.ready() {
			a.genericJobs = append(a.genericJobs[:idx], a.genericJobs[idx+1:]...)
			i.runJob(g.job)
			return true
		}
	}
	for idx, t := range a.timeoutJobs {
		if t.ready() {
			a.timeoutJobs = append(a.timeoutJobs[:idx], a.timeoutJobs[idx+1:]...)
			i.runJob(t.job)
			return true
		}
	}
	return false
}

func (i *Instance) runJob(job Job) {
	a := i.Agent
	if job.Realm != nil {
		a.enterRealm(job.Realm)
	}
	a.PushContext(&ExecutionContext{Function: job.Callback, Realm: job.Realm})
	defer a.PopContext()
	if _, thrown := a.VM.Call(job.Callback, value.Undefined, job.Arguments); thrown != nil && a.Config.Verbose {
		fmt.Fprintf(os.Stderr, "[ecmacore] uncaught exception in job: %s\n", uncaughtError(a, thrown).Error())
	}
}

// RunGC runs one mark-and-sweep cycle over the agent's heap if
// Config.GCEnabled, rooted at the agent's scoped-root stack, the
// agent itself (execution contexts, realms, job queues), and the VM
// (active call frames), then enqueues one generic job per
// gc.PendingCallbacks entry (a FinalizationRegistry callback whose
// target died) and empties that list.
func (i *Instance) RunGC() gc.Stats {
	a := i.Agent
	if !a.Config.GCEnabled {
		return gc.Stats{}
	}
	stats := gc.Run(a.Heap, a.rootStack, a, a.VM)
	for _, p := range gc.PendingCallbacks {
		a.EnqueueGenericJob(nil, func() bool { return true }, p.Registry, p.HeldValue)
	}
	gc.PendingCallbacks = nil
	return stats
}

// RunTasks drains the promise-job queue completely, then repeatedly
// runs one ready generic/timeout job and re-drains promise jobs after
// it (microtasks-fully-between-macrotasks, per §7), until no work
// remains. Under Config.BlockOnMain it keeps looping with a
// spin-then-sleep backoff while a timeout job is still pending but not
// yet due, per SPEC_FULL.md §11's decided Open Question; otherwise it
// returns as soon as nothing is immediately runnable.
func (i *Instance) RunTasks() {
	a := i.Agent
	backoff := time.Millisecond
	for {
		for i.RunJob() {
		}
		if !a.hasPendingWork() {
			return
		}
		if !a.Config.BlockOnMain {
			return
		}
		time.Sleep(backoff)
		if backoff < 50*time.Millisecond {
			backoff *= 2
		}
	}
}
