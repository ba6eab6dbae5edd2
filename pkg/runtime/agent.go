package runtime

import (
	"ecmacore/pkg/gc"
	"ecmacore/pkg/heap"
	"ecmacore/pkg/value"
	"ecmacore/pkg/vm"
)

// Agent is "heap, realm table, execution-context stack, root registry,
// promise-job queue, generic-job queue" (SPEC_FULL.md §5.5) — the unit
// of single-threaded cooperative execution (§7: "Single-threaded
// cooperative per Agent"). One Agent owns exactly one heap and one VM;
// it may own several Realms, but only the realm of the currently
// pushed ExecutionContext is ever executing, so the VM needs no
// per-realm state of its own beyond vm.GlobalEnv (set by
// Agent.enterRealm before each RunIn, job or module evaluation;
// nothing restores it afterwards).
type Agent struct {
	Heap   *heap.Heap
	VM     *vm.VM
	Config Config

	rootStack *gc.RootStack
	realms    []*Realm
	contexts  []*ExecutionContext

	promiseJobs []Job
	genericJobs []genericJob
	timeoutJobs []timeoutJob
}

// NewAgent creates a fresh Agent: a new heap, a VM over it, and an
// empty realm table — a caller creates at least one Realm (via
// NewRealm + pkg/builtins bootstrap) before running anything.
func NewAgent(cfg Config) *Agent {
	h := heap.New()
	return &Agent{
		Heap:      h,
		VM:        vm.New(h),
		Config:    cfg,
		rootStack: gc.NewRootStack(),
	}
}

// AddRealm registers realm with this agent.
func (a *Agent) AddRealm(realm *Realm) {
	a.realms = append(a.realms, realm)
}

// Realms returns every realm this agent owns.
func (a *Agent) Realms() []*Realm { return a.realms }

// RootStack exposes the agent's scoped-root stack (SPEC_FULL.md
// §4.3(i)) for pkg/builtins code that allocates across a call that can
// itself allocate/GC and must keep an intermediate heap index alive.
func (a *Agent) RootStack() *gc.RootStack { return a.rootStack }

// enterRealm points the VM's active global environment and intrinsic
// prototype slots at realm, so bytecode compiled/run against it
// resolves global bindings and property-access fallbacks correctly;
// called by RunIn around every script/module evaluation.
func (a *Agent) enterRealm(realm *Realm) {
	a.VM.GlobalEnv = realm.GlobalEnv
	a.VM.ObjectPrototype = realm.Intrinsics["Object.prototype"]
	a.VM.FunctionPrototype = realm.Intrinsics["Function.prototype"]
	a.VM.ArrayPrototype = realm.Intrinsics["Array.prototype"]
	a.VM.StringPrototype = realm.Intrinsics["String.prototype"]
	a.VM.NumberPrototype = realm.Intrinsics["Number.prototype"]
	a.VM.BooleanPrototype = realm.Intrinsics["Boolean.prototype"]
	for _, kind := range []string{"Error", "TypeError", "RangeError", "ReferenceError", "SyntaxError", "EvalError", "URIError"} {
		if p, ok := realm.Intrinsics[kind+".prototype"]; ok {
			a.VM.ErrorPrototypes[kind] = p
		}
	}
}

// Roots implements gc.RootSource: every execution context's function
// value, every realm's own roots, and every queued job's callback and
// arguments.
func (a *Agent) Roots() []value.Value {
	roots := make([]value.Value, 0, len(a.contexts)+8)
	for _, ctx := range a.contexts {
		roots = append(roots, ctx.Function)
	}
	for _, r := range a.realms {
		roots = append(roots, r.Roots()...)
	}
	for _, j := range a.promiseJobs {
		roots = append(roots, j.roots()...)
	}
	for _, g := range a.genericJobs {
		roots = append(roots, g.job.roots()...)
	}
	for _, t := range a.timeoutJobs {
		roots = append(roots, t.job.roots()...)
	}
	return roots
}

// RemapRoots rewrites every value Roots() reported, in place.
func (a *Agent) RemapRoots(remap func(value.Value) value.Value) {
	for _, ctx := range a.contexts {
		ctx.Function = remap(ctx.Function)
	}
	for _, r := range a.realms {
		r.RemapRoots(remap)
	}
	for i := range a.promiseJobs {
		a.promiseJobs[i].Callback = remap(a.promiseJobs[i].Callback)
		for j := range a.promiseJobs[i].Arguments {
			a.promiseJobs[i].Arguments[j] = remap(a.promiseJobs[i].Arguments[j])
		}
	}
	for i := range a.genericJobs {
		a.genericJobs[i].job.Callback = remap(a.genericJobs[i].job.Callback)
		for j := range a.genericJobs[i].job.Arguments {
			a.genericJobs[i].job.Arguments[j] = remap(a.genericJobs[i].job.Arguments[j])
		}
	}
	for i := range a.timeoutJobs {
		a.timeoutJobs[i].job.Callback = remap(a.timeoutJobs[i].job.Callback)
		for j := range a.timeoutJobs[i].job.Arguments {
			a.timeoutJobs[i].job.Arguments[j] = remap(a.timeoutJobs[i].job.Arguments[j])
		}
	}
}

// EnvironmentRoots roots every context's active environment and every
// realm's global environment, plus the VM's own active call frames
// (which the VM's own RootSource already covers — Agent only needs to
// add what it alone knows about: idle contexts/realms the VM currently
// has no Frame for).
func (a *Agent) EnvironmentRoots() []uint32 {
	envs := make([]uint32, 0, len(a.contexts)+len(a.realms))
	for _, ctx := range a.contexts {
		envs = append(envs, ctx.Env)
	}
	for _, r := range a.realms {
		envs = append(envs, r.GlobalEnv)
	}
	return envs
}

// RemapEnvironmentRoots rewrites every environment index
// EnvironmentRoots reported, in place.
func (a *Agent) RemapEnvironmentRoots(remap func(uint32) uint32) {
	for _, ctx := range a.contexts {
		ctx.Env = remap(ctx.Env)
	}
	for _, r := range a.realms {
		r.GlobalEnv = remap(r.GlobalEnv)
	}
}

var _ gc.RootSource = (*Agent)(nil)
