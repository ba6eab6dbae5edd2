package runtime

import (
	"time"

	"ecmacore/pkg/value"
)

// Job is one queued unit of work: a callback to invoke plus the
// arguments to invoke it with. Both are plain value.Values so a Job
// can be marked as a GC root while it sits in a queue (see
// Agent.Roots) — grounded on the teacher's DefaultAsyncRuntime
// microtask queue (pkg/runtime/async.go: a slice of closures drained
// FIFO), generalized so a queued callback is itself a JS function
// value the VM can Call rather than an opaque Go closure, since this
// repo's jobs are promise reaction jobs and host-enqueued module/timer
// callbacks, not Go-native continuations.
type Job struct {
	Realm     *Realm
	Callback  value.Value
	Arguments []value.Value
}

func (j Job) roots() []value.Value {
	roots := make([]value.Value, 0, len(j.Arguments)+1)
	roots = append(roots, j.Callback)
	roots = append(roots, j.Arguments...)
	return roots
}

// genericJob is a host-enqueued job that becomes runnable only once
// ready reports true — "generic-job queue (host-enqueued, polled-
// ready)" per SPEC_FULL.md §6.5.
type genericJob struct {
	ready func() bool
	job   Job
}

// timeoutJob is a genericJob whose readiness is a wall-clock deadline,
// the concrete case SPEC_FULL.md §8's `enqueue_timeout_job` host hook
// exists for.
type timeoutJob struct {
	deadline time.Time
	job      Job
}

func (t timeoutJob) ready() bool { return !time.Now().Before(t.deadline) }

// EnqueuePromiseJob appends a job to the FIFO promise-job queue,
// drained to empty between macrotasks (SPEC_FULL.md §6.5/§7). This is
// the Go shape of the `enqueue_promise_job` host hook, for a host
// reacting to an external event; no code in pkg/builtins or elsewhere
// in this repository calls it.
func (a *Agent) EnqueuePromiseJob(realm *Realm, callback value.Value, args ...value.Value) {
	a.promiseJobs = append(a.promiseJobs, Job{Realm: realm, Callback: callback, Arguments: args})
}

// EnqueueGenericJob appends a host job that only becomes eligible to
// run once ready() returns true, polled by RunTasks.
func (a *Agent) EnqueueGenericJob(realm *Realm, ready func() bool, callback value.Value, args ...value.Value) {
	a.genericJobs = append(a.genericJobs, genericJob{ready: ready, job: Job{Realm: realm, Callback: callback, Arguments: args}})
}

// EnqueueTimeoutJob schedules callback to become runnable after delay
// elapses — the Go shape of `enqueue_timeout_job`.
func (a *Agent) EnqueueTimeoutJob(realm *Realm, delay time.Duration, callback value.Value, args ...value.Value) {
	a.timeoutJobs = append(a.timeoutJobs, timeoutJob{
		deadline: time.Now().Add(delay),
		job:      Job{Realm: realm, Callback: callback, Arguments: args},
	})
}

// hasPendingWork reports whether any job queue has something that
// could still become runnable — used by RunTasks to decide whether to
// keep looping under Config.BlockOnMain.
func (a *Agent) hasPendingWork() bool {
	return len(a.promiseJobs) > 0 || len(a.genericJobs) > 0 || len(a.timeoutJobs) > 0
}
