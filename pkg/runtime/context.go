package runtime

import (
	"ecmacore/pkg/errors"
	"ecmacore/pkg/value"
)

// ExecutionContext is SPEC_FULL.md §5.5's Execution Context Record:
// "function, realm, lexical/variable/private environment, script-or-
// module owner, source position". This engine's compiler gives every
// function body exactly one environment record shared by lexical and
// variable declarations (see pkg/compiler's package doc), so Env
// stands in for both of the source's separate Lexical/Variable
// Environment fields; there is no private-name environment because
// this repo's Non-goals exclude classes entirely.
type ExecutionContext struct {
	Function value.Value // Undefined for the top-level script/module context
	Realm     *Realm
	Env      uint32
	Script   string // resolved module path, or "" for a plain script
	Position errors.Position
}

// PushContext enters a new execution context (function call, script
// evaluation, or module evaluation) onto the agent's context stack,
// per "execution-context stack push/pop on function/script/module
// entry/exit" (SPEC_FULL.md §6.5).
func (a *Agent) PushContext(ctx *ExecutionContext) {
	a.contexts = append(a.contexts, ctx)
}

// PopContext exits the innermost execution context.
func (a *Agent) PopContext() {
	a.contexts = a.contexts[:len(a.contexts)-1]
}

// CurrentContext returns the innermost active execution context, or
// nil if the agent's stack is empty (between runs).
func (a *Agent) CurrentContext() *ExecutionContext {
	if len(a.contexts) == 0 {
		return nil
	}
	return a.contexts[len(a.contexts)-1]
}
