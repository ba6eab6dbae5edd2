package builtins

import (
	"fmt"
	"os"
	"strings"
	"time"

	"ecmacore/pkg/object"
	"ecmacore/pkg/value"
	"ecmacore/pkg/vm"
)

// ConsoleInitializer builds the console namespace object, grounded
// directly on the teacher's console_init.go: log/info/debug write to
// stdout, warn/error to stderr, formatArgs joins arguments the way
// Node's console does (util.inspect is out of scope; ToDisplayString
// is this engine's equivalent), and console.time/timeEnd keep named
// timers the same way the teacher's does.
type ConsoleInitializer struct {
	timers map[string]time.Time
}

func (c *ConsoleInitializer) Name() string  { return "console" }
func (c *ConsoleInitializer) Priority() int { return PriorityConsole }

func (c *ConsoleInitializer) Init(ctx *Context) error {
	c.timers = make(map[string]time.Time)

	consoleObj := ctx.NewPlainObject(ctx.VM.ObjectPrototype)
	ctx.Global("console", consoleObj)
	ctx.Intrinsic("console", consoleObj)

	stdout := func(vmm *vm.VM, _ value.Value, args []value.Value, _ value.Value) (value.Value, *object.Throw) {
		s, thrown := formatArgs(vmm, args)
		if thrown != nil {
			return value.Undefined, thrown
		}
		fmt.Fprintln(os.Stdout, s)
		return value.Undefined, nil
	}
	stderr := func(vmm *vm.VM, _ value.Value, args []value.Value, _ value.Value) (value.Value, *object.Throw) {
		s, thrown := formatArgs(vmm, args)
		if thrown != nil {
			return value.Undefined, thrown
		}
		fmt.Fprintln(os.Stderr, s)
		return value.Undefined, nil
	}

	ctx.Method(consoleObj, "log", 0, stdout)
	ctx.Method(consoleObj, "info", 0, stdout)
	ctx.Method(consoleObj, "debug", 0, stdout)
	ctx.Method(consoleObj, "warn", 0, stderr)
	ctx.Method(consoleObj, "error", 0, stderr)

	ctx.Method(consoleObj, "trace", 0, func(vmm *vm.VM, _ value.Value, args []value.Value, _ value.Value) (value.Value, *object.Throw) {
		s, thrown := formatArgs(vmm, args)
		if thrown != nil {
			return value.Undefined, thrown
		}
		fmt.Fprintln(os.Stderr, "Trace: "+s)
		return value.Undefined, nil
	})
	ctx.Method(consoleObj, "assert", 0, func(vmm *vm.VM, _ value.Value, args []value.Value, _ value.Value) (value.Value, *object.Throw) {
		if len(args) > 0 && vmm.ToBoolean(args[0]) {
			return value.Undefined, nil
		}
		s, thrown := formatArgs(vmm, vmArgTail(args, 1))
		if thrown != nil {
			return value.Undefined, thrown
		}
		if s == "" {
			fmt.Fprintln(os.Stderr, "Assertion failed")
		} else {
			fmt.Fprintln(os.Stderr, "Assertion failed: "+s)
		}
		return value.Undefined, nil
	})

	ctx.Method(consoleObj, "time", 1, func(vmm *vm.VM, _ value.Value, args []value.Value, _ value.Value) (value.Value, *object.Throw) {
		label := "default"
		if len(args) > 0 {
			s, thrown := vmm.ToDisplayString(args[0])
			if thrown != nil {
				return value.Undefined, thrown
			}
			label = s
		}
		c.timers[label] = time.Now()
		return value.Undefined, nil
	})
	ctx.Method(consoleObj, "timeEnd", 1, func(vmm *vm.VM, _ value.Value, args []value.Value, _ value.Value) (value.Value, *object.Throw) {
		label := "default"
		if len(args) > 0 {
			s, thrown := vmm.ToDisplayString(args[0])
			if thrown != nil {
				return value.Undefined, thrown
			}
			label = s
		}
		if start, ok := c.timers[label]; ok {
			delete(c.timers, label)
			fmt.Fprintf(os.Stdout, "%s: %s\n", label, time.Since(start))
		}
		return value.Undefined, nil
	})

	return nil
}

func vmArgTail(args []value.Value, from int) []value.Value {
	if from >= len(args) {
		return nil
	}
	return args[from:]
}

func formatArgs(vmm *vm.VM, args []value.Value) (string, *object.Throw) {
	parts := make([]string, len(args))
	for i, a := range args {
		s, thrown := vmm.ToDisplayString(a)
		if thrown != nil {
			return "", thrown
		}
		parts[i] = s
	}
	return strings.Join(parts, " "), nil
}
