// Command ecmacore is the CLI host: run a script file, a one-off
// expression, or a REPL, against one runtime.Instance. Grounded on the
// teacher's cmd/paserati/main.go (flag surface, run/REPL split,
// DisplayResult pattern), rebuilt against runtime.Instance/Agent/
// pkg/builtins instead of the teacher's driver.Paserati/type checker.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"ecmacore/pkg/builtins"
	"ecmacore/pkg/compiler"
	"ecmacore/pkg/errors"
	"ecmacore/pkg/modules"
	"ecmacore/pkg/parser"
	"ecmacore/pkg/runtime"
	"ecmacore/pkg/source"
	"ecmacore/pkg/value"
)

func main() {
	exprFlag := flag.String("e", "", "Run the given expression and exit")
	moduleFlag := flag.Bool("module", false, "Run the input file as a module (top-level bindings become its exports)")
	bytecodeFlag := flag.Bool("bytecode", false, "Print compiled bytecode before execution")
	verboseFlag := flag.Bool("v", false, "Verbose host tracing")
	blockFlag := flag.Bool("block", false, "Keep running until every queued job and timeout has drained")

	flag.Parse()

	cfg := runtime.DefaultConfig()
	cfg.Verbose = *verboseFlag
	cfg.BlockOnMain = *blockFlag

	inst, realm := newSession(cfg)

	switch {
	case *exprFlag != "":
		runAndReport(inst, realm, "<expr>", *exprFlag, *bytecodeFlag)
		inst.RunTasks()
	case flag.NArg() > 1:
		fmt.Fprintf(os.Stderr, "Usage: ecmacore [script] or ecmacore -e \"expression\"\n")
		os.Exit(64)
	case flag.NArg() == 1:
		runFile(inst, realm, flag.Arg(0), *moduleFlag, *bytecodeFlag)
		inst.RunTasks()
	default:
		repl(inst, realm)
	}
}

// newSession builds one Agent/Realm, bootstraps its intrinsics, and
// wires an os.DirFS-rooted module resolver at the working directory —
// the CLI-host equivalent of the teacher's driver.NewPaserati.
func newSession(cfg runtime.Config) (*runtime.Instance, *runtime.Realm) {
	inst := runtime.NewInstance(cfg)
	realm := runtime.NewRealm(inst.Agent.Heap)
	if err := builtins.Bootstrap(inst.Agent.VM, realm); err != nil {
		fmt.Fprintf(os.Stderr, "failed to bootstrap builtins: %v\n", err)
		os.Exit(70)
	}
	inst.Agent.AddRealm(realm)

	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}
	resolver := modules.NewFileSystemResolver(os.DirFS(cwd))
	inst.InitializeModuleMap(realm, resolver, resolver)

	return inst, realm
}

func runFile(inst *runtime.Instance, realm *runtime.Realm, filename string, asModule, showBytecode bool) {
	if showBytecode {
		dumpBytecode(inst, realm, filename)
	}
	var result value.Value
	var errs []errors.EngineError
	if asModule {
		result, errs = inst.RunModuleFile(realm, filename)
	} else {
		result, errs = inst.RunFile(realm, filename)
	}
	if !displayResult(inst, result, errs) {
		os.Exit(70)
	}
}

func runAndReport(inst *runtime.Instance, realm *runtime.Realm, name, src string, showBytecode bool) {
	if showBytecode {
		dumpBytecodeSource(inst, realm, name, src)
	}
	result, errs := inst.RunIn(realm, name, src)
	if !displayResult(inst, result, errs) {
		os.Exit(70)
	}
}

func repl(inst *runtime.Instance, realm *runtime.Realm) {
	reader := bufio.NewReader(os.Stdin)
	fmt.Println("ecmacore (Ctrl+D to exit)")
	for {
		fmt.Print("> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				fmt.Println("\nGoodbye!")
				return
			}
			fmt.Fprintf(os.Stderr, "error reading input: %s\n", err)
			return
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		result, errs := inst.RunIn(realm, "<repl>", line)
		displayResult(inst, result, errs)
		inst.RunTasks()
	}
}

func displayResult(inst *runtime.Instance, result value.Value, errs []errors.EngineError) bool {
	if len(errs) > 0 {
		errors.DisplayErrors(errs)
		return false
	}
	if result.IsUndefined() {
		return true
	}
	s, thrown := inst.Agent.VM.ToDisplayString(result)
	if thrown != nil {
		fmt.Fprintln(os.Stderr, "<error converting result to string>")
		return false
	}
	fmt.Println(s)
	return true
}

func dumpBytecode(inst *runtime.Instance, realm *runtime.Realm, filename string) {
	data, err := os.ReadFile(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read %q: %v\n", filename, err)
		return
	}
	dumpBytecodeSource(inst, realm, filename, string(data))
}

// dumpBytecodeSource disassembles src without running it, a standalone
// parse+compile pass against the same heap the real run will later use
// (wasted compilation work traded for not needing a second code path).
func dumpBytecodeSource(inst *runtime.Instance, _ *runtime.Realm, name, src string) {
	srcFile := source.NewEvalSource(src)
	srcFile.Name = name
	prog, parseErrs := parser.ParseProgram(srcFile)
	if len(parseErrs) > 0 {
		errors.DisplayErrors(parseErrs)
		return
	}
	exe, compileErrs := compiler.Compile(inst.Agent.Heap, prog, name)
	if len(compileErrs) > 0 {
		errors.DisplayErrors(compileErrs)
		return
	}
	fmt.Fprintln(os.Stderr, exe.Disassemble())
}
