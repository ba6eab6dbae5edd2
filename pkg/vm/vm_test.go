package vm_test

import (
	"testing"

	"ecmacore/pkg/runtime"
)

// eval runs src as a top-level script against a fresh, builtins-free
// Instance/Realm and returns its display-string result — these tests
// exercise the accumulator/value-stack/reference-stack core (arithmetic,
// closures, control flow, exceptions) independent of pkg/builtins, the
// way pkg/builtins/bootstrap_test.go exercises the intrinsics layered
// on top of it.
func eval(t *testing.T, src string) string {
	t.Helper()
	inst := runtime.NewInstance(runtime.DefaultConfig())
	realm := runtime.NewRealm(inst.Agent.Heap)
	inst.Agent.AddRealm(realm)

	result, errs := inst.RunIn(realm, "<test>", src)
	if len(errs) > 0 {
		t.Fatalf("running %q: %v", src, errs[0])
	}
	s, thrown := inst.Agent.VM.ToDisplayString(result)
	if thrown != nil {
		t.Fatalf("ToDisplayString: %v", thrown)
	}
	return s
}

func TestArithmeticAndCoercion(t *testing.T) {
	cases := []struct{ src, want string }{
		{"1 + 2 * 3", "7"},
		{"(1 + 2) * 3", "9"},
		{"\"a\" + 1", "a1"},
		{"10 % 3", "1"},
		{"2 ** 10", "1024"},
		{"!0", "true"},
		{"null == undefined", "true"},
		{"null === undefined", "false"},
	}
	for _, c := range cases {
		if got := eval(t, c.src); got != c.want {
			t.Errorf("%q: got %v, want %v", c.src, got, c.want)
		}
	}
}

func TestVarLetConstScoping(t *testing.T) {
	got := eval(t, `
		var total = 0;
		for (let i = 0; i < 5; i = i + 1) {
			total = total + i;
		}
		total
	`)
	if got != "10" {
		t.Errorf("loop accumulation: got %v, want 10", got)
	}
}

func TestClosureCapturesLoopVariable(t *testing.T) {
	got := eval(t, `
		function makeCounter() {
			var count = 0;
			return function () {
				count = count + 1;
				return count;
			};
		}
		var c = makeCounter();
		c(); c(); c()
	`)
	if got != "3" {
		t.Errorf("closure counter: got %v, want 3", got)
	}
}

func TestRecursion(t *testing.T) {
	got := eval(t, `
		function fib(n) {
			if (n < 2) return n;
			return fib(n - 1) + fib(n - 2);
		}
		fib(10)
	`)
	if got != "55" {
		t.Errorf("fib(10): got %v, want 55", got)
	}
}

func TestTryCatchFinally(t *testing.T) {
	got := eval(t, `
		var log = "";
		try {
			log = log + "t";
			throw "boom";
		} catch (e) {
			log = log + "c" + e;
		} finally {
			log = log + "f";
		}
		log
	`)
	if got != "tcboomf" {
		t.Errorf("try/catch/finally: got %v, want tcboomf", got)
	}
}

func TestObjectAndArrayLiterals(t *testing.T) {
	cases := []struct{ src, want string }{
		{"var o = {a: 1, b: 2}; o.a + o.b", "3"},
		{"var arr = [1, 2, 3]; arr[0] + arr[2]", "4"},
		{"var o = {x: 1}; o.y = 2; o.x + o.y", "3"},
	}
	for _, c := range cases {
		if got := eval(t, c.src); got != c.want {
			t.Errorf("%q: got %v, want %v", c.src, got, c.want)
		}
	}
}

func TestTypeofAndTernary(t *testing.T) {
	cases := []struct{ src, want string }{
		{"typeof 1", "number"},
		{"typeof \"s\"", "string"},
		{"typeof undefined", "undefined"},
		{"typeof function(){}", "function"},
		{"1 < 2 ? \"yes\" : \"no\"", "yes"},
	}
	for _, c := range cases {
		if got := eval(t, c.src); got != c.want {
			t.Errorf("%q: got %v, want %v", c.src, got, c.want)
		}
	}
}
