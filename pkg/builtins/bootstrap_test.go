package builtins

import (
	"testing"

	"ecmacore/pkg/runtime"
)

// run compiles and executes src against a freshly bootstrapped realm,
// failing the test on any parse/compile/throw error.
func run(t *testing.T, src string) (interface{}, *runtime.Instance) {
	t.Helper()
	inst := runtime.NewInstance(runtime.DefaultConfig())
	realm := runtime.NewRealm(inst.Agent.Heap)
	if err := Bootstrap(inst.Agent.VM, realm); err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}
	inst.Agent.AddRealm(realm)

	result, errs := inst.RunIn(realm, "<test>", src)
	if len(errs) > 0 {
		t.Fatalf("running %q: %v", src, errs[0])
	}
	s, thrown := inst.Agent.VM.ToDisplayString(result)
	if thrown != nil {
		t.Fatalf("ToDisplayString: %v", thrown)
	}
	return s, inst
}

func TestBootstrapPopulatesIntrinsics(t *testing.T) {
	inst := runtime.NewInstance(runtime.DefaultConfig())
	realm := runtime.NewRealm(inst.Agent.Heap)
	if err := Bootstrap(inst.Agent.VM, realm); err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}
	for _, name := range []string{
		"Object.prototype", "Function.prototype", "Array.prototype",
		"String.prototype", "Number.prototype", "Boolean.prototype",
		"Error.prototype", "TypeError.prototype", "Math", "JSON", "console",
	} {
		if _, ok := realm.Intrinsics[name]; !ok {
			t.Errorf("Bootstrap did not register intrinsic %q", name)
		}
	}
	if realm.GlobalObject.IsUndefined() {
		t.Fatal("Bootstrap left realm.GlobalObject undefined")
	}
}

func TestObjectBuiltins(t *testing.T) {
	cases := []struct{ src, want string }{
		{"Object.keys({a:1,b:2}).length", "2"},
		{"Object.values({a:1,b:2}).join(\",\")", "1,2"},
		{"Object.prototype.toString.call({})", "[object Object]"},
		{"var o = Object.freeze({a:1}); o.a = 2; o.a", "1"},
	}
	for _, c := range cases {
		got, _ := run(t, c.src)
		if got != c.want {
			t.Errorf("%q: got %v, want %v", c.src, got, c.want)
		}
	}
}

func TestArrayBuiltins(t *testing.T) {
	cases := []struct{ src, want string }{
		{"[1,2,3].map(function(x){return x*2}).join(\",\")", "2,4,6"},
		{"[1,2,3,4].filter(function(x){return x%2===0}).join(\",\")", "2,4"},
		{"[1,2,3].reduce(function(a,b){return a+b}, 0)", "6"},
		{"[3,1,2].sort().join(\",\")", "1,2,3"},
		{"[1,[2,3],4].length", "3"},
	}
	for _, c := range cases {
		got, _ := run(t, c.src)
		if got != c.want {
			t.Errorf("%q: got %v, want %v", c.src, got, c.want)
		}
	}
}

func TestStringBuiltins(t *testing.T) {
	cases := []struct{ src, want string }{
		{"\"hello\".toUpperCase()", "HELLO"},
		{"\"  pad  \".trim()", "pad"},
		{"\"a,b,c\".split(\",\").join(\"-\")", "a-b-c"},
		{"\"abc\".charAt(1)", "b"},
		{"\"abcabc\".replace(\"a\", \"X\")", "Xbcabc"},
		{"\"e\\u0301\".normalize(\"NFC\") === \"\\u00e9\"", "true"},
		{"\"\\u00e9\".normalize(\"NFD\") === \"e\\u0301\"", "true"},
	}
	for _, c := range cases {
		got, _ := run(t, c.src)
		if got != c.want {
			t.Errorf("%q: got %v, want %v", c.src, got, c.want)
		}
	}
}

func TestStringNormalizeRejectsUnknownForm(t *testing.T) {
	inst := runtime.NewInstance(runtime.DefaultConfig())
	realm := runtime.NewRealm(inst.Agent.Heap)
	if err := Bootstrap(inst.Agent.VM, realm); err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}
	inst.Agent.AddRealm(realm)

	_, errs := inst.RunIn(realm, "<test>", `"abc".normalize("bogus")`)
	if len(errs) == 0 {
		t.Fatal("expected normalize(\"bogus\") to throw a RangeError")
	}
}

func TestMathAndNumberBuiltins(t *testing.T) {
	cases := []struct{ src, want string }{
		{"Math.max(1,5,3)", "5"},
		{"Math.floor(3.7)", "3"},
		{"(255).toString(16)", "ff"},
		{"Number.isInteger(4)", "true"},
		{"parseInt(\"42px\")", "42"},
		{"parseFloat(\"3.14abc\")", "3.14"},
	}
	for _, c := range cases {
		got, _ := run(t, c.src)
		if got != c.want {
			t.Errorf("%q: got %v, want %v", c.src, got, c.want)
		}
	}
}

func TestJSONRoundTrip(t *testing.T) {
	got, _ := run(t, `JSON.stringify({a:1,b:[1,2,3],c:"x"})`)
	want := `{"a":1,"b":[1,2,3],"c":"x"}`
	if got != want {
		t.Fatalf("stringify: got %v, want %v", got, want)
	}
	got, _ = run(t, `JSON.parse('{"a":1,"b":[1,2,3]}').b[1]`)
	if got != "2" {
		t.Fatalf("parse round trip: got %v, want 2", got)
	}
}

func TestErrorConstructors(t *testing.T) {
	got, _ := run(t, `(new TypeError("bad")).message`)
	if got != "bad" {
		t.Errorf("TypeError message: got %v, want bad", got)
	}
	got, _ = run(t, `(new TypeError("bad")).toString()`)
	if got != "TypeError: bad" {
		t.Errorf("TypeError toString: got %v, want TypeError: bad", got)
	}
}

func TestFunctionCallApplyBind(t *testing.T) {
	got, _ := run(t, `
		function add(a, b) { return a + b; }
		var bound = add.bind(null, 1);
		add.call(null, 2, 3) + add.apply(null, [4, 5]) + bound(9)
	`)
	if got != "24" {
		t.Errorf("call/apply/bind: got %v, want 24", got)
	}
}

func TestGlobalsParseAndIsNaN(t *testing.T) {
	cases := []struct{ src, want string }{
		{"isNaN(NaN)", "true"},
		{"isFinite(Infinity)", "false"},
		{"typeof undefined", "undefined"},
	}
	for _, c := range cases {
		got, _ := run(t, c.src)
		if got != c.want {
			t.Errorf("%q: got %v, want %v", c.src, got, c.want)
		}
	}
}
