package builtins_test

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/tj-mc/tilde-sub001/internal/builtins"
	"github.com/tj-mc/tilde-sub001/internal/evaluator"
	"github.com/tj-mc/tilde-sub001/internal/object"
	"github.com/tj-mc/tilde-sub001/internal/parser"
	"github.com/tj-mc/tilde-sub001/internal/util"
)

func evalScript(t *testing.T, src string) object.Object {
	t.Helper()
	p := parser.New(src)
	program := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		t.Fatalf("parse errors: %v", errs)
	}
	ev := evaluator.New(util.Configuration{})
	ev.SetOutput(&strings.Builder{})
	return ev.Eval(program)
}

func expectNumber(t *testing.T, result object.Object, want float64) {
	t.Helper()
	num, ok := result.(*object.Number)
	if !ok {
		t.Fatalf("expected number, got %T (%s)", result, result.Inspect())
	}
	if num.Value != want {
		t.Fatalf("expected %v, got %v", want, num.Value)
	}
}

func expectString(t *testing.T, result object.Object, want string) {
	t.Helper()
	s, ok := result.(*object.String)
	if !ok {
		t.Fatalf("expected string, got %T (%s)", result, result.Inspect())
	}
	if s.Value != want {
		t.Fatalf("expected %q, got %q", want, s.Value)
	}
}

func expectBool(t *testing.T, result object.Object, want bool) {
	t.Helper()
	b, ok := result.(*object.Boolean)
	if !ok {
		t.Fatalf("expected boolean, got %T (%s)", result, result.Inspect())
	}
	if b.Value != want {
		t.Fatalf("expected %v, got %v", want, b.Value)
	}
}

func expectError(t *testing.T, result object.Object, want string) {
	t.Helper()
	errObj, ok := result.(*object.Error)
	if !ok {
		t.Fatalf("expected error, got %T (%s)", result, result.Inspect())
	}
	if errObj.Message != want {
		t.Fatalf("expected error %q, got %q", want, errObj.Message)
	}
}

func TestListHigherOrder(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{`map [1, 2, 3] |~n (~n * 2)|`, "[2, 4, 6]"},
		{`filter [1, 2, 3, 4] |~n (~n % 2 == 0)|`, "[2, 4]"},
		{`reduce [1, 2, 3, 4] |~acc ~n (~acc + ~n)| 0`, "10"},
		{`find [1, 5, 9] |~n (~n > 3)|`, "5"},
		{`find-index [1, 5, 9] |~n (~n > 3)|`, "1"},
		{`every [2, 4, 6] |~n (~n % 2 == 0)|`, "true"},
		{`some [1, 3, 4] |~n (~n % 2 == 0)|`, "true"},
		{`sort-by [{name: "b", age: 2}, {name: "a", age: 1}] |~p (~p.age)|`,
			`[{name: a, age: 1}, {name: b, age: 2}]`},
	}
	for _, tt := range tests {
		result := evalScript(t, tt.src)
		if result.Inspect() != tt.want {
			t.Errorf("%s: expected %s, got %s", tt.src, tt.want, result.Inspect())
		}
	}
}

func TestListShaping(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{`sort [3, 1, 2]`, "[1, 2, 3]"},
		{`sort ["pear", "apple"]`, "[apple, pear]"},
		{`reverse [1, 2, 3]`, "[3, 2, 1]"},
		{`slice [1, 2, 3, 4] 1 3`, "[2, 3]"},
		{`concat [1] [2, 3]`, "[1, 2, 3]"},
		{`take [1, 2, 3] 2`, "[1, 2]"},
		{`drop [1, 2, 3] 2`, "[3]"},
		{`flatten [[1, 2], [3], 4]`, "[1, 2, 3, 4]"},
		{`unique [1, 2, 1, 3, 2]`, "[1, 2, 3]"},
		{`zip [1, 2] ["a", "b", "c"]`, "[[1, a], [2, b]]"},
		{`chunk [1, 2, 3, 4, 5] 2`, "[[1, 2], [3, 4], [5]]"},
		{`remove [1, 2, 1] 1`, "[2, 1]"},
		{`remove-at [1, 2, 3] 1`, "[1, 3]"},
		{`insert [1, 3] 1 2`, "[1, 2, 3]"},
		{`set-at [1, 2, 3] 1 9`, "[1, 9, 3]"},
		{`pop [1, 2, 3]`, "[1, 2]"},
		{`shift [1, 2, 3]`, "[2, 3]"},
		{`unshift [2, 3] 1`, "[1, 2, 3]"},
		{`append [1, 2] 3`, "[1, 2, 3]"},
		{`range 4`, "[0, 1, 2, 3]"},
		{`range 1 4`, "[1, 2, 3]"},
		{`range 10 0 -3`, "[10, 7, 4, 1]"},
	}
	for _, tt := range tests {
		result := evalScript(t, tt.src)
		if result.Inspect() != tt.want {
			t.Errorf("%s: expected %s, got %s", tt.src, tt.want, result.Inspect())
		}
	}
}

func TestListQueries(t *testing.T) {
	expectNumber(t, evalScript(t, `index-of [10, 20, 30] 20`), 1)
	if _, ok := evalScript(t, `index-of [10, 20] 99`).(*object.Null); !ok {
		t.Error("index-of miss should be null")
	}
	if _, ok := evalScript(t, `find [1, 2] |~n (~n > 5)|`).(*object.Null); !ok {
		t.Error("find miss should be null")
	}
	expectBool(t, evalScript(t, `contains [1, 2, 3] 2`), true)
	expectBool(t, evalScript(t, `contains "hello" "ell"`), true)
	expectNumber(t, evalScript(t, `sum [1, 2, 3.5]`), 6.5)
	expectNumber(t, evalScript(t, `first [7, 8]`), 7)
	expectNumber(t, evalScript(t, `last [7, 8]`), 8)
}

func TestListErrors(t *testing.T) {
	expectError(t, evalScript(t, `remove-at [1, 2] 5`), "Index 5 out of range for list of length 2")
	expectError(t, evalScript(t, `map "nope" |~n (~n)|`), "map first argument must be a list")
	expectError(t, evalScript(t, `sort [1, "a"]`), "sort requires a list of all numbers or all strings")
	expectError(t, evalScript(t, `pop []`), "pop on empty list")
}

func TestStringBuiltins(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{`join (split "a,b,c" ",") "-"`, "a-b-c"},
		{`trim "  hi  "`, "hi"},
		{`uppercase "go"`, "GO"},
		{`lowercase "GO"`, "go"},
		{`replace "banana" "na" "no"`, "banono"},
		{`repeat "ab" 3`, "ababab"},
		{`substring "hello" 1 3`, "el"},
		{`pad-left "7" 3 "0"`, "007"},
		{`pad-right "7" 3`, "7  "},
		{`reverse "abc"`, "cba"},
	}
	for _, tt := range tests {
		expectString(t, evalScript(t, tt.src), tt.want)
	}

	expectBool(t, evalScript(t, `starts-with "hello" "he"`), true)
	expectBool(t, evalScript(t, `ends-with "hello" "lo"`), true)
	expectNumber(t, evalScript(t, `length "héllo"`), 5)
	expectNumber(t, evalScript(t, `length [1, 2, 3]`), 3)
	expectNumber(t, evalScript(t, `length {a: 1}`), 1)
}

func TestMathBuiltins(t *testing.T) {
	tests := []struct {
		src  string
		want float64
	}{
		{`absolute (0 - 4)`, 4},
		{`square-root 9`, 3},
		{`floor 2.7`, 2},
		{`ceil 2.1`, 3},
		{`round 2.5`, 3},
		{`pow 2 10`, 1024},
		{`min [4, 2, 9]`, 2},
		{`max 4 2 9`, 9},
	}
	for _, tt := range tests {
		expectNumber(t, evalScript(t, tt.src), tt.want)
	}

	expectError(t, evalScript(t, `square-root (0 - 1)`), "square-root of negative number")

	r := evalScript(t, `random`)
	num, ok := r.(*object.Number)
	if !ok || num.Value < 0 || num.Value >= 1 {
		t.Errorf("random out of range: %s", r.Inspect())
	}
	for i := 0; i < 20; i++ {
		ri := evalScript(t, `random-int 1 3`)
		v := ri.(*object.Number).Value
		if v < 1 || v > 3 || v != float64(int(v)) {
			t.Errorf("random-int out of range: %v", v)
		}
	}
}

func TestObjectBuiltins(t *testing.T) {
	expectString(t, evalScript(t, `join (keys {a: 1, b: 2}) ","`), "a,b")
	if got := evalScript(t, `values {a: 1, b: 2}`).Inspect(); got != "[1, 2]" {
		t.Errorf("values: got %s", got)
	}
	expectBool(t, evalScript(t, `has {a: 1} "a"`), true)
	expectBool(t, evalScript(t, `has {a: 1} "b"`), false)
	if got := evalScript(t, `merge {a: 1} {b: 2, a: 9}`).Inspect(); got != "{a: 9, b: 2}" {
		t.Errorf("merge: got %s", got)
	}
	if got := evalScript(t, `deep-merge {a: {x: 1}} {a: {y: 2}}`).Inspect(); got != "{a: {x: 1, y: 2}}" {
		t.Errorf("deep-merge: got %s", got)
	}
	if got := evalScript(t, `pick {a: 1, b: 2, c: 3} ["a", "c"]`).Inspect(); got != "{a: 1, c: 3}" {
		t.Errorf("pick: got %s", got)
	}
	if got := evalScript(t, `omit {a: 1, b: 2} ["a"]`).Inspect(); got != "{b: 2}" {
		t.Errorf("omit: got %s", got)
	}
	expectNumber(t, evalScript(t, `object-get {a: {b: {c: 7}}} "a.b.c"`), 7)
	if _, ok := evalScript(t, `object-get {a: 1} "a.b"`).(*object.Null); !ok {
		t.Error("object-get miss should be null")
	}
	expectNumber(t, evalScript(t, `object-get (object-set {} "a.b" 5) "a.b"`), 5)
}

func TestTypeBuiltins(t *testing.T) {
	tests := []struct {
		src  string
		want bool
	}{
		{`is-number 1`, true},
		{`is-number "1"`, false},
		{`is-string "x"`, true},
		{`is-boolean false`, true},
		{`is-list []`, true},
		{`is-object {}`, true},
		{`is-defined null`, false},
		{`is-defined 0`, true},
		{`is-empty ""`, true},
		{`is-empty [1]`, false},
		{`is-even 4`, true},
		{`is-odd 4`, false},
		{`is-positive 0.5`, true},
		{`is-negative (0 - 1)`, true},
		{`is-zero 0`, true},
	}
	for _, tt := range tests {
		expectBool(t, evalScript(t, tt.src), tt.want)
	}

	expectString(t, evalScript(t, `type-of 1`), "number")
	expectString(t, evalScript(t, `type-of []`), "list")
	expectString(t, evalScript(t, `type-of {}`), "object")
	expectString(t, evalScript(t, `type-of null`), "null")
}

func TestJSONRoundTrip(t *testing.T) {
	expectString(t, evalScript(t, `to-json {b: 1, a: [true, null, "x"]}`), `{"b":1,"a":[true,null,"x"]}`)

	result := evalScript(t, `from-json "{\"a\": 1, \"b\": [2, 3]}"`)
	m, ok := result.(*object.Map)
	if !ok {
		t.Fatalf("expected map, got %T", result)
	}
	if len(m.Keys) != 2 || m.Keys[0] != "a" || m.Keys[1] != "b" {
		t.Fatalf("key order lost: %v", m.Keys)
	}
	bad := evalScript(t, `from-json "{"`)
	if errObj, ok := bad.(*object.Error); !ok || !strings.HasPrefix(errObj.Message, "from-json:") {
		t.Errorf("expected from-json error, got %s", bad.Inspect())
	}
}

func TestYAMLRoundTrip(t *testing.T) {
	result := evalScript(t, `from-yaml "name: tilde\ncount: 3\nitems:\n  - a\n  - b\n"`)
	m, ok := result.(*object.Map)
	if !ok {
		t.Fatalf("expected map, got %T", result)
	}
	if len(m.Keys) != 3 || m.Keys[0] != "name" {
		t.Fatalf("key order lost: %v", m.Keys)
	}
	count, _ := m.Get("count")
	expectNumber(t, count, 3)

	out := evalScript(t, `to-yaml {name: "tilde", items: [1, 2]}`)
	s, ok := out.(*object.String)
	if !ok {
		t.Fatalf("expected string, got %T", out)
	}
	if !strings.Contains(s.Value, "name: tilde") || !strings.Contains(s.Value, "- 1") {
		t.Errorf("unexpected yaml: %q", s.Value)
	}
}

func TestDateBuiltins(t *testing.T) {
	expectNumber(t, evalScript(t, `date-year (date 2024 3 15)`), 2024)
	expectNumber(t, evalScript(t, `date-month (date 2024 3 15)`), 3)
	expectNumber(t, evalScript(t, `date-day (date 2024 3 15)`), 15)
	expectNumber(t, evalScript(t, `date-hour (date 2024 3 15 10 30 45)`), 10)
	expectString(t, evalScript(t, `date-weekday (date 2024 3 15)`), "Friday")
	expectString(t, evalScript(t, `date-format (date 2024 3 15) "YYYY-MM-DD"`), "2024-03-15")
	expectNumber(t, evalScript(t, `date-year (date-parse "2024-03-15")`), 2024)
	expectNumber(t, evalScript(t, `date-diff (date 2024 3 16) (date 2024 3 15) "days"`), 1)
	expectNumber(t, evalScript(t, `date-day (date-add (date 2024 3 15) 2 "days")`), 17)
	expectNumber(t, evalScript(t, `date-day (date-subtract (date 2024 3 15) 24 "hours")`), 14)
	expectBool(t, evalScript(t, `date-before (date 2024 1 1) (date 2024 6 1)`), true)
	expectBool(t, evalScript(t, `date-after (date 2024 1 1) (date 2024 6 1)`), false)
	expectBool(t, evalScript(t, `date-equal (date 2024 1 1) (date 2024 1 1)`), true)
	expectError(t, evalScript(t, `date-add (date 2024 1 1) 1 "fortnights"`),
		"date-add unit must be one of milliseconds, seconds, minutes, hours, days, weeks")
}

func TestCryptoBuiltins(t *testing.T) {
	expectString(t, evalScript(t, `hash "abc"`),
		"ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad")
	expectString(t, evalScript(t, `md5 "abc"`), "900150983cd24fb0d6963f7d28e17f72")
	expectString(t, evalScript(t, `sha1 "abc"`), "a9993e364706816aba3e25717850c26c9cd0d89d")
	expectString(t, evalScript(t, `hmac-sha256 "message" "key"`),
		"6e9ef29b75fffc5b7abae527d58fdadb2fe42e7219011976917343065f58ed4a")

	id := evalScript(t, `uuid`)
	s, ok := id.(*object.String)
	if !ok || len(s.Value) != 36 || s.Value[14] != '4' {
		t.Errorf("bad uuid: %s", id.Inspect())
	}
}

func TestEncodingBuiltins(t *testing.T) {
	expectString(t, evalScript(t, `base64-encode "hello"`), "aGVsbG8=")
	expectString(t, evalScript(t, `base64-decode "aGVsbG8="`), "hello")
	expectString(t, evalScript(t, `url-encode "a b&c"`), "a+b%26c")
	expectString(t, evalScript(t, `url-decode "a+b%26c"`), "a b&c")
}

func TestFilesystemBuiltins(t *testing.T) {
	dir := t.TempDir()
	src := strings.ReplaceAll(`
~path is "DIR/out.txt"
write ~path "hello"
append-file ~path " world"
~content is read ~path
~content
`, "DIR", dir)
	expectString(t, evalScript(t, src), "hello world")

	expectBool(t, evalScript(t, `file-exists "`+dir+`/out.txt"`), true)
	expectBool(t, evalScript(t, `file-exists "`+dir+`/missing.txt"`), false)
	expectNumber(t, evalScript(t, `file-size "`+dir+`/out.txt"`), 11)
	expectBool(t, evalScript(t, `dir-exists "`+dir+`"`), true)
	expectBool(t, evalScript(t, `make-dir "`+dir+`/sub/deep"`), true)
	expectBool(t, evalScript(t, `dir-exists "`+dir+`/sub/deep"`), true)

	if got := evalScript(t, `list-dir "`+dir+`"`).Inspect(); got != "[out.txt, sub]" {
		t.Errorf("list-dir: got %s", got)
	}

	info := evalScript(t, `file-info "`+dir+`/out.txt"`)
	m, ok := info.(*object.Map)
	if !ok {
		t.Fatalf("expected map, got %T", info)
	}
	size, _ := m.Get("size")
	expectNumber(t, size, 11)

	expectBool(t, evalScript(t, `delete-file "`+dir+`/out.txt"`), true)
	expectBool(t, evalScript(t, `file-exists "`+dir+`/out.txt"`), false)
}

func TestSystemBuiltins(t *testing.T) {
	t.Setenv("TILDE_TEST_VAR", "abc")
	expectString(t, evalScript(t, `env "TILDE_TEST_VAR"`), "abc")
	if _, ok := evalScript(t, `env "TILDE_TEST_MISSING"`).(*object.Null); !ok {
		t.Error("missing env should be null")
	}

	result := evalScript(t, `run "echo hi"`)
	m, ok := result.(*object.Map)
	if !ok {
		t.Fatalf("expected map, got %T", result)
	}
	stdout, _ := m.Get("stdout")
	expectString(t, stdout, "hi\n")
	code, _ := m.Get("code")
	expectNumber(t, code, 0)

	failed := evalScript(t, `run "exit 3"`)
	code, _ = failed.(*object.Map).Get("code")
	expectNumber(t, code, 3)
}

func TestArgsComeFromConfiguration(t *testing.T) {
	p := parser.New(`args`)
	program := p.ParseProgram()
	ev := evaluator.New(util.Configuration{ScriptArgs: []string{"a", "b"}})
	if got := ev.Eval(program).Inspect(); got != "[a, b]" {
		t.Errorf("args: got %s", got)
	}
}

func TestSayAndAsk(t *testing.T) {
	p := parser.New(`say "x: " (1 + 2)`)
	program := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		t.Fatalf("parse errors: %v", errs)
	}
	ev := evaluator.New(util.Configuration{})
	var out strings.Builder
	ev.SetOutput(&out)
	result := ev.Eval(program)
	expectString(t, result, "x: 3")
	if out.String() != "x: 3\n" {
		t.Errorf("stdout: got %q", out.String())
	}

	p = parser.New(`~answer is ask "name? "` + "\n" + `~answer`)
	program = p.ParseProgram()
	ev = evaluator.New(util.Configuration{})
	out.Reset()
	ev.SetOutput(&out)
	ev.SetInput(strings.NewReader("42\n"))
	expectNumber(t, ev.Eval(program), 42)
	if out.String() != "name? " {
		t.Errorf("prompt: got %q", out.String())
	}

	ev = evaluator.New(util.Configuration{})
	ev.SetOutput(&strings.Builder{})
	ev.SetInput(strings.NewReader("tilde\n"))
	p = parser.New(`ask`)
	expectString(t, ev.Eval(p.ParseProgram()), "tilde")
}

func TestLookupAndNames(t *testing.T) {
	if builtins.Lookup("map") == nil {
		t.Fatal("map should be registered")
	}
	if builtins.Lookup("no-such-builtin") != nil {
		t.Fatal("unknown name should return nil")
	}
	names := builtins.Names()
	if len(names) < 100 {
		t.Fatalf("registry unexpectedly small: %d", len(names))
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Fatalf("names not sorted at %d: %s >= %s", i, names[i-1], names[i])
		}
	}
}

func TestDateValues(t *testing.T) {
	d := evalScript(t, `date 1970 1 1`)
	if _, ok := d.(*object.Date); !ok {
		t.Fatalf("expected date, got %T (%s)", d, d.Inspect())
	}
	if got := d.Inspect(); got != "1970-01-01T00:00:00Z" {
		t.Errorf("date rendering: got %q", got)
	}

	// Dates are always truthy, the epoch included.
	src := `
~d is date 1970 1 1
if ~d ("truthy") else ("falsy")
`
	expectString(t, evalScript(t, src), "truthy")

	expectString(t, evalScript(t, `type-of (date 2024 3 15)`), "date")
	expectBool(t, evalScript(t, `(date 2024 3 15) == (date 2024 3 15)`), true)
	expectError(t, evalScript(t, `date-format 42 "YYYY"`),
		"date-format first argument must be a date")
	expectString(t, evalScript(t, `to-json {at: (date 1970 1 2)}`),
		`{"at":"1970-01-02T00:00:00Z"}`)
}

func TestMusicBuiltins(t *testing.T) {
	p := evalScript(t, `pattern "c3 d3"`)
	if _, ok := p.(*object.Pattern); !ok {
		t.Fatalf("expected pattern, got %T (%s)", p, p.Inspect())
	}
	expectString(t, evalScript(t, `type-of (pattern "c3")`), "pattern")

	expectString(t, evalScript(t, `tempo 90`), "Tempo set to 90 CPM")
	expectError(t, evalScript(t, `tempo 0`), "tempo must be positive")
	expectError(t, evalScript(t, `pattern "c3]"`), `invalid pattern: unexpected ']' in pattern`)
	expectError(t, evalScript(t, `play "c3 d3"`), "play argument must be a pattern")
	expectError(t, evalScript(t, `pattern-debug "c3"`), "pattern-debug requires a pattern argument")

	src := `
~p is pattern "c3 d3"
play ~p
`
	expectString(t, evalScript(t, src), "Pattern added to scheduler")
	expectString(t, evalScript(t, `stop`), "Scheduler stopped")

	debug := evalScript(t, `
~p is pattern "c3"
play ~p
__scheduler-debug
`)
	m, ok := debug.(*object.Map)
	if !ok {
		t.Fatalf("expected map, got %T", debug)
	}
	playing, _ := m.Get("playing")
	expectBool(t, playing, true)
	count, _ := m.Get("patterns")
	expectNumber(t, count, 1)
}

func TestSchedulerIsPerEvaluator(t *testing.T) {
	run := func(ev *evaluator.Evaluator, src string) object.Object {
		t.Helper()
		p := parser.New(src)
		program := p.ParseProgram()
		if errs := p.Errors(); len(errs) > 0 {
			t.Fatalf("parse errors: %v", errs)
		}
		return ev.Eval(program)
	}

	a := evaluator.New(util.Configuration{})
	b := evaluator.New(util.Configuration{})
	run(a, `play (pattern "c3")`)

	debug := run(b, `__scheduler-debug`)
	m := debug.(*object.Map)
	count, _ := m.Get("patterns")
	expectNumber(t, count, 0)
	playing, _ := m.Get("playing")
	expectBool(t, playing, false)
}

func TestRandomUsesEvaluatorSource(t *testing.T) {
	roll := func(seed int64) float64 {
		t.Helper()
		p := parser.New(`random`)
		program := p.ParseProgram()
		ev := evaluator.New(util.Configuration{})
		ev.SeedRandom(seed)
		result := ev.Eval(program)
		num, ok := result.(*object.Number)
		if !ok {
			t.Fatalf("expected number, got %T", result)
		}
		return num.Value
	}

	if roll(7) != roll(7) {
		t.Error("same seed should reproduce the same value")
	}

	p := parser.New(`random-int 1 3`)
	program := p.ParseProgram()
	ev := evaluator.New(util.Configuration{})
	ev.SeedRandom(1)
	v := ev.Eval(program).(*object.Number).Value
	if v < 1 || v > 3 || v != float64(int(v)) {
		t.Errorf("random-int out of range: %v", v)
	}
}

func TestHTTPGet(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"msg": "hello", "n": 7}`)
	}))
	defer server.Close()

	src := fmt.Sprintf(`
~r is get "%s"
[~r.status, ~r.status_text, ~r.ok, ~r.success, ~r.body.msg, ~r.body.n]
`, server.URL)
	result := evalScript(t, src)
	want := `[200, OK, true, true, hello, 7]`
	if result.Inspect() != want {
		t.Errorf("expected %s, got %s", want, result.Inspect())
	}

	headers := evalScript(t, fmt.Sprintf(`
~r is get "%s"
~r.headers.content-type
`, server.URL))
	expectString(t, headers, "application/json")
}

func TestHTTPGetPlainBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "just text")
	}))
	defer server.Close()

	src := fmt.Sprintf(`
~r is get "%s"
[~r.body, ~r.body_text]
`, server.URL)
	result := evalScript(t, src)
	if got := result.Inspect(); got != "[just text, just text]" {
		t.Errorf("plain body: got %s", got)
	}
}

func TestHTTPPostOptions(t *testing.T) {
	var gotMethod, gotContentType, gotAuth, gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotContentType = r.Header.Get("Content-Type")
		gotAuth = r.Header.Get("Authorization")
		data, _ := io.ReadAll(r.Body)
		gotBody = string(data)
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	src := fmt.Sprintf(`
~r is post "%s" {body: {name: "ada"}, bearer_token: "tok-1"}
~r.status
`, server.URL)
	expectNumber(t, evalScript(t, src), 201)

	if gotMethod != "POST" {
		t.Errorf("expected POST, got %s", gotMethod)
	}
	if gotContentType != "application/json" {
		t.Errorf("expected JSON content type, got %q", gotContentType)
	}
	if gotAuth != "Bearer tok-1" {
		t.Errorf("authorization: got %q", gotAuth)
	}
	if gotBody != `{"name":"ada"}` {
		t.Errorf("body: got %q", gotBody)
	}
}

func TestHTTPBasicAuthAndMethod(t *testing.T) {
	var gotMethod, gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotAuth = r.Header.Get("Authorization")
	}))
	defer server.Close()

	src := fmt.Sprintf(`
~r is http "options" "%s" {basic_auth: {username: "u", password: "p"}}
~r.ok
`, server.URL)
	expectBool(t, evalScript(t, src), true)

	if gotMethod != "OPTIONS" {
		t.Errorf("expected OPTIONS, got %s", gotMethod)
	}
	if gotAuth != "Basic dTpw" {
		t.Errorf("authorization: got %q", gotAuth)
	}
}

func TestHTTPErrors(t *testing.T) {
	expectError(t, evalScript(t, `get`), "get requires at least a URL argument")
	expectError(t, evalScript(t, `get 42`), "get URL must be a string")
	expectError(t, evalScript(t, `post`), "post requires at least a URL argument")
	expectError(t, evalScript(t, `http "GET"`), "http requires method and URL arguments")
	expectError(t, evalScript(t, `http 1 "http://x"`), "http method must be a string")
}
