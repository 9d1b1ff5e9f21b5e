package object

import "testing"

func TestNumberInspectDropsTrailingZeros(t *testing.T) {
	tests := []struct {
		value float64
		want  string
	}{
		{5, "5"},
		{5.5, "5.5"},
		{-0.25, "-0.25"},
		{1000000, "1000000"},
	}
	for _, tt := range tests {
		n := &Number{Value: tt.value}
		if got := n.Inspect(); got != tt.want {
			t.Errorf("Inspect(%v): expected %q, got %q", tt.value, tt.want, got)
		}
	}
}

func TestMapKeepsInsertionOrder(t *testing.T) {
	m := NewMap()
	m.Put("zebra", &Number{Value: 1})
	m.Put("apple", &Number{Value: 2})
	m.Put("mango", &Number{Value: 3})

	want := []string{"zebra", "apple", "mango"}
	for i, k := range want {
		if m.Keys[i] != k {
			t.Fatalf("key %d: expected %q, got %q", i, k, m.Keys[i])
		}
	}

	m.Put("apple", &Number{Value: 9})
	if len(m.Keys) != 3 || m.Keys[1] != "apple" {
		t.Fatal("updating an existing key must not move it")
	}
	val, _ := m.Get("apple")
	if val.(*Number).Value != 9 {
		t.Fatal("update did not take")
	}
}

func TestMapDelete(t *testing.T) {
	m := NewMap()
	m.Put("a", TRUE)
	m.Put("b", FALSE)
	m.Delete("a")
	if _, ok := m.Get("a"); ok {
		t.Fatal("deleted key still present")
	}
	if len(m.Keys) != 1 || m.Keys[0] != "b" {
		t.Fatalf("key slice not compacted: %v", m.Keys)
	}
	m.Delete("missing")
}

func TestMapCopyIsShallowButIndependent(t *testing.T) {
	m := NewMap()
	m.Put("a", &Number{Value: 1})
	cp := m.Copy()
	cp.Put("b", &Number{Value: 2})
	if _, ok := m.Get("b"); ok {
		t.Fatal("copy leaked a key into the original")
	}
}

func TestIsTruthy(t *testing.T) {
	tests := []struct {
		obj  Object
		want bool
	}{
		{TRUE, true},
		{FALSE, false},
		{NULL, false},
		{&Number{Value: 0}, false},
		{&Number{Value: 0.1}, true},
		{&String{Value: ""}, false},
		{&String{Value: "x"}, true},
		{&List{}, false},
		{&List{Elements: []Object{TRUE}}, true},
		{NewMap(), false},
		{NewMap().Put("a", TRUE), true},
		{&Error{Message: "boom"}, false},
		{&Date{}, true},
	}
	for _, tt := range tests {
		if got := IsTruthy(tt.obj); got != tt.want {
			t.Errorf("IsTruthy(%s): expected %v, got %v", tt.obj.Inspect(), tt.want, got)
		}
	}
}

func TestEquals(t *testing.T) {
	listA := &List{Elements: []Object{&Number{Value: 1}, &String{Value: "a"}}}
	listB := &List{Elements: []Object{&Number{Value: 1}, &String{Value: "a"}}}
	mapA := NewMap().Put("k", &Number{Value: 1})
	mapB := NewMap().Put("k", &Number{Value: 1})
	mapC := NewMap().Put("k", &Number{Value: 2})

	tests := []struct {
		a, b Object
		want bool
	}{
		{&Number{Value: 1}, &Number{Value: 1}, true},
		{&Number{Value: 1}, &Number{Value: 2}, false},
		{&String{Value: "a"}, &String{Value: "a"}, true},
		{&Number{Value: 1}, &String{Value: "1"}, false},
		{TRUE, TRUE, true},
		{NULL, NULL, true},
		{listA, listB, true},
		{listA, &List{}, false},
		{mapA, mapB, true},
		{mapA, mapC, false},
	}
	for _, tt := range tests {
		if got := Equals(tt.a, tt.b); got != tt.want {
			t.Errorf("Equals(%s, %s): expected %v, got %v", tt.a.Inspect(), tt.b.Inspect(), tt.want, got)
		}
	}
}

func TestEnvironmentChain(t *testing.T) {
	outer := NewEnvironment()
	outer.Define("x", &Number{Value: 1})
	inner := NewEnclosedEnvironment(outer)

	val, ok := inner.Get("x")
	if !ok || val.(*Number).Value != 1 {
		t.Fatal("inner frame should see outer binding")
	}

	inner.Define("x", &Number{Value: 2})
	val, _ = inner.Get("x")
	if val.(*Number).Value != 2 {
		t.Fatal("local definition should shadow outer binding")
	}
	val, _ = outer.Get("x")
	if val.(*Number).Value != 1 {
		t.Fatal("shadowing must not touch outer binding")
	}
}

func TestEnvironmentSetUpdatesWhereBound(t *testing.T) {
	outer := NewEnvironment()
	outer.Define("x", &Number{Value: 1})
	inner := NewEnclosedEnvironment(outer)

	inner.Set("x", &Number{Value: 5})
	val, _ := outer.Get("x")
	if val.(*Number).Value != 5 {
		t.Fatal("Set should update the frame where the name is bound")
	}
	if _, ok := inner.GetLocal("x"); ok {
		t.Fatal("Set must not create a local shadow")
	}

	inner.Set("fresh", TRUE)
	if _, ok := inner.GetLocal("fresh"); !ok {
		t.Fatal("Set of an unbound name should define locally")
	}
	if _, ok := outer.GetLocal("fresh"); ok {
		t.Fatal("Set of an unbound name leaked into outer frame")
	}
}

func TestEnvironmentLocalAccessors(t *testing.T) {
	outer := NewEnvironment()
	outer.Define("x", &Number{Value: 1})
	inner := NewEnclosedEnvironment(outer)

	if _, ok := inner.GetLocal("x"); ok {
		t.Fatal("GetLocal must not walk the chain")
	}
	inner.DefineLocal("x", &Number{Value: 2})
	if val, _ := inner.GetLocal("x"); val.(*Number).Value != 2 {
		t.Fatal("DefineLocal did not bind")
	}
	inner.RemoveLocal("x")
	if _, ok := inner.GetLocal("x"); ok {
		t.Fatal("RemoveLocal did not remove")
	}
	val, _ := inner.Get("x")
	if val.(*Number).Value != 1 {
		t.Fatal("outer binding should survive RemoveLocal")
	}
}
