package music

import (
	"math"
	"testing"
)

func parseOK(t *testing.T, notation string) *Pattern {
	t.Helper()
	p, err := ParseMiniNotation(notation)
	if err != nil {
		t.Fatalf("parse %q: %v", notation, err)
	}
	return p
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestSimpleSequence(t *testing.T) {
	p := parseOK(t, "c3 d3 e3 f3")
	if len(p.Events) != 4 {
		t.Fatalf("expected 4 events, got %d", len(p.Events))
	}
	wantTimes := []float64{0, 0.25, 0.5, 0.75}
	wantPitches := []string{"c3", "d3", "e3", "f3"}
	for i, ev := range p.Events {
		if !approx(ev.Time, wantTimes[i]) {
			t.Errorf("event %d: expected time %v, got %v", i, wantTimes[i], ev.Time)
		}
		if ev.Pitch != wantPitches[i] {
			t.Errorf("event %d: expected pitch %s, got %s", i, wantPitches[i], ev.Pitch)
		}
	}
}

func TestRests(t *testing.T) {
	p := parseOK(t, "c3 ~ d3")
	if len(p.Events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(p.Events))
	}
	if !p.Events[1].IsRest() {
		t.Error("middle event should be a rest")
	}
	if p.Events[1].String() != "~" {
		t.Errorf("rest should print as ~, got %s", p.Events[1])
	}
}

func TestSubdivisionGroups(t *testing.T) {
	p := parseOK(t, "[c3 d3] e3")
	if len(p.Events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(p.Events))
	}
	wantTimes := []float64{0, 0.25, 0.5}
	for i, ev := range p.Events {
		if !approx(ev.Time, wantTimes[i]) {
			t.Errorf("event %d: expected time %v, got %v", i, wantTimes[i], ev.Time)
		}
	}
}

func TestNestedGroups(t *testing.T) {
	p := parseOK(t, "[[c3 d3] e3] f3")
	wantTimes := []float64{0, 0.125, 0.25, 0.5}
	if len(p.Events) != 4 {
		t.Fatalf("expected 4 events, got %d", len(p.Events))
	}
	for i, ev := range p.Events {
		if !approx(ev.Time, wantTimes[i]) {
			t.Errorf("event %d: expected time %v, got %v", i, wantTimes[i], ev.Time)
		}
	}
}

func TestChords(t *testing.T) {
	p := parseOK(t, "c3,e3,g3 c4")
	if len(p.Events) != 4 {
		t.Fatalf("expected 4 events, got %d", len(p.Events))
	}
	for i := 0; i < 3; i++ {
		if !approx(p.Events[i].Time, 0) {
			t.Errorf("chord note %d should fire at 0, got %v", i, p.Events[i].Time)
		}
	}
	if !approx(p.Events[3].Time, 0.5) {
		t.Errorf("expected second step at 0.5, got %v", p.Events[3].Time)
	}
}

func TestRepeatModifier(t *testing.T) {
	p := parseOK(t, "c3*2 d3")
	if len(p.Events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(p.Events))
	}
	wantTimes := []float64{0, 0.25, 0.5}
	for i, ev := range p.Events {
		if !approx(ev.Time, wantTimes[i]) {
			t.Errorf("event %d: expected time %v, got %v", i, wantTimes[i], ev.Time)
		}
	}
}

func TestStretchModifier(t *testing.T) {
	p := parseOK(t, "c3/2 d3")
	if len(p.Events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(p.Events))
	}
	if p.Events[0].Length <= p.Events[1].Length {
		t.Error("stretched note should be longer than a plain one")
	}
}

func TestEmptyPattern(t *testing.T) {
	p := parseOK(t, "   ")
	if !p.IsEmpty() {
		t.Error("blank notation should yield an empty pattern")
	}
	if p.Duration != 1 {
		t.Errorf("empty pattern duration should be 1, got %v", p.Duration)
	}
}

func TestParseErrors(t *testing.T) {
	bad := []string{
		"[c3 d3",
		"c3]",
		"c3*",
		"c3/0",
		"c3,",
	}
	for _, notation := range bad {
		if _, err := ParseMiniNotation(notation); err == nil {
			t.Errorf("expected %q to fail", notation)
		}
	}
}

func TestNotationIsPreserved(t *testing.T) {
	p := parseOK(t, "  c3 d3  ")
	if p.Notation() != "c3 d3" {
		t.Errorf("expected trimmed notation, got %q", p.Notation())
	}
}
