package music

import (
	"testing"
	"time"
)

func mustPattern(t *testing.T, notation string) *Pattern {
	t.Helper()
	p, err := ParseMiniNotation(notation)
	if err != nil {
		t.Fatalf("parse %q: %v", notation, err)
	}
	return p
}

func TestSchedulerDefaults(t *testing.T) {
	s := NewScheduler()
	if s.IsPlaying() {
		t.Error("new scheduler should not be playing")
	}
	if s.Tempo() != 120 {
		t.Errorf("default tempo should be 120 CPM, got %v", s.Tempo())
	}
	if s.PatternCount() != 0 {
		t.Errorf("new scheduler should hold no patterns, got %d", s.PatternCount())
	}
}

func TestSetTempoIgnoresNonPositive(t *testing.T) {
	s := NewScheduler()
	s.SetTempo(90)
	s.SetTempo(0)
	s.SetTempo(-10)
	if s.Tempo() != 90 {
		t.Errorf("expected tempo 90, got %v", s.Tempo())
	}
}

func TestTickWhileStoppedFiresNothing(t *testing.T) {
	s := NewScheduler()
	s.Add("beat", mustPattern(t, "c3 d3"))
	if events := s.TickAt(0); events != nil {
		t.Errorf("stopped scheduler must not fire, got %v", events)
	}
}

func TestEventsFireAtCycleTimes(t *testing.T) {
	s := NewScheduler()
	s.Add("beat", mustPattern(t, "c3 d3"))
	s.Start()

	events := s.TickAt(0)
	if len(events) != 1 || events[0].Event.Pitch != "c3" {
		t.Fatalf("at cycle 0 expected c3, got %v", events)
	}

	events = s.TickAt(0.5)
	if len(events) != 1 || events[0].Event.Pitch != "d3" {
		t.Fatalf("at cycle 0.5 expected d3, got %v", events)
	}
}

func TestPatternLoopsAcrossCycles(t *testing.T) {
	s := NewScheduler()
	s.Add("beat", mustPattern(t, "c3"))
	s.Start()

	s.TickAt(0)
	events := s.TickAt(1.0)
	if len(events) != 1 || events[0].Event.Pitch != "c3" {
		t.Fatalf("pattern should restart each cycle, got %v", events)
	}
	events = s.TickAt(2.0)
	if len(events) != 1 {
		t.Fatalf("pattern should keep looping, got %v", events)
	}
}

func TestMultiplePatternsReportInNameOrder(t *testing.T) {
	s := NewScheduler()
	s.Add("b-second", mustPattern(t, "e3"))
	s.Add("a-first", mustPattern(t, "c3"))
	s.Start()

	events := s.TickAt(0)
	if len(events) != 2 {
		t.Fatalf("expected both patterns to fire, got %d", len(events))
	}
	if events[0].PatternName != "a-first" || events[1].PatternName != "b-second" {
		t.Errorf("events not in name order: %v, %v", events[0].PatternName, events[1].PatternName)
	}
}

func TestAddReplacesPattern(t *testing.T) {
	s := NewScheduler()
	s.Add("beat", mustPattern(t, "c3"))
	s.Add("beat", mustPattern(t, "g3"))
	s.Start()

	events := s.TickAt(0)
	if len(events) != 1 || events[0].Event.Pitch != "g3" {
		t.Fatalf("expected replacement pattern, got %v", events)
	}
}

func TestRemove(t *testing.T) {
	s := NewScheduler()
	s.Add("beat", mustPattern(t, "c3"))
	if !s.Remove("beat") {
		t.Error("removing an existing pattern should report true")
	}
	if s.Remove("beat") {
		t.Error("removing a missing pattern should report false")
	}
}

func TestStopClearsEverything(t *testing.T) {
	s := NewScheduler()
	s.Add("beat", mustPattern(t, "c3"))
	s.Start()
	s.Stop()
	if s.IsPlaying() {
		t.Error("scheduler should be stopped")
	}
	if s.PatternCount() != 0 {
		t.Error("stop should drop all patterns")
	}
	if s.CurrentTime() != 0 {
		t.Error("stop should rewind the clock")
	}
}

func TestTickUsesInjectedClock(t *testing.T) {
	current := time.Unix(0, 0)
	s := NewSchedulerWithClock(func() time.Time { return current })
	s.SetTempo(60) // one cycle per second
	s.Add("beat", mustPattern(t, "c3 d3"))
	s.Start()

	events := s.Tick()
	if len(events) != 1 || events[0].Event.Pitch != "c3" {
		t.Fatalf("at start expected c3, got %v", events)
	}

	current = current.Add(500 * time.Millisecond)
	events = s.Tick()
	if len(events) != 1 || events[0].Event.Pitch != "d3" {
		t.Fatalf("at half cycle expected d3, got %v", events)
	}
}

func TestTimedEventString(t *testing.T) {
	te := TimedEvent{
		PatternName: "beat",
		Event:       Event{Pitch: "c3", Velocity: 1, Length: 0.4},
	}
	want := "♪ beat c3(v:1.00,d:0.40)"
	if te.String() != want {
		t.Errorf("expected %q, got %q", want, te.String())
	}
}
