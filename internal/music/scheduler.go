package music

import (
	"fmt"
	"math"
	"sort"
	"sync"
	"time"
)

const defaultCPM = 120.0

// Scheduler tracks active patterns against a cycle clock measured in cycles
// per minute. It never runs its own goroutine: callers drive it with Tick,
// which reports the events due at the current cycle time.
type Scheduler struct {
	mu sync.Mutex

	patterns  map[string]*activePattern
	current   float64 // current time in cycles
	cpm       float64
	playing   bool
	seq       int
	startedAt time.Time
	now       func() time.Time
}

type activePattern struct {
	pattern   *Pattern
	nextCycle float64 // cycle time at which the current cycle of this pattern began
	eventIdx  int     // next unfired event within the current cycle
	cycles    int
}

// TimedEvent is an event that fired, tagged with its pattern name.
type TimedEvent struct {
	PatternName string
	Time        float64 // absolute cycle time
	Event       Event
}

func (te TimedEvent) String() string {
	return fmt.Sprintf("♪ %s %s", te.PatternName, te.Event)
}

func NewScheduler() *Scheduler {
	return &Scheduler{
		patterns: make(map[string]*activePattern),
		cpm:      defaultCPM,
		now:      time.Now,
	}
}

// NewSchedulerWithClock substitutes the wall clock, for deterministic ticks.
func NewSchedulerWithClock(now func() time.Time) *Scheduler {
	s := NewScheduler()
	s.now = now
	return s
}

// Add registers or replaces a named pattern. New patterns begin at the next
// whole cycle boundary.
func (s *Scheduler) Add(name string, p *Pattern) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.patterns[name] = &activePattern{
		pattern:   p,
		nextCycle: math.Ceil(s.current),
	}
}

// NextPatternName hands out sequential names for patterns played without one.
func (s *Scheduler) NextPatternName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	return fmt.Sprintf("pattern-%d", s.seq)
}

func (s *Scheduler) Remove(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.patterns[name]; !ok {
		return false
	}
	delete(s.patterns, name)
	return true
}

// Start begins playback from cycle zero and rewinds every pattern.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playing = true
	s.startedAt = s.now()
	s.current = 0
	for _, active := range s.patterns {
		active.nextCycle = 0
		active.eventIdx = 0
		active.cycles = 0
	}
}

// Stop halts playback and clears all patterns.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playing = false
	s.patterns = make(map[string]*activePattern)
	s.current = 0
}

func (s *Scheduler) SetTempo(cpm float64) {
	if cpm <= 0 {
		return
	}
	s.mu.Lock()
	s.cpm = cpm
	s.mu.Unlock()
}

func (s *Scheduler) Tempo() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cpm
}

func (s *Scheduler) IsPlaying() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playing
}

func (s *Scheduler) CurrentTime() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

func (s *Scheduler) PatternCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.patterns)
}

// Tick advances the clock from elapsed real time and returns the events due.
func (s *Scheduler) Tick() []TimedEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.playing {
		return nil
	}
	elapsed := s.now().Sub(s.startedAt).Seconds()
	s.current = elapsed * (s.cpm / 60.0)
	return s.collectDue()
}

// TickAt forces the clock to a specific cycle time. Used by tests and the
// debug surface to make scheduling observable without a wall clock.
func (s *Scheduler) TickAt(cycleTime float64) []TimedEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.playing {
		return nil
	}
	s.current = cycleTime
	return s.collectDue()
}

func (s *Scheduler) collectDue() []TimedEvent {
	var events []TimedEvent

	names := make([]string, 0, len(s.patterns))
	for name := range s.patterns {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		active := s.patterns[name]
		if len(active.pattern.Events) == 0 {
			continue
		}
		step := active.pattern.Duration
		if step <= 0 {
			step = 1
		}
		for {
			if active.eventIdx >= len(active.pattern.Events) {
				active.nextCycle += step
				active.eventIdx = 0
				active.cycles++
			}
			ev := active.pattern.Events[active.eventIdx]
			absolute := active.nextCycle + ev.Time
			if absolute > s.current+0.01 {
				break
			}
			events = append(events, TimedEvent{
				PatternName: name,
				Time:        absolute,
				Event:       ev,
			})
			active.eventIdx++
		}
	}

	return events
}
