package music

import (
	"fmt"
	"strconv"
	"strings"
)

// Pattern is one cycle of timed events parsed from mini-notation.
type Pattern struct {
	notation string
	Events   []Event
	Duration float64 // duration in cycles
}

func (p *Pattern) Notation() string { return p.notation }
func (p *Pattern) IsEmpty() bool    { return len(p.Events) == 0 }

// Event is a single step. Time is the position within the cycle, 0.0 to 1.0.
type Event struct {
	Time     float64
	Pitch    string // empty for rests
	Velocity float64
	Length   float64 // note length as a cycle fraction
}

func (e Event) IsRest() bool { return e.Pitch == "" }

func (e Event) String() string {
	if e.IsRest() {
		return "~"
	}
	return fmt.Sprintf("%s(v:%.2f,d:%.2f)", e.Pitch, e.Velocity, e.Length)
}

// ParseMiniNotation parses a mini-notation string into a Pattern.
//
// Supported forms:
//
//	"c3 d3 e3"   sequence of notes, evenly dividing the cycle
//	"c3 ~ d3"    rests
//	"[c3 d3] e3" subdivision groups
//	"c3,e3,g3"   chords (simultaneous notes)
//	"c3*2"       repeat within the step
//	"c3/2"       stretch over the step
func ParseMiniNotation(input string) (*Pattern, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return &Pattern{notation: trimmed, Duration: 1}, nil
	}

	tokens, err := tokenizeNotation(trimmed)
	if err != nil {
		return nil, err
	}
	items, _, err := parseSequence(tokens, 0, "")
	if err != nil {
		return nil, err
	}

	return &Pattern{
		notation: trimmed,
		Events:   flattenItems(items, 0, 1),
		Duration: 1,
	}, nil
}

type notationTokenKind int

const (
	tokNote notationTokenKind = iota
	tokRest
	tokLeftBracket
	tokRightBracket
	tokComma
	tokSpeed
)

type notationToken struct {
	kind  notationTokenKind
	text  string
	speed float64
}

func tokenizeNotation(input string) ([]notationToken, error) {
	var tokens []notationToken
	var current strings.Builder

	flush := func() {
		if current.Len() == 0 {
			return
		}
		text := current.String()
		current.Reset()
		if text == "~" {
			tokens = append(tokens, notationToken{kind: tokRest})
		} else {
			tokens = append(tokens, notationToken{kind: tokNote, text: text})
		}
	}

	runes := []rune(input)
	for i := 0; i < len(runes); i++ {
		ch := runes[i]
		switch ch {
		case ' ', '\t', '\n':
			flush()
		case '[':
			flush()
			tokens = append(tokens, notationToken{kind: tokLeftBracket})
		case ']':
			flush()
			tokens = append(tokens, notationToken{kind: tokRightBracket})
		case ',':
			flush()
			tokens = append(tokens, notationToken{kind: tokComma})
		case '*', '/':
			flush()
			j := i + 1
			for j < len(runes) && (runes[j] == '.' || (runes[j] >= '0' && runes[j] <= '9')) {
				j++
			}
			if j == i+1 {
				return nil, fmt.Errorf("speed modifier %q must be followed by a number", string(ch))
			}
			val, err := strconv.ParseFloat(string(runes[i+1:j]), 64)
			if err != nil {
				return nil, fmt.Errorf("invalid speed value: %s", string(runes[i+1:j]))
			}
			if ch == '/' {
				if val == 0 {
					return nil, fmt.Errorf("division by zero in speed modifier")
				}
				val = 1 / val
			}
			tokens = append(tokens, notationToken{kind: tokSpeed, speed: val})
			i = j - 1
		default:
			current.WriteRune(ch)
		}
	}
	flush()

	return tokens, nil
}

type sequenceItem struct {
	notes    []string       // one note, or several for a chord; empty for rest/group
	children []sequenceItem // subdivision group
	isRest   bool
	speed    float64 // 0 means unmodified
}

// parseSequence parses until end of tokens or the given closing kind.
// Returns the items and the index one past the closer.
func parseSequence(tokens []notationToken, start int, closer string) ([]sequenceItem, int, error) {
	var items []sequenceItem
	i := start

	for i < len(tokens) {
		tok := tokens[i]
		switch tok.kind {
		case tokRightBracket:
			if closer == "]" {
				return items, i + 1, nil
			}
			return nil, 0, fmt.Errorf("unexpected ']' in pattern")
		case tokNote:
			item, next, err := parseNoteOrChord(tokens, i)
			if err != nil {
				return nil, 0, err
			}
			items = append(items, item)
			i = next
		case tokRest:
			item := sequenceItem{isRest: true}
			i++
			i = applyModifiers(&item, tokens, i)
			items = append(items, item)
		case tokLeftBracket:
			children, next, err := parseSequence(tokens, i+1, "]")
			if err != nil {
				return nil, 0, err
			}
			item := sequenceItem{children: children}
			i = next
			i = applyModifiers(&item, tokens, i)
			items = append(items, item)
		default:
			return nil, 0, fmt.Errorf("unexpected token in pattern")
		}
	}

	if closer != "" {
		return nil, 0, fmt.Errorf("unclosed bracket in pattern")
	}
	return items, i, nil
}

func parseNoteOrChord(tokens []notationToken, start int) (sequenceItem, int, error) {
	item := sequenceItem{notes: []string{tokens[start].text}}
	i := start + 1

	for i < len(tokens) && tokens[i].kind == tokComma {
		i++
		if i >= len(tokens) || tokens[i].kind != tokNote {
			return sequenceItem{}, 0, fmt.Errorf("expected note after comma in chord")
		}
		item.notes = append(item.notes, tokens[i].text)
		i++
	}

	i = applyModifiers(&item, tokens, i)
	return item, i, nil
}

func applyModifiers(item *sequenceItem, tokens []notationToken, i int) int {
	for i < len(tokens) && tokens[i].kind == tokSpeed {
		item.speed = tokens[i].speed
		i++
	}
	return i
}

func flattenItems(items []sequenceItem, start, duration float64) []Event {
	var events []Event
	if len(items) == 0 {
		return events
	}
	step := duration / float64(len(items))
	for i, item := range items {
		events = append(events, flattenItem(item, start+float64(i)*step, step)...)
	}
	return events
}

func flattenItem(item sequenceItem, start, duration float64) []Event {
	if item.speed != 0 {
		speed := item.speed
		inner := item
		inner.speed = 0
		if speed > 1 {
			reps := int(speed)
			repDur := duration / speed
			var events []Event
			for r := 0; r < reps; r++ {
				events = append(events, flattenItem(inner, start+float64(r)*repDur, repDur)...)
			}
			return events
		}
		return flattenItem(inner, start, duration/speed)
	}

	switch {
	case item.isRest:
		return []Event{{Time: start}}
	case len(item.children) > 0:
		return flattenItems(item.children, start, duration)
	default:
		events := make([]Event, 0, len(item.notes))
		for _, note := range item.notes {
			events = append(events, Event{
				Time:     start,
				Pitch:    note,
				Velocity: 1.0,
				Length:   duration * 0.8,
			})
		}
		return events
	}
}
