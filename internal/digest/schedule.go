package digest

import (
	"fmt"
	"strings"
	"time"
)

// Beijing is the fixed UTC+8 zone every digest is scheduled and stamped in.
var Beijing = time.FixedZone("UTC+8", 8*60*60)

// Type names one of the daily digest editions.
type Type string

const (
	Morning Type = "morning"
	Noon    Type = "noon"
	Evening Type = "evening"
	Final   Type = "final"
)

// WindowMinutes is how long after the slot hour a run is still admitted.
const WindowMinutes = 30

// Slot is a digest edition and the Beijing hour it runs at.
type Slot struct {
	Type Type
	Hour int
}

// Schedule lists the daily slots in chronological order.
var Schedule = []Slot{
	{Type: Morning, Hour: 7},
	{Type: Noon, Hour: 12},
	{Type: Evening, Hour: 19},
	{Type: Final, Hour: 23},
}

// Label is the human title of the edition, e.g. "Morning Digest".
func (t Type) Label() string {
	s := string(t)
	if s == "" {
		return "Digest"
	}
	return strings.ToUpper(s[:1]) + s[1:] + " Digest"
}

// ParseType validates a digest type name.
func ParseType(s string) (Type, error) {
	for _, slot := range Schedule {
		if string(slot.Type) == strings.ToLower(strings.TrimSpace(s)) {
			return slot.Type, nil
		}
	}
	return "", fmt.Errorf("unknown digest type %q", s)
}

// TypeAt reports which digest, if any, is admitted at t.
func TypeAt(t time.Time) (Type, bool) {
	bt := t.In(Beijing)
	for _, slot := range Schedule {
		if bt.Hour() == slot.Hour && bt.Minute() < WindowMinutes {
			return slot.Type, true
		}
	}
	return "", false
}

// NextSlot returns the start of the next slot strictly after t, in Beijing time.
func NextSlot(t time.Time) (Slot, time.Time) {
	bt := t.In(Beijing)
	day := time.Date(bt.Year(), bt.Month(), bt.Day(), 0, 0, 0, 0, Beijing)
	for _, slot := range Schedule {
		start := day.Add(time.Duration(slot.Hour) * time.Hour)
		if start.After(bt) {
			return slot, start
		}
	}
	first := Schedule[0]
	return first, day.AddDate(0, 0, 1).Add(time.Duration(first.Hour) * time.Hour)
}
