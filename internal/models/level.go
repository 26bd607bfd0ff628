package models

import "fmt"

// Level is a five-step difficulty / skill grade.
type Level int

const (
	LevelUnknown Level = 0
	L1           Level = 1
	L2           Level = 2
	L3           Level = 3
	L4           Level = 4
	L5           Level = 5
)

func (l Level) String() string {
	if l < L1 || l > L5 {
		return "不明"
	}
	return fmt.Sprintf("L%d", int(l))
}

// ParseLevel maps a "L1".."L5" label back to a Level. Anything else parses
// to LevelUnknown.
func ParseLevel(s string) Level {
	switch s {
	case "L1":
		return L1
	case "L2":
		return L2
	case "L3":
		return L3
	case "L4":
		return L4
	case "L5":
		return L5
	}
	return LevelUnknown
}

// Shift returns the simple/standard/complex levels derived from a base
// difficulty level. Simple cases sit one step below, complex cases one step
// above, clamped to the L1..L5 range. An unknown base spreads around L3.
func (l Level) Shift() (simple, standard, complex Level) {
	switch l {
	case L1:
		return L1, L1, L2
	case L2:
		return L1, L2, L3
	case L3:
		return L2, L3, L4
	case L4:
		return L3, L4, L5
	case L5:
		return L4, L5, L5
	}
	return L2, L3, L4
}
