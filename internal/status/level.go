package status

import "fmt"

// Level is the normalized lattice every status vocabulary maps onto.
type Level int

const (
	LevelDown Level = iota
	LevelDegraded
	LevelUp
)

func (l Level) String() string {
	switch l {
	case LevelDown:
		return "down"
	case LevelDegraded:
		return "degraded"
	case LevelUp:
		return "up"
	default:
		return fmt.Sprintf("Level(%d)", int(l))
	}
}

// Value is implemented by every leaf and parent status vocabulary.
type Value interface {
	fmt.Stringer
	Level() Level
}

// parseEnum returns the member of known equal to s, or fallback.
func parseEnum[T ~string](s string, known []T, fallback T) T {
	for _, k := range known {
		if string(k) == s {
			return k
		}
	}
	return fallback
}
