package trace

import (
	"fmt"
	"strings"
)

// Level controls tracing verbosity. Each level admits scopes up to a ceiling.
type Level uint8

const (
	LevelOff Level = iota
	// LevelError records nothing while running; ring mode dumps what it has
	// when the command exits.
	LevelError
	LevelPhase  // driver and pass spans
	LevelDetail // plus one span per linked module
	LevelDebug  // plus per-symbol merge decisions
)

var levelNames = [...]string{"off", "error", "phase", "detail", "debug"}

// ceiling is the most detailed scope a level emits; 0 emits nothing.
var ceiling = [...]Scope{0, 0, ScopePass, ScopeModule, ScopeSymbol}

func (l Level) String() string {
	if int(l) < len(levelNames) {
		return levelNames[l]
	}
	return "unknown"
}

// ParseLevel accepts the names printed by Level.String.
func ParseLevel(s string) (Level, error) {
	s = strings.ToLower(s)
	for i, name := range levelNames {
		if s == name {
			return Level(i), nil
		}
	}
	return LevelOff, fmt.Errorf("invalid trace level: %q (expected: %s)", s, strings.Join(levelNames[:], "|"))
}

// ShouldEmit reports whether events of scope pass this level.
func (l Level) ShouldEmit(scope Scope) bool {
	return int(l) < len(ceiling) && scope != 0 && scope <= ceiling[l]
}
