package ledger

import (
	"fmt"
	"strings"
)

// Side is the boolean proposition a wager backs.
type Side string

const (
	SideYes Side = "yes"
	SideNo  Side = "no"
)

// Resolution is the settlement state of a wager.
// It transitions from pending to won or lost exactly once.
type Resolution string

const (
	ResolutionPending Resolution = "pending"
	ResolutionWon     Resolution = "won"
	ResolutionLost    Resolution = "lost"
)

// Vocabulary holds the synonym sets accepted wherever a yes/no side or
// outcome token is required. Placement and resolution share one vocabulary.
type Vocabulary struct {
	Yes []string
	No  []string
}

// DefaultVocabulary returns the built-in side synonyms.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		Yes: []string{"y", "yes", "w", "win", "t", "true"},
		No:  []string{"n", "no", "l", "loss", "lose", "f", "false"},
	}
}

// Parse maps a caller-supplied token to a side using case-insensitive
// substring matching against each synonym. Tokens matching neither set
// are rejected with a usage error naming the accepted vocabulary.
func (v Vocabulary) Parse(token string) (Side, error) {
	lowered := strings.ToLower(token)
	for _, s := range v.Yes {
		if strings.Contains(lowered, s) {
			return SideYes, nil
		}
	}
	for _, s := range v.No {
		if strings.Contains(lowered, s) {
			return SideNo, nil
		}
	}
	return "", fmt.Errorf("%w: side must be one of %s", ErrValidation, v.Usage())
}

// Usage lists every accepted side token for error messages.
func (v Vocabulary) Usage() string {
	all := make([]string, 0, len(v.Yes)+len(v.No))
	all = append(all, v.Yes...)
	all = append(all, v.No...)
	return "[" + strings.Join(all, " ") + "]"
}
