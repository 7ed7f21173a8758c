package vcr

import "bytes"

// NoMatch is returned by Matcher.Find when no recorded interaction is
// eligible.
const NoMatch = -1

// A MatchFunc reports whether a live request corresponds to a recorded one.
type MatchFunc func(live, recorded Request) bool

// DefaultMatch matches on method, URL and body. The method and URL must be
// identical strings, query string included, and the bodies identical bytes.
// Headers are ignored, because recorded and live requests routinely differ
// in dates, tokens and other ambient headers.
func DefaultMatch(live, recorded Request) bool {
	return live.Method == recorded.Method &&
		live.URL == recorded.URL &&
		bytes.Equal(live.Body, recorded.Body)
}

// Matcher selects which recorded interaction answers a live request.
type Matcher struct {
	// Match decides whether two requests correspond. DefaultMatch is used
	// if it is nil.
	Match MatchFunc
	// Reuse, if true, lets an interaction be replayed any number of times.
	// The earliest matching interaction is then always selected.
	Reuse bool
}

func (m Matcher) match() MatchFunc {
	if m.Match != nil {
		return m.Match
	}
	return DefaultMatch
}

// Find returns the index of the earliest interaction in recorded that
// matches live and is not marked in consumed, or NoMatch. consumed may be
// shorter than recorded; missing entries count as unconsumed. Find does not
// modify consumed.
func (m Matcher) Find(live Request, recorded []Interaction, consumed []bool) int {
	match := m.match()
	for i := range recorded {
		if !m.Reuse && i < len(consumed) && consumed[i] {
			continue
		}
		if match(live, recorded[i].Request) {
			return i
		}
	}
	return NoMatch
}

// Exhausted reports whether live matches at least one recorded interaction,
// ignoring consumption. It is used to explain a NoMatch result.
func (m Matcher) Exhausted(live Request, recorded []Interaction) bool {
	return Matcher{Match: m.Match, Reuse: true}.Find(live, recorded, nil) != NoMatch
}
