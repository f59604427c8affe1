// Package palette is the selection state machine behind the skill palette.
// It owns the live query, the ranked view of the catalog and the highlighted
// row, and turns operator input into a terminal outcome.
package palette

import (
	"github.com/jingkaihe/skillq/pkg/fuzzy"
	"github.com/jingkaihe/skillq/pkg/skills"
)

// InputKind is the kind of an operator input
type InputKind int

const (
	InputCancel InputKind = iota + 1
	InputConfirm
	InputUp
	InputDown
	InputErase
	InputChar
)

// Input is one operator input. Char is set for InputChar.
type Input struct {
	Kind InputKind
	Char rune
}

// Convenience inputs
var (
	Cancel  = Input{Kind: InputCancel}
	Confirm = Input{Kind: InputConfirm}
	Up      = Input{Kind: InputUp}
	Down    = Input{Kind: InputDown}
	Erase   = Input{Kind: InputErase}
)

// Char returns a printable-character input
func Char(r rune) Input {
	return Input{Kind: InputChar, Char: r}
}

// OutcomeKind is the terminal state the session moved to, if any
type OutcomeKind int

const (
	OutcomeNone OutcomeKind = iota
	OutcomeSelected
	OutcomeUnqueueRequested
	OutcomeCancelled
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSelected:
		return "selected"
	case OutcomeUnqueueRequested:
		return "unqueue_requested"
	case OutcomeCancelled:
		return "cancelled"
	default:
		return "none"
	}
}

// Outcome is the result of handling one input
type Outcome struct {
	Kind  OutcomeKind
	Skill skills.Skill
}

// Done reports whether the palette should close
func (o Outcome) Done() bool {
	return o.Kind != OutcomeNone
}

// QueueReader exposes the currently queued skill
type QueueReader interface {
	Get() (skills.Skill, bool)
}

// Session is one open palette
type Session struct {
	catalog   skills.Catalog
	queue     QueueReader
	query     []rune
	filtered  []skills.Skill
	highlight int
	done      bool
}

// NewSession opens a palette over catalog with an empty query
func NewSession(catalog skills.Catalog, queue QueueReader) *Session {
	s := &Session{
		catalog: catalog,
		queue:   queue,
	}
	s.refilter()
	return s
}

// Query returns the live search query
func (s *Session) Query() string { return string(s.query) }

// Filtered returns the ranked view of the catalog
func (s *Session) Filtered() []skills.Skill { return s.filtered }

// Highlight returns the highlighted row. It is meaningless when Filtered is empty.
func (s *Session) Highlight() int { return s.highlight }

// Catalog returns the full catalog the session filters
func (s *Session) Catalog() skills.Catalog { return s.catalog }

// Queued returns the currently queued skill
func (s *Session) Queued() (skills.Skill, bool) {
	if s.queue == nil {
		return skills.Skill{}, false
	}
	return s.queue.Get()
}

// Handle applies one input. Once an outcome other than OutcomeNone has
// been returned the session ignores further input.
func (s *Session) Handle(in Input) Outcome {
	if s.done {
		return Outcome{}
	}

	switch in.Kind {
	case InputCancel:
		return s.finish(Outcome{Kind: OutcomeCancelled})

	case InputConfirm:
		if len(s.filtered) == 0 {
			return Outcome{}
		}
		skill := s.filtered[s.highlight]
		if queued, ok := s.Queued(); ok && queued.Name == skill.Name {
			return s.finish(Outcome{Kind: OutcomeUnqueueRequested, Skill: skill})
		}
		return s.finish(Outcome{Kind: OutcomeSelected, Skill: skill})

	case InputUp:
		if n := len(s.filtered); n > 0 {
			s.highlight = (s.highlight - 1 + n) % n
		}

	case InputDown:
		if n := len(s.filtered); n > 0 {
			s.highlight = (s.highlight + 1) % n
		}

	case InputErase:
		if len(s.query) > 0 {
			s.query = s.query[:len(s.query)-1]
			s.refilter()
		}

	case InputChar:
		s.query = append(s.query, in.Char)
		s.refilter()
	}

	return Outcome{}
}

func (s *Session) finish(o Outcome) Outcome {
	s.done = true
	return o
}

// refilter re-ranks against the full catalog and jumps to the top match
func (s *Session) refilter() {
	s.filtered = fuzzy.Rank(string(s.query), s.catalog)
	s.highlight = 0
}
