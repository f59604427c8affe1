// Package queue holds the skill that will be attached to the next outgoing
// message and applies palette and confirmation outcomes to it.
package queue

import (
	"sync"

	"github.com/jingkaihe/skillq/pkg/skills"
)

// Slot holds at most one queued skill. It is shared by reference between
// the palette and the before-send hook for the lifetime of the process.
type Slot struct {
	mu    sync.Mutex
	skill *skills.Skill
}

// NewSlot returns an empty slot
func NewSlot() *Slot {
	return &Slot{}
}

// Get returns the queued skill
func (s *Slot) Get() (skills.Skill, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.skill == nil {
		return skills.Skill{}, false
	}
	return *s.skill, true
}

// Set queues skill, replacing whatever was queued
func (s *Slot) Set(skill skills.Skill) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.skill = &skill
}

// Clear empties the slot
func (s *Slot) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.skill = nil
}

// Take empties the slot and returns what it held
func (s *Slot) Take() (skills.Skill, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.skill == nil {
		return skills.Skill{}, false
	}
	skill := *s.skill
	s.skill = nil
	return skill, true
}

// IsQueued reports whether the named skill is the queued one
func (s *Slot) IsQueued(name string) bool {
	queued, ok := s.Get()
	return ok && queued.Name == name
}
