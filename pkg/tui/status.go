package tui

import (
	"sync"
	"time"

	"github.com/jingkaihe/skillq/pkg/notify"
)

// NoticeDuration is how long a transient notice stays in the status bar
const NoticeDuration = 4 * time.Second

// StatusBar holds the queued-skill indicator and the transient notice.
// It is written from hooks that run off the UI goroutine.
type StatusBar struct {
	mu        sync.Mutex
	indicator string
	notice    string
	level     notify.Level
	seq       int
}

var _ notify.Notifier = (*StatusBar)(nil)

// NewStatusBar creates an empty status bar
func NewStatusBar() *StatusBar {
	return &StatusBar{}
}

// Notify shows a transient notice, replacing the current one
func (s *StatusBar) Notify(level notify.Level, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notice = text
	s.level = level
	s.seq++
}

// SetIndicator shows the persistent indicator
func (s *StatusBar) SetIndicator(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.indicator = text
}

// ClearIndicator hides the persistent indicator
func (s *StatusBar) ClearIndicator() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.indicator = ""
}

// Indicator returns the persistent indicator text
func (s *StatusBar) Indicator() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.indicator
}

// Notice returns the current notice and its level
func (s *StatusBar) Notice() (string, notify.Level) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.notice, s.level
}

func (s *StatusBar) noticeSeq() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq
}

// clearNotice drops the notice unless a newer one replaced it
func (s *StatusBar) clearNotice(seq int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seq == seq {
		s.notice = ""
		s.level = ""
	}
}
