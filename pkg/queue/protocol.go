package queue

import (
	"context"
	"time"

	"github.com/jingkaihe/skillq/pkg/confirm"
	"github.com/jingkaihe/skillq/pkg/logger"
	"github.com/jingkaihe/skillq/pkg/palette"
)

// Indicator is the persistent "queued skill" marker in the host status bar
type Indicator interface {
	SetIndicator(text string)
	ClearIndicator()
}

// IndicatorText is what the status bar shows while name is queued
func IndicatorText(name string) string {
	return "skill: " + name
}

// Protocol applies palette outcomes and confirmation results to a slot
type Protocol struct {
	slot      *Slot
	indicator Indicator
	timeout   time.Duration
}

// ProtocolOption configures a Protocol
type ProtocolOption func(*Protocol)

// WithConfirmTimeout overrides how long the removal dialog waits
func WithConfirmTimeout(d time.Duration) ProtocolOption {
	return func(p *Protocol) {
		p.timeout = d
	}
}

// NewProtocol creates a protocol over slot. indicator may be nil.
func NewProtocol(slot *Slot, indicator Indicator, opts ...ProtocolOption) *Protocol {
	p := &Protocol{
		slot:      slot,
		indicator: indicator,
		timeout:   confirm.DefaultTimeout,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Slot returns the slot the protocol mutates
func (p *Protocol) Slot() *Slot { return p.slot }

// Apply acts on a terminal palette outcome. Selecting any skill queues it,
// replacing whatever was queued without asking. Re-selecting the queued
// skill does not touch the slot; it returns a confirmation session the
// caller must start and eventually pass to Resolve.
func (p *Protocol) Apply(ctx context.Context, outcome palette.Outcome) *confirm.Session {
	log := logger.G(ctx).WithField("skill", outcome.Skill.Name)

	switch outcome.Kind {
	case palette.OutcomeSelected:
		if previous, ok := p.slot.Get(); ok && previous.Name != outcome.Skill.Name {
			log = log.WithField("replaced", previous.Name)
		}
		p.slot.Set(outcome.Skill)
		if p.indicator != nil {
			p.indicator.SetIndicator(IndicatorText(outcome.Skill.Name))
		}
		log.Info("skill queued")

	case palette.OutcomeUnqueueRequested:
		session := confirm.NewSession(outcome.Skill.Name, confirm.WithTimeout(p.timeout))
		log.WithField("session_id", session.ID()).Debug("confirming skill removal")
		return session
	}

	return nil
}

// Resolve applies the result of a removal dialog
func (p *Protocol) Resolve(ctx context.Context, target string, outcome confirm.Outcome) {
	log := logger.G(ctx).WithField("skill", target)

	if !outcome.Remove {
		log.WithField("timed_out", outcome.TimedOut).Debug("skill kept in queue")
		return
	}

	// The slot may have been drained by a send while the dialog was open
	if !p.slot.IsQueued(target) {
		log.Debug("skill no longer queued")
		return
	}
	p.slot.Clear()
	if p.indicator != nil {
		p.indicator.ClearIndicator()
	}
	log.Info("skill removed from queue")
}
