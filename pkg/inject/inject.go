// Package inject drains the queued skill into the next outgoing message.
package inject

import (
	"context"
	"encoding/xml"
	"fmt"

	"github.com/pkg/errors"

	"github.com/jingkaihe/skillq/pkg/hooks"
	"github.com/jingkaihe/skillq/pkg/logger"
	"github.com/jingkaihe/skillq/pkg/notify"
	"github.com/jingkaihe/skillq/pkg/queue"
	"github.com/jingkaihe/skillq/pkg/skills"
)

const (
	// HookName is the name the hook registers under
	HookName = "skill-injection"
	// SegmentKind marks the hidden segment carrying skill content
	SegmentKind = "skill-context"
)

// <skill name="..."><![CDATA[body]]></skill>
type skillContext struct {
	XMLName xml.Name `xml:"skill"`
	Name    string   `xml:"name,attr"`
	Body    string   `xml:",cdata"`
}

// Wrap renders skill content as the block attached to the message
func Wrap(name, body string) (string, error) {
	b, err := xml.Marshal(skillContext{Name: name, Body: body})
	if err != nil {
		return "", errors.Wrapf(err, "failed to encode skill '%s'", name)
	}
	return string(b), nil
}

// Unwrap parses a block produced by Wrap
func Unwrap(content string) (name, body string, err error) {
	var sc skillContext
	if err := xml.Unmarshal([]byte(content), &sc); err != nil {
		return "", "", errors.Wrap(err, "failed to decode skill context")
	}
	return sc.Name, sc.Body, nil
}

// Hook is the before_message_send hook that consumes the queue slot
type Hook struct {
	slot     *queue.Slot
	notifier notify.Notifier
	read     func(skills.Skill) (string, error)
}

// New creates a hook draining slot. notifier may be nil.
func New(slot *queue.Slot, notifier notify.Notifier) *Hook {
	if notifier == nil {
		notifier = notify.Discard{}
	}
	return &Hook{
		slot:     slot,
		notifier: notifier,
		read:     skills.ReadContent,
	}
}

// Register adds the hook to registry
func Register(registry *hooks.Registry, h *Hook) {
	registry.RegisterBeforeSend(HookName, h)
}

// BeforeSend implements hooks.BeforeSendHook. The slot is emptied before
// the skill file is read, so a failed read never injects the skill twice.
// A read failure is reported to the operator and the message goes out
// without the skill.
func (h *Hook) BeforeSend(ctx context.Context, _ hooks.Message) ([]hooks.Segment, error) {
	skill, ok := h.slot.Take()
	if !ok {
		return nil, nil
	}
	h.notifier.ClearIndicator()

	log := logger.G(ctx).WithField("skill", skill.Name).WithField("path", skill.SourcePath)

	body, err := h.read(skill)
	if err != nil {
		log.WithError(err).Warn("failed to load queued skill")
		h.notifier.Notify(notify.LevelWarning, fmt.Sprintf("Failed to load skill '%s'", skill.Name))
		return nil, nil
	}

	content, err := Wrap(skill.Name, body)
	if err != nil {
		log.WithError(err).Warn("failed to encode queued skill")
		h.notifier.Notify(notify.LevelWarning, fmt.Sprintf("Failed to load skill '%s'", skill.Name))
		return nil, nil
	}

	log.Info("skill injected into message")
	return []hooks.Segment{{
		Kind:    SegmentKind,
		Hidden:  true,
		Content: content,
	}}, nil
}
