package hooks

import (
	"context"

	"github.com/jingkaihe/skillq/pkg/logger"
)

// Trigger invokes before_message_send hooks in registration order and
// returns msg with their segments appended. A failing hook is logged and
// skipped; the message is always returned so the send can proceed.
// A nil Registry is a no-op.
func (r *Registry) Trigger(ctx context.Context, msg Message) Message {
	if r == nil {
		return msg
	}

	r.mu.RLock()
	hooks := make([]registration, len(r.beforeSend))
	copy(hooks, r.beforeSend)
	r.mu.RUnlock()

	for _, reg := range hooks {
		segments, err := reg.hook.BeforeSend(ctx, msg)
		if err != nil {
			logger.G(ctx).WithError(err).WithField("hook", reg.name).Warn("before_message_send hook failed")
			continue
		}
		msg.Segments = append(msg.Segments, segments...)
	}

	return msg
}
