package hooks

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"os/exec"
	"time"

	"github.com/pkg/errors"

	"github.com/jingkaihe/skillq/pkg/osutil"
)

// ExternalHook is a discovered hook executable. It is queried once with
// the "hook" argument for its type and invoked with "run" and a JSON
// payload on stdin for every event.
type ExternalHook struct {
	Name     string   // Filename of the executable
	Path     string   // Full path to the executable
	HookType HookType // Type returned by "hook" command
	Timeout  time.Duration
}

// BeforeSend implements BeforeSendHook. Empty output with exit code 0
// contributes nothing.
func (h *ExternalHook) BeforeSend(ctx context.Context, msg Message) ([]Segment, error) {
	cwd, _ := os.Getwd()
	payload, err := json.Marshal(BeforeMessageSendPayload{
		Event:   HookTypeBeforeMessageSend,
		CWD:     cwd,
		Message: msg,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal payload")
	}

	out, err := h.run(ctx, payload)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(out)) == 0 {
		return nil, nil
	}

	var result BeforeMessageSendResult
	if err := json.Unmarshal(out, &result); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal result of hook %s", h.Name)
	}
	return result.Segments, nil
}

// run executes the hook with timeout enforcement
func (h *ExternalHook) run(ctx context.Context, payload []byte) ([]byte, error) {
	timeout := h.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, h.Path, "run")
	osutil.SetProcessGroup(cmd)
	osutil.SetProcessGroupKill(cmd)
	cmd.Stdin = bytes.NewReader(payload)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, errors.Errorf("hook %s timed out after %s", h.Name, timeout)
		}
		return nil, errors.Wrapf(err, "hook %s failed: %s", h.Name, stderr.String())
	}

	return stdout.Bytes(), nil
}
