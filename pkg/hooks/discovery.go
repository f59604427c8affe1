package hooks

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/jingkaihe/skillq/pkg/logger"
	"github.com/jingkaihe/skillq/pkg/osutil"
)

// Discovery handles hook discovery from configured directories
type Discovery struct {
	hookDirs []string
	// queryTimeout bounds each "hook" type query; zero means DefaultTimeout
	queryTimeout time.Duration
}

// DiscoveryOption is a function that configures a Discovery
type DiscoveryOption func(*Discovery) error

// WithDefaultDirs initializes with default hook directories
func WithDefaultDirs() DiscoveryOption {
	return func(d *Discovery) error {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return errors.Wrap(err, "failed to get user home directory")
		}
		d.hookDirs = []string{
			"./.skillq/hooks",                          // Repo-local (higher precedence)
			filepath.Join(homeDir, ".skillq", "hooks"), // User-global
		}
		return nil
	}
}

// WithHookDirs sets custom hook directories
func WithHookDirs(dirs ...string) DiscoveryOption {
	return func(d *Discovery) error {
		d.hookDirs = dirs
		return nil
	}
}

// NewDiscovery creates a new hook discovery instance
func NewDiscovery(opts ...DiscoveryOption) (*Discovery, error) {
	d := &Discovery{}

	if len(opts) == 0 {
		if err := WithDefaultDirs()(d); err != nil {
			return nil, err
		}
	} else {
		for _, opt := range opts {
			if err := opt(d); err != nil {
				return nil, err
			}
		}
	}

	return d, nil
}

// DiscoverHooks finds all executable hooks in the configured directories.
// An executable in an earlier directory shadows one with the same name in
// a later directory.
func (d *Discovery) DiscoverHooks(ctx context.Context) ([]*ExternalHook, error) {
	var hooks []*ExternalHook
	seen := make(map[string]bool)

	for _, dir := range d.hookDirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, errors.Wrapf(err, "failed to read hook directory %s", dir)
		}

		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}

			hookPath := filepath.Join(dir, entry.Name())

			info, err := entry.Info()
			if err != nil {
				continue
			}
			if info.Mode()&0o111 == 0 {
				continue // Not executable
			}

			if seen[entry.Name()] {
				continue
			}
			seen[entry.Name()] = true

			hookType, err := queryHookType(ctx, hookPath, d.queryTimeout)
			if err != nil {
				logger.G(ctx).WithError(err).WithField("path", hookPath).Debug("skipping hook")
				continue
			}

			hooks = append(hooks, &ExternalHook{
				Name:     entry.Name(),
				Path:     hookPath,
				HookType: hookType,
			})
		}
	}

	return hooks, nil
}

// queryHookType executes the hook with "hook" argument to determine its type.
// A hook that does not answer within timeout is killed with its process group.
func queryHookType(ctx context.Context, hookPath string, timeout time.Duration) (HookType, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, hookPath, "hook")
	osutil.SetProcessGroup(cmd)
	osutil.SetProcessGroupKill(cmd)

	output, err := cmd.Output()
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return "", errors.Errorf("hook type query timed out after %s", timeout)
		}
		return "", errors.Wrap(err, "failed to query hook type")
	}

	hookTypeStr := strings.TrimSpace(string(output))
	hookType := HookType(hookTypeStr)

	switch hookType {
	case HookTypeBeforeMessageSend:
		return hookType, nil
	default:
		return "", errors.Errorf("invalid hook type: %s", hookTypeStr)
	}
}

// LoadExternal discovers executable hooks and registers them after any
// hooks already in the registry
func (r *Registry) LoadExternal(ctx context.Context, opts ...DiscoveryOption) error {
	discovery, err := NewDiscovery(opts...)
	if err != nil {
		return err
	}

	r.mu.RLock()
	timeout := r.timeout
	r.mu.RUnlock()

	discovery.queryTimeout = timeout
	hooks, err := discovery.DiscoverHooks(ctx)
	if err != nil {
		return err
	}

	for _, hook := range hooks {
		hook.Timeout = timeout
		r.RegisterBeforeSend(hook.Name, hook)
		logger.G(ctx).WithField("hook", hook.Name).WithField("path", hook.Path).Debug("registered external hook")
	}
	return nil
}
